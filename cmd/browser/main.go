// Package main is the entry point for the browser engine.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dsilverstone/browser/internal/browser"
	"github.com/dsilverstone/browser/internal/config"
)

func main() {
	seedURL := "about:blank"
	if len(os.Args) >= 2 {
		seedURL = os.Args[1]
	}

	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	b := browser.NewBrowser(cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nreceived interrupt signal, closing...")
		b.Quit()
	}()

	b.NewTab(seedURL)
	b.Run()
}
