// Package config defines engine configuration options.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// RedirectPolicy names a redirect-handling mode. The engine does not read
// it: a frame load always follows redirects up to MaxRedirects.
type RedirectPolicy string

const (
	RedirectFollow   RedirectPolicy = "follow"    // Follow redirects up to MaxRedirects
	RedirectNoFollow RedirectPolicy = "no_follow" // Treat any redirect as a load failure
)

// TraceMode names a profiler recording mode. The engine does not read it:
// the tracer always records, and writes trace.json when the browser shuts
// down.
type TraceMode string

const (
	TraceOff    TraceMode = "off"
	TraceOn     TraceMode = "on"
	TraceMemory TraceMode = "memory" // record but never write to disk (tests)
)

// EngineConfig holds all tunables for a running browser engine instance.
type EngineConfig struct {
	// === Window & chrome ===

	// Initial window size in pixels. The browser chrome's height comes out
	// of ViewportHeight; the tab content gets the rest.
	ViewportWidth  int `json:"viewport_width"`
	ViewportHeight int `json:"viewport_height"`

	// Frame pacing target for the compositor thread. Not read: the
	// compositor paces at a fixed 60 frames per second.
	FrameRate int `json:"frame_rate"`

	// === Networking ===

	// User-Agent string sent on every request.
	UserAgent string `json:"user_agent"`

	// Number of network workers servicing the request queue.
	NetworkWorkers int `json:"network_workers"`

	// Per-request socket timeout.
	RequestTimeout time.Duration `json:"request_timeout"`

	// Maximum redirects followed before falling back to about:blank.
	MaxRedirects int `json:"max_redirects"`

	RedirectPolicy RedirectPolicy `json:"redirect_policy"`

	// Per-response wait when loading stylesheets in parallel.
	StylesheetTimeout time.Duration `json:"stylesheet_timeout"`

	// Response cache capacity (entries); 0 disables eviction by count.
	ResponseCacheSize int `json:"response_cache_size"`

	// === Scripting ===

	// Wall-clock budget for a single script evaluation. Not read: script
	// evaluation runs without a time limit.
	ScriptTimeout time.Duration `json:"script_timeout"`

	// === Profiling ===

	// Profiler mode and output path. Not read: see TraceMode.
	Trace       TraceMode `json:"trace"`
	TraceOutput string    `json:"trace_output"`

	// === Layout ===

	// Default font size in CSS pixels. Not read: the style cascade's
	// inherited default font-size is a fixed 16px.
	DefaultFontSizePx int `json:"default_font_size_px"`

	// Horizontal/vertical page margin in pixels (HSTEP/VSTEP).
	HStep int `json:"hstep"`
	VStep int `json:"vstep"`

	// Pixels scrolled per SCROLL_UP/SCROLL_DOWN event.
	ScrollStep int `json:"scroll_step"`
}

// DefaultConfig returns an EngineConfig with the values the original
// implementation hardcodes as module-level constants.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		ViewportWidth:  800,
		ViewportHeight: 600,
		FrameRate:      60,

		UserAgent:         "BrowserEngine/1.0",
		NetworkWorkers:    4,
		RequestTimeout:    30 * time.Second,
		MaxRedirects:      10,
		RedirectPolicy:    RedirectFollow,
		StylesheetTimeout: 10 * time.Second,
		ResponseCacheSize: 256,

		ScriptTimeout: 5 * time.Second,

		Trace:       TraceOff,
		TraceOutput: "trace.json",

		DefaultFontSizePx: 16,
		HStep:             13,
		VStep:             18,
		ScrollStep:        100,
	}
}

// Validate clamps invalid values to safe minimums.
func (c *EngineConfig) Validate() error {
	if c.NetworkWorkers < 1 {
		c.NetworkWorkers = 1
	}
	if c.RequestTimeout < time.Second {
		c.RequestTimeout = time.Second
	}
	if c.MaxRedirects < 0 {
		c.MaxRedirects = 0
	}
	if c.FrameRate < 1 {
		c.FrameRate = 60
	}
	if c.ResponseCacheSize < 0 {
		c.ResponseCacheSize = 0
	}
	return nil
}

// Save writes the configuration to a JSON file.
func (c *EngineConfig) Save(filePath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Load reads configuration from a JSON file, defaulting any unset field.
func Load(filePath string) (*EngineConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Clone creates a deep copy of the configuration (no nested reference
// fields currently, but kept for parity with the rest of the config API
// and to protect callers that mutate a shared default).
func (c *EngineConfig) Clone() *EngineConfig {
	clone := *c
	return &clone
}
