package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// TestServer provides a configurable test HTTP server, serving fixture
// HTML/CSS/JS responses for internal/frame and internal/netstack
// tests.
type TestServer struct {
	Server    *httptest.Server
	mu        sync.RWMutex
	pages     map[string]*TestPage
	delays    map[string]time.Duration
	errors    map[string]int // URL -> status code
	hits      map[string]int
	redirects map[string]string
}

// TestPage represents a test page.
type TestPage struct {
	Content     string
	ContentType string
	StatusCode  int
	Headers     map[string]string
}

// NewTestServer creates a new test server.
func NewTestServer() *TestServer {
	ts := &TestServer{
		pages:     make(map[string]*TestPage),
		delays:    make(map[string]time.Duration),
		errors:    make(map[string]int),
		hits:      make(map[string]int),
		redirects: make(map[string]string),
	}

	ts.Server = httptest.NewServer(http.HandlerFunc(ts.handler))
	return ts
}

func (ts *TestServer) handler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	ts.mu.Lock()
	ts.hits[path]++
	ts.mu.Unlock()

	ts.mu.RLock()
	delay := ts.delays[path]
	errorCode := ts.errors[path]
	redirect := ts.redirects[path]
	page := ts.pages[path]
	ts.mu.RUnlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusMovedPermanently)
		return
	}

	if errorCode > 0 {
		w.WriteHeader(errorCode)
		return
	}

	if page != nil {
		for k, v := range page.Headers {
			w.Header().Set(k, v)
		}
		if page.ContentType != "" {
			w.Header().Set("Content-Type", page.ContentType)
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		if page.StatusCode > 0 {
			w.WriteHeader(page.StatusCode)
		}
		io.WriteString(w, page.Content)
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

// AddPage adds a test page.
func (ts *TestServer) AddPage(path, content string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.pages[path] = &TestPage{
		Content:     content,
		ContentType: "text/html; charset=utf-8",
		StatusCode:  200,
	}
}

// AddPageWithType adds a page with specific content type.
func (ts *TestServer) AddPageWithType(path, content, contentType string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.pages[path] = &TestPage{
		Content:     content,
		ContentType: contentType,
		StatusCode:  200,
	}
}

// AddPageWithStatus adds a page with specific status code.
func (ts *TestServer) AddPageWithStatus(path, content string, status int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.pages[path] = &TestPage{
		Content:     content,
		ContentType: "text/html; charset=utf-8",
		StatusCode:  status,
	}
}

// SetDelay sets response delay for a path.
func (ts *TestServer) SetDelay(path string, delay time.Duration) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.delays[path] = delay
}

// SetError sets error status for a path.
func (ts *TestServer) SetError(path string, statusCode int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.errors[path] = statusCode
}

// SetRedirect sets redirect for a path.
func (ts *TestServer) SetRedirect(from, to string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.redirects[from] = to
}

// GetHits returns hit count for a path.
func (ts *TestServer) GetHits(path string) int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.hits[path]
}

// URL returns the server URL.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Close closes the test server.
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// Reset clears all state.
func (ts *TestServer) Reset() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.pages = make(map[string]*TestPage)
	ts.delays = make(map[string]time.Duration)
	ts.errors = make(map[string]int)
	ts.hits = make(map[string]int)
	ts.redirects = make(map[string]string)
}

// BuildTestSite populates the server with a small linked set of pages,
// useful for navigation/history tests (load, click a link, go back).
func (ts *TestServer) BuildTestSite() {
	ts.AddPage("/", `<!DOCTYPE html>
<html>
<head><title>Test Site Home</title></head>
<body>
	<h1>Welcome to Test Site</h1>
	<nav>
		<a href="/about">About</a>
		<a href="/products">Products</a>
	</nav>
</body>
</html>`)

	ts.AddPage("/about", `<!DOCTYPE html>
<html>
<head><title>About Us</title></head>
<body>
	<h1>About Us</h1>
	<p>We are a test company.</p>
	<a href="/">Home</a>
</body>
</html>`)

	ts.AddPage("/products", `<!DOCTYPE html>
<html>
<head><title>Our Products</title></head>
<body>
	<h1>Products</h1>
	<ul>
		<li><a href="/products/1">Product 1</a></li>
	</ul>
</body>
</html>`)

	ts.AddPage("/products/1", `<!DOCTYPE html>
<html>
<head><title>Product 1</title></head>
<body>
	<h1>Product 1</h1>
	<form action="/submit" method="post">
		<input name="qty" value="1">
		<button>Buy</button>
	</form>
	<a href="/products">Back to Products</a>
</body>
</html>`)
}

// HTMLBuilder helps build test HTML content for fixtures.
type HTMLBuilder struct {
	title       string
	h1          string
	links       []Link
	images      []Image
	scripts     []string
	styles      []string
	bodyContent string
}

// Link represents a link for testing.
type Link struct {
	Href string
	Text string
}

// Image represents an image for testing.
type Image struct {
	Src string
	Alt string
}

// NewHTMLBuilder creates a new HTML builder.
func NewHTMLBuilder() *HTMLBuilder {
	return &HTMLBuilder{}
}

// Title sets the page title.
func (b *HTMLBuilder) Title(title string) *HTMLBuilder {
	b.title = title
	return b
}

// H1 sets the H1 heading.
func (b *HTMLBuilder) H1(text string) *HTMLBuilder {
	b.h1 = text
	return b
}

// Link adds a link.
func (b *HTMLBuilder) Link(href, text string) *HTMLBuilder {
	b.links = append(b.links, Link{Href: href, Text: text})
	return b
}

// Img adds an image.
func (b *HTMLBuilder) Img(src, alt string) *HTMLBuilder {
	b.images = append(b.images, Image{Src: src, Alt: alt})
	return b
}

// Script adds a script.
func (b *HTMLBuilder) Script(src string) *HTMLBuilder {
	b.scripts = append(b.scripts, src)
	return b
}

// Style adds a stylesheet.
func (b *HTMLBuilder) Style(href string) *HTMLBuilder {
	b.styles = append(b.styles, href)
	return b
}

// Body sets body content.
func (b *HTMLBuilder) Body(content string) *HTMLBuilder {
	b.bodyContent = content
	return b
}

// Build generates the HTML.
func (b *HTMLBuilder) Build() string {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	if b.title != "" {
		sb.WriteString(fmt.Sprintf("  <title>%s</title>\n", b.title))
	}
	for _, style := range b.styles {
		sb.WriteString(fmt.Sprintf("  <link rel=\"stylesheet\" href=\"%s\">\n", style))
	}
	sb.WriteString("</head>\n<body>\n")

	if b.h1 != "" {
		sb.WriteString(fmt.Sprintf("  <h1>%s</h1>\n", b.h1))
	}
	if b.bodyContent != "" {
		sb.WriteString(b.bodyContent)
		sb.WriteString("\n")
	}
	for _, link := range b.links {
		sb.WriteString(fmt.Sprintf("  <a href=\"%s\">%s</a>\n", link.Href, link.Text))
	}
	for _, img := range b.images {
		sb.WriteString(fmt.Sprintf("  <img src=\"%s\" alt=\"%s\">\n", img.Src, img.Alt))
	}
	for _, script := range b.scripts {
		sb.WriteString(fmt.Sprintf("  <script src=\"%s\"></script>\n", script))
	}

	sb.WriteString("</body>\n</html>")
	return sb.String()
}
