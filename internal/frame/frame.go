// Package frame implements Frame: the DOM/layout/paint owner for a
// single HTML document (the top-level page or an <iframe>'s content),
// ported from content/frame.py.
package frame

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dsilverstone/browser/internal/config"
	"github.com/dsilverstone/browser/internal/css"
	"github.com/dsilverstone/browser/internal/dom"
	"github.com/dsilverstone/browser/internal/htmlparse"
	"github.com/dsilverstone/browser/internal/layout"
	"github.com/dsilverstone/browser/internal/netstack"
	"github.com/dsilverstone/browser/internal/paint"
	"github.com/dsilverstone/browser/internal/script"
	"github.com/dsilverstone/browser/internal/trace"
)

// stylesheetFetchTimeout bounds how long a single stylesheet fetch may
// take when the tab's config sets no StylesheetTimeout, so one hung
// response can't keep loadStylesheets from returning.
const stylesheetFetchTimeout = 10 * time.Second

// TabLink is the subset of Tab behavior a Frame needs, declared here
// (rather than importing package tab) so that tab can in turn hold a
// *Frame without an import cycle.
type TabLink interface {
	Width() float64
	DefaultStyleSheet() []css.Rule
	SetNeedsRender()
	ScheduleTask(fn func())
	AddFrame(f *Frame)
	RemoveFrame(f *Frame)
	Frames() []*Frame
	NetworkClient() *netstack.Client
	NetworkPool() *netstack.WorkerPool
	Config() *config.EngineConfig
}

// Frame owns one HTML document's DOM, CSS rules, layout tree, and
// display list, and (if it is an <iframe>'s content) a link back to the
// iframe element that embeds it.
type Frame struct {
	tab           TabLink
	parentFrame   *Frame
	iframeElement *dom.Element

	url         netstack.URL
	hasURL      bool
	root        dom.Node
	rules       []css.Rule
	cspHeader   *netstack.CSP
	jsContext   *script.Context

	document    *layout.DocumentLayout
	displayList []paint.Command
	iframeRect  paint.Rect

	mu          sync.Mutex
	needsRender bool
	childFrames []*Frame
}

// New constructs a Frame belonging to tab. parentFrame/iframeElement are
// nil for the tab's root frame.
func New(tab TabLink, parentFrame *Frame, iframeElement *dom.Element) *Frame {
	return &Frame{tab: tab, parentFrame: parentFrame, iframeElement: iframeElement}
}

func (f *Frame) URL() netstack.URL  { return f.url }
func (f *Frame) Root() dom.Node     { return f.root }
func (f *Frame) Rules() []css.Rule  { return f.rules }
func (f *Frame) CSP() *netstack.CSP { return f.cspHeader }
func (f *Frame) ChildFrames() []*Frame { return f.childFrames }
func (f *Frame) IsIFrame() bool     { return f.iframeElement != nil }
func (f *Frame) Document() *layout.DocumentLayout { return f.document }
func (f *Frame) JSContext() *script.Context       { return f.jsContext }

// NeedsRender reports whether this frame has been marked dirty since
// its last Render, letting a Tab skip re-rendering frames nothing
// touched.
func (f *Frame) NeedsRender() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.needsRender
}

// --- script.Host ---

func (f *Frame) Origin() string {
	if !f.hasURL {
		return ""
	}
	scheme, host, port := f.url.Origin()
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

func (f *Frame) URLString() string {
	if !f.hasURL {
		return ""
	}
	return f.url.String()
}

func (f *Frame) ParentHost() (script.Host, bool) {
	if f.parentFrame == nil {
		return nil, false
	}
	return f.parentFrame, true
}

func (f *Frame) ScriptContext() *script.Context { return f.jsContext }

func (f *Frame) Tab() script.TabHost { return tabHostAdapter{f.tab} }

func (f *Frame) SetNeedsRender() {
	f.mu.Lock()
	f.needsRender = true
	f.mu.Unlock()
	f.tab.SetNeedsRender()
}

func (f *Frame) Fetch(method, rawurl string, body []byte, sameOriginOnly bool) (int, []byte, error) {
	target, err := f.resolve(rawurl)
	if err != nil {
		return 0, nil, err
	}
	if sameOriginOnly {
		ts, th, tp := target.Origin()
		fs, fh, fp := f.url.Origin()
		if ts != fs || th != fh || tp != fp {
			return 403, nil, fmt.Errorf("cross-origin request blocked")
		}
	}
	resp, err := f.tab.NetworkPool().SubmitSync(&netstack.NetworkRequest{
		URL: target, Method: method, Body: body, Referrer: &f.url,
	})
	if err != nil {
		return 0, nil, err
	}
	return resp.Status, resp.Body, nil
}

func (f *Frame) AllowsConnect(rawurl string) bool {
	if f.cspHeader == nil {
		return true
	}
	return f.cspHeader.AllowsConnect(rawurl)
}

func (f *Frame) Navigate(rawurl string) {
	f.tab.ScheduleTask(func() { f.Load(rawurl, nil, 10) })
}

type tabHostAdapter struct{ tab TabLink }

func (a tabHostAdapter) Frames() []script.Host {
	frames := a.tab.Frames()
	out := make([]script.Host, len(frames))
	for i, fr := range frames {
		out[i] = fr
	}
	return out
}

func (a tabHostAdapter) ScheduleTask(fn func()) { a.tab.ScheduleTask(fn) }

// --- loading ---

func (f *Frame) resolve(ref string) (netstack.URL, error) {
	if f.hasURL {
		return f.url.Resolve(ref)
	}
	return netstack.Parse(ref)
}

// Load fetches url, parses it, applies styles, runs scripts, and
// instantiates any iframes, following up to maxRedirects redirects. A URL
// that fails to resolve or fetch, or a redirect chain longer than
// maxRedirects, loads about:blank instead; a redirect without a Location
// header returns an error — ported from Frame.load.
func (f *Frame) Load(rawurl string, payload []byte, maxRedirects int) error {
	defer trace.Span("frame_load", "load", 0)()

	target, err := f.resolve(rawurl)
	if err != nil || maxRedirects < 0 {
		target, _ = netstack.Parse("about:blank")
	}

	client := f.tab.NetworkClient()
	var referrer *netstack.URL
	if f.hasURL {
		referrer = &f.url
	}

	method := "GET"
	if payload != nil {
		method = "POST"
	}
	resp, ferr := client.Fetch(target, method, payload, referrer)
	if ferr != nil {
		target, _ = netstack.Parse("about:blank")
		resp, _ = client.Fetch(target, "GET", nil, referrer)
	}

	if resp.Status >= 300 && resp.Status < 400 {
		if loc, ok := resp.Headers["location"]; ok && loc != "" {
			return f.Load(loc, nil, maxRedirects-1)
		}
		return fmt.Errorf("redirect without Location header")
	}

	root := htmlparse.Parse(string(resp.Body))

	f.url = target
	f.hasURL = true
	f.root = root
	f.cspHeader = resp.CSP
	f.rules = append([]css.Rule(nil), f.tab.DefaultStyleSheet()...)

	f.loadStylesheets(target, client)
	f.Render()
	f.loadScripts(target, client)
	f.loadIFrames(target)

	return nil
}

func (f *Frame) loadStylesheets(base netstack.URL, client *netstack.Client) {
	defer trace.Span("load_stylesheets", "network", 0)()

	var links []*dom.Element
	for _, n := range dom.Flatten(f.root) {
		if e, ok := n.(*dom.Element); ok && e.Tag == "link" &&
			e.Attributes["rel"] == "stylesheet" && e.Attributes["href"] != "" {
			links = append(links, e)
		}
	}
	if len(links) == 0 {
		return
	}

	type result struct {
		rules []css.Rule
	}
	results := make(chan result, len(links))
	timeout := stylesheetFetchTimeout
	if cfg := f.tab.Config(); cfg != nil && cfg.StylesheetTimeout > 0 {
		timeout = cfg.StylesheetTimeout
	}
	var wg sync.WaitGroup
	for _, link := range links {
		styleURL, err := base.Resolve(link.Attributes["href"])
		if err != nil {
			continue
		}
		if f.cspHeader != nil && !f.cspHeader.AllowsStyle(styleURL.String()) {
			fmt.Printf("CSP blocked stylesheet: %s\n", styleURL.String())
			continue
		}
		wg.Add(1)
		go func(u netstack.URL) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			done := make(chan result, 1)
			go func() {
				resp, err := client.Fetch(u, "GET", nil, &base)
				if err != nil || !resp.IsSuccess() {
					done <- result{}
					return
				}
				rules := css.NewParser(string(resp.Body)).Stylesheet()
				done <- result{rules: rules}
			}()

			select {
			case r := <-done:
				results <- r
			case <-ctx.Done():
				fmt.Printf("stylesheet fetch timed out: %s\n", u.String())
				results <- result{}
			}
		}(styleURL)
	}
	wg.Wait()
	close(results)
	for r := range results {
		f.rules = append(f.rules, r.rules...)
	}
}

func (f *Frame) loadScripts(base netstack.URL, client *netstack.Client) {
	defer trace.Span("load_scripts", "network", 0)()

	var scripts []*dom.Element
	for _, n := range dom.Flatten(f.root) {
		if e, ok := n.(*dom.Element); ok && e.Tag == "script" && e.Attributes["src"] != "" {
			scripts = append(scripts, e)
		}
	}

	if f.jsContext != nil {
		f.jsContext.Discard()
	}
	f.jsContext = script.NewContext(f)
	f.jsContext.SetupHierarchy()

	for _, s := range scripts {
		scriptURL, err := base.Resolve(s.Attributes["src"])
		if err != nil {
			continue
		}
		if f.cspHeader != nil && !f.cspHeader.AllowsScript(scriptURL.String()) {
			fmt.Printf("CSP blocked script: %s\n", scriptURL.String())
			continue
		}
		resp, err := client.Fetch(scriptURL, "GET", nil, &base)
		if err != nil || !resp.IsSuccess() {
			fmt.Printf("Script load error: %v\n", err)
			continue
		}
		code := string(resp.Body)
		name := scriptURL.String()
		f.tab.ScheduleTask(func() { f.jsContext.Run(name, code) })
	}
}

func (f *Frame) loadIFrames(base netstack.URL) {
	defer trace.Span("load_iframes", "load", 0)()

	for _, child := range f.childFrames {
		f.tab.RemoveFrame(child)
	}
	f.childFrames = nil

	for _, n := range dom.Flatten(f.root) {
		e, ok := n.(*dom.Element)
		if !ok || e.Tag != "iframe" || e.Attributes["src"] == "" {
			continue
		}
		src := e.Attributes["src"]
		iframeURL, err := base.Resolve(src)
		if err != nil {
			continue
		}
		if f.cspHeader != nil && !f.cspHeader.Allows("frame-src", iframeURL.String()) {
			fmt.Printf("CSP blocked iframe: %s\n", iframeURL.String())
			continue
		}

		child := New(f.tab, f, e)
		e.ChildFrame = child
		if err := child.Load(iframeURL.String(), nil, 10); err != nil {
			fmt.Printf("iframe load error: %v\n", err)
			continue
		}

		f.childFrames = append(f.childFrames, child)
		f.tab.AddFrame(child)

		if child.jsContext != nil {
			child.jsContext.SetupHierarchy()
		}
	}
}

// Render applies the cascade, lays out the box tree, and rebuilds the
// display list, ported from Frame.render.
func (f *Frame) Render() {
	defer trace.Span("style", "style", 0)()
	sorted := append([]css.Rule(nil), f.rules...)
	css.SortRules(sorted)
	css.Style(f.root, sorted)

	func() {
		defer trace.Span("layout", "layout", 0)()
		f.document = layout.NewDocumentLayout(f.root, f.tab.Width(), f.hstep(), f.vstep())
		f.document.Layout()
	}()

	func() {
		defer trace.Span("paint", "paint", 0)()
		f.displayList = f.document.Paint()
	}()

	f.mu.Lock()
	f.needsRender = false
	f.mu.Unlock()
}

func (f *Frame) hstep() float64 {
	if c := f.tab.Config(); c != nil {
		return float64(c.HStep)
	}
	return 13
}

func (f *Frame) vstep() float64 {
	if c := f.tab.Config(); c != nil {
		return float64(c.VStep)
	}
	return 18
}

// SetIFrameRect records this frame's embedding box, reported by
// layout.IFrameLayout once the parent frame's box tree places the
// <iframe> element that owns this frame (satisfies paint.IFrameRectSetter).
func (f *Frame) SetIFrameRect(r paint.Rect) {
	f.mu.Lock()
	f.iframeRect = r
	f.mu.Unlock()
}

// DisplayList returns this frame's own paint commands plus, for each
// attached iframe, the child frame's display list wrapped in an
// IFrame translate+clip command bound to the iframe box's rect.
func (f *Frame) DisplayList() []paint.Command {
	cmds := append([]paint.Command(nil), f.displayList...)
	for _, child := range f.childFrames {
		child.mu.Lock()
		rect := child.iframeRect
		child.mu.Unlock()
		cmds = append(cmds, paint.IFrame{Rect: rect, Children: child.DisplayList()})
	}
	return cmds
}

// DispatchEvent runs the JS event-dispatch bridge for elt, returning
// true if a listener called preventDefault (the caller should then
// skip its own default action for this event).
func (f *Frame) DispatchEvent(eventType string, elt dom.Node) bool {
	if f.jsContext == nil {
		return false
	}
	handle := f.jsContext.HandleFor(elt)
	v, err := f.jsContext.Run("event", fmt.Sprintf("new Node(%d).dispatchEvent(new Event(%q));", handle, eventType))
	if err != nil {
		return false
	}
	return !v.ToBoolean()
}
