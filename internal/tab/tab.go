// Package tab implements Tab, the mediator between the browser thread
// and the tree of Frames that make up one tab's content: event
// dispatch (click/keypress/scroll/...), history, focus, and the
// per-tab cooperative render loop. Ported from content/tab.py,
// folding background/main_thread.py's MainThread directly into the
// type it drove — MainThread held no state of its own beyond an event
// queue wrapped around a Tab it already had a pointer to, so here the
// Tab just owns that queue and runs its own loop goroutine.
package tab

import (
	_ "embed"
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dsilverstone/browser/internal/config"
	"github.com/dsilverstone/browser/internal/css"
	"github.com/dsilverstone/browser/internal/dom"
	"github.com/dsilverstone/browser/internal/frame"
	"github.com/dsilverstone/browser/internal/layout"
	"github.com/dsilverstone/browser/internal/netstack"
	"github.com/dsilverstone/browser/internal/paint"
	"github.com/dsilverstone/browser/internal/trace"
)

// default.css supplies the handful of tag-selector rules the original
// loads from a sibling Browser.css file at startup (open("Browser.css")
// in core/browser.py); that file's contents aren't part of the
// retrieved source, so this is authored fresh in the same spirit: the
// bare minimum of user-agent styling (link color, bold/italic tags,
// heading sizes) a page can rely on with no stylesheet of its own.
//
//go:embed default.css
var defaultCSSSource string

var defaultStyleSheet = css.NewParser(defaultCSSSource).Stylesheet()

var tabIDCounter int64

// EventType names the events the browser thread posts to a Tab,
// mirroring background/main_thread.py's EventType enum.
type EventType int

const (
	EventLoad EventType = iota
	EventClick
	EventKeypress
	EventBackspace
	EventScrollDown
	EventScrollUp
	EventScrollTo
	EventResize
	EventGoBack
	EventStop
)

func (e EventType) String() string {
	switch e {
	case EventLoad:
		return "LOAD"
	case EventClick:
		return "CLICK"
	case EventKeypress:
		return "KEYPRESS"
	case EventBackspace:
		return "BACKSPACE"
	case EventScrollDown:
		return "SCROLL_DOWN"
	case EventScrollUp:
		return "SCROLL_UP"
	case EventScrollTo:
		return "SCROLL_TO"
	case EventResize:
		return "RESIZE"
	case EventGoBack:
		return "GO_BACK"
	default:
		return "STOP"
	}
}

// Event is one unit of input posted to a Tab's loop, ported from
// background/main_thread.py's Event (whose **kwargs become named
// fields here instead of an untyped data dict).
type Event struct {
	Type EventType

	URL     string
	Payload []byte

	X, Y float64

	Char string

	Scroll float64

	Width, Height float64
}

// BrowserLink is the subset of Browser behavior a Tab needs — handing
// off a finished render for compositing — declared here so package tab
// never imports package browser; browser imports tab instead.
type BrowserLink interface {
	OnTabCommit(CommitData)
}

// CommitData is the render snapshot a Tab hands to the browser thread
// once its display list is up to date, ported from
// background/commit_data.py's CommitData.
type CommitData struct {
	DisplayList    []paint.Command
	DocumentHeight float64
	Scroll         float64
	URL            string
	TabID          int64
}

// Tab mediates between the browser thread and this tab's frame tree:
// dispatching input events, tracking scroll/focus/history, and driving
// the cooperative render loop, ported from content/tab.py.
type Tab struct {
	id int64

	browser BrowserLink

	taskRunner *TaskRunner
	events     chan Event
	done       chan struct{}

	client *netstack.Client
	pool   *netstack.WorkerPool
	cfg    *config.EngineConfig

	mu          sync.Mutex
	scroll      float64
	width       float64
	height      float64
	history     []string
	focus       dom.Node
	needsRender bool

	dlMu        sync.Mutex
	displayList []paint.Command

	framesMu  sync.Mutex
	rootFrame *frame.Frame
	frames    []*frame.Frame
}

// New constructs a Tab whose content occupies (width, height) CSS
// pixels beneath the browser chrome.
func New(browser BrowserLink, width, height float64, client *netstack.Client, pool *netstack.WorkerPool, cfg *config.EngineConfig) *Tab {
	return &Tab{
		id:         atomic.AddInt64(&tabIDCounter, 1),
		browser:    browser,
		taskRunner: NewTaskRunner(),
		events:     make(chan Event, 16),
		done:       make(chan struct{}),
		client:     client,
		pool:       pool,
		cfg:        cfg,
		width:      width,
		height:     height,
	}
}

func (t *Tab) ID() int64 { return t.id }

// --- frame.TabLink ---

func (t *Tab) Width() float64 { return t.width }

func (t *Tab) DefaultStyleSheet() []css.Rule { return defaultStyleSheet }

func (t *Tab) SetNeedsRender() {
	t.mu.Lock()
	t.needsRender = true
	t.mu.Unlock()
}

func (t *Tab) ScheduleTask(fn func()) { t.taskRunner.Schedule(fn) }

func (t *Tab) AddFrame(f *frame.Frame) {
	t.framesMu.Lock()
	t.frames = append(t.frames, f)
	t.framesMu.Unlock()
}

func (t *Tab) RemoveFrame(f *frame.Frame) {
	t.framesMu.Lock()
	for i, fr := range t.frames {
		if fr == f {
			t.frames = append(t.frames[:i], t.frames[i+1:]...)
			break
		}
	}
	t.framesMu.Unlock()
}

func (t *Tab) Frames() []*frame.Frame {
	t.framesMu.Lock()
	defer t.framesMu.Unlock()
	return append([]*frame.Frame(nil), t.frames...)
}

func (t *Tab) NetworkClient() *netstack.Client   { return t.client }
func (t *Tab) NetworkPool() *netstack.WorkerPool { return t.pool }
func (t *Tab) Config() *config.EngineConfig      { return t.cfg }

// --- state accessors, for the compositor/chrome to read across threads ---

func (t *Tab) RootFrame() *frame.Frame {
	t.framesMu.Lock()
	defer t.framesMu.Unlock()
	return t.rootFrame
}

func (t *Tab) URL() string {
	rf := t.RootFrame()
	if rf == nil {
		return ""
	}
	return rf.URLString()
}

func (t *Tab) Scroll() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scroll
}

func (t *Tab) DisplayList() []paint.Command {
	t.dlMu.Lock()
	defer t.dlMu.Unlock()
	return append([]paint.Command(nil), t.displayList...)
}

func (t *Tab) vstep() float64 {
	if t.cfg != nil && t.cfg.VStep > 0 {
		return float64(t.cfg.VStep)
	}
	return 18
}

// maxY returns the document's full scrollable height, ported from
// Tab.get_max_y.
func (t *Tab) maxY() float64 {
	rf := t.RootFrame()
	if rf == nil {
		return 0
	}
	doc := rf.Document()
	if doc == nil {
		return 0
	}
	return doc.Height() + 2*t.vstep()
}

func (t *Tab) maxScroll() float64 {
	t.mu.Lock()
	h := t.height
	t.mu.Unlock()
	return math.Max(0, t.maxY()-h)
}

func (t *Tab) scrollStep() float64 {
	if t.cfg != nil && t.cfg.ScrollStep > 0 {
		return float64(t.cfg.ScrollStep)
	}
	return 100
}

// --- content operations, ported from content/tab.py ---

// Load fetches a fresh root Frame for rawurl, replacing this tab's
// entire frame tree, ported from Tab.load.
func (t *Tab) Load(rawurl string, payload []byte) {
	defer trace.Span("tab_load", "load", 0)()

	t.mu.Lock()
	t.history = append(t.history, rawurl)
	t.scroll = 0
	t.mu.Unlock()

	rf := frame.New(t, nil, nil)
	t.framesMu.Lock()
	t.rootFrame = rf
	t.frames = []*frame.Frame{rf}
	t.framesMu.Unlock()

	maxRedirects := 10
	if t.cfg != nil && t.cfg.MaxRedirects > 0 {
		maxRedirects = t.cfg.MaxRedirects
	}
	if err := rf.Load(rawurl, payload, maxRedirects); err != nil {
		fmt.Printf("tab load error: %v\n", err)
	}
	t.compositeDisplayList()
}

// render re-renders any frame marked dirty and recomposites the
// display list, ported from Tab.render.
func (t *Tab) render() {
	t.framesMu.Lock()
	frames := append([]*frame.Frame(nil), t.frames...)
	t.framesMu.Unlock()
	for _, f := range frames {
		if f.NeedsRender() {
			f.Render()
		}
	}
	t.compositeDisplayList()
	t.mu.Lock()
	t.needsRender = false
	t.mu.Unlock()
}

func (t *Tab) compositeDisplayList() {
	rf := t.RootFrame()
	var dl []paint.Command
	if rf != nil {
		dl = rf.DisplayList()
	}
	t.dlMu.Lock()
	t.displayList = dl
	t.dlMu.Unlock()
}

func (t *Tab) commit() {
	if t.browser == nil {
		return
	}
	t.browser.OnTabCommit(CommitData{
		DisplayList:    t.DisplayList(),
		DocumentHeight: t.maxY(),
		Scroll:         t.Scroll(),
		URL:            t.URL(),
		TabID:          t.id,
	})
}

// click walks the layout box under (x, y) up its dom.Node ancestry
// looking for a link, form control, or submit button to act on, ported
// from Tab.click.
func (t *Tab) click(x, y float64) {
	t.mu.Lock()
	t.focus = nil
	scroll := t.scroll
	t.mu.Unlock()
	y += scroll

	rf := t.RootFrame()
	if rf == nil || rf.Document() == nil {
		return
	}

	var cur dom.Node = layout.HitTest(rf.Document(), x, y)
	for cur != nil {
		if e, ok := cur.(*dom.Element); ok {
			switch e.Tag {
			case "a":
				if href := e.Attr("href"); href != "" {
					if rf.DispatchEvent("click", e) {
						return
					}
					target, err := rf.URL().Resolve(href)
					if err == nil {
						t.Load(target.String(), nil)
					}
					return
				}
			case "input":
				if rf.DispatchEvent("click", e) {
					return
				}
				e.Attributes["value"] = ""
				t.mu.Lock()
				if old, ok := t.focus.(*dom.Element); ok && old != nil {
					old.SetFocused(false)
				}
				t.focus = e
				t.mu.Unlock()
				e.SetFocused(true)
				t.SetNeedsRender()
				return
			case "button":
				if rf.DispatchEvent("click", e) {
					return
				}
				for p := e; p != nil; p = p.Parent() {
					if p.Tag == "form" && p.Attr("action") != "" {
						t.submitForm(rf, p)
						return
					}
				}
				return
			}
		}
		p := cur.Parent()
		if p == nil {
			break
		}
		cur = p
	}
}

// submitForm URL-encodes every named input under elt and loads the
// form's action, ported from Tab.submit_form.
func (t *Tab) submitForm(rf *frame.Frame, elt *dom.Element) {
	if rf.DispatchEvent("submit", elt) {
		return
	}
	var parts []string
	for _, n := range dom.Flatten(elt) {
		e, ok := n.(*dom.Element)
		if !ok || e.Tag != "input" || e.Attr("name") == "" {
			continue
		}
		name := url.QueryEscape(e.Attr("name"))
		value := url.QueryEscape(e.Attr("value"))
		parts = append(parts, name+"="+value)
	}
	target, err := rf.URL().Resolve(elt.Attr("action"))
	if err != nil {
		return
	}
	t.Load(target.String(), []byte(strings.Join(parts, "&")))
}

func (t *Tab) keypress(char string) {
	t.mu.Lock()
	focus := t.focus
	t.mu.Unlock()
	e, ok := focus.(*dom.Element)
	if !ok {
		return
	}
	rf := t.RootFrame()
	if rf != nil && rf.DispatchEvent("keydown", e) {
		return
	}
	e.Attributes["value"] += char
	t.SetNeedsRender()
}

func (t *Tab) backspace() {
	t.mu.Lock()
	focus := t.focus
	t.mu.Unlock()
	e, ok := focus.(*dom.Element)
	if !ok {
		return
	}
	v := []rune(e.Attr("value"))
	if len(v) == 0 {
		return
	}
	e.Attributes["value"] = string(v[:len(v)-1])
	t.SetNeedsRender()
}

func (t *Tab) scrollDown() {
	max := t.maxScroll()
	t.mu.Lock()
	t.scroll = math.Min(t.scroll+t.scrollStep(), max)
	t.mu.Unlock()
}

func (t *Tab) scrollUp() {
	t.mu.Lock()
	cur := t.scroll
	t.mu.Unlock()
	if cur <= 0 {
		return
	}
	t.mu.Lock()
	t.scroll = math.Max(0, t.scroll-t.scrollStep())
	t.mu.Unlock()
}

func (t *Tab) scrollTo(pos float64) {
	max := t.maxScroll()
	pos = math.Max(0, math.Min(pos, max))
	t.mu.Lock()
	t.scroll = pos
	t.mu.Unlock()
}

func (t *Tab) resize(width, height float64) {
	t.mu.Lock()
	t.width = width
	t.height = height
	t.needsRender = true
	t.mu.Unlock()
}

func (t *Tab) goBack() {
	t.mu.Lock()
	if len(t.history) <= 1 {
		t.mu.Unlock()
		return
	}
	t.history = t.history[:len(t.history)-1]
	backURL := t.history[len(t.history)-1]
	t.mu.Unlock()
	t.Load(backURL, nil)
}

// --- event loop, folding background/main_thread.py's MainThread ---

// PostEvent enqueues an event from the browser thread for this tab's
// loop to handle, ported from MainThread.post_event.
func (t *Tab) PostEvent(ev Event) { t.events <- ev }

// Stop ends the tab's Run loop, ported from MainThread.stop.
func (t *Tab) Stop() { close(t.done) }

// Run is the tab's cooperative loop: handle one posted event (or wait
// up to 10ms for one, matching the original's 0.01s poll timeout), run
// one pending scheduled task, then render and commit if anything was
// marked dirty. Ported from MainThread.run/_handle_event.
func (t *Tab) Run() {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case ev, ok := <-t.events:
			if !ok || ev.Type == EventStop {
				return
			}
			stop := trace.Span("handle_"+ev.Type.String(), "event", 0)
			t.handle(ev)
			stop()
		case <-ticker.C:
		}

		t.taskRunner.RunOne()

		t.mu.Lock()
		needs := t.needsRender
		t.mu.Unlock()
		if needs {
			stop := trace.Span("render", "render", 0)
			t.render()
			t.commit()
			stop()
		}
	}
}

func (t *Tab) handle(ev Event) {
	switch ev.Type {
	case EventLoad:
		t.Load(ev.URL, ev.Payload)
		t.commit()
	case EventClick:
		t.click(ev.X, ev.Y)
		t.maybeRender()
		t.commit()
	case EventKeypress:
		t.keypress(ev.Char)
		t.maybeRenderAndCommit()
	case EventBackspace:
		t.backspace()
		t.maybeRenderAndCommit()
	case EventScrollDown:
		t.scrollDown()
		t.commit()
	case EventScrollUp:
		t.scrollUp()
		t.commit()
	case EventScrollTo:
		t.scrollTo(ev.Scroll)
		t.commit()
	case EventResize:
		t.resize(ev.Width, ev.Height)
	case EventGoBack:
		t.goBack()
		t.commit()
	}
}

func (t *Tab) maybeRender() {
	t.mu.Lock()
	needs := t.needsRender
	t.mu.Unlock()
	if needs {
		t.render()
	}
}

func (t *Tab) maybeRenderAndCommit() {
	t.mu.Lock()
	needs := t.needsRender
	t.mu.Unlock()
	if !needs {
		return
	}
	t.render()
	t.commit()
}
