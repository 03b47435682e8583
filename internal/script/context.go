// Package script implements the JS execution context each frame owns,
// ported from scripting/js_context.py. Execution is backed by
// github.com/dop251/goja rather than dukpy; the host/JS bridge contract
// (querySelectorAll, getAttribute, innerHTML_set, XMLHttpRequest_send,
// setTimeout, postMessage, getLocationHref/setLocationHref) is otherwise
// unchanged.
package script

import (
	_ "embed"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"

	"github.com/dsilverstone/browser/internal/css"
	"github.com/dsilverstone/browser/internal/dom"
	"github.com/dsilverstone/browser/internal/htmlparse"
)

// parseFragment parses value as an HTML fragment and reparents its body
// children onto owner (which must already have an empty Children slice)
// — the Go equivalent of wrapping value in "<html><body>...</body></html>"
// and lifting doc.children[0].children, as innerHTML_set does in the
// original. Reparent appends to owner.Children itself, so the caller
// must not also assign the result.
func parseFragment(value string, owner *dom.Element) {
	root := htmlparse.Parse(value)
	var body *dom.Element
	for _, c := range root.Children {
		if e, ok := c.(*dom.Element); ok && e.Tag == "body" {
			body = e
			break
		}
	}
	if body == nil {
		return
	}
	for _, c := range body.Children {
		switch v := c.(type) {
		case *dom.Element:
			v.Reparent(owner)
		case *dom.Text:
			dom.NewText(v.Text, owner)
		}
	}
}

//go:embed runtime.js
var runtimeJS string

var frameIDCounter int64

func nextFrameID() int {
	return int(atomic.AddInt64(&frameIDCounter, 1))
}

// Host is the contract a frame.Frame satisfies so that package script
// never needs to import package frame (which itself owns a *Context),
// avoiding an import cycle.
type Host interface {
	Origin() string
	URLString() string
	Root() dom.Node
	Tab() TabHost
	ParentHost() (Host, bool)
	SetNeedsRender()
	Fetch(method, rawurl string, body []byte, sameOriginOnly bool) (status int, respBody []byte, err error)
	AllowsConnect(rawurl string) bool
	Navigate(rawurl string)
	// ScriptContext returns this frame's *Context once constructed (nil
	// beforehand), letting postMessage/getLocationHref/setLocationHref
	// resolve a target Host to its frame id without a type assertion.
	ScriptContext() *Context
}

// TabHost is the subset of tab behavior the script bridge needs:
// enumerating frames (for postMessage/querySelectorAll targeting) and
// scheduling callbacks back onto the tab's cooperative task queue.
type TabHost interface {
	Frames() []Host
	ScheduleTask(fn func())
}

// Context is one frame's JS execution context.
type Context struct {
	host    Host
	frameID int
	vm      *goja.Runtime

	mu            sync.Mutex
	discarded     bool
	nodeToHandle  map[dom.Node]int
	handleToNode  map[int]dom.Node
	nextHandle    int
}

// NewContext constructs a Context wired to host and evaluates runtime.js.
func NewContext(host Host) *Context {
	c := &Context{
		host:         host,
		frameID:      nextFrameID(),
		vm:           goja.New(),
		nodeToHandle: make(map[dom.Node]int),
		handleToNode: make(map[int]dom.Node),
	}
	c.export()
	if _, err := c.vm.RunString(runtimeJS); err != nil {
		fmt.Printf("runtime.js load error: %v\n", err)
	}
	c.initWindow()
	return c
}

func (c *Context) export() {
	must := func(name string, fn interface{}) {
		if err := c.vm.Set(name, fn); err != nil {
			panic(err)
		}
	}
	must("log", func(args ...interface{}) { fmt.Println(args...) })
	must("querySelectorAll", c.querySelectorAll)
	must("getAttribute", c.getAttribute)
	must("innerHTML_set", c.innerHTMLSet)
	must("XMLHttpRequest_send", c.xhrSend)
	must("setTimeout", c.setTimeout)
	must("postMessage", c.postMessage)
	must("getLocationHref", c.getLocationHref)
	must("setLocationHref", c.setLocationHref)
}

func (c *Context) initWindow() {
	c.vm.RunString(fmt.Sprintf("__initWindow(%d);", c.frameID))
	c.vm.RunString(fmt.Sprintf("window._setOrigin(%q);", c.host.Origin()))
	c.vm.RunString(fmt.Sprintf("__initDocument(%d);", c.frameID))
}

// SetupHierarchy wires window.parent/window.top, called once the tab has
// finished attaching this frame (mirrors setup_frame_hierarchy, invoked
// after iframe load rather than at construction since the parent chain
// isn't known yet at NewContext time for the root frame).
func (c *Context) SetupHierarchy() {
	if parent, ok := c.host.ParentHost(); ok && parent.ScriptContext() != nil {
		c.vm.RunString(fmt.Sprintf("window._setParent(%d);", parent.ScriptContext().frameID))
	} else {
		c.vm.RunString("window._setParent(null);")
	}
	top := c.host
	for {
		p, ok := top.ParentHost()
		if !ok {
			break
		}
		top = p
	}
	if top != c.host && top.ScriptContext() != nil {
		c.vm.RunString(fmt.Sprintf("window._setTop(%d);", top.ScriptContext().frameID))
	} else {
		c.vm.RunString("window._setTop(null);")
	}
}

// FrameID returns this context's bridge-visible frame identifier.
func (c *Context) FrameID() int { return c.frameID }

// Run evaluates code (the contents of a <script> tag named by script,
// used only for error reporting) and returns its result.
func (c *Context) Run(script, code string) (goja.Value, error) {
	v, err := c.vm.RunString(code)
	if err != nil {
		fmt.Printf("Script %s error: %v\n", script, err)
	}
	return v, err
}

// Discard marks the context inert: pending setTimeout/XHR callbacks that
// arrive after this point are dropped, mirroring self.discarded.
func (c *Context) Discard() {
	c.mu.Lock()
	c.discarded = true
	c.mu.Unlock()
}

func (c *Context) isDiscarded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discarded
}

// HandleFor returns the stable bridge handle for n, assigning one on
// first use — the public entry point callers (e.g. the tab's event
// dispatch) use to name a node before triggering dispatch_event.
func (c *Context) HandleFor(n dom.Node) int { return c.handleFor(n) }

func (c *Context) handleFor(n dom.Node) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.nodeToHandle[n]; ok {
		return h
	}
	h := c.nextHandle
	c.nextHandle++
	c.nodeToHandle[n] = h
	c.handleToNode[h] = n
	return h
}

func (c *Context) nodeFor(handle int) (dom.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.handleToNode[handle]
	return n, ok
}

func (c *Context) getAttribute(handle int, attr string) string {
	n, ok := c.nodeFor(handle)
	if !ok {
		return ""
	}
	e, ok := n.(*dom.Element)
	if !ok {
		return ""
	}
	return e.Attr(attr)
}

// querySelectorAll matches scripting/js_context.py's per-frame lookup:
// frameID names which frame's DOM to search (resolved against the
// tab's frame list, falling back to this context's own frame), and a
// cross-origin target is refused.
func (c *Context) querySelectorAll(frameID int, selectorText string) []int {
	target := c.host
	for _, t := range c.host.Tab().Frames() {
		if tc := t.ScriptContext(); tc != nil && tc.frameID == frameID {
			target = t
			break
		}
	}
	if target != c.host && target.Origin() != c.host.Origin() {
		fmt.Println("SecurityError: Blocked cross-origin access")
		return nil
	}

	sel, err := css.ParseSelector(selectorText)
	if err != nil {
		return nil
	}
	var handles []int
	for _, n := range dom.Flatten(target.Root()) {
		e, ok := n.(*dom.Element)
		if !ok {
			continue
		}
		if sel.Matches(e) {
			handles = append(handles, c.handleFor(e))
		}
	}
	return handles
}

func (c *Context) innerHTMLSet(handle int, value string) {
	n, ok := c.nodeFor(handle)
	if !ok {
		return
	}
	e, ok := n.(*dom.Element)
	if !ok {
		return
	}
	e.Children = nil
	parseFragment(value, e)
	c.host.SetNeedsRender()
}

func (c *Context) xhrSend(frameID int, method, rawurl string, data string, isAsync bool, handle int) interface{} {
	run := func() string {
		status, body, err := c.host.Fetch(method, rawurl, []byte(data), true)
		if status == 403 {
			return "403 Forbidden"
		}
		if err != nil || status >= 400 {
			return ""
		}
		return string(body)
	}
	if !c.host.AllowsConnect(rawurl) {
		return "403 Forbidden"
	}
	if !isAsync {
		out := run()
		c.dispatchXHROnload(out, handle)
		return out
	}
	go func() {
		out := run()
		c.host.Tab().ScheduleTask(func() { c.dispatchXHROnload(out, handle) })
	}()
	return nil
}

func (c *Context) dispatchXHROnload(body string, handle int) {
	if c.isDiscarded() {
		return
	}
	c.vm.RunString(fmt.Sprintf("__runXHROnload(%q, %d);", body, handle))
}

func (c *Context) setTimeout(handle int, delayMs float64) {
	time.AfterFunc(time.Duration(delayMs*float64(time.Millisecond)), func() {
		c.host.Tab().ScheduleTask(func() { c.dispatchSetTimeout(handle) })
	})
}

func (c *Context) dispatchSetTimeout(handle int) {
	if c.isDiscarded() {
		return
	}
	c.vm.RunString(fmt.Sprintf("__runSetTimeout(%d);", handle))
}

// postMessage resolves targetFrameID and delivers a MessageEvent to it.
func (c *Context) postMessage(targetFrameID int, message, targetOrigin string) {
	for _, target := range c.host.Tab().Frames() {
		tc := target.ScriptContext()
		if tc == nil || tc.frameID != targetFrameID {
			continue
		}
		if targetOrigin != "*" && target.Origin() != targetOrigin {
			return
		}
		sourceOrigin := c.host.Origin()
		tc.vm.RunString(fmt.Sprintf("__dispatchMessageEvent(%q, %q, %d);", message, sourceOrigin, c.frameID))
		return
	}
}

func (c *Context) getLocationHref(frameID int) string {
	for _, target := range c.host.Tab().Frames() {
		if tc := target.ScriptContext(); tc != nil && tc.frameID == frameID {
			return target.URLString()
		}
	}
	return c.host.URLString()
}

// setLocationHref is same-origin guarded: a frame may only navigate
// itself or a same-origin frame, matching the bridge's cross-origin
// write restriction on window.location.
func (c *Context) setLocationHref(frameID int, rawurl string) {
	for _, target := range c.host.Tab().Frames() {
		if tc := target.ScriptContext(); tc != nil && tc.frameID == frameID {
			if target != c.host && target.Origin() != c.host.Origin() {
				return
			}
			target.Navigate(rawurl)
			return
		}
	}
	c.host.Navigate(rawurl)
}
