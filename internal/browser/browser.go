// Package browser wires a Chrome, a Compositor, and a set of
// independently-running tab.Tab loops together behind a single fyne
// window, ported from core/browser.py.
package browser

import (
	"image"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/dsilverstone/browser/internal/config"
	"github.com/dsilverstone/browser/internal/netstack"
	"github.com/dsilverstone/browser/internal/tab"
	"github.com/dsilverstone/browser/internal/trace"
)

// Browser owns the tab set, the shared network stack, the chrome, the
// compositor, and the fyne window that displays the composited frame.
type Browser struct {
	cfg    *config.EngineConfig
	client *netstack.Client
	pool   *netstack.WorkerPool

	fyneApp fyne.App
	window  fyne.Window
	view    *engineView

	chrome     *Chrome
	compositor *Compositor

	mu            sync.Mutex
	width, height float64
	tabs          []*tab.Tab
	activeTab     *tab.Tab
	focus         string // "" or "content"

	activeCommit      *tab.CommitData
	chromeNeedsRaster bool
	tabNeedsRaster    bool

	commitCh chan tab.CommitData
	done     chan struct{}
}

// NewBrowser constructs a Browser with a fresh network stack and an
// empty tab set, using cfg's viewport dimensions as the initial window
// size.
func NewBrowser(cfg *config.EngineConfig) *Browser {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	jar := netstack.NewCookieJar()
	cache := netstack.NewResponseCache(cfg.ResponseCacheSize)
	client := netstack.NewClient(cfg.UserAgent, jar, cache, cfg.RequestTimeout)
	pool := netstack.NewWorkerPool(client, cfg.NetworkWorkers)

	b := &Browser{
		cfg:      cfg,
		client:   client,
		pool:     pool,
		width:    float64(cfg.ViewportWidth),
		height:   float64(cfg.ViewportHeight),
		commitCh: make(chan tab.CommitData, 32),
		done:     make(chan struct{}),
	}

	b.chrome = NewChrome(b)
	b.compositor = NewCompositor(int(b.width), int(b.height))

	b.fyneApp = app.New()
	b.window = b.fyneApp.NewWindow("Browser Engine")
	b.window.Resize(fyne.NewSize(float32(b.width), float32(b.height)))

	b.view = newEngineView(b)
	b.window.SetContent(b.view)

	b.window.Canvas().SetOnTypedRune(b.handleTextInputRune)
	b.window.Canvas().SetOnTypedKey(b.handleKeyDown)

	return b
}

// Width returns the browser's current pixel width.
func (b *Browser) Width() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width
}

// Tabs returns a snapshot of the open tab list.
func (b *Browser) Tabs() []*tab.Tab {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*tab.Tab(nil), b.tabs...)
}

// ActiveTab returns the currently focused tab, or nil if none is open.
func (b *Browser) ActiveTab() *tab.Tab {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.activeTab
}

// SetActiveTab switches the active tab, e.g. in response to a chrome
// tab-strip click.
func (b *Browser) SetActiveTab(t *tab.Tab) {
	b.mu.Lock()
	b.activeTab = t
	b.activeCommit = nil
	b.chromeNeedsRaster = true
	b.tabNeedsRaster = true
	b.mu.Unlock()
	b.submitToCompositor()
}

// ActiveCommit returns the active tab's last committed render data, or
// nil before its first commit.
func (b *Browser) ActiveCommit() *tab.CommitData {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.activeCommit
}

// NewTab opens url in a freshly started tab and makes it active,
// ported from Browser.new_tab.
func (b *Browser) NewTab(rawurl string) {
	b.mu.Lock()
	contentHeight := b.height - b.chrome.Bottom()
	width := b.width
	b.mu.Unlock()

	t := tab.New(b, width, contentHeight, b.client, b.pool, b.cfg)

	b.mu.Lock()
	b.tabs = append(b.tabs, t)
	b.activeTab = t
	b.chromeNeedsRaster = true
	b.mu.Unlock()

	go t.Run()
	t.PostEvent(tab.Event{Type: tab.EventLoad, URL: rawurl})

	b.submitToCompositor()
}

// OnTabCommit implements tab.BrowserLink, handing a committed render
// snapshot to the main commit queue so it is only ever applied from
// the browser's own loop, matching MainThread._commit posting to
// browser_commit_queue.
func (b *Browser) OnTabCommit(data tab.CommitData) {
	select {
	case b.commitCh <- data:
	default:
		// Drop rather than block the tab loop; a later commit from
		// the same tab supersedes this one anyway.
	}
}

func (b *Browser) processCommits() {
	for {
		select {
		case data := <-b.commitCh:
			b.applyCommit(data)
		default:
			return
		}
	}
}

func (b *Browser) applyCommit(data tab.CommitData) {
	b.mu.Lock()
	active := b.activeTab
	b.mu.Unlock()
	if active == nil || data.TabID != active.ID() {
		return
	}
	b.mu.Lock()
	b.activeCommit = &data
	b.chromeNeedsRaster = true
	b.tabNeedsRaster = true
	b.mu.Unlock()
	b.submitToCompositor()
}

func (b *Browser) submitToCompositor() {
	b.mu.Lock()
	commit := b.activeCommit
	chromeChanged := b.chromeNeedsRaster
	tabChanged := b.tabNeedsRaster
	width, height := b.width, b.height
	b.chromeNeedsRaster = false
	b.tabNeedsRaster = false
	b.mu.Unlock()

	data := CompositorData{
		ChromeCommands: b.chrome.Paint(),
		ChromeHeight:   b.chrome.Bottom(),
		Width:          int(width),
		Height:         int(height),
		ChromeChanged:  chromeChanged,
		TabChanged:     tabChanged,
	}
	if commit != nil {
		data.DisplayList = commit.DisplayList
		data.DocumentHeight = commit.DocumentHeight
		data.Scroll = commit.Scroll
	}
	b.compositor.Submit(data)
}

// handleClick routes a click either to the chrome (above its bottom
// edge) or, adjusted into content coordinates, to the active tab,
// matching Browser.handle_click.
func (b *Browser) handleClick(x, y float64) {
	if y < b.chrome.Bottom() {
		b.mu.Lock()
		b.focus = ""
		b.mu.Unlock()
		b.chrome.Click(x, y)
		b.mu.Lock()
		b.chromeNeedsRaster = true
		b.mu.Unlock()
		b.submitToCompositor()
		return
	}

	b.mu.Lock()
	b.focus = "content"
	b.mu.Unlock()
	b.chrome.Blur()

	if active := b.ActiveTab(); active != nil {
		active.PostEvent(tab.Event{Type: tab.EventClick, X: x, Y: y - b.chrome.Bottom()})
	}
}

// handleScroll translates a mouse-wheel delta into an absolute scroll
// position clamped to the document's scrollable range, matching
// Browser.handle_scroll / Browser.handle_down's clamping.
func (b *Browser) handleScroll(deltaY float64) {
	active := b.ActiveTab()
	if active == nil {
		return
	}
	commit := b.ActiveCommit()
	if commit == nil {
		return
	}
	step := float64(100)
	if b.cfg != nil && b.cfg.ScrollStep > 0 {
		step = float64(b.cfg.ScrollStep)
	}

	b.mu.Lock()
	vh := b.height - b.chrome.Bottom()
	b.mu.Unlock()

	maxScroll := math.Max(0, commit.DocumentHeight-vh)
	newScroll := math.Max(0, math.Min(commit.Scroll-deltaY*step, maxScroll))
	active.PostEvent(tab.Event{Type: tab.EventScrollTo, Scroll: newScroll})
}

func (b *Browser) handleDown() {
	if active := b.ActiveTab(); active != nil {
		active.PostEvent(tab.Event{Type: tab.EventScrollDown})
	}
}

func (b *Browser) handleUp() {
	if active := b.ActiveTab(); active != nil {
		active.PostEvent(tab.Event{Type: tab.EventScrollUp})
	}
}

func (b *Browser) handleReturn() {
	b.chrome.Enter()
	b.mu.Lock()
	b.chromeNeedsRaster = true
	b.mu.Unlock()
	b.submitToCompositor()
}

func (b *Browser) handleBackspace() {
	if b.chrome.Backspace() {
		b.mu.Lock()
		b.chromeNeedsRaster = true
		b.mu.Unlock()
		b.submitToCompositor()
		return
	}
	b.mu.Lock()
	focus := b.focus
	b.mu.Unlock()
	if focus == "content" {
		if active := b.ActiveTab(); active != nil {
			active.PostEvent(tab.Event{Type: tab.EventBackspace})
		}
	}
}

func (b *Browser) handleTextInputRune(r rune) {
	if r < 0x20 || r >= 0x7F {
		return
	}
	char := string(r)
	if b.chrome.Keypress(char) {
		b.mu.Lock()
		b.chromeNeedsRaster = true
		b.mu.Unlock()
		b.submitToCompositor()
		return
	}
	b.mu.Lock()
	focus := b.focus
	b.mu.Unlock()
	if focus == "content" {
		if active := b.ActiveTab(); active != nil {
			active.PostEvent(tab.Event{Type: tab.EventKeypress, Char: char})
		}
	}
}

func (b *Browser) handleKeyDown(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyDown:
		b.handleDown()
	case fyne.KeyUp:
		b.handleUp()
	case fyne.KeyReturn, fyne.KeyEnter:
		b.handleReturn()
	case fyne.KeyBackspace:
		b.handleBackspace()
	}
}

func (b *Browser) handleGoBack() {
	if active := b.ActiveTab(); active != nil {
		active.PostEvent(tab.Event{Type: tab.EventGoBack})
	}
}

func (b *Browser) handleLoad(rawurl string) {
	if active := b.ActiveTab(); active != nil {
		active.PostEvent(tab.Event{Type: tab.EventLoad, URL: rawurl})
	}
}

// handleResize updates the browser and compositor dimensions and
// forwards the new content height to the active tab, matching
// Browser.handle_resize.
func (b *Browser) handleResize(width, height float64) {
	b.mu.Lock()
	b.width, b.height = width, height
	contentHeight := height - b.chrome.Bottom()
	b.chromeNeedsRaster = true
	b.mu.Unlock()

	b.compositor.Resize(int(width), int(height))

	if active := b.ActiveTab(); active != nil {
		active.PostEvent(tab.Event{Type: tab.EventResize, Width: width, Height: contentHeight})
	}
	b.submitToCompositor()
}

// Quit closes the browser window, unblocking Run.
func (b *Browser) Quit() {
	b.fyneApp.Quit()
}

func (b *Browser) generateFrame(w, h int) image.Image {
	return b.compositor.Frame()
}

// Run starts the compositor and a 60Hz UI refresh loop, then blocks in
// the fyne event loop until the window closes.
func (b *Browser) Run() {
	go b.compositor.Run()

	go func() {
		ticker := time.NewTicker(time.Second / 60)
		defer ticker.Stop()
		for {
			select {
			case <-b.done:
				return
			case <-ticker.C:
				b.processCommits()
				if b.view != nil {
					b.view.Refresh()
				}
			}
		}
	}()

	b.window.ShowAndRun()
	b.cleanup()
}

func (b *Browser) cleanup() {
	close(b.done)
	b.compositor.Stop()

	b.mu.Lock()
	tabs := append([]*tab.Tab(nil), b.tabs...)
	b.mu.Unlock()
	for _, t := range tabs {
		t.Stop()
	}
	b.pool.Shutdown()
	trace.Get().Finish()
}

// engineView is the fyne widget that displays the compositor's latest
// composited frame and forwards pointer, scroll and resize events to
// the owning Browser.
type engineView struct {
	widget.BaseWidget
	browser *Browser
}

func newEngineView(b *Browser) *engineView {
	v := &engineView{browser: b}
	v.ExtendBaseWidget(v)
	return v
}

func (v *engineView) CreateRenderer() fyne.WidgetRenderer {
	raster := canvas.NewRaster(v.browser.generateFrame)
	return widget.NewSimpleRenderer(raster)
}

func (v *engineView) Tapped(e *fyne.PointEvent) {
	v.browser.handleClick(float64(e.Position.X), float64(e.Position.Y))
}

func (v *engineView) Scrolled(e *fyne.ScrollEvent) {
	v.browser.handleScroll(float64(e.Scrolled.DY))
}

func (v *engineView) Resize(size fyne.Size) {
	v.BaseWidget.Resize(size)
	v.browser.handleResize(float64(size.Width), float64(size.Height))
}
