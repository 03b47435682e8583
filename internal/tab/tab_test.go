package tab

import (
	"testing"

	"github.com/dsilverstone/browser/internal/config"
	"github.com/dsilverstone/browser/internal/dom"
	"github.com/dsilverstone/browser/internal/netstack"
	"github.com/dsilverstone/browser/internal/testutil"
)

// fakeBrowser records the commits a Tab hands back, standing in for
// package browser without importing it (avoiding the import cycle
// tab.BrowserLink exists to prevent).
type fakeBrowser struct {
	mu      chan struct{}
	commits []CommitData
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{mu: make(chan struct{}, 1)}
}

func (f *fakeBrowser) OnTabCommit(data CommitData) {
	f.commits = append(f.commits, data)
	select {
	case f.mu <- struct{}{}:
	default:
	}
}

func newTestTab(t *testing.T) (*Tab, *fakeBrowser, *testutil.TestServer) {
	t.Helper()
	srv := testutil.NewTestServer()
	t.Cleanup(srv.Close)
	srv.BuildTestSite()

	cfg := config.DefaultConfig()
	jar := netstack.NewCookieJar()
	cache := netstack.NewResponseCache(cfg.ResponseCacheSize)
	client := netstack.NewClient(cfg.UserAgent, jar, cache, cfg.RequestTimeout)
	pool := netstack.NewWorkerPool(client, cfg.NetworkWorkers)
	t.Cleanup(pool.Shutdown)

	fb := newFakeBrowser()
	tb := New(fb, 800, 600, client, pool, cfg)
	return tb, fb, srv
}

func TestTabLoadRendersDocument(t *testing.T) {
	tb, _, srv := newTestTab(t)

	tb.Load(srv.URL()+"/", nil)

	testutil.Assert(t, tb.URL()).Equals(srv.URL() + "/")
	testutil.Assert(t, tb.DisplayList()).IsNotEmpty()
}

func TestTabClickFollowsLink(t *testing.T) {
	tb, _, srv := newTestTab(t)
	tb.Load(srv.URL()+"/", nil)

	rf := tb.RootFrame()
	testutil.Assert(t, rf).IsNotNil()
	doc := rf.Document()
	testutil.Assert(t, doc).IsNotNil()

	// Hunt for the "About" link's layout position by walking down the
	// left margin; the page is small enough that the link sits on one
	// of the first few lines below the heading.
	found := false
	for y := 0.0; y < 400 && !found; y += 4 {
		tb.click(doc.X()+2, y)
		if tb.URL() == srv.URL()+"/about" {
			found = true
		}
	}
	testutil.Assert(t, found).IsTrue()
}

func TestTabSubmitFormAndGoBack(t *testing.T) {
	tb, _, srv := newTestTab(t)
	srv.AddPage("/submit", `<!DOCTYPE html><html><body><h1>Submitted</h1></body></html>`)

	tb.Load(srv.URL()+"/products/1", nil)
	testutil.Assert(t, tb.URL()).Equals(srv.URL() + "/products/1")

	rf := tb.RootFrame()

	// submitForm is exercised directly: finding the form element via
	// the frame's document and invoking submitForm mirrors how click()
	// dispatches to it for a <button> inside a <form>.
	doc := rf.Document()
	testutil.Assert(t, doc).IsNotNil()

	node := findForm(doc.Node)
	testutil.Assert(t, node).IsNotNil()

	tb.submitForm(rf, node)
	testutil.Assert(t, tb.URL()).Equals(srv.URL() + "/submit")

	tb.goBack()
	testutil.Assert(t, tb.URL()).Equals(srv.URL() + "/products/1")

	if got := srv.GetHits("/submit"); got != 1 {
		t.Fatalf("expected exactly one hit on /submit, got %d", got)
	}
}

func TestTabResizeMarksNeedsRender(t *testing.T) {
	tb, _, srv := newTestTab(t)
	tb.Load(srv.URL()+"/", nil)

	tb.resize(1024, 768)
	testutil.Assert(t, tb.width).Equals(1024.0)
	testutil.Assert(t, tb.height).Equals(768.0)
	testutil.Assert(t, tb.needsRender).IsTrue()
}

// findForm walks the DOM tree rooted at n for the first <form> element.
func findForm(n dom.Node) *dom.Element {
	for _, node := range dom.Flatten(n) {
		if e, ok := node.(*dom.Element); ok && e.Tag == "form" {
			return e
		}
	}
	return nil
}
