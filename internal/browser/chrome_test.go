package browser

import (
	"testing"

	"github.com/dsilverstone/browser/internal/paint"
	"github.com/dsilverstone/browser/internal/testutil"
)

// newTestBrowserShell builds a Browser with just enough state for
// Chrome's geometry and input handling to exercise, bypassing
// NewBrowser's fyne window setup entirely (package-internal test, so
// the unexported fields are reachable directly).
func newTestBrowserShell(width, height float64) *Browser {
	b := &Browser{width: width, height: height}
	b.chrome = NewChrome(b)
	return b
}

func midpoint(r paint.Rect) (x, y float64) {
	return (r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2
}

func TestNewChromeGeometry(t *testing.T) {
	b := newTestBrowserShell(800, 600)
	c := b.chrome

	testutil.Assert(t, c.newTabRect.Left > 0).IsTrue()
	testutil.Assert(t, c.backRect.Top >= c.newTabRect.Bottom).IsTrue()
	testutil.Assert(t, c.addressRect.Left >= c.backRect.Right).IsTrue()

	if c.addressRect.Right != 800-c.padding {
		t.Fatalf("expected address bar right edge at %v, got %v", 800-c.padding, c.addressRect.Right)
	}
	if c.tabbarBottom != c.urlbarTop {
		t.Fatalf("expected tabbar to end where the url bar starts, got %v vs %v", c.tabbarBottom, c.urlbarTop)
	}
	if c.Bottom() != c.urlbarBottom {
		t.Fatalf("expected Bottom() to report the url bar's bottom edge")
	}
}

func TestChromePaintWithNoTabs(t *testing.T) {
	b := newTestBrowserShell(800, 600)
	cmds := b.chrome.Paint()
	testutil.Assert(t, cmds).IsNotEmpty()
}

func TestChromeAddressBarFocusAndTyping(t *testing.T) {
	b := newTestBrowserShell(800, 600)
	c := b.chrome

	x, y := midpoint(c.addressRect)
	c.Click(x, y)
	testutil.Assert(t, c.focus).Equals("address bar")

	testutil.Assert(t, c.Keypress("h")).IsTrue()
	testutil.Assert(t, c.Keypress("i")).IsTrue()
	testutil.Assert(t, c.addressBar).Equals("hi")

	testutil.Assert(t, c.Backspace()).IsTrue()
	testutil.Assert(t, c.addressBar).Equals("h")

	c.Blur()
	testutil.Assert(t, c.focus).Equals("")
	testutil.Assert(t, c.Keypress("x")).IsFalse()
}

func TestChromeEnterWithNoActiveTabIsNoop(t *testing.T) {
	b := newTestBrowserShell(800, 600)
	c := b.chrome

	x, y := midpoint(c.addressRect)
	c.Click(x, y)
	c.Keypress("x")
	c.Enter()

	testutil.Assert(t, c.focus).Equals("")
}

func TestChromeClickBackButtonWithNoActiveTabIsNoop(t *testing.T) {
	b := newTestBrowserShell(800, 600)
	c := b.chrome

	x, y := midpoint(c.backRect)
	c.Click(x, y)
	testutil.Assert(t, b.ActiveTab()).IsNil()
}
