package browser

import (
	"fmt"

	"github.com/dsilverstone/browser/internal/gfxfont"
	"github.com/dsilverstone/browser/internal/paint"
)

// Chrome is the browser's fixed UI surface: the tab strip, the new-tab
// button, the back button and the address bar, ported from
// ui/chrome.py. All of its geometry is computed once from font metrics
// rather than recomputed per paint.
type Chrome struct {
	browser *Browser

	font       *gfxfont.Font
	fontHeight float64
	padding    float64
	width      float64 // captured at construction, like the original's module-level WIDTH used for the address bar's right edge

	tabbarTop, tabbarBottom float64
	newTabRect              paint.Rect

	urlbarTop, urlbarBottom, bottom float64
	backRect, addressRect           paint.Rect

	focus      string // "" or "address bar"
	addressBar string
}

// NewChrome lays out the chrome against b's current width.
func NewChrome(b *Browser) *Chrome {
	c := &Chrome{
		browser: b,
		font:    gfxfont.Get(20, "normal", "roman"),
		padding: 5,
		width:   b.Width(),
	}
	c.fontHeight = c.font.Linespace()

	c.tabbarTop = 0
	c.tabbarBottom = c.fontHeight + 2*c.padding
	plusWidth := c.font.Measure("+") + 2*c.padding
	c.newTabRect = paint.NewRect(c.padding, c.padding, c.padding+plusWidth, c.padding+c.fontHeight)

	c.urlbarTop = c.tabbarBottom
	c.urlbarBottom = c.urlbarTop + c.fontHeight + 2*c.padding
	c.bottom = c.urlbarBottom

	backWidth := c.font.Measure("<") + 2*c.padding
	c.backRect = paint.NewRect(c.padding, c.urlbarTop+c.padding, c.padding+backWidth, c.urlbarBottom-c.padding)
	c.addressRect = paint.NewRect(c.backRect.Right+c.padding, c.urlbarTop+c.padding, c.width-c.padding, c.urlbarBottom-c.padding)

	return c
}

// Bottom is the y-coordinate where the chrome ends and tab content
// begins.
func (c *Chrome) Bottom() float64 { return c.bottom }

func (c *Chrome) tabRect(i int) paint.Rect {
	tabsStart := c.newTabRect.Right + c.padding
	tabWidth := c.font.Measure("Tab X") + 2*c.padding
	return paint.NewRect(
		tabsStart+tabWidth*float64(i), c.tabbarTop,
		tabsStart+tabWidth*float64(i+1), c.tabbarBottom,
	)
}

// Paint builds the chrome's display list fresh each call, matching
// chrome.py's paint().
func (c *Chrome) Paint() []paint.Command {
	var cmds []paint.Command
	width := c.browser.Width()

	cmds = append(cmds,
		paint.DrawRect{Rect: paint.NewRect(0, 0, width, c.bottom), Color: "white"},
		paint.DrawLine{Rect: paint.NewRect(0, c.bottom, width, c.bottom), Color: "black", Thickness: 1},
		paint.DrawOutline{Rect: c.newTabRect, Color: "black", Thickness: 1},
		paint.NewDrawText(c.newTabRect.Left+c.padding, c.newTabRect.Top, "+", c.font, "black"),
	)

	tabs := c.browser.Tabs()
	active := c.browser.ActiveTab()
	for i, t := range tabs {
		bounds := c.tabRect(i)
		cmds = append(cmds,
			paint.DrawLine{Rect: paint.NewRect(bounds.Left, 0, bounds.Left, bounds.Bottom), Color: "black", Thickness: 1},
			paint.NewDrawText(bounds.Left+c.padding, bounds.Top+c.padding, fmt.Sprintf("Tab %d", i), c.font, "black"),
		)
		if t == active {
			cmds = append(cmds,
				paint.DrawLine{Rect: paint.NewRect(0, bounds.Bottom, bounds.Left, bounds.Bottom), Color: "black", Thickness: 1},
				paint.DrawLine{Rect: paint.NewRect(bounds.Right, bounds.Bottom, width, bounds.Bottom), Color: "black", Thickness: 1},
			)
		}
	}

	cmds = append(cmds,
		paint.DrawOutline{Rect: c.backRect, Color: "black", Thickness: 1},
		paint.NewDrawText(c.backRect.Left+c.padding, c.backRect.Top, "<", c.font, "black"),
		paint.DrawOutline{Rect: c.addressRect, Color: "black", Thickness: 1},
	)

	if c.focus == "address bar" {
		cmds = append(cmds, paint.NewDrawText(c.addressRect.Left+c.padding, c.addressRect.Top, c.addressBar, c.font, "black"))
		w := c.font.Measure(c.addressBar)
		cmds = append(cmds, paint.DrawLine{
			Rect:      paint.NewRect(c.addressRect.Left+c.padding+w, c.addressRect.Top, c.addressRect.Left+c.padding+w, c.addressRect.Bottom),
			Color:     "red",
			Thickness: 1,
		})
	} else {
		url := ""
		if commit := c.browser.ActiveCommit(); commit != nil {
			url = commit.URL
		}
		cmds = append(cmds, paint.NewDrawText(c.addressRect.Left+c.padding, c.addressRect.Top, url, c.font, "black"))
	}
	return cmds
}

// Click dispatches a chrome-region click to the new-tab button, the
// back button, the address bar, or a tab, in that order.
func (c *Chrome) Click(x, y float64) {
	switch {
	case c.newTabRect.ContainsPoint(x, y):
		c.browser.NewTab("about:blank")
	case c.backRect.ContainsPoint(x, y):
		c.browser.handleGoBack()
	case c.addressRect.ContainsPoint(x, y):
		c.focus = "address bar"
		c.addressBar = ""
	default:
		for i, t := range c.browser.Tabs() {
			if c.tabRect(i).ContainsPoint(x, y) {
				c.browser.SetActiveTab(t)
				return
			}
		}
	}
}

// Keypress appends char to the address bar if it has focus, reporting
// whether it consumed the keystroke.
func (c *Chrome) Keypress(char string) bool {
	if c.focus != "address bar" {
		return false
	}
	c.addressBar += char
	return true
}

// Backspace removes the last rune of the address bar if it has focus.
func (c *Chrome) Backspace() bool {
	if c.focus != "address bar" || len(c.addressBar) == 0 {
		return false
	}
	r := []rune(c.addressBar)
	c.addressBar = string(r[:len(r)-1])
	return true
}

// Enter submits the address bar as a navigation and drops focus.
func (c *Chrome) Enter() {
	if c.focus != "address bar" {
		return
	}
	c.focus = ""
	c.browser.handleLoad(c.addressBar)
}

// Blur drops address-bar focus without submitting, matching a click
// outside the bar.
func (c *Chrome) Blur() { c.focus = "" }
