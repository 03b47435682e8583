// Package layout implements the layout tree parallel to the DOM:
// DocumentLayout, BlockLayout, LineLayout, TextLayout, InputLayout,
// and IFrameLayout boxes, each computing its own geometry from its
// parent and previous sibling.
package layout

import (
	"github.com/dsilverstone/browser/internal/dom"
	"github.com/dsilverstone/browser/internal/paint"
)

// Box is implemented by every layout node. Geometry fields are
// finalized only after Layout() returns.
type Box interface {
	Layout()
	Paint() []paint.Command
	ShouldPaint() bool
	Rect() paint.Rect
	H() float64
}

const inputWidthPx = 200.0

// parentBox is the geometry contract a layout node needs from whatever
// contains it (DocumentLayout or a BlockLayout), matching the duck-typed
// self.parent.x/.y/.width access in the original's layout classes.
type parentBox interface {
	X() float64
	Y() float64
	W() float64
}

// siblingBox is the geometry contract needed from a previous sibling to
// stack block boxes vertically.
type siblingBox interface {
	Y() float64
	H() float64
}

var blockElements = map[string]bool{
	"html": true, "body": true, "article": true, "section": true, "nav": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "hgroup": true, "header": true,
	"footer": true, "address": true, "p": true, "hr": true, "pre": true, "blockquote": true,
	"ol": true, "ul": true, "menu": true, "li": true, "dl": true, "dt": true, "dd": true, "figure": true,
	"figcaption": true, "main": true, "div": true, "table": true, "form": true, "fieldset": true,
	"legend": true, "details": true, "summary": true,
}

func fontStyleOf(style map[string]string) (weight, slant string, sizePx int) {
	weight = style["font-weight"]
	if weight == "" {
		weight = "normal"
	}
	s := style["font-style"]
	switch s {
	case "oblique":
		slant = "italic"
	case "", "normal":
		slant = "roman"
	default:
		slant = s
	}
	fs := style["font-size"]
	sizePx = 16
	if fs != "" {
		sizePx = int(pxValue(fs) * 0.75)
	}
	return
}

func pxValue(s string) float64 {
	n := 0.0
	fracDigits := 0
	inFrac := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			inFrac = true
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		d := float64(c - '0')
		if inFrac {
			fracDigits++
			n += d / pow10(fracDigits)
		} else {
			n = n*10 + d
		}
	}
	return n
}

func pow10(n int) float64 {
	v := 1.0
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

// wordsOf splits text on whitespace, matching Python's str.split().
func wordsOf(text string) []string {
	var words []string
	cur := make([]byte, 0, len(text))
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			flush()
		} else {
			cur = append(cur, c)
		}
	}
	flush()
	return words
}

func buttonText(e *dom.Element) string {
	if len(e.Children) == 1 {
		if t, ok := e.Children[0].(*dom.Text); ok {
			return t.Text
		}
	}
	return ""
}
