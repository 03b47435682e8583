package layout

import (
	"github.com/dsilverstone/browser/internal/dom"
	"github.com/dsilverstone/browser/internal/gfxfont"
	"github.com/dsilverstone/browser/internal/paint"
)

// TextLayout is a single word positioned on a LineLayout, ported from
// layout/text_layout.py.
type TextLayout struct {
	node   *dom.Text
	Word   string
	parent *LineLayout
	prev   Box

	font *gfxfont.Font
	x, y, w, h float64
}

func NewTextLayout(node *dom.Text, word string, parent *LineLayout, prev Box) *TextLayout {
	weight, slant, sizePx := fontStyleOf(node.Style())
	return &TextLayout{
		node: node, Word: word, parent: parent, prev: prev,
		font: gfxfont.Get(sizePx, weight, slant),
	}
}

func (t *TextLayout) setX(x float64) { t.x = x }
func (t *TextLayout) ascent() float64  { return t.font.Ascent() }
func (t *TextLayout) descent() float64 { return t.font.Descent() }
func (t *TextLayout) width() float64   { return t.font.Measure(t.Word) }
func (t *TextLayout) spaceWidth() float64 { return t.font.Measure(" ") }

func (t *TextLayout) setBaseline(baseline float64) {
	t.y = t.parent.Y() + baseline - t.font.Ascent()
}

func (t *TextLayout) Layout() {
	t.w = t.font.Measure(t.Word)
	t.h = t.font.Linespace()
}

func (t *TextLayout) X() float64 { return t.x }
func (t *TextLayout) Y() float64 { return t.y }
func (t *TextLayout) H() float64 { return t.h }

func (t *TextLayout) Rect() paint.Rect {
	return paint.NewRect(t.x, t.y, t.x+t.w, t.y+t.h)
}

func (t *TextLayout) ShouldPaint() bool { return true }

func (t *TextLayout) Paint() []paint.Command {
	color := t.node.Style()["color"]
	if color == "" {
		color = "black"
	}
	return []paint.Command{paint.NewDrawText(t.x, t.y, t.Word, t.font, color)}
}
