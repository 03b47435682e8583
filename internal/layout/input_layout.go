package layout

import (
	"github.com/dsilverstone/browser/internal/dom"
	"github.com/dsilverstone/browser/internal/gfxfont"
	"github.com/dsilverstone/browser/internal/paint"
)

// InputLayout lays out a fixed-width <input>/<button> box, ported from
// layout/input_layout.py. Its content is the input's value attribute,
// or the button's single text child for <button>.
type InputLayout struct {
	node   *dom.Element
	parent *LineLayout
	prev   Box

	font       *gfxfont.Font
	x, y, w, h float64
}

func NewInputLayout(node *dom.Element, parent *LineLayout, prev Box) *InputLayout {
	weight, slant, sizePx := fontStyleOf(node.Style())
	return &InputLayout{node: node, parent: parent, prev: prev, font: gfxfont.Get(sizePx, weight, slant)}
}

func (i *InputLayout) setX(x float64) { i.x = x }
func (i *InputLayout) ascent() float64    { return i.font.Ascent() }
func (i *InputLayout) descent() float64   { return i.font.Descent() }
func (i *InputLayout) width() float64     { return inputWidthPx }
func (i *InputLayout) spaceWidth() float64 { return i.font.Measure(" ") }

func (i *InputLayout) setBaseline(baseline float64) {
	i.y = i.parent.Y() + baseline - i.font.Ascent()
}

func (i *InputLayout) Layout() {
	i.w = inputWidthPx
	i.h = i.font.Linespace()
}

func (i *InputLayout) X() float64 { return i.x }
func (i *InputLayout) Y() float64 { return i.y }
func (i *InputLayout) H() float64 { return i.h }

func (i *InputLayout) Rect() paint.Rect {
	return paint.NewRect(i.x, i.y, i.x+i.w, i.y+i.h)
}

func (i *InputLayout) ShouldPaint() bool { return true }

func (i *InputLayout) content() string {
	if i.node.Tag == "button" {
		return buttonText(i.node)
	}
	return i.node.Attr("value")
}

func (i *InputLayout) Paint() []paint.Command {
	var cmds []paint.Command
	bg := i.node.Style()["background-color"]
	if bg == "" {
		bg = "lightgray"
	}
	cmds = append(cmds, paint.DrawRect{Rect: i.Rect(), Color: bg})

	color := i.node.Style()["color"]
	if color == "" {
		color = "black"
	}
	cmds = append(cmds, paint.NewDrawText(i.x, i.y, i.content(), i.font, color))

	if i.node.IsFocused() {
		cursorX := i.x + i.font.Measure(i.content())
		cmds = append(cmds, paint.DrawLine{
			Rect:      paint.NewRect(cursorX, i.y, cursorX, i.y+i.h),
			Color:     "black",
			Thickness: 1,
		})
	}
	return cmds
}
