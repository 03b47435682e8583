package layout

import (
	"strconv"

	"github.com/dsilverstone/browser/internal/dom"
	"github.com/dsilverstone/browser/internal/paint"
)

const (
	defaultIFrameWidth  = 300.0
	defaultIFrameHeight = 150.0
)

// IFrameLayout lays out a fixed-size <iframe> box and reports its final
// rect back to the element's attached child frame (if any) so the frame
// can translate+clip its own paint into this box.
type IFrameLayout struct {
	node   *dom.Element
	parent *LineLayout
	prev   Box

	w, h, x, y float64
}

func NewIFrameLayout(node *dom.Element, parent *LineLayout, prev Box) *IFrameLayout {
	return &IFrameLayout{
		node: node, parent: parent, prev: prev,
		w: attrPx(node, "width", defaultIFrameWidth),
		h: attrPx(node, "height", defaultIFrameHeight),
	}
}

func attrPx(e *dom.Element, attr string, def float64) float64 {
	v := e.Attr(attr)
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return n
}

func (i *IFrameLayout) setX(x float64) { i.x = x }
func (i *IFrameLayout) ascent() float64    { return i.h }
func (i *IFrameLayout) descent() float64   { return 0 }
func (i *IFrameLayout) width() float64     { return i.w }
func (i *IFrameLayout) spaceWidth() float64 { return 0 }

func (i *IFrameLayout) setBaseline(baseline float64) {
	i.y = i.parent.Y() + baseline - i.h
	if setter, ok := i.node.ChildFrame.(paint.IFrameRectSetter); ok {
		setter.SetIFrameRect(i.Rect())
	}
}

func (i *IFrameLayout) Layout() {}

func (i *IFrameLayout) X() float64 { return i.x }
func (i *IFrameLayout) Y() float64 { return i.y }
func (i *IFrameLayout) H() float64 { return i.h }

func (i *IFrameLayout) Rect() paint.Rect {
	return paint.NewRect(i.x, i.y, i.x+i.w, i.y+i.h)
}

func (i *IFrameLayout) ShouldPaint() bool { return false }

func (i *IFrameLayout) Paint() []paint.Command { return nil }
