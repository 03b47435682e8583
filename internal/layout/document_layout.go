package layout

import (
	"github.com/dsilverstone/browser/internal/dom"
	"github.com/dsilverstone/browser/internal/paint"
)

// DocumentLayout is the root of the layout tree: a single BlockLayout
// child inset by the fixed HSTEP/VSTEP margins, ported from
// layout/document_layout.py.
type DocumentLayout struct {
	Node  dom.Node
	Width float64
	HStep float64
	VStep float64

	child *BlockLayout
	x, y  float64
	w, h  float64
}

func NewDocumentLayout(node dom.Node, width, hstep, vstep float64) *DocumentLayout {
	return &DocumentLayout{Node: node, Width: width, HStep: hstep, VStep: vstep}
}

func (d *DocumentLayout) Layout() {
	child := NewBlockLayout(d.Node, d, nil)
	d.child = child
	d.x = d.HStep
	d.y = d.VStep
	d.w = d.Width - 2*d.HStep
	child.Layout()
	d.h = child.h
}

func (d *DocumentLayout) Paint() []paint.Command {
	if d.child == nil {
		return nil
	}
	return d.child.Paint()
}

func (d *DocumentLayout) ShouldPaint() bool { return true }

func (d *DocumentLayout) Rect() paint.Rect {
	return paint.NewRect(d.x, d.y, d.x+d.w, d.y+d.h)
}

func (d *DocumentLayout) Height() float64 { return d.h }
func (d *DocumentLayout) X() float64      { return d.x }
func (d *DocumentLayout) Y() float64      { return d.y }
func (d *DocumentLayout) W() float64      { return d.w }
