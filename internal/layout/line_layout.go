package layout

import (
	"github.com/dsilverstone/browser/internal/gfxfont"
	"github.com/dsilverstone/browser/internal/paint"
)

// LineLayout is one visual line within an inline-mode BlockLayout,
// holding TextLayout/InputLayout children and computing their shared
// baseline from the tallest child's ascent, ported from
// layout/line_layout.py.
type LineLayout struct {
	parent   *BlockLayout
	previous siblingBox
	Children []Box

	x, y, w, h float64
}

func NewLineLayout(parent *BlockLayout, previous siblingBox) *LineLayout {
	return &LineLayout{parent: parent, previous: previous}
}

func (l *LineLayout) X() float64 { return l.x }
func (l *LineLayout) Y() float64 { return l.y }
func (l *LineLayout) W() float64 { return l.w }
func (l *LineLayout) H() float64 { return l.h }

func (l *LineLayout) Rect() paint.Rect {
	return paint.NewRect(l.x, l.y, l.x+l.w, l.y+l.h)
}

func (l *LineLayout) ShouldPaint() bool { return true }

// metrics is implemented by TextLayout and InputLayout so LineLayout can
// compute a shared baseline without importing their concrete types.
type metrics interface {
	ascent() float64
	descent() float64
	setX(float64)
	setBaseline(float64)
}

func (l *LineLayout) Layout() {
	l.x = l.parent.X()
	l.w = l.parent.W()
	if l.previous != nil {
		l.y = l.previous.Y() + l.previous.H()
	} else {
		l.y = l.parent.Y()
	}

	if len(l.Children) == 0 {
		l.h = 1.25 * gfxfont.Get(12, "normal", "roman").Linespace()
		return
	}

	cursorX := l.x
	for _, c := range l.Children {
		m := c.(metrics)
		m.setX(cursorX)
		c.Layout()
		cursorX += widthOf(c) + spaceWidth(c)
	}

	maxAscent := 0.0
	for _, c := range l.Children {
		if a := c.(metrics).ascent(); a > maxAscent {
			maxAscent = a
		}
	}
	baseline := 1.25 * maxAscent

	maxDescent := 0.0
	for _, c := range l.Children {
		m := c.(metrics)
		m.setBaseline(baseline)
		if d := m.descent(); d > maxDescent {
			maxDescent = d
		}
	}

	l.h = 1.25 * (maxAscent + maxDescent)
}

func (l *LineLayout) Paint() []paint.Command {
	var cmds []paint.Command
	for _, c := range l.Children {
		cmds = append(cmds, c.Paint()...)
	}
	return cmds
}

func widthOf(b Box) float64 {
	type widther interface{ width() float64 }
	if w, ok := b.(widther); ok {
		return w.width()
	}
	return 0
}

func spaceWidth(b Box) float64 {
	type spacer interface{ spaceWidth() float64 }
	if s, ok := b.(spacer); ok {
		return s.spaceWidth()
	}
	return 0
}
