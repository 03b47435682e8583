package layout

import (
	"github.com/dsilverstone/browser/internal/dom"
	"github.com/dsilverstone/browser/internal/gfxfont"
	"github.com/dsilverstone/browser/internal/paint"
)

// BlockLayout is a box laid out either in "block" mode (stacking its
// element children vertically, one BlockLayout per child) or "inline"
// mode (flowing text/input content into LineLayouts), the mode decided
// by layoutMode exactly as block_layout.py's layout_mode does.
type BlockLayout struct {
	Node     dom.Node
	parent   parentBox
	previous siblingBox

	Children []Box

	x, y, w, h float64

	// cursorX tracks the running inline-mode x offset while recurse
	// walks the element's descendants, reset at the start of layoutInline.
	cursorX float64
	line    *LineLayout
}

func NewBlockLayout(node dom.Node, parent parentBox, previous siblingBox) *BlockLayout {
	return &BlockLayout{Node: node, parent: parent, previous: previous}
}

func (b *BlockLayout) X() float64 { return b.x }
func (b *BlockLayout) Y() float64 { return b.y }
func (b *BlockLayout) W() float64 { return b.w }
func (b *BlockLayout) H() float64 { return b.h }

func (b *BlockLayout) Rect() paint.Rect {
	return paint.NewRect(b.x, b.y, b.x+b.w, b.y+b.h)
}

func (b *BlockLayout) ShouldPaint() bool {
	e, ok := b.Node.(*dom.Element)
	if !ok {
		return true
	}
	return e.Tag != "input" && e.Tag != "button"
}

// layoutMode decides whether an element's children should be laid out
// as a single inline flow or as stacked block boxes: a childless
// element lays out as a block (an empty box), any element with a
// block-level child lays out as a block, otherwise it lays out inline.
func layoutMode(n dom.Node) string {
	e, ok := n.(*dom.Element)
	if !ok {
		return "inline"
	}
	if e.Tag == "input" || e.Tag == "button" || e.Tag == "iframe" {
		return "inline"
	}
	if len(e.Children) == 0 {
		return "block"
	}
	for _, c := range e.Children {
		if ce, ok := c.(*dom.Element); ok {
			if blockElements[ce.Tag] {
				return "block"
			}
		}
	}
	return "inline"
}

func (b *BlockLayout) Layout() {
	b.x = b.parent.X()
	b.w = b.parent.W()
	if b.previous != nil {
		b.y = b.previous.Y() + b.previous.H()
	} else {
		b.y = b.parent.Y()
	}

	mode := layoutMode(b.Node)
	if mode == "block" {
		b.layoutBlockChildren()
	} else {
		b.layoutInline()
	}

	h := 0.0
	for _, c := range b.Children {
		h += c.H()
	}
	b.h = h
}

func (b *BlockLayout) layoutBlockChildren() {
	e := b.Node.(*dom.Element)
	var prev siblingBox
	for _, c := range e.Children {
		ce, ok := c.(*dom.Element)
		if !ok {
			continue
		}
		child := NewBlockLayout(ce, b, prev)
		child.Layout()
		b.Children = append(b.Children, child)
		prev = child
	}
}

func (b *BlockLayout) layoutInline() {
	b.cursorX = 0
	b.line = NewLineLayout(b, nil)
	b.Children = append(b.Children, b.line)

	b.recurse(b.Node)

	lines := b.Children
	b.Children = nil
	var prev siblingBox
	for _, ln := range lines {
		l := ln.(*LineLayout)
		l.previous = prev
		l.Layout()
		b.Children = append(b.Children, l)
		prev = l
	}
}

func (b *BlockLayout) recurse(n dom.Node) {
	switch v := n.(type) {
	case *dom.Text:
		b.text(v)
	case *dom.Element:
		switch v.Tag {
		case "br":
			b.newLine()
		case "input", "button":
			b.input(v)
		case "iframe":
			b.iframe(v)
		default:
			for _, c := range v.Children {
				b.recurse(c)
			}
		}
	}
}

func (b *BlockLayout) text(t *dom.Text) {
	weight, slant, sizePx := fontStyleOf(t.Style())
	f := gfxfont.Get(sizePx, weight, slant)
	for _, word := range wordsOf(t.Text) {
		width := f.Measure(word)
		if b.cursorX+width > b.w {
			b.newLine()
		}
		line := b.currentLine()
		tl := NewTextLayout(t, word, line, b.lastInLine(line))
		line.Children = append(line.Children, tl)
		b.cursorX += width + f.Measure(" ")
	}
}

func (b *BlockLayout) input(e *dom.Element) {
	weight, slant, sizePx := fontStyleOf(e.Style())
	f := gfxfont.Get(sizePx, weight, slant)
	w := inputWidthPx
	if b.cursorX+w > b.w {
		b.newLine()
	}
	line := b.currentLine()
	il := NewInputLayout(e, line, b.lastInLine(line))
	line.Children = append(line.Children, il)
	b.cursorX += w + f.Measure(" ")
}

func (b *BlockLayout) iframe(e *dom.Element) {
	w := attrPx(e, "width", defaultIFrameWidth)
	if b.cursorX+w > b.w {
		b.newLine()
	}
	line := b.currentLine()
	il := NewIFrameLayout(e, line, b.lastInLine(line))
	line.Children = append(line.Children, il)
	b.cursorX += w
}

func (b *BlockLayout) currentLine() *LineLayout {
	return b.Children[len(b.Children)-1].(*LineLayout)
}

func (b *BlockLayout) lastInLine(line *LineLayout) Box {
	if len(line.Children) == 0 {
		return nil
	}
	return line.Children[len(line.Children)-1]
}

func (b *BlockLayout) newLine() {
	b.cursorX = 0
	b.Children = append(b.Children, NewLineLayout(b, nil))
}

func (b *BlockLayout) Paint() []paint.Command {
	var cmds []paint.Command
	if e, ok := b.Node.(*dom.Element); ok && b.ShouldPaint() {
		if bg := e.Style()["background-color"]; bg != "" {
			cmds = append(cmds, paint.DrawRect{Rect: b.Rect(), Color: bg})
		}
	}
	for _, c := range b.Children {
		cmds = append(cmds, c.Paint()...)
	}
	return cmds
}
