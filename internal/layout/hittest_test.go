package layout

import (
	"testing"

	"github.com/dsilverstone/browser/internal/dom"
	"github.com/dsilverstone/browser/internal/testutil"
)

func buildTree() (html, div1, div2 *dom.Element) {
	html = dom.NewDetachedElement("html", nil, nil)
	body := dom.NewElement("body", nil, html)

	div1 = dom.NewElement("div", nil, body)
	dom.NewText("hello", div1)

	div2 = dom.NewElement("div", nil, body)
	dom.NewText("world", div2)

	return html, div1, div2
}

func TestHitTestFindsTextNodeOnFirstLine(t *testing.T) {
	html, div1, _ := buildTree()

	doc := NewDocumentLayout(html, 800, 13, 18)
	doc.Layout()

	div1Word := div1.Children[0]
	tl := findTextLayout(doc, div1Word)
	testutil.Assert(t, tl).IsNotNil()

	found := HitTest(doc, tl.X()+1, tl.Y()+1)
	testutil.Assert(t, found).IsNotNil()

	if found != div1Word {
		t.Fatalf("expected click inside the word's rect to hit %v, got %v", div1Word, found)
	}
}

func TestHitTestFindsSecondBlockBelowFirst(t *testing.T) {
	html, div1, div2 := buildTree()

	doc := NewDocumentLayout(html, 800, 13, 18)
	doc.Layout()

	// div2's BlockLayout starts exactly where div1's ends (block boxes
	// stack with no gap): a point inside div2's word rect resolves to
	// div2's text, not div1's, even though both sit at the same x.
	div1Block := findBlockLayout(doc, div1)
	div2Block := findBlockLayout(doc, div2)
	testutil.Assert(t, div1Block).IsNotNil()
	testutil.Assert(t, div2Block).IsNotNil()
	if div2Block.Y() < div1Block.Y()+div1Block.H() {
		t.Fatalf("expected div2's block (y=%v) to start at or below div1's bottom (%v)", div2Block.Y(), div1Block.Y()+div1Block.H())
	}

	tl := findTextLayout(doc, div2.Children[0])
	testutil.Assert(t, tl).IsNotNil()

	found := HitTest(doc, tl.X()+1, tl.Y()+1)
	testutil.Assert(t, found).IsNotNil()

	want := div2.Children[0]
	if found != want {
		t.Fatalf("expected click below div1 to hit %v, got %v", want, found)
	}
}

func TestHitTestReturnsNilOutsideDocument(t *testing.T) {
	html, _, _ := buildTree()

	doc := NewDocumentLayout(html, 800, 13, 18)
	doc.Layout()

	found := HitTest(doc, -100, -100)
	testutil.Assert(t, found).IsNil()
}

// findTextLayout walks the layout tree for the TextLayout backed by
// the given dom.Text node, for use in tests that need its geometry.
func findTextLayout(doc *DocumentLayout, node dom.Node) *TextLayout {
	var found *TextLayout
	var walk func(b Box)
	walk = func(b Box) {
		if tl, ok := b.(*TextLayout); ok && tl.node == node {
			found = tl
			return
		}
		switch v := b.(type) {
		case *BlockLayout:
			for _, c := range v.Children {
				walk(c)
			}
		case *LineLayout:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	if doc.child != nil {
		walk(doc.child)
	}
	return found
}

// findBlockLayout walks the layout tree for the BlockLayout backed by
// the given dom.Element, for use in tests that need its geometry.
func findBlockLayout(doc *DocumentLayout, node dom.Node) *BlockLayout {
	var found *BlockLayout
	var walk func(b Box)
	walk = func(b Box) {
		if bl, ok := b.(*BlockLayout); ok {
			if bl.Node == node {
				found = bl
			}
			for _, c := range bl.Children {
				walk(c)
			}
		}
	}
	if doc.child != nil {
		walk(doc.child)
	}
	return found
}
