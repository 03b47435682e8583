package layout

import "github.com/dsilverstone/browser/internal/dom"

// HitTest returns the dom.Node belonging to the innermost layout box
// containing the point (x, y), matching the original's
// tree_to_list(document)[-1].node: a pre-order walk where the last
// rect match wins, so a nested child overrides its ancestor.
func HitTest(root *DocumentLayout, x, y float64) dom.Node {
	if root.child == nil {
		return nil
	}
	var found dom.Node
	var walk func(b Box)
	walk = func(b Box) {
		if b.Rect().ContainsPoint(x, y) {
			if n := nodeOf(b); n != nil {
				found = n
			}
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
	walk(root.child)
	return found
}

func nodeOf(b Box) dom.Node {
	switch v := b.(type) {
	case *BlockLayout:
		return v.Node
	case *TextLayout:
		return v.node
	case *InputLayout:
		return v.node
	case *IFrameLayout:
		return v.node
	default:
		return nil
	}
}
