// Package dom implements the DOM node tree: Element and Text nodes with
// ownership-plus-back-reference parent/child links.
package dom

// Node is implemented by *Element and *Text. parent is a non-owning
// back-reference: the parent's Children slice is what actually owns a
// node.
type Node interface {
	Parent() *Element
	setParent(*Element)
	Style() map[string]string
	IsFocused() bool
	SetFocused(bool)
}

// Element is an HTML element node.
type Element struct {
	Tag        string
	Attributes map[string]string
	Children   []Node
	parent     *Element
	focus      bool
	style      map[string]string

	// ChildFrame is set when this element is an <iframe> and has a
	// loaded child Frame attached to it. Typed as interface{} here to
	// avoid an import cycle with package frame; frame.Frame satisfies
	// it by convention (stored, never type-asserted inside dom).
	ChildFrame interface{}
}

// NewElement creates an Element and immediately appends it to parent's
// Children (used for leaf/self-closing nodes that complete in one step).
func NewElement(tag string, attrs map[string]string, parent *Element) *Element {
	e := NewDetachedElement(tag, attrs, nil)
	if parent != nil {
		e.setParent(parent)
		parent.Children = append(parent.Children, e)
	}
	return e
}

// NewDetachedElement creates an Element whose parent pointer is set (if
// non-nil) but which is NOT yet appended to parent.Children. This is the
// state of a tag that is still open on the parser's stack: the original
// implementation sets the parent reference at construction time but only
// appends to parent.children once the tag is closed.
func NewDetachedElement(tag string, attrs map[string]string, parent *Element) *Element {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	e := &Element{Tag: tag, Attributes: attrs, style: make(map[string]string)}
	if parent != nil {
		e.setParent(parent)
	}
	return e
}

// Reparent appends e to parent's Children (e.parent must already equal
// parent). Used when an open tag on the parser stack is finally closed.
func (e *Element) Reparent(parent *Element) {
	e.setParent(parent)
	parent.Children = append(parent.Children, e)
}

func (e *Element) Parent() *Element        { return e.parent }
func (e *Element) setParent(p *Element)    { e.parent = p }
func (e *Element) Style() map[string]string { return e.style }
func (e *Element) IsFocused() bool          { return e.focus }
func (e *Element) SetFocused(v bool)        { e.focus = v }

func (e *Element) Attr(name string) string {
	return e.Attributes[name]
}

func (e *Element) String() string { return "<" + e.Tag + ">" }

// Text is a text content node.
type Text struct {
	Text     string
	Children []Node // always empty; kept for Node-tree-walk symmetry
	parent   *Element
	focus    bool
	style    map[string]string
}

// NewText creates a Text node wired to parent.
func NewText(text string, parent *Element) *Text {
	t := &Text{Text: text, style: make(map[string]string)}
	if parent != nil {
		t.setParent(parent)
		parent.Children = append(parent.Children, t)
	}
	return t
}

func (t *Text) Parent() *Element        { return t.parent }
func (t *Text) setParent(p *Element)    { t.parent = p }
func (t *Text) Style() map[string]string { return t.style }
func (t *Text) IsFocused() bool          { return t.focus }
func (t *Text) SetFocused(v bool)        { t.focus = v }

func (t *Text) String() string { return `"` + t.Text + `"` }

// Children returns the ordered child list of any node (empty for Text).
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Element:
		return v.Children
	case *Text:
		return v.Children
	default:
		return nil
	}
}

// Flatten walks the tree rooted at n and returns every node in
// depth-first pre-order, ported from dom/tree_utils.py's tree_to_list.
func Flatten(n Node) []Node {
	var out []Node
	var walk func(Node)
	walk = func(cur Node) {
		out = append(out, cur)
		for _, c := range Children(cur) {
			walk(c)
		}
	}
	walk(n)
	return out
}
