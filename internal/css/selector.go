// Package css implements the CSS cascade: tag and descendant selectors,
// a minimal stylesheet/inline-style parser, and style resolution
// (cascade + inheritance + percentage/em font-size resolution).
package css

import "github.com/dsilverstone/browser/internal/dom"

// Selector is implemented by TagSelector and DescendantSelector.
type Selector interface {
	Matches(n dom.Node) bool
	Priority() int
}

// TagSelector matches any Element with a given tag name. Priority 1.
type TagSelector struct {
	Tag string
}

func (s TagSelector) Matches(n dom.Node) bool {
	e, ok := n.(*dom.Element)
	return ok && e.Tag == s.Tag
}

func (s TagSelector) Priority() int { return 1 }

// DescendantSelector matches a node matching Descendant that has some
// ancestor matching Ancestor, e.g. "div p". Priority is the sum of both
// selectors' priorities, following ordinary CSS cascade semantics.
type DescendantSelector struct {
	Ancestor  Selector
	Descendant Selector
}

func (s DescendantSelector) Priority() int {
	return s.Ancestor.Priority() + s.Descendant.Priority()
}

func (s DescendantSelector) Matches(n dom.Node) bool {
	if !s.Descendant.Matches(n) {
		return false
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if s.Ancestor.Matches(p) {
			return true
		}
	}
	return false
}

// Rule is one CSS rule: a selector and its declaration body.
type Rule struct {
	Selector Selector
	Body     map[string]string
}

// CascadePriority returns the priority used to order rule application,
// ported from css/cascade.py's cascade_priority.
func CascadePriority(r Rule) int { return r.Selector.Priority() }
