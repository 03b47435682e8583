package css

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dsilverstone/browser/internal/dom"
)

// InheritedProperties are the fixed inheritable property defaults the
// spec's non-goal section restricts the cascade to.
var InheritedProperties = map[string]string{
	"font-size":   "16px",
	"font-style":  "normal",
	"font-weight": "normal",
	"color":       "black",
}

// SortRules orders rules ascending by cascade priority, stable so that
// equal-priority rules keep source order — ported from cascade.py's
// cascade_priority used as a sort key.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return CascadePriority(rules[i]) < CascadePriority(rules[j])
	})
}

// Style applies rules to node and recursively to its children, in
// ascending-priority order, then inline style=, then inherited
// defaults, then percentage/em font-size resolution against the
// parent's resolved value — a direct port of css/style.py's style().
func Style(n dom.Node, rules []Rule) {
	style := n.Style()
	for k := range style {
		delete(style, k)
	}

	for _, r := range rules {
		if !r.Selector.Matches(n) {
			continue
		}
		for prop, val := range r.Body {
			style[prop] = val
		}
	}

	if e, ok := n.(*dom.Element); ok {
		if inline, ok := e.Attributes["style"]; ok {
			for prop, val := range ParseInlineStyle(inline) {
				style[prop] = val
			}
		}
	}

	parent := n.Parent()
	for prop, def := range InheritedProperties {
		if _, set := style[prop]; set {
			continue
		}
		if parent != nil {
			style[prop] = parent.Style()[prop]
		} else {
			style[prop] = def
		}
	}

	if fs, ok := style["font-size"]; ok {
		parentPx := 16.0
		if parent != nil {
			parentPx = pxValue(parent.Style()["font-size"])
		}
		switch {
		case strings.HasSuffix(fs, "%"):
			pct, err := strconv.ParseFloat(strings.TrimSuffix(fs, "%"), 64)
			if err == nil {
				style["font-size"] = fmt.Sprintf("%gpx", (pct/100)*parentPx)
			}
		case strings.HasSuffix(fs, "em"):
			em, err := strconv.ParseFloat(strings.TrimSuffix(fs, "em"), 64)
			if err == nil {
				style["font-size"] = fmt.Sprintf("%gpx", em*parentPx)
			}
		}
	}

	for _, child := range dom.Children(n) {
		Style(child, rules)
	}
}

// pxValue parses a "Npx" string into its numeric pixel value.
func pxValue(s string) float64 {
	s = strings.TrimSuffix(s, "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 16.0
	}
	return v
}
