package css

import (
	"fmt"
	"strings"
)

// Parser is a minimal recursive-descent CSS parser: just enough to
// parse a flat rule list of tag/descendant selectors with a
// property:value;-pair body, and to parse a bare inline style= body on
// its own.
type Parser struct {
	s   string
	pos int
}

// NewParser creates a Parser over s.
func NewParser(s string) *Parser { return &Parser{s: s} }

func (p *Parser) whitespace() {
	for p.pos < len(p.s) && isSpace(p.s[p.pos]) {
		p.pos++
	}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func (p *Parser) word() string {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if isAlnum(c) || strings.ContainsRune("#-.%", rune(c)) {
			p.pos++
		} else {
			break
		}
	}
	if p.pos == start {
		p.pos++ // skip one unrecognized char to make progress, as the book parser does
		return ""
	}
	return p.s[start:p.pos]
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *Parser) literal(c byte) bool {
	if p.pos < len(p.s) && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

// Body parses "prop: val; prop2: val2" (optionally wrapped in { }),
// matching css/style.py's inline-style consumer (CSSParser(...).body()).
func (p *Parser) Body() map[string]string {
	body := make(map[string]string)
	for p.pos < len(p.s) {
		p.whitespace()
		if p.pos >= len(p.s) || p.s[p.pos] == '}' {
			break
		}
		prop := p.word()
		p.whitespace()
		if !p.literal(':') {
			p.skipUntil(';', '}')
			continue
		}
		p.whitespace()
		val := p.word()
		p.whitespace()
		p.literal(';')
		if prop != "" && val != "" {
			body[strings.ToLower(prop)] = val
		}
	}
	return body
}

func (p *Parser) skipUntil(terminators ...byte) {
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		for _, t := range terminators {
			if c == t {
				return
			}
		}
		p.pos++
	}
}

// Stylesheet parses a full CSS stylesheet into a flat rule list: each
// "selector[, selector2] { body }" block expands to one Rule per
// comma-separated selector, supporting single-tag and descendant
// ("div p") selectors only.
func (p *Parser) Stylesheet() []Rule {
	var rules []Rule
	for p.pos < len(p.s) {
		p.whitespace()
		if p.pos >= len(p.s) {
			break
		}
		selectors := p.selectorList()
		p.whitespace()
		if !p.literal('{') {
			p.skipUntil('}')
			p.literal('}')
			continue
		}
		body := p.Body()
		p.literal('}')
		for _, sel := range selectors {
			rules = append(rules, Rule{Selector: sel, Body: body})
		}
	}
	return rules
}

func (p *Parser) selectorList() []Selector {
	var sels []Selector
	for {
		sels = append(sels, p.selector())
		p.whitespace()
		if p.literal(',') {
			continue
		}
		break
	}
	return sels
}

func (p *Parser) selector() Selector {
	p.whitespace()
	var sel Selector = TagSelector{Tag: strings.ToLower(p.word())}
	for {
		p.whitespace()
		if p.pos >= len(p.s) || p.s[p.pos] == '{' || p.s[p.pos] == ',' {
			break
		}
		next := TagSelector{Tag: strings.ToLower(p.word())}
		if next.Tag == "" {
			break
		}
		sel = DescendantSelector{Ancestor: sel, Descendant: next}
	}
	return sel
}

// ParseInlineStyle parses a style="..." attribute value into a map.
func ParseInlineStyle(s string) map[string]string {
	return NewParser(s).Body()
}

// ParseSelector parses a single tag/descendant selector, the subset
// querySelectorAll needs to support.
func ParseSelector(s string) (Selector, error) {
	p := NewParser(s)
	sel := p.selector()
	if ts, ok := sel.(TagSelector); ok && ts.Tag == "" {
		return nil, fmt.Errorf("css: empty selector %q", s)
	}
	return sel, nil
}
