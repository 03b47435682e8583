// Package htmlparse implements a tag-soup HTML parser with implicit-tag
// repair: not a full HTML5-conformant parser, just enough tree-building
// to recover a reasonable DOM from real-world markup. The
// character/tag/attribute scanning is delegated to
// golang.org/x/net/html's Tokenizer (the lexer layer); the implicit-tag
// state machine and tree assembly are this package's own.
package htmlparse

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dsilverstone/browser/internal/dom"
)

var selfClosingTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

var headTags = map[string]bool{
	"base": true, "basefont": true, "bgsound": true, "noscript": true,
	"link": true, "meta": true, "title": true, "style": true, "script": true,
}

// Parser builds a dom.Node tree from an HTML byte string.
type Parser struct {
	unfinished []*dom.Element
}

// Parse parses body and returns the root <html> element, auto-inserting
// html/head/body as needed the same way the original does.
func Parse(body string) *dom.Element {
	p := &Parser{}
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return p.finish()
		case html.TextToken:
			p.addText(string(z.Text()))
		case html.CommentToken, html.DoctypeToken:
			// ignored, matching the original's "tag.startswith('!')" skip
		case html.StartTagToken, html.SelfClosingTagToken:
			name, attrs := tagAttrs(z)
			p.addTag(name, attrs)
			if tt == html.SelfClosingTagToken && !selfClosingTags[name] {
				// Tokenizer marks it self-closing (e.g. XHTML <div/>);
				// the original's tag table doesn't know this tag, so
				// also emit the matching close tag to keep the stack sane.
				p.addTag("/"+name, nil)
			}
		case html.EndTagToken:
			name, _ := tagAttrs(z)
			p.addTag("/"+name, nil)
		}
	}
}

func tagAttrs(z *html.Tokenizer) (string, map[string]string) {
	nameBytes, hasAttr := z.TagName()
	name := strings.ToLower(string(nameBytes))
	attrs := make(map[string]string)
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		attrs[strings.ToLower(string(key))] = string(val)
	}
	return name, attrs
}

func (p *Parser) openTags() []string {
	tags := make([]string, len(p.unfinished))
	for i, e := range p.unfinished {
		tags[i] = e.Tag
	}
	return tags
}

// implicitTags auto-inserts html/head/body exactly as the original's
// loop does, re-checking after each insertion.
func (p *Parser) implicitTags(tag string) {
	for {
		open := p.openTags()
		switch {
		case len(open) == 0 && tag != "html":
			p.addTagRaw("html", nil)
		case len(open) == 1 && open[0] == "html" && tag != "head" && tag != "body" && tag != "/html":
			if headTags[tag] {
				p.addTagRaw("head", nil)
			} else {
				p.addTagRaw("body", nil)
			}
		case len(open) == 2 && open[0] == "html" && open[1] == "head" && tag != "/head" && !headTags[tag]:
			p.addTagRaw("/head", nil)
		default:
			return
		}
	}
}

func (p *Parser) addText(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	p.implicitTags("")
	parent := p.unfinished[len(p.unfinished)-1]
	dom.NewText(text, parent)
}

func (p *Parser) addTag(tag string, attrs map[string]string) {
	if strings.HasPrefix(tag, "!") {
		return
	}
	p.implicitTags(tag)
	p.addTagRaw(tag, attrs)
}

func (p *Parser) addTagRaw(tag string, attrs map[string]string) {
	switch {
	case strings.HasPrefix(tag, "/"):
		if len(p.unfinished) == 1 {
			return
		}
		node := p.unfinished[len(p.unfinished)-1]
		p.unfinished = p.unfinished[:len(p.unfinished)-1]
		parent := p.unfinished[len(p.unfinished)-1]
		node.Reparent(parent)
	case selfClosingTags[tag]:
		var parent *dom.Element
		if len(p.unfinished) > 0 {
			parent = p.unfinished[len(p.unfinished)-1]
		}
		dom.NewElement(tag, attrs, parent)
	default:
		var parent *dom.Element
		if len(p.unfinished) > 0 {
			parent = p.unfinished[len(p.unfinished)-1]
		}
		node := dom.NewDetachedElement(tag, attrs, parent)
		p.unfinished = append(p.unfinished, node)
	}
}

func (p *Parser) finish() *dom.Element {
	if len(p.unfinished) == 0 {
		p.implicitTags("")
	}
	for len(p.unfinished) > 1 {
		node := p.unfinished[len(p.unfinished)-1]
		p.unfinished = p.unfinished[:len(p.unfinished)-1]
		parent := p.unfinished[len(p.unfinished)-1]
		node.Reparent(parent)
	}
	if len(p.unfinished) == 0 {
		return dom.NewElement("html", nil, nil)
	}
	return p.unfinished[0]
}
