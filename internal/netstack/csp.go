package netstack

import "strings"

// CSP is a parsed Content-Security-Policy header: a directive -> source
// list map with a fallback-to-default-src matcher.
type CSP struct {
	directives map[string][]string
}

// ParseCSP parses a Content-Security-Policy header value.
func ParseCSP(header string) *CSP {
	c := &CSP{directives: make(map[string][]string)}
	for _, part := range strings.Split(header, ";") {
		tokens := strings.Fields(strings.TrimSpace(part))
		if len(tokens) == 0 {
			continue
		}
		c.directives[strings.ToLower(tokens[0])] = tokens[1:]
	}
	return c
}

// Allows reports whether source is permitted under directive, falling
// back to default-src when directive is unset. A nil CSP (no header
// present) allows everything.
func (c *CSP) Allows(directive, source string) bool {
	if c == nil {
		return true
	}
	values, ok := c.directives[directive]
	if !ok {
		values, ok = c.directives["default-src"]
	}
	if !ok {
		return true
	}
	return matchesAny(strings.ToLower(source), values)
}

func matchesAny(source string, values []string) bool {
	for _, raw := range values {
		v := strings.ToLower(raw)
		switch v {
		case "'none'":
			return false
		case "*":
			if !strings.HasPrefix(source, "data:") && !strings.HasPrefix(source, "blob:") {
				return true
			}
		case "'self'":
			// Parsed but not evaluated: no full origin comparison, per spec §6.
			continue
		case "'unsafe-inline'":
			if source == "inline" {
				return true
			}
		case "'unsafe-eval'":
			if source == "eval" {
				return true
			}
		case "data:":
			if strings.HasPrefix(source, "data:") {
				return true
			}
		case "blob:":
			if strings.HasPrefix(source, "blob:") {
				return true
			}
		default:
			if matchHostSource(source, v) {
				return true
			}
		}
	}
	return false
}

func matchHostSource(source, pattern string) bool {
	sourceHost := hostOf(source)
	patternHost := hostOf(pattern)
	if sourceHost == patternHost {
		return true
	}
	if strings.HasPrefix(patternHost, "*.") {
		domain := patternHost[2:]
		if sourceHost == domain || strings.HasSuffix(sourceHost, "."+domain) {
			return true
		}
	}
	return false
}

func hostOf(s string) string {
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}

func (c *CSP) AllowsScript(source string) bool  { return c.Allows("script-src", source) }
func (c *CSP) AllowsStyle(source string) bool   { return c.Allows("style-src", source) }
func (c *CSP) AllowsConnect(source string) bool { return c.Allows("connect-src", source) }
