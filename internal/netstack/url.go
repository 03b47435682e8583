// Package netstack implements the engine's HTTP/1.1 client: URL parsing,
// the connection pool, the cookie jar, the response cache, and CSP parsing.
package netstack

import (
	"fmt"
	"strconv"
	"strings"
)

// URL is the engine's own small URL type. net/url is deliberately not
// used here: the supported scheme set (http, https, file, about) and
// origin rule (scheme, host, port) are narrower and stricter than RFC 3986.
type URL struct {
	Scheme string
	Host   string
	Port   int
	Path   string // always has a leading "/", except for about:blank
}

// IsAboutBlank reports whether u is the about:blank singleton.
func (u URL) IsAboutBlank() bool {
	return u.Scheme == "about" && u.Path == "blank"
}

// Origin returns the tuple that defines same-origin per the data model.
func (u URL) Origin() (scheme, host string, port int) {
	return u.Scheme, u.Host, u.Port
}

// String renders the URL back to its canonical textual form.
func (u URL) String() string {
	if u.Scheme == "about" {
		return "about:" + u.Path
	}
	if u.Scheme == "file" {
		return "file://" + u.Path
	}
	host := u.Host
	if (u.Scheme == "http" && u.Port != 80) || (u.Scheme == "https" && u.Port != 443) {
		host = fmt.Sprintf("%s:%d", u.Host, u.Port)
	}
	return fmt.Sprintf("%s://%s%s", u.Scheme, host, u.Path)
}

// Parse parses an absolute URL string.
func Parse(raw string) (URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "about:blank" {
		return URL{Scheme: "about", Path: "blank"}, nil
	}
	idx := strings.Index(raw, "://")
	if idx < 0 {
		if strings.HasPrefix(raw, "about:") {
			return URL{Scheme: "about", Path: strings.TrimPrefix(raw, "about:")}, nil
		}
		return URL{}, fmt.Errorf("netstack: not an absolute URL: %q", raw)
	}
	scheme := strings.ToLower(raw[:idx])
	rest := raw[idx+3:]

	switch scheme {
	case "file":
		path := rest
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return URL{Scheme: "file", Path: path}, nil
	case "http", "https":
		hostPort := rest
		path := "/"
		if slash := strings.IndexByte(rest, '/'); slash >= 0 {
			hostPort = rest[:slash]
			path = rest[slash:]
		}
		host := hostPort
		port := defaultPort(scheme)
		if colon := strings.IndexByte(hostPort, ':'); colon >= 0 {
			host = hostPort[:colon]
			p, err := strconv.Atoi(hostPort[colon+1:])
			if err != nil {
				return URL{}, fmt.Errorf("netstack: bad port in %q: %w", raw, err)
			}
			port = p
		}
		return URL{Scheme: scheme, Host: host, Port: port, Path: normalizePath(path)}, nil
	default:
		return URL{}, fmt.Errorf("netstack: unsupported scheme %q", scheme)
	}
}

func defaultPort(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}

// Resolve resolves ref against the receiver, which acts as the base URL:
// against the current URL's directory path for http(s), against the
// current file's directory for file: URLs.
func (u URL) Resolve(ref string) (URL, error) {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "about:") {
		return Parse(ref)
	}
	if u.Scheme == "file" {
		if strings.HasPrefix(ref, "/") {
			return URL{Scheme: "file", Path: normalizePath(ref)}, nil
		}
		dir := dirOf(u.Path)
		return URL{Scheme: "file", Path: normalizePath(dir + ref)}, nil
	}
	// http/https
	if strings.HasPrefix(ref, "//") {
		return Parse(u.Scheme + ":" + ref)
	}
	if strings.HasPrefix(ref, "/") {
		return URL{Scheme: u.Scheme, Host: u.Host, Port: u.Port, Path: normalizePath(ref)}, nil
	}
	dir := dirOf(u.Path)
	return URL{Scheme: u.Scheme, Host: u.Host, Port: u.Port, Path: normalizePath(dir + ref)}, nil
}

func dirOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i+1]
	}
	return "/"
}

// normalizePath collapses "." and ".." segments, mirroring the directory
// pop-on-".." rule from the urlutil normalizer this module descends from.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	trailingSlash := strings.HasSuffix(path, "/") && path != "/"
	parts := strings.Split(path, "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			// skip
		case "..":
			if len(result) > 0 {
				result = result[:len(result)-1]
			}
		default:
			result = append(result, part)
		}
	}
	out := "/" + strings.Join(result, "/")
	if trailingSlash && out != "/" {
		out += "/"
	}
	return out
}
