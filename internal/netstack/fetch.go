package netstack

import (
	"fmt"
	"os"
)

// Fetch dispatches a GET/POST by scheme: http/https go through Client,
// file: reads from the local filesystem, about:blank returns a fixed
// empty-document response.
func (c *Client) Fetch(u URL, method string, body []byte, referrer *URL) (*Response, error) {
	switch u.Scheme {
	case "about":
		if u.IsAboutBlank() {
			return &Response{Status: 200, Headers: map[string]string{}, Body: nil}, nil
		}
		return nil, fmt.Errorf("netstack: unsupported about: target %q", u.Path)
	case "file":
		data, err := os.ReadFile(u.Path)
		if err != nil {
			return nil, fmt.Errorf("netstack: read %s: %w", u.Path, err)
		}
		return &Response{Status: 200, Headers: map[string]string{}, Body: data}, nil
	case "http", "https":
		return c.Request(u, method, body, referrer)
	default:
		return nil, fmt.Errorf("netstack: unsupported scheme %q", u.Scheme)
	}
}
