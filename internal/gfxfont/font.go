// Package gfxfont wraps golang.org/x/image/font behind a small
// measure/metrics interface and caches Font instances by (size, weight,
// style) so repeated lookups for the same attributes are free.
package gfxfont

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Font is a cached, size/weight/style-keyed font handle.
type Font struct {
	Size   int
	Weight string // "normal" | "bold"
	Style  string // "roman" | "italic"
	face   font.Face
}

var (
	mu    sync.Mutex
	cache = make(map[key]*Font)
)

type key struct {
	size         int
	weight, style string
}

// Get returns the cached Font for (size, weight, style), constructing it
// on first use, mirroring get_font()'s FONTS cache.
func Get(size int, weight, style string) *Font {
	k := key{size, weight, style}
	mu.Lock()
	defer mu.Unlock()
	if f, ok := cache[k]; ok {
		return f
	}
	f := &Font{Size: size, Weight: weight, Style: style, face: basicfont.Face7x13}
	cache[k] = f
	return f
}

// scale maps the requested pixel size against basicfont's native 13px
// cell height, since basicfont ships a single fixed-size bitmap face.
func (f *Font) scale() float64 {
	return float64(f.Size) / 13.0
}

// Measure returns the rendered pixel width of text at this font's size.
func (f *Font) Measure(text string) float64 {
	var width fixed.Int26_6
	for _, r := range text {
		adv, ok := f.face.GlyphAdvance(r)
		if !ok {
			adv = fixed.I(7)
		}
		width += adv
	}
	return float64(width) / 64.0 * f.scale()
}

// Face exposes the underlying font.Face for direct use by a font.Drawer.
func (f *Font) Face() font.Face { return f.face }

// Metric names mirror the original's metrics(name) contract.
func (f *Font) Ascent() float64    { return float64(f.face.Metrics().Ascent) / 64.0 * f.scale() }
func (f *Font) Descent() float64   { return float64(f.face.Metrics().Descent) / 64.0 * f.scale() }
func (f *Font) Linespace() float64 { return float64(f.face.Metrics().Height) / 64.0 * f.scale() }
