package paint

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/dsilverstone/browser/internal/gfxfont"
)

// Command is a single display-list instruction. Each carries its own
// bounding Rect so the compositor can cull offscreen commands cheaply.
type Command interface {
	BoundingRect() Rect
	Execute(scroll float64, dst draw.Image)
}

// DrawRect fills a rectangle with a solid color.
type DrawRect struct {
	Rect  Rect
	Color string
}

func (c DrawRect) BoundingRect() Rect { return c.Rect }

func (c DrawRect) Execute(scroll float64, dst draw.Image) {
	if c.Color == "transparent" {
		return
	}
	col := ParseColor(c.Color)
	r := c.Rect.ToImageRect(scroll).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.Set(x, y, col)
		}
	}
}

// DrawOutline strokes a rectangle's border.
type DrawOutline struct {
	Rect      Rect
	Color     string
	Thickness int
}

func (c DrawOutline) BoundingRect() Rect { return c.Rect }

func (c DrawOutline) Execute(scroll float64, dst draw.Image) {
	col := ParseColor(c.Color)
	r := c.Rect.ToImageRect(scroll)
	strokeRect(dst, r, col, c.Thickness)
}

func strokeRect(dst draw.Image, r image.Rectangle, col color.Color, thickness int) {
	// top/bottom
	drawHLine(dst, r.Min.X, r.Max.X, r.Min.Y, thickness, col)
	drawHLine(dst, r.Min.X, r.Max.X, r.Max.Y-thickness, thickness, col)
	// left/right
	drawVLine(dst, r.Min.Y, r.Max.Y, r.Min.X, thickness, col)
	drawVLine(dst, r.Min.Y, r.Max.Y, r.Max.X-thickness, thickness, col)
}

// DrawLine strokes a straight line segment (horizontal or vertical, the
// only orientations the chrome/scrollbar/cursor draw).
type DrawLine struct {
	Rect      Rect
	Color     string
	Thickness int
}

func (c DrawLine) BoundingRect() Rect { return c.Rect }

func (c DrawLine) Execute(scroll float64, dst draw.Image) {
	col := ParseColor(c.Color)
	r := c.Rect.ToImageRect(scroll)
	if r.Dy() <= c.Thickness {
		drawHLine(dst, r.Min.X, r.Max.X, r.Min.Y, c.Thickness, col)
	} else {
		drawVLine(dst, r.Min.Y, r.Max.Y, r.Min.X, c.Thickness, col)
	}
}

func drawHLine(dst draw.Image, x0, x1, y, thickness int, col color.Color) {
	bounds := dst.Bounds()
	for t := 0; t < thickness; t++ {
		yy := y + t
		if yy < bounds.Min.Y || yy >= bounds.Max.Y {
			continue
		}
		for x := x0; x < x1; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dst.Set(x, yy, col)
		}
	}
}

func drawVLine(dst draw.Image, y0, y1, x, thickness int, col color.Color) {
	bounds := dst.Bounds()
	for t := 0; t < thickness; t++ {
		xx := x + t
		if xx < bounds.Min.X || xx >= bounds.Max.X {
			continue
		}
		for y := y0; y < y1; y++ {
			if y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			dst.Set(xx, y, col)
		}
	}
}

// IFrame composites a child frame's own display list into this one,
// translated to the iframe box's position and clipped to its bounds —
// the Go equivalent of the original's canvas.translate+clipRect bracket
// around a child frame's paint.
type IFrame struct {
	Rect     Rect
	Children []Command
}

func (c IFrame) BoundingRect() Rect { return c.Rect }

func (c IFrame) Execute(scroll float64, dst draw.Image) {
	bounds := c.Rect.ToImageRect(scroll).Intersect(dst.Bounds())
	if bounds.Empty() {
		return
	}
	clipped := &clippedImage{inner: dst, bounds: bounds, dx: bounds.Min.X, dy: bounds.Min.Y}
	for _, cmd := range c.Children {
		cmd.Execute(0, clipped)
	}
}

// clippedImage shifts (0,0) to the iframe's top-left corner and refuses
// writes outside its bounds, so child commands can be executed using
// their own local document coordinates.
type clippedImage struct {
	inner      draw.Image
	bounds     image.Rectangle
	dx, dy     int
}

func (c *clippedImage) ColorModel() color.Model { return c.inner.ColorModel() }
func (c *clippedImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.bounds.Dx(), c.bounds.Dy())
}
func (c *clippedImage) At(x, y int) color.Color {
	return c.inner.At(x+c.dx, y+c.dy)
}
func (c *clippedImage) Set(x, y int, col color.Color) {
	if x < 0 || y < 0 || x >= c.bounds.Dx() || y >= c.bounds.Dy() {
		return
	}
	c.inner.Set(x+c.dx, y+c.dy, col)
}

// DrawText draws a run of text at (x, y) in a given font/color. Its
// bounding rect spans (x, y) to (x+measure(text), y+linespace), matching
// DrawText.__init__ in the original.
type DrawText struct {
	X, Y  float64
	Text  string
	Font  *gfxfont.Font
	Color string
}

func NewDrawText(x, y float64, text string, f *gfxfont.Font, color string) DrawText {
	return DrawText{X: x, Y: y, Text: text, Font: f, Color: color}
}

func (c DrawText) BoundingRect() Rect {
	return Rect{c.X, c.Y, c.X + c.Font.Measure(c.Text), c.Y + c.Font.Linespace()}
}

func (c DrawText) Execute(scroll float64, dst draw.Image) {
	col := ParseColor(c.Color)
	baselineY := c.Y - scroll + c.Font.Ascent()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: c.Font.Face(),
		Dot:  fixed.P(int(c.X), int(baselineY)),
	}
	d.DrawString(c.Text)
}
