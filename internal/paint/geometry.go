// Package paint implements the display-list commands DrawRect, DrawText,
// DrawLine, DrawOutline and IFrame; the layout tree's Paint methods
// produce them.
package paint

import "image"

// Rect is an axis-aligned box in document (unscrolled) coordinates.
type Rect struct {
	Left, Top, Right, Bottom float64
}

func NewRect(x1, y1, x2, y2 float64) Rect { return Rect{x1, y1, x2, y2} }

func (r Rect) ContainsPoint(x, y float64) bool {
	return r.Left <= x && x < r.Right && r.Top <= y && y < r.Bottom
}

// ToImageRect converts r, shifted by -scroll on the vertical axis, to an
// integer image.Rectangle suitable for drawing into a raster surface.
func (r Rect) ToImageRect(scroll float64) image.Rectangle {
	return image.Rect(
		int(r.Left), int(r.Top-scroll),
		int(r.Right), int(r.Bottom-scroll),
	)
}

// IFrameRectSetter is implemented by a dom.Element's ChildFrame value
// (a *frame.Frame, by convention) so that the layout package can report
// an <iframe> box's final document-coordinate rect without importing
// package frame.
type IFrameRectSetter interface {
	SetIFrameRect(Rect)
}
