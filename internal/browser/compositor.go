package browser

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/time/rate"

	"github.com/dsilverstone/browser/internal/paint"
)

// frameRate paces the compositor's redraw loop, matching the
// original's frame_interval = 1.0/60.0.
const frameRate = 60

// CompositorData is one frame's worth of raw paint commands submitted
// by the browser's main loop, ported from
// threads/compositor_thread.py's queued payload.
type CompositorData struct {
	DisplayList    []paint.Command
	DocumentHeight float64
	Scroll         float64

	ChromeCommands []paint.Command
	ChromeHeight   float64

	Width, Height int

	ChromeChanged bool
	TabChanged    bool
}

// Compositor owns the chrome and tab raster surfaces plus the final
// composited root surface, rastering only the surfaces a submitted
// CompositorData marks dirty. It drains only the most recently
// submitted frame each tick, discarding any still queued behind it,
// matching the original's "use only the newest data, skip stale
// frames" draining policy.
type Compositor struct {
	mu sync.Mutex

	width, height int

	chromeSurface *image.RGBA
	tabSurface    *image.RGBA
	root          *image.RGBA

	last CompositorData
	have bool

	pending chan CompositorData
	done    chan struct{}
}

// NewCompositor returns a Compositor sized to width x height, with an
// empty black root surface until the first Submit.
func NewCompositor(width, height int) *Compositor {
	c := &Compositor{
		width:   width,
		height:  height,
		pending: make(chan CompositorData, 1),
		done:    make(chan struct{}),
	}
	c.root = image.NewRGBA(image.Rect(0, 0, width, height))
	return c
}

// Submit enqueues data as the latest frame to composite, replacing any
// frame still waiting to be drained.
func (c *Compositor) Submit(data CompositorData) {
	for {
		select {
		case c.pending <- data:
			return
		default:
		}
		select {
		case <-c.pending:
		default:
		}
	}
}

// Resize changes the target surface dimensions; the next composite
// pass rebuilds the root surface at the new size.
func (c *Compositor) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}

// Stop halts the Run loop.
func (c *Compositor) Stop() {
	close(c.done)
}

// Run drains the most recent submitted frame and composites it at
// roughly 60Hz until Stop is called, paced by a rate.Limiter rather
// than a bare ticker so a burst of Submits can't pull composite() out
// of lockstep with the frame rate.
func (c *Compositor) Run() {
	limiter := rate.NewLimiter(rate.Limit(frameRate), 1)
	for {
		if err := limiter.Wait(context.Background()); err != nil {
			return
		}
		select {
		case <-c.done:
			return
		default:
		}
		select {
		case data := <-c.pending:
			c.composite(data)
		default:
		}
	}
}

// Frame returns the most recently composited root surface.
func (c *Compositor) Frame() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root
}

func (c *Compositor) composite(data CompositorData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last = data
	c.have = true

	if data.Width > 0 {
		c.width = data.Width
	}
	if data.Height > 0 {
		c.height = data.Height
	}

	if data.ChromeChanged || c.chromeSurface == nil || c.chromeSurface.Bounds().Dx() != c.width {
		c.chromeSurface = c.rasterSurface(c.width, int(data.ChromeHeight), data.ChromeCommands, 0)
	}

	viewportHeight := c.height - int(data.ChromeHeight)
	if viewportHeight < 0 {
		viewportHeight = 0
	}
	if data.TabChanged || c.tabSurface == nil || c.tabSurface.Bounds().Dx() != c.width || c.tabSurface.Bounds().Dy() != viewportHeight {
		c.tabSurface = c.rasterSurface(c.width, viewportHeight, data.DisplayList, data.Scroll)
	}

	c.root = image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(c.root, c.root.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	tabTop := int(data.ChromeHeight)
	draw.Draw(c.root, image.Rect(0, tabTop, c.width, tabTop+viewportHeight), c.tabSurface, image.Point{}, draw.Over)
	draw.Draw(c.root, image.Rect(0, 0, c.width, int(data.ChromeHeight)), c.chromeSurface, image.Point{}, draw.Over)

	c.drawScrollbarLocked(data, viewportHeight, tabTop)
}

func (c *Compositor) rasterSurface(width, height int, commands []paint.Command, scroll float64) *image.RGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	surface := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(surface, surface.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for _, cmd := range commands {
		cmd.Execute(scroll, surface)
	}
	return surface
}

// drawScrollbarLocked draws a right-edge scrollbar track and thumb
// sized by the ratio of the visible viewport to the full document
// height, ported from the original's scrollbar drawing in
// CompositorThread._composite. Called with c.mu held.
func (c *Compositor) drawScrollbarLocked(data CompositorData, viewportHeight, tabTop int) {
	if data.DocumentHeight <= float64(viewportHeight) || viewportHeight <= 0 {
		return
	}
	const barWidth = 12
	trackX0 := c.width - barWidth
	if trackX0 < 0 {
		return
	}
	track := color.RGBA{220, 220, 220, 255}
	thumb := color.RGBA{150, 150, 150, 255}

	draw.Draw(c.root, image.Rect(trackX0, tabTop, c.width, tabTop+viewportHeight), image.NewUniform(track), image.Point{}, draw.Over)

	ratio := float64(viewportHeight) / data.DocumentHeight
	thumbHeight := int(ratio * float64(viewportHeight))
	minThumbHeight := int(float64(viewportHeight) * float64(viewportHeight) / data.DocumentHeight)
	if minThumbHeight < 30 {
		minThumbHeight = 30
	}
	if thumbHeight < minThumbHeight {
		thumbHeight = minThumbHeight
	}
	maxScroll := data.DocumentHeight - float64(viewportHeight)
	var scrollRatio float64
	if maxScroll > 0 {
		scrollRatio = data.Scroll / maxScroll
	}
	thumbTop := tabTop + int(scrollRatio*float64(viewportHeight-thumbHeight))

	draw.Draw(c.root, image.Rect(trackX0, thumbTop, c.width, thumbTop+thumbHeight), image.NewUniform(thumb), image.Point{}, draw.Over)
}
