package browser

import (
	"testing"

	"github.com/dsilverstone/browser/internal/paint"
	"github.com/dsilverstone/browser/internal/testutil"
)

func TestCompositorCompositeBuildsFrameAtRequestedSize(t *testing.T) {
	c := NewCompositor(200, 100)
	c.composite(CompositorData{
		ChromeCommands: []paint.Command{paint.DrawRect{Rect: paint.NewRect(0, 0, 200, 20), Color: "white"}},
		ChromeHeight:   20,
		DisplayList:    []paint.Command{paint.DrawRect{Rect: paint.NewRect(0, 0, 200, 80), Color: "blue"}},
		DocumentHeight: 80,
		Width:          200,
		Height:         100,
		ChromeChanged:  true,
		TabChanged:     true,
	})

	frame := c.Frame()
	testutil.Assert(t, frame).IsNotNil()
	if frame.Bounds().Dx() != 200 || frame.Bounds().Dy() != 100 {
		t.Fatalf("expected a 200x100 frame, got %v", frame.Bounds())
	}
}

func TestCompositorDrainsOnlyLatestSubmission(t *testing.T) {
	c := NewCompositor(100, 100)

	c.Submit(CompositorData{Width: 100, Height: 100, DocumentHeight: 10})
	c.Submit(CompositorData{Width: 100, Height: 100, DocumentHeight: 20})
	c.Submit(CompositorData{Width: 100, Height: 100, DocumentHeight: 30})

	data := <-c.pending
	testutil.Assert(t, data.DocumentHeight).Equals(30.0)

	select {
	case <-c.pending:
		t.Fatal("expected no second frame queued behind the latest submission")
	default:
	}
}

func TestCompositorScrollbarOnlyDrawnWhenDocumentOverflows(t *testing.T) {
	c := NewCompositor(100, 100)
	c.composite(CompositorData{
		Width: 100, Height: 100,
		ChromeHeight:   0,
		DocumentHeight: 50,
		ChromeChanged:  true, TabChanged: true,
	})
	r, g, b2, _ := c.root.At(99, 50).RGBA()
	noOverflowIsWhite := r>>8 == 255 && g>>8 == 255 && b2>>8 == 255
	testutil.Assert(t, noOverflowIsWhite).IsTrue()

	c.composite(CompositorData{
		Width: 100, Height: 100,
		ChromeHeight:   0,
		DocumentHeight: 500,
		Scroll:         0,
		ChromeChanged:  true, TabChanged: true,
	})
	r, g, b, _ := c.root.At(99, 50).RGBA()
	isWhite := r>>8 == 255 && g>>8 == 255 && b>>8 == 255
	testutil.Assert(t, isWhite).IsFalse()
}
