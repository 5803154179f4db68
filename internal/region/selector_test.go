package region

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/example/snipt/internal/annotate"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), 0x80, 0xff})
		}
	}
	return img
}

func identityView(img *image.RGBA) annotate.Viewport {
	b := img.Bounds()
	return annotate.Viewport{Width: float64(b.Dx()), Height: float64(b.Dy()), Intrinsic: b.Size()}
}

func drag(s *Selector, x0, y0, x1, y1 float64) (*image.RGBA, bool) {
	s.PointerDown(x0, y0)
	s.PointerMove((x0+x1)/2, (y0+y1)/2)
	s.PointerMove(x1, y1)
	return s.PointerUp()
}

func TestSelectorRejectsSmallSelection(t *testing.T) {
	base := gradient(100, 100)
	s := New(base, identityView(base), DefaultOptions())
	if out, ok := drag(s, 20, 20, 25, 25); ok || out != nil {
		t.Fatalf("5x5 selection should produce no output")
	}
	if s.State() != StateIdle {
		t.Fatalf("state = %v, want idle", s.State())
	}
	if out, ok := drag(s, 20, 20, 30, 50); ok || out != nil {
		t.Fatalf("10px wide selection should not exceed the threshold")
	}
}

func TestSelectorCropsExactSize(t *testing.T) {
	base := gradient(100, 100)
	s := New(base, identityView(base), DefaultOptions())
	out, ok := drag(s, 31, 42, 20, 31)
	if !ok {
		t.Fatalf("11x11 selection should be committed")
	}
	if got := out.Bounds(); got != image.Rect(0, 0, 11, 11) {
		t.Fatalf("crop bounds = %v, want 11x11", got)
	}
	if got, want := out.RGBAAt(0, 0), base.RGBAAt(20, 31); got != want {
		t.Fatalf("crop origin pixel = %+v, want %+v", got, want)
	}
	if s.State() != StateCommitted || s.Result() != out {
		t.Fatalf("selector should hold the committed crop")
	}
}

func TestSelectorMapsThroughViewport(t *testing.T) {
	base := gradient(200, 200)
	view := annotate.Viewport{Left: 10, Top: 10, Width: 100, Height: 100, Intrinsic: image.Pt(200, 200)}
	s := New(base, view, DefaultOptions())
	out, ok := drag(s, 20, 20, 40, 50)
	if !ok {
		t.Fatalf("expected crop")
	}
	if got := out.Bounds().Size(); got != image.Pt(40, 60) {
		t.Fatalf("crop size = %v, want 40x60 image pixels", got)
	}
	if got, want := out.RGBAAt(0, 0), base.RGBAAt(20, 20); got != want {
		t.Fatalf("crop origin pixel = %+v, want %+v", got, want)
	}
}

func TestSelectorDoesNotMutateBase(t *testing.T) {
	base := gradient(50, 50)
	before := append([]uint8(nil), base.Pix...)
	s := New(base, identityView(base), DefaultOptions())
	out, ok := drag(s, 0, 0, 30, 30)
	if !ok {
		t.Fatalf("expected crop")
	}
	draw.Draw(out, out.Bounds(), image.Black, image.Point{}, draw.Src)
	for i := range before {
		if base.Pix[i] != before[i] {
			t.Fatalf("base modified at byte %d", i)
		}
	}
}

func TestSelectorCancelFromAnyState(t *testing.T) {
	base := gradient(60, 60)
	s := New(base, identityView(base), DefaultOptions())
	s.Cancel()
	if s.State() != StateIdle {
		t.Fatalf("cancel from idle should stay idle")
	}
	s.PointerDown(1, 1)
	s.PointerMove(40, 40)
	s.Cancel()
	if s.State() != StateIdle {
		t.Fatalf("cancel while selecting should return to idle")
	}
	if _, ok := s.PointerUp(); ok {
		t.Fatalf("pointer up after cancel must not produce output")
	}
	drag(s, 0, 0, 30, 30)
	s.Cancel()
	if s.State() != StateIdle || s.Result() != nil {
		t.Fatalf("cancel after commit should discard the crop")
	}
}

func TestSelectorIgnoresMoveWhenIdle(t *testing.T) {
	base := gradient(60, 60)
	s := New(base, identityView(base), DefaultOptions())
	if s.PointerMove(10, 10) {
		t.Fatalf("move without a drag should not request a redraw")
	}
	if _, ok := s.Selection(); ok {
		t.Fatalf("no selection expected while idle")
	}
}

func TestSelectorMinSizeOption(t *testing.T) {
	base := gradient(60, 60)
	opts := DefaultOptions()
	opts.MinSize = 2
	s := New(base, identityView(base), opts)
	out, ok := drag(s, 10, 10, 15, 15)
	if !ok || out.Bounds().Dx() != 5 {
		t.Fatalf("expected 5px crop with MinSize 2")
	}
}
