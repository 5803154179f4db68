package compose

import (
	"image"
	"image/color"
	"testing"
)

func TestWithShadowExpandsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	subject := image.Pt(5, 5)
	img.Set(subject.X, subject.Y, color.RGBA{R: 255, A: 255})

	opts := ShadowOptions{Radius: 4, Offset: image.Pt(8, 6), Opacity: 0.5}
	out, origin := WithShadow(img, opts)
	if want := image.Rect(0, 0, 22, 20); !out.Bounds().Eq(want) {
		t.Fatalf("bounds %v, want %v", out.Bounds(), want)
	}
	if origin != (image.Point{}) {
		t.Fatalf("origin = %v, want 0,0", origin)
	}
	shadowAt := subject.Add(opts.Offset)
	if out.RGBAAt(shadowAt.X, shadowAt.Y).A == 0 {
		t.Fatalf("expected shadow alpha at %v", shadowAt)
	}
}

func TestWithShadowZeroOpacity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out, _ := WithShadow(img, ShadowOptions{Radius: 12, Offset: image.Pt(20, 10), Opacity: 0})
	if out != img {
		t.Fatalf("zero opacity should return the input")
	}
}

func TestWithShadowNegativeOffset(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{A: 255})
	out, origin := WithShadow(img, ShadowOptions{Radius: 1, Offset: image.Pt(-5, -3), Opacity: 1})
	if origin != image.Pt(6, 4) {
		t.Fatalf("origin = %v, want 6,4", origin)
	}
	if out.RGBAAt(origin.X, origin.Y).A != 255 {
		t.Fatalf("image content should be drawn at the returned origin")
	}
}

func TestWithShadowBlursNeighbours(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{A: 255})
	opts := ShadowOptions{Radius: 2, Offset: image.Pt(3, 0), Opacity: 1}
	out, _ := WithShadow(img, opts)
	base := opts.Offset
	if out.RGBAAt(base.X, base.Y).A == 0 {
		t.Fatal("expected alpha at base shadow location")
	}
	if out.RGBAAt(base.X+1, base.Y).A == 0 {
		t.Fatal("expected blurred alpha to reach the neighbour")
	}
}
