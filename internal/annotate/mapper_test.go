package annotate

import (
	"errors"
	"image"
	"testing"
)

func TestViewportCenterIdentity(t *testing.T) {
	v := Viewport{Left: 10, Top: 20, Width: 200, Height: 100, Intrinsic: image.Pt(200, 100)}
	p, err := v.ToImage(110, 70)
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	if p != Pt(100, 50) {
		t.Fatalf("center mapped to %v, want (100,50)", p)
	}
}

func TestViewportScaling(t *testing.T) {
	v := Viewport{Width: 100, Height: 100, Intrinsic: image.Pt(200, 200)}
	p, err := v.ToImage(50, 25)
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	if p.X != 100 || p.Y != 50 {
		t.Fatalf("mapped to %v, want (100,50)", p)
	}
}

func TestViewportNotLaidOut(t *testing.T) {
	v := Viewport{Intrinsic: image.Pt(100, 100)}
	if _, err := v.ToImage(5, 5); !errors.Is(err, ErrNotLaidOut) {
		t.Fatalf("expected ErrNotLaidOut, got %v", err)
	}
	if _, _, err := v.ToDisplay(Pt(1, 1)); !errors.Is(err, ErrNotLaidOut) {
		t.Fatalf("expected ErrNotLaidOut, got %v", err)
	}
}

func TestFitViewportKeepsAspect(t *testing.T) {
	v := FitViewport(image.Pt(400, 200), image.Rect(48, 24, 248, 224))
	if v.Width != 200 || v.Height != 100 {
		t.Fatalf("fit size = %gx%g, want 200x100", v.Width, v.Height)
	}
	if v.Left != 48 || v.Top != 24 {
		t.Fatalf("fit origin = %g,%g, want 48,24", v.Left, v.Top)
	}
	if got := v.Rect(); got != image.Rect(48, 24, 248, 124) {
		t.Fatalf("rect = %v", got)
	}
	p, err := v.ToImage(148, 74)
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	if p != Pt(200, 100) {
		t.Fatalf("mapped to %v, want (200,100)", p)
	}
}

func TestFitViewportEmptyArea(t *testing.T) {
	v := FitViewport(image.Pt(400, 200), image.Rectangle{})
	if _, err := v.ToImage(0, 0); !errors.Is(err, ErrNotLaidOut) {
		t.Fatalf("expected ErrNotLaidOut, got %v", err)
	}
}

func TestViewportRoundTrip(t *testing.T) {
	v := Viewport{Left: 3, Top: 7, Width: 640, Height: 360, Intrinsic: image.Pt(1920, 1080)}
	x, y, err := v.ToDisplay(Pt(960, 540))
	if err != nil {
		t.Fatalf("ToDisplay: %v", err)
	}
	p, err := v.ToImage(x, y)
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	if p != Pt(960, 540) {
		t.Fatalf("round trip gave %v", p)
	}
}
