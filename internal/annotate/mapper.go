package annotate

import (
	"errors"
	"image"
	"math"
)

// ErrNotLaidOut is returned when a viewport has no displayed area yet.
var ErrNotLaidOut = errors.New("surface has no displayed size")

// Viewport relates the on-screen box a surface occupies to the surface's
// intrinsic pixel size.
type Viewport struct {
	Left, Top     float64
	Width, Height float64
	Intrinsic     image.Point
}

// FitViewport scales intrinsic to fit inside area, keeping its aspect ratio.
// The surface is anchored at the top-left corner of area.
func FitViewport(intrinsic image.Point, area image.Rectangle) Viewport {
	v := Viewport{Left: float64(area.Min.X), Top: float64(area.Min.Y), Intrinsic: intrinsic}
	if intrinsic.X <= 0 || intrinsic.Y <= 0 || area.Dx() <= 0 || area.Dy() <= 0 {
		return v
	}
	zx := float64(area.Dx()) / float64(intrinsic.X)
	zy := float64(area.Dy()) / float64(intrinsic.Y)
	zoom := math.Min(zx, zy)
	v.Width = float64(intrinsic.X) * zoom
	v.Height = float64(intrinsic.Y) * zoom
	return v
}

// Scale returns the intrinsic-per-displayed pixel ratio on each axis.
func (v Viewport) Scale() (sx, sy float64, err error) {
	if !(v.Width > 0) || !(v.Height > 0) {
		return 0, 0, ErrNotLaidOut
	}
	return float64(v.Intrinsic.X) / v.Width, float64(v.Intrinsic.Y) / v.Height, nil
}

// ToImage maps a pointer position in display coordinates to image pixels.
func (v Viewport) ToImage(clientX, clientY float64) (Point, error) {
	sx, sy, err := v.Scale()
	if err != nil {
		return Point{}, err
	}
	return Point{
		X: (clientX - v.Left) * sx,
		Y: (clientY - v.Top) * sy,
	}, nil
}

// ToDisplay maps an image position back into display coordinates.
func (v Viewport) ToDisplay(p Point) (x, y float64, err error) {
	sx, sy, err := v.Scale()
	if err != nil {
		return 0, 0, err
	}
	return v.Left + p.X/sx, v.Top + p.Y/sy, nil
}

// Rect returns the displayed box as an integer rectangle.
func (v Viewport) Rect() image.Rectangle {
	x0 := int(math.Round(v.Left))
	y0 := int(math.Round(v.Top))
	return image.Rect(x0, y0, x0+int(math.Round(v.Width)), y0+int(math.Round(v.Height)))
}

// Contains reports whether the display position lies over the surface.
func (v Viewport) Contains(clientX, clientY float64) bool {
	return clientX >= v.Left && clientX < v.Left+v.Width &&
		clientY >= v.Top && clientY < v.Top+v.Height
}
