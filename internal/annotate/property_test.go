package annotate

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestNormalizeRectSymmetric verifies drag direction does not change the rectangle.
// Property: NormalizeRect(a, b) == NormalizeRect(b, a), with non-negative size
func TestNormalizeRectSymmetric(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("rectangle is independent of drag direction", prop.ForAll(
		func(ax, ay, bx, by float64) bool {
			a, b := Pt(ax, ay), Pt(bx, by)
			r1 := NormalizeRect(a, b)
			r2 := NormalizeRect(b, a)
			return r1 == r2 && r1.W >= 0 && r1.H >= 0
		},
		gen.Float64Range(-500, 500),
		gen.Float64Range(-500, 500),
		gen.Float64Range(-500, 500),
		gen.Float64Range(-500, 500),
	))

	properties.TestingRun(t)
}

// TestBoxRenderSymmetric verifies Box{a,b} and Box{b,a} paint identical pixels.
func TestBoxRenderSymmetric(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)
	r := NewRenderer()
	style := DefaultStyle(color.RGBA{0x3b, 0x82, 0xf6, 0xff})

	properties.Property("box rendering is independent of drag direction", prop.ForAll(
		func(ax, ay, bx, by int) bool {
			a, b := Pt(float64(ax), float64(ay)), Pt(float64(bx), float64(by))
			img1 := image.NewRGBA(image.Rect(0, 0, 80, 80))
			img2 := image.NewRGBA(image.Rect(0, 0, 80, 80))
			r.Render(img1, Box(a, b, style))
			r.Render(img2, Box(b, a, style))
			return bytes.Equal(img1.Pix, img2.Pix)
		},
		gen.IntRange(0, 79),
		gen.IntRange(0, 79),
		gen.IntRange(0, 79),
		gen.IntRange(0, 79),
	))

	properties.TestingRun(t)
}

// TestViewportScalingProperty verifies mapping scales linearly with the
// intrinsic/displayed ratio.
func TestViewportScalingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("mapped = offset * intrinsic/displayed", prop.ForAll(
		func(k, dx, dy int) bool {
			v := Viewport{Left: 5, Top: 9, Width: 100, Height: 50, Intrinsic: image.Pt(100*k, 50*k)}
			p, err := v.ToImage(5+float64(dx), 9+float64(dy))
			if err != nil {
				return false
			}
			return p.X == float64(dx*k) && p.Y == float64(dy*k)
		},
		gen.IntRange(1, 4),
		gen.IntRange(0, 100),
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}
