package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// arcSteps is the number of segments used for each half circle of a cap.
const arcSteps = 12

type segment struct {
	a, b Point
}

// strokeSegments paints the union of round-capped segments onto dst in col.
// Segments are accumulated into one coverage mask first so overlapping
// pieces of the same shape are not blended twice.
func strokeSegments(dst *image.RGBA, segs []segment, width float64, col color.Color) {
	if len(segs) == 0 {
		return
	}
	hw := width / 2
	if hw < 0.5 {
		hw = 0.5
	}
	area := segmentBounds(segs, hw).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}
	mask := image.NewAlpha(image.Rect(0, 0, area.Dx(), area.Dy()))
	origin := Point{X: float64(area.Min.X), Y: float64(area.Min.Y)}
	for _, s := range segs {
		fillCapsule(mask, s.a, s.b, hw, origin)
	}
	draw.DrawMask(dst, area, image.NewUniform(col), image.Point{}, mask, image.Point{}, draw.Over)
}

func segmentBounds(segs []segment, hw float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range segs {
		for _, p := range []Point{s.a, s.b} {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	pad := hw + 1
	return image.Rect(
		int(math.Floor(minX-pad)),
		int(math.Floor(minY-pad)),
		int(math.Ceil(maxX+pad)),
		int(math.Ceil(maxY+pad)),
	)
}

// fillCapsule rasterizes a segment with round ends into mask. origin is the
// image position of the mask's top-left pixel.
func fillCapsule(mask *image.Alpha, a, b Point, hw float64, origin Point) {
	size := mask.Bounds().Size()
	z := vector.NewRasterizer(size.X, size.Y)
	ax, ay := float32(a.X-origin.X), float32(a.Y-origin.Y)
	bx, by := float32(b.X-origin.X), float32(b.Y-origin.Y)
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length < 1e-6 {
		z.MoveTo(ax+float32(hw), ay)
		for i := 1; i < arcSteps*2; i++ {
			t := 2 * math.Pi * float64(i) / float64(arcSteps*2)
			z.LineTo(ax+float32(hw*math.Cos(t)), ay+float32(hw*math.Sin(t)))
		}
		z.ClosePath()
		z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
		return
	}
	theta := math.Atan2(dy, dx)
	// Walk the outline clockwise from the left side of a, around the cap at
	// b, back along the right side and around the cap at a.
	start := theta + math.Pi/2
	z.MoveTo(ax+float32(hw*math.Cos(start)), ay+float32(hw*math.Sin(start)))
	arc(z, bx, by, hw, start)
	arc(z, ax, ay, hw, start-math.Pi)
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
}

// arc adds a line to the start of a half circle around (cx, cy) and sweeps
// it by -π from angle from.
func arc(z *vector.Rasterizer, cx, cy float32, r, from float64) {
	for i := 0; i <= arcSteps; i++ {
		t := from - math.Pi*float64(i)/float64(arcSteps)
		z.LineTo(cx+float32(r*math.Cos(t)), cy+float32(r*math.Sin(t)))
	}
}
