package compose

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow added behind an exported image.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions returns a soft shadow that suits most captures.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{Radius: 24, Offset: image.Pt(16, 16), Opacity: 0.55}
}

// WithShadow returns a new image holding img over a blurred drop shadow. The
// canvas grows to fit the shadow; the returned point is where img's top-left
// corner landed. img itself is not modified.
func WithShadow(img *image.RGBA, opts ShadowOptions) (*image.RGBA, image.Point) {
	if img == nil || img.Bounds().Empty() || opts.Opacity <= 0 {
		return img, image.Point{}
	}
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}

	src := img.Bounds()
	padded := src.Inset(-radius)
	shadow := padded.Add(opts.Offset)
	canvas := src.Union(shadow)

	mask := alphaMask(img, padded)
	blurred := boxBlur(mask, radius)

	out := image.NewRGBA(canvas.Sub(canvas.Min))
	tint := image.NewUniform(color.NRGBA{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(out, shadow.Sub(canvas.Min), tint, image.Point{}, blurred, image.Point{}, draw.Over)
	draw.Draw(out, src.Sub(canvas.Min), img, src.Min, draw.Over)
	return out, src.Min.Sub(canvas.Min)
}

// alphaMask copies img's alpha channel into a zero-based mask covering area.
func alphaMask(img *image.RGBA, area image.Rectangle) *image.Alpha {
	mask := image.NewAlpha(area.Sub(area.Min))
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a != 0 {
				mask.SetAlpha(x-area.Min.X, y-area.Min.Y, color.Alpha{A: a})
			}
		}
	}
	return mask
}

// boxBlur applies a separable box blur using running sums per row and column.
func boxBlur(src *image.Alpha, radius int) *image.Alpha {
	out := image.NewAlpha(src.Bounds())
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	tmp := make([]uint8, w*h)
	sums := make([]int, max(w, h)+1)

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for x := 0; x < w; x++ {
			sums[x+1] = sums[x] + int(row[x])
		}
		for x := 0; x < w; x++ {
			lo, hi := max(x-radius, 0), min(x+radius, w-1)
			tmp[y*w+x] = uint8((sums[hi+1] - sums[lo]) / (hi - lo + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			sums[y+1] = sums[y] + int(tmp[y*w+x])
		}
		for y := 0; y < h; y++ {
			lo, hi := max(y-radius, 0), min(y+radius, h-1)
			out.Pix[y*out.Stride+x] = uint8((sums[hi+1] - sums[lo]) / (hi - lo + 1))
		}
	}
	return out
}
