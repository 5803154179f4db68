package region

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	labelWidth   = 100
	labelHeight  = 20
	labelOffsetY = 25
	labelPadX    = 5
	labelBaseY   = 10
	labelSize    = 12
)

var (
	labelOnce sync.Once
	labelFace font.Face
)

func labelFont() font.Face {
	labelOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			log.Printf("parse label font: %v", err)
			return
		}
		labelFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: labelSize, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			log.Printf("label font face: %v", err)
		}
	})
	return labelFace
}

// Label formats selection dimensions as shown above the selection.
func Label(w, h float64) string {
	return fmt.Sprintf("%d × %d", int(math.Round(w)), int(math.Round(h)))
}

// Preview paints the selection screen onto dst: the base image scaled to
// the viewport under a dimming layer, the active selection undimmed with a
// border and a size label.
func (s *Selector) Preview(dst *image.RGBA) {
	area := s.view.Rect()
	if area.Empty() || s.base == nil {
		return
	}
	scaled := s.scaledBase(area)
	draw.Draw(dst, area, scaled, image.Point{}, draw.Src)

	dim := color.NRGBA{A: uint8(math.Round(clamp01(s.opts.DimOpacity) * 255))}
	draw.Draw(dst, area, image.NewUniform(dim), image.Point{}, draw.Over)

	sel, ok := s.Selection()
	if !ok {
		return
	}
	r := image.Rect(
		int(math.Round(sel.X)), int(math.Round(sel.Y)),
		int(math.Round(sel.X+sel.W)), int(math.Round(sel.Y+sel.H)),
	)
	if clear := r.Intersect(area); !clear.Empty() {
		draw.Draw(dst, clear, scaled, clear.Min.Sub(area.Min), draw.Src)
	}
	drawBorder(dst, r, s.opts.BorderWidth, s.opts.BorderColor)
	drawLabel(dst, r.Min, Label(sel.W, sel.H), s.opts.BorderColor)
}

// scaledBase returns the base image resized to area, reusing the previous
// result while the displayed size is unchanged.
func (s *Selector) scaledBase(area image.Rectangle) *image.RGBA {
	size := image.Rect(0, 0, area.Dx(), area.Dy())
	if s.scaled != nil && s.scaledFor == size {
		return s.scaled
	}
	out := image.NewRGBA(size)
	if size.Eq(s.base.Bounds().Sub(s.base.Bounds().Min)) {
		draw.Draw(out, size, s.base, s.base.Bounds().Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(out, size, s.base, s.base.Bounds(), draw.Src, nil)
	}
	s.scaled = out
	s.scaledFor = size
	return out
}

// drawBorder strokes rect with a line of the given width centred on its
// edges.
func drawBorder(dst *image.RGBA, rect image.Rectangle, width int, col color.Color) {
	if width <= 0 {
		return
	}
	outer := rect.Inset(-width / 2)
	inner := outer.Inset(width)
	src := image.NewUniform(col)
	edges := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y),
		image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y),
		image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

func drawLabel(dst *image.RGBA, at image.Point, text string, bg color.Color) {
	box := image.Rect(at.X, at.Y-labelOffsetY, at.X+labelWidth, at.Y-labelOffsetY+labelHeight)
	draw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(bg), image.Point{}, draw.Src)
	face := labelFont()
	if face == nil {
		return
	}
	d := &font.Drawer{Dst: dst, Src: image.White, Face: face}
	d.Dot = fixed.P(at.X+labelPadX, at.Y-labelBaseY)
	d.DrawString(text)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
