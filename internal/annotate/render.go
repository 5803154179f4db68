package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
)

// Renderer rasterizes annotations onto an overlay surface.
type Renderer struct {
	// HeadLength is the length of each arrowhead stroke in pixels. It does
	// not depend on the arrow's length.
	HeadLength float64

	faces faceCache
}

// NewRenderer returns a renderer with the default arrowhead length.
func NewRenderer() *Renderer {
	return &Renderer{HeadLength: DefaultHeadLength}
}

// Redraw clears dst and renders every annotation in order, earliest first.
func (r *Renderer) Redraw(dst *image.RGBA, annotations []Annotation) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	for _, a := range annotations {
		r.Render(dst, a)
	}
}

// Render draws a single annotation onto dst. Pixels outside the annotation's
// footprint are left untouched.
func (r *Renderer) Render(dst *image.RGBA, a Annotation) {
	if dst == nil {
		return
	}
	switch a.Kind {
	case KindArrow:
		strokeSegments(dst, r.arrowSegments(a.Start, a.End), a.Style.StrokeWidth, a.Style.Color)
	case KindBox:
		strokeSegments(dst, boxSegments(a.Bounds()), a.Style.StrokeWidth, a.Style.Color)
	case KindHighlight:
		fillHighlight(dst, a.Bounds(), a.Style)
	case KindText:
		r.drawText(dst, a)
	}
}

// Footprint returns the pixel box an annotation may touch when rendered.
func (r *Renderer) Footprint(a Annotation) image.Rectangle {
	hw := math.Max(a.Style.StrokeWidth/2, 0.5)
	switch a.Kind {
	case KindArrow:
		return segmentBounds(r.arrowSegments(a.Start, a.End), hw)
	case KindBox:
		return segmentBounds(boxSegments(a.Bounds()), hw)
	case KindHighlight:
		return highlightRect(a.Bounds())
	case KindText:
		face, err := r.faces.face(a.Style.FontSize)
		if err != nil {
			return image.Rectangle{}
		}
		return textBounds(face, a.Position, a.Text).Inset(-1)
	}
	return image.Rectangle{}
}

func (r *Renderer) headLength() float64 {
	if r.HeadLength > 0 {
		return r.HeadLength
	}
	return DefaultHeadLength
}

// arrowSegments returns the shaft followed by the two head strokes, each
// angled π/6 either side of the shaft direction.
func (r *Renderer) arrowSegments(start, end Point) []segment {
	angle := math.Atan2(end.Y-start.Y, end.X-start.X)
	head := r.headLength()
	h1 := Point{
		X: end.X - head*math.Cos(angle-math.Pi/6),
		Y: end.Y - head*math.Sin(angle-math.Pi/6),
	}
	h2 := Point{
		X: end.X - head*math.Cos(angle+math.Pi/6),
		Y: end.Y - head*math.Sin(angle+math.Pi/6),
	}
	return []segment{{start, end}, {end, h1}, {end, h2}}
}

func boxSegments(rect Rect) []segment {
	tl := rect.Min()
	br := rect.Max()
	tr := Point{br.X, tl.Y}
	bl := Point{tl.X, br.Y}
	return []segment{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}}
}

func highlightRect(rect Rect) image.Rectangle {
	return rect.Image()
}

// fillHighlight blends a translucent fill over rect. The opacity applies to
// this fill only; the style color itself is not modified.
func fillHighlight(dst *image.RGBA, rect Rect, style Style) {
	area := highlightRect(rect).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}
	opacity := style.HighlightOpacity
	if opacity <= 0 || opacity > 1 {
		opacity = DefaultHighlightOpacity
	}
	fill := color.NRGBA{
		R: style.Color.R,
		G: style.Color.G,
		B: style.Color.B,
		A: uint8(math.Round(opacity * 255)),
	}
	draw.Draw(dst, area, image.NewUniform(fill), image.Point{}, draw.Over)
}

func (r *Renderer) drawText(dst *image.RGBA, a Annotation) {
	if a.Text == "" {
		return
	}
	face, err := r.faces.face(a.Style.FontSize)
	if err != nil {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(a.Style.Color),
		Face: face,
		Dot:  toFixed(a.Position),
	}
	d.DrawString(a.Text)
}

// MeasureText returns the advance width of text at the given font size.
func (r *Renderer) MeasureText(text string, size float64) int {
	face, err := r.faces.face(size)
	if err != nil {
		return 0
	}
	return font.MeasureString(face, text).Ceil()
}
