// Package annotate holds the vector annotation model, the undoable log of
// annotations for a capture and the renderer that rasterizes them onto an
// overlay surface.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Point is a position in image pixels.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Image rounds p to the nearest integer pixel.
func (p Point) Image() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

const (
	DefaultStrokeWidth      = 3
	DefaultFontSize         = 24
	DefaultHighlightOpacity = 0.3
	DefaultHeadLength       = 15
)

// Style describes how an annotation is drawn.
type Style struct {
	Color            color.RGBA
	StrokeWidth      float64
	FontSize         float64
	HighlightOpacity float64
}

// DefaultStyle returns the session style with the given color.
func DefaultStyle(col color.RGBA) Style {
	return Style{
		Color:            col,
		StrokeWidth:      DefaultStrokeWidth,
		FontSize:         DefaultFontSize,
		HighlightOpacity: DefaultHighlightOpacity,
	}
}

// Kind identifies the annotation variant.
type Kind int

const (
	KindArrow Kind = iota
	KindBox
	KindHighlight
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindArrow:
		return "arrow"
	case KindBox:
		return "box"
	case KindHighlight:
		return "highlight"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Annotation is one drawn primitive. Arrow, Box and Highlight use Start and
// End; Text uses Position and Text.
type Annotation struct {
	Kind     Kind
	Start    Point
	End      Point
	Position Point
	Text     string
	Style    Style
}

// Arrow builds an arrow annotation.
func Arrow(start, end Point, style Style) Annotation {
	return Annotation{Kind: KindArrow, Start: start, End: end, Style: style}
}

// Box builds an outlined rectangle annotation.
func Box(start, end Point, style Style) Annotation {
	return Annotation{Kind: KindBox, Start: start, End: end, Style: style}
}

// Highlight builds a translucent filled rectangle annotation.
func Highlight(start, end Point, style Style) Annotation {
	return Annotation{Kind: KindHighlight, Start: start, End: end, Style: style}
}

// Text builds a text annotation anchored at the baseline position.
func Text(pos Point, text string, style Style) Annotation {
	return Annotation{Kind: KindText, Position: pos, Text: text, Style: style}
}

// Rect is a normalized rectangle in image pixels.
type Rect struct {
	X, Y, W, H float64
}

// NormalizeRect returns the rectangle spanned by a and b regardless of drag
// direction.
func NormalizeRect(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(b.X - a.X),
		H: math.Abs(b.Y - a.Y),
	}
}

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{r.X, r.Y} }

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{r.X + r.W, r.Y + r.H} }

// Image converts r to an integer rectangle, rounding each edge.
func (r Rect) Image() image.Rectangle {
	return image.Rectangle{Min: r.Min().Image(), Max: r.Max().Image()}
}

// Bounds returns the normalized rectangle of a two-point annotation. Text
// annotations report a zero-sized rectangle at their position.
func (a Annotation) Bounds() Rect {
	if a.Kind == KindText {
		return Rect{X: a.Position.X, Y: a.Position.Y}
	}
	return NormalizeRect(a.Start, a.End)
}
