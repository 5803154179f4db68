// Package region implements the drag-to-select flow that crops a full
// screen capture down to the rectangle the user picks.
package region

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/example/snipt/internal/annotate"
)

// State is the selector's position in its drag cycle.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateCommitted:
		return "committed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

const (
	DefaultMinSize    = 10
	DefaultDimOpacity = 0.5
)

// Options tunes the selector.
type Options struct {
	// MinSize is the size, in display pixels, a selection must exceed on
	// both axes to produce a crop.
	MinSize     float64
	DimOpacity  float64
	BorderColor color.RGBA
	BorderWidth int
}

// DefaultOptions returns the stock selector settings.
func DefaultOptions() Options {
	return Options{
		MinSize:     DefaultMinSize,
		DimOpacity:  DefaultDimOpacity,
		BorderColor: color.RGBA{0x3b, 0x82, 0xf6, 0xff},
		BorderWidth: 2,
	}
}

// Selector tracks one rectangle selection over a base image. Pointer
// positions are display coordinates; they are mapped to image pixels
// through the viewport only when the selection is committed.
type Selector struct {
	base  *image.RGBA
	view  annotate.Viewport
	opts  Options
	state State

	start   annotate.Point
	current annotate.Point
	result  *image.RGBA

	scaled    *image.RGBA
	scaledFor image.Rectangle
}

// New creates a selector over base displayed through view.
func New(base *image.RGBA, view annotate.Viewport, opts Options) *Selector {
	if opts.MinSize < 0 {
		opts.MinSize = 0
	}
	if opts.BorderWidth <= 0 {
		opts.BorderWidth = DefaultOptions().BorderWidth
	}
	if opts.BorderColor == (color.RGBA{}) {
		opts.BorderColor = DefaultOptions().BorderColor
	}
	return &Selector{base: base, view: view, opts: opts}
}

// SetViewport updates where the base image is displayed, for example after
// the window is resized.
func (s *Selector) SetViewport(v annotate.Viewport) { s.view = v }

// Viewport returns the current display mapping.
func (s *Selector) Viewport() annotate.Viewport { return s.view }

// State reports the current state.
func (s *Selector) State() State { return s.state }

// Base returns the image being selected from.
func (s *Selector) Base() *image.RGBA { return s.base }

// PointerDown starts a new selection at the display position.
func (s *Selector) PointerDown(x, y float64) {
	if s.state != StateIdle {
		return
	}
	s.start = annotate.Pt(x, y)
	s.current = s.start
	s.state = StateSelecting
}

// PointerMove updates the live selection. It reports whether the preview
// needs to be redrawn.
func (s *Selector) PointerMove(x, y float64) bool {
	if s.state != StateSelecting {
		return false
	}
	s.current = annotate.Pt(x, y)
	return true
}

// PointerUp finishes the drag. Selections not larger than MinSize on both
// axes return to idle without output.
func (s *Selector) PointerUp() (*image.RGBA, bool) {
	if s.state != StateSelecting {
		return nil, false
	}
	sel := annotate.NormalizeRect(s.start, s.current)
	if !(sel.W > s.opts.MinSize && sel.H > s.opts.MinSize) {
		s.reset()
		return nil, false
	}
	rect, err := s.imageRect(sel)
	if err != nil {
		s.reset()
		return nil, false
	}
	out := cropImage(s.base, rect)
	if out == nil {
		s.reset()
		return nil, false
	}
	s.result = out
	s.state = StateCommitted
	return out, true
}

// Cancel discards any selection state. It is valid from every state.
func (s *Selector) Cancel() {
	s.reset()
	s.result = nil
}

// Result returns the crop produced by the last committed selection.
func (s *Selector) Result() *image.RGBA { return s.result }

// Selection returns the normalized selection in display coordinates while a
// drag is active.
func (s *Selector) Selection() (annotate.Rect, bool) {
	if s.state != StateSelecting {
		return annotate.Rect{}, false
	}
	return annotate.NormalizeRect(s.start, s.current), true
}

func (s *Selector) reset() {
	s.state = StateIdle
	s.start = annotate.Point{}
	s.current = annotate.Point{}
}

// imageRect maps a display selection to a pixel rectangle inside the base.
func (s *Selector) imageRect(sel annotate.Rect) (image.Rectangle, error) {
	lo, err := s.view.ToImage(sel.X, sel.Y)
	if err != nil {
		return image.Rectangle{}, err
	}
	hi, err := s.view.ToImage(sel.X+sel.W, sel.Y+sel.H)
	if err != nil {
		return image.Rectangle{}, err
	}
	r := image.Rect(
		int(math.Round(lo.X)), int(math.Round(lo.Y)),
		int(math.Round(hi.X)), int(math.Round(hi.Y)),
	)
	return r.Intersect(s.base.Bounds()), nil
}

// cropImage copies rect out of img into a new zero-based image.
func cropImage(img *image.RGBA, rect image.Rectangle) *image.RGBA {
	if img == nil || rect.Empty() {
		return nil
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}
