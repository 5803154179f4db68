package ui

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
	StateSelected
)

// Button represents an interactive toolbar element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [4]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [4]*image.RGBA{}
	}
}

var (
	buttonFace     = color.RGBA{200, 200, 200, 255}
	buttonHover    = color.RGBA{180, 180, 180, 255}
	buttonPressed  = color.RGBA{150, 150, 150, 255}
	buttonSelected = color.RGBA{140, 170, 220, 255}
)

func stateColor(state ButtonState) color.RGBA {
	switch state {
	case StateHover:
		return buttonHover
	case StatePressed:
		return buttonPressed
	case StateSelected:
		return buttonSelected
	}
	return buttonFace
}

// LabelButton is a text button selecting a tool or running an action.
type LabelButton struct {
	label string
	rect  image.Rectangle
	// selected reports whether the button shows as active.
	selected   func() bool
	onActivate func()
}

func (b *LabelButton) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, b.rect, &image.Uniform{stateColor(state)}, image.Point{}, draw.Src)
	drawRect(dst, b.rect, color.Black, 1)
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13,
		Dot: fixed.P(b.rect.Min.X+4, b.rect.Min.Y+16)}
	d.DrawString(b.label)
}

func (b *LabelButton) Rect() image.Rectangle     { return b.rect }
func (b *LabelButton) SetRect(r image.Rectangle) { b.rect = r }

func (b *LabelButton) Activate() {
	if b.onActivate != nil {
		b.onActivate()
	}
}

// Selected reports whether the button is the active choice.
func (b *LabelButton) Selected() bool { return b.selected != nil && b.selected() }

// SwatchButton is a palette entry.
type SwatchButton struct {
	name       string
	col        color.RGBA
	rect       image.Rectangle
	selected   func() bool
	onActivate func()
}

func (b *SwatchButton) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, b.rect, &image.Uniform{b.col}, image.Point{}, draw.Src)
	switch state {
	case StateSelected:
		drawRect(dst, b.rect, color.White, 2)
		drawRect(dst, b.rect.Inset(2), color.Black, 1)
	case StateHover, StatePressed:
		drawRect(dst, b.rect, color.RGBA{100, 100, 100, 255}, 2)
	default:
		drawRect(dst, b.rect, color.Black, 1)
	}
}

func (b *SwatchButton) Rect() image.Rectangle     { return b.rect }
func (b *SwatchButton) SetRect(r image.Rectangle) { b.rect = r }

func (b *SwatchButton) Activate() {
	if b.onActivate != nil {
		b.onActivate()
	}
}

func (b *SwatchButton) Selected() bool { return b.selected != nil && b.selected() }

type selectable interface {
	Selected() bool
}

// drawRect outlines rect with the given thickness, inside its bounds.
func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	src := &image.Uniform{col}
	for i := 0; i < thick; i++ {
		r := rect.Inset(i)
		if r.Empty() {
			return
		}
		draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), src, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), src, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
	}
}
