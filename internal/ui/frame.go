package ui

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/snipt/internal/session"
)

var (
	checkerLight = color.RGBA{220, 220, 220, 255}
	checkerDark  = color.RGBA{192, 192, 192, 255}
	statusBg     = color.RGBA{245, 245, 245, 255}
	messageBg    = color.RGBA{255, 236, 179, 255}
)

// scaledCache keeps the base image resized for the current viewport.
type scaledCache struct {
	src  *image.RGBA
	size image.Point
	img  *image.RGBA
}

func (c *scaledCache) get(src *image.RGBA, size image.Point) *image.RGBA {
	if c.img != nil && c.src == src && c.size == size {
		return c.img
	}
	out := image.NewRGBA(image.Rectangle{Max: size})
	if size == src.Bounds().Size() {
		draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(out, out.Bounds(), src, src.Bounds(), draw.Src, nil)
	}
	c.src, c.size, c.img = src, size, out
	return out
}

// drawCheckerboard fills rect of dst with a checkerboard pattern.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// drawBackdrop fills area of dst with a cached checkerboard pattern.
func (w *Window) drawBackdrop(dst *image.RGBA, area image.Rectangle) {
	if w.backdrop == nil || w.backdrop.Bounds() != area {
		w.backdrop = image.NewRGBA(area)
		drawCheckerboard(w.backdrop, area, 8, checkerLight, checkerDark)
	}
	draw.Draw(dst, area, w.backdrop, area.Min, draw.Src)
}

// render draws the whole window into dst.
func (w *Window) render(dst *image.RGBA) {
	area := w.canvas()
	switch w.ctrl.Phase() {
	case session.PhaseChoosingSource:
		drawPicker(dst, area, w.tiles, w.hoverTile)
	case session.PhaseSelectingRegion:
		draw.Draw(dst, area, image.Black, image.Point{}, draw.Src)
		w.ctrl.Preview(dst)
	default:
		w.drawBackdrop(dst, area)
		w.drawSession(dst)
	}
	if w.showToolbar() {
		w.toolbar.draw(dst, w.height-statusHeight)
	}
	w.drawStatus(dst)
}

func (w *Window) drawSession(dst *image.RGBA) {
	s := w.ctrl.Session()
	if s == nil {
		return
	}
	view := w.ctrl.Viewport()
	rect := view.Rect()
	if rect.Empty() {
		return
	}
	base := w.scaled.get(s.Base, rect.Size())
	draw.Draw(dst, rect, base, image.Point{}, draw.Src)
	if overlay := w.ctrl.Overlay(); overlay != nil {
		xdraw.ApproxBiLinear.Scale(dst, rect, overlay, overlay.Bounds(), draw.Over, nil)
	}
	w.drawCaret(dst)
}

// drawCaret marks where typed text will continue.
func (w *Window) drawCaret(dst *image.RGBA) {
	caret, ok := w.ctrl.TextCaret()
	if !ok {
		return
	}
	view := w.ctrl.Viewport()
	x, y, err := view.ToDisplay(caret)
	if err != nil {
		return
	}
	sx, sy, _ := view.Scale()
	height := w.ctrl.Style().FontSize / sy
	width := math.Max(1, 2/sx)
	r := image.Rect(int(x), int(y-height), int(x+width), int(y+height/4))
	draw.Draw(dst, r.Intersect(dst.Bounds()), &image.Uniform{w.ctrl.Style().Color}, image.Point{}, draw.Src)
}

func (w *Window) status() string {
	if w.message != "" && w.now().Before(w.messageUntil) {
		return w.message
	}
	switch w.ctrl.Phase() {
	case session.PhaseChoosingSource:
		return "Choose a screen or window to capture (1-9), Esc to cancel"
	case session.PhaseSelectingRegion:
		return "Drag to select an area, Esc to cancel"
	case session.PhaseAwaitingText:
		return "Type text, Enter to place it, Esc to discard"
	case session.PhaseExporting:
		if p := w.ctrl.Pending(); p != nil {
			return string(p.Action) + " in progress..."
		}
		return "Exporting..."
	}
	return "Draw with a tool, then copy or save. Ctrl+Z undoes."
}

func (w *Window) drawStatus(dst *image.RGBA) {
	r := image.Rect(0, w.height-statusHeight, w.width, w.height)
	bg := statusBg
	if w.message != "" && w.now().Before(w.messageUntil) {
		bg = messageBg
	}
	draw.Draw(dst, r, &image.Uniform{bg}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13,
		Dot: fixed.P(r.Min.X+6, r.Min.Y+16)}
	d.DrawString(w.status())
}
