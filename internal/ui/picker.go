package ui

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/snipt/internal/capture"
)

const (
	tileWidth   = 240
	tileHeight  = 160
	tileGap     = 16
	tileCaption = 20
)

var (
	pickerBackground = color.RGBA{40, 40, 40, 255}
	tileBackground   = color.RGBA{64, 64, 64, 255}
	tileHover        = color.RGBA{59, 130, 246, 255}
)

// pickerTile is one source shown in the picker grid.
type pickerTile struct {
	source capture.Source
	rect   image.Rectangle
}

// layoutPicker arranges sources left to right, top to bottom, inside area.
// The list order is kept, so screens come before windows.
func layoutPicker(sources []capture.Source, area image.Rectangle) []pickerTile {
	cols := (area.Dx() - tileGap) / (tileWidth + tileGap)
	if cols < 1 {
		cols = 1
	}
	tiles := make([]pickerTile, 0, len(sources))
	for i, src := range sources {
		x := area.Min.X + tileGap + (i%cols)*(tileWidth+tileGap)
		y := area.Min.Y + tileGap + (i/cols)*(tileHeight+tileGap)
		tiles = append(tiles, pickerTile{source: src, rect: image.Rect(x, y, x+tileWidth, y+tileHeight)})
	}
	return tiles
}

func tileAt(tiles []pickerTile, p image.Point) int {
	for i, t := range tiles {
		if p.In(t.rect) {
			return i
		}
	}
	return -1
}

func drawPicker(dst *image.RGBA, area image.Rectangle, tiles []pickerTile, hover int) {
	draw.Draw(dst, area, &image.Uniform{pickerBackground}, image.Point{}, draw.Src)
	for i, t := range tiles {
		bg := tileBackground
		if i == hover {
			bg = tileHover
		}
		draw.Draw(dst, t.rect, &image.Uniform{bg}, image.Point{}, draw.Src)

		thumbArea := image.Rect(t.rect.Min.X+4, t.rect.Min.Y+4, t.rect.Max.X-4, t.rect.Max.Y-tileCaption)
		if thumb := t.source.Thumbnail; thumb != nil {
			xdraw.ApproxBiLinear.Scale(dst, fitRect(thumb.Bounds().Size(), thumbArea), thumb, thumb.Bounds(), draw.Src, nil)
		}
		d := &font.Drawer{Dst: dst, Src: image.White, Face: basicfont.Face7x13,
			Dot: fixed.P(t.rect.Min.X+6, t.rect.Max.Y-6)}
		d.DrawString(caption(t.source.DisplayName, (tileWidth-12)/7))
	}
}

// fitRect centres a rectangle of the given size's aspect ratio in area.
func fitRect(size image.Point, area image.Rectangle) image.Rectangle {
	if size.X <= 0 || size.Y <= 0 || area.Empty() {
		return image.Rectangle{}
	}
	w, h := area.Dx(), area.Dx()*size.Y/size.X
	if h > area.Dy() {
		w, h = area.Dy()*size.X/size.Y, area.Dy()
	}
	x := area.Min.X + (area.Dx()-w)/2
	y := area.Min.Y + (area.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// caption shortens s to limit runes for the fixed-width caption font.
func caption(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit || limit < 4 {
		return s
	}
	return string(r[:limit-3]) + "..."
}
