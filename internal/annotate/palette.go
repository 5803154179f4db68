package annotate

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/colornames"
)

// PaletteColor is a named swatch offered by the toolbar.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var (
	paletteMu sync.RWMutex
	palette   = []PaletteColor{
		{"Red", color.RGBA{0xef, 0x44, 0x44, 0xff}},
		{"Blue", color.RGBA{0x3b, 0x82, 0xf6, 0xff}},
		{"Green", color.RGBA{0x10, 0xb9, 0x81, 0xff}},
		{"Yellow", color.RGBA{0xfb, 0xbf, 0x24, 0xff}},
		{"Orange", color.RGBA{0xf9, 0x73, 0x16, 0xff}},
		{"Purple", color.RGBA{0xa8, 0x55, 0xf7, 0xff}},
		{"Black", color.RGBA{0x00, 0x00, 0x00, 0xff}},
		{"White", color.RGBA{0xff, 0xff, 0xff, 0xff}},
	}
)

// DefaultColorIndex is the palette entry selected when a session starts.
const DefaultColorIndex = 0

// PaletteColors returns a copy of the palette.
func PaletteColors() []PaletteColor {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

// PaletteLen returns the number of palette entries.
func PaletteLen() int {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	return len(palette)
}

// PaletteColorAt returns the color at idx, clamping out of range indexes.
func PaletteColorAt(idx int) color.RGBA {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	if idx < 0 {
		idx = 0
	}
	if idx >= len(palette) {
		idx = len(palette) - 1
	}
	return palette[idx].Color
}

// EnsurePaletteColor makes sure col is in the palette and returns its index.
func EnsurePaletteColor(col color.RGBA, name string) int {
	paletteMu.Lock()
	defer paletteMu.Unlock()
	for idx, existing := range palette {
		if existing.Color == col {
			return idx
		}
	}
	if name == "" {
		name = HexColor(col)
	}
	palette = append(palette, PaletteColor{Name: name, Color: col})
	return len(palette) - 1
}

// HexColor formats col as #RRGGBB, or #RRGGBBAA when it is not opaque.
func HexColor(col color.RGBA) string {
	if col.A == 0xff {
		return fmt.Sprintf("#%02X%02X%02X", col.R, col.G, col.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", col.R, col.G, col.B, col.A)
}

// ParseColor accepts a palette name, an SVG color name or a hex value in
// #RGB, #RRGGBB or #RRGGBBAA form.
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	for _, entry := range PaletteColors() {
		if strings.EqualFold(entry.Name, name) {
			return entry.Color, nil
		}
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	if !strings.HasPrefix(name, "#") {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	hex := name[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	var ch [4]uint8
	ch[3] = 0xff
	for i := 0; i*2 < len(hex); i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		ch[i] = uint8(v)
	}
	return color.RGBA{ch[0], ch[1], ch[2], ch[3]}, nil
}
