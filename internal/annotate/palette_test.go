package annotate

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"red", color.RGBA{0xef, 0x44, 0x44, 0xff}},
		{"Blue", color.RGBA{0x3b, 0x82, 0xf6, 0xff}},
		{"#10b981", color.RGBA{0x10, 0xb9, 0x81, 0xff}},
		{"#fff", color.RGBA{0xff, 0xff, 0xff, 0xff}},
		{"#00000080", color.RGBA{0, 0, 0, 0x80}},
		{"teal", color.RGBA{0x00, 0x80, 0x80, 0xff}},
	}
	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"", "#12", "#zzzzzz", "notacolor"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) expected error", bad)
		}
	}
}

func TestEnsurePaletteColor(t *testing.T) {
	col := color.RGBA{1, 2, 3, 255}
	idx := EnsurePaletteColor(col, "")
	if PaletteColorAt(idx) != col {
		t.Fatalf("palette index %d does not hold the new color", idx)
	}
	if again := EnsurePaletteColor(col, "other"); again != idx {
		t.Fatalf("existing color should reuse index %d, got %d", idx, again)
	}
	if name := PaletteColors()[idx].Name; name != "#010203" {
		t.Fatalf("generated name = %q", name)
	}
}

func TestPaletteColorAtClamps(t *testing.T) {
	if PaletteColorAt(-3) != PaletteColorAt(0) {
		t.Fatalf("negative index should clamp to the first color")
	}
	if PaletteColorAt(1000) != PaletteColorAt(PaletteLen()-1) {
		t.Fatalf("large index should clamp to the last color")
	}
}
