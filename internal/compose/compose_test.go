package compose

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFlattenDrawsOverlayOnBase(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range base.Pix {
		base.Pix[i] = 0xff
	}
	overlay := image.NewRGBA(image.Rect(0, 0, 4, 4))
	overlay.SetRGBA(1, 1, color.RGBA{255, 0, 0, 255})

	out, err := Flatten(base, overlay)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if got := out.RGBAAt(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("overlay pixel = %+v", got)
	}
	if got := out.RGBAAt(2, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("base pixel = %+v", got)
	}
	if out.Bounds() != base.Bounds() {
		t.Fatalf("output bounds %v, want %v", out.Bounds(), base.Bounds())
	}
}

func TestFlattenOffsetBase(t *testing.T) {
	base := image.NewRGBA(image.Rect(10, 10, 14, 13))
	base.SetRGBA(10, 10, color.RGBA{1, 2, 3, 255})
	out, err := Flatten(base, nil)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if got := out.RGBAAt(0, 0); got != (color.RGBA{1, 2, 3, 255}) {
		t.Fatalf("origin pixel = %+v", got)
	}
}

func TestFlattenNilBase(t *testing.T) {
	if _, err := Flatten(nil, nil); err == nil {
		t.Fatalf("expected error")
	}
	var base *image.RGBA
	if _, err := Flatten(base, nil); err == nil {
		t.Fatalf("expected error for a nil *image.RGBA base")
	}
	if _, err := EncodePNG(base); err == nil {
		t.Fatalf("expected error encoding a nil *image.RGBA")
	}
}

func TestFlattenNilOverlayPointer(t *testing.T) {
	var overlay *image.RGBA
	out, err := Flatten(image.NewRGBA(image.Rect(0, 0, 2, 2)), overlay)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
}

// TestFlattenPurity verifies flattening never mutates its inputs and encodes
// identically on repeated calls.
func TestFlattenPurity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("flatten is pure and deterministic", prop.ForAll(
		func(basePix, overlayPix []uint8) bool {
			base := image.NewRGBA(image.Rect(0, 0, 8, 8))
			overlay := image.NewRGBA(image.Rect(0, 0, 8, 8))
			copy(base.Pix, basePix)
			copy(overlay.Pix, overlayPix)
			// Keep the overlay valid premultiplied data.
			for i := 0; i+3 < len(overlay.Pix); i += 4 {
				a := overlay.Pix[i+3]
				for c := 0; c < 3; c++ {
					if overlay.Pix[i+c] > a {
						overlay.Pix[i+c] = a
					}
				}
			}
			baseBefore := append([]uint8(nil), base.Pix...)
			overlayBefore := append([]uint8(nil), overlay.Pix...)

			out1, err := Flatten(base, overlay)
			if err != nil {
				return false
			}
			out2, err := Flatten(base, overlay)
			if err != nil {
				return false
			}
			png1, err := EncodePNG(out1)
			if err != nil {
				return false
			}
			png2, err := EncodePNG(out2)
			if err != nil {
				return false
			}
			return bytes.Equal(base.Pix, baseBefore) &&
				bytes.Equal(overlay.Pix, overlayBefore) &&
				bytes.Equal(png1, png2)
		},
		gen.SliceOfN(256, gen.UInt8()),
		gen.SliceOfN(256, gen.UInt8()),
	))

	properties.TestingRun(t)
}

func TestEncodeDecodeLossless(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{10, 20, 30, 255})
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	back, err := DecodePNG(data)
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if !bytes.Equal(back.Pix, img.Pix) {
		t.Fatalf("decoded pixels differ")
	}
}
