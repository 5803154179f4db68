// Package compose flattens a captured image and its annotation overlay into
// the final raster handed to export targets.
package compose

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

var errNoBase = errors.New("no base image")

// Flatten draws base and then overlay onto a new image the size of base.
// Neither input is modified. A nil overlay yields a copy of base.
func Flatten(base, overlay image.Image) (*image.RGBA, error) {
	if isNil(base) {
		return nil, errNoBase
	}
	b := base.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("flatten: base image is empty")
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), base, b.Min, draw.Src)
	if !isNil(overlay) {
		draw.Draw(out, out.Bounds(), overlay, overlay.Bounds().Min, draw.Over)
	}
	return out, nil
}

// isNil also catches nil pointers of the concrete image types wrapped in
// a non-nil interface.
func isNil(img image.Image) bool {
	switch v := img.(type) {
	case nil:
		return true
	case *image.RGBA:
		return v == nil
	case *image.NRGBA:
		return v == nil
	case *image.Alpha:
		return v == nil
	case *image.Gray:
		return v == nil
	case *image.Paletted:
		return v == nil
	case *image.Uniform:
		return v == nil
	}
	return false
}

// EncodePNG returns img as PNG bytes. The output is lossless and the same
// image always encodes to the same bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	if isNil(img) {
		return nil, errNoBase
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG reads PNG data into a zero-based RGBA image.
func DecodePNG(data []byte) (*image.RGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return ToRGBA(img), nil
}

// ToRGBA returns img as a zero-based *image.RGBA, copying when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
