package annotate

import (
	"fmt"
	"image"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce sync.Once
	fontErr  error
	goFont   *sfnt.Font
)

func parsedFont() (*sfnt.Font, error) {
	fontOnce.Do(func() {
		goFont, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("parse font: %w", fontErr)
		}
	})
	return goFont, fontErr
}

// faceCache keeps one face per font size.
type faceCache struct {
	mu    sync.Mutex
	faces map[float64]font.Face
}

func (c *faceCache) face(size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultFontSize
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.faces[size]; ok {
		return f, nil
	}
	f, err := parsedFont()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face %g: %w", size, err)
	}
	if c.faces == nil {
		c.faces = make(map[float64]font.Face)
	}
	c.faces[size] = face
	return face, nil
}

func toFixed(p Point) fixed.Point26_6 {
	return fixed.Point26_6{
		X: fixed.Int26_6(math.Round(p.X * 64)),
		Y: fixed.Int26_6(math.Round(p.Y * 64)),
	}
}

// textBounds returns the pixel box covered by text drawn with its baseline
// at pos.
func textBounds(face font.Face, pos Point, text string) image.Rectangle {
	b, _ := font.BoundString(face, text)
	dot := toFixed(pos)
	return image.Rect(
		(dot.X + b.Min.X).Floor(),
		(dot.Y + b.Min.Y).Floor(),
		(dot.X + b.Max.X).Ceil(),
		(dot.Y + b.Max.Y).Ceil(),
	)
}
