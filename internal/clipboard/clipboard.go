// Package clipboard publishes images and text to the system clipboard.
package clipboard

import (
	"errors"
	"image"
	"os"

	"github.com/example/snipt/internal/compose"
)

var errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// WriteImage places img on the clipboard as image/png.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	data, err := compose.EncodePNG(img)
	if err != nil {
		return err
	}
	return writeFormat(formatPNG, data)
}

// WriteText places UTF-8 text on the clipboard.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return writeFormat(formatText, []byte(text))
}

type format int

const (
	formatText format = iota
	formatPNG
)
