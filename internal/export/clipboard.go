package export

import (
	"context"
	"image"

	"github.com/example/snipt/internal/clipboard"
)

// ImageWriter places an image on the clipboard.
type ImageWriter func(image.Image) error

// TextWriter places text on the clipboard.
type TextWriter func(string) error

// SystemImageWriter and SystemTextWriter write to the desktop clipboard.
var (
	SystemImageWriter ImageWriter = clipboard.WriteImage
	SystemTextWriter  TextWriter  = clipboard.WriteText
)

// Clipboard copies the flattened image to the clipboard.
type Clipboard struct {
	Write ImageWriter
}

// NewClipboard returns a target writing to the system clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{Write: SystemImageWriter}
}

// Export implements Target.
func (c *Clipboard) Export(ctx context.Context, p Payload) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := c.Write(p.Image); err != nil {
		return Result{}, err
	}
	return Result{Action: ActionCopy}, nil
}
