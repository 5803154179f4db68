//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"fmt"
	"image"

	"github.com/jezek/xgb/xproto"
)

// xImageToRGBA converts a ZPixmap reply in BGR(A) byte order to RGBA.
func xImageToRGBA(setup *xproto.SetupInfo, reply *xproto.GetImageReply, width, height int, kind string) (*image.RGBA, error) {
	switch {
	case setup == nil:
		return nil, fmt.Errorf("xproto setup unavailable")
	case width <= 0 || height <= 0:
		return nil, fmt.Errorf("%s has empty geometry", kind)
	case reply == nil || len(reply.Data) == 0:
		return nil, fmt.Errorf("%s pixels: empty image data", kind)
	}

	bpp := 0
	for _, format := range setup.PixmapFormats {
		if format.Depth == reply.Depth {
			bpp = int(format.BitsPerPixel) / 8
			break
		}
	}
	if bpp < 3 {
		return nil, fmt.Errorf("unsupported %s depth %d", kind, reply.Depth)
	}
	stride := len(reply.Data) / height
	if stride*height != len(reply.Data) || stride < width*bpp {
		return nil, fmt.Errorf("%s pixels: unexpected stride", kind)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := reply.Data[y*stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			s, d := row[x*bpp:], dst[x*4:]
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 0xff
			// 24-bit visuals carry padding, not alpha, in the fourth byte.
			if bpp == 4 && reply.Depth == 32 {
				d[3] = s[3]
			}
		}
	}
	return img, nil
}
