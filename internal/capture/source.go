// Package capture lists the screens and windows that can be captured and
// grabs their pixels through the desktop portal or the X server.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// SourceKind distinguishes whole screens from single windows.
type SourceKind string

const (
	KindScreen SourceKind = "screen"
	KindWindow SourceKind = "window"
)

// Source is one capturable screen or window.
type Source struct {
	ID          string
	Kind        SourceKind
	DisplayName string
	Thumbnail   *image.RGBA
	Rect        image.Rectangle
	// Frame holds the source's pixels grabbed while listing, so choosing a
	// source does not capture the picker itself. Nil when the listing
	// could not grab them.
	Frame *image.RGBA
}

// Provider is the screen capture collaborator used by a capture session.
type Provider interface {
	ListSources(ctx context.Context) ([]Source, error)
	CaptureFullScreen(ctx context.Context) (*image.RGBA, error)
	CaptureSource(ctx context.Context, id string) (*image.RGBA, error)
}

var (
	// ErrNoSources is returned when nothing can be captured.
	ErrNoSources = errors.New("no capture sources available")
	// ErrUnknownSource is returned for IDs that do not name a listed source.
	ErrUnknownSource = errors.New("unknown capture source")
)

// ScreenID returns the source ID of the monitor at idx.
func ScreenID(idx int) string { return fmt.Sprintf("%s:%d", KindScreen, idx) }

// WindowID returns the source ID of an X11 window.
func WindowID(id uint32) string { return fmt.Sprintf("%s:0x%x", KindWindow, id) }

// ParseSourceID splits a source ID into its kind and numeric value.
func ParseSourceID(id string) (SourceKind, uint64, error) {
	kind, val, ok := strings.Cut(strings.TrimSpace(id), ":")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	switch SourceKind(kind) {
	case KindScreen:
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return "", 0, fmt.Errorf("%w: %q", ErrUnknownSource, id)
		}
		return KindScreen, n, nil
	case KindWindow:
		n, err := parseWindowID(val)
		if err != nil {
			return "", 0, fmt.Errorf("%w: %q", ErrUnknownSource, id)
		}
		return KindWindow, uint64(n), nil
	}
	return "", 0, fmt.Errorf("%w: %q", ErrUnknownSource, id)
}

// cutKind splits "kind:rest", accepting a bare kind with an empty rest.
func cutKind(s string) (SourceKind, string, bool) {
	kind, rest, ok := strings.Cut(strings.TrimSpace(s), ":")
	switch SourceKind(strings.ToLower(kind)) {
	case KindScreen:
		return KindScreen, strings.TrimSpace(rest), ok
	case KindWindow:
		return KindWindow, strings.TrimSpace(rest), ok
	}
	return "", s, false
}

// Screens returns the screen sources in order.
func Screens(sources []Source) []Source {
	return filterKind(sources, KindScreen)
}

// Windows returns the window sources in order.
func Windows(sources []Source) []Source {
	return filterKind(sources, KindWindow)
}

func filterKind(sources []Source, kind SourceKind) []Source {
	var out []Source
	for _, s := range sources {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Find returns the source with the given ID.
func Find(sources []Source, id string) (Source, bool) {
	for _, s := range sources {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}

// Thumbnail scales img down to fit within max, keeping its aspect ratio.
// Images already smaller than max are copied unscaled.
func Thumbnail(img image.Image, max image.Point) *image.RGBA {
	if img == nil || max.X <= 0 || max.Y <= 0 {
		return nil
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	w, h := b.Dx(), b.Dy()
	if w > max.X || h > max.Y {
		zx := float64(max.X) / float64(w)
		zy := float64(max.Y) / float64(h)
		zoom := zx
		if zy < zx {
			zoom = zy
		}
		w = int(float64(w)*zoom + 0.5)
		h = int(float64(h)*zoom + 0.5)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
		return out
	}
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
