package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
)

const (
	// DefaultMaxWindows caps how many windows the picker offers.
	DefaultMaxWindows = 12
	entireScreenName  = "Entire Screen"
)

// DefaultThumbnailSize bounds source thumbnails.
var DefaultThumbnailSize = image.Pt(320, 180)

// portalOptions configures a desktop portal screenshot request.
type portalOptions struct {
	Interactive bool
}

var (
	portalScreenshotFn = portalScreenshot
	runningOnWaylandFn = runningOnWayland
)

// Desktop captures the local desktop. Screens are grabbed through the
// desktop portal when available and the X server otherwise; windows come
// from the X server.
type Desktop struct {
	// ThumbnailSize bounds the thumbnails attached to listed sources.
	// A zero size disables thumbnails.
	ThumbnailSize image.Point
	// MaxWindows caps the number of windows listed.
	MaxWindows int
	// Logger receives diagnostics. Nil uses the standard logger.
	Logger *log.Logger
}

// DesktopOption configures a Desktop.
type DesktopOption func(*Desktop)

// WithThumbnailSize sets the thumbnail bound. A zero size disables thumbnails.
func WithThumbnailSize(size image.Point) DesktopOption {
	return func(d *Desktop) { d.ThumbnailSize = size }
}

// WithMaxWindows overrides DefaultMaxWindows.
func WithMaxWindows(n int) DesktopOption {
	return func(d *Desktop) { d.MaxWindows = n }
}

// WithLogger routes diagnostics to l.
func WithLogger(l *log.Logger) DesktopOption {
	return func(d *Desktop) { d.Logger = l }
}

// NewDesktop returns a Desktop provider with default limits.
func NewDesktop(opts ...DesktopOption) *Desktop {
	d := &Desktop{ThumbnailSize: DefaultThumbnailSize, MaxWindows: DefaultMaxWindows}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ Provider = (*Desktop)(nil)

func (d *Desktop) logf(format string, args ...interface{}) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// ListSources returns every screen followed by up to MaxWindows windows.
// The desktop is grabbed once while listing and every source carries its
// Frame from that grab. When the monitor layout is unknown a single screen
// covering the whole desktop is listed. Windows are not listed on Wayland
// sessions.
func (d *Desktop) ListSources(ctx context.Context) ([]Source, error) {
	shot, err := d.CaptureFullScreen(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		d.logf("capture: desktop frame unavailable: %v", err)
		shot = nil
	}

	var sources []Source
	monitors, err := backend.ListMonitors()
	if err != nil || len(monitors) == 0 {
		if err != nil {
			d.logf("capture: list monitors: %v", err)
		}
		src := Source{ID: ScreenID(0), Kind: KindScreen, DisplayName: entireScreenName, Frame: shot}
		if shot != nil {
			src.Rect = shot.Bounds()
		}
		src.Thumbnail = d.thumbnailOf(src.Frame)
		sources = append(sources, src)
	} else {
		for _, mon := range monitors {
			name := mon.Name
			if name == "" {
				name = fmt.Sprintf("Screen %d", mon.Index+1)
			}
			src := Source{ID: ScreenID(mon.Index), Kind: KindScreen, DisplayName: name, Rect: mon.Rect}
			if len(monitors) == 1 {
				src.Frame = shot
			} else {
				src.Frame = cropOf(shot, mon.Rect)
			}
			src.Thumbnail = d.thumbnailOf(src.Frame)
			sources = append(sources, src)
		}
	}

	if runningOnWaylandFn() {
		return sources, nil
	}
	windows, err := backend.ListWindows()
	if err != nil {
		if !errors.Is(err, errNoWindows) {
			d.logf("capture: list windows: %v", err)
		}
		return sources, nil
	}
	limit := d.MaxWindows
	if limit <= 0 {
		limit = DefaultMaxWindows
	}
	for _, win := range windows {
		if len(Windows(sources)) >= limit {
			break
		}
		name := win.Title
		if name == "" {
			name = win.Class
		}
		if name == "" {
			name = fmt.Sprintf("Window 0x%x", win.ID)
		}
		frame := d.windowFrame(win, shot)
		sources = append(sources, Source{
			ID:          WindowID(win.ID),
			Kind:        KindWindow,
			DisplayName: name,
			Rect:        win.Rect,
			Thumbnail:   d.thumbnailOf(frame),
			Frame:       frame,
		})
	}
	return sources, nil
}

// windowFrame reads a window from the X server, cropping it out of shot
// when the server refuses.
func (d *Desktop) windowFrame(win WindowInfo, shot *image.RGBA) *image.RGBA {
	img, err := backend.CaptureWindowImage(win.ID)
	if err == nil {
		return img
	}
	return cropOf(shot, win.Rect)
}

func cropOf(shot *image.RGBA, rect image.Rectangle) *image.RGBA {
	if shot == nil {
		return nil
	}
	crop, err := cropToRect(shot, rect)
	if err != nil {
		return nil
	}
	return crop
}

func (d *Desktop) thumbnailOf(frame *image.RGBA) *image.RGBA {
	if frame == nil || d.ThumbnailSize.X <= 0 || d.ThumbnailSize.Y <= 0 {
		return nil
	}
	return Thumbnail(frame, d.ThumbnailSize)
}

// CaptureFullScreen grabs the whole desktop without user interaction.
func (d *Desktop) CaptureFullScreen(ctx context.Context) (*image.RGBA, error) {
	img, err := portalScreenshotFn(ctx, portalOptions{})
	if err == nil {
		return img, nil
	}
	if ctx.Err() != nil || errors.Is(err, errPortalCancelled) || runningOnWaylandFn() {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	root, rootErr := backend.CaptureRoot()
	if rootErr != nil {
		return nil, fmt.Errorf("capture screen: portal: %v; x11: %w", err, rootErr)
	}
	return root, nil
}

// CaptureSource grabs the source named by id live, for sources chosen
// without a listing. Screens are cropped out of a full desktop capture. Windows are read directly from the X server and fall
// back to a crop of the desktop when the server refuses.
func (d *Desktop) CaptureSource(ctx context.Context, id string) (*image.RGBA, error) {
	kind, val, err := ParseSourceID(id)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindScreen:
		return d.captureScreen(ctx, int(val))
	default:
		return d.captureWindow(ctx, uint32(val))
	}
}

func (d *Desktop) captureScreen(ctx context.Context, idx int) (*image.RGBA, error) {
	monitors, listErr := backend.ListMonitors()
	if listErr != nil || len(monitors) == 0 {
		if idx != 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSource, ScreenID(idx))
		}
		return d.CaptureFullScreen(ctx)
	}
	if idx < 0 || idx >= len(monitors) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, ScreenID(idx))
	}
	shot, err := d.CaptureFullScreen(ctx)
	if err != nil {
		return nil, err
	}
	if len(monitors) == 1 {
		return shot, nil
	}
	return cropToRect(shot, monitors[idx].Rect)
}

func (d *Desktop) captureWindow(ctx context.Context, id uint32) (*image.RGBA, error) {
	windows, err := backend.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", WindowID(id), err)
	}
	info, err := SelectWindow(fmt.Sprintf("id:0x%x", id), windows)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, WindowID(id))
	}
	img, directErr := backend.CaptureWindowImage(info.ID)
	if directErr == nil {
		return img, nil
	}
	shot, err := d.CaptureFullScreen(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture window: %v; fallback screenshot failed: %w", directErr, err)
	}
	img, err = cropToRect(shot, info.Rect)
	if err != nil {
		return nil, fmt.Errorf("capture window: %v; fallback crop failed: %w", directErr, err)
	}
	return img, nil
}

// Resolve maps a user selector to a source ID. Accepted forms are a source
// ID, "screen" or "screen:<selector>" resolved with FindMonitor, and
// "window:<selector>" resolved with SelectWindow.
func (d *Desktop) Resolve(selector string) (string, error) {
	if _, _, err := ParseSourceID(selector); err == nil {
		return selector, nil
	}
	kind, rest, _ := cutKind(selector)
	switch kind {
	case KindScreen:
		monitors, err := backend.ListMonitors()
		if err != nil {
			if rest == "" {
				return ScreenID(0), nil
			}
			return "", err
		}
		mon, err := FindMonitor(monitors, rest)
		if err != nil {
			return "", err
		}
		return ScreenID(mon.Index), nil
	case KindWindow:
		windows, err := backend.ListWindows()
		if err != nil {
			return "", err
		}
		win, err := SelectWindow(rest, windows)
		if err != nil {
			return "", err
		}
		return WindowID(win.ID), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, selector)
}
