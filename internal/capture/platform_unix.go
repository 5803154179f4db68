//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

type x11Backend struct{}

func newBackend() platformBackend {
	return x11Backend{}
}

func runningOnWayland() bool {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")), "wayland") {
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

// withRoot opens a connection to the X server and hands fn the default
// screen. The connection is closed when fn returns.
func withRoot(fn func(conn *xgb.Conn, screen *xproto.ScreenInfo) error) error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()
	setup := xproto.Setup(conn)
	if setup == nil {
		return fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		return fmt.Errorf("xproto screen unavailable")
	}
	return fn(conn, screen)
}

func (x11Backend) ListMonitors() ([]MonitorInfo, error) {
	var monitors []MonitorInfo
	err := withRoot(func(conn *xgb.Conn, screen *xproto.ScreenInfo) error {
		var err error
		monitors, err = fetchMonitors(conn, screen.Root)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, errNoMonitors
	}
	return monitors, nil
}

func (x11Backend) ListWindows() ([]WindowInfo, error) {
	var windows []WindowInfo
	err := withRoot(func(conn *xgb.Conn, screen *xproto.ScreenInfo) error {
		active, _ := fetchActiveWindow(conn, screen.Root)
		var err error
		windows, err = fetchWindows(conn, screen.Root, active)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, errNoWindows
	}
	return windows, nil
}

func (x11Backend) CaptureWindowImage(id uint32) (*image.RGBA, error) {
	var img *image.RGBA
	err := withRoot(func(conn *xgb.Conn, _ *xproto.ScreenInfo) error {
		var err error
		img, err = grabDrawable(conn, xproto.Drawable(id), "window")
		return err
	})
	return img, err
}

// CaptureRoot grabs the whole X screen. It is used when no desktop portal
// answers on the session bus.
func (x11Backend) CaptureRoot() (*image.RGBA, error) {
	var img *image.RGBA
	err := withRoot(func(conn *xgb.Conn, screen *xproto.ScreenInfo) error {
		var err error
		img, err = grabDrawable(conn, xproto.Drawable(screen.Root), "screen")
		return err
	})
	return img, err
}

func grabDrawable(conn *xgb.Conn, d xproto.Drawable, kind string) (*image.RGBA, error) {
	geom, err := xproto.GetGeometry(conn, d).Reply()
	if err != nil {
		return nil, fmt.Errorf("%s geometry: %w", kind, err)
	}
	if geom.Width == 0 || geom.Height == 0 {
		return nil, fmt.Errorf("%s has empty geometry", kind)
	}
	reply, err := xproto.GetImage(conn, xproto.ImageFormatZPixmap, d, 0, 0, geom.Width, geom.Height, ^uint32(0)).Reply()
	if err != nil {
		return nil, fmt.Errorf("%s pixels: %w", kind, err)
	}
	return xImageToRGBA(xproto.Setup(conn), reply, int(geom.Width), int(geom.Height), kind)
}

func fetchMonitors(conn *xgb.Conn, root xproto.Window) ([]MonitorInfo, error) {
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("init randr: %w", err)
	}
	res, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, root).Reply(); err == nil {
		primary = reply.Output
	}
	monitors := make([]MonitorInfo, 0, len(res.Outputs))
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, output, res.ConfigTimestamp).Reply()
		if err != nil || info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		x, y := int(crtc.X), int(crtc.Y)
		monitors = append(monitors, MonitorInfo{
			Index:   len(monitors),
			Name:    strings.TrimSpace(string(info.Name)),
			Rect:    image.Rect(x, y, x+int(crtc.Width), y+int(crtc.Height)),
			Primary: output == primary,
		})
	}
	return monitors, nil
}

func fetchActiveWindow(conn *xgb.Conn, root xproto.Window) (uint32, error) {
	reply, err := getProperty(conn, root, "_NET_ACTIVE_WINDOW", xproto.AtomWindow, 1)
	if err != nil {
		return 0, err
	}
	if reply.Format != 32 || reply.ValueLen == 0 {
		return 0, fmt.Errorf("active window unavailable")
	}
	return xgb.Get32(reply.Value), nil
}

// fetchWindows returns managed client windows, topmost first.
func fetchWindows(conn *xgb.Conn, root xproto.Window, activeID uint32) ([]WindowInfo, error) {
	var reply *xproto.GetPropertyReply
	var err error
	for _, name := range []string{"_NET_CLIENT_LIST_STACKING", "_NET_CLIENT_LIST"} {
		reply, err = getProperty(conn, root, name, xproto.AtomWindow, 1<<16)
		if err == nil && reply.Format == 32 && reply.ValueLen > 0 {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	windows := make([]WindowInfo, 0, reply.ValueLen)
	for idx := int(reply.ValueLen) - 1; idx >= 0; idx-- {
		win := xproto.Window(xgb.Get32(reply.Value[idx*4:]))
		rect, err := windowRect(conn, root, win)
		if err != nil || rect.Empty() {
			continue
		}
		title := readText(conn, win, "_NET_WM_NAME", "UTF8_STRING")
		if title == "" {
			title = readText(conn, win, "WM_NAME", "STRING")
		}
		windows = append(windows, WindowInfo{
			ID:         uint32(win),
			Title:      title,
			Class:      readClass(conn, win),
			Executable: readExecutable(readPID(conn, win)),
			Rect:       rect,
			Active:     uint32(win) == activeID,
		})
	}
	return windows, nil
}

func windowRect(conn *xgb.Conn, root xproto.Window, win xproto.Window) (image.Rectangle, error) {
	geo, err := xproto.GetGeometry(conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return image.Rectangle{}, err
	}
	trans, err := xproto.TranslateCoordinates(conn, win, root, int16(geo.X), int16(geo.Y)).Reply()
	if err != nil {
		return image.Rectangle{}, err
	}
	bw := int(geo.BorderWidth)
	origin := image.Pt(int(trans.DstX)-bw, int(trans.DstY)-bw)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(int(geo.Width)+2*bw, int(geo.Height)+2*bw))}, nil
}

func internAtom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

func getProperty(conn *xgb.Conn, win xproto.Window, name string, typ xproto.Atom, length uint32) (*xproto.GetPropertyReply, error) {
	atom, err := internAtom(conn, name)
	if err != nil {
		return nil, err
	}
	return xproto.GetProperty(conn, false, win, atom, typ, 0, length).Reply()
}

func readText(conn *xgb.Conn, win xproto.Window, name, typeName string) string {
	typ := xproto.Atom(xproto.AtomString)
	if typeName != "STRING" {
		atom, err := internAtom(conn, typeName)
		if err != nil {
			return ""
		}
		typ = atom
	}
	reply, err := getProperty(conn, win, name, typ, 1<<16)
	if err != nil || reply.ValueLen == 0 {
		return ""
	}
	return strings.TrimRight(string(reply.Value), "\x00")
}

// readClass returns the WM_CLASS class part, falling back to the instance.
func readClass(conn *xgb.Conn, win xproto.Window) string {
	reply, err := getProperty(conn, win, "WM_CLASS", xproto.AtomString, 64)
	if err != nil || reply.ValueLen == 0 {
		return ""
	}
	var vals []string
	for _, p := range bytes.Split(reply.Value, []byte{0}) {
		if len(p) > 0 {
			vals = append(vals, string(p))
		}
	}
	if len(vals) == 0 {
		return ""
	}
	return vals[len(vals)-1]
}

func readPID(conn *xgb.Conn, win xproto.Window) uint32 {
	reply, err := getProperty(conn, win, "_NET_WM_PID", xproto.AtomCardinal, 1)
	if err != nil || reply.Format != 32 || reply.ValueLen == 0 {
		return 0
	}
	return xgb.Get32(reply.Value)
}

func readExecutable(pid uint32) string {
	if pid == 0 {
		return ""
	}
	if data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid)); err == nil {
		return strings.TrimSpace(string(data))
	}
	if exe, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid)); err == nil {
		return filepath.Base(exe)
	}
	return ""
}
