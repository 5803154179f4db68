package capture

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

type platformBackend interface {
	ListMonitors() ([]MonitorInfo, error)
	ListWindows() ([]WindowInfo, error)
	CaptureWindowImage(uint32) (*image.RGBA, error)
	CaptureRoot() (*image.RGBA, error)
}

var backend = newBackend()

var (
	errNoMonitors = errors.New("no monitors available")
	errNoWindows  = errors.New("no windows available")
)

// MonitorInfo describes an individual monitor in the display layout.
type MonitorInfo struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

// WindowInfo describes a top-level window available for capture.
type WindowInfo struct {
	ID         uint32
	Title      string
	Class      string
	Executable string
	Rect       image.Rectangle
	Active     bool
}

// FindMonitor resolves a monitor selector: an index, "primary", or part of
// the output name. An empty selector picks the first monitor.
func FindMonitor(monitors []MonitorInfo, selector string) (MonitorInfo, error) {
	if len(monitors) == 0 {
		return MonitorInfo{}, errNoMonitors
	}
	sel := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(selector), "#"))
	switch sel {
	case "":
		return monitors[0], nil
	case "primary":
		for _, mon := range monitors {
			if mon.Primary {
				return mon, nil
			}
		}
		return monitors[0], nil
	}
	if idx, err := strconv.Atoi(sel); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return MonitorInfo{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, mon := range monitors {
		if strings.Contains(strings.ToLower(mon.Name), sel) {
			return mon, nil
		}
	}
	return MonitorInfo{}, fmt.Errorf("monitor %q not found", selector)
}

// windowMatchers maps a selector prefix to the fields it searches.
var windowMatchers = map[string]func(WindowInfo) []string{
	"title": func(w WindowInfo) []string { return []string{w.Title} },
	"class": func(w WindowInfo) []string { return []string{w.Class} },
	"exec":  func(w WindowInfo) []string { return []string{w.Executable} },
}

// SelectWindow matches a selector against windows. Supported forms are
// "active", "id:<id>", "0x<id>", "title:", "class:", "exec:" and a bare
// substring matched against title, class and executable. An empty selector
// picks the active window, or the last one listed.
func SelectWindow(selector string, windows []WindowInfo) (WindowInfo, error) {
	if len(windows) == 0 {
		return WindowInfo{}, errNoWindows
	}
	sel := strings.TrimSpace(selector)
	lower := strings.ToLower(sel)
	if lower == "" || lower == "active" {
		for _, win := range windows {
			if win.Active {
				return win, nil
			}
		}
		if lower == "active" {
			return WindowInfo{}, fmt.Errorf("no active window detected")
		}
		return windows[len(windows)-1], nil
	}
	if rest, ok := strings.CutPrefix(lower, "id:"); ok || strings.HasPrefix(lower, "0x") {
		if !ok {
			rest = lower
		}
		id, err := parseWindowID(rest)
		if err != nil {
			return WindowInfo{}, err
		}
		for _, win := range windows {
			if win.ID == id {
				return win, nil
			}
		}
		return WindowInfo{}, fmt.Errorf("window id 0x%x not found", id)
	}
	fields := func(w WindowInfo) []string { return []string{w.Title, w.Class, w.Executable} }
	needle := lower
	if prefix, rest, ok := strings.Cut(lower, ":"); ok {
		if m, found := windowMatchers[prefix]; found {
			fields, needle = m, strings.TrimSpace(rest)
		}
	}
	for _, win := range windows {
		for _, f := range fields(win) {
			if f != "" && strings.Contains(strings.ToLower(f), needle) {
				return win, nil
			}
		}
	}
	return WindowInfo{}, fmt.Errorf("no window matched %q", selector)
}

func parseWindowID(val string) (uint32, error) {
	v := strings.TrimSpace(val)
	base := 10
	if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
		v, base = v[2:], 16
	}
	parsed, err := strconv.ParseUint(v, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", val)
	}
	return uint32(parsed), nil
}
