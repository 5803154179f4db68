// Package notify turns pipeline events into desktop notifications.
package notify

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/snipt/internal/compose"
	"github.com/example/snipt/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventCapture fires when a capture completes.
	EventCapture Event = "capture"
	// EventSave fires when an image is written to disk.
	EventSave Event = "save"
	// EventCopy fires when data is copied to the clipboard.
	EventCopy Event = "copy"
	// EventUpload fires when an upload finishes and its link is on the clipboard.
	EventUpload Event = "upload"
	// EventFailure fires when a capture or export fails.
	EventFailure Event = "failure"
)

// Events lists every event in a stable order.
var Events = []Event{EventCapture, EventSave, EventCopy, EventUpload, EventFailure}

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Snipt",
		Events: map[Event]EventPreference{
			EventCapture: {Template: "Captured %s"},
			EventSave:    {Template: "Saved to %s"},
			EventCopy:    {Template: "Copied %s to clipboard"},
			EventUpload:  {Template: "✓ Uploaded! Link copied to clipboard"},
			EventFailure: {Template: "Failed: %s"},
		},
	}
}

// LoadPreferences applies SNIPT_NOTIFY_* environment overrides to the defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("SNIPT_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, event := range Events {
		key := "SNIPT_NOTIFY_" + strings.ToUpper(string(event)) + "_TEXT"
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			prefs.Events[event] = EventPreference{Template: v}
		}
	}
	return prefs
}

var platformNotify = platform.Notify

// Notifier sends OS-level notifications based on the configured preferences.
// A nil Notifier is valid and sends nothing.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Enabled reports whether event would produce a notification.
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.enabled[event]
}

// Capture sends a capture notification with an optional image preview.
func (n *Notifier) Capture(detail string, img image.Image) {
	if !n.Enabled(EventCapture) {
		return
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCapture, detail, opts)
}

// Save sends a save notification naming the written file.
func (n *Notifier) Save(path string) {
	if !n.Enabled(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventSave, detail, opts)
}

// Copy sends a clipboard notification.
func (n *Notifier) Copy(detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

// Upload reports a finished upload.
func (n *Notifier) Upload(link string) {
	n.dispatch(EventUpload, link, platform.Options{})
}

// Failure reports a failed operation.
func (n *Notifier) Failure(op string, err error) {
	if err == nil {
		return
	}
	n.dispatch(EventFailure, fmt.Sprintf("%s: %v", op, err), platform.Options{})
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.Enabled(event) {
		return
	}
	template := strings.TrimSpace(n.prefs.Events[event].Template)
	if template == "" {
		return
	}
	body := template
	if strings.Contains(template, "%") {
		body = fmt.Sprintf(template, strings.TrimSpace(detail))
	}
	if err := platformNotify(n.prefs.Title, strings.TrimSpace(body), opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func createPreview(img image.Image) (string, func(), error) {
	data, err := compose.EncodePNG(img)
	if err != nil {
		return "", nil, err
	}
	f, err := os.CreateTemp("", "snipt-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
