package notify

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/example/snipt/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func captureNotifications(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	prev := platformNotify
	platformNotify = func(title, body string, opts platform.Options) error {
		got = append(got, sent{title, body, opts})
		return nil
	}
	t.Cleanup(func() { platformNotify = prev })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := captureNotifications(t)
	n := New(DefaultPreferences())
	n.Copy("image")
	n.Failure("upload", errors.New("boom"))
	var nilNotifier *Notifier
	nilNotifier.Upload("https://example.com")
	if len(*got) != 0 {
		t.Fatalf("expected no notifications, got %+v", *got)
	}
}

func TestUploadAndFailureMessages(t *testing.T) {
	got := captureNotifications(t)
	n := New(DefaultPreferences())
	n.Enable(EventUpload, true)
	n.Enable(EventFailure, true)

	n.Upload("https://example.com/x.png")
	n.Failure("upload", errors.New("network down"))

	if len(*got) != 2 {
		t.Fatalf("got %d notifications", len(*got))
	}
	if (*got)[0].title != "Snipt" || (*got)[0].body != "✓ Uploaded! Link copied to clipboard" {
		t.Fatalf("upload notification = %+v", (*got)[0])
	}
	if (*got)[1].body != "Failed: upload: network down" {
		t.Fatalf("failure notification = %+v", (*got)[1])
	}
}

func TestCaptureAttachesPreview(t *testing.T) {
	got := captureNotifications(t)
	n := New(DefaultPreferences())
	n.Enable(EventCapture, true)
	n.Capture("screen", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if len(*got) != 1 {
		t.Fatalf("got %d notifications", len(*got))
	}
	if !strings.HasSuffix((*got)[0].opts.IconPath, ".png") {
		t.Fatalf("expected preview icon, got %q", (*got)[0].opts.IconPath)
	}
	if (*got)[0].body != "Captured screen" {
		t.Fatalf("body = %q", (*got)[0].body)
	}
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("SNIPT_NOTIFY_TITLE", "Shots")
	t.Setenv("SNIPT_NOTIFY_SAVE_TEXT", "Wrote %s")
	prefs := LoadPreferences()
	if prefs.Title != "Shots" {
		t.Fatalf("title = %q", prefs.Title)
	}
	if prefs.Events[EventSave].Template != "Wrote %s" {
		t.Fatalf("save template = %q", prefs.Events[EventSave].Template)
	}
	if prefs.Events[EventCopy].Template != DefaultPreferences().Events[EventCopy].Template {
		t.Fatalf("copy template should keep its default")
	}
}
