// Package export delivers a flattened capture to its destination: the
// clipboard, a file on disk, a PDF, or cloud storage.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"
)

// Action names an export destination chosen by the user.
type Action string

const (
	ActionCopy   Action = "copy"
	ActionSave   Action = "save"
	ActionUpload Action = "upload"
	ActionPDF    Action = "pdf"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionCopy, ActionSave, ActionUpload, ActionPDF:
		return a, nil
	}
	return "", fmt.Errorf("unknown export action %q", s)
}

var (
	// ErrCancelled is returned when the user dismisses a save dialog.
	ErrCancelled = errors.New("export cancelled")
	// ErrAuthRequired is returned when the upload target has no usable identity.
	ErrAuthRequired = errors.New("authentication required")
)

// NetworkError reports a transport failure talking to a remote target.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Payload is the flattened capture handed to a target.
type Payload struct {
	Image    *image.RGBA
	PNG      []byte
	Filename string
}

// Result describes a completed export.
type Result struct {
	Action Action
	// Path is the written file, for save and pdf exports.
	Path string
	// URL is the shareable link, for uploads.
	URL string
}

// Target is one export destination.
type Target interface {
	Export(ctx context.Context, p Payload) (Result, error)
}

// TargetFunc adapts a function to Target.
type TargetFunc func(ctx context.Context, p Payload) (Result, error)

// Export calls f.
func (f TargetFunc) Export(ctx context.Context, p Payload) (Result, error) { return f(ctx, p) }

// DefaultPrefix starts every generated filename.
const DefaultPrefix = "snipt"

// GenerateFilename returns "<prefix>-<UTC timestamp>.png", with the
// timestamp in ISO 8601 form truncated to seconds and ':' replaced by '-'.
func GenerateFilename(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s-%s.png", prefix, t.UTC().Format("2006-01-02T15-04-05"))
}
