package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PathChooser asks where to save a file, starting from suggested. It returns
// ErrCancelled, or an empty path, when the user backs out.
type PathChooser func(ctx context.Context, suggested string) (string, error)

// FileSaver writes the PNG to disk.
type FileSaver struct {
	// Dir receives files when no chooser is set or the chosen path is relative.
	Dir string
	// Choose, when set, picks the destination path.
	Choose PathChooser
}

// NewFileSaver saves into dir, or the working directory when dir is empty.
func NewFileSaver(dir string) *FileSaver {
	return &FileSaver{Dir: dir}
}

// Export implements Target.
func (f *FileSaver) Export(ctx context.Context, p Payload) (Result, error) {
	path, err := f.resolve(ctx, p.Filename)
	if err != nil {
		return Result{}, err
	}
	if err := writeFile(path, p.PNG); err != nil {
		return Result{}, err
	}
	return Result{Action: ActionSave, Path: path}, nil
}

func (f *FileSaver) resolve(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("save: no filename")
	}
	path := name
	if f.Choose != nil {
		chosen, err := f.Choose(ctx, name)
		if errors.Is(err, ErrCancelled) || (err == nil && chosen == "") {
			return "", ErrCancelled
		}
		if err != nil {
			return "", fmt.Errorf("save: %w", err)
		}
		path = chosen
	}
	if !filepath.IsAbs(path) && f.Dir != "" {
		path = filepath.Join(f.Dir, path)
	}
	return path, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
