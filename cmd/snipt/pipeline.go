package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/example/snipt/internal/capture"
	"github.com/example/snipt/internal/compose"
	"github.com/example/snipt/internal/config"
	"github.com/example/snipt/internal/export"
	"github.com/example/snipt/internal/history"
	"github.com/example/snipt/internal/session"
	"github.com/example/snipt/internal/ui"
)

// Seams replaced in tests.
var (
	stdout      io.Writer = os.Stdout
	newProvider           = func() capture.Provider { return capture.NewDesktop() }
	runWindow             = func(ctx context.Context, w *ui.Window, ctrl *session.Controller) { w.Run(ctx, ctrl) }
	newUploader           = export.NewUploader
	openHistory           = history.Open
	copyText              = export.SystemTextWriter
	copyImage             = export.SystemImageWriter
)

const historyOff = "off"

// envOverrides map SNIPT_* variables onto configuration fields. They sit
// between command line flags and the config file in precedence.
var envOverrides = map[string]func(*config.Config, string){
	"SNIPT_SAVE_DIR":        func(c *config.Config, v string) { c.SaveDir = v },
	"SNIPT_FILE_PREFIX":     func(c *config.Config, v string) { c.FilePrefix = v },
	"SNIPT_COLOR":           func(c *config.Config, v string) { c.Color = v },
	"SNIPT_UPLOAD_BUCKET":   func(c *config.Config, v string) { c.Upload.Bucket = v },
	"SNIPT_UPLOAD_REGION":   func(c *config.Config, v string) { c.Upload.Region = v },
	"SNIPT_UPLOAD_ENDPOINT": func(c *config.Config, v string) { c.Upload.Endpoint = v },
	"SNIPT_UPLOAD_USER":     func(c *config.Config, v string) { c.Upload.User = v },
	"SNIPT_HISTORY":         func(c *config.Config, v string) { c.Upload.History = v },
}

func applyEnv(cfg *config.Config, lookup func(string) (string, bool)) {
	for name, set := range envOverrides {
		if v, ok := lookup(name); ok && v != "" {
			set(cfg, v)
		}
	}
}

// shadowFlags are the drop shadow options shared by capturing commands.
type shadowFlags struct {
	enabled bool
	radius  int
	offset  string
	opacity float64
}

func (s *shadowFlags) register(fs *flag.FlagSet) {
	defaults := compose.DefaultShadowOptions()
	fs.BoolVar(&s.enabled, "shadow", false, "add a drop shadow to exported images")
	fs.IntVar(&s.radius, "shadow-radius", defaults.Radius, "drop shadow blur radius in pixels")
	fs.StringVar(&s.offset, "shadow-offset", formatShadowOffset(defaults.Offset), "drop shadow offset as dx,dy")
	fs.Float64Var(&s.opacity, "shadow-opacity", defaults.Opacity, "drop shadow opacity between 0 and 1")
}

func (s *shadowFlags) options() (*compose.ShadowOptions, error) {
	if !s.enabled {
		return nil, nil
	}
	pt, err := parseShadowOffset(s.offset)
	if err != nil {
		return nil, err
	}
	if s.radius < 0 {
		return nil, fmt.Errorf("shadow radius must be non-negative")
	}
	if s.opacity < 0 || s.opacity > 1 {
		return nil, fmt.Errorf("shadow opacity must be between 0 and 1")
	}
	return &compose.ShadowOptions{Radius: s.radius, Offset: pt, Opacity: s.opacity}, nil
}

func formatShadowOffset(pt image.Point) string {
	return fmt.Sprintf("%d,%d", pt.X, pt.Y)
}

func parseShadowOffset(value string) (image.Point, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("invalid shadow offset %q: expected dx,dy", value)
	}
	dx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid shadow offset x %q: %w", parts[0], err)
	}
	dy, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid shadow offset y %q: %w", parts[1], err)
	}
	return image.Pt(dx, dy), nil
}

// pipeline is a controller wired to the configured export targets, plus
// the window that shows it.
type pipeline struct {
	provider capture.Provider
	ctrl     *session.Controller
	window   *ui.Window
	actions  []export.Action
	closers  []func() error
}

func (p *pipeline) Close() {
	for _, c := range p.closers {
		if err := c(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
}

// buildPipeline wires the controller from the loaded configuration. Upload
// problems only drop the upload action so local exports keep working.
func (r *root) buildPipeline(ctx context.Context, shadow *compose.ShadowOptions) *pipeline {
	cfg := r.config
	p := &pipeline{provider: newProvider()}
	targets := map[export.Action]export.Target{
		export.ActionCopy: &export.Clipboard{Write: copyImage},
		export.ActionSave: export.NewFileSaver(cfg.SaveDir),
		export.ActionPDF:  export.NewPDFSaver(cfg.SaveDir),
	}
	if cfg.Upload.Enabled() {
		up, err := r.uploader(ctx, p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: upload disabled: %v\n", err)
		} else {
			targets[export.ActionUpload] = up
		}
	}
	for _, action := range []export.Action{export.ActionCopy, export.ActionSave, export.ActionUpload, export.ActionPDF} {
		if _, ok := targets[action]; ok {
			p.actions = append(p.actions, action)
		}
	}

	p.window = ui.NewWindow(ui.WithActions(p.actions...), ui.WithTitle(r.program))
	opts := []session.Option{
		session.WithNotifier(r.notifier),
		session.WithStyle(cfg.Style()),
		session.WithHeadLength(cfg.Annotate.ArrowHead),
		session.WithSelectOptions(cfg.SelectOptions()),
		session.WithFilePrefix(cfg.FilePrefix),
		session.WithLinkWriter(copyText),
		session.WithExportHook(p.window.ExportSettled),
	}
	for action, target := range targets {
		opts = append(opts, session.WithTarget(action, target))
	}
	if shadow != nil {
		opts = append(opts, session.WithShadow(*shadow))
	}
	p.ctrl = session.New(p.provider, opts...)
	return p
}

func (r *root) uploader(ctx context.Context, p *pipeline) (*export.Uploader, error) {
	u := r.config.Upload
	up, err := newUploader(ctx, export.UploadConfig{
		Bucket:   u.Bucket,
		Region:   u.Region,
		Endpoint: u.Endpoint,
		User:     u.User,
		LinkTTL:  u.LinkTTL,
	})
	if err != nil {
		return nil, err
	}
	store, err := r.openHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: upload history disabled: %v\n", err)
		return up, nil
	}
	if store != nil {
		up.History = store
		p.closers = append(p.closers, store.Close)
	}
	return up, nil
}

// openHistory opens the configured history database. It returns nil when
// history is switched off.
func (r *root) openHistory() (*history.Store, error) {
	path := r.config.Upload.History
	if strings.EqualFold(path, historyOff) {
		return nil, nil
	}
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return openHistory(path)
}

// resolveSource turns a -source value into a source ID. Besides plain IDs
// the desktop provider understands window and monitor selectors.
func resolveSource(p capture.Provider, selector string) (string, error) {
	if _, _, err := capture.ParseSourceID(selector); err == nil {
		return selector, nil
	}
	r, ok := p.(interface{ Resolve(string) (string, error) })
	if !ok {
		return "", fmt.Errorf("%w: %s", capture.ErrUnknownSource, selector)
	}
	return r.Resolve(selector)
}

// report prints where a headless export went.
func report(w io.Writer, res export.Result) {
	switch {
	case res.URL != "":
		fmt.Fprintln(w, res.URL)
	case res.Path != "":
		fmt.Fprintf(w, "saved %s\n", res.Path)
	default:
		fmt.Fprintf(w, "%s done\n", res.Action)
	}
}

// commandContext is cancelled on interrupt so running captures and
// uploads stop cleanly.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
