package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/example/snipt/internal/compose"
	"github.com/example/snipt/internal/export"
	"github.com/example/snipt/internal/session"
)

// errNeedSource is returned by a headless capture when the picker would be
// needed to choose between several sources.
var errNeedSource = errors.New("several sources are available; pass -source to choose one")

type captureCmd struct {
	command
	source string
	action string
	shadow shadowFlags
}

func parseCaptureCmd(args []string, r *root) (*captureCmd, error) {
	c := &captureCmd{command: newCommand(r, "capture")}
	c.fs.Usage = usageFunc(c)
	c.fs.StringVar(&c.source, "source", "", "source ID or selector (screen:N, window:0xID, monitor name, window title)")
	c.fs.StringVar(&c.action, "action", "", "export straight away without a window: copy, save, upload or pdf")
	c.shadow.register(c.fs)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	if c.action != "" {
		if _, err := export.ParseAction(c.action); err != nil {
			return nil, err
		}
	}
	if _, err := c.shadow.options(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *captureCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()
	shadow, _ := c.shadow.options()
	p := c.buildPipeline(ctx, shadow)
	defer p.Close()

	if err := c.start(ctx, p); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if c.action == "" {
		runWindow(ctx, p.window, p.ctrl)
		return nil
	}
	if p.ctrl.Phase() == session.PhaseChoosingSource {
		p.ctrl.Cancel()
		return fmt.Errorf("capture: %w", errNeedSource)
	}
	action, _ := export.ParseAction(c.action)
	return runExport(ctx, p, action, "capture")
}

func (c *captureCmd) start(ctx context.Context, p *pipeline) error {
	if c.source == "" {
		return p.ctrl.Start(ctx)
	}
	id, err := resolveSource(p.provider, c.source)
	if err != nil {
		return err
	}
	return p.ctrl.StartSource(ctx, id)
}

// runExport exports the open session with action and reports the result.
func runExport(ctx context.Context, p *pipeline, action export.Action, name string) error {
	if !slices.Contains(p.actions, action) {
		p.ctrl.Cancel()
		return fmt.Errorf("%s: %s is not configured", name, action)
	}
	res, err := p.ctrl.Export(ctx, action)
	if err != nil {
		p.ctrl.Cancel()
		return fmt.Errorf("%s: %w", name, err)
	}
	report(stdout, res)
	return nil
}

type selectCmd struct {
	command
	shadow shadowFlags
}

func parseSelectCmd(args []string, r *root) (*selectCmd, error) {
	c := &selectCmd{command: newCommand(r, "select")}
	c.fs.Usage = usageFunc(c)
	c.shadow.register(c.fs)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	if _, err := c.shadow.options(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *selectCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()
	shadow, _ := c.shadow.options()
	p := c.buildPipeline(ctx, shadow)
	defer p.Close()
	if err := p.ctrl.StartAreaSelect(ctx); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	runWindow(ctx, p.window, p.ctrl)
	return nil
}

type annotateCmd struct {
	command
	file   string
	action string
	shadow shadowFlags
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	c := &annotateCmd{command: newCommand(r, "annotate")}
	c.fs.Usage = usageFunc(c)
	c.fs.StringVar(&c.file, "file", "", "PNG image to annotate")
	c.fs.StringVar(&c.action, "action", "", "export the image without a window: copy, save, upload or pdf")
	c.shadow.register(c.fs)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.file == "" && c.fs.NArg() == 1 {
		c.file = c.fs.Arg(0)
	} else if c.fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	if c.file == "" {
		return nil, &UsageError{of: c}
	}
	if c.action != "" {
		if _, err := export.ParseAction(c.action); err != nil {
			return nil, err
		}
	}
	if _, err := c.shadow.options(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *annotateCmd) Run() error {
	data, err := os.ReadFile(c.file)
	if err != nil {
		return fmt.Errorf("annotate: %w", err)
	}
	img, err := compose.DecodePNG(data)
	if err != nil {
		return fmt.Errorf("annotate: %s: %w", c.file, err)
	}
	ctx, cancel := commandContext()
	defer cancel()
	shadow, _ := c.shadow.options()
	p := c.buildPipeline(ctx, shadow)
	defer p.Close()
	if err := p.ctrl.Open(img, c.file); err != nil {
		return fmt.Errorf("annotate: %w", err)
	}
	if c.action != "" {
		action, _ := export.ParseAction(c.action)
		return runExport(ctx, p, action, "annotate")
	}
	runWindow(ctx, p.window, p.ctrl)
	return nil
}

type quickCmd struct {
	command
}

func parseQuickCmd(args []string, r *root) (*quickCmd, error) {
	c := &quickCmd{command: newCommand(r, "quick")}
	c.fs.Usage = usageFunc(c)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *quickCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()
	p := c.buildPipeline(ctx, nil)
	defer p.Close()
	if err := p.ctrl.QuickCapture(ctx); err != nil {
		return fmt.Errorf("quick: %w", err)
	}
	fmt.Fprintln(stdout, "screen copied to clipboard")
	return nil
}
