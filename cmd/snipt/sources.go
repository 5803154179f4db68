package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/example/snipt/internal/capture"
)

type sourcesCmd struct {
	command
	kind string
}

func parseSourcesCmd(args []string, r *root) (*sourcesCmd, error) {
	c := &sourcesCmd{command: newCommand(r, "sources")}
	c.fs.Usage = usageFunc(c)
	c.fs.StringVar(&c.kind, "kind", "", "only list sources of this kind: screen or window")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	switch capture.SourceKind(c.kind) {
	case "", capture.KindScreen, capture.KindWindow:
	default:
		return nil, fmt.Errorf("unknown source kind %q", c.kind)
	}
	if c.fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *sourcesCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()
	sources, err := newProvider().ListSources(ctx)
	if err != nil {
		return fmt.Errorf("sources: %w", err)
	}
	switch capture.SourceKind(c.kind) {
	case capture.KindScreen:
		sources = capture.Screens(sources)
	case capture.KindWindow:
		sources = capture.Windows(sources)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSIZE\tNAME")
	for _, s := range sources {
		size := s.Rect.Size()
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\n", s.ID, s.Kind, size.X, size.Y, s.DisplayName)
	}
	return tw.Flush()
}
