package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

type historyCmd struct {
	command
	limit int
}

func parseHistoryCmd(args []string, r *root) (*historyCmd, error) {
	c := &historyCmd{command: newCommand(r, "history")}
	c.fs.Usage = usageFunc(c)
	c.fs.IntVar(&c.limit, "limit", 20, "number of recent uploads to list")
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if c.limit <= 0 {
		return nil, fmt.Errorf("-limit must be positive")
	}
	if c.fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *historyCmd) Run() error {
	store, err := c.openHistory()
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if store == nil {
		return errors.New("history: upload history is switched off")
	}
	defer store.Close()

	ctx, cancel := commandContext()
	defer cancel()
	entries, err := store.List(ctx, c.limit)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "no uploads yet")
		return nil
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSIZE\tFILE\tURL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", humanize.Time(e.CreatedAt), humanize.Bytes(uint64(e.Size)), e.Filename, e.URL)
	}
	return tw.Flush()
}
