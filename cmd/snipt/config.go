package main

import (
	"fmt"

	"github.com/example/snipt/internal/config"
)

type configCmd struct {
	command
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	c := &configCmd{command: newCommand(r, "config")}
	c.fs.Usage = usageFunc(c)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) != 1 {
		return &UsageError{of: c}
	}
	loader := config.NewLoader(version, c.configPath)
	switch args[0] {
	case "print":
		fmt.Fprint(stdout, c.config.String())
	case "path":
		path := loader.GetConfigPath()
		if path == "" {
			path = loader.DefaultPath() + " (not created)"
		}
		fmt.Fprintln(stdout, path)
	case "save":
		path, err := loader.Save(c.config)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		fmt.Fprintf(stdout, "configuration saved to %s\n", path)
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
	return nil
}
