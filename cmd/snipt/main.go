package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/example/snipt/internal/config"
	"github.com/example/snipt/internal/notify"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs             *flag.FlagSet
	program        string
	notifier       *notify.Notifier
	config         *config.Config
	configPath     string
	configFlag     string
	captureAlerts  bool
	saveAlerts     bool
	copyAlerts     bool
	uploadAlerts   bool
	failureAlerts  bool
	configWarnings []error
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) string {
	return strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	path := configPathOverride
	if env := os.Getenv("SNIPT_CONFIG"); path == "" && env != "" {
		path = env
	}
	loader := config.NewLoader(version, path)
	cfg, err := loader.Load()
	r := &root{
		program:    "snipt",
		notifier:   notify.New(prefs),
		configPath: path,
	}
	if err != nil {
		r.configWarnings = append(r.configWarnings, err)
		cfg = config.New()
	}
	applyEnv(cfg, os.LookupEnv)
	r.config = cfg

	r.registerFlags()
	return r
}

// registerFlags builds the global flag set with defaults from the loaded
// configuration.
func (r *root) registerFlags() {
	cfg := r.config
	r.fs = flag.NewFlagSet(r.program, flag.ExitOnError)
	r.fs.StringVar(&r.configFlag, "config", r.configPath, "read configuration from this file")
	r.fs.BoolVar(&r.captureAlerts, "notify-capture", cfg.Notify.Capture, "show a desktop notification after capturing a screenshot")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.uploadAlerts, "notify-upload", cfg.Notify.Upload, "show a desktop notification after uploading")
	r.fs.BoolVar(&r.failureAlerts, "notify-failure", cfg.Notify.Failure, "show a desktop notification when a capture or export fails")
	r.fs.Usage = usageFunc(r)
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.configFlag != r.configPath {
		if err := r.reloadConfig(r.configFlag); err != nil {
			return err
		}
	}
	for _, err := range r.configWarnings {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventCapture, r.captureAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
		r.notifier.Enable(notify.EventUpload, r.uploadAlerts)
		r.notifier.Enable(notify.EventFailure, r.failureAlerts)
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "capture":
		cmd, err = parseCaptureCmd(subArgs, r)
	case "select":
		cmd, err = parseSelectCmd(subArgs, r)
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r)
	case "quick":
		cmd, err = parseQuickCmd(subArgs, r)
	case "sources":
		cmd, err = parseSourcesCmd(subArgs, r)
	case "history":
		cmd, err = parseHistoryCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// reloadConfig replaces the configuration loaded at startup with the file
// named by -config. Notification flags given on the command line still win.
func (r *root) reloadConfig(path string) error {
	cfg, err := config.NewLoader(version, path).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyEnv(cfg, os.LookupEnv)
	r.config, r.configPath, r.configWarnings = cfg, path, nil

	set := map[string]bool{}
	r.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, f := range []struct {
		name string
		dst  *bool
		val  bool
	}{
		{"notify-capture", &r.captureAlerts, cfg.Notify.Capture},
		{"notify-save", &r.saveAlerts, cfg.Notify.Save},
		{"notify-copy", &r.copyAlerts, cfg.Notify.Copy},
		{"notify-upload", &r.uploadAlerts, cfg.Notify.Upload},
		{"notify-failure", &r.failureAlerts, cfg.Notify.Failure},
	} {
		if !set[f.name] {
			*f.dst = f.val
		}
	}
	return nil
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
