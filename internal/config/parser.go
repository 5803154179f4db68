package config

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Parse reads configuration from an io.Reader. Unknown sections and keys
// are ignored so newer files still load.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			key, value, ok = strings.Cut(line, ":")
		}
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch section {
		case "":
			err = setRootField(cfg, key, value)
		case "annotate":
			err = setAnnotateField(&cfg.Annotate, key, value)
		case "select":
			err = setSelectField(&cfg.Select, key, value)
		case "upload":
			err = setUploadField(&cfg.Upload, key, value)
		case "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			name := section
			if name == "" {
				name = "root"
			}
			return nil, fmt.Errorf("line %d [%s]: %w", lineNo, name, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "save_dir":
		cfg.SaveDir = value
	case "file_prefix":
		cfg.FilePrefix = value
	case "color":
		cfg.Color = value
	}
	return nil
}

func setAnnotateField(a *Annotate, key, value string) error {
	var dst *float64
	switch key {
	case "stroke_width":
		dst = &a.StrokeWidth
	case "font_size":
		dst = &a.FontSize
	case "highlight_opacity":
		return parseUnit(key, value, &a.HighlightOpacity)
	case "arrow_head":
		dst = &a.ArrowHead
	default:
		return nil
	}
	return parsePositive(key, value, dst)
}

func setSelectField(s *Select, key, value string) error {
	switch key {
	case "min_size":
		return parsePositive(key, value, &s.MinSize)
	case "dim_opacity":
		return parseUnit(key, value, &s.DimOpacity)
	}
	return nil
}

func setUploadField(u *Upload, key, value string) error {
	switch key {
	case "bucket":
		u.Bucket = value
	case "region":
		u.Region = value
	case "endpoint":
		u.Endpoint = value
	case "user":
		u.User = value
	case "history":
		u.History = value
	case "link_ttl":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid duration for key %s: %q", key, value)
		}
		u.LinkTTL = d
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "capture":
		n.Capture = b
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	case "upload":
		n.Upload = b
	case "failure":
		n.Failure = b
	}
	return nil
}

func parseFinite(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("key %s must be a finite number", key)
	}
	return v, nil
}

func parsePositive(key, value string, dst *float64) error {
	v, err := parseFinite(key, value)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("key %s must not be negative", key)
	}
	*dst = v
	return nil
}

// parseUnit reads an opacity in (0, 1].
func parseUnit(key, value string, dst *float64) error {
	v, err := parseFinite(key, value)
	if err != nil {
		return err
	}
	if v <= 0 || v > 1 {
		return fmt.Errorf("key %s must be greater than 0 and at most 1", key)
	}
	*dst = v
	return nil
}
