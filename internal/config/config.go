package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/snipt/internal/annotate"
	"github.com/example/snipt/internal/region"
)

// DefaultLinkTTL is how long a shared upload link stays valid.
const DefaultLinkTTL = 7 * 24 * time.Hour

// DefaultFilePrefix names saved and uploaded captures.
const DefaultFilePrefix = "snipt"

// Notify holds notification settings.
type Notify struct {
	Capture bool
	Save    bool
	Copy    bool
	Upload  bool
	Failure bool
}

// Annotate holds the default annotation style.
type Annotate struct {
	StrokeWidth      float64
	FontSize         float64
	HighlightOpacity float64
	ArrowHead        float64
}

// Select holds region selection settings.
type Select struct {
	MinSize    float64
	DimOpacity float64
}

// Upload holds the cloud storage target settings.
type Upload struct {
	Bucket   string
	Region   string
	Endpoint string
	User     string
	LinkTTL  time.Duration
	History  string
}

// Enabled reports whether enough is configured to attempt an upload.
func (u Upload) Enabled() bool {
	return u.Bucket != ""
}

// Config holds the application configuration.
type Config struct {
	SaveDir    string
	FilePrefix string
	Color      string
	Annotate   Annotate
	Select     Select
	Upload     Upload
	Notify     Notify
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		FilePrefix: DefaultFilePrefix,
		Color:      strings.ToLower(annotate.PaletteColors()[annotate.DefaultColorIndex].Name),
		Annotate: Annotate{
			StrokeWidth:      annotate.DefaultStrokeWidth,
			FontSize:         annotate.DefaultFontSize,
			HighlightOpacity: annotate.DefaultHighlightOpacity,
			ArrowHead:        annotate.DefaultHeadLength,
		},
		Select: Select{
			MinSize:    region.DefaultMinSize,
			DimOpacity: region.DefaultDimOpacity,
		},
		Upload: Upload{LinkTTL: DefaultLinkTTL},
		Notify: Notify{Upload: true, Failure: true},
	}
}

// Style returns the annotation style described by the configuration. An
// unknown color name falls back to the default palette entry.
func (c *Config) Style() annotate.Style {
	col, err := annotate.ParseColor(c.Color)
	if err != nil {
		col = annotate.PaletteColorAt(annotate.DefaultColorIndex)
	}
	return annotate.Style{
		Color:            col,
		StrokeWidth:      c.Annotate.StrokeWidth,
		FontSize:         c.Annotate.FontSize,
		HighlightOpacity: c.Annotate.HighlightOpacity,
	}
}

// SelectOptions returns region selector options with the configured limits.
func (c *Config) SelectOptions() region.Options {
	opts := region.DefaultOptions()
	opts.MinSize = c.Select.MinSize
	opts.DimOpacity = c.Select.DimOpacity
	return opts
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "file_prefix = %s\n", c.FilePrefix)
	fmt.Fprintf(&sb, "color = %s\n", c.Color)
	sb.WriteString("\n")

	sb.WriteString("[annotate]\n")
	fmt.Fprintf(&sb, "stroke_width = %g\n", c.Annotate.StrokeWidth)
	fmt.Fprintf(&sb, "font_size = %g\n", c.Annotate.FontSize)
	fmt.Fprintf(&sb, "highlight_opacity = %g\n", c.Annotate.HighlightOpacity)
	fmt.Fprintf(&sb, "arrow_head = %g\n", c.Annotate.ArrowHead)
	sb.WriteString("\n")

	sb.WriteString("[select]\n")
	fmt.Fprintf(&sb, "min_size = %g\n", c.Select.MinSize)
	fmt.Fprintf(&sb, "dim_opacity = %g\n", c.Select.DimOpacity)
	sb.WriteString("\n")

	sb.WriteString("[upload]\n")
	for _, kv := range [][2]string{
		{"bucket", c.Upload.Bucket},
		{"region", c.Upload.Region},
		{"endpoint", c.Upload.Endpoint},
		{"user", c.Upload.User},
		{"history", c.Upload.History},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv[0], kv[1])
		}
	}
	fmt.Fprintf(&sb, "link_ttl = %s\n", c.Upload.LinkTTL)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "capture = %v\n", c.Notify.Capture)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "upload = %v\n", c.Notify.Upload)
	fmt.Fprintf(&sb, "failure = %v\n", c.Notify.Failure)

	return sb.String()
}
