package session

import (
	"log"
	"time"

	"github.com/example/snipt/internal/annotate"
	"github.com/example/snipt/internal/compose"
	"github.com/example/snipt/internal/export"
	"github.com/example/snipt/internal/notify"
	"github.com/example/snipt/internal/region"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger routes controller diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithNotifier reports captures, exports and failures through n.
func WithNotifier(n *notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithStyle sets the style applied to new annotations.
func WithStyle(s annotate.Style) Option {
	return func(c *Controller) { c.style = s }
}

// WithHeadLength sets the arrowhead length in pixels.
func WithHeadLength(px float64) Option {
	return func(c *Controller) {
		if px > 0 {
			c.renderer.HeadLength = px
		}
	}
}

// WithSelectOptions configures the region selector.
func WithSelectOptions(o region.Options) Option {
	return func(c *Controller) { c.selectOpts = o }
}

// WithTarget registers the export target used for action.
func WithTarget(action export.Action, t export.Target) Option {
	return func(c *Controller) { c.targets[action] = t }
}

// WithLinkWriter sets where shareable upload links are copied.
func WithLinkWriter(w export.TextWriter) Option {
	return func(c *Controller) { c.copyLink = w }
}

// WithFilePrefix sets the prefix of generated filenames.
func WithFilePrefix(prefix string) Option {
	return func(c *Controller) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithClock overrides the time source used for filenames.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithShadow adds a drop shadow to exported images.
func WithShadow(o compose.ShadowOptions) Option {
	return func(c *Controller) { c.shadow = &o }
}

// WithExportHook is called from the export goroutine once a result settles.
// Event loops use it to wake up and call Finish.
func WithExportHook(fn func(*ExportResult)) Option {
	return func(c *Controller) { c.onSettle = fn }
}
