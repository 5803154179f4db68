// Package session sequences one capture: choosing a source, optionally
// selecting a region, annotating, and exporting the flattened result.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/snipt/internal/annotate"
	"github.com/example/snipt/internal/capture"
	"github.com/example/snipt/internal/compose"
	"github.com/example/snipt/internal/export"
	"github.com/example/snipt/internal/notify"
	"github.com/example/snipt/internal/region"
)

var (
	// ErrNoSession is returned by operations that need an open session.
	ErrNoSession = errors.New("no capture session")
	// ErrExportPending is returned while an earlier export is still running.
	ErrExportPending = errors.New("export still pending")
	// ErrWrongPhase is returned when an operation does not apply to the
	// current phase.
	ErrWrongPhase = errors.New("operation not valid in this phase")
)

// Session is one captured image and the annotations drawn over it.
type Session struct {
	ID     string
	Source string
	Base   *image.RGBA
	Log    annotate.Log
}

// Controller drives a capture session from user events. It is meant to be
// called from a single event loop; only export completion happens on
// another goroutine and is handed back through ExportResult and Finish.
type Controller struct {
	provider   capture.Provider
	targets    map[export.Action]export.Target
	copyLink   export.TextWriter
	notifier   *notify.Notifier
	logger     *log.Logger
	renderer   *annotate.Renderer
	style      annotate.Style
	selectOpts region.Options
	prefix     string
	now        func() time.Time
	shadow     *compose.ShadowOptions
	onSettle   func(*ExportResult)

	phase    Phase
	tool     Tool
	sources  []capture.Source
	session  *Session
	selector *region.Selector
	view     annotate.Viewport

	textPos annotate.Point
	textBuf []rune

	overlay *image.RGBA
	dirty   bool

	pending      *ExportResult
	cancelExport context.CancelFunc
}

// New returns a controller capturing through provider.
func New(provider capture.Provider, opts ...Option) *Controller {
	c := &Controller{
		provider:   provider,
		targets:    make(map[export.Action]export.Target),
		logger:     log.Default(),
		renderer:   annotate.NewRenderer(),
		style:      annotate.DefaultStyle(annotate.PaletteColorAt(annotate.DefaultColorIndex)),
		selectOpts: region.DefaultOptions(),
		prefix:     export.DefaultPrefix,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase reports where the controller is in the capture flow.
func (c *Controller) Phase() Phase { return c.phase }

// Tool reports the active annotation tool.
func (c *Controller) Tool() Tool { return c.tool }

// Style returns the style applied to new annotations.
func (c *Controller) Style() annotate.Style { return c.style }

// Sources returns the sources listed by the last Start.
func (c *Controller) Sources() []capture.Source { return c.sources }

// Session returns the open session, or nil.
func (c *Controller) Session() *Session { return c.session }

// Viewport returns the current display mapping.
func (c *Controller) Viewport() annotate.Viewport { return c.view }

// Pending returns the export in flight, or nil.
func (c *Controller) Pending() *ExportResult { return c.pending }

// Start lists capture sources. When exactly one screen is available it is
// captured straight away; otherwise the controller waits for ChooseSource.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	sources, err := c.provider.ListSources(ctx)
	if err != nil {
		return c.fail("list sources", err)
	}
	if len(sources) == 0 {
		return c.fail("list sources", capture.ErrNoSources)
	}
	c.sources = sources
	c.phase = PhaseChoosingSource
	if screens := capture.Screens(sources); len(screens) == 1 {
		return c.ChooseSource(ctx, screens[0].ID)
	}
	return nil
}

// ChooseSource opens a session on the listed source with the given ID. The
// frame grabbed while listing is used, so the picker never ends up in the
// capture; the provider is asked again only for sources listed without one.
func (c *Controller) ChooseSource(ctx context.Context, id string) error {
	if c.phase != PhaseChoosingSource {
		return ErrWrongPhase
	}
	src, ok := capture.Find(c.sources, id)
	if !ok {
		return fmt.Errorf("%w: %s", capture.ErrUnknownSource, id)
	}
	img := src.Frame
	if img == nil {
		var err error
		if img, err = c.provider.CaptureSource(ctx, id); err != nil {
			c.phase = PhaseIdle
			c.sources = nil
			return c.fail("capture "+src.DisplayName, err)
		}
	}
	c.open(img, id)
	c.notifier.Capture(src.DisplayName, img)
	return nil
}

// StartSource captures a source chosen ahead of time, skipping the picker.
func (c *Controller) StartSource(ctx context.Context, id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	img, err := c.provider.CaptureSource(ctx, id)
	if err != nil {
		return c.fail("capture "+id, err)
	}
	c.open(img, id)
	c.notifier.Capture(id, img)
	return nil
}

// StartAreaSelect captures the full screen and waits for a region to be
// dragged out over it.
func (c *Controller) StartAreaSelect(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	img, err := c.provider.CaptureFullScreen(ctx)
	if err != nil {
		return c.fail("capture screen", err)
	}
	c.selector = region.New(img, c.view, c.selectOpts)
	c.phase = PhaseSelectingRegion
	return nil
}

// Open starts a session on an existing image, such as a file from disk.
func (c *Controller) Open(img *image.RGBA, source string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("open %s: empty image", source)
	}
	c.open(img, source)
	return nil
}

func (c *Controller) ready() error {
	switch c.phase {
	case PhaseIdle, PhaseClosed:
		c.reset()
		return nil
	}
	return ErrWrongPhase
}

func (c *Controller) open(img *image.RGBA, source string) {
	c.session = &Session{ID: uuid.NewString(), Source: source, Base: img}
	c.overlay = image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	c.dirty = true
	c.selector = nil
	c.phase = PhaseAnnotating
}

func (c *Controller) reset() {
	c.phase = PhaseIdle
	c.tool = ToolNone
	c.sources = nil
	c.session = nil
	c.selector = nil
	c.overlay = nil
	c.textBuf = nil
	c.pending = nil
	c.cancelExport = nil
}

// fail logs and reports err, returning it wrapped with op.
func (c *Controller) fail(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	c.logger.Printf("%v", wrapped)
	c.notifier.Failure(op, err)
	return wrapped
}

// SetViewport sets where the image is displayed. Pointer positions are
// mapped through it.
func (c *Controller) SetViewport(v annotate.Viewport) {
	c.view = v
	if c.selector != nil {
		c.selector.SetViewport(v)
	}
}

// Image returns the image on display: the session base, or the screen
// being selected from. It is nil when neither exists.
func (c *Controller) Image() *image.RGBA {
	switch {
	case c.session != nil:
		return c.session.Base
	case c.selector != nil:
		return c.selector.Base()
	}
	return nil
}

// FitTo letterboxes the current image into area and uses that as the
// viewport.
func (c *Controller) FitTo(area image.Rectangle) annotate.Viewport {
	img := c.Image()
	if img == nil {
		return c.view
	}
	c.SetViewport(annotate.FitViewport(img.Bounds().Size(), area))
	return c.view
}

// SetTool makes t the active tool. Any in-progress drag or text entry is
// discarded.
func (c *Controller) SetTool(t Tool) {
	if c.phase == PhaseAwaitingText {
		c.CancelText()
	}
	if c.session != nil && c.session.Log.HasDraft() {
		c.session.Log.CancelDraft()
		c.dirty = true
	}
	c.tool = t
}

// SetStyle changes the style of annotations drawn from now on.
func (c *Controller) SetStyle(s annotate.Style) {
	c.style = s
	c.dirty = true
}

func kindFor(t Tool) (annotate.Kind, bool) {
	switch t {
	case ToolArrow:
		return annotate.KindArrow, true
	case ToolBox:
		return annotate.KindBox, true
	case ToolHighlight:
		return annotate.KindHighlight, true
	}
	return 0, false
}

func (c *Controller) toImage(x, y float64) (annotate.Point, bool) {
	p, err := c.view.ToImage(x, y)
	if err != nil {
		c.logger.Printf("pointer ignored: %v", err)
		return annotate.Point{}, false
	}
	return p, true
}

// PointerDown handles a button press at display position (x, y).
func (c *Controller) PointerDown(x, y float64) {
	switch c.phase {
	case PhaseSelectingRegion:
		c.selector.PointerDown(x, y)
	case PhaseAnnotating:
		if !c.view.Contains(x, y) {
			return
		}
		p, ok := c.toImage(x, y)
		if !ok {
			return
		}
		if c.tool == ToolText {
			c.textPos = p
			c.textBuf = c.textBuf[:0]
			c.phase = PhaseAwaitingText
			c.dirty = true
			return
		}
		if kind, ok := kindFor(c.tool); ok {
			c.session.Log.BeginDraft(kind, p, c.style)
			c.dirty = true
		}
	}
}

// PointerMove handles pointer motion to display position (x, y).
func (c *Controller) PointerMove(x, y float64) {
	switch c.phase {
	case PhaseSelectingRegion:
		c.selector.PointerMove(x, y)
	case PhaseAnnotating:
		if !c.session.Log.HasDraft() {
			return
		}
		if p, ok := c.toImage(x, y); ok {
			c.session.Log.UpdateDraft(p)
			c.dirty = true
		}
	}
}

// PointerUp handles a button release at display position (x, y). Ending a
// large enough region selection opens a session on the cropped image.
func (c *Controller) PointerUp(x, y float64) {
	switch c.phase {
	case PhaseSelectingRegion:
		c.selector.PointerMove(x, y)
		crop, ok := c.selector.PointerUp()
		if !ok {
			return
		}
		c.open(crop, "area")
		c.notifier.Capture("area", crop)
	case PhaseAnnotating:
		if !c.session.Log.HasDraft() {
			return
		}
		if p, ok := c.toImage(x, y); ok {
			c.session.Log.UpdateDraft(p)
		}
		c.session.Log.CommitDraft()
		c.dirty = true
	}
}

// TypeRune appends r to the text being entered.
func (c *Controller) TypeRune(r rune) {
	if c.phase != PhaseAwaitingText || r < ' ' {
		return
	}
	c.textBuf = append(c.textBuf, r)
	c.dirty = true
}

// Backspace removes the last entered rune.
func (c *Controller) Backspace() {
	if c.phase != PhaseAwaitingText || len(c.textBuf) == 0 {
		return
	}
	c.textBuf = c.textBuf[:len(c.textBuf)-1]
	c.dirty = true
}

// SubmitText commits the entered text as an annotation. Blank text is
// dropped. It reports whether an annotation was added.
func (c *Controller) SubmitText() bool {
	if c.phase != PhaseAwaitingText {
		return false
	}
	added := c.session.Log.AddText(c.textPos, string(c.textBuf), c.style)
	c.textBuf = c.textBuf[:0]
	c.phase = PhaseAnnotating
	c.dirty = true
	return added
}

// CancelText abandons text entry.
func (c *Controller) CancelText() {
	if c.phase != PhaseAwaitingText {
		return
	}
	c.textBuf = c.textBuf[:0]
	c.phase = PhaseAnnotating
	c.dirty = true
}

// TextInput returns the position and content of the text being entered.
func (c *Controller) TextInput() (annotate.Point, string, bool) {
	if c.phase != PhaseAwaitingText {
		return annotate.Point{}, "", false
	}
	return c.textPos, string(c.textBuf), true
}

// TextCaret returns the image position just after the entered text.
func (c *Controller) TextCaret() (annotate.Point, bool) {
	pos, text, ok := c.TextInput()
	if !ok {
		return annotate.Point{}, false
	}
	size := c.style.FontSize
	if size <= 0 {
		size = annotate.DefaultFontSize
	}
	return annotate.Pt(pos.X+float64(c.renderer.MeasureText(text, size)), pos.Y), true
}

// Undo removes the most recent annotation.
func (c *Controller) Undo() bool {
	if c.phase != PhaseAnnotating {
		return false
	}
	_, ok := c.session.Log.Undo()
	if ok {
		c.dirty = true
	}
	return ok
}

// Overlay returns the annotation layer at image size, including any drag
// in progress and the text being typed. It is nil without a session.
func (c *Controller) Overlay() *image.RGBA {
	if c.overlay == nil || c.session == nil {
		return nil
	}
	if c.dirty {
		shapes := c.session.Log.Snapshot()
		if pos, text, ok := c.TextInput(); ok && text != "" {
			shapes = append(shapes, annotate.Text(pos, text, c.style))
		}
		c.renderer.Redraw(c.overlay, shapes)
		c.dirty = false
	}
	return c.overlay
}

// Preview draws the region selection view into dst.
func (c *Controller) Preview(dst *image.RGBA) {
	if c.selector != nil {
		c.selector.Preview(dst)
	}
}

// Flatten returns the base image with committed annotations drawn over it.
func (c *Controller) Flatten() (*image.RGBA, error) {
	if c.session == nil {
		return nil, ErrNoSession
	}
	overlay := image.NewRGBA(c.overlay.Bounds())
	c.renderer.Redraw(overlay, c.session.Log.Committed())
	return compose.Flatten(c.session.Base, overlay)
}

// Done flattens the session and exports it with action. The export runs on
// its own goroutine; the returned result settles when it finishes and must
// be passed to Finish. Text still being typed is committed first.
func (c *Controller) Done(ctx context.Context, action export.Action) (*ExportResult, error) {
	switch c.phase {
	case PhaseExporting:
		return nil, ErrExportPending
	case PhaseAwaitingText:
		c.SubmitText()
	case PhaseAnnotating:
	default:
		return nil, ErrNoSession
	}
	target, ok := c.targets[action]
	if !ok {
		return nil, fmt.Errorf("no %s target configured", action)
	}
	if c.session.Log.HasDraft() {
		c.session.Log.CommitDraft()
		c.dirty = true
	}
	img, err := c.Flatten()
	if err != nil {
		return nil, c.fail("flatten", err)
	}
	if c.shadow != nil {
		img, _ = compose.WithShadow(img, *c.shadow)
	}
	data, err := compose.EncodePNG(img)
	if err != nil {
		return nil, c.fail("encode", err)
	}
	payload := export.Payload{
		Image:    img,
		PNG:      data,
		Filename: export.GenerateFilename(c.prefix, c.now()),
	}

	res := newExportResult(action)
	ctx, cancel := context.WithCancel(ctx)
	c.pending, c.cancelExport = res, cancel
	c.phase = PhaseExporting
	go func() {
		defer cancel()
		out, err := target.Export(ctx, payload)
		res.settle(out, err)
		if c.onSettle != nil {
			c.onSettle(res)
		}
	}()
	return res, nil
}

// Finish applies a settled export. Success closes the session; failure
// returns to annotating with every annotation kept so the export can be
// retried. It returns the export's error.
func (c *Controller) Finish(res *ExportResult) error {
	if res == nil || res != c.pending {
		return nil
	}
	out, err := res.Result()
	if errors.Is(err, ErrExportPending) {
		return err
	}
	c.pending, c.cancelExport = nil, nil
	if err != nil {
		c.phase = PhaseAnnotating
		if errors.Is(err, export.ErrCancelled) {
			return err
		}
		return c.fail(string(res.Action), err)
	}

	switch res.Action {
	case export.ActionCopy:
		c.notifier.Copy("image")
	case export.ActionSave, export.ActionPDF:
		c.notifier.Save(out.Path)
	case export.ActionUpload:
		if c.copyLink != nil {
			if err := c.copyLink(out.URL); err != nil {
				c.logger.Printf("copy link: %v", err)
			}
		}
		c.notifier.Upload(out.URL)
	}
	c.logger.Printf("%s export finished for session %s", res.Action, c.session.ID)
	c.reset()
	c.phase = PhaseClosed
	return nil
}

// Export runs Done, waits for the export and applies it with Finish.
// Cancelling ctx aborts the export and keeps the session open.
func (c *Controller) Export(ctx context.Context, action export.Action) (export.Result, error) {
	res, err := c.Done(ctx, action)
	if err != nil {
		return export.Result{}, err
	}
	<-res.Done()
	if err := c.Finish(res); err != nil {
		return export.Result{}, err
	}
	out, _ := res.Result()
	return out, nil
}

// Cancel discards the session from any phase, aborting a running export.
func (c *Controller) Cancel() {
	if c.cancelExport != nil {
		c.cancelExport()
	}
	if c.selector != nil {
		c.selector.Cancel()
	}
	c.reset()
	c.phase = PhaseClosed
}

// QuickCapture copies the full screen to the clipboard without opening a
// session.
func (c *Controller) QuickCapture(ctx context.Context) error {
	target, ok := c.targets[export.ActionCopy]
	if !ok {
		return fmt.Errorf("no %s target configured", export.ActionCopy)
	}
	img, err := c.provider.CaptureFullScreen(ctx)
	if err != nil {
		return c.fail("capture screen", err)
	}
	if _, err := target.Export(ctx, export.Payload{Image: img, Filename: export.GenerateFilename(c.prefix, c.now())}); err != nil {
		return c.fail(string(export.ActionCopy), err)
	}
	c.notifier.Copy("screen")
	return nil
}
