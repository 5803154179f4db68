// Package ui shows a capture session in a shiny window and feeds pointer
// and keyboard events to its controller.
package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/snipt/internal/annotate"
	"github.com/example/snipt/internal/export"
	"github.com/example/snipt/internal/session"
)

const (
	statusHeight  = 24
	messageLength = 3 * time.Second
)

var (
	maxInitialSize = image.Pt(1280, 860)
	pickerSize     = image.Pt(800, 560)
)

// exportEvent is sent to the window when an export settles.
type exportEvent struct {
	res *session.ExportResult
}

// Window is the annotation window around a session controller.
type Window struct {
	ctrl    *session.Controller
	ctx     context.Context
	actions []export.Action
	title   string
	logger  *log.Logger
	now     func() time.Time

	width, height int
	toolbar       *toolbar
	tiles         []pickerTile
	hoverTile     int
	pressed       bool

	keys     map[KeyShortcut]string
	handlers map[string]func()

	message      string
	messageUntil time.Time

	settled chan *session.ExportResult
	quit    bool

	scaled   scaledCache
	backdrop *image.RGBA
}

// Option configures a Window.
type Option func(*Window)

// WithActions sets the export actions offered in the toolbar.
func WithActions(actions ...export.Action) Option {
	return func(w *Window) { w.actions = actions }
}

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(w *Window) { w.title = title } }

// WithLogger routes window diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(w *Window) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWindow creates a window. Pass ExportSettled to the controller's
// export hook so finished exports wake the event loop.
func NewWindow(opts ...Option) *Window {
	w := &Window{
		actions:   []export.Action{export.ActionCopy, export.ActionSave},
		title:     "snipt",
		logger:    log.Default(),
		now:       time.Now,
		hoverTile: -1,
		settled:   make(chan *session.ExportResult, 4),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// ExportSettled hands a finished export to the event loop. It is safe to
// call from any goroutine.
func (w *Window) ExportSettled(res *session.ExportResult) {
	select {
	case w.settled <- res:
	default:
		w.logger.Printf("export %s settled with no window listening", res.ID)
	}
}

// Run shows ctrl until its session closes or the window is dismissed.
func (w *Window) Run(ctx context.Context, ctrl *session.Controller) {
	w.attach(ctx, ctrl)
	driver.Main(w.Main)
}

func (w *Window) attach(ctx context.Context, ctrl *session.Controller) {
	w.ctx = ctx
	w.ctrl = ctrl
	w.toolbar = newToolbar(w)
	w.handlers = map[string]func(){
		"tool-arrow":     func() { w.selectTool(session.ToolArrow) },
		"tool-box":       func() { w.selectTool(session.ToolBox) },
		"tool-highlight": func() { w.selectTool(session.ToolHighlight) },
		"tool-text":      func() { w.selectTool(session.ToolText) },
		"tool-none":      func() { w.selectTool(session.ToolNone) },
		"color-prev":     func() { w.cycleColor(-1) },
		"color-next":     func() { w.cycleColor(1) },
		"undo":           w.undo,
		"close":          w.close,
	}
	for _, action := range w.actions {
		action := action
		w.handlers[string(action)] = func() { w.export(action) }
	}
	w.keys = defaultKeymap()
	size := w.initialSize()
	w.resize(size.X, size.Y)
}

// initialSize fits the image and toolbar, capped to a sensible maximum.
func (w *Window) initialSize() image.Point {
	img := w.ctrl.Image()
	if img == nil {
		return pickerSize
	}
	sz := img.Bounds().Size().Add(image.Pt(0, statusHeight))
	if w.showToolbar() {
		sz.X += w.toolbar.width
	}
	if sz.X > maxInitialSize.X {
		sz.X = maxInitialSize.X
	}
	if sz.Y > maxInitialSize.Y {
		sz.Y = maxInitialSize.Y
	}
	return sz
}

// Main runs the event loop on s.
func (w *Window) Main(s screen.Screen) {
	win, err := s.NewWindow(&screen.NewWindowOptions{Width: w.width, Height: w.height, Title: w.title})
	if err != nil {
		w.logger.Printf("new window: %v", err)
		w.ctrl.Cancel()
		return
	}
	defer win.Release()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case res := <-w.settled:
				win.Send(exportEvent{res: res})
			case <-done:
				return
			}
		}
	}()

	for !w.finished() {
		switch e := win.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				w.close()
			}
		case size.Event:
			w.resize(e.WidthPx, e.HeightPx)
			win.Send(paint.Event{})
		case paint.Event:
			w.paint(s, win)
		case mouse.Event:
			if w.handleMouse(e) {
				win.Send(paint.Event{})
			}
		case key.Event:
			if w.handleKey(e) {
				win.Send(paint.Event{})
			}
		case exportEvent:
			w.finish(e.res)
			win.Send(paint.Event{})
		case error:
			w.logger.Printf("window: %v", e)
		}
	}
}

func (w *Window) finished() bool {
	return w.quit || w.ctrl.Phase() == session.PhaseClosed
}

func (w *Window) paint(s screen.Screen, win screen.Window) {
	if w.width <= 0 || w.height <= 0 {
		return
	}
	b, err := s.NewBuffer(image.Pt(w.width, w.height))
	if err != nil {
		w.logger.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	w.render(b.RGBA())
	win.Upload(image.Point{}, b, b.Bounds())
	win.Publish()
}

func (w *Window) resize(width, height int) {
	w.width, w.height = width, height
	w.layout()
}

// canvas is the area left for the image or the picker.
func (w *Window) canvas() image.Rectangle {
	left := 0
	if w.showToolbar() {
		left = w.toolbar.width
	}
	return image.Rect(left, 0, w.width, w.height-statusHeight)
}

func (w *Window) showToolbar() bool {
	switch w.ctrl.Phase() {
	case session.PhaseAnnotating, session.PhaseAwaitingText, session.PhaseExporting:
		return true
	}
	return false
}

// layout recomputes the viewport, toolbar and picker for the current phase.
// It runs after every event since phases change in response to them.
func (w *Window) layout() {
	area := w.canvas()
	switch w.ctrl.Phase() {
	case session.PhaseChoosingSource:
		w.tiles = layoutPicker(w.ctrl.Sources(), area)
	default:
		w.tiles = nil
		w.ctrl.FitTo(area)
	}
	w.toolbar.layout(image.Point{})
}

func (w *Window) handleMouse(e mouse.Event) bool {
	defer w.layout()
	p := image.Pt(int(e.X), int(e.Y))
	press := e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress
	release := e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease

	if press && w.message != "" && w.now().Before(w.messageUntil) {
		w.messageUntil = time.Time{}
	}

	if w.ctrl.Phase() == session.PhaseChoosingSource {
		i := tileAt(w.tiles, p)
		changed := i != w.hoverTile
		w.hoverTile = i
		if press && i >= 0 {
			w.chooseSource(w.tiles[i].source.ID)
			return true
		}
		return changed
	}

	if w.showToolbar() && p.X < w.toolbar.width && !w.pressed {
		b := w.toolbar.hit(p)
		changed := b != w.toolbar.hover
		w.toolbar.hover = b
		if press && b != nil {
			b.Activate()
			return true
		}
		return changed
	}
	if w.toolbar.hover != nil {
		w.toolbar.hover = nil
	}

	x, y := float64(e.X), float64(e.Y)
	switch {
	case press:
		w.pressed = true
		w.ctrl.PointerDown(x, y)
	case release:
		if !w.pressed {
			return false
		}
		w.pressed = false
		w.ctrl.PointerUp(x, y)
	case e.Direction == mouse.DirNone && w.pressed:
		w.ctrl.PointerMove(x, y)
	default:
		return false
	}
	return true
}

func (w *Window) handleKey(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return false
	}
	defer w.layout()

	switch w.ctrl.Phase() {
	case session.PhaseChoosingSource:
		switch {
		case e.Code == key.CodeEscape:
			w.close()
		case e.Rune >= '1' && e.Rune <= '9':
			idx := int(e.Rune - '1')
			if idx >= len(w.tiles) {
				return false
			}
			w.chooseSource(w.tiles[idx].source.ID)
		default:
			return false
		}
		return true
	case session.PhaseAwaitingText:
		if e.Modifiers&key.ModControl == 0 {
			switch e.Code {
			case key.CodeEscape:
				w.ctrl.CancelText()
			case key.CodeReturnEnter, key.CodeKeypadEnter:
				w.ctrl.SubmitText()
			case key.CodeDeleteBackspace:
				w.ctrl.Backspace()
			default:
				if e.Rune < 0 {
					return false
				}
				w.ctrl.TypeRune(e.Rune)
			}
			return true
		}
	}

	name, ok := w.keys[shortcutFor(e)]
	if !ok {
		return false
	}
	fn, ok := w.handlers[name]
	if !ok {
		return false
	}
	fn()
	return true
}

func (w *Window) chooseSource(id string) {
	if err := w.ctrl.ChooseSource(w.ctx, id); err != nil {
		w.flash(fmt.Sprintf("capture failed: %v", err))
		w.quit = w.ctrl.Phase() == session.PhaseIdle
		return
	}
	w.hoverTile = -1
}

func (w *Window) selectTool(t session.Tool) {
	w.ctrl.SetTool(t)
}

func (w *Window) selectColor(idx int) {
	style := w.ctrl.Style()
	style.Color = annotate.PaletteColorAt(idx)
	w.ctrl.SetStyle(style)
}

func (w *Window) cycleColor(step int) {
	n := annotate.PaletteLen()
	if n == 0 {
		return
	}
	current := 0
	for i, pc := range annotate.PaletteColors() {
		if pc.Color == w.ctrl.Style().Color {
			current = i
			break
		}
	}
	w.selectColor(((current+step)%n + n) % n)
}

func (w *Window) undo() {
	w.ctrl.Undo()
}

func (w *Window) close() {
	w.ctrl.Cancel()
	w.quit = true
}

func (w *Window) export(action export.Action) {
	if _, err := w.ctrl.Done(w.ctx, action); err != nil {
		w.logger.Printf("%s: %v", action, err)
		if errors.Is(err, session.ErrExportPending) {
			w.flash("export already running")
			return
		}
		w.flash(fmt.Sprintf("%s failed: %v", action, err))
	}
}

// finish applies a settled export. Failures keep the window open so the
// export can be retried.
func (w *Window) finish(res *session.ExportResult) {
	err := w.ctrl.Finish(res)
	switch {
	case err == nil:
	case errors.Is(err, export.ErrCancelled):
		w.flash(fmt.Sprintf("%s cancelled", res.Action))
	case errors.Is(err, export.ErrAuthRequired):
		w.flash("sign-in required to upload")
	default:
		w.flash(fmt.Sprintf("%s failed: %v", res.Action, err))
	}
	w.layout()
}

func (w *Window) flash(msg string) {
	w.message = msg
	w.messageUntil = w.now().Add(messageLength)
	w.logger.Print(msg)
}
