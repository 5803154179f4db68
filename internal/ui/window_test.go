package ui

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log"
	"strings"
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/snipt/internal/annotate"
	"github.com/example/snipt/internal/capture"
	"github.com/example/snipt/internal/export"
	"github.com/example/snipt/internal/session"
)

var quiet = log.New(io.Discard, "", 0)

type fakeProvider struct {
	sources []capture.Source
	img     *image.RGBA
}

func (f *fakeProvider) ListSources(context.Context) ([]capture.Source, error) { return f.sources, nil }
func (f *fakeProvider) CaptureFullScreen(context.Context) (*image.RGBA, error) {
	return f.img, nil
}
func (f *fakeProvider) CaptureSource(context.Context, string) (*image.RGBA, error) {
	return f.img, nil
}

type stubTarget struct {
	err error
}

func (s stubTarget) Export(context.Context, export.Payload) (export.Result, error) {
	return export.Result{Action: export.ActionCopy}, s.err
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

var blue = color.RGBA{0, 0, 255, 255}

// openWindow returns a window showing a 400×300 session at scale 1.
func openWindow(t *testing.T, opts ...session.Option) *Window {
	t.Helper()
	w := NewWindow(WithLogger(quiet), WithActions(export.ActionCopy))
	opts = append([]session.Option{session.WithLogger(quiet), session.WithExportHook(w.ExportSettled)}, opts...)
	ctrl := session.New(&fakeProvider{}, opts...)
	if err := ctrl.Open(solid(400, 300, blue), "test"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	w.attach(context.Background(), ctrl)
	w.resize(400+w.toolbar.width, 300+statusHeight)
	return w
}

func press(x, y int) mouse.Event {
	return mouse.Event{X: float32(x), Y: float32(y), Button: mouse.ButtonLeft, Direction: mouse.DirPress}
}

func move(x, y int) mouse.Event {
	return mouse.Event{X: float32(x), Y: float32(y), Direction: mouse.DirNone}
}

func release(x, y int) mouse.Event {
	return mouse.Event{X: float32(x), Y: float32(y), Button: mouse.ButtonLeft, Direction: mouse.DirRelease}
}

func typeKey(r rune, code key.Code) key.Event {
	return key.Event{Rune: r, Code: code, Direction: key.DirPress}
}

func center(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func TestKeySelectsTool(t *testing.T) {
	w := openWindow(t)
	w.handleKey(typeKey('b', key.CodeB))
	if got := w.ctrl.Tool(); got != session.ToolBox {
		t.Fatalf("tool = %v, want box", got)
	}
	w.handleKey(key.Event{Rune: 'H', Code: key.CodeH, Modifiers: key.ModShift, Direction: key.DirPress})
	if got := w.ctrl.Tool(); got != session.ToolHighlight {
		t.Fatalf("tool = %v, want highlight", got)
	}
	if w.handleKey(key.Event{Rune: 'b', Code: key.CodeB, Direction: key.DirRelease}) {
		t.Fatalf("key release should be ignored")
	}
}

func TestDragDrawsOnCanvas(t *testing.T) {
	w := openWindow(t)
	left := w.toolbar.width
	w.handleKey(typeKey('a', key.CodeA))
	w.handleMouse(press(left+10, 50))
	w.handleMouse(move(left+60, 50))
	w.handleMouse(release(left+100, 50))

	got := w.ctrl.Session().Log.Committed()
	if len(got) != 1 {
		t.Fatalf("annotations = %d, want 1", len(got))
	}
	if got[0].Start != annotate.Pt(10, 50) || got[0].End != annotate.Pt(100, 50) {
		t.Fatalf("arrow = %v → %v", got[0].Start, got[0].End)
	}
}

func TestDragOntoToolbarKeepsDrawing(t *testing.T) {
	w := openWindow(t)
	left := w.toolbar.width
	w.handleKey(typeKey('b', key.CodeB))
	w.handleMouse(press(left+50, 50))
	w.handleMouse(move(5, 60))
	w.handleMouse(release(5, 60))
	if n := w.ctrl.Session().Log.Len(); n != 1 {
		t.Fatalf("a drag ending over the toolbar should still commit, got %d", n)
	}
}

func TestToolbarButtons(t *testing.T) {
	w := openWindow(t)
	hl := w.toolbar.tools[2]
	w.handleMouse(press(center(hl.Rect()).X, center(hl.Rect()).Y))
	if got := w.ctrl.Tool(); got != session.ToolHighlight {
		t.Fatalf("tool = %v, want highlight", got)
	}

	sw := w.toolbar.swatches[4]
	w.handleMouse(press(center(sw.Rect()).X, center(sw.Rect()).Y))
	if got := w.ctrl.Style().Color; got != annotate.PaletteColorAt(4) {
		t.Fatalf("color = %v, want %v", got, annotate.PaletteColorAt(4))
	}
	if w.ctrl.Session().Log.Len() != 0 {
		t.Fatalf("toolbar clicks must not draw")
	}
}

func TestColorCycleWraps(t *testing.T) {
	w := openWindow(t)
	w.selectColor(0)
	w.handleKey(typeKey('[', key.CodeLeftSquareBracket))
	if got, want := w.ctrl.Style().Color, annotate.PaletteColorAt(annotate.PaletteLen()-1); got != want {
		t.Fatalf("color = %v, want %v", got, want)
	}
}

func TestTextTyping(t *testing.T) {
	w := openWindow(t)
	left := w.toolbar.width
	w.handleKey(typeKey('t', key.CodeT))
	w.handleMouse(press(left+20, 100))
	w.handleMouse(release(left+20, 100))
	if w.ctrl.Phase() != session.PhaseAwaitingText {
		t.Fatalf("phase = %v, want awaiting-text", w.ctrl.Phase())
	}
	// Tool letters are text while typing.
	for _, r := range "Hai" {
		w.handleKey(typeKey(r, key.CodeUnknown))
	}
	w.handleKey(typeKey(-1, key.CodeDeleteBackspace))
	w.handleKey(typeKey('\n', key.CodeReturnEnter))

	got := w.ctrl.Session().Log.Committed()
	if len(got) != 1 || got[0].Text != "Ha" {
		t.Fatalf("annotations = %+v", got)
	}
	if w.ctrl.Tool() != session.ToolText {
		t.Fatalf("typing must not switch tools")
	}
}

func TestEscapeDiscardsTextThenCloses(t *testing.T) {
	w := openWindow(t)
	w.handleKey(typeKey('t', key.CodeT))
	w.handleMouse(press(w.toolbar.width+20, 100))
	w.handleKey(typeKey('x', key.CodeX))
	w.handleKey(typeKey(-1, key.CodeEscape))
	if w.finished() || w.ctrl.Phase() != session.PhaseAnnotating {
		t.Fatalf("first escape should only discard the text")
	}
	w.handleKey(typeKey(-1, key.CodeEscape))
	if !w.finished() || w.ctrl.Phase() != session.PhaseClosed {
		t.Fatalf("second escape should close, phase = %v", w.ctrl.Phase())
	}
}

func TestCtrlShortcutExportsAndCloses(t *testing.T) {
	w := openWindow(t, session.WithTarget(export.ActionCopy, stubTarget{}))
	w.handleKey(key.Event{Rune: 'c', Code: key.CodeC, Modifiers: key.ModControl, Direction: key.DirPress})
	if w.ctrl.Phase() != session.PhaseExporting {
		t.Fatalf("phase = %v, want exporting", w.ctrl.Phase())
	}
	if !strings.Contains(w.status(), "copy") {
		t.Fatalf("status = %q", w.status())
	}
	w.finish(<-w.settled)
	if !w.finished() {
		t.Fatalf("window should close after a successful export")
	}
}

func TestExportFailureKeepsWindowOpen(t *testing.T) {
	w := openWindow(t, session.WithTarget(export.ActionCopy, stubTarget{err: errors.New("clipboard busy")}))
	w.export(export.ActionCopy)
	w.finish(<-w.settled)
	if w.finished() || w.ctrl.Phase() != session.PhaseAnnotating {
		t.Fatalf("failed export should return to annotating")
	}
	if got := w.status(); !strings.Contains(got, "clipboard busy") {
		t.Fatalf("status = %q", got)
	}
}

func TestMissingTargetShowsMessage(t *testing.T) {
	w := openWindow(t)
	w.export(export.ActionCopy)
	if w.ctrl.Phase() != session.PhaseAnnotating {
		t.Fatalf("phase = %v", w.ctrl.Phase())
	}
	if !strings.Contains(w.status(), "copy failed") {
		t.Fatalf("status = %q", w.status())
	}
}

func TestPickerChoosesSource(t *testing.T) {
	p := &fakeProvider{
		sources: []capture.Source{
			{ID: "screen:0", Kind: capture.KindScreen, DisplayName: "Left"},
			{ID: "screen:1", Kind: capture.KindScreen, DisplayName: "Right"},
		},
		img: solid(64, 48, blue),
	}
	ctrl := session.New(p, session.WithLogger(quiet))
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w := NewWindow(WithLogger(quiet))
	w.attach(context.Background(), ctrl)
	if w.width != pickerSize.X || len(w.tiles) != 2 {
		t.Fatalf("width = %d tiles = %d", w.width, len(w.tiles))
	}

	c := center(w.tiles[1].rect)
	if !w.handleMouse(move(c.X, c.Y)) || w.hoverTile != 1 {
		t.Fatalf("hovering a tile should highlight it")
	}
	w.handleMouse(press(c.X, c.Y))
	if ctrl.Phase() != session.PhaseAnnotating || ctrl.Session().Source != "screen:1" {
		t.Fatalf("phase = %v", ctrl.Phase())
	}
	if !w.showToolbar() || w.canvas().Min.X != w.toolbar.width {
		t.Fatalf("toolbar should appear once a session opens")
	}
}

func TestPickerDigitKey(t *testing.T) {
	p := &fakeProvider{
		sources: []capture.Source{
			{ID: "window:0x1", Kind: capture.KindWindow},
			{ID: "window:0x2", Kind: capture.KindWindow},
		},
		img: solid(8, 8, blue),
	}
	ctrl := session.New(p, session.WithLogger(quiet))
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w := NewWindow(WithLogger(quiet))
	w.attach(context.Background(), ctrl)
	if w.handleKey(typeKey('7', key.Code7)) {
		t.Fatalf("digit past the last tile should be ignored")
	}
	w.handleKey(typeKey('2', key.Code2))
	if ctrl.Session() == nil || ctrl.Session().Source != "window:0x2" {
		t.Fatalf("digit 2 should pick the second source")
	}
}

func TestAreaSelection(t *testing.T) {
	p := &fakeProvider{img: solid(200, 100, blue)}
	ctrl := session.New(p, session.WithLogger(quiet))
	if err := ctrl.StartAreaSelect(context.Background()); err != nil {
		t.Fatalf("StartAreaSelect: %v", err)
	}
	w := NewWindow(WithLogger(quiet))
	w.attach(context.Background(), ctrl)
	if w.width != 200 || w.height != 100+statusHeight {
		t.Fatalf("window = %dx%d", w.width, w.height)
	}
	w.handleMouse(press(20, 20))
	w.handleMouse(move(60, 50))
	w.handleMouse(release(120, 80))
	if ctrl.Phase() != session.PhaseAnnotating {
		t.Fatalf("phase = %v", ctrl.Phase())
	}
	if got := ctrl.Session().Base.Bounds().Size(); got != image.Pt(100, 60) {
		t.Fatalf("crop = %v", got)
	}
}

func TestRender(t *testing.T) {
	w := openWindow(t)
	dst := image.NewRGBA(image.Rect(0, 0, w.width, w.height))
	w.render(dst)

	left := w.toolbar.width
	if got := dst.RGBAAt(left+200, 150); got != blue {
		t.Fatalf("canvas pixel = %v, want %v", got, blue)
	}
	if got := dst.RGBAAt(1, w.height-statusHeight-1); got != toolbarBackground {
		t.Fatalf("toolbar pixel = %v", got)
	}
	if got := dst.RGBAAt(w.width-2, w.height-2); got != statusBg {
		t.Fatalf("status pixel = %v", got)
	}

	w.handleKey(typeKey('h', key.CodeH))
	w.handleMouse(press(left+10, 10))
	w.handleMouse(release(left+60, 60))
	w.render(dst)
	if got := dst.RGBAAt(left+30, 30); got == blue {
		t.Fatalf("highlight should tint the canvas")
	}
}

func TestShortcutFor(t *testing.T) {
	cases := []struct {
		in   key.Event
		want KeyShortcut
	}{
		{key.Event{Rune: 'A', Code: key.CodeA, Modifiers: key.ModShift}, KeyShortcut{Rune: 'a'}},
		{key.Event{Rune: 0x03, Code: key.CodeC, Modifiers: key.ModControl}, ctrl(key.CodeC)},
		{key.Event{Rune: 'S', Code: key.CodeS, Modifiers: key.ModControl | key.ModShift}, ctrl(key.CodeS)},
		{key.Event{Rune: -1, Code: key.CodeEscape}, KeyShortcut{Code: key.CodeEscape}},
	}
	for _, c := range cases {
		if got := shortcutFor(c.in); got != c.want {
			t.Fatalf("shortcutFor(%+v) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestLayoutPicker(t *testing.T) {
	sources := make([]capture.Source, 5)
	tiles := layoutPicker(sources, image.Rect(0, 0, 800, 600))
	cols := (800 - tileGap) / (tileWidth + tileGap)
	if tiles[cols].rect.Min.Y <= tiles[0].rect.Min.Y || tiles[cols].rect.Min.X != tiles[0].rect.Min.X {
		t.Fatalf("tile %d should start the second row: %v", cols, tiles[cols].rect)
	}
	if tileAt(tiles, image.Pt(1, 1)) != -1 {
		t.Fatalf("the gap should not hit a tile")
	}
	if got := fitRect(image.Pt(200, 100), image.Rect(0, 0, 100, 100)); got != image.Rect(0, 25, 100, 75) {
		t.Fatalf("fitRect = %v", got)
	}
	if got := caption("a very long window title", 10); got != "a very ..." {
		t.Fatalf("caption = %q", got)
	}
}
