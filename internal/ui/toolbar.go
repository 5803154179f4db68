package ui

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/example/snipt/internal/annotate"
	"github.com/example/snipt/internal/export"
	"github.com/example/snipt/internal/session"
)

const (
	rowHeight    = 24
	swatchSize   = 18
	sectionGap   = 6
	minToolbarPx = 48
)

var toolbarBackground = color.RGBA{225, 225, 225, 255}

var toolLabels = map[session.Tool]string{
	session.ToolArrow:     "A:Arrow",
	session.ToolBox:       "B:Box",
	session.ToolHighlight: "H:Highlight",
	session.ToolText:      "T:Text",
}

var actionLabels = map[export.Action]string{
	export.ActionCopy:   "^C Copy",
	export.ActionSave:   "^S Save",
	export.ActionUpload: "^U Upload",
	export.ActionPDF:    "^P PDF",
}

// toolbar is the column of tool, color and action buttons shown beside an
// open session.
type toolbar struct {
	width    int
	tools    []*CacheButton
	swatches []*CacheButton
	actions  []*CacheButton
	hover    *CacheButton
}

func (t *toolbar) all() []*CacheButton {
	out := make([]*CacheButton, 0, len(t.tools)+len(t.swatches)+len(t.actions))
	out = append(out, t.tools...)
	out = append(out, t.swatches...)
	return append(out, t.actions...)
}

// newToolbar builds the buttons for w. The width fits the longest label.
func newToolbar(w *Window) *toolbar {
	t := &toolbar{}
	labels := []string{"Undo", "Esc Close"}

	for _, tool := range session.Tools {
		if tool == session.ToolNone {
			continue
		}
		tool := tool
		label := toolLabels[tool]
		labels = append(labels, label)
		t.tools = append(t.tools, &CacheButton{Button: &LabelButton{
			label:      label,
			selected:   func() bool { return w.ctrl.Tool() == tool },
			onActivate: func() { w.selectTool(tool) },
		}})
	}

	for i, pc := range annotate.PaletteColors() {
		idx, col := i, pc.Color
		t.swatches = append(t.swatches, &CacheButton{Button: &SwatchButton{
			name:       pc.Name,
			col:        col,
			selected:   func() bool { return w.ctrl.Style().Color == col },
			onActivate: func() { w.selectColor(idx) },
		}})
	}

	t.actions = append(t.actions, &CacheButton{Button: &LabelButton{label: "Undo", onActivate: w.undo}})
	for _, action := range w.actions {
		action := action
		label, ok := actionLabels[action]
		if !ok {
			label = string(action)
		}
		labels = append(labels, label)
		t.actions = append(t.actions, &CacheButton{Button: &LabelButton{
			label:      label,
			onActivate: func() { w.export(action) },
		}})
	}
	t.actions = append(t.actions, &CacheButton{Button: &LabelButton{label: "Esc Close", onActivate: w.close}})

	d := &font.Drawer{Face: basicfont.Face7x13}
	t.width = minToolbarPx
	for _, lbl := range labels {
		if px := d.MeasureString(lbl).Ceil() + 8; px > t.width {
			t.width = px
		}
	}
	return t
}

// layout stacks the buttons from origin downwards.
func (t *toolbar) layout(origin image.Point) {
	y := origin.Y
	for _, b := range t.tools {
		b.SetRect(image.Rect(origin.X, y, origin.X+t.width, y+rowHeight))
		y += rowHeight
	}
	y += sectionGap
	cols := t.width / swatchSize
	if cols < 1 {
		cols = 1
	}
	for i, b := range t.swatches {
		x := origin.X + (i%cols)*swatchSize
		row := y + (i/cols)*swatchSize
		b.SetRect(image.Rect(x, row, x+swatchSize, row+swatchSize))
	}
	y += (len(t.swatches) + cols - 1) / cols * swatchSize
	y += sectionGap
	for _, b := range t.actions {
		b.SetRect(image.Rect(origin.X, y, origin.X+t.width, y+rowHeight))
		y += rowHeight
	}
}

// hit returns the button under p, or nil.
func (t *toolbar) hit(p image.Point) *CacheButton {
	for _, b := range t.all() {
		if p.In(b.Rect()) {
			return b
		}
	}
	return nil
}

func (t *toolbar) draw(dst *image.RGBA, height int) {
	draw.Draw(dst, image.Rect(0, 0, t.width, height), &image.Uniform{toolbarBackground}, image.Point{}, draw.Src)
	for _, b := range t.all() {
		state := StateDefault
		if s, ok := b.Button.(selectable); ok && s.Selected() {
			state = StateSelected
		} else if b == t.hover {
			state = StateHover
		}
		b.Draw(dst, state)
	}
}
