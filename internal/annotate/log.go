package annotate

import "strings"

// Log is the ordered list of committed annotations for a capture plus at
// most one draft being dragged out. Calls that arrive out of order are
// ignored so a lost pointer event never wedges the editor.
type Log struct {
	committed []Annotation
	draft     *Annotation
}

// BeginDraft starts a draft of kind at p. Text has no drag phase and is
// added through AddText instead.
func (l *Log) BeginDraft(kind Kind, p Point, style Style) {
	if kind == KindText || l.draft != nil {
		return
	}
	l.draft = &Annotation{Kind: kind, Start: p, End: p, Style: style}
}

// UpdateDraft moves the end point of the draft.
func (l *Log) UpdateDraft(p Point) {
	if l.draft == nil {
		return
	}
	l.draft.End = p
}

// CommitDraft appends the draft to the log and clears it.
func (l *Log) CommitDraft() {
	if l.draft == nil {
		return
	}
	l.committed = append(l.committed, *l.draft)
	l.draft = nil
}

// CancelDraft discards the draft without committing it.
func (l *Log) CancelDraft() {
	l.draft = nil
}

// AddText appends a text annotation immediately. Blank text is ignored and
// reported as false.
func (l *Log) AddText(pos Point, text string, style Style) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	l.committed = append(l.committed, Text(pos, text, style))
	return true
}

// Undo removes the most recently committed annotation. The draft is not
// affected.
func (l *Log) Undo() (Annotation, bool) {
	if len(l.committed) == 0 {
		return Annotation{}, false
	}
	last := l.committed[len(l.committed)-1]
	l.committed = l.committed[:len(l.committed)-1]
	return last, true
}

// Snapshot returns the committed annotations followed by the draft, in
// render order.
func (l *Log) Snapshot() []Annotation {
	out := make([]Annotation, 0, len(l.committed)+1)
	out = append(out, l.committed...)
	if l.draft != nil {
		out = append(out, *l.draft)
	}
	return out
}

// Committed returns a copy of the committed annotations.
func (l *Log) Committed() []Annotation {
	out := make([]Annotation, len(l.committed))
	copy(out, l.committed)
	return out
}

// Draft returns the in-progress annotation, if any.
func (l *Log) Draft() (Annotation, bool) {
	if l.draft == nil {
		return Annotation{}, false
	}
	return *l.draft, true
}

func (l *Log) Len() int       { return len(l.committed) }
func (l *Log) HasDraft() bool { return l.draft != nil }

// Reset drops every annotation and the draft.
func (l *Log) Reset() {
	l.committed = nil
	l.draft = nil
}
