package session

// Phase is the controller's position in the capture flow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseChoosingSource
	PhaseSelectingRegion
	PhaseAnnotating
	PhaseAwaitingText
	PhaseExporting
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseChoosingSource:
		return "choosing-source"
	case PhaseSelectingRegion:
		return "selecting-region"
	case PhaseAnnotating:
		return "annotating"
	case PhaseAwaitingText:
		return "awaiting-text"
	case PhaseExporting:
		return "exporting"
	case PhaseClosed:
		return "closed"
	}
	return "unknown"
}

// Tool is the active annotation tool. Exactly one tool is active at a time.
type Tool int

const (
	ToolNone Tool = iota
	ToolArrow
	ToolBox
	ToolHighlight
	ToolText
)

// Tools lists the selectable tools in toolbar order.
var Tools = []Tool{ToolArrow, ToolBox, ToolHighlight, ToolText}

func (t Tool) String() string {
	switch t {
	case ToolArrow:
		return "arrow"
	case ToolBox:
		return "box"
	case ToolHighlight:
		return "highlight"
	case ToolText:
		return "text"
	}
	return "none"
}
