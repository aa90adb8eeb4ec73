package publisher

// State is a step in a publisher's sequence.
type State int

const (
	StateStart State = iota
	StatePageOpened
	StateLoggingIn
	StateEditorReady
	StateTitleFilled
	StateContentInjected
	StateAwaitingAsyncProcessing
	StatePublishPanelOpened
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateStart:                   "start",
	StatePageOpened:              "page_opened",
	StateLoggingIn:               "logging_in",
	StateEditorReady:             "editor_ready",
	StateTitleFilled:             "title_filled",
	StateContentInjected:         "content_injected",
	StateAwaitingAsyncProcessing: "awaiting_async_processing",
	StatePublishPanelOpened:      "publish_panel_opened",
	StateDone:                    "done",
	StateFailed:                  "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no step follows s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
