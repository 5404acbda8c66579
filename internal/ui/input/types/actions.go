package types

// Navigation directions
const (
	DirectionNext     = "next"
	DirectionPrevious = "previous"
	DirectionFirst    = "first"
	DirectionLast     = "last"
)

// NavigateAction is a slide navigation intent. Next and previous go
// through the incremental reveal, first and last jump directly.
type NavigateAction struct {
	Direction string
}

func (a NavigateAction) Type() string { return "navigate" }

// JumpAction goes straight to a page picked in the selector
type JumpAction struct {
	Page int
}

func (a JumpAction) Type() string { return "jump" }

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// UpdateSelectorAction moves the selector highlight
type UpdateSelectorAction struct {
	Index int // 0-based option index
	Typed string
}

func (a UpdateSelectorAction) Type() string { return "update_selector" }

type OpenHelpAction struct{}

func (a OpenHelpAction) Type() string { return "open_help" }

// OpenRawAction shows the raw deck document in the pager
type OpenRawAction struct{}

func (a OpenRawAction) Type() string { return "open_raw" }

// ReloadAction fetches the deck again
type ReloadAction struct{}

func (a ReloadAction) Type() string { return "reload" }

type QuitAction struct{}

func (a QuitAction) Type() string { return "quit" }
