package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"deckview/internal/ui/input/types"
)

// NormalMode maps presenter keys to navigation intents
type NormalMode struct{}

func NewNormalMode() *NormalMode {
	return &NormalMode{}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return []types.Action{types.QuitAction{}}, true
	case "?":
		return []types.Action{types.OpenHelpAction{}}, true
	case "ctrl+r", "R":
		return []types.Action{types.ReloadAction{}}, true
	}

	// Everything below needs a deck
	if !ctx.Loaded() {
		return nil, false
	}

	switch msg.String() {
	case "right", "l", "enter", " ", "pgdown", "n":
		return []types.Action{types.NavigateAction{Direction: types.DirectionNext}}, true

	case "left", "h", "backspace", "pgup", "p":
		return []types.Action{types.NavigateAction{Direction: types.DirectionPrevious}}, true

	case "home", "g":
		return []types.Action{types.NavigateAction{Direction: types.DirectionFirst}}, true

	case "end", "G":
		return []types.Action{types.NavigateAction{Direction: types.DirectionLast}}, true

	case "s", "tab":
		if ctx.OptionCount() == 0 {
			return nil, true
		}
		return []types.Action{types.ChangeModeAction{Mode: types.ModeSelector}}, true

	case "r":
		return []types.Action{types.OpenRawAction{}}, true
	}

	return nil, false
}
