package modes

import (
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"deckview/internal/ui/input/types"
)

// SelectorMode drives the page selector popup. Arrow keys move the
// highlight, digits type a page number.
type SelectorMode struct {
	index     int
	textInput *textinput.Model
}

func NewSelectorMode(ti *textinput.Model) *SelectorMode {
	return &SelectorMode{textInput: ti}
}

func (m *SelectorMode) Name() string {
	return "selector"
}

func (m *SelectorMode) Enter(ctx types.Context) []types.Action {
	m.index = ctx.CurrentPage() - 1
	if m.index < 0 || m.index >= ctx.OptionCount() {
		m.index = 0
	}
	if m.textInput != nil {
		m.textInput.Reset()
		m.textInput.Prompt = ""
		m.textInput.CharLimit = 6
		m.textInput.Focus()
	}
	return []types.Action{types.UpdateSelectorAction{Index: m.index}}
}

func (m *SelectorMode) Exit(ctx types.Context) []types.Action {
	if m.textInput != nil {
		m.textInput.Blur()
		m.textInput.Reset()
	}
	return nil
}

func (m *SelectorMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{}}, true

	case "esc", "q":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true

	case "enter", " ":
		page := m.index + 1
		if typed := m.typed(); typed != "" {
			n, err := strconv.Atoi(typed)
			if err != nil || n < 1 || n > ctx.TotalPages() {
				return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true
			}
			page = n
		}
		return []types.Action{
			types.JumpAction{Page: page},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true

	case "up", "k", "shift+tab":
		m.move(-1, ctx.OptionCount())
		return []types.Action{types.UpdateSelectorAction{Index: m.index}}, true

	case "down", "j", "tab":
		m.move(1, ctx.OptionCount())
		return []types.Action{types.UpdateSelectorAction{Index: m.index}}, true

	case "home", "g":
		m.index = 0
		return []types.Action{types.UpdateSelectorAction{Index: m.index}}, true

	case "end", "G":
		if n := ctx.OptionCount(); n > 0 {
			m.index = n - 1
		}
		return []types.Action{types.UpdateSelectorAction{Index: m.index}}, true
	}

	// digits and editing keys go to the page number input
	if msg.Type == tea.KeyBackspace || isDigits(msg.Runes) {
		return nil, false
	}
	return nil, true
}

func (m *SelectorMode) move(delta, count int) {
	if count == 0 {
		return
	}
	m.index = (m.index + delta + count) % count
}

func (m *SelectorMode) typed() string {
	if m.textInput == nil {
		return ""
	}
	return m.textInput.Value()
}

// Index returns the highlighted option
func (m *SelectorMode) Index() int {
	return m.index
}

func isDigits(rs []rune) bool {
	if len(rs) == 0 {
		return false
	}
	for _, r := range rs {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
