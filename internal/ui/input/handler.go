package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"deckview/internal/ui/input/modes"
	"deckview/internal/ui/input/types"
)

type Handler struct {
	currentMode types.Mode
	modes       map[types.Mode]types.ModeHandler
	textInput   *textinput.Model // page number typed in the selector
}

func New() *Handler {
	ti := textinput.New()

	h := &Handler{
		currentMode: types.ModeNormal,
		textInput:   &ti,
		modes:       make(map[types.Mode]types.ModeHandler),
	}

	h.modes[types.ModeNormal] = modes.NewNormalMode()
	h.modes[types.ModeSelector] = modes.NewSelectorMode(h.textInput)

	return h
}

func (h *Handler) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, tea.Cmd) {
	handler := h.modes[h.currentMode]
	if handler == nil {
		return nil, nil
	}

	actions, consumed := handler.HandleKey(msg, ctx)
	if !consumed && !h.isTextMode(h.currentMode) {
		return nil, nil
	}

	var cmd tea.Cmd
	var allActions []types.Action

	for _, action := range actions {
		changeMode, ok := action.(types.ChangeModeAction)
		if !ok {
			allActions = append(allActions, action)
			continue
		}
		if current := h.modes[h.currentMode]; current != nil {
			allActions = append(allActions, current.Exit(ctx)...)
		}
		h.currentMode = changeMode.Mode
		if next := h.modes[h.currentMode]; next != nil {
			allActions = append(allActions, next.Enter(ctx)...)
		}
		if h.isTextMode(h.currentMode) {
			cmd = textinput.Blink
		}
	}

	// Unconsumed keys in a text mode edit the typed page number
	if h.isTextMode(h.currentMode) && !consumed {
		*h.textInput, cmd = h.textInput.Update(msg)
		index := 0
		if sel, ok := h.modes[types.ModeSelector].(*modes.SelectorMode); ok {
			index = sel.Index()
		}
		allActions = append(allActions, types.UpdateSelectorAction{Index: index, Typed: h.textInput.Value()})
	}

	return allActions, cmd
}

func (h *Handler) CurrentMode() types.Mode {
	return h.currentMode
}

func (h *Handler) isTextMode(mode types.Mode) bool {
	return mode == types.ModeSelector
}

// Reset returns to normal mode
func (h *Handler) Reset() {
	h.currentMode = types.ModeNormal
	h.textInput.Reset()
	h.textInput.Blur()
}

// Update handles non-keyboard messages for the text input
func (h *Handler) Update(msg tea.Msg) tea.Cmd {
	if h.isTextMode(h.currentMode) {
		var cmd tea.Cmd
		*h.textInput, cmd = h.textInput.Update(msg)
		return cmd
	}
	return nil
}

// Typed returns the page number typed in the selector
func (h *Handler) Typed() string {
	if h == nil || !h.isTextMode(h.currentMode) {
		return ""
	}
	return h.textInput.Value()
}
