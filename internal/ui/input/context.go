package input

import (
	"deckview/internal/ui/state"
)

// ModelContext implements the Context interface for the input handler
type ModelContext struct {
	State *state.AppState
}

func (c *ModelContext) CurrentPage() int {
	return c.State.Pages.Current()
}

func (c *ModelContext) TotalPages() int {
	return c.State.Pages.Total()
}

// OptionCount is the number of pages listed in the selector
func (c *ModelContext) OptionCount() int {
	return len(c.State.PageOptions)
}

func (c *ModelContext) Loaded() bool {
	return c.State.Loaded && c.State.Navigation != nil
}
