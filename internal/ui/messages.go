package ui

import (
	"deckview/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// pagerExitMsg is sent when the ov pager returns control
type pagerExitMsg struct {
	what string
	err  error
}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}

// clearStatusMsg clears a transient status message
type clearStatusMsg struct{}
