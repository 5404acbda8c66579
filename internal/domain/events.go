package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventDeckLoadRequested EventType = "DeckLoadRequested"
	EventDeckLoaded        EventType = "DeckLoaded"
	EventRenderRequested   EventType = "RenderRequested"
	EventRenderCompleted   EventType = "RenderCompleted"
	EventPageChanged       EventType = "PageChanged"
	EventError             EventType = "Error"
	EventConfigLoaded      EventType = "ConfigLoaded"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// DeckLoadRequestedEvent asks the content source to (re)load a deck
type DeckLoadRequestedEvent struct {
	Ref string
}

func (e DeckLoadRequestedEvent) Type() EventType { return EventDeckLoadRequested }

// DeckLoadedEvent is emitted once a deck has been fetched and parsed
type DeckLoadedEvent struct {
	Deck DeckInfo
}

func (e DeckLoadedEvent) Type() EventType { return EventDeckLoaded }

// RenderRequestedEvent asks the transform service to render a fragment
// into one of the render targets
type RenderRequestedEvent struct {
	Target     Target
	Stylesheet string
	Page       int // 0 when the stylesheet is not parameterized by page
	Generation uint64
}

func (e RenderRequestedEvent) Type() EventType { return EventRenderRequested }

// RenderCompletedEvent carries a transformed and post-processed fragment
type RenderCompletedEvent struct {
	Target     Target
	Page       int
	Generation uint64
	Markup     string // serialized fragment
}

func (e RenderCompletedEvent) Type() EventType { return EventRenderCompleted }

// PageChangedEvent is emitted after a successful navigation
type PageChangedEvent struct {
	From int
	To   int
}

func (e PageChangedEvent) Type() EventType { return EventPageChanged }

// ErrorEvent is emitted when an operation fails
type ErrorEvent struct {
	Op      string // "load", "transform"
	Target  Target
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded. Path is empty
// when the defaults were used.
type ConfigLoadedEvent struct {
	Path    string
	Display DisplaySettings
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }
