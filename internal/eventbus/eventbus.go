package eventbus

import (
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"deckview/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventDeckLoadRequested = domain.EventDeckLoadRequested
	EventDeckLoaded        = domain.EventDeckLoaded
	EventRenderRequested   = domain.EventRenderRequested
	EventRenderCompleted   = domain.EventRenderCompleted
	EventPageChanged       = domain.EventPageChanged
	EventError             = domain.EventError
	EventConfigLoaded      = domain.EventConfigLoaded
)

// Re-export domain event types
type DeckLoadRequestedEvent = domain.DeckLoadRequestedEvent
type DeckLoadedEvent = domain.DeckLoadedEvent
type RenderRequestedEvent = domain.RenderRequestedEvent
type RenderCompletedEvent = domain.RenderCompletedEvent
type PageChangedEvent = domain.PageChangedEvent
type ErrorEvent = domain.ErrorEvent
type ConfigLoadedEvent = domain.ConfigLoadedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	log       *zap.Logger
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus
func New(log *zap.Logger) EventBus {
	if log == nil {
		log = zap.NewNop()
	}
	b := &bus{
		log:       log.Named("bus"),
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 256),
		quit:      make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish publishes an event to all subscribers
func (b *bus) Publish(event DomainEvent) {
	b.log.Debug("Publishing event", zap.String("type", string(event.Type())))

	select {
	case <-b.quit:
		return
	default:
	}

	select {
	case b.eventChan <- event:
	default:
		b.log.Warn("Event bus channel full, dropping event", zap.String("type", string(event.Type())))
	}
}

// Subscribe subscribes to events of a specific type.
// Returns an unsubscribe function.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher, pending events are discarded
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
		b.wg.Wait()
	})
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.RLock()
			subs := make([]subscription, len(b.handlers[event.Type()]))
			copy(subs, b.handlers[event.Type()])
			b.mu.RUnlock()

			// Handlers run in their own goroutines so a slow fetch never blocks dispatch
			for _, s := range subs {
				go func(h EventHandler, eventType EventType) {
					defer func() {
						if r := recover(); r != nil {
							b.log.Error("Event handler panic", zap.String("type", string(eventType)),
								zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
						}
					}()
					h(event)
				}(s.handler, event.Type())
			}

		case <-b.quit:
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}
