package source

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"deckview/internal/eventbus"
)

// Load fetches and parses a deck. Single attempt, no retry.
func Load(ctx context.Context, f *Fetcher, ref string) (*Deck, error) {
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return Parse(ref, data)
}

// Service owns the currently loaded deck and announces loads on the bus
type Service struct {
	bus     eventbus.EventBus
	fetcher *Fetcher
	log     *zap.Logger

	mu   sync.RWMutex
	deck *Deck
}

// NewService creates the content source. It reloads on DeckLoadRequested events.
func NewService(ctx context.Context, bus eventbus.EventBus, fetcher *Fetcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		bus:     bus,
		fetcher: fetcher,
		log:     log.Named("source"),
	}
	bus.Subscribe(eventbus.EventDeckLoadRequested, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.DeckLoadRequestedEvent); ok {
			s.Start(ctx, ev.Ref)
		}
	})
	return s
}

// Start loads the deck and publishes the outcome. On failure the previous
// deck, if any, stays current.
func (s *Service) Start(ctx context.Context, ref string) {
	s.log.Info("Loading deck", zap.String("ref", ref))

	deck, err := Load(ctx, s.fetcher, ref)
	if err != nil {
		s.log.Error("Unable to load deck", zap.String("ref", ref), zap.Error(err))
		s.bus.Publish(eventbus.ErrorEvent{Op: "load", Message: "unable to load deck", Err: err})
		return
	}

	s.mu.Lock()
	s.deck = deck
	s.mu.Unlock()

	s.log.Info("Deck loaded", zap.String("ref", ref), zap.Int("pages", deck.PageCount), zap.Int("bytes", len(deck.Raw)))
	s.bus.Publish(eventbus.DeckLoadedEvent{Deck: deck.Info()})
}

// Deck returns the current deck or nil before the first successful load
func (s *Service) Deck() *Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck
}
