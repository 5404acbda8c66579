package transform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"deckview/internal/config"
	"deckview/internal/domain"
	"deckview/internal/eventbus"
	"deckview/internal/markup"
	"deckview/internal/source"
)

// DeckProvider hands out the deck currently loaded
type DeckProvider interface {
	Deck() *source.Deck
}

// ServiceOptions configure the render service
type ServiceOptions struct {
	Stylesheets config.StylesheetRefs
	HTMLContent bool
	Timeout     time.Duration
}

type inflight struct {
	generation uint64
	cancel     context.CancelFunc
}

// Service renders fragments on RenderRequested events and publishes the result
type Service struct {
	bus    eventbus.EventBus
	engine Engine
	decks  DeckProvider
	opts   ServiceOptions
	log    *zap.Logger

	mu      sync.Mutex
	running map[domain.Target]inflight
}

// NewService subscribes the render service to the bus
func NewService(ctx context.Context, bus eventbus.EventBus, engine Engine, decks DeckProvider, opts ServiceOptions, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		bus:     bus,
		engine:  engine,
		decks:   decks,
		opts:    opts,
		log:     log.Named("render"),
		running: make(map[domain.Target]inflight),
	}
	bus.Subscribe(eventbus.EventRenderRequested, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.RenderRequestedEvent); ok {
			s.Render(ctx, ev)
		}
	})
	return s
}

// Engine returns the engine in use
func (s *Service) Engine() Engine { return s.engine }

// Render runs one request to completion. A newer request for the same
// target cancels this one, and an older request arriving late is dropped.
func (s *Service) Render(ctx context.Context, req eventbus.RenderRequestedEvent) {
	ctx, ok := s.begin(ctx, req)
	if !ok {
		s.log.Debug("Dropping stale render", zap.String("target", string(req.Target)), zap.Uint64("generation", req.Generation))
		return
	}
	defer s.finish(req)

	out, err := s.render(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.log.Debug("Render superseded", zap.String("target", string(req.Target)), zap.Uint64("generation", req.Generation))
			return
		}
		s.log.Error("Render failed", zap.String("target", string(req.Target)), zap.Int("page", req.Page), zap.Error(err))
		s.bus.Publish(eventbus.ErrorEvent{
			Op:      "transform",
			Target:  req.Target,
			Message: "unable to render " + string(req.Target),
			Err:     err,
		})
		return
	}
	if ctx.Err() != nil {
		return
	}

	s.bus.Publish(eventbus.RenderCompletedEvent{
		Target:     req.Target,
		Page:       req.Page,
		Generation: req.Generation,
		Markup:     out,
	})
}

func (s *Service) begin(parent context.Context, req eventbus.RenderRequestedEvent) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.running[req.Target]; ok {
		if cur.generation > req.Generation {
			return nil, false
		}
		if cur.cancel != nil {
			cur.cancel()
		}
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, s.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	s.running[req.Target] = inflight{generation: req.Generation, cancel: cancel}
	return ctx, true
}

// finish releases the request context. The generation stays recorded so a
// late older request is still recognized as stale.
func (s *Service) finish(req eventbus.RenderRequestedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.running[req.Target]
	if !ok || cur.generation != req.Generation {
		return
	}
	if cur.cancel != nil {
		cur.cancel()
	}
	s.running[req.Target] = inflight{generation: cur.generation}
}

func (s *Service) render(ctx context.Context, req eventbus.RenderRequestedEvent) (string, error) {
	deck := s.decks.Deck()
	if deck == nil {
		return "", fmt.Errorf("no deck loaded")
	}

	sheet := req.Stylesheet
	if sheet == "" {
		sheet = s.stylesheetFor(req.Target)
	}
	sheet = source.Resolve(deck.Ref, sheet)

	start := time.Now()
	out, err := s.engine.Transform(ctx, Request{
		Stylesheet: sheet,
		Deck:       deck,
		Page:       req.Page,
		Paging:     req.Target == domain.TargetNavigation,
	})
	if err != nil {
		return "", err
	}

	frag, err := markup.Parse(out)
	if err != nil {
		return "", fmt.Errorf("unable to parse transform output: %w", err)
	}
	if err := markup.PostProcess(frag, markup.Options{HTMLContent: s.opts.HTMLContent}); err != nil {
		return "", fmt.Errorf("unable to post-process fragment: %w", err)
	}

	s.log.Debug("Rendered",
		zap.String("engine", s.engine.Name()),
		zap.String("target", string(req.Target)),
		zap.Int("page", req.Page),
		zap.Duration("elapsed", time.Since(start)))
	return frag.String(), nil
}

func (s *Service) stylesheetFor(target domain.Target) string {
	if target == domain.TargetNavigation {
		return s.opts.Stylesheets.Paging
	}
	return s.opts.Stylesheets.Content
}
