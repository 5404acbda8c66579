package state

import (
	"strconv"
	"strings"

	"deckview/internal/domain"
	"deckview/internal/markup"
	"deckview/internal/ui/logic"
)

// Element ids the paging fragment may carry
const (
	PageNumberID = "page-number"
	SelectPageID = "select-page"
)

// Move describes what a navigation intent changed
type Move int

const (
	MoveNone Move = iota // intent ignored
	MoveStep             // reveal cursor moved, same page
	MovePage             // page changed, slide must be rendered
)

// AppState is the presentation session: pagination, reveal and the
// rendered fragments, owned by the UI model.
type AppState struct {
	// Deck data
	Deck   domain.DeckInfo
	Loaded bool

	// Controllers
	Pages  *logic.Pagination
	Reveal *logic.Reveal

	// Rendered fragments
	Navigation  *markup.Fragment
	Slide       *markup.Fragment
	SlidePage   int
	PageOptions []domain.PageOption

	// Latest render generation issued per target
	Generations map[domain.Target]uint64

	// UI state
	SelectFirstWhenBacking bool
	SelectorIndex          int
	Engine                 string
	StatusMessage          string
	LastError              string
	ViewportHeight         int
	ViewportWidth          int
}

// NewAppState creates a new session
func NewAppState(selectFirstWhenBacking bool) *AppState {
	return &AppState{
		Pages:                  logic.NewPagination(),
		Reveal:                 logic.NewReveal(),
		Generations:            make(map[domain.Target]uint64),
		SelectFirstWhenBacking: selectFirstWhenBacking,
		ViewportHeight:         20,
	}
}

// Render bookkeeping

// NextGeneration returns the generation for a new render of target
func (s *AppState) NextGeneration(target domain.Target) uint64 {
	s.Generations[target]++
	return s.Generations[target]
}

// IsLatest reports whether gen is the last render issued for target
func (s *AppState) IsLatest(target domain.Target, gen uint64) bool {
	return s.Generations[target] == gen
}

// Navigation intents. Reveal gets the first say, pagination the rest.

// Advance handles a forward intent
func (s *AppState) Advance() Move {
	if !s.Reveal.Advance() {
		return MoveStep
	}
	return s.request(s.Pages.Current() + 1)
}

// Retreat handles a backward intent
func (s *AppState) Retreat() Move {
	if !s.Reveal.Retreat() {
		return MoveStep
	}
	return s.request(s.Pages.Current() - 1)
}

// Jump goes straight to page, skipping any remaining steps
func (s *AppState) Jump(page int) Move {
	if page < 1 || page > s.Pages.Total() {
		return MoveNone
	}
	s.Reveal.Disable()
	return s.request(page)
}

func (s *AppState) request(page int) Move {
	if !s.Pages.RequestPage(page) {
		return MoveNone
	}
	s.SelectorIndex = page
	s.setPageNumber(page)
	return MovePage
}

// Fragments

// AdoptNavigation installs a rendered paging fragment and sets the page
// count of the deck.
func (s *AppState) AdoptNavigation(f *markup.Fragment) {
	s.Navigation = f
	s.Pages.SetTotal(s.Deck.PageCount)
	s.PageOptions = pageOptions(f)
	s.setPageNumber(s.Pages.Current())
}

// AdoptSlide installs a rendered slide and seeds the reveal from it
func (s *AppState) AdoptSlide(page int, f *markup.Fragment) {
	s.Slide = f
	s.SlidePage = page

	nodes := markup.Steps(f)
	steps := make([]logic.Step, len(nodes))
	for i, n := range nodes {
		steps[i] = n
	}
	s.Reveal.Reset(steps, s.Pages.Backward(), s.SelectFirstWhenBacking)
}

func (s *AppState) setPageNumber(page int) {
	if s.Navigation == nil {
		return
	}
	if n := s.Navigation.ByID(PageNumberID); n != nil {
		markup.SetText(n, strconv.Itoa(page))
	}
}

// pageOptions reads the page selector. Option i leads to page i, so the
// first option is only ever a placeholder.
func pageOptions(f *markup.Fragment) []domain.PageOption {
	sel := f.ByID(SelectPageID)
	if sel == nil {
		return nil
	}
	var out []domain.PageOption
	for i, opt := range markup.FindByTag(sel, "option") {
		if i == 0 {
			continue
		}
		out = append(out, domain.PageOption{Page: i, Label: strings.TrimSpace(markup.Text(opt))})
	}
	return out
}
