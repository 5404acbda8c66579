package ui

import (
	"errors"
	"regexp"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckview/internal/config"
	"deckview/internal/domain"
	"deckview/internal/eventbus"
	"deckview/internal/markup"
	inputtypes "deckview/internal/ui/input/types"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// recordingBus keeps published events instead of dispatching them
type recordingBus struct {
	mu     sync.Mutex
	events []eventbus.DomainEvent
}

func (b *recordingBus) Publish(e eventbus.DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) Subscribe(eventbus.EventType, eventbus.EventHandler) func() {
	return func() {}
}

func (b *recordingBus) Close() {}

// renders returns and forgets the render requests published so far
func (b *recordingBus) renders() []eventbus.RenderRequestedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []eventbus.RenderRequestedEvent
	rest := b.events[:0]
	for _, e := range b.events {
		if r, ok := e.(eventbus.RenderRequestedEvent); ok {
			out = append(out, r)
			continue
		}
		rest = append(rest, e)
	}
	b.events = rest
	return out
}

func (b *recordingBus) last() eventbus.DomainEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	return b.events[len(b.events)-1]
}

const navMarkup = `<div class="paging"><h1>Deck</h1><p>Page <span id="page-number">1</span> of 3</p>
<select id="select-page"><option value="">Go to page</option>
<option value="1">1. One</option><option value="2">2. Two</option><option value="3">3. Three</option></select></div>`

var slides = map[int]string{
	1: `<h1>One</h1><p>first</p>`,
	2: `<h1>Two</h1><ul><li class="incremental">alpha</li><li class="incremental">beta</li></ul>`,
	3: `<h1>Three</h1><p>last</p>`,
}

type harness struct {
	t   *testing.T
	bus *recordingBus
	m   *Model
}

func newHarness(t *testing.T) *harness {
	cfg := config.DefaultConfig()
	bus := &recordingBus{}
	m := NewModel(bus, cfg, Options{Engine: "builtin"})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return &harness{t: t, bus: bus, m: m}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.m.Update(msg)
	return cmd
}

// serve answers every pending render request like the transform service
func (h *harness) serve() {
	for _, r := range h.bus.renders() {
		body := navMarkup
		if r.Target == domain.TargetMain {
			body = slides[r.Page]
		}
		h.send(EventMsg{Event: eventbus.RenderCompletedEvent{
			Target: r.Target, Page: r.Page, Generation: r.Generation, Markup: body,
		}})
	}
}

func (h *harness) load() {
	h.send(EventMsg{Event: eventbus.DeckLoadedEvent{Deck: domain.DeckInfo{Ref: "deck.xml", Title: "Deck", PageCount: 3, Size: 2048}}})
	h.serve() // navigation, which requests the first slide
	h.serve()
}

func (h *harness) key(s string) {
	var msg tea.KeyMsg
	switch s {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	h.send(msg)
	h.serve()
}

func (h *harness) view() string {
	return ansiRe.ReplaceAllString(h.m.View(), "")
}

func TestModelLoadsDeck(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.view(), "Loading deck...")

	h.load()
	s := h.m.State()
	assert.True(t, s.Loaded)
	assert.Equal(t, 3, s.Pages.Total())
	assert.Equal(t, 1, s.SlidePage)

	v := h.view()
	assert.Contains(t, v, "first")
	assert.Contains(t, v, "page 1 / 3")
	assert.Contains(t, v, "builtin")
	assert.Contains(t, v, "2.0 kB")
}

func TestModelWalksStepsBeforePages(t *testing.T) {
	h := newHarness(t)
	h.load()
	s := h.m.State()

	h.key("right")
	require.Equal(t, 2, s.SlidePage)
	assert.Equal(t, 0, s.Reveal.Cursor())
	assert.Contains(t, h.view(), "step 1 / 2")
	assert.NotContains(t, h.view(), "beta")

	h.key("right")
	assert.Equal(t, 2, s.Pages.Current())
	assert.Contains(t, h.view(), "beta")

	h.key("right")
	assert.Equal(t, 3, s.SlidePage)

	// entering backwards starts on the first step by default
	h.key("left")
	assert.Equal(t, 2, s.SlidePage)
	assert.Equal(t, 0, s.Reveal.Cursor())

	h.key("left")
	assert.Equal(t, 1, s.SlidePage)
	h.key("left")
	assert.Equal(t, 1, s.Pages.Current())

	changed, ok := h.bus.last().(eventbus.PageChangedEvent)
	require.True(t, ok)
	assert.Equal(t, eventbus.PageChangedEvent{From: 2, To: 1}, changed)
}

func TestModelStartsAtLastStepWhenConfigured(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.UISettings.SelectFirstIncrementWhenBacking = false
	bus := &recordingBus{}
	h := &harness{t: t, bus: bus, m: NewModel(bus, cfg, Options{})}
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	h.load()

	h.key("G")
	h.key("left")
	assert.Equal(t, 2, h.m.State().SlidePage)
	assert.Equal(t, 1, h.m.State().Reveal.Cursor())
}

func TestModelSelectorJumps(t *testing.T) {
	h := newHarness(t)
	h.load()

	h.key("s")
	assert.Contains(t, h.view(), "Go to page")
	h.key("j")
	h.key("j")
	h.key("enter")

	s := h.m.State()
	assert.Equal(t, 3, s.SlidePage)
	assert.Equal(t, "3", markup.Text(s.Navigation.ByID("page-number")))
	assert.NotContains(t, h.view(), "Go to page")

	h.key("s")
	h.key("2")
	h.key("enter")
	assert.Equal(t, 2, s.SlidePage)

	// out of range requests are ignored
	h.key("s")
	h.key("9")
	h.key("enter")
	assert.Equal(t, 2, s.Pages.Current())
}

func TestModelJumpSkipsSteps(t *testing.T) {
	h := newHarness(t)
	h.load()
	h.key("right")
	require.True(t, h.m.State().Reveal.Active())

	h.key("G")
	assert.Equal(t, 3, h.m.State().SlidePage)
	h.key("g")
	assert.Equal(t, 1, h.m.State().SlidePage)
}

func TestModelDropsStaleRenders(t *testing.T) {
	h := newHarness(t)
	h.load()

	// two presses before the first slide arrives
	h.send(tea.KeyMsg{Type: tea.KeyRight})
	h.send(tea.KeyMsg{Type: tea.KeyRight})
	reqs := h.bus.renders()
	require.Len(t, reqs, 2)
	assert.Equal(t, []int{2, 3}, []int{reqs[0].Page, reqs[1].Page})
	assert.Less(t, reqs[0].Generation, reqs[1].Generation)

	h.send(EventMsg{Event: eventbus.RenderCompletedEvent{
		Target: domain.TargetMain, Page: 2, Generation: reqs[0].Generation, Markup: slides[2],
	}})
	assert.Equal(t, 1, h.m.State().SlidePage)

	h.send(EventMsg{Event: eventbus.RenderCompletedEvent{
		Target: domain.TargetMain, Page: 3, Generation: reqs[1].Generation, Markup: slides[3],
	}})
	assert.Equal(t, 3, h.m.State().SlidePage)
}

func TestModelMouseClickAdvances(t *testing.T) {
	h := newHarness(t)
	h.load()
	sidebar := h.m.layout.SidebarWidth
	require.Positive(t, sidebar)

	h.send(tea.MouseMsg{X: sidebar - 1, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.serve()
	assert.Equal(t, 1, h.m.State().Pages.Current())

	h.send(tea.MouseMsg{X: sidebar + 5, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	h.serve()
	assert.Equal(t, 1, h.m.State().Pages.Current())

	h.send(tea.MouseMsg{X: sidebar + 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.serve()
	assert.Equal(t, 2, h.m.State().Pages.Current())
}

func TestModelShowsErrors(t *testing.T) {
	h := newHarness(t)
	h.send(EventMsg{Event: eventbus.ErrorEvent{Op: "load", Message: "unable to load deck", Err: errors.New("boom")}})

	v := h.view()
	assert.Contains(t, v, "Unable to show the deck")
	assert.Contains(t, v, "unable to load deck: boom")
}

func TestModelReloadKeepsPage(t *testing.T) {
	h := newHarness(t)
	h.load()
	h.key("G")

	h.send(tea.KeyMsg{Type: tea.KeyCtrlR})
	req, ok := h.bus.last().(eventbus.DeckLoadRequestedEvent)
	require.True(t, ok)
	assert.Equal(t, "deck.xml", req.Ref)

	h.load()
	assert.Equal(t, 3, h.m.State().SlidePage)
}

func TestModelAppliesReloadedConfig(t *testing.T) {
	h := newHarness(t)
	h.load()
	require.Positive(t, h.m.layout.SidebarWidth)

	h.send(EventMsg{Event: eventbus.ConfigLoadedEvent{
		Path:    "/d/.deckview.toml",
		Display: domain.DisplaySettings{Sidebar: false, FontScaling: true, SelectFirstWhenBacking: false},
	}})

	assert.Zero(t, h.m.layout.SidebarWidth)
	assert.False(t, h.m.State().SelectFirstWhenBacking)
	assert.Contains(t, h.view(), "Configuration reloaded from /d/.deckview.toml")

	// entering a slide backwards now starts on its last step
	h.key("G")
	h.key("left")
	assert.Equal(t, 2, h.m.State().SlidePage)
	assert.Equal(t, 1, h.m.State().Reveal.Cursor())
}

func TestModelReloadClosesSelector(t *testing.T) {
	h := newHarness(t)
	h.load()

	h.key("s")
	require.Equal(t, inputtypes.ModeSelector, h.m.inputHandler.CurrentMode())

	h.load()
	assert.Equal(t, inputtypes.ModeNormal, h.m.inputHandler.CurrentMode())
	assert.NotContains(t, h.view(), "Go to page")
}

func TestModelQuit(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.True(t, quits(cmd()))
}

// quits reports whether msg, possibly batched, asks the program to quit
func quits(msg tea.Msg) bool {
	switch m := msg.(type) {
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		for _, c := range m {
			if c != nil && quits(c()) {
				return true
			}
		}
	}
	return false
}

func TestHelpContentListsKeys(t *testing.T) {
	help := ansiRe.ReplaceAllString(RenderHelpContent(), "")
	assert.Contains(t, help, "Next step or slide")
	assert.Contains(t, help, "Open the page selector")
	assert.Contains(t, help, "Ctrl+R")
}
