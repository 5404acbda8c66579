package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"deckview/internal/config"
	"deckview/internal/domain"
	"deckview/internal/eventbus"
	"deckview/internal/markup"
	"deckview/internal/source"
	"deckview/internal/ui/input"
	inputtypes "deckview/internal/ui/input/types"
	"deckview/internal/ui/state"
	"deckview/internal/ui/views"
)

const statusTimeout = 3 * time.Second

// DeckProvider gives access to the loaded deck document
type DeckProvider interface {
	Deck() *source.Deck
}

// Options carries the collaborators of the UI model
type Options struct {
	Engine string       // name of the selected transform engine
	Decks  DeckProvider // raw document for the pager, may be nil
	Log    *zap.Logger
}

// Model is the presenter UI
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	state  *state.AppState
	decks  DeckProvider
	log    *zap.Logger

	// UI-specific state not in AppState
	width       int
	height      int
	layout      views.Layout
	slide       views.Slide
	sidebar     string
	viewport    viewport.Model
	inPagerMode bool

	renderer     *views.Renderer
	inputHandler *input.Handler
	pager        *PagerOps

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(bus eventbus.EventBus, cfg *config.Config, opts Options) *Model {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	appState := state.NewAppState(cfg.UISettings.SelectFirstIncrementWhenBacking)
	appState.Engine = opts.Engine

	return &Model{
		bus:          bus,
		config:       cfg,
		state:        appState,
		decks:        opts.Decks,
		log:          opts.Log.Named("ui"),
		viewport:     viewport.New(0, 0),
		renderer:     views.NewRenderer(),
		inputHandler: input.New(),
		pager:        NewPagerOps(),
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager.SetProgram(p)
}

// State exposes the session, used by tests
func (m *Model) State() *state.AppState {
	return m.state
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout()
		return m, nil

	case tea.KeyMsg:
		ctx := &input.ModelContext{State: m.state}
		actions, cmd := m.inputHandler.HandleKey(msg, ctx)
		cmds := []tea.Cmd{cmd}
		for _, action := range actions {
			cmds = append(cmds, m.processAction(action))
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}

	return m.handleNonKeyboardMsg(msg)
}

// handleMouse advances on a left click inside the slide. Clicks on the
// sidebar, where the page selector lives, are ignored.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if m.inputHandler.CurrentMode() != inputtypes.ModeNormal || !m.state.Loaded {
		return nil
	}
	if msg.X < m.layout.SidebarWidth || msg.Y >= m.height-1 {
		return nil
	}
	return m.processAction(inputtypes.NavigateAction{Direction: inputtypes.DirectionNext})
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case pagerExitMsg:
		if msg.err != nil {
			m.log.Warn("Pager failed", zap.String("what", msg.what), zap.Error(msg.err))
			return m, m.setStatus(fmt.Sprintf("Unable to show %s", msg.what))
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, nil

	case clearStatusMsg:
		m.state.StatusMessage = ""
		return m, nil

	default:
		return m, m.inputHandler.Update(msg)
	}
}

func (m *Model) handleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.DeckLoadedEvent:
		// the selector lists the old deck's pages until navigation is rendered again
		m.inputHandler.Reset()
		m.state.Deck = e.Deck
		m.state.Loaded = true
		m.state.LastError = ""
		m.requestRender(domain.TargetNavigation, 0)

	case eventbus.RenderCompletedEvent:
		if !m.state.IsLatest(e.Target, e.Generation) {
			m.log.Debug("Dropping stale render",
				zap.String("target", string(e.Target)), zap.Uint64("generation", e.Generation))
			return nil
		}
		frag, err := markup.Parse(e.Markup)
		if err != nil {
			m.state.LastError = fmt.Sprintf("transform: %v", err)
			return nil
		}
		switch e.Target {
		case domain.TargetNavigation:
			m.state.AdoptNavigation(frag)
			m.renderSidebar()
			m.requestRender(domain.TargetMain, m.state.Pages.Current())
		case domain.TargetMain:
			m.state.AdoptSlide(e.Page, frag)
			m.state.LastError = ""
			m.renderSlide()
		}

	case eventbus.ConfigLoadedEvent:
		m.config.UISettings.Sidebar = e.Display.Sidebar
		m.config.UISettings.FontScaling = e.Display.FontScaling
		m.config.UISettings.SelectFirstIncrementWhenBacking = e.Display.SelectFirstWhenBacking
		m.state.SelectFirstWhenBacking = e.Display.SelectFirstWhenBacking
		if m.width > 0 {
			m.relayout()
		}
		if e.Path != "" {
			return m.setStatus("Configuration reloaded from " + e.Path)
		}

	case eventbus.ErrorEvent:
		m.state.LastError = e.Message
		if e.Err != nil {
			m.state.LastError = fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
	}
	return nil
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	if action == nil {
		return nil
	}
	m.log.Debug("processAction", zap.String("action", action.Type()))

	switch a := action.(type) {
	case inputtypes.NavigateAction:
		from := m.state.Pages.Current()
		var move state.Move
		switch a.Direction {
		case inputtypes.DirectionNext:
			move = m.state.Advance()
		case inputtypes.DirectionPrevious:
			move = m.state.Retreat()
		case inputtypes.DirectionFirst:
			move = m.state.Jump(1)
		case inputtypes.DirectionLast:
			move = m.state.Jump(m.state.Pages.Total())
		}
		m.applyMove(move, from)

	case inputtypes.JumpAction:
		from := m.state.Pages.Current()
		m.applyMove(m.state.Jump(a.Page), from)

	case inputtypes.UpdateSelectorAction:
		m.state.SelectorIndex = a.Index + 1

	case inputtypes.OpenHelpAction:
		return m.showInPager("help", strings.NewReader(RenderHelpContent()))

	case inputtypes.OpenRawAction:
		if m.decks == nil || m.decks.Deck() == nil {
			return m.setStatus("No deck loaded")
		}
		deck := m.decks.Deck()
		return m.showInPager("deck", bytes.NewReader(deck.Raw))

	case inputtypes.ReloadAction:
		m.bus.Publish(eventbus.DeckLoadRequestedEvent{Ref: m.deckRef()})
		return m.setStatus("Reloading...")

	case inputtypes.QuitAction:
		return tea.Quit
	}
	return nil
}

func (m *Model) applyMove(move state.Move, from int) {
	switch move {
	case state.MoveStep:
		m.renderSlide()
	case state.MovePage:
		m.renderSidebar()
		to := m.state.Pages.Current()
		m.requestRender(domain.TargetMain, to)
		m.bus.Publish(eventbus.PageChangedEvent{From: from, To: to})
	}
}

func (m *Model) requestRender(target domain.Target, page int) {
	m.bus.Publish(eventbus.RenderRequestedEvent{
		Target:     target,
		Page:       page,
		Generation: m.state.NextGeneration(target),
	})
}

func (m *Model) deckRef() string {
	if m.state.Deck.Ref != "" {
		return m.state.Deck.Ref
	}
	return m.config.Deck.Source
}

func (m *Model) setStatus(msg string) tea.Cmd {
	m.state.StatusMessage = msg
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// showInPager returns a command that hands the terminal to ov
func (m *Model) showInPager(what string, r io.Reader) tea.Cmd {
	if m.program == nil {
		return m.setStatus("Pager unavailable")
	}
	return func() tea.Msg {
		m.program.Send(pauseRenderingMsg{})
		err := m.pager.Show(r, what)
		m.program.Send(resumeRenderingMsg{})
		return pagerExitMsg{what: what, err: err}
	}
}

// relayout recomputes the layout after a resize
func (m *Model) relayout() {
	m.layout = views.ComputeLayout(m.width, m.height, m.config.UISettings.Sidebar, m.config.UISettings.FontScaling)
	m.viewport.Width = m.layout.MainWidth
	m.viewport.Height = m.layout.MainHeight
	m.state.ViewportWidth = m.layout.MainWidth
	m.state.ViewportHeight = m.layout.MainHeight
	m.renderSidebar()
	m.renderSlide()
}

// renderSlide lays the slide out again and scrolls the active step into view
func (m *Model) renderSlide() {
	if m.state.Slide == nil || m.width == 0 {
		return
	}
	m.slide = m.renderer.Slides().Render(m.state.Slide, m.layout.MainWidth)
	m.viewport.SetContent(m.slide.String())
	m.viewport.SetYOffset(m.slide.ScrollOffset(m.viewport.Height))
}

func (m *Model) renderSidebar() {
	if m.state.Navigation == nil || m.layout.SidebarWidth == 0 {
		m.sidebar = ""
		return
	}
	m.sidebar = m.renderer.Slides().Render(m.state.Navigation, m.layout.SidebarContentWidth()).String()
}

// View renders the UI
func (m *Model) View() string {
	if m.inPagerMode {
		return ""
	}

	vs := views.ViewState{
		Width:     m.width,
		Height:    m.height,
		Layout:    m.layout,
		DeckTitle: m.state.Deck.Title,
		DeckRef:   m.deckRef(),
		DeckSize:  m.state.Deck.Size,
		Loaded:    m.state.Loaded && m.state.Slide != nil,
		Page:      m.state.Pages.Current(),
		Total:     m.state.Pages.Total(),
		Engine:    m.state.Engine,
		Status:    m.state.StatusMessage,
		Error:     m.state.LastError,
		Sidebar:   m.sidebar,
		Main:      m.viewport.View(),
	}
	if r := m.state.Reveal; r.Active() {
		vs.Step = r.Cursor() + 1
		vs.Steps = r.Len()
	}
	if m.inputHandler.CurrentMode() == inputtypes.ModeSelector {
		vs.Selector = &views.SelectorView{
			Options: m.state.PageOptions,
			Index:   m.state.SelectorIndex - 1,
			Typed:   m.inputHandler.Typed(),
			Current: m.state.Pages.Current(),
		}
	}
	return m.renderer.Render(vs)
}
