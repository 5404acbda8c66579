package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width  int
	Height int
	Layout Layout

	DeckTitle string
	DeckRef   string
	DeckSize  int64
	Loaded    bool

	Page  int
	Total int
	Step  int // 1-based active step, 0 when the slide has none left
	Steps int

	Engine string
	Status string
	Error  string

	Sidebar  string // rendered navigation fragment
	Main     string // slide viewport content
	Selector *SelectorView
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	slides      *SlideRenderer
	popupRender *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:      styles,
		slides:      NewSlideRenderer(styles),
		popupRender: NewPopupRenderer(styles),
	}
}

// Slides returns the fragment layout engine
func (r *Renderer) Slides() *SlideRenderer { return r.slides }

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	if state.Width == 0 {
		return "Loading..."
	}
	l := state.Layout
	bodyHeight := state.Height - statusHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var main string
	switch {
	case state.Selector != nil:
		popup := r.popupRender.RenderSelector(*state.Selector, state.Width-l.SidebarWidth, bodyHeight)
		main = lipgloss.Place(state.Width-l.SidebarWidth, bodyHeight, lipgloss.Center, lipgloss.Center, popup)
	case !state.Loaded:
		msg := r.styles.Dim.Render("Loading deck...")
		if state.Error != "" {
			msg = r.styles.StatusError.Render("Unable to show the deck. Press ctrl+r to retry, q to quit.")
		}
		main = lipgloss.Place(state.Width-l.SidebarWidth, bodyHeight, lipgloss.Center, lipgloss.Center, msg)
	default:
		main = lipgloss.NewStyle().
			Padding(l.PadV, l.PadH).
			Width(state.Width - l.SidebarWidth).
			Height(bodyHeight).
			MaxHeight(bodyHeight).
			Render(state.Main)
	}

	body := main
	if l.SidebarWidth > 0 {
		sidebar := r.styles.Sidebar.
			Width(l.SidebarWidth - 1). // border is outside the width
			Height(bodyHeight).
			MaxHeight(bodyHeight).
			Render(r.sidebarContent(state))
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	}

	return body + "\n" + r.renderStatus(state)
}

func (r *Renderer) sidebarContent(state ViewState) string {
	var b strings.Builder
	if state.Sidebar != "" {
		b.WriteString(state.Sidebar)
		b.WriteString("\n\n")
	}
	b.WriteString(r.styles.Help.Render("s: go to page  ?: help"))
	return b.String()
}

// renderStatus renders the single line status bar
func (r *Renderer) renderStatus(state ViewState) string {
	var left []string
	name := state.DeckTitle
	if name == "" {
		name = state.DeckRef
	}
	if name != "" {
		left = append(left, r.styles.Title.Render(name))
	}
	if state.Loaded {
		left = append(left, r.styles.StatusPage.Render(fmt.Sprintf("page %d / %d", state.Page, state.Total)))
		if state.Step > 0 {
			left = append(left, fmt.Sprintf("step %d / %d", state.Step, state.Steps))
		}
	}
	if state.Engine != "" {
		left = append(left, r.styles.StatusEngine.Render(state.Engine))
	}
	if state.DeckSize > 0 {
		left = append(left, humanize.Bytes(uint64(state.DeckSize)))
	}
	if state.Status != "" {
		left = append(left, state.Status)
	}
	line := strings.Join(left, r.styles.Status.Render(" │ "))

	if state.Error != "" {
		errText := r.styles.StatusError.Render(state.Error)
		gap := state.Width - lipgloss.Width(line) - lipgloss.Width(errText)
		if gap < 2 {
			gap = 2
		}
		line += strings.Repeat(" ", gap) + errText
	}
	return truncateANSI(line, state.Width)
}

// truncateANSI cuts a styled line to width visible cells
func truncateANSI(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
