package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title        lipgloss.Style
	Heading      lipgloss.Style
	Subheading   lipgloss.Style
	Dim          lipgloss.Style
	Code         lipgloss.Style
	Link         lipgloss.Style
	Bullet       lipgloss.Style
	StepActive   lipgloss.Style
	Sidebar      lipgloss.Style
	Main         lipgloss.Style
	Status       lipgloss.Style
	StatusPage   lipgloss.Style
	StatusError  lipgloss.Style
	StatusEngine lipgloss.Style
	Popup        lipgloss.Style
	PopupTitle   lipgloss.Style
	SelectionBg  lipgloss.Style
	Help         lipgloss.Style
	Scroll       lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Heading:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Subheading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Dim:        lipgloss.NewStyle().Faint(true),
		Code:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Link:       lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("33")),
		Bullet:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StepActive: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226")),
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		Main:         lipgloss.NewStyle(),
		Status:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusPage:   lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		StatusError:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusEngine: lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
		Popup: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.Color("241")),
		PopupTitle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		SelectionBg: lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Help:        lipgloss.NewStyle().Faint(true),
		Scroll:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	}
}
