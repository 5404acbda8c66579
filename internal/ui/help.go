package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Navigation", []helpEntry{
		{"→, l, Enter, Space, PgDn, n", "Next step or slide"},
		{"←, h, Backspace, PgUp, p", "Previous step or slide"},
		{"Home, g", "First slide"},
		{"End, G", "Last slide"},
		{"Click", "Next step or slide"},
	}},
	{"Page selector", []helpEntry{
		{"s, Tab", "Open the page selector"},
		{"↑/↓, j/k", "Move the highlight"},
		{"0-9", "Type a page number"},
		{"Enter", "Go to the page"},
		{"Esc", "Close the selector"},
	}},
	{"Other", []helpEntry{
		{"r", "Show the raw deck document"},
		{"Ctrl+R", "Reload the deck"},
		{"?", "Show this help"},
		{"q, Ctrl+C", "Quit"},
	}},
}

// RenderHelpContent generates help content with colors for the pager
func RenderHelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	keyWidth := 0
	for _, s := range helpSections {
		for _, e := range s.entries {
			if w := lipgloss.Width(e.keys); w > keyWidth {
				keyWidth = w
			}
		}
	}

	var help strings.Builder
	help.WriteString(titleStyle.Render("deckview help"))
	help.WriteString("\n")
	for i, s := range helpSections {
		help.WriteString(sectionStyle.Render(s.title))
		help.WriteString("\n")
		for _, e := range s.entries {
			pad := strings.Repeat(" ", keyWidth-lipgloss.Width(e.keys))
			help.WriteString(fmt.Sprintf("  %s%s  %s\n", keyStyle.Render(e.keys), pad, descStyle.Render(e.desc)))
		}
		if i < len(helpSections)-1 {
			help.WriteString("\n")
		}
	}
	return help.String()
}

// PagerOps shows documents in the ov pager while the TUI is suspended
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps() *PagerOps {
	return &PagerOps{}
}

// SetProgram sets the program reference for terminal management
func (p *PagerOps) SetProgram(program *tea.Program) {
	p.program = program
}

// Show hands the terminal to ov until the user quits it
func (p *PagerOps) Show(r io.Reader, caption string) error {
	if p.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// let ov finish with the screen before taking it back
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	return RunPager(r, caption)
}

// RunPager runs ov on r in the current terminal
func RunPager(r io.Reader, caption string) error {
	root, err := oviewer.NewRoot(r)
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)
	if caption != "" {
		root.Doc.Caption = caption
	}

	return root.Run()
}
