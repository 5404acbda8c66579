package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"deckview/internal/domain"
)

// SelectorView is the page selector popup state
type SelectorView struct {
	Options []domain.PageOption
	Index   int
	Typed   string
	Current int
}

// PopupRenderer handles popup rendering
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderSelector renders the page list, scrolled so the highlighted
// option is visible within maxHeight lines.
func (pr *PopupRenderer) RenderSelector(sel SelectorView, maxWidth, maxHeight int) string {
	var b strings.Builder
	b.WriteString(pr.styles.PopupTitle.Render("Go to page"))
	b.WriteString("\n")
	if sel.Typed != "" {
		b.WriteString(fmt.Sprintf("Page: %s", sel.Typed))
	} else {
		b.WriteString(pr.styles.Dim.Render("type a number or pick below"))
	}
	b.WriteString("\n\n")

	// title, input, gap and the popup border
	visible := maxHeight - 5
	if visible < 1 {
		visible = 1
	}
	start := 0
	if sel.Index >= visible {
		start = sel.Index - visible + 1
	}
	end := start + visible
	if end > len(sel.Options) {
		end = len(sel.Options)
	}

	inner := maxWidth - 4
	if inner < 10 {
		inner = 10
	}
	for i := start; i < end; i++ {
		opt := sel.Options[i]
		label := opt.Label
		if label == "" {
			label = fmt.Sprintf("Page %d", opt.Page)
		}
		mark := "  "
		if opt.Page == sel.Current {
			mark = "> "
		}
		line := truncate(mark+label, inner)
		if i == sel.Index {
			line = pr.styles.SelectionBg.Render(line + strings.Repeat(" ", inner-lipgloss.Width(line)))
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return pr.styles.Popup.Render(b.String())
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
