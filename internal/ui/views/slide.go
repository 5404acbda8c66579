package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"deckview/internal/markup"
)

// StepSpan is the line range [Start, End] one incremental item occupies
type StepSpan struct {
	Start  int
	End    int
	Marker string
}

// Slide is a fragment laid out as terminal lines
type Slide struct {
	Lines []string
	Steps []StepSpan
}

// String joins the slide lines
func (s Slide) String() string {
	return strings.Join(s.Lines, "\n")
}

// ActiveStep returns the span of the active step
func (s Slide) ActiveStep() (StepSpan, bool) {
	for _, st := range s.Steps {
		if st.Marker == markup.ClassActive {
			return st, true
		}
	}
	return StepSpan{}, false
}

// ScrollOffset returns the first visible line so that the active step
// fits in a viewport of height lines. Zero when it is already visible.
func (s Slide) ScrollOffset(height int) int {
	st, ok := s.ActiveStep()
	if !ok || height <= 0 || st.End < height {
		return 0
	}
	return st.End - height + 1
}

// SlideRenderer lays out HTML fragments as styled text
type SlideRenderer struct {
	styles *Styles
}

// NewSlideRenderer creates a slide renderer
func NewSlideRenderer(styles *Styles) *SlideRenderer {
	return &SlideRenderer{styles: styles}
}

// Render lays out f for the given width. Future incremental items keep
// their height but are left blank.
func (r *SlideRenderer) Render(f *markup.Fragment, width int) Slide {
	if f == nil {
		return Slide{}
	}
	if width < 10 {
		width = 10
	}
	l := &layout{styles: r.styles, width: width}
	l.walk(f.Root, lipgloss.NewStyle())
	l.flush()

	// drop trailing blank lines
	for len(l.lines) > 0 && l.lines[len(l.lines)-1] == "" {
		l.lines = l.lines[:len(l.lines)-1]
	}
	for _, st := range l.steps {
		if st.Marker != markup.ClassIncremental {
			continue
		}
		for i := st.Start; i <= st.End && i < len(l.lines); i++ {
			l.lines[i] = ""
		}
	}
	return Slide{Lines: l.lines, Steps: l.steps}
}

type word struct {
	text  string
	style lipgloss.Style
	space bool // preceded by whitespace
}

type listState struct {
	ordered bool
	n       int
}

type layout struct {
	styles *Styles
	width  int

	lines  []string
	words  []word
	space  bool
	indent int
	prefix string // printed before the first line of the next flush
	lists  []listState
	steps  []StepSpan
}

// block elements end the current line of inline content
var blocks = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "pre": true, "blockquote": true,
	"table": true, "tr": true, "dl": true, "dt": true, "dd": true, "hr": true, "br": true,
}

func (l *layout) walk(n *html.Node, st lipgloss.Style) {
	switch n.Type {
	case html.TextNode:
		l.text(n.Data, st)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			l.walk(c, st)
		}
		return
	}

	switch n.Data {
	case "script", "style", "head", "select", "option":
		return
	case "br":
		if len(l.words) == 0 {
			l.emit("")
		}
		l.flush()
		return
	case "hr":
		l.flush()
		l.emit(l.styles.Dim.Render(strings.Repeat("─", l.width-l.indent)))
		return
	case "img":
		if alt := markup.Attr(n, "alt"); alt != "" {
			l.text("[image: "+alt+"]", st.Faint(true))
		}
		return
	case "pre":
		l.flush()
		if l.prefix != "" {
			// a list item opening with a code block keeps its bullet
			l.emit(l.prefix)
			l.prefix = ""
		}
		l.pre(n, st)
		l.gap()
		return
	case "li":
		l.item(n, st)
		return
	case "ul", "ol":
		l.flush()
		l.lists = append(l.lists, listState{ordered: n.Data == "ol"})
		l.children(n, st)
		l.lists = l.lists[:len(l.lists)-1]
		if len(l.lists) == 0 {
			l.gap()
		}
		return
	}

	if blocks[n.Data] {
		l.flush()
	}
	switch n.Data {
	case "h1":
		st = st.Inherit(l.styles.Heading)
	case "h2", "h3", "h4", "h5", "h6":
		st = st.Inherit(l.styles.Subheading)
	case "em", "i", "cite":
		st = st.Italic(true)
	case "strong", "b":
		st = st.Bold(true)
	case "code", "tt", "kbd":
		st = st.Inherit(l.styles.Code)
	case "a":
		st = st.Inherit(l.styles.Link)
	case "u", "ins":
		st = st.Underline(true)
	case "s", "del", "strike":
		st = st.Strikethrough(true)
	case "td", "th":
		l.space = true
	}
	l.children(n, st)

	if blocks[n.Data] {
		l.flush()
		switch n.Data {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "table", "dl":
			l.gap()
		}
	}
}

func (l *layout) children(n *html.Node, st lipgloss.Style) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		l.walk(c, st)
	}
}

// item lays out a list item, recording its lines when it is an
// incremental step
func (l *layout) item(n *html.Node, st lipgloss.Style) {
	l.flush()

	bullet := "• "
	if len(l.lists) > 0 {
		top := &l.lists[len(l.lists)-1]
		top.n++
		if top.ordered {
			bullet = strconv.Itoa(top.n) + ". "
		}
	}

	marker := markup.Marker(n)
	span := -1
	if marker != "" {
		span = len(l.steps)
		l.steps = append(l.steps, StepSpan{Start: len(l.lines), Marker: marker})
		if marker == markup.ClassActive {
			st = st.Inherit(l.styles.StepActive)
		}
	}

	depth := len(l.lists) - 1
	if depth < 0 {
		depth = 0
	}
	saved := l.indent
	l.indent = depth*2 + lipgloss.Width(bullet)
	l.prefix = strings.Repeat(" ", depth*2) + l.styles.Bullet.Render(bullet)

	l.children(n, st)
	l.flush()
	l.prefix = ""
	l.indent = saved

	if span >= 0 {
		end := len(l.lines) - 1
		if end < l.steps[span].Start {
			l.emit("")
			end = l.steps[span].Start
		}
		l.steps[span].End = end
	}
}

func (l *layout) pre(n *html.Node, st lipgloss.Style) {
	text := strings.TrimRight(markup.Text(n), "\n")
	code := st.Inherit(l.styles.Code)
	pad := strings.Repeat(" ", l.indent+2)
	for _, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		l.lines = append(l.lines, pad+code.Render(line))
	}
}

// text splits s into words, collapsing whitespace like HTML does
func (l *layout) text(s string, st lipgloss.Style) {
	if s == "" {
		return
	}
	if strings.TrimSpace(s) == "" {
		l.space = true
		return
	}
	if isSpace(s[0]) {
		l.space = true
	}
	fields := strings.Fields(s)
	for i, f := range fields {
		l.words = append(l.words, word{text: f, style: st, space: l.space || i > 0})
		l.space = false
	}
	if isSpace(s[len(s)-1]) {
		l.space = true
	}
}

// flush wraps the pending words into lines
func (l *layout) flush() {
	defer func() {
		l.words = nil
		l.space = false
	}()
	if len(l.words) == 0 {
		return
	}

	avail := l.width - l.indent
	if avail < 1 {
		avail = 1
	}
	first := true
	var line strings.Builder
	used := 0
	emitLine := func() {
		lead := strings.Repeat(" ", l.indent)
		if first && l.prefix != "" {
			lead = l.prefix
			l.prefix = ""
		}
		first = false
		l.emit(lead + line.String())
		line.Reset()
		used = 0
	}

	for _, w := range l.words {
		ww := lipgloss.Width(w.text)
		sep := 0
		if used > 0 && w.space {
			sep = 1
		}
		if used > 0 && used+sep+ww > avail {
			emitLine()
			sep = 0
		}
		if sep == 1 {
			line.WriteString(" ")
		}
		line.WriteString(w.style.Render(w.text))
		used += sep + ww
	}
	if used > 0 {
		emitLine()
	}
}

func (l *layout) emit(s string) {
	l.lines = append(l.lines, s)
}

// gap separates blocks with one blank line
func (l *layout) gap() {
	if len(l.lines) > 0 && l.lines[len(l.lines)-1] != "" {
		l.lines = append(l.lines, "")
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
