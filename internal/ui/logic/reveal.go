package logic

import "deckview/internal/markup"

// Step is one incremental item of the rendered slide
type Step interface {
	SetMarker(class string)
}

// Reveal walks the incremental items of the current slide one at a time
// before letting navigation move to another page.
type Reveal struct {
	steps  []Step
	cursor int
	active bool
}

// NewReveal returns an inactive reveal
func NewReveal() *Reveal {
	return &Reveal{}
}

// Reset adopts the steps of a freshly rendered slide. Entering a slide
// backwards starts on the last step unless selectFirstWhenBacking is set.
func (r *Reveal) Reset(steps []Step, backward, selectFirstWhenBacking bool) {
	r.steps = steps
	r.active = len(steps) > 0
	r.cursor = 0
	if !r.active {
		return
	}
	if backward && !selectFirstWhenBacking {
		r.cursor = len(steps) - 1
	}
	r.classify()
}

// Advance reveals the next step. It returns true when the slide has no
// more steps and the caller should move to the next page instead.
func (r *Reveal) Advance() bool {
	if !r.active {
		return true
	}
	if r.cursor+1 >= len(r.steps) {
		r.active = false
		return true
	}
	r.cursor++
	r.classify()
	return false
}

// Retreat hides the active step. It returns true when the first step was
// already active and the caller should move to the previous page instead.
func (r *Reveal) Retreat() bool {
	if !r.active {
		return true
	}
	if r.cursor-1 < 0 {
		r.active = false
		return true
	}
	r.cursor--
	r.classify()
	return false
}

// Disable drops the reveal state, used before direct page jumps
func (r *Reveal) Disable() {
	r.active = false
}

func (r *Reveal) Active() bool { return r.active }
func (r *Reveal) Cursor() int  { return r.cursor }
func (r *Reveal) Len() int     { return len(r.steps) }

func (r *Reveal) classify() {
	for i, s := range r.steps {
		s.SetMarker(Classify(i, r.cursor))
	}
}

// Classify returns the marker class of step i when step cursor is active
func Classify(i, cursor int) string {
	switch {
	case i < cursor:
		return markup.ClassPast
	case i == cursor:
		return markup.ClassActive
	default:
		return markup.ClassIncremental
	}
}
