package state

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckview/internal/domain"
	"deckview/internal/markup"
)

const paging = `<div class="paging"><span id="page-number">1</span>
<select id="select-page"><option value="">Go to page</option>
<option value="1">Intro</option><option value="2">Middle</option><option value="3">End</option>
<option value="4">Four</option><option value="5">Five</option></select></div>`

func fragment(t *testing.T, s string) *markup.Fragment {
	t.Helper()
	f, err := markup.Parse(s)
	require.NoError(t, err)
	return f
}

func slide(t *testing.T, steps int) *markup.Fragment {
	var b strings.Builder
	b.WriteString("<h1>slide</h1><ul>")
	for i := 0; i < steps; i++ {
		fmt.Fprintf(&b, `<li class="incremental">%d</li>`, i)
	}
	b.WriteString("</ul>")
	return fragment(t, b.String())
}

func loaded(t *testing.T, pages int, selectFirst bool) *AppState {
	s := NewAppState(selectFirst)
	s.Deck = domain.DeckInfo{Ref: "deck.xml", PageCount: pages}
	s.Loaded = true
	s.AdoptNavigation(fragment(t, paging))
	s.AdoptSlide(1, slide(t, 0))
	return s
}

func TestAdoptNavigationReadsSelector(t *testing.T) {
	s := loaded(t, 5, true)

	assert.Equal(t, 5, s.Pages.Total())
	require.Len(t, s.PageOptions, 5)
	assert.Equal(t, domain.PageOption{Page: 2, Label: "Middle"}, s.PageOptions[1])
}

func TestPagesWithoutStepsStopAtLast(t *testing.T) {
	s := loaded(t, 5, true)

	visited := []int{s.Pages.Current()}
	for i := 0; i < 6; i++ {
		if s.Advance() == MovePage {
			s.AdoptSlide(s.Pages.Current(), slide(t, 0))
			visited = append(visited, s.Pages.Current())
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, visited)
	assert.Equal(t, "5", markup.Text(s.Navigation.ByID(PageNumberID)))
	assert.Equal(t, 5, s.SelectorIndex)
}

func TestStepsBeforePages(t *testing.T) {
	s := loaded(t, 5, true)
	require.Equal(t, MovePage, s.Advance())
	s.AdoptSlide(2, slide(t, 3))

	assert.Equal(t, 0, s.Reveal.Cursor())
	assert.Equal(t, MoveStep, s.Advance())
	assert.Equal(t, 1, s.Reveal.Cursor())
	assert.Equal(t, MoveStep, s.Advance())
	assert.Equal(t, 2, s.Reveal.Cursor())
	assert.Equal(t, MovePage, s.Advance())
	assert.Equal(t, 3, s.Pages.Current())

	steps := markup.Steps(s.Slide)
	assert.Equal(t, markup.ClassPast, markup.Marker(steps[0].Node))
	assert.Equal(t, markup.ClassActive, markup.Marker(steps[2].Node))
}

func TestBackwardEntryStartsAtLastStep(t *testing.T) {
	s := loaded(t, 5, false)
	require.Equal(t, MovePage, s.Jump(3))
	s.AdoptSlide(3, slide(t, 0))

	require.Equal(t, MovePage, s.Retreat())
	s.AdoptSlide(2, slide(t, 4))
	assert.Equal(t, 3, s.Reveal.Cursor())

	// with the option on, backing into a slide starts at its first step
	s = loaded(t, 5, true)
	require.Equal(t, MovePage, s.Jump(3))
	require.Equal(t, MovePage, s.Retreat())
	s.AdoptSlide(2, slide(t, 4))
	assert.Equal(t, 0, s.Reveal.Cursor())
}

func TestRetreatOnFirstPageIsIgnored(t *testing.T) {
	s := loaded(t, 5, true)

	assert.Equal(t, MoveNone, s.Retreat())
	assert.Equal(t, 1, s.Pages.Current())
	assert.Equal(t, 1, s.Pages.PreviousPage())
}

func TestJumpSkipsRemainingSteps(t *testing.T) {
	s := loaded(t, 5, true)
	s.AdoptSlide(1, slide(t, 3))
	require.True(t, s.Reveal.Active())

	// out of range leaves the steps alone
	assert.Equal(t, MoveNone, s.Jump(9))
	assert.Equal(t, MoveNone, s.Jump(0))
	assert.True(t, s.Reveal.Active())
	assert.Equal(t, 1, s.Pages.Current())
	assert.Equal(t, MoveStep, s.Advance())
	assert.Equal(t, 1, s.Reveal.Cursor())

	assert.Equal(t, MovePage, s.Jump(4))
	assert.False(t, s.Reveal.Active())
	assert.Equal(t, 4, s.Pages.Current())
}

func TestGenerations(t *testing.T) {
	s := NewAppState(true)

	g1 := s.NextGeneration(domain.TargetMain)
	g2 := s.NextGeneration(domain.TargetMain)
	assert.False(t, s.IsLatest(domain.TargetMain, g1))
	assert.True(t, s.IsLatest(domain.TargetMain, g2))
	assert.True(t, s.IsLatest(domain.TargetNavigation, s.NextGeneration(domain.TargetNavigation)))
}
