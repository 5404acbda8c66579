package domain

// Target identifies a render container
type Target string

const (
	// TargetNavigation receives the paging UI
	TargetNavigation Target = "navigation"
	// TargetMain receives the current slide
	TargetMain Target = "main-content"
)

// DeckInfo is the part of a loaded deck the UI cares about
type DeckInfo struct {
	Ref       string
	Title     string
	PageCount int
	Size      int64
}

// PageOption is one entry of the page selector
type PageOption struct {
	Page  int
	Label string
}

// DisplaySettings are the configuration values the UI applies without a
// restart
type DisplaySettings struct {
	Sidebar                bool
	FontScaling            bool
	SelectFirstWhenBacking bool
}
