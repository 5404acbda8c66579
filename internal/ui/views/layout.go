package views

// Layout is the split of the terminal between sidebar, slide and status bar
type Layout struct {
	SidebarWidth int // outer width, 0 when hidden
	MainWidth    int // slide text width
	MainHeight   int // slide viewport height
	PadV         int
	PadH         int
}

const (
	statusHeight    = 1
	sidebarMin      = 20
	sidebarMax      = 36
	sidebarMinTerm  = 60
	sidebarChrome   = 3 // right border plus horizontal padding
	scalingDivisorV = 40
	scalingDivisorH = 20
)

// ComputeLayout splits a width x height terminal. With scaling on, slide
// margins grow with the window.
func ComputeLayout(width, height int, sidebar, scaling bool) Layout {
	var l Layout
	if sidebar && width >= sidebarMinTerm {
		l.SidebarWidth = width / 4
		if l.SidebarWidth < sidebarMin {
			l.SidebarWidth = sidebarMin
		}
		if l.SidebarWidth > sidebarMax {
			l.SidebarWidth = sidebarMax
		}
	}
	if scaling {
		l.PadV = height / scalingDivisorV
		l.PadH = width / scalingDivisorH
	}
	l.MainWidth = width - l.SidebarWidth - 2*l.PadH
	if l.MainWidth < 1 {
		l.MainWidth = 1
	}
	l.MainHeight = height - statusHeight - 2*l.PadV
	if l.MainHeight < 1 {
		l.MainHeight = 1
	}
	return l
}

// SidebarContentWidth is the text width inside the sidebar chrome
func (l Layout) SidebarContentWidth() int {
	if l.SidebarWidth == 0 {
		return 0
	}
	return l.SidebarWidth - sidebarChrome
}
