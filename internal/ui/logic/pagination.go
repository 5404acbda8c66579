package logic

// Pagination tracks the current slide of the deck. Pages are 1-based.
type Pagination struct {
	current  int
	previous int
	total    int
}

// NewPagination starts on page 1 of a one page deck until SetTotal is called
func NewPagination() *Pagination {
	return &Pagination{current: 1, previous: 1, total: 1}
}

// SetTotal records the page count of the loaded deck
func (p *Pagination) SetTotal(n int) {
	if n < 1 {
		n = 1
	}
	p.total = n
	if p.current > n {
		p.current = n
	}
	if p.previous > n {
		p.previous = n
	}
}

// RequestPage moves to target. Targets outside [1, Total] are ignored and
// leave the state untouched.
func (p *Pagination) RequestPage(target int) bool {
	if target < 1 || target > p.total {
		return false
	}
	p.previous = p.current
	p.current = target
	return true
}

// Next requests the page after the current one
func (p *Pagination) Next() bool { return p.RequestPage(p.current + 1) }

// Previous requests the page before the current one
func (p *Pagination) Previous() bool { return p.RequestPage(p.current - 1) }

// Backward reports whether the last move went to a lower page
func (p *Pagination) Backward() bool { return p.previous > p.current }

func (p *Pagination) Current() int     { return p.current }
func (p *Pagination) PreviousPage() int { return p.previous }
func (p *Pagination) Total() int       { return p.total }
