package projection

// Pager is the navigation state of a list view: the current page and the
// active filter. Moves outside [1, totalPages] are ignored.
type Pager struct {
	page   int
	filter string
}

// NewPager starts on page 1 with the identity filter.
func NewPager() *Pager {
	return &Pager{page: 1, filter: AllCategories}
}

// Page returns the current page.
func (p *Pager) Page() int { return p.page }

// Filter returns the active filter.
func (p *Pager) Filter() string { return p.filter }

// SetFilter changes the filter and goes back to page 1.
func (p *Pager) SetFilter(filter string) {
	if filter == "" {
		filter = AllCategories
	}
	p.filter = filter
	p.page = 1
}

// GoTo moves to page when it exists. It reports whether the page changed.
func (p *Pager) GoTo(page, totalPages int) bool {
	if page < 1 || page > totalPages || page == p.page {
		return false
	}
	p.page = page
	return true
}

// Next moves forward one page unless already on the last one.
func (p *Pager) Next(totalPages int) bool {
	return p.GoTo(p.page+1, totalPages)
}

// Prev moves back one page unless already on the first one.
func (p *Pager) Prev() bool {
	if p.page <= 1 {
		return false
	}
	p.page--
	return true
}
