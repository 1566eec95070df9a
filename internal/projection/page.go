// Package projection computes the paginated, filtered views shown by the
// catalog grid and the admin product list. Everything here is a pure
// function of its inputs; nothing is stored.
package projection

import "storefront/internal/models"

// WindowSize is the number of page buttons shown by pagination controls.
const WindowSize = 5

// AllCategories is the identity filter.
const AllCategories = "all"

// Page is one page of a filtered collection.
type Page[T any] struct {
	Items        []T   `json:"items"`
	Placeholders int   `json:"placeholders"`
	CurrentPage  int   `json:"current_page"`
	PageSize     int   `json:"page_size"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int   `json:"total_items"`
	Window       []int `json:"pages"`
}

// Paginate filters collection with keep (nil keeps everything), slices out
// currentPage and computes the page-button window. When pad is set the page
// is completed with placeholder slots up to pageSize.
func Paginate[T any](collection []T, pageSize, currentPage int, keep func(T) bool, pad bool) Page[T] {
	filtered := make([]T, 0, len(collection))
	for _, item := range collection {
		if keep == nil || keep(item) {
			filtered = append(filtered, item)
		}
	}

	if pageSize < 1 {
		pageSize = len(filtered)
		if pageSize == 0 {
			pageSize = 1
		}
	}

	total := TotalPages(len(filtered), pageSize)
	page := Page[T]{
		Items:       []T{},
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalPages:  total,
		TotalItems:  len(filtered),
		Window:      Window(currentPage, total),
	}

	start := (currentPage - 1) * pageSize
	if currentPage >= 1 && start < len(filtered) {
		end := start + pageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		page.Items = filtered[start:end]
	}
	if pad {
		page.Placeholders = pageSize - len(page.Items)
	}
	return page
}

// TotalPages is ceil(count / pageSize).
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// Window returns the page numbers to show: WindowSize buttons centred on
// current, shifted to stay WindowSize wide near either end, fewer when
// there are fewer pages.
func Window(current, total int) []int {
	start := current - WindowSize/2
	if start < 1 {
		start = 1
	}
	end := start + WindowSize - 1
	if end > total {
		end = total
	}
	if end-start+1 < WindowSize {
		start = end - WindowSize + 1
		if start < 1 {
			start = 1
		}
	}

	pages := []int{}
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Slots returns the items followed by nil placeholders, for fixed-size grids.
func (p Page[T]) Slots() []*T {
	slots := make([]*T, 0, len(p.Items)+p.Placeholders)
	for i := range p.Items {
		slots = append(slots, &p.Items[i])
	}
	for i := 0; i < p.Placeholders; i++ {
		slots = append(slots, nil)
	}
	return slots
}

// ShowControls reports whether pagination controls are rendered.
func (p Page[T]) ShowControls() bool { return p.TotalPages > 1 }

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.CurrentPage > 1 }

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool { return p.CurrentPage < p.TotalPages }

// ByCategory keeps products tagged with the named category. AllCategories
// and the empty name keep everything.
func ByCategory(name string) func(models.Product) bool {
	if name == "" || name == AllCategories {
		return nil
	}
	return func(p models.Product) bool { return p.InCategory(name) }
}
