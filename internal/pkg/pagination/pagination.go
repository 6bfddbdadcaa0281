package pagination

// Page describes one page of a result set.
type Page struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	Offset      int   `json:"-"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

// Paginate bounds the page size and derives page metadata.
// Page numbers are 1-based; anything below 1 is treated as page 1.
func Paginate(page, requestedPageSize, maxPageSize int, total int64) Page {
	if page < 1 {
		page = 1
	}

	size := requestedPageSize
	if maxPageSize > 0 && size > maxPageSize {
		size = maxPageSize
	}
	if size < 1 {
		size = 1
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	// pages past the end start at total, which also keeps huge page numbers from overflowing
	offset := total
	if int64(page-1) <= total/int64(size) {
		offset = int64(page-1) * int64(size)
	}

	return Page{
		Page:        page,
		PageSize:    size,
		Offset:      int(offset),
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Slice cuts the items of p out of an already filtered, already sorted slice.
func Slice[T any](items []T, p Page) []T {
	if p.Offset < 0 || p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.PageSize
	if end > len(items) || end < p.Offset {
		end = len(items)
	}
	return items[p.Offset:end]
}
