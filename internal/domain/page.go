package domain

// PaginationParams carries page/limit values from the HTTP layer to the
// journey list projection. Page is 1-indexed. Limit is capped at 100.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional query params.
// Nil pointers fall back to page=1, limit=20.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, 100)
	}
	return p
}

// Window returns the half-open [start, end) range of a list of length n that
// falls on the current page. Pages past the end yield an empty range.
func (p PaginationParams) Window(n int) (start, end int) {
	// Compare before multiplying: a huge page number would overflow.
	if p.Page < 1 || p.Limit < 1 || p.Page-1 > n/p.Limit {
		return n, n
	}
	start = min((p.Page-1)*p.Limit, n)
	end = min(start+p.Limit, n)
	return start, end
}

// Paginate returns the current page of items.
func Paginate[T any](items []T, p PaginationParams) []T {
	start, end := p.Window(len(items))
	return items[start:end]
}
