package store

// Pagination defaults and limits.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageParams contains offset pagination request parameters.
type PageParams struct {
	Page  int // 1-based page number (defaults to 1)
	Limit int // Items per page (defaults to 10, capped at 100)
}

// Normalize corrects out-of-range pagination parameters in place.
func (p *PageParams) Normalize() {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

// Offset returns the number of items to skip for the current page.
func (p *PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageResult contains one page of items plus paging metadata.
type PageResult[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// Paginate slices items according to params and fills in paging metadata.
// Params are normalized first, so callers can pass zero values straight
// from a request.
func Paginate[T any](items []T, params PageParams) PageResult[T] {
	params.Normalize()

	total := len(items)
	totalPages := (total + params.Limit - 1) / params.Limit

	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	return PageResult[T]{
		Items:      items[start:end],
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    end < total,
	}
}
