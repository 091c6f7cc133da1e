package shared

// Pagination bounds shared by list queries
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest holds 1-based pagination input
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit to sane values
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the page
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// PageMeta describes a page of results
type PageMeta struct {
	Total           int64 `json:"total"`
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPageMeta computes page metadata for a total count
func NewPageMeta(total int64, req PageRequest) PageMeta {
	req = req.Normalize()
	totalPages := int(total) / req.Limit
	if int(total)%req.Limit > 0 {
		totalPages++
	}
	return PageMeta{
		Total:           total,
		Page:            req.Page,
		Limit:           req.Limit,
		TotalPages:      totalPages,
		HasNextPage:     req.Page < totalPages,
		HasPreviousPage: req.Page > 1,
	}
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, req PageRequest) Paginated[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return Paginated[T]{Data: items, Meta: NewPageMeta(total, req)}
}
