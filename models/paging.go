package models

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// QueryParameters selects a window of a listing.
type QueryParameters struct {
	StartIndex int `json:"startIndex"`
	PageSize   int `json:"pageSize"`
	PageNumber int `json:"pageNumber"`
}

// Normalize clamps the parameters into a usable window.
func (q QueryParameters) Normalize() QueryParameters {
	if q.StartIndex < 0 {
		q.StartIndex = 0
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.PageNumber < 1 {
		q.PageNumber = 1
	}
	return q
}

// PagedResult is one page of a listing plus the size of the whole listing.
type PagedResult[T any] struct {
	TotalCount   int `json:"totalCount"`
	PageNumber   int `json:"pageNumber"`
	RecordNumber int `json:"recordNumber"`
	Items        []T `json:"items"`
}

// NewPagedResult builds a page for the given parameters.
func NewPagedResult[T any](params QueryParameters, items []T, total int) *PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PagedResult[T]{
		TotalCount:   total,
		PageNumber:   params.PageNumber,
		RecordNumber: params.PageSize,
		Items:        items,
	}
}
