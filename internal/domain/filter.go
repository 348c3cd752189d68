package domain

// SortDirection orders a sorted collection ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Filter is the query contract over an aggregate collection: field
// predicates, free-text search, one sort key, and a 1-based page window.
// Zero values mean "no constraint".
type Filter struct {
	Search   string        `json:"search,omitempty"`
	Exchange string        `json:"exchange,omitempty"`
	Country  string        `json:"country,omitempty"`
	OS       string        `json:"os,omitempty"`
	App      string        `json:"app,omitempty"`
	MinSpend *float64      `json:"min_spend,omitempty"`
	MaxSpend *float64      `json:"max_spend,omitempty"`
	SortBy   string        `json:"sort_by,omitempty"`
	SortDir  SortDirection `json:"sort_dir,omitempty"`
	Page     int           `json:"page,omitempty"`
	PageSize int           `json:"page_size,omitempty"`
}

// PageResult is one page of a filtered, sorted collection. A page past the
// end carries an empty Data slice, not an error.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}
