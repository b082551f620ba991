package models

// Date-range filter keys, each a fixed lookback window from query time.
const (
	DateRangeLastWeek    = "last-week"
	DateRangeLastMonth   = "last-month"
	DateRangeLastQuarter = "last-quarter"
	DateRangeLastYear    = "last-year"
)

// SearchFilters are independently-optional predicates combined with AND.
// Empty fields are inactive. An unknown DateRange key disables date filtering.
type SearchFilters struct {
	Department     string `json:"department,omitempty"`
	DocumentType   string `json:"document_type,omitempty"`
	ComplianceFlag string `json:"compliance_flag,omitempty"`
	DateRange      string `json:"date_range,omitempty"`
}

// SearchQuery represents a search request. An empty query with no filters
// matches every document.
type SearchQuery struct {
	Query   string        `json:"query"`
	Filters SearchFilters `json:"filters"`
}

// IsEmpty reports whether the query has no text and no active filters.
func (q *SearchQuery) IsEmpty() bool {
	return q.Query == "" && q.Filters == (SearchFilters{})
}

// SearchResponse is the response for a search request. Results preserve the
// store's insertion order.
type SearchResponse struct {
	Results   []*Document `json:"results"`
	Total     int         `json:"total"`
	QueryTime int64       `json:"query_time_ms"`
	Query     string      `json:"query"`
}
