// Package appconfig provides the business logic for the app configuration
// records API: listing with composable filters, pagination, CSV-oriented
// streaming, and single/bulk mutations against the app_configs table.
package appconfig

import "time"

// DefaultPage is used when the caller omits the page parameter.
const DefaultPage = 1

// DefaultPerPage is used when the caller omits the per_page parameter.
const DefaultPerPage = 20

// AppConfig is one persisted configuration record.
// ID and both timestamps are store-assigned; created_at never changes after
// insert, updated_at advances on every successful mutation.
type AppConfig struct {
	ID          int64     `json:"id"`
	Contract    string    `json:"contract"`
	URL         string    `json:"url"`
	UUID        string    `json:"uuid"`
	Name        string    `json:"name"`
	Billable    *bool     `json:"billable"`
	IgnoreFiles bool      `json:"ignore_files"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MatchMode selects how a string filter compares against the column.
type MatchMode int

const (
	// MatchExact compares with equality.
	MatchExact MatchMode = iota
	// MatchFuzzy compares with a case-insensitive substring pattern.
	MatchFuzzy
)

// BillableFilter is the four-state filter over the nullable billable column.
type BillableFilter int

const (
	// BillableAll matches every row regardless of value.
	BillableAll BillableFilter = iota
	// BillableReview matches rows where billable is NULL (not yet decided).
	BillableReview
	// BillableTrue matches rows where billable is true.
	BillableTrue
	// BillableFalse matches rows where billable is false.
	BillableFalse
)

// SortOrder is the listing sort direction.
type SortOrder int

const (
	SortAsc SortOrder = iota
	SortDesc
)

// ListFilter is the parsed filter/sort/page specification for one listing or
// export request. Every optional field that is nil contributes no predicate
// and no bind parameter.
type ListFilter struct {
	Page    int
	PerPage int

	Contract    *string
	URL         *string
	URLMatch    MatchMode
	UUID        *string
	UUIDMatch   MatchMode
	Name        *string
	NameMatch   MatchMode
	Billable    BillableFilter
	IgnoreFiles *bool

	SortBy    string
	SortOrder SortOrder
}

// ListResult is the paginated outcome of a listing request.
type ListResult struct {
	Data       []AppConfig `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalPages int         `json:"total_pages"`
}

// CreateParams holds a fully-specified record minus store-assigned fields.
// UUID may be left empty, in which case the service generates one.
type CreateParams struct {
	Contract    string `json:"contract"`
	URL         string `json:"url"`
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Billable    *bool  `json:"billable"`
	IgnoreFiles bool   `json:"ignore_files"`
}

// UpdateParams is a partial update: each nil field leaves the stored value
// unchanged. A nil Billable cannot clear an existing value back to NULL;
// that matches the COALESCE merge the statement performs.
type UpdateParams struct {
	Contract    *string `json:"contract"`
	URL         *string `json:"url"`
	UUID        *string `json:"uuid"`
	Name        *string `json:"name"`
	Billable    *bool   `json:"billable"`
	IgnoreFiles *bool   `json:"ignore_files"`
}
