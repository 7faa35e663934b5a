package web

// params.go translates listing/export query strings into the parsed filter
// specification. Absent or malformed optional parameters degrade to their
// defaults; they never fail the request. Only sort_by is strict, and that is
// enforced in the service against the column allow-list.

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/contractops/appconfig-api/internal/appconfig"
)

// parseListFilter builds the filter specification for one listing or export
// request from its query parameters.
func parseListFilter(r *http.Request) appconfig.ListFilter {
	q := r.URL.Query()

	f := appconfig.ListFilter{
		Page:      parseIntParam(r, "page", appconfig.DefaultPage),
		PerPage:   parseIntParam(r, "per_page", appconfig.DefaultPerPage),
		Billable:  parseBillableFilter(q.Get("billable")),
		SortBy:    q.Get("sort_by"),
		SortOrder: parseSortOrder(q.Get("sort_order")),
	}

	if v := q.Get("contract"); v != "" {
		f.Contract = &v
	}
	if v := q.Get("url"); v != "" {
		f.URL = &v
		f.URLMatch = parseMatchMode(q.Get("url_match"))
	}
	if v := q.Get("uuid"); v != "" {
		f.UUID = &v
		f.UUIDMatch = parseMatchMode(q.Get("uuid_match"))
	}
	if v := q.Get("app_name"); v != "" {
		f.Name = &v
		f.NameMatch = parseMatchMode(q.Get("app_name_match"))
	}
	if v := q.Get("ignore_files"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IgnoreFiles = &b
		}
	}

	return f
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseMatchMode maps the *_match parameter to a match mode; exact is the
// default for anything unrecognized.
func parseMatchMode(v string) appconfig.MatchMode {
	if strings.EqualFold(v, "fuzzy") {
		return appconfig.MatchFuzzy
	}
	return appconfig.MatchExact
}

// parseBillableFilter maps the billable parameter to its four-state filter;
// absent or unrecognized values mean no predicate.
func parseBillableFilter(v string) appconfig.BillableFilter {
	switch strings.ToLower(v) {
	case "review":
		return appconfig.BillableReview
	case "true":
		return appconfig.BillableTrue
	case "false":
		return appconfig.BillableFalse
	default:
		return appconfig.BillableAll
	}
}

// parseSortOrder maps sort_order to a direction; ascending is the default.
func parseSortOrder(v string) appconfig.SortOrder {
	if strings.EqualFold(v, "desc") {
		return appconfig.SortDesc
	}
	return appconfig.SortAsc
}

// parseIDParam parses the {id} path segment.
func parseIDParam(v string) (int64, bool) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
