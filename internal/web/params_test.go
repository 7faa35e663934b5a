package web

import (
	"net/http/httptest"
	"testing"

	"github.com/contractops/appconfig-api/internal/appconfig"
)

func TestParseListFilter_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/app-configs", nil)
	f := parseListFilter(r)

	if f.Page != appconfig.DefaultPage {
		t.Errorf("Page = %d, want %d", f.Page, appconfig.DefaultPage)
	}
	if f.PerPage != appconfig.DefaultPerPage {
		t.Errorf("PerPage = %d, want %d", f.PerPage, appconfig.DefaultPerPage)
	}
	if f.Contract != nil || f.URL != nil || f.UUID != nil || f.Name != nil || f.IgnoreFiles != nil {
		t.Error("expected no field filters for an empty query")
	}
	if f.Billable != appconfig.BillableAll {
		t.Errorf("Billable = %v, want BillableAll", f.Billable)
	}
	if f.SortBy != "" {
		t.Errorf("SortBy = %q, want empty", f.SortBy)
	}
	if f.SortOrder != appconfig.SortAsc {
		t.Errorf("SortOrder = %v, want SortAsc", f.SortOrder)
	}
}

func TestParseListFilter_AllParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/app-configs?page=3&per_page=50"+
		"&contract=acme&url=example.com&url_match=fuzzy"+
		"&uuid=abc-123&uuid_match=exact&app_name=billing&app_name_match=fuzzy"+
		"&billable=review&ignore_files=true&sort_by=name&sort_order=desc", nil)
	f := parseListFilter(r)

	if f.Page != 3 || f.PerPage != 50 {
		t.Errorf("page/per_page = %d/%d, want 3/50", f.Page, f.PerPage)
	}
	if f.Contract == nil || *f.Contract != "acme" {
		t.Errorf("Contract = %v, want acme", f.Contract)
	}
	if f.URL == nil || *f.URL != "example.com" || f.URLMatch != appconfig.MatchFuzzy {
		t.Errorf("URL filter = %v match %v, want example.com fuzzy", f.URL, f.URLMatch)
	}
	if f.UUID == nil || *f.UUID != "abc-123" || f.UUIDMatch != appconfig.MatchExact {
		t.Errorf("UUID filter = %v match %v, want abc-123 exact", f.UUID, f.UUIDMatch)
	}
	if f.Name == nil || *f.Name != "billing" || f.NameMatch != appconfig.MatchFuzzy {
		t.Errorf("Name filter = %v match %v, want billing fuzzy", f.Name, f.NameMatch)
	}
	if f.Billable != appconfig.BillableReview {
		t.Errorf("Billable = %v, want BillableReview", f.Billable)
	}
	if f.IgnoreFiles == nil || *f.IgnoreFiles != true {
		t.Errorf("IgnoreFiles = %v, want true", f.IgnoreFiles)
	}
	if f.SortBy != "name" || f.SortOrder != appconfig.SortDesc {
		t.Errorf("sort = %q %v, want name desc", f.SortBy, f.SortOrder)
	}
}

func TestParseListFilter_MalformedValuesFallBack(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/app-configs?page=abc&per_page=-5"+
		"&billable=maybe&ignore_files=banana&url=x&url_match=wrong&sort_order=sideways", nil)
	f := parseListFilter(r)

	if f.Page != appconfig.DefaultPage || f.PerPage != appconfig.DefaultPerPage {
		t.Errorf("page/per_page = %d/%d, want defaults", f.Page, f.PerPage)
	}
	if f.Billable != appconfig.BillableAll {
		t.Errorf("Billable = %v, want BillableAll for unrecognized value", f.Billable)
	}
	if f.IgnoreFiles != nil {
		t.Errorf("IgnoreFiles = %v, want nil for unparsable value", f.IgnoreFiles)
	}
	if f.URLMatch != appconfig.MatchExact {
		t.Errorf("URLMatch = %v, want exact for unrecognized mode", f.URLMatch)
	}
	if f.SortOrder != appconfig.SortAsc {
		t.Errorf("SortOrder = %v, want asc for unrecognized value", f.SortOrder)
	}
}

func TestParseBillableFilter(t *testing.T) {
	tests := []struct {
		in   string
		want appconfig.BillableFilter
	}{
		{"", appconfig.BillableAll},
		{"all", appconfig.BillableAll},
		{"review", appconfig.BillableReview},
		{"Review", appconfig.BillableReview},
		{"true", appconfig.BillableTrue},
		{"false", appconfig.BillableFalse},
		{"garbage", appconfig.BillableAll},
	}
	for _, tt := range tests {
		if got := parseBillableFilter(tt.in); got != tt.want {
			t.Errorf("parseBillableFilter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseIDParam(t *testing.T) {
	if id, ok := parseIDParam("42"); !ok || id != 42 {
		t.Errorf("parseIDParam(42) = %d %v, want 42 true", id, ok)
	}
	for _, bad := range []string{"", "abc", "0", "-1", "1.5"} {
		if _, ok := parseIDParam(bad); ok {
			t.Errorf("parseIDParam(%q) accepted, want rejection", bad)
		}
	}
}
