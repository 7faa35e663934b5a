package appconfig

import (
	"fmt"
	"strings"
)

// whereBuilder accumulates WHERE-clause fragments and the values bound to
// them. Placeholder numbers are assigned from the running argument count, so
// any query built from the same builder sees identical fragments and
// identical bind positions. This is what keeps the COUNT and SELECT
// statements of a listing request in lockstep.
type whereBuilder struct {
	conds []string
	args  []any
}

// addBind appends a predicate referencing the next placeholder and binds val
// to it. The fragment must contain exactly one %d verb for the placeholder.
func (b *whereBuilder) addBind(format string, val any) {
	b.conds = append(b.conds, fmt.Sprintf(format, len(b.args)+1))
	b.args = append(b.args, val)
}

// addLiteral appends a fixed predicate that consumes no bind slot.
func (b *whereBuilder) addLiteral(cond string) {
	b.conds = append(b.conds, cond)
}

// addMatch appends an equality or case-insensitive substring predicate for a
// text column depending on the match mode. The caller value is used as the
// pattern body under fuzzy matching, so wildcard characters inside it stay
// live.
func (b *whereBuilder) addMatch(col, val string, mode MatchMode) {
	if mode == MatchFuzzy {
		b.addBind(col+" ILIKE $%d", "%"+val+"%")
		return
	}
	b.addBind(col+" = $%d", val)
}

// Clause returns the assembled WHERE clause including the leading " WHERE ",
// or the empty string when no predicates were added.
func (b *whereBuilder) Clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// Args returns the bound values in placeholder order.
func (b *whereBuilder) Args() []any {
	return b.args
}

// NextArgIndex returns the placeholder number the next bound value would
// receive. LIMIT and OFFSET always take the two indices starting here.
func (b *whereBuilder) NextArgIndex() int {
	return len(b.args) + 1
}

// buildWhere compiles a ListFilter into predicates in a fixed field order
// (contract, url, uuid, name, billable, ignore_files) so the output is
// deterministic. Absent fields contribute nothing; compilation never fails.
func buildWhere(f ListFilter) *whereBuilder {
	b := &whereBuilder{}

	if f.Contract != nil {
		// contract is always an exact match; there is no fuzzy mode for it.
		b.addBind("contract = $%d", *f.Contract)
	}
	if f.URL != nil {
		b.addMatch("url", *f.URL, f.URLMatch)
	}
	if f.UUID != nil {
		b.addMatch("uuid", *f.UUID, f.UUIDMatch)
	}
	if f.Name != nil {
		b.addMatch("name", *f.Name, f.NameMatch)
	}

	// The billable states are fixed-literal predicates: the condition itself,
	// not a caller value, determines the SQL, so no bind slot is consumed.
	switch f.Billable {
	case BillableReview:
		b.addLiteral("billable IS NULL")
	case BillableTrue:
		b.addLiteral("billable = TRUE")
	case BillableFalse:
		b.addLiteral("billable = FALSE")
	}

	if f.IgnoreFiles != nil {
		b.addBind("ignore_files = $%d", *f.IgnoreFiles)
	}

	return b
}

// sortColumns is the allow-list for ORDER BY. Caller-supplied sort columns
// are interpolated into the statement text, so anything outside this set is
// rejected before query assembly.
var sortColumns = map[string]bool{
	"id":           true,
	"contract":     true,
	"url":          true,
	"uuid":         true,
	"name":         true,
	"billable":     true,
	"ignore_files": true,
	"created_at":   true,
	"updated_at":   true,
}

// orderClause validates the sort column against the allow-list and returns
// the ORDER BY fragment. An empty column defaults to id.
func orderClause(sortBy string, order SortOrder) (string, error) {
	col := strings.ToLower(strings.TrimSpace(sortBy))
	if col == "" {
		col = "id"
	}
	if !sortColumns[col] {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortColumn, sortBy)
	}
	dir := "ASC"
	if order == SortDesc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir, nil
}

// totalPages computes ceil(total / perPage). A zero total means zero pages;
// a page past the end is not an error, it just lists nothing.
func totalPages(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
