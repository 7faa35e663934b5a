package appconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// selectColumns is the fixed projection for every read path, in struct
// field order.
const selectColumns = "id, contract, url, uuid, name, billable, ignore_files, created_at, updated_at"

// Service provides the core business logic for app configuration records.
type Service struct {
	pool *pgxpool.Pool
}

// NewService creates a new Service backed by the given connection pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// List runs the count and data queries for a listing request. Both queries
// are built from the identical compiled predicate list, so bind positions
// always agree; LIMIT and OFFSET take the two placeholders immediately after
// the last predicate argument.
//
// The two statements run outside a shared transaction. Concurrent writers
// can change the data between them; that window is accepted.
func (s *Service) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}

	order, err := orderClause(f.SortBy, f.SortOrder)
	if err != nil {
		return nil, err
	}

	wb := buildWhere(f)
	where := wb.Clause()
	args := wb.Args()

	var total int64
	countQuery := "SELECT COUNT(*) FROM app_configs" + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count app configs: %w", err)
	}

	limitIdx := wb.NextArgIndex()
	query := fmt.Sprintf(
		"SELECT %s FROM app_configs%s%s LIMIT $%d OFFSET $%d",
		selectColumns, where, order, limitIdx, limitIdx+1,
	)
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query app configs: %w", err)
	}
	defer rows.Close()

	data := make([]AppConfig, 0, f.PerPage)
	for rows.Next() {
		ac, err := scanAppConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan app config: %w", err)
		}
		data = append(data, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &ListResult{
		Data:       data,
		Total:      total,
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalPages: totalPages(total, f.PerPage),
	}, nil
}

// Stream runs the same compiled listing query as List and invokes the
// callback once per row, avoiding accumulation of the result set in memory.
// Used by the CSV export path.
func (s *Service) Stream(ctx context.Context, f ListFilter, fn func(AppConfig) error) error {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}

	order, err := orderClause(f.SortBy, f.SortOrder)
	if err != nil {
		return err
	}

	wb := buildWhere(f)
	limitIdx := wb.NextArgIndex()
	query := fmt.Sprintf(
		"SELECT %s FROM app_configs%s%s LIMIT $%d OFFSET $%d",
		selectColumns, wb.Clause(), order, limitIdx, limitIdx+1,
	)
	args := append(wb.Args(), f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query app configs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ac, err := scanAppConfig(rows)
		if err != nil {
			return fmt.Errorf("scan app config: %w", err)
		}
		if err := fn(ac); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Get fetches a single record by identity.
func (s *Service) Get(ctx context.Context, id int64) (*AppConfig, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+selectColumns+" FROM app_configs WHERE id = $1", id)

	ac, err := scanAppConfig(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get app config: %w", err)
	}
	return &ac, nil
}

// Create inserts a fully-specified record and returns it with the
// store-assigned identity and timestamps. An empty UUID gets a generated one.
func (s *Service) Create(ctx context.Context, p CreateParams) (*AppConfig, error) {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO app_configs (contract, url, uuid, name, billable, ignore_files)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+selectColumns,
		p.Contract, p.URL, p.UUID, p.Name, p.Billable, p.IgnoreFiles,
	)

	ac, err := scanAppConfig(row)
	if err != nil {
		return nil, fmt.Errorf("create app config: %w", err)
	}
	return &ac, nil
}

// updateSet is the shared COALESCE merge for Update and BulkUpdate: absent
// fields keep the stored value, updated_at always advances. One statement,
// so there is no read-then-write race.
const updateSet = `
	SET contract     = COALESCE($1, contract),
	    url          = COALESCE($2, url),
	    uuid         = COALESCE($3, uuid),
	    name         = COALESCE($4, name),
	    billable     = COALESCE($5, billable),
	    ignore_files = COALESCE($6, ignore_files),
	    updated_at   = now()`

// Update applies a partial update to one record and returns the post-update
// row, or ErrNotFound when the identity does not exist.
func (s *Service) Update(ctx context.Context, id int64, p UpdateParams) (*AppConfig, error) {
	row := s.pool.QueryRow(ctx,
		"UPDATE app_configs"+updateSet+" WHERE id = $7 RETURNING "+selectColumns,
		p.Contract, p.URL, p.UUID, p.Name, p.Billable, p.IgnoreFiles, id,
	)

	ac, err := scanAppConfig(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update app config: %w", err)
	}
	return &ac, nil
}

// BulkUpdate applies the same partial update to every row whose identity is
// in ids, returning the updated rows. Identities that match no row are
// silently skipped; the batch never fails because of them.
func (s *Service) BulkUpdate(ctx context.Context, ids []int64, p UpdateParams) ([]AppConfig, error) {
	rows, err := s.pool.Query(ctx,
		"UPDATE app_configs"+updateSet+" WHERE id = ANY($7) RETURNING "+selectColumns,
		p.Contract, p.URL, p.UUID, p.Name, p.Billable, p.IgnoreFiles, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("bulk update app configs: %w", err)
	}
	defer rows.Close()

	updated := make([]AppConfig, 0, len(ids))
	for rows.Next() {
		ac, err := scanAppConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan app config: %w", err)
		}
		updated = append(updated, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return updated, nil
}

// Delete physically removes a record. ErrNotFound when nothing was removed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM app_configs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete app config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping verifies database connectivity for health checks.
func (s *Service) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// scanAppConfig reads one row in selectColumns order.
func scanAppConfig(row pgx.Row) (AppConfig, error) {
	var ac AppConfig
	err := row.Scan(
		&ac.ID,
		&ac.Contract,
		&ac.URL,
		&ac.UUID,
		&ac.Name,
		&ac.Billable,
		&ac.IgnoreFiles,
		&ac.CreatedAt,
		&ac.UpdatedAt,
	)
	return ac, err
}
