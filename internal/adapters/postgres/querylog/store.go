package querylog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/district-compass/school-search-api/internal/domain"
	"github.com/district-compass/school-search-api/internal/ports/out/querylog"
)

// Store is a Postgres implementation of querylog.Store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Record(ctx context.Context, e querylog.Entry) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO search_queries (at, field, query, district_id, result_count, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		at.UTC(),
		string(e.Field),
		e.Query,
		e.DistrictID,
		e.ResultCount,
		e.Duration.Milliseconds(),
	)
	return err
}

func (s *Store) Recent(ctx context.Context, limit int) ([]querylog.Entry, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT at, field, query, district_id, result_count, duration_ms
		FROM search_queries
		ORDER BY at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]querylog.Entry, 0, limit)
	for rows.Next() {
		var (
			e          querylog.Entry
			field      string
			durationMs int64
		)
		if err := rows.Scan(&e.At, &field, &e.Query, &e.DistrictID, &e.ResultCount, &durationMs); err != nil {
			return nil, err
		}
		e.At = e.At.UTC()
		e.Field = domain.SearchField(field)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}
