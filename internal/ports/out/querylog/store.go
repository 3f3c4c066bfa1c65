package querylog

import (
	"context"
	"time"

	"github.com/district-compass/school-search-api/internal/domain"
)

// Entry records one executed search for diagnostics.
type Entry struct {
	At          time.Time
	Field       domain.SearchField
	Query       string
	DistrictID  string
	ResultCount int
	Duration    time.Duration
}

// Store persists search diagnostics. Recording is best-effort: a failing
// store must never fail a search.
type Store interface {
	Record(ctx context.Context, e Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
}
