package featuresource

import (
	"context"

	"github.com/district-compass/school-search-api/internal/domain"
)

// Feature is one raw geospatial record from an upstream catalog: an attribute
// map plus an optional point geometry. Attribute shapes differ per catalog;
// normalization happens in the domain layer, not here.
type Feature struct {
	Attributes map[string]any
	Geometry   *domain.Point
}

// Query is the transport-agnostic filter a source must honor.
//
// NameContains is matched case-insensitively as a substring of the source's
// name field. DistrictID, when non-empty, is ANDed as an exact match on the
// source's district field. MaxRecords caps the result count; sources truncate
// silently beyond it.
type Query struct {
	NameContains string
	DistrictID   string
	MaxRecords   int
}

// Source provides access to one upstream feature catalog.
//
// Implementations must propagate ctx cancellation and may return any error for
// transport or upstream failures; callers decide whether a failure is fatal.
type Source interface {
	// Name identifies the source in logs and metrics (e.g. "private", "public").
	Name() string
	Query(ctx context.Context, q Query) ([]Feature, error)
}
