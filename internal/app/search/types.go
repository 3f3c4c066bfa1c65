package search

import (
	"time"

	"github.com/district-compass/school-search-api/internal/domain"
)

// QueryStatus tells "no results" apart from "not yet searched" for one field.
type QueryStatus string

const (
	StatusNotSearched QueryStatus = "NOT_SEARCHED"
	StatusSearching   QueryStatus = "SEARCHING"
	StatusDone        QueryStatus = "DONE"
)

// SessionConfig tunes a session's debounce window and minimum query length.
// Zero values take the widget defaults.
type SessionConfig struct {
	DebounceInterval time.Duration
	MinQueryLength   int
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.DebounceInterval <= 0 {
		c.DebounceInterval = 700 * time.Millisecond
	}
	if c.MinQueryLength <= 0 {
		c.MinQueryLength = 2
	}
	return c
}

// MapView is the shape handed to the map-display collaborator: a center point
// plus markers for the selection. Only produced when the selected school has
// usable coordinates.
type MapView struct {
	Center  domain.Point
	Markers []domain.Marker
}

// State is an immutable snapshot of a session. Slices and records are cloned;
// mutating a snapshot never affects the session.
type State struct {
	DistrictInput string
	SchoolInput   string

	DistrictQuery string
	SchoolQuery   string

	DistrictStatus QueryStatus
	SchoolStatus   QueryStatus

	Districts []domain.District
	Schools   []domain.School

	SelectedDistrict *domain.District
	SelectedSchool   *domain.School

	MapView *MapView
}
