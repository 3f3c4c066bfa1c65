package featuresource

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/district-compass/school-search-api/internal/domain"
	port "github.com/district-compass/school-search-api/internal/ports/out/featuresource"
)

// Source is an in-memory implementation of featuresource.Source backed by a
// fixed feature set. It backs the fixture dev backend and tests, emulating
// the upstream filter semantics: case-insensitive substring match on the name
// field, exact match on the district field, silent MaxRecords truncation.
// It is safe for concurrent use.
type Source struct {
	name          string
	nameField     string
	districtField string

	mu       sync.RWMutex
	features []port.Feature
	failWith error
	latency  time.Duration
}

func NewSource(name, nameField, districtField string, features []port.Feature) *Source {
	return &Source{
		name:          name,
		nameField:     nameField,
		districtField: districtField,
		features:      cloneFeatures(features),
	}
}

func (s *Source) Name() string { return s.name }

// SetFailWith makes every subsequent Query return err (nil restores normal
// operation). Used to simulate source outages.
func (s *Source) SetFailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// SetLatency delays every subsequent Query, honoring ctx cancellation.
func (s *Source) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

func (s *Source) Query(ctx context.Context, q port.Query) ([]port.Feature, error) {
	s.mu.RLock()
	failWith := s.failWith
	latency := s.latency
	features := s.features
	s.mu.RUnlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failWith != nil {
		return nil, failWith
	}

	text := strings.ToUpper(strings.TrimSpace(q.NameContains))
	out := make([]port.Feature, 0)
	for _, f := range features {
		if text != "" && !strings.Contains(strings.ToUpper(attrText(f, s.nameField)), text) {
			continue
		}
		if q.DistrictID != "" && attrText(f, s.districtField) != q.DistrictID {
			continue
		}
		out = append(out, cloneFeature(f))
		if q.MaxRecords > 0 && len(out) >= q.MaxRecords {
			break
		}
	}
	return out, nil
}

func attrText(f port.Feature, field string) string {
	if field == "" {
		return ""
	}
	v, ok := f.Attributes[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func cloneFeatures(fs []port.Feature) []port.Feature {
	out := make([]port.Feature, 0, len(fs))
	for _, f := range fs {
		out = append(out, cloneFeature(f))
	}
	return out
}

func cloneFeature(f port.Feature) port.Feature {
	cp := port.Feature{Attributes: make(map[string]any, len(f.Attributes))}
	for k, v := range f.Attributes {
		cp.Attributes[k] = v
	}
	if f.Geometry != nil {
		g := domain.Point{X: f.Geometry.X, Y: f.Geometry.Y}
		cp.Geometry = &g
	}
	return cp
}
