package search

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/district-compass/school-search-api/internal/domain"
	"github.com/district-compass/school-search-api/internal/platform/metrics"
	clockport "github.com/district-compass/school-search-api/internal/ports/out/clock"
	"github.com/district-compass/school-search-api/internal/ports/out/featuresource"
	querylogport "github.com/district-compass/school-search-api/internal/ports/out/querylog"
)

// Executor runs one logical search against the two upstream catalogs and
// merges the results into canonical records.
//
// A search never fails because a single source does: transport and upstream
// errors are swallowed per source (that source contributes zero features) and
// the survivor's results are still returned. The only error an executor
// returns is the caller's own context cancellation.
type Executor struct {
	districtSources []featuresource.Source
	schoolSources   []featuresource.Source

	queryLog querylogport.Store
	clk      clockport.Clock
	log      *slog.Logger
	collator *collate.Collator

	// MinQueryLength is the shortest trimmed text worth a network round-trip.
	MinQueryLength int
	// Record caps per upstream call; result sets beyond them are truncated
	// by the service, not here.
	DistrictRecordCap int
	SchoolRecordCap   int
}

func NewExecutor(
	districtSources []featuresource.Source,
	schoolSources []featuresource.Source,
	queryLog querylogport.Store,
	clk clockport.Clock,
	log *slog.Logger,
) *Executor {
	return &Executor{
		districtSources: districtSources,
		schoolSources:   schoolSources,
		queryLog:        queryLog,
		clk:             clk,
		log:             log,
		collator:        collate.New(language.English),

		MinQueryLength:    2,
		DistrictRecordCap: 500,
		SchoolRecordCap:   100,
	}
}

// SearchDistricts queries both catalogs for districts whose name contains
// text (case-insensitive), collapses them to one record per LEAID (first
// occurrence wins) and sorts by name ascending using locale-aware collation.
// Sub-minimum text returns empty immediately with no network call.
func (e *Executor) SearchDistricts(ctx context.Context, text string) ([]domain.District, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < e.MinQueryLength {
		return []domain.District{}, nil
	}

	t0 := e.clk.Now()
	feats, err := e.fanOut(ctx, e.districtSources, featuresource.Query{
		NameContains: text,
		MaxRecords:   e.DistrictRecordCap,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]domain.District, 0, len(feats))
	for _, f := range feats {
		d := domain.NormalizeDistrict(f.Attributes)
		if d.LEAID != nil {
			if seen[*d.LEAID] {
				continue
			}
			seen[*d.LEAID] = true
		}
		out = append(out, d)
	}
	e.sortDistrictsByName(out)

	e.observe(ctx, domain.FieldDistrict, text, "", len(out), t0)
	return out, nil
}

// SearchSchools queries both catalogs for schools. The text filter applies
// only when trimmed length meets the minimum; a district filter, when
// present, is ANDed so results satisfy both (and permits empty text, listing
// every school in the district). Results keep upstream order: both source
// result sets concatenated in fixed catalog order, then deduplicated.
func (e *Executor) SearchSchools(ctx context.Context, text, districtID string) ([]domain.School, error) {
	text = strings.TrimSpace(text)
	q := featuresource.Query{
		DistrictID: districtID,
		MaxRecords: e.SchoolRecordCap,
	}
	if len([]rune(text)) >= e.MinQueryLength {
		q.NameContains = text
	} else if districtID == "" {
		// Nothing to scope by: an unfiltered all-schools query is never useful.
		return []domain.School{}, nil
	}

	t0 := e.clk.Now()
	feats, err := e.fanOut(ctx, e.schoolSources, q)
	if err != nil {
		return nil, err
	}

	out := make([]domain.School, 0, len(feats))
	for _, f := range feats {
		out = append(out, domain.NormalizeSchool(f.Attributes, f.Geometry))
	}
	out = domain.DedupSchools(out)

	e.observe(ctx, domain.FieldSchool, q.NameContains, districtID, len(out), t0)
	return out, nil
}

// fanOut issues the query to every source in parallel and concatenates the
// per-source results in source order. A failing source is logged and treated
// as empty; only cancellation aborts the fan-out as a whole.
func (e *Executor) fanOut(ctx context.Context, sources []featuresource.Source, q featuresource.Query) ([]featuresource.Feature, error) {
	results := make([][]featuresource.Feature, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			feats, err := src.Query(gctx, q)
			if err != nil {
				if errors.Is(err, context.Canceled) || gctx.Err() != nil {
					return err
				}
				e.log.Warn("source query failed", "source", src.Name(), "err", err)
				return nil
			}
			results[i] = feats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []featuresource.Feature
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// sortDistrictsByName orders by name ascending using locale-aware collation;
// a missing name sorts as the empty string.
func (e *Executor) sortDistrictsByName(ds []domain.District) {
	name := func(d domain.District) string {
		if d.Name == nil {
			return ""
		}
		return *d.Name
	}
	sort.SliceStable(ds, func(i, j int) bool {
		return e.collator.CompareString(name(ds[i]), name(ds[j])) < 0
	})
}

// observe records per-query metrics and a best-effort diagnostics entry.
// The query log must never fail or slow a search, so recording is detached
// from the (possibly cancelled) request context.
func (e *Executor) observe(ctx context.Context, field domain.SearchField, text, districtID string, count int, t0 time.Time) {
	metrics.QueriesTotal.WithLabelValues(string(field)).Inc()
	if count == 0 {
		metrics.EmptyResultsTotal.WithLabelValues(string(field)).Inc()
	}
	if e.queryLog == nil {
		return
	}

	entry := querylogport.Entry{
		At:          t0,
		Field:       field,
		Query:       text,
		DistrictID:  districtID,
		ResultCount: count,
		Duration:    e.clk.Now().Sub(t0),
	}
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := e.queryLog.Record(logCtx, entry); err != nil {
		e.log.Debug("query log record failed", "err", err)
	}
}
