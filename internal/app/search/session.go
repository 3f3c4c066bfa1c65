package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/bep/debounce"

	"github.com/district-compass/school-search-api/internal/domain"
	"github.com/district-compass/school-search-api/internal/platform/metrics"
)

// Searcher runs one debounced-and-settled query against the upstream catalogs.
// *Executor is the production implementation.
type Searcher interface {
	SearchDistricts(ctx context.Context, text string) ([]domain.District, error)
	SearchSchools(ctx context.Context, text, districtID string) ([]domain.School, error)
}

// Session holds the interactive state of one search widget: the two text
// inputs, their debounced queries, result sets, selections and caches.
//
// Every mutation and every fetch settlement runs under one mutex, so the
// session only ever moves between consistent states. Superseded fetches are
// fenced by a per-field generation counter: a response whose generation no
// longer matches the field's current one is discarded, which makes the newest
// input always win regardless of response arrival order.
type Session struct {
	cfg      SessionConfig
	searcher Searcher
	log      *slog.Logger

	mu     sync.Mutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc

	debounceDistrict func(func())
	debounceSchool   func(func())

	districtInput  string
	districtQuery  string
	districtStatus QueryStatus
	districts      []domain.District
	districtGen    uint64
	districtCancel context.CancelFunc

	schoolInput  string
	schoolQuery  string
	schoolStatus QueryStatus
	schools      []domain.School
	schoolGen    uint64
	schoolCancel context.CancelFunc

	selectedDistrict *domain.District
	selectedSchool   *domain.School

	districtCache map[domain.QueryKey][]domain.District
	schoolCache   map[domain.QueryKey][]domain.School
}

func NewSession(searcher Searcher, cfg SessionConfig, log *slog.Logger) *Session {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cfg:      cfg,
		searcher: searcher,
		log:      log,

		ctx:    ctx,
		cancel: cancel,

		debounceDistrict: debounce.New(cfg.DebounceInterval),
		debounceSchool:   debounce.New(cfg.DebounceInterval),

		districtStatus: StatusNotSearched,
		schoolStatus:   StatusNotSearched,

		districtCache: make(map[domain.QueryKey][]domain.District),
		schoolCache:   make(map[domain.QueryKey][]domain.School),
	}
	return s
}

// Close cancels any in-flight fetches and rejects further operations.
// Snapshot keeps working on the final state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
}

// SetDistrictInput records a keystroke in the district field. The visible
// input updates immediately; the search itself runs only after the input has
// been stable for the debounce interval.
func (s *Session) SetDistrictInput(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.districtInput = text
	s.debounceDistrict(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.districtInput != text {
			return
		}
		s.runDistrictPipelineLocked()
	})
	return nil
}

// SetSchoolInput records a keystroke in the school field, debounced the same
// way as SetDistrictInput.
func (s *Session) SetSchoolInput(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.schoolInput = text
	s.debounceSchool(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.schoolInput != text {
			return
		}
		s.runSchoolPipelineLocked()
	})
	return nil
}

// SelectDistrict picks a district out of the current result set by LEAID, or
// clears the selection when leaid is empty. Changing the district invalidates
// the school selection and refetches the school results immediately, without
// debounce and without serving the stale cached set for the new filter.
func (s *Session) SelectDistrict(leaid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	if leaid == "" {
		if s.selectedDistrict == nil {
			return nil
		}
		s.selectedDistrict = nil
		s.selectedSchool = nil
		s.runSchoolPipelineLocked()
		return nil
	}

	var match *domain.District
	for i := range s.districts {
		d := &s.districts[i]
		if d.LEAID != nil && *d.LEAID == leaid {
			match = d
			break
		}
	}
	if match == nil {
		return ErrDistrictNotInResults
	}
	if s.selectedDistrict != nil && s.selectedDistrict.LEAID != nil && *s.selectedDistrict.LEAID == leaid {
		return nil
	}

	c := match.Clone()
	s.selectedDistrict = &c
	s.selectedSchool = nil
	delete(s.schoolCache, s.schoolKeyLocked())
	s.runSchoolPipelineLocked()
	return nil
}

// SelectSchool picks a school out of the current result set by NCESSCH, or
// clears the selection when ncessch is empty. Selecting a school never
// triggers a fetch.
func (s *Session) SelectSchool(ncessch string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	if ncessch == "" {
		s.selectedSchool = nil
		return nil
	}
	for i := range s.schools {
		sc := &s.schools[i]
		if sc.NCESSCH != nil && *sc.NCESSCH == ncessch {
			c := sc.Clone()
			s.selectedSchool = &c
			return nil
		}
	}
	return ErrSchoolNotInResults
}

// InvalidateCaches drops every cached result set. The next settled query per
// key goes back to the network.
func (s *Session) InvalidateCaches() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.districtCache = make(map[domain.QueryKey][]domain.District)
	s.schoolCache = make(map[domain.QueryKey][]domain.School)
}

// Snapshot returns a deep copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		DistrictInput:  s.districtInput,
		SchoolInput:    s.schoolInput,
		DistrictQuery:  s.districtQuery,
		SchoolQuery:    s.schoolQuery,
		DistrictStatus: s.districtStatus,
		SchoolStatus:   s.schoolStatus,
		Districts:      domain.CloneDistricts(s.districts),
		Schools:        domain.CloneSchools(s.schools),
	}
	if s.selectedDistrict != nil {
		c := s.selectedDistrict.Clone()
		st.SelectedDistrict = &c
	}
	if s.selectedSchool != nil {
		c := s.selectedSchool.Clone()
		st.SelectedSchool = &c
		if m, ok := domain.MarkerForSchool(c); ok {
			st.MapView = &MapView{
				Center:  domain.Point{X: m.Longitude, Y: m.Latitude},
				Markers: []domain.Marker{m},
			}
		}
	}
	return st
}

// runDistrictPipelineLocked settles the district input: below the minimum
// length the results and selection are cleared with no network call, otherwise
// the cache is consulted and a fetch started on a miss.
func (s *Session) runDistrictPipelineLocked() {
	text := strings.TrimSpace(s.districtInput)
	s.districtQuery = text

	if len([]rune(text)) < s.cfg.MinQueryLength {
		s.abortDistrictFetchLocked()
		s.districts = nil
		s.districtStatus = StatusNotSearched
		if s.selectedDistrict != nil {
			s.selectedDistrict = nil
			s.selectedSchool = nil
			s.runSchoolPipelineLocked()
		}
		return
	}

	key := domain.NewQueryKey(domain.FieldDistrict, text, "")
	if cached, ok := s.districtCache[key]; ok {
		metrics.CacheHitsTotal.WithLabelValues(string(domain.FieldDistrict)).Inc()
		s.abortDistrictFetchLocked()
		s.applyDistrictResultsLocked(cached)
		return
	}
	metrics.CacheMissesTotal.WithLabelValues(string(domain.FieldDistrict)).Inc()
	s.startDistrictFetchLocked(text, key)
}

// runSchoolPipelineLocked settles the school input against the current
// district filter. A fetch happens when the text meets the minimum length or a
// district is selected (listing all schools in the district); otherwise the
// results and selection are cleared with no network call.
func (s *Session) runSchoolPipelineLocked() {
	text := strings.TrimSpace(s.schoolInput)
	if len([]rune(text)) < s.cfg.MinQueryLength {
		text = ""
	}
	s.schoolQuery = text

	districtID := ""
	if s.selectedDistrict != nil && s.selectedDistrict.LEAID != nil {
		districtID = *s.selectedDistrict.LEAID
	}

	if text == "" && districtID == "" {
		s.abortSchoolFetchLocked()
		s.schools = nil
		s.schoolStatus = StatusNotSearched
		s.selectedSchool = nil
		return
	}

	key := domain.NewQueryKey(domain.FieldSchool, text, districtID)
	if cached, ok := s.schoolCache[key]; ok {
		metrics.CacheHitsTotal.WithLabelValues(string(domain.FieldSchool)).Inc()
		s.abortSchoolFetchLocked()
		s.applySchoolResultsLocked(cached)
		return
	}
	metrics.CacheMissesTotal.WithLabelValues(string(domain.FieldSchool)).Inc()
	s.startSchoolFetchLocked(text, districtID, key)
}

// schoolKeyLocked is the cache key the school pipeline would use right now.
func (s *Session) schoolKeyLocked() domain.QueryKey {
	text := strings.TrimSpace(s.schoolInput)
	if len([]rune(text)) < s.cfg.MinQueryLength {
		text = ""
	}
	districtID := ""
	if s.selectedDistrict != nil && s.selectedDistrict.LEAID != nil {
		districtID = *s.selectedDistrict.LEAID
	}
	return domain.NewQueryKey(domain.FieldSchool, text, districtID)
}

func (s *Session) abortDistrictFetchLocked() {
	s.districtGen++
	if s.districtCancel != nil {
		s.districtCancel()
		s.districtCancel = nil
	}
}

func (s *Session) abortSchoolFetchLocked() {
	s.schoolGen++
	if s.schoolCancel != nil {
		s.schoolCancel()
		s.schoolCancel = nil
	}
}

func (s *Session) startDistrictFetchLocked(text string, key domain.QueryKey) {
	s.abortDistrictFetchLocked()
	gen := s.districtGen
	ctx, cancel := context.WithCancel(s.ctx)
	s.districtCancel = cancel
	s.districtStatus = StatusSearching

	go func() {
		defer cancel()
		results, err := s.searcher.SearchDistricts(ctx, text)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || gen != s.districtGen {
			return
		}
		if err != nil {
			// Only cancellation reaches here; a new run owns the field now.
			s.log.Debug("district fetch superseded", "query", text, "err", err)
			return
		}
		s.districtCache[key] = results
		s.applyDistrictResultsLocked(results)
	}()
}

func (s *Session) startSchoolFetchLocked(text, districtID string, key domain.QueryKey) {
	s.abortSchoolFetchLocked()
	gen := s.schoolGen
	ctx, cancel := context.WithCancel(s.ctx)
	s.schoolCancel = cancel
	s.schoolStatus = StatusSearching

	go func() {
		defer cancel()
		results, err := s.searcher.SearchSchools(ctx, text, districtID)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || gen != s.schoolGen {
			return
		}
		if err != nil {
			s.log.Debug("school fetch superseded", "query", text, "districtId", districtID, "err", err)
			return
		}
		s.schoolCache[key] = results
		s.applySchoolResultsLocked(results)
	}()
}

// applyDistrictResultsLocked installs a settled district result set and
// revalidates the selection against it. A selection that is no longer present
// is cleared, which cascades into the school pipeline because the filter it
// provided is gone.
func (s *Session) applyDistrictResultsLocked(ds []domain.District) {
	s.districts = ds
	s.districtStatus = StatusDone

	if s.selectedDistrict == nil {
		return
	}
	if m := findDistrict(ds, s.selectedDistrict); m != nil {
		c := m.Clone()
		s.selectedDistrict = &c
		return
	}
	s.selectedDistrict = nil
	s.selectedSchool = nil
	s.runSchoolPipelineLocked()
}

// applySchoolResultsLocked installs a settled school result set and
// revalidates the selection against it.
func (s *Session) applySchoolResultsLocked(ss []domain.School) {
	s.schools = ss
	s.schoolStatus = StatusDone

	if s.selectedSchool == nil {
		return
	}
	if m := findSchool(ss, s.selectedSchool); m != nil {
		c := m.Clone()
		s.selectedSchool = &c
		return
	}
	s.selectedSchool = nil
}

// findDistrict matches by LEAID when the selection has one, falling back to an
// exact name match for id-less records.
func findDistrict(ds []domain.District, sel *domain.District) *domain.District {
	for i := range ds {
		d := &ds[i]
		if sel.LEAID != nil {
			if d.LEAID != nil && *d.LEAID == *sel.LEAID {
				return d
			}
			continue
		}
		if d.LEAID == nil && equalStrPtr(d.Name, sel.Name) {
			return d
		}
	}
	return nil
}

// findSchool matches by NCESSCH when the selection has one, falling back to an
// exact name+city match for id-less records.
func findSchool(ss []domain.School, sel *domain.School) *domain.School {
	for i := range ss {
		sc := &ss[i]
		if sel.NCESSCH != nil {
			if sc.NCESSCH != nil && *sc.NCESSCH == *sel.NCESSCH {
				return sc
			}
			continue
		}
		if sc.NCESSCH == nil && equalStrPtr(sc.Name, sel.Name) && equalStrPtr(sc.City, sel.City) {
			return sc
		}
	}
	return nil
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
