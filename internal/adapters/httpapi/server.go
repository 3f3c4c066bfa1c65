package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"

	"github.com/district-compass/school-search-api/internal/app/search"
	"github.com/district-compass/school-search-api/internal/app/sessions"
	querylogport "github.com/district-compass/school-search-api/internal/ports/out/querylog"
)

const maxBodyBytes = 1 << 20

// Server is the HTTP adapter: stateless search endpoints backed by the
// executor, and stateful session endpoints backed by the registry.
type Server struct {
	searcher search.Searcher
	registry *sessions.Registry
	queryLog querylogport.Store

	mapAPIKey string
	log       *slog.Logger
}

func NewServer(searcher search.Searcher, registry *sessions.Registry, queryLog querylogport.Store, mapAPIKey string, log *slog.Logger) *Server {
	return &Server{
		searcher:  searcher,
		registry:  registry,
		queryLog:  queryLog,
		mapAPIKey: mapAPIKey,
		log:       log,
	}
}

func (s *Server) handleSearchDistricts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	ds, err := s.searcher.SearchDistricts(r.Context(), q)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, districtListResponse{Districts: districtsFromDomain(ds)})
}

func (s *Server) handleSearchSchools(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	districtID := r.URL.Query().Get("districtId")
	ss, err := s.searcher.SearchSchools(r.Context(), q, districtID)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, schoolListResponse{Schools: schoolsFromDomain(ss)})
}

func (s *Server) handleRecentQueries(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid limit",
				map[string]any{"limit": "must be a positive integer"})
			return
		}
		limit = min(n, 500)
	}

	es, err := s.queryLog.Recent(r.Context(), limit)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, queryLogResponse{Queries: queryLogEntriesFromDomain(es)})
}

func (s *Server) handleMapConfig(w http.ResponseWriter, r *http.Request) {
	resp := mapConfigResponse{APIKey: nullable.NewNullNullable[string]()}
	if s.mapAPIKey != "" {
		resp.APIKey = nullable.NewNullableWithValue(s.mapAPIKey)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	info, _ := s.registry.Create()
	writeJSON(w, http.StatusCreated, sessionCreatedResponse{
		SessionID: info.ID,
		CreatedAt: info.CreatedAt,
		ExpiresAt: info.ExpiresAt,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.registry.Get(id)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStateFromDomain(id, sess.Snapshot()))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.registry.Delete(id); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutDistrictInput(w http.ResponseWriter, r *http.Request) {
	s.handleInput(w, r, func(sess *search.Session, text string) error {
		return sess.SetDistrictInput(text)
	})
}

func (s *Server) handlePutSchoolInput(w http.ResponseWriter, r *http.Request) {
	s.handleInput(w, r, func(sess *search.Session, text string) error {
		return sess.SetSchoolInput(text)
	})
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request, apply func(*search.Session, string) error) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.registry.Get(id)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}

	var body inputRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := apply(sess, body.Text); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStateFromDomain(id, sess.Snapshot()))
}

func (s *Server) handlePutDistrictSelection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.registry.Get(id)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}

	var body districtSelectionRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	leaid, ok := selectionValue(w, r, body.Leaid, "leaid")
	if !ok {
		return
	}
	if err := sess.SelectDistrict(leaid); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStateFromDomain(id, sess.Snapshot()))
}

func (s *Server) handlePutSchoolSelection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.registry.Get(id)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}

	var body schoolSelectionRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	ncessch, ok := selectionValue(w, r, body.Ncessch, "ncessch")
	if !ok {
		return
	}
	if err := sess.SelectSchool(ncessch); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStateFromDomain(id, sess.Snapshot()))
}

// selectionValue resolves a nullable selection id: explicit null clears the
// selection (empty string), a value selects, and an unspecified field is a
// validation error.
func selectionValue(w http.ResponseWriter, r *http.Request, n nullable.Nullable[string], field string) (string, bool) {
	if !n.IsSpecified() {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing "+field,
			map[string]any{field: "must be a string or null"})
		return "", false
	}
	if n.IsNull() {
		return "", true
	}
	v, err := n.Get()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid "+field, nil)
		return "", false
	}
	if v == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid "+field,
			map[string]any{field: "must be non-empty; use null to clear"})
		return "", false
	}
	return v, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large", nil)
			return false
		}
		writeError(w, r, http.StatusBadRequest, "INVALID_JSON", "malformed request body", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
