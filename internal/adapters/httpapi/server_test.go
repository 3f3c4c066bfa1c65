package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	memsource "github.com/district-compass/school-search-api/internal/adapters/memory/featuresource"
	memquerylog "github.com/district-compass/school-search-api/internal/adapters/memory/querylog"
	"github.com/district-compass/school-search-api/internal/app/search"
	"github.com/district-compass/school-search-api/internal/app/sessions"
	platformclock "github.com/district-compass/school-search-api/internal/platform/clock"
	port "github.com/district-compass/school-search-api/internal/ports/out/featuresource"
)

type harness struct {
	ts       *httptest.Server
	registry *sessions.Registry
}

func newHarness(t *testing.T, apiToken, mapKey string) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := platformclock.NewSystemClock()

	districts := memsource.NewSource("private-districts", "NAME", "", []port.Feature{
		{Attributes: map[string]any{"LEAID": "0803360", "NAME": "Denver County 1"}},
		{Attributes: map[string]any{"LEAID": "0800001", "NAME": "Adams County 14"}},
	})
	schools := memsource.NewSource("private-schools", "NAME", "LEAID", []port.Feature{
		{Attributes: map[string]any{"NCESSCH": "111", "LEAID": "0803360", "NAME": "Lincoln Elementary", "LCITY": "Denver", "LSTATE": "CO", "LAT": 39.7, "LON": -104.9}},
		{Attributes: map[string]any{"NCESSCH": "222", "LEAID": "0800001", "NAME": "Lincoln High", "LCITY": "Commerce City", "LSTATE": "CO"}},
	})

	queryLog := memquerylog.NewStore()
	executor := search.NewExecutor(
		[]port.Source{districts},
		[]port.Source{schools},
		queryLog, clk, log,
	)
	registry := sessions.NewRegistry(func() *search.Session {
		return search.NewSession(executor, search.SessionConfig{
			DebounceInterval: 10 * time.Millisecond,
			MinQueryLength:   2,
		}, log)
	}, clk, log, time.Minute)
	t.Cleanup(registry.Close)

	srv := NewServer(executor, registry, queryLog, mapKey, log)
	ts := httptest.NewServer(NewRouter(srv, log, apiToken))
	t.Cleanup(ts.Close)
	return &harness{ts: ts, registry: registry}
}

func (h *harness) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, h.ts.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, b
}

func (h *harness) createSession(t *testing.T) string {
	t.Helper()
	resp, b := h.do(t, http.MethodPost, "/v1/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status %d body %s", resp.StatusCode, b)
	}
	var out sessionCreatedResponse
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.SessionID == "" {
		t.Fatal("empty session id")
	}
	return out.SessionID
}

func (h *harness) sessionState(t *testing.T, id string) sessionStateResponse {
	t.Helper()
	resp, b := h.do(t, http.MethodGet, "/v1/sessions/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get session: status %d body %s", resp.StatusCode, b)
	}
	var st sessionStateResponse
	if err := json.Unmarshal(b, &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return st
}

func (h *harness) waitForStatus(t *testing.T, id, field, want string) sessionStateResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st := h.sessionState(t, id)
		got := st.DistrictStatus
		if field == "school" {
			got = st.SchoolStatus
		}
		if got == want {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("%s status never reached %s", field, want)
	return sessionStateResponse{}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "", "")

	resp, b := h.do(t, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK || string(b) != "ok" {
		t.Fatalf("status %d body %q", resp.StatusCode, b)
	}
}

func TestAuthToken(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "sekrit", "")

	resp, _ := h.do(t, http.MethodGet, "/v1/districts?q=denver", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, h.ts.URL+"/v1/districts?q=denver", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", resp2.StatusCode)
	}

	// Probes stay open.
	resp3, _ := h.do(t, http.MethodGet, "/healthz", nil)
	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", resp3.StatusCode)
	}
}

func TestSearchDistrictsEndpoint(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "", "")

	resp, b := h.do(t, http.MethodGet, "/v1/districts?q=denver", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d body %s", resp.StatusCode, b)
	}
	var out districtListResponse
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Districts) != 1 || *out.Districts[0].Leaid != "0803360" {
		t.Fatalf("districts = %+v", out.Districts)
	}

	// Sub-minimum query is an empty result, not an error.
	resp, b = h.do(t, http.MethodGet, "/v1/districts?q=d", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d body %s", resp.StatusCode, b)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Districts) != 0 {
		t.Fatalf("districts = %+v, want empty", out.Districts)
	}
}

func TestSearchSchoolsEndpoint(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "", "")

	resp, b := h.do(t, http.MethodGet, "/v1/schools?q=lincoln&districtId=0800001", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d body %s", resp.StatusCode, b)
	}
	var out schoolListResponse
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Schools) != 1 || *out.Schools[0].Ncessch != "222" {
		t.Fatalf("schools = %+v", out.Schools)
	}
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "", "")
	id := h.createSession(t)

	st := h.sessionState(t, id)
	if st.DistrictStatus != "NOT_SEARCHED" || st.SchoolStatus != "NOT_SEARCHED" {
		t.Fatalf("fresh session statuses = %s/%s", st.DistrictStatus, st.SchoolStatus)
	}

	resp, b := h.do(t, http.MethodPut, "/v1/sessions/"+id+"/district-input", inputRequest{Text: "denver"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put input: status %d body %s", resp.StatusCode, b)
	}
	st = h.waitForStatus(t, id, "district", "DONE")
	if len(st.Districts) != 1 || *st.Districts[0].Leaid != "0803360" {
		t.Fatalf("districts = %+v", st.Districts)
	}

	resp, b = h.do(t, http.MethodPut, "/v1/sessions/"+id+"/district-selection", map[string]any{"leaid": "0803360"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select district: status %d body %s", resp.StatusCode, b)
	}
	st = h.waitForStatus(t, id, "school", "DONE")
	if st.SelectedDistrict == nil || *st.SelectedDistrict.Leaid != "0803360" {
		t.Fatalf("selected district = %+v", st.SelectedDistrict)
	}
	if len(st.Schools) != 1 || *st.Schools[0].Ncessch != "111" {
		t.Fatalf("schools = %+v, want district's schools", st.Schools)
	}

	resp, b = h.do(t, http.MethodPut, "/v1/sessions/"+id+"/school-selection", map[string]any{"ncessch": "111"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select school: status %d body %s", resp.StatusCode, b)
	}
	st = h.sessionState(t, id)
	if st.SelectedSchool == nil || *st.SelectedSchool.Ncessch != "111" {
		t.Fatalf("selected school = %+v", st.SelectedSchool)
	}
	if st.MapView == nil || len(st.MapView.Markers) != 1 || st.MapView.Markers[0].ID != "111" {
		t.Fatalf("map view = %+v", st.MapView)
	}

	// Explicit null clears the selection.
	resp, b = h.do(t, http.MethodPut, "/v1/sessions/"+id+"/school-selection", map[string]any{"ncessch": nil})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear school: status %d body %s", resp.StatusCode, b)
	}
	if st = h.sessionState(t, id); st.SelectedSchool != nil {
		t.Fatalf("selected school = %+v, want cleared", st.SelectedSchool)
	}

	resp, _ = h.do(t, http.MethodDelete, "/v1/sessions/"+id, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	resp, b = h.do(t, http.MethodGet, "/v1/sessions/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted: status %d body %s", resp.StatusCode, b)
	}
	var er errorResponse
	if err := json.Unmarshal(b, &er); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if er.Error.Code != "SESSION_NOT_FOUND" {
		t.Fatalf("code = %q", er.Error.Code)
	}
	if !er.Error.RequestID.IsSpecified() {
		t.Fatal("error envelope missing requestId")
	}
}

func TestSelectionValidation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "", "")
	id := h.createSession(t)

	resp, b := h.do(t, http.MethodPut, "/v1/sessions/"+id+"/district-selection", map[string]any{"leaid": "nope"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d body %s", resp.StatusCode, b)
	}
	var er errorResponse
	if err := json.Unmarshal(b, &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != "SELECTION_NOT_IN_RESULTS" {
		t.Fatalf("code = %q", er.Error.Code)
	}

	// Body without the field at all is a validation error, not a clear.
	resp, b = h.do(t, http.MethodPut, "/v1/sessions/"+id+"/district-selection", map[string]any{})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d body %s", resp.StatusCode, b)
	}
}

func TestMapConfig(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "", "key-123")
	resp, b := h.do(t, http.MethodGet, "/v1/map/config", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d body %s", resp.StatusCode, b)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["apiKey"] != "key-123" {
		t.Fatalf("apiKey = %v", out["apiKey"])
	}

	bare := newHarness(t, "", "")
	_, b = bare.do(t, http.MethodGet, "/v1/map/config", nil)
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, present := out["apiKey"]; !present || v != nil {
		t.Fatalf("apiKey = %v, want explicit null", v)
	}
}

func TestRecentQueries(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "", "")

	h.do(t, http.MethodGet, "/v1/districts?q=denver", nil)

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, b := h.do(t, http.MethodGet, "/v1/queries/recent?limit=10", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d body %s", resp.StatusCode, b)
		}
		var out queryLogResponse
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(out.Queries) > 0 {
			if out.Queries[0].Query != "denver" || out.Queries[0].Field != "district" {
				t.Fatalf("entry = %+v", out.Queries[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("query log never recorded the search")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
