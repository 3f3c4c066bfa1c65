package contracttest

import (
	"context"
	"testing"
	"time"

	"github.com/district-compass/school-search-api/internal/domain"
	querylogport "github.com/district-compass/school-search-api/internal/ports/out/querylog"
)

type CleanupFunc = func()

type QueryLogStoreFactory func(t *testing.T) (querylogport.Store, CleanupFunc)

// RunQueryLogStore verifies querylog.Store semantics shared by all adapters:
// append-only recording, newest-first reads, and limit handling.
func RunQueryLogStore(t *testing.T, newStore QueryLogStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	base := time.Unix(1000, 0).UTC()
	entries := []querylogport.Entry{
		{At: base, Field: domain.FieldDistrict, Query: "Ogden", ResultCount: 3, Duration: 120 * time.Millisecond},
		{At: base.Add(time.Second), Field: domain.FieldSchool, Query: "Lincoln", DistrictID: "4900087", ResultCount: 1, Duration: 80 * time.Millisecond},
		{At: base.Add(2 * time.Second), Field: domain.FieldSchool, Query: "", DistrictID: "4900087", ResultCount: 12, Duration: 95 * time.Millisecond},
	}
	for _, e := range entries {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len=%d", len(got))
	}
	// Newest first.
	if got[0].ResultCount != 12 || got[1].Query != "Lincoln" {
		t.Fatalf("got=%+v", got)
	}
	if got[1].DistrictID != "4900087" || got[1].Field != domain.FieldSchool {
		t.Fatalf("got[1]=%+v", got[1])
	}

	// Limit beyond size returns everything.
	got, err = store.Recent(ctx, 50)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len=%d", len(got))
	}
	if !got[2].At.Equal(base) {
		t.Fatalf("oldest at=%v", got[2].At)
	}
}
