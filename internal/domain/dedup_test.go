package domain_test

import (
	"testing"

	"github.com/district-compass/school-search-api/internal/domain"
)

func strp(s string) *string { return &s }

func TestDedupSchools_SharedIdentifierCollapses(t *testing.T) {
	t.Parallel()

	a := domain.School{NCESSCH: strp("111"), Name: strp("Lincoln Elementary")}
	b := domain.School{NCESSCH: strp("111"), Name: strp("Lincoln Elem."), ObjectID: intp(9)}
	out := domain.DedupSchools([]domain.School{a, b})
	if len(out) != 1 {
		t.Fatalf("len=%d", len(out))
	}
	// First occurrence wins.
	if *out[0].Name != "Lincoln Elementary" {
		t.Fatalf("name=%s", *out[0].Name)
	}
}

func TestDedupSchools_DistinctIdentifiersNeverMerge(t *testing.T) {
	t.Parallel()

	a := domain.School{NCESSCH: strp("1"), Name: strp("Lincoln"), City: strp("Denver"), State: strp("CO")}
	b := domain.School{NCESSCH: strp("2"), Name: strp("Lincoln"), City: strp("Denver"), State: strp("CO")}
	out := domain.DedupSchools([]domain.School{a, b})
	if len(out) != 2 {
		t.Fatalf("len=%d", len(out))
	}
}

func TestDedupSchools_MissingIdentifierFallsBackToNameCityState(t *testing.T) {
	t.Parallel()

	a := domain.School{Name: strp("Lincoln"), City: strp("Denver"), State: strp("CO")}
	b := domain.School{Name: strp("Lincoln"), City: strp("Denver"), State: strp("CO")}
	c := domain.School{Name: strp("Lincoln"), City: strp("Boulder"), State: strp("CO")}
	out := domain.DedupSchools([]domain.School{a, b, c})
	if len(out) != 2 {
		t.Fatalf("len=%d", len(out))
	}
}

func TestDedupSchools_IdentifiedAndUnidentifiedPairMergesOnAddressKey(t *testing.T) {
	t.Parallel()

	withID := domain.School{NCESSCH: strp("5"), Name: strp("Hill"), City: strp("Ogden"), State: strp("UT")}
	noID := domain.School{Name: strp("Hill"), City: strp("Ogden"), State: strp("UT")}

	out := domain.DedupSchools([]domain.School{withID, noID})
	if len(out) != 1 || out[0].NCESSCH == nil {
		t.Fatalf("out=%+v", out)
	}

	// Same pair, reversed order: the id-less record was seen first and wins.
	out = domain.DedupSchools([]domain.School{noID, withID})
	if len(out) != 1 || out[0].NCESSCH != nil {
		t.Fatalf("out=%+v", out)
	}
}

func TestDedupSchools_PreservesOrder(t *testing.T) {
	t.Parallel()

	in := []domain.School{
		{NCESSCH: strp("3"), Name: strp("C")},
		{NCESSCH: strp("1"), Name: strp("A")},
		{NCESSCH: strp("2"), Name: strp("B")},
		{NCESSCH: strp("1"), Name: strp("A dup")},
	}
	out := domain.DedupSchools(in)
	if len(out) != 3 {
		t.Fatalf("len=%d", len(out))
	}
	for i, want := range []string{"C", "A", "B"} {
		if *out[i].Name != want {
			t.Fatalf("out[%d]=%s want %s", i, *out[i].Name, want)
		}
	}
}

func intp(n int) *int { return &n }
