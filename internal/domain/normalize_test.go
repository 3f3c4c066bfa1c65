package domain_test

import (
	"testing"

	"github.com/district-compass/school-search-api/internal/domain"
)

func TestNormalizeSchool_AliasOrderAndGeometryFallback(t *testing.T) {
	t.Parallel()

	attrs := map[string]any{
		"NCESSCH":  "080480000707",
		"LEAID":    "0804800",
		"SCH_NAME": "Lincoln Elementary",
		"LSTREET1": "915 Cook St",
		"LCITY":    "Denver",
		"LSTATE":   "CO",
		"LZIP":     80206.0, // numeric zip, as the public catalog sends it
		"NMCNTY":   "Denver County",
		"ULOCALE":  "11",
		"OBJECTID": 42.0,
	}
	s := domain.NormalizeSchool(attrs, &domain.Point{X: -104.95, Y: 39.73})

	if s.NCESSCH == nil || *s.NCESSCH != "080480000707" {
		t.Fatalf("ncessch=%v", s.NCESSCH)
	}
	if s.Name == nil || *s.Name != "Lincoln Elementary" {
		t.Fatalf("name=%v", s.Name)
	}
	if s.Zip == nil || *s.Zip != "80206" {
		t.Fatalf("zip=%v", s.Zip)
	}
	// No LAT/LON attributes: geometry point must fill both.
	if s.Latitude == nil || *s.Latitude != 39.73 {
		t.Fatalf("lat=%v", s.Latitude)
	}
	if s.Longitude == nil || *s.Longitude != -104.95 {
		t.Fatalf("lon=%v", s.Longitude)
	}
	if s.ObjectID == nil || *s.ObjectID != 42 {
		t.Fatalf("objectid=%v", s.ObjectID)
	}
}

func TestNormalizeSchool_AttributeLatLonWinsOverGeometry(t *testing.T) {
	t.Parallel()

	attrs := map[string]any{
		"NAME": "Hillside Middle",
		"LAT":  40.1,
		"LON":  -111.6,
	}
	s := domain.NormalizeSchool(attrs, &domain.Point{X: -1, Y: -1})
	if s.Latitude == nil || *s.Latitude != 40.1 {
		t.Fatalf("lat=%v", s.Latitude)
	}
	if s.Longitude == nil || *s.Longitude != -111.6 {
		t.Fatalf("lon=%v", s.Longitude)
	}
}

func TestNormalizeSchool_MalformedAndMissingFieldsYieldNil(t *testing.T) {
	t.Parallel()

	attrs := map[string]any{
		"NCESSCH": "   ",
		"NAME":    nil,
		"LAT":     "not-a-number",
		"LZIP":    []string{"nope"},
	}
	s := domain.NormalizeSchool(attrs, nil)
	if s.NCESSCH != nil || s.Name != nil || s.Latitude != nil || s.Zip != nil {
		t.Fatalf("expected nil fields, got %+v", s)
	}
}

func TestNormalizeDistrict_NameFallsBackToSynthesizedLabel(t *testing.T) {
	t.Parallel()

	d := domain.NormalizeDistrict(map[string]any{"LEAID": "4900087"})
	if d.Name == nil || *d.Name != "District 4900087" {
		t.Fatalf("name=%v", d.Name)
	}

	d = domain.NormalizeDistrict(map[string]any{"LEAID": "4900087", "LEA_NAME": "Ogden City District"})
	if d.Name == nil || *d.Name != "Ogden City District" {
		t.Fatalf("name=%v", d.Name)
	}

	// No identifier and no name: nothing to synthesize from.
	d = domain.NormalizeDistrict(map[string]any{"LCITY": "Ogden"})
	if d.Name != nil {
		t.Fatalf("name=%v", d.Name)
	}
}
