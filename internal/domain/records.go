package domain

import "strconv"

// Point is a WGS84 coordinate pair as returned by the upstream geometry objects
// (x = longitude, y = latitude).
type Point struct {
	X float64
	Y float64
}

// School is the canonical school record produced by normalization.
//
// Every field is best-effort: the two upstream catalogs disagree on schema and
// omit fields freely, so nothing here is guaranteed present. Records are
// treated as immutable once built; hand-offs go through Clone.
type School struct {
	// NCESSCH is the preferred dedup key; nil when the source omits it.
	NCESSCH *string
	LEAID   *string

	Name   *string
	Street *string
	City   *string
	State  *string
	Zip    *string

	County     *string
	CountyFIPS *string
	Locale     *string

	Latitude  *float64
	Longitude *float64

	// ObjectID is the source-assigned row id. It is only meaningful for
	// display fallbacks when NCESSCH is absent; it is never a dedup key.
	ObjectID *int
}

// District is the canonical district record produced by normalization.
// Same best-effort/immutability rules as School.
type District struct {
	LEAID *string

	Name   *string
	Street *string
	City   *string
	State  *string
	Zip    *string

	StateFIPS  *string
	County     *string
	CountyFIPS *string

	Latitude  *float64
	Longitude *float64

	ObjectID *int
}

// Marker is the point shape consumed by the map-display collaborator.
type Marker struct {
	ID        string
	Latitude  float64
	Longitude float64
	Label     string
}

// MarkerForSchool builds the map marker for a school, or ok=false when the
// school has no usable coordinates.
func MarkerForSchool(s School) (Marker, bool) {
	if s.Latitude == nil || s.Longitude == nil {
		return Marker{}, false
	}
	m := Marker{
		Latitude:  *s.Latitude,
		Longitude: *s.Longitude,
	}
	switch {
	case s.NCESSCH != nil:
		m.ID = *s.NCESSCH
	case s.ObjectID != nil:
		m.ID = strconv.Itoa(*s.ObjectID)
	}
	if s.Name != nil {
		m.Label = *s.Name
	}
	return m, true
}

func (s School) Clone() School {
	cp := s
	cp.NCESSCH = cloneStringPtr(s.NCESSCH)
	cp.LEAID = cloneStringPtr(s.LEAID)
	cp.Name = cloneStringPtr(s.Name)
	cp.Street = cloneStringPtr(s.Street)
	cp.City = cloneStringPtr(s.City)
	cp.State = cloneStringPtr(s.State)
	cp.Zip = cloneStringPtr(s.Zip)
	cp.County = cloneStringPtr(s.County)
	cp.CountyFIPS = cloneStringPtr(s.CountyFIPS)
	cp.Locale = cloneStringPtr(s.Locale)
	cp.Latitude = cloneFloatPtr(s.Latitude)
	cp.Longitude = cloneFloatPtr(s.Longitude)
	cp.ObjectID = cloneIntPtr(s.ObjectID)
	return cp
}

func (d District) Clone() District {
	cp := d
	cp.LEAID = cloneStringPtr(d.LEAID)
	cp.Name = cloneStringPtr(d.Name)
	cp.Street = cloneStringPtr(d.Street)
	cp.City = cloneStringPtr(d.City)
	cp.State = cloneStringPtr(d.State)
	cp.Zip = cloneStringPtr(d.Zip)
	cp.StateFIPS = cloneStringPtr(d.StateFIPS)
	cp.County = cloneStringPtr(d.County)
	cp.CountyFIPS = cloneStringPtr(d.CountyFIPS)
	cp.Latitude = cloneFloatPtr(d.Latitude)
	cp.Longitude = cloneFloatPtr(d.Longitude)
	cp.ObjectID = cloneIntPtr(d.ObjectID)
	return cp
}

func CloneSchools(ss []School) []School {
	if ss == nil {
		return nil
	}
	out := make([]School, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.Clone())
	}
	return out
}

func CloneDistricts(ds []District) []District {
	if ds == nil {
		return nil
	}
	out := make([]District, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Clone())
	}
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
