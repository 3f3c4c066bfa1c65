package domain

// NCESSCH is the National Center for Education Statistics school identifier.
// It is the canonical school identity across both upstream catalogs.
type NCESSCH = string

// LEAID is the Local Education Agency identifier — the canonical district identity.
type LEAID = string

// SearchField names one of the two independent search pipelines.
type SearchField string

const (
	FieldDistrict SearchField = "district"
	FieldSchool   SearchField = "school"
)
