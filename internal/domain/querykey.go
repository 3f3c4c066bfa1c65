package domain

import "strings"

// QueryKey identifies one logical search: the field being searched, the
// trimmed query text, and the district filter applied to school queries.
// Two keys are equal iff all components match exactly (case-sensitive).
// It is the cache index and the cancellation-scope discriminator.
type QueryKey struct {
	Field      SearchField
	Text       string
	DistrictID string
}

func NewQueryKey(field SearchField, text, districtID string) QueryKey {
	return QueryKey{
		Field:      field,
		Text:       strings.TrimSpace(text),
		DistrictID: districtID,
	}
}
