package domain

// DedupSchools removes duplicate school records merged from the two upstream
// catalogs, preserving first-seen order.
//
// Two records are duplicates when they share a non-empty NCESSCH. When either
// record lacks an identifier, they are duplicates when name, city and state
// all match exactly. Records with distinct identifiers are never merged, even
// with identical addresses.
func DedupSchools(ss []School) []School {
	out := make([]School, 0, len(ss))
	seenID := make(map[string]bool, len(ss))
	seenKeyAny := make(map[schoolKey]bool, len(ss))
	seenKeyNoID := make(map[schoolKey]bool)

	for _, s := range ss {
		k := keyFor(s)
		if id := strVal(s.NCESSCH); id != "" {
			// Matches an earlier record with the same id, or an earlier
			// id-less record at the same name/city/state.
			if seenID[id] || seenKeyNoID[k] {
				continue
			}
			seenID[id] = true
			seenKeyAny[k] = true
		} else {
			if seenKeyAny[k] {
				continue
			}
			seenKeyNoID[k] = true
			seenKeyAny[k] = true
		}
		out = append(out, s)
	}
	return out
}

type schoolKey struct {
	name  string
	city  string
	state string
}

func keyFor(s School) schoolKey {
	return schoolKey{
		name:  strVal(s.Name),
		city:  strVal(s.City),
		state: strVal(s.State),
	}
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
