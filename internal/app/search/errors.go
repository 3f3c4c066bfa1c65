package search

import "errors"

var (
	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrDistrictNotInResults is returned when a selection names a district
	// that is not part of the current visible result set.
	ErrDistrictNotInResults = errors.New("district not in current results")

	// ErrSchoolNotInResults is returned when a selection names a school that
	// is not part of the current visible result set.
	ErrSchoolNotInResults = errors.New("school not in current results")
)
