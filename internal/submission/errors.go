package submission

import "errors"

var (
	// ErrLocationMissing is returned when a location field is empty.
	// No request is made.
	ErrLocationMissing = errors.New("location is incomplete")

	// ErrSubmitInFlight is returned while a previous attempt has not finished.
	ErrSubmitInFlight = errors.New("submission already in progress")
)
