package survey

import "errors"

// Navigation errors.
// Callers match them with errors.Is; wrapped errors carry the offending step or field.
var (
	// ErrUnknownStep is returned when the step graph is asked about an
	// identifier outside the questionnaire.
	ErrUnknownStep = errors.New("unknown step")

	// ErrIncompleteStep is returned when a required input group on the
	// visible step has no selection. It never leaves the client.
	ErrIncompleteStep = errors.New("step is incomplete")

	// ErrInvalidAnswer is returned when an answer names a field that is not on
	// the visible step or a value that is not one of its options.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrBusy is returned when a navigation or submit intent arrives while
	// the same operation is still in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrNotAtLocation is returned when submission is requested before the
	// respondent reached the location step.
	ErrNotAtLocation = errors.New("submission is only available on the location step")

	// ErrSessionComplete is returned for intents received after a successful submission.
	ErrSessionComplete = errors.New("response already submitted")
)
