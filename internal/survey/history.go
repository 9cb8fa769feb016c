package survey

import "github.com/nao1215/anonyreport/internal/model"

// History records the visited steps and the active position.
//
// Index 0 is always the entry step. Retreating only moves the position, so
// the forward branch stays available; advancing writes at position+1 and
// drops whatever stale branch followed it.
type History struct {
	steps    []model.StepID
	position int
}

// NewHistory creates a history holding only the entry step.
func NewHistory() *History {
	return &History{
		steps:    []model.StepID{model.EntryStep},
		position: 0,
	}
}

// Current returns the active step.
func (h *History) Current() model.StepID {
	return h.steps[h.position]
}

// Position returns the index of the active step.
func (h *History) Position() int {
	return h.position
}

// Len returns the number of recorded steps, including any forward branch
// kept after a retreat.
func (h *History) Len() int {
	return len(h.steps)
}

// Advance moves forward and records next at the new position.
// When next differs from the recorded forward step, the recorded branch
// beyond the new position is discarded.
func (h *History) Advance(next model.StepID) {
	h.position++
	if h.position < len(h.steps) {
		if h.steps[h.position] == next {
			return
		}
		h.steps = h.steps[:h.position]
	}
	h.steps = append(h.steps, next)
}

// Retreat moves back one step without touching the recorded steps.
// It reports false when already at the entry step.
func (h *History) Retreat() bool {
	if h.position == 0 {
		return false
	}
	h.position--
	return true
}

// Path returns the steps from the entry up to and including the active one.
func (h *History) Path() []model.StepID {
	out := make([]model.StepID, h.position+1)
	copy(out, h.steps[:h.position+1])
	return out
}
