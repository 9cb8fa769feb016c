package survey

import (
	"fmt"

	"github.com/nao1215/anonyreport/internal/model"
)

// Surface is the visible input state of a step.
type Surface interface {
	// Groups returns the input groups that must be answered before leaving
	// step. Duplicates are allowed.
	Groups(step model.StepID) []model.Field

	// Selected reports whether the group has at least one selected value.
	Selected(field model.Field) bool
}

// Validator decides whether the visible step may be left.
type Validator struct{}

// NewValidator returns a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Check returns nil when every distinct input group on the step has a
// selection, or an error wrapping ErrIncompleteStep naming the first group
// that has none. A step without groups is complete.
func (v *Validator) Check(step model.StepID, surface Surface) error {
	seen := make(map[model.Field]bool)
	for _, field := range surface.Groups(step) {
		if seen[field] {
			continue
		}
		seen[field] = true
		if !surface.Selected(field) {
			return fmt.Errorf("%w: %s has no selection", ErrIncompleteStep, field)
		}
	}
	return nil
}

// Complete reports whether Check passes.
func (v *Validator) Complete(step model.StepID, surface Surface) bool {
	return v.Check(step, surface) == nil
}

// AnswerSurface adapts an AnswerSet to Surface using the questionnaire catalog.
// Only single-choice groups gate navigation; the location selects are
// checked by the submission coordinator instead.
type AnswerSurface struct {
	Answers *model.AnswerSet
}

// Groups returns the radio groups of the step's question.
func (s AnswerSurface) Groups(step model.StepID) []model.Field {
	q, ok := model.QuestionFor(step)
	if !ok {
		return nil
	}
	fields := make([]model.Field, 0, len(q.Groups))
	for _, g := range q.Groups {
		if g.Kind == model.InputRadio {
			fields = append(fields, g.Field)
		}
	}
	return fields
}

// Selected reports whether the field has been answered.
func (s AnswerSurface) Selected(field model.Field) bool {
	return s.Answers.Has(field)
}
