package survey

import (
	"fmt"

	"github.com/nao1215/anonyreport/internal/model"
)

// linear holds the steps that always continue to the same next step.
var linear = map[model.StepID]model.StepID{
	model.StepWitness:        model.StepLocation,
	model.StepTimeElapsed:    model.StepHowEnded,
	model.StepHowEnded:       model.StepSector,
	model.StepFrequency:      model.StepAmount,
	model.StepAmount:         model.StepGang,
	model.StepGang:           model.StepAttacks,
	model.StepAttacks:        model.StepEvidence,
	model.StepEvidence:       model.StepReported,
	model.StepHowReported:    model.StepReportOutcome,
	model.StepReportOutcome:  model.StepLocation,
	model.StepWhyNotReported: model.StepLocation,
}

// NextStep returns the step that follows current given the answers so far.
//
// ok is false when there is no next step: current is the location step, or
// the answer that decides a branch is missing or not one of the expected
// values. Callers treat that as "not ready to advance"; there is no default
// branch. An identifier outside the questionnaire yields ErrUnknownStep.
//
// NextStep only reads answers.
func NextStep(current model.StepID, answers *model.AnswerSet) (next model.StepID, ok bool, err error) {
	if to, found := linear[current]; found {
		return to, true, nil
	}

	switch current {
	case model.StepVictim:
		switch answers.Get(model.FieldVictim) {
		case model.VictimCurrent:
			return model.StepSector, true, nil
		case model.VictimPast:
			return model.StepTimeElapsed, true, nil
		case model.VictimNone:
			return model.StepWitness, true, nil
		}
		return "", false, nil

	case model.StepSector:
		// Only current victims are asked how often they pay.
		switch answers.Get(model.FieldVictim) {
		case model.VictimCurrent:
			return model.StepFrequency, true, nil
		case model.VictimPast:
			return model.StepAmount, true, nil
		}
		return "", false, nil

	case model.StepReported:
		switch answers.Get(model.FieldReported) {
		case model.Yes:
			return model.StepHowReported, true, nil
		case model.No:
			return model.StepWhyNotReported, true, nil
		}
		return "", false, nil

	case model.StepLocation:
		return "", false, nil
	}

	return "", false, fmt.Errorf("%w: %q", ErrUnknownStep, string(current))
}

// Successors returns every step reachable from step in one transition,
// regardless of answers. The location step has none.
func Successors(step model.StepID) ([]model.StepID, error) {
	if to, found := linear[step]; found {
		return []model.StepID{to}, nil
	}

	switch step {
	case model.StepVictim:
		return []model.StepID{model.StepSector, model.StepTimeElapsed, model.StepWitness}, nil
	case model.StepSector:
		return []model.StepID{model.StepFrequency, model.StepAmount}, nil
	case model.StepReported:
		return []model.StepID{model.StepHowReported, model.StepWhyNotReported}, nil
	case model.StepLocation:
		return nil, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownStep, string(step))
}
