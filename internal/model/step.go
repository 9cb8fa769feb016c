package model

// StepID names one question screen of the questionnaire.
// The set of identifiers is fixed at build time; the string values match the
// identifiers used by the collection backend and the original web form.
type StepID string

// Questionnaire steps.
const (
	// StepVictim asks whether the respondent is a current, past, or non-victim.
	StepVictim StepID = "1"

	// StepWitness asks a non-victim whether they witnessed extortion.
	StepWitness StepID = "2-no"

	// StepTimeElapsed asks a past victim how long ago the extortion stopped.
	StepTimeElapsed StepID = "2-tiempo-pasado"

	// StepHowEnded asks a past victim how the extortion ended.
	StepHowEnded StepID = "3-pasado"

	// StepSector asks for the business sector (rubro) that was targeted.
	StepSector StepID = "3"

	// StepFrequency asks a current victim how often they are forced to pay.
	StepFrequency StepID = "4"

	// StepAmount asks how much is demanded per payment.
	StepAmount StepID = "5"

	// StepGang asks whether the extorting gang identified itself.
	StepGang StepID = "6"

	// StepAttacks asks whether there were attacks or threats of violence.
	StepAttacks StepID = "7"

	// StepEvidence asks whether the respondent holds evidence.
	StepEvidence StepID = "8"

	// StepReported asks whether a police report was filed.
	StepReported StepID = "9"

	// StepHowReported asks how the report was filed.
	StepHowReported StepID = "10-si-denuncia"

	// StepWhyNotReported asks why no report was filed.
	StepWhyNotReported StepID = "10-no-denuncia"

	// StepReportOutcome asks what happened after the report was filed.
	StepReportOutcome StepID = "11"

	// StepLocation asks for department, province and district.
	// It is the only terminal step.
	StepLocation StepID = "ubicacion"
)

// EntryStep is the fixed first entry of every navigation history.
const EntryStep = StepVictim

// LocationStep is the terminal step where submission becomes available.
const LocationStep = StepLocation

// steps lists every step in questionnaire order.
var steps = []StepID{
	StepVictim,
	StepWitness,
	StepTimeElapsed,
	StepHowEnded,
	StepSector,
	StepFrequency,
	StepAmount,
	StepGang,
	StepAttacks,
	StepEvidence,
	StepReported,
	StepHowReported,
	StepWhyNotReported,
	StepReportOutcome,
	StepLocation,
}

// Steps returns every defined step in questionnaire order.
// The returned slice is a copy and may be modified by the caller.
func Steps() []StepID {
	out := make([]StepID, len(steps))
	copy(out, steps)
	return out
}

// Valid reports whether s is one of the defined steps.
func (s StepID) Valid() bool {
	for _, known := range steps {
		if s == known {
			return true
		}
	}
	return false
}

// String returns the raw identifier.
func (s StepID) String() string {
	return string(s)
}

// IsTerminal reports whether s is the last step of every path.
func (s StepID) IsTerminal() bool {
	return s == LocationStep
}
