package model

import (
	"time"
)

// SourceChannel tags every submission made by this client.
const SourceChannel = "cli"

// isoMillis matches the timestamp layout the collection backend expects
// (ISO-8601, UTC, millisecond precision).
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Session is the per-respondent context attached to every submission attempt.
type Session struct {
	// Token is the random session identifier persisted across runs.
	Token string

	// Started is when the respondent began the questionnaire.
	Started time.Time
}

// NewSession creates a session starting at the given time.
func NewSession(token string, started time.Time) Session {
	return Session{Token: token, Started: started}
}

// Elapsed returns the milliseconds between Started and now.
func (s Session) Elapsed(now time.Time) int64 {
	d := now.Sub(s.Started)
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}

// SubmissionRecord is the payload sent once to the collection endpoint.
// Answer fields that were never answered are encoded as JSON null.
type SubmissionRecord struct {
	Token   string `json:"token"`
	Elapsed int64  `json:"elapsed"`
	Website string `json:"website"`

	EsVictima         *string `json:"esVictima"`
	EsTestigo         *string `json:"esTestigo"`
	TiempoPasado      *string `json:"tiempoPasado"`
	ComoTermino       *string `json:"comoTermino"`
	Rubro             *string `json:"rubro"`
	Frecuencia        *string `json:"frecuencia"`
	Monto             *string `json:"monto"`
	Banda             *string `json:"banda"`
	Atentado          *string `json:"atentado"`
	TieneEvidencias   *string `json:"tieneEvidencias"`
	PusoDenuncia      *string `json:"pusoDenuncia"`
	ComoDenuncia      *string `json:"comoDenuncia"`
	ResultadoDenuncia *string `json:"resultadoDenuncia"`
	PorqueNoDenuncia  *string `json:"porqueNoDenuncia"`

	Departamento string `json:"departamento"`
	Provincia    string `json:"provincia"`
	Distrito     string `json:"distrito"`

	DateBucket    string `json:"dateBucket"`
	SourceChannel string `json:"sourceChannel"`
}

// NewSubmissionRecord snapshots answers and session at time now.
// The answer set is read, never retained.
func NewSubmissionRecord(answers *AnswerSet, session Session, now time.Time) SubmissionRecord {
	optional := func(f Field) *string {
		v := answers.Get(f)
		if v == "" {
			return nil
		}
		return &v
	}

	return SubmissionRecord{
		Token:   session.Token,
		Elapsed: session.Elapsed(now),
		Website: answers.Get(FieldHoneypot),

		EsVictima:         optional(FieldVictim),
		EsTestigo:         optional(FieldWitness),
		TiempoPasado:      optional(FieldTimeElapsed),
		ComoTermino:       optional(FieldHowEnded),
		Rubro:             optional(FieldSector),
		Frecuencia:        optional(FieldFrequency),
		Monto:             optional(FieldAmount),
		Banda:             optional(FieldGang),
		Atentado:          optional(FieldAttack),
		TieneEvidencias:   optional(FieldEvidence),
		PusoDenuncia:      optional(FieldReported),
		ComoDenuncia:      optional(FieldHowReported),
		ResultadoDenuncia: optional(FieldReportOutcome),
		PorqueNoDenuncia:  optional(FieldWhyNotReported),

		Departamento: answers.Get(FieldDepartment),
		Provincia:    answers.Get(FieldProvince),
		Distrito:     answers.Get(FieldDistrict),

		DateBucket:    now.UTC().Format(isoMillis),
		SourceChannel: SourceChannel,
	}
}

// Answer returns the recorded value of an answer field and whether it was set.
func (r SubmissionRecord) Answer(f Field) (string, bool) {
	var p *string
	switch f {
	case FieldVictim:
		p = r.EsVictima
	case FieldWitness:
		p = r.EsTestigo
	case FieldTimeElapsed:
		p = r.TiempoPasado
	case FieldHowEnded:
		p = r.ComoTermino
	case FieldSector:
		p = r.Rubro
	case FieldFrequency:
		p = r.Frecuencia
	case FieldAmount:
		p = r.Monto
	case FieldGang:
		p = r.Banda
	case FieldAttack:
		p = r.Atentado
	case FieldEvidence:
		p = r.TieneEvidencias
	case FieldReported:
		p = r.PusoDenuncia
	case FieldHowReported:
		p = r.ComoDenuncia
	case FieldReportOutcome:
		p = r.ResultadoDenuncia
	case FieldWhyNotReported:
		p = r.PorqueNoDenuncia
	case FieldDepartment:
		return r.Departamento, r.Departamento != ""
	case FieldProvince:
		return r.Provincia, r.Provincia != ""
	case FieldDistrict:
		return r.Distrito, r.Distrito != ""
	}
	if p == nil {
		return "", false
	}
	return *p, true
}
