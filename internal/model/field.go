package model

// Field is the name of one answer in the Answer Set.
// Names are the JSON keys expected by the collection endpoint.
type Field string

// Answer fields.
const (
	FieldVictim         Field = "esVictima"
	FieldWitness        Field = "esTestigo"
	FieldTimeElapsed    Field = "tiempoPasado"
	FieldHowEnded       Field = "comoTermino"
	FieldSector         Field = "rubro"
	FieldFrequency      Field = "frecuencia"
	FieldAmount         Field = "monto"
	FieldGang           Field = "banda"
	FieldAttack         Field = "atentado"
	FieldEvidence       Field = "tieneEvidencias"
	FieldReported       Field = "pusoDenuncia"
	FieldHowReported    Field = "comoDenuncia"
	FieldReportOutcome  Field = "resultadoDenuncia"
	FieldWhyNotReported Field = "porqueNoDenuncia"
	FieldDepartment     Field = "departamento"
	FieldProvince       Field = "provincia"
	FieldDistrict       Field = "distrito"
	FieldHoneypot       Field = "website"
)

// Values of the victim status question that drive branching.
const (
	VictimCurrent = "si"
	VictimPast    = "pasado"
	VictimNone    = "no"
)

// Values of yes/no questions.
const (
	Yes = "si"
	No  = "no"
)

// AnswerFields lists the questionnaire fields sent as string-or-null,
// in the order the collection endpoint documents them.
func AnswerFields() []Field {
	return []Field{
		FieldVictim,
		FieldWitness,
		FieldTimeElapsed,
		FieldHowEnded,
		FieldSector,
		FieldFrequency,
		FieldAmount,
		FieldGang,
		FieldAttack,
		FieldEvidence,
		FieldReported,
		FieldHowReported,
		FieldReportOutcome,
		FieldWhyNotReported,
	}
}

// LocationFields lists the three region fields in hierarchy order.
func LocationFields() []Field {
	return []Field{FieldDepartment, FieldProvince, FieldDistrict}
}

// String returns the field name.
func (f Field) String() string {
	return string(f)
}
