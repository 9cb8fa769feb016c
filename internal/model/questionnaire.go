package model

// InputKind distinguishes how an input group is presented.
type InputKind int

const (
	// InputRadio is a single-choice group with a fixed option list.
	InputRadio InputKind = iota

	// InputSelect is a drop-down whose options are loaded at runtime.
	InputSelect
)

// Option is one selectable value of an input group.
type Option struct {
	Value string
	Label string
}

// InputGroup is one named input on a step's surface.
type InputGroup struct {
	Field   Field
	Kind    InputKind
	Label   string
	Options []Option
}

// Question describes what a step shows to the respondent.
type Question struct {
	Step   StepID
	Prompt string
	Groups []InputGroup
}

func radio(field Field, opts ...Option) InputGroup {
	return InputGroup{Field: field, Kind: InputRadio, Options: opts}
}

func opt(value, label string) Option {
	return Option{Value: value, Label: label}
}

var questionnaire = map[StepID]Question{
	StepVictim: {
		Prompt: "¿Eres o fuiste víctima de extorsión?",
		Groups: []InputGroup{radio(FieldVictim,
			opt(VictimCurrent, "Sí, actualmente"),
			opt(VictimPast, "Sí, en el pasado"),
			opt(VictimNone, "No"),
		)},
	},
	StepWitness: {
		Prompt: "¿Has sido testigo de extorsiones en tu zona?",
		Groups: []InputGroup{radio(FieldWitness,
			opt(Yes, "Sí"),
			opt(No, "No"),
		)},
	},
	StepTimeElapsed: {
		Prompt: "¿Hace cuánto tiempo dejó de ocurrir?",
		Groups: []InputGroup{radio(FieldTimeElapsed,
			opt("menos-6-meses", "Menos de 6 meses"),
			opt("6-12-meses", "Entre 6 meses y 1 año"),
			opt("1-2-anios", "Entre 1 y 2 años"),
			opt("mas-2-anios", "Más de 2 años"),
		)},
	},
	StepHowEnded: {
		Prompt: "¿Cómo terminó la extorsión?",
		Groups: []InputGroup{radio(FieldHowEnded,
			opt("deje-de-pagar", "Dejé de pagar"),
			opt("cerre-negocio", "Cerré el negocio"),
			opt("me-mude", "Me mudé"),
			opt("intervencion-policial", "Intervención policial"),
			opt("dejaron-de-contactar", "Dejaron de contactarme"),
			opt("otro", "Otro"),
		)},
	},
	StepSector: {
		Prompt: "¿A qué rubro pertenece tu negocio o actividad?",
		Groups: []InputGroup{radio(FieldSector,
			opt("transporte", "Transporte"),
			opt("mototaxi", "Mototaxi"),
			opt("bodega", "Bodega o comercio"),
			opt("restaurante", "Restaurante"),
			opt("construccion", "Construcción"),
			opt("salon", "Salón de belleza"),
			opt("educacion", "Educación"),
			opt("salud", "Salud"),
			opt("otro", "Otro"),
		)},
	},
	StepFrequency: {
		Prompt: "¿Con qué frecuencia te exigen pagar?",
		Groups: []InputGroup{radio(FieldFrequency,
			opt("diario", "Diario"),
			opt("semanal", "Semanal"),
			opt("quincenal", "Quincenal"),
			opt("mensual", "Mensual"),
			opt("unico", "Pago único"),
		)},
	},
	StepAmount: {
		Prompt: "¿Cuánto te exigen (o exigían) por pago?",
		Groups: []InputGroup{radio(FieldAmount,
			opt("menos-50", "Menos de S/ 50"),
			opt("50-200", "S/ 50 a S/ 200"),
			opt("200-500", "S/ 200 a S/ 500"),
			opt("500-1000", "S/ 500 a S/ 1000"),
			opt("mas-1000", "Más de S/ 1000"),
			opt("prefiero-no-decir", "Prefiero no decir"),
		)},
	},
	StepGang: {
		Prompt: "¿La banda se identificó con algún nombre?",
		Groups: []InputGroup{radio(FieldGang,
			opt(Yes, "Sí"),
			opt(No, "No"),
			opt("no-se", "No sé"),
		)},
	},
	StepAttacks: {
		Prompt: "¿Sufriste atentados o amenazas de violencia?",
		Groups: []InputGroup{radio(FieldAttack,
			opt("ninguno", "Ninguno"),
			opt("amenaza", "Amenazas"),
			opt("ataque-local", "Ataque al local o vehículo"),
			opt("ataque-personal", "Ataque a mi persona o familia"),
			opt("explosivo", "Explosivo"),
		)},
	},
	StepEvidence: {
		Prompt: "¿Tienes evidencias (mensajes, audios, videos)?",
		Groups: []InputGroup{radio(FieldEvidence,
			opt(Yes, "Sí"),
			opt(No, "No"),
		)},
	},
	StepReported: {
		Prompt: "¿Pusiste una denuncia?",
		Groups: []InputGroup{radio(FieldReported,
			opt(Yes, "Sí"),
			opt(No, "No"),
		)},
	},
	StepHowReported: {
		Prompt: "¿Cómo realizaste la denuncia?",
		Groups: []InputGroup{radio(FieldHowReported,
			opt("comisaria", "En una comisaría"),
			opt("fiscalia", "En la fiscalía"),
			opt("linea-111", "Línea 111"),
			opt("virtual", "Denuncia virtual"),
			opt("otro", "Otro"),
		)},
	},
	StepReportOutcome: {
		Prompt: "¿Cuál fue el resultado de la denuncia?",
		Groups: []InputGroup{radio(FieldReportOutcome,
			opt("sin-respuesta", "Sin respuesta"),
			opt("en-investigacion", "En investigación"),
			opt("captura", "Hubo capturas"),
			opt("archivada", "Fue archivada"),
			opt("empeoro", "La situación empeoró"),
		)},
	},
	StepWhyNotReported: {
		Prompt: "¿Por qué no denunciaste?",
		Groups: []InputGroup{radio(FieldWhyNotReported,
			opt("miedo", "Miedo a represalias"),
			opt("desconfianza", "Desconfianza en la policía"),
			opt("no-sirve", "Creo que no sirve"),
			opt("no-sabia", "No sabía cómo"),
			opt("otro", "Otro"),
		)},
	},
	StepLocation: {
		Prompt: "¿Dónde ocurrió?",
		Groups: []InputGroup{
			{Field: FieldDepartment, Kind: InputSelect, Label: "Departamento"},
			{Field: FieldProvince, Kind: InputSelect, Label: "Provincia"},
			{Field: FieldDistrict, Kind: InputSelect, Label: "Distrito"},
		},
	},
}

// QuestionFor returns the question shown on a step.
// The boolean is false for identifiers outside the questionnaire.
func QuestionFor(step StepID) (Question, bool) {
	q, ok := questionnaire[step]
	if !ok {
		return Question{}, false
	}
	q.Step = step
	return q, true
}

// LabelFor returns the display label of a stored value, falling back to the value.
func (q Question) LabelFor(field Field, value string) string {
	for _, g := range q.Groups {
		if g.Field != field {
			continue
		}
		for _, o := range g.Options {
			if o.Value == value {
				return o.Label
			}
		}
	}
	return value
}
