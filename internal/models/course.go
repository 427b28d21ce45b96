package models

// CourseStatus is the categorical standing of a course against the passing threshold.
type CourseStatus string

const (
	// StatusApproved means the course average already meets the threshold.
	StatusApproved CourseStatus = "APROBADO"
	// StatusFailed means the course is fully evaluated below the threshold.
	StatusFailed CourseStatus = "REPROBADO"
	// StatusInProgress means the threshold is reachable with a grade of at most 6.0.
	StatusInProgress CourseStatus = "EN CURSO"
	// StatusCritical means the remaining weight requires more than 6.0.
	StatusCritical CourseStatus = "CRÍTICO"
	// StatusImpossible means not even a perfect 7.0 reaches the threshold.
	StatusImpossible CourseStatus = "IMPOSIBLE"
)

// NoDate is stored as Fecha when the source row carried no date token.
const NoDate = "Sin fecha"

// Evaluation is a single gradable item within a unit.
type Evaluation struct {
	ID     string   `json:"id"`
	Nombre string   `json:"nombre"`
	Fecha  string   `json:"fecha"`
	Peso   int      `json:"peso"`
	Nota   *float64 `json:"nota"`
}

// Graded reports whether the evaluation carries a usable grade.
func (e Evaluation) Graded() bool {
	return e.Nota != nil && *e.Nota > 0
}

// Unit groups evaluations and carries its weight within the course.
type Unit struct {
	ID           string       `json:"id"`
	Nombre       string       `json:"nombre"`
	Peso         int          `json:"peso"`
	Evaluaciones []Evaluation `json:"evaluaciones"`

	PromedioActual float64 `json:"promedioActual"`
	Progreso       int     `json:"progreso"`
}

// Statistics are derived from the course tree and never edited directly.
type Statistics struct {
	PromedioActual float64      `json:"promedioActual"`
	PesoEvaluado   float64      `json:"pesoEvaluado"`
	NotaNecesaria  float64      `json:"notaNecesaria"`
	Estado         CourseStatus `json:"estado"`
}

// Course ("ramo") is the top-level persisted entity.
type Course struct {
	ID           string      `json:"id"`
	Nombre       string      `json:"nombre"`
	Semestre     *string     `json:"semestre"`
	Unidades     []Unit      `json:"unidades"`
	Estadisticas *Statistics `json:"estadisticas,omitempty"`
}

// SemesterLabel returns the grouping key, falling back to OtherSemester.
func (c Course) SemesterLabel() string {
	if c.Semestre == nil || *c.Semestre == "" {
		return OtherSemester
	}
	return *c.Semestre
}

// OtherSemester groups courses without a semester label.
const OtherSemester = "Otros"

// Clone returns a deep copy of the course tree.
func (c Course) Clone() Course {
	out := c
	if c.Semestre != nil {
		sem := *c.Semestre
		out.Semestre = &sem
	}
	if c.Estadisticas != nil {
		stats := *c.Estadisticas
		out.Estadisticas = &stats
	}
	out.Unidades = make([]Unit, len(c.Unidades))
	for i, unit := range c.Unidades {
		out.Unidades[i] = unit.Clone()
	}
	return out
}

// Clone returns a deep copy of the unit.
func (u Unit) Clone() Unit {
	out := u
	out.Evaluaciones = make([]Evaluation, len(u.Evaluaciones))
	for i, ev := range u.Evaluaciones {
		out.Evaluaciones[i] = ev.Clone()
	}
	return out
}

// Clone returns a copy of the evaluation with its own grade pointer.
func (e Evaluation) Clone() Evaluation {
	out := e
	if e.Nota != nil {
		nota := *e.Nota
		out.Nota = &nota
	}
	return out
}

// FindUnit returns the index of the unit with the given ID or -1.
func (c Course) FindUnit(unitID string) int {
	for i := range c.Unidades {
		if c.Unidades[i].ID == unitID {
			return i
		}
	}
	return -1
}

// FindEvaluation returns the index of the evaluation with the given ID or -1.
func (u Unit) FindEvaluation(evaluationID string) int {
	for i := range u.Evaluaciones {
		if u.Evaluaciones[i].ID == evaluationID {
			return i
		}
	}
	return -1
}

// Float64Ptr is a small helper for optional grades.
func Float64Ptr(v float64) *float64 {
	return &v
}

// StringPtr is a small helper for optional labels.
func StringPtr(v string) *string {
	return &v
}
