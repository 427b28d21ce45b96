package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
)

func editableCourse() models.Course {
	return models.Course{
		ID:       "c1",
		Nombre:   "Física",
		Semestre: models.StringPtr("2025-1"),
		Unidades: []models.Unit{
			{ID: "u1", Nombre: "Unidad 1", Peso: 60, Evaluaciones: []models.Evaluation{
				eval("e1", 50, grade(5.0)),
				eval("e2", 50, nil),
			}},
			{ID: "u2", Nombre: "Unidad 2", Peso: 40, Evaluaciones: []models.Evaluation{}},
		},
	}
}

func TestApplyEditGrade(t *testing.T) {
	course := editableCourse()

	got, err := ApplyEdit(course, Edit{UnitID: "u1", EvaluationID: "e2", Field: "nota", Value: 6.5})
	require.NoError(t, err)
	require.NotNil(t, got.Unidades[0].Evaluaciones[1].Nota)
	assert.InDelta(t, 6.5, *got.Unidades[0].Evaluaciones[1].Nota, 1e-9)
	assert.Nil(t, course.Unidades[0].Evaluaciones[1].Nota)

	got, err = ApplyEdit(got, Edit{UnitID: "u1", EvaluationID: "e2", Field: "nota", Value: "4,2"})
	require.NoError(t, err)
	assert.InDelta(t, 4.2, *got.Unidades[0].Evaluaciones[1].Nota, 1e-9)

	got, err = ApplyEdit(got, Edit{UnitID: "u1", EvaluationID: "e1", Field: "nota", Value: ""})
	require.NoError(t, err)
	assert.Nil(t, got.Unidades[0].Evaluaciones[0].Nota)
}

func TestApplyEditRejectsGradeOutsideScale(t *testing.T) {
	course := editableCourse()

	for _, value := range []interface{}{0.5, 7.5, "abc", true} {
		_, err := ApplyEdit(course, Edit{UnitID: "u1", EvaluationID: "e1", Field: FieldNota, Value: value})
		assert.ErrorIs(t, err, ErrInvalidValue, "value %v", value)
	}
	assert.InDelta(t, 5.0, *course.Unidades[0].Evaluaciones[0].Nota, 1e-9)
}

func TestApplyEditFields(t *testing.T) {
	course := editableCourse()

	got, err := ApplyEdit(course, Edit{Field: "Nombre", Value: "  Física II "})
	require.NoError(t, err)
	assert.Equal(t, "Física II", got.Nombre)

	got, err = ApplyEdit(got, Edit{Field: FieldSemestre, Value: nil})
	require.NoError(t, err)
	assert.Nil(t, got.Semestre)

	got, err = ApplyEdit(got, Edit{UnitID: "u2", Field: FieldPeso, Value: float64(45)})
	require.NoError(t, err)
	assert.Equal(t, 45, got.Unidades[1].Peso)

	got, err = ApplyEdit(got, Edit{UnitID: "u1", EvaluationID: "e1", Field: FieldFecha, Value: ""})
	require.NoError(t, err)
	assert.Equal(t, models.NoDate, got.Unidades[0].Evaluaciones[0].Fecha)

	got, err = ApplyEdit(got, Edit{UnitID: "u1", EvaluationID: "e1", Field: FieldPeso, Value: "30"})
	require.NoError(t, err)
	assert.Equal(t, 30, got.Unidades[0].Evaluaciones[0].Peso)

	assert.Equal(t, "Física", course.Nombre)
	assert.Equal(t, 40, course.Unidades[1].Peso)
}

func TestApplyEditErrors(t *testing.T) {
	course := editableCourse()

	tests := []struct {
		name string
		edit Edit
		err  error
	}{
		{name: "missing unit", edit: Edit{UnitID: "nope", Field: FieldPeso, Value: 10.0}, err: ErrUnitNotFound},
		{name: "missing evaluation", edit: Edit{UnitID: "u1", EvaluationID: "nope", Field: FieldNota, Value: 5.0}, err: ErrEvaluationNotFound},
		{name: "evaluation without unit", edit: Edit{EvaluationID: "e1", Field: FieldNota, Value: 5.0}, err: ErrUnitNotFound},
		{name: "unknown course field", edit: Edit{Field: "peso", Value: 10.0}, err: ErrUnknownField},
		{name: "unknown unit field", edit: Edit{UnitID: "u1", Field: FieldNota, Value: 5.0}, err: ErrUnknownField},
		{name: "empty course name", edit: Edit{Field: FieldNombre, Value: " "}, err: ErrInvalidValue},
		{name: "fractional weight", edit: Edit{UnitID: "u1", Field: FieldPeso, Value: 10.5}, err: ErrInvalidValue},
		{name: "weight over 100", edit: Edit{UnitID: "u1", Field: FieldPeso, Value: 101.0}, err: ErrInvalidValue},
		{name: "negative weight", edit: Edit{UnitID: "u1", EvaluationID: "e1", Field: FieldPeso, Value: -1.0}, err: ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyEdit(course, tt.edit)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, course, got)
		})
	}
}

func TestStructuralEdits(t *testing.T) {
	course := editableCourse()

	added := AddUnit(course, models.Unit{ID: "u3", Nombre: "Unidad 3", Peso: 0})
	require.Len(t, added.Unidades, 3)
	assert.NotNil(t, added.Unidades[2].Evaluaciones)
	assert.Len(t, course.Unidades, 2)

	withEval, err := AddEvaluation(added, "u3", eval("e9", 100, grade(7.0)))
	require.NoError(t, err)
	assert.Len(t, withEval.Unidades[2].Evaluaciones, 1)
	assert.Empty(t, added.Unidades[2].Evaluaciones)

	removedEval, err := RemoveEvaluation(withEval, "u1", "e1")
	require.NoError(t, err)
	require.Len(t, removedEval.Unidades[0].Evaluaciones, 1)
	assert.Equal(t, "e2", removedEval.Unidades[0].Evaluaciones[0].ID)
	assert.Len(t, withEval.Unidades[0].Evaluaciones, 2)

	removedUnit, err := RemoveUnit(removedEval, "u1")
	require.NoError(t, err)
	require.Len(t, removedUnit.Unidades, 2)
	assert.Equal(t, "u2", removedUnit.Unidades[0].ID)
	assert.Len(t, removedEval.Unidades, 3)

	_, err = RemoveUnit(course, "nope")
	assert.ErrorIs(t, err, ErrUnitNotFound)
	_, err = AddEvaluation(course, "nope", eval("x", 10, nil))
	assert.ErrorIs(t, err, ErrUnitNotFound)
	_, err = RemoveEvaluation(course, "u1", "nope")
	assert.ErrorIs(t, err, ErrEvaluationNotFound)
}

func TestEditThenRecompute(t *testing.T) {
	course := ComputeStatistics(editableCourse(), DefaultThreshold)
	assert.Equal(t, models.StatusInProgress, course.Estadisticas.Estado)

	edited, err := ApplyEdit(course, Edit{UnitID: "u1", EvaluationID: "e2", Field: FieldNota, Value: 7.0})
	require.NoError(t, err)
	edited = ComputeStatistics(edited, DefaultThreshold)

	assert.InDelta(t, 6.0, edited.Unidades[0].PromedioActual, 1e-9)
	assert.Equal(t, 100, edited.Unidades[0].Progreso)
	assert.InDelta(t, 3.6, edited.Estadisticas.PromedioActual, 1e-9)
	assert.InDelta(t, 60, edited.Estadisticas.PesoEvaluado, 1e-9)
	assert.InDelta(t, 1.0, edited.Estadisticas.NotaNecesaria, 1e-9)
	assert.Equal(t, models.StatusInProgress, edited.Estadisticas.Estado)
}
