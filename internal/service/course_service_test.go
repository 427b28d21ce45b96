package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1Bnja/PonderacionesPersonales/internal/dto"
	"github.com/1Bnja/PonderacionesPersonales/internal/grading"
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	"github.com/1Bnja/PonderacionesPersonales/internal/parser"
	appErrors "github.com/1Bnja/PonderacionesPersonales/pkg/errors"
)

const familyAText = `Cálculo I
Area Matemáticas
Unidad 1 EXIGIBLE 50
Evaluación 1 Prueba 10/10/2025 50 5.0
Evaluación 2 Prueba 20/10/2025 50
Unidad 2 EXIGIBLE 50
Evaluación 1 Examen 01/12/2025 100`

func newCourseServiceForTest(t *testing.T) (*CourseService, *recordStoreStub, *cacheRepoStub) {
	t.Helper()
	store := newRecordStoreStub()
	cacheRepo := newCacheRepoStub()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewCourseService(store, cache, nil, grading.NewEngine(grading.DefaultThreshold), time.Minute, nil, nil)
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return svc, store, cacheRepo
}

func assertAppError(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected app error, got %v", err)
	assert.Equal(t, want.Code, appErr.Code)
	assert.Equal(t, want.Status, appErr.Status)
}

func TestCourseServicePreview(t *testing.T) {
	svc, store, _ := newCourseServiceForTest(t)

	resp, err := svc.Preview(dto.ParseRequest{Text: familyAText})
	require.NoError(t, err)
	assert.Equal(t, parser.FamilyA, resp.Family)
	require.Len(t, resp.Courses, 1)
	course := resp.Courses[0]
	assert.Equal(t, "Cálculo I", course.Nombre)
	require.NotNil(t, course.Estadisticas)
	assert.InDelta(t, 1.3, course.Estadisticas.PromedioActual, 1e-9)
	assert.InDelta(t, 3.7, course.Estadisticas.NotaNecesaria, 1e-9)
	assert.NotNil(t, resp.Warnings)
	assert.Zero(t, store.saves)
}

func TestCourseServicePreviewErrors(t *testing.T) {
	svc, _, _ := newCourseServiceForTest(t)

	_, err := svc.Preview(dto.ParseRequest{})
	assertAppError(t, err, appErrors.ErrValidation)

	_, err = svc.Preview(dto.ParseRequest{Text: "hola mundo"})
	assertAppError(t, err, appErrors.ErrNoCoursesDetected)
}

func TestCourseServiceImport(t *testing.T) {
	svc, store, cacheRepo := newCourseServiceForTest(t)
	ctx := context.Background()

	existing := models.NewUserRecord("user-1")
	existing.SemestresVacios = models.SemesterList{"2025-1", "2024-2"}
	store.put(existing)
	cacheRepo.items[CoursesCacheKey("user-1")] = []byte(`[]`)

	resp, err := svc.Import(ctx, "user-1", dto.ImportCoursesRequest{Text: familyAText, Semestre: models.StringPtr(" 2025-1 ")})
	require.NoError(t, err)
	require.Len(t, resp.Courses, 1)
	require.NotNil(t, resp.Courses[0].Semestre)
	assert.Equal(t, "2025-1", *resp.Courses[0].Semestre)
	assert.Equal(t, models.StatusInProgress, resp.Courses[0].Estadisticas.Estado)

	saved := store.get("user-1")
	require.Len(t, saved.Ramos, 1)
	assert.NotNil(t, saved.Ramos[0].Estadisticas)
	assert.Equal(t, models.SemesterList{"2024-2"}, saved.SemestresVacios)
	assert.False(t, saved.UpdatedAt.IsZero())
	assert.NotContains(t, cacheRepo.items, CoursesCacheKey("user-1"))
	assert.Contains(t, cacheRepo.deleted, CoursesCacheKey("user-1"))
}

func TestCourseServiceImportAppends(t *testing.T) {
	svc, store, _ := newCourseServiceForTest(t)
	ctx := context.Background()
	store.put(sampleRecord("user-1"))

	_, err := svc.Import(ctx, "user-1", dto.ImportCoursesRequest{Text: familyAText})
	require.NoError(t, err)
	saved := store.get("user-1")
	require.Len(t, saved.Ramos, 5)
	assert.Nil(t, saved.Ramos[4].Semestre)
}

func TestCourseServiceImportErrors(t *testing.T) {
	svc, store, _ := newCourseServiceForTest(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, "user-1", dto.ImportCoursesRequest{Text: "nada que ver"})
	assertAppError(t, err, appErrors.ErrNoCoursesDetected)

	_, err = svc.Import(ctx, "", dto.ImportCoursesRequest{Text: familyAText})
	assertAppError(t, err, appErrors.ErrUnauthorized)

	store.saveErr = errors.New("connection reset")
	_, err = svc.Import(ctx, "user-1", dto.ImportCoursesRequest{Text: familyAText})
	assertAppError(t, err, appErrors.ErrInternal)
	assert.Zero(t, store.saves)
}

func TestCourseServiceListUsesCache(t *testing.T) {
	svc, store, cacheRepo := newCourseServiceForTest(t)
	ctx := context.Background()
	store.put(sampleRecord("user-1"))

	courses, hit, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, courses, 4)
	for _, course := range courses {
		assert.NotNil(t, course.Estadisticas)
	}
	assert.Contains(t, cacheRepo.items, CoursesCacheKey("user-1"))

	cached, hit, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, courses, cached)
}

func TestCourseServiceListSurvivesCacheFailure(t *testing.T) {
	svc, store, cacheRepo := newCourseServiceForTest(t)
	store.put(sampleRecord("user-1"))
	cacheRepo.getErr = errors.New("redis down")

	courses, hit, err := svc.List(context.Background(), "user-2")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

func TestCourseServiceGet(t *testing.T) {
	svc, store, _ := newCourseServiceForTest(t)
	ctx := context.Background()
	store.put(sampleRecord("user-1"))

	course, err := svc.Get(ctx, "user-1", "fis")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, course.Estadisticas.Estado)

	_, err = svc.Get(ctx, "user-1", "missing")
	assertAppError(t, err, appErrors.ErrNotFound)

	store.loadErr = errors.New("timeout")
	_, err = svc.Get(ctx, "user-1", "fis")
	assertAppError(t, err, appErrors.ErrInternal)
}

func TestCourseServiceCreate(t *testing.T) {
	svc, store, _ := newCourseServiceForTest(t)
	ctx := context.Background()
	record := models.NewUserRecord("user-1")
	record.SemestresVacios = models.SemesterList{"2025-2"}
	store.put(record)

	course, err := svc.Create(ctx, "user-1", dto.CreateCourseRequest{
		Nombre:   " Química ",
		Semestre: models.StringPtr("2025-2"),
		Unidades: []dto.UnitRequest{{
			Nombre: "Unidad 1",
			Peso:   100,
			Evaluaciones: []dto.EvaluationRequest{
				{Nombre: "Control", Fecha: "01/11/2025", Peso: 40, Nota: models.Float64Ptr(6.0)},
				{Peso: 60},
			},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", course.ID)
	assert.Equal(t, "Química", course.Nombre)
	require.Len(t, course.Unidades, 1)
	assert.Equal(t, "id-2", course.Unidades[0].ID)
	evals := course.Unidades[0].Evaluaciones
	require.Len(t, evals, 2)
	assert.Equal(t, "Evaluación", evals[1].Nombre)
	assert.Equal(t, models.NoDate, evals[1].Fecha)
	assert.InDelta(t, 2.4, course.Estadisticas.PromedioActual, 1e-9)
	assert.InDelta(t, 2.7, course.Estadisticas.NotaNecesaria, 1e-9)

	saved := store.get("user-1")
	assert.Empty(t, saved.SemestresVacios)
}

func TestCourseServiceCreateValidation(t *testing.T) {
	svc, store, _ := newCourseServiceForTest(t)

	tests := []struct {
		name string
		req  dto.CreateCourseRequest
	}{
		{name: "missing name", req: dto.CreateCourseRequest{}},
		{name: "unit weight over 100", req: dto.CreateCourseRequest{Nombre: "X", Unidades: []dto.UnitRequest{{Nombre: "U", Peso: 120}}}},
		{name: "grade off scale", req: dto.CreateCourseRequest{Nombre: "X", Unidades: []dto.UnitRequest{{
			Nombre: "U", Peso: 100, Evaluaciones: []dto.EvaluationRequest{{Peso: 100, Nota: models.Float64Ptr(7.5)}},
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "user-1", tt.req)
			assertAppError(t, err, appErrors.ErrValidation)
		})
	}
	assert.Zero(t, store.saves)
}

func TestCourseServiceDelete(t *testing.T) {
	svc, store, _ := newCourseServiceForTest(t)
	ctx := context.Background()
	store.put(sampleRecord("user-1"))

	require.NoError(t, svc.Delete(ctx, "user-1", "calc"))
	saved := store.get("user-1")
	assert.Len(t, saved.Ramos, 3)
	assert.Equal(t, -1, saved.FindCourse("calc"))
	assert.NotContains(t, saved.RamoColors, "calc")

	err := svc.Delete(ctx, "user-1", "calc")
	assertAppError(t, err, appErrors.ErrNotFound)
}

func TestCourseServiceEdit(t *testing.T) {
	svc, store, _ := newCourseServiceForTest(t)
	ctx := context.Background()
	store.put(sampleRecord("user-1"))

	course, err := svc.Edit(ctx, "user-1", "calc", dto.EditCourseRequest{UnitID: "u1", EvaluationID: "e2", Field: "nota", Value: 7.0})
	require.NoError(t, err)
	assert.InDelta(t, 6.0, course.Unidades[0].PromedioActual, 1e-9)
	assert.InDelta(t, 3.0, course.Estadisticas.PromedioActual, 1e-9)
	assert.InDelta(t, 50, course.Estadisticas.PesoEvaluado, 1e-9)
	assert.InDelta(t, 2.0, course.Estadisticas.NotaNecesaria, 1e-9)

	course, err = svc.Edit(ctx, "user-1", "calc", dto.EditCourseRequest{Field: "semestre", Value: "2025-2"})
	require.NoError(t, err)
	assert.Equal(t, "2025-2", *course.Semestre)
	assert.Empty(t, store.get("user-1").SemestresVacios)
}

func TestCourseServiceEditErrors(t *testing.T) {
	svc, store, _ := newCourseServiceForTest(t)
	ctx := context.Background()
	store.put(sampleRecord("user-1"))

	tests := []struct {
		name     string
		courseID string
		req      dto.EditCourseRequest
		want     *appErrors.Error
	}{
		{name: "unknown field tag", courseID: "calc", req: dto.EditCourseRequest{Field: "color", Value: "Azul"}, want: appErrors.ErrValidation},
		{name: "missing course", courseID: "nope", req: dto.EditCourseRequest{Field: "nombre", Value: "X"}, want: appErrors.ErrNotFound},
		{name: "missing unit", courseID: "calc", req: dto.EditCourseRequest{UnitID: "u9", Field: "peso", Value: 10.0}, want: appErrors.ErrNotFound},
		{name: "missing evaluation", courseID: "calc", req: dto.EditCourseRequest{UnitID: "u1", EvaluationID: "e9", Field: "nota", Value: 5.0}, want: appErrors.ErrNotFound},
		{name: "grade off scale", courseID: "calc", req: dto.EditCourseRequest{UnitID: "u1", EvaluationID: "e1", Field: "nota", Value: 8.0}, want: appErrors.ErrInvalidGrade},
		{name: "fractional weight", courseID: "calc", req: dto.EditCourseRequest{UnitID: "u1", Field: "peso", Value: 12.5}, want: appErrors.ErrInvalidWeight},
		{name: "field at wrong level", courseID: "calc", req: dto.EditCourseRequest{Field: "nota", Value: 5.0}, want: appErrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Edit(ctx, "user-1", tt.courseID, tt.req)
			assertAppError(t, err, tt.want)
		})
	}
	assert.Zero(t, store.saves)
}

func TestCourseServiceUpdateGrade(t *testing.T) {
	svc, store, _ := newCourseServiceForTest(t)
	ctx := context.Background()
	store.put(sampleRecord("user-1"))

	course, err := svc.UpdateGrade(ctx, "user-1", "fis", "u1", "e1", models.Float64Ptr(3.5))
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, course.Estadisticas.Estado)

	course, err = svc.UpdateGrade(ctx, "user-1", "fis", "u1", "e1", nil)
	require.NoError(t, err)
	assert.Nil(t, course.Unidades[0].Evaluaciones[0].Nota)
	assert.Equal(t, models.StatusInProgress, course.Estadisticas.Estado)
	assert.InDelta(t, 4.0, course.Estadisticas.NotaNecesaria, 1e-9)

	_, err = svc.UpdateGrade(ctx, "user-1", "fis", "u1", "e1", models.Float64Ptr(0.5))
	assertAppError(t, err, appErrors.ErrInvalidGrade)
}

func TestCourseServiceStructuralEdits(t *testing.T) {
	svc, store, _ := newCourseServiceForTest(t)
	ctx := context.Background()
	store.put(sampleRecord("user-1"))

	course, err := svc.AddUnit(ctx, "user-1", "fis", dto.UnitRequest{Nombre: "Laboratorio", Peso: 0})
	require.NoError(t, err)
	require.Len(t, course.Unidades, 2)
	unitID := course.Unidades[1].ID

	course, err = svc.AddEvaluation(ctx, "user-1", "fis", unitID, dto.EvaluationRequest{Nombre: "Informe", Fecha: "2025-11-03", Peso: 100})
	require.NoError(t, err)
	require.Len(t, course.Unidades[1].Evaluaciones, 1)
	evalID := course.Unidades[1].Evaluaciones[0].ID

	course, err = svc.RemoveEvaluation(ctx, "user-1", "fis", unitID, evalID)
	require.NoError(t, err)
	assert.Empty(t, course.Unidades[1].Evaluaciones)

	course, err = svc.RemoveUnit(ctx, "user-1", "fis", unitID)
	require.NoError(t, err)
	assert.Len(t, course.Unidades, 1)

	_, err = svc.RemoveUnit(ctx, "user-1", "fis", unitID)
	assertAppError(t, err, appErrors.ErrNotFound)
	_, err = svc.AddEvaluation(ctx, "user-1", "fis", "nope", dto.EvaluationRequest{Peso: 10})
	assertAppError(t, err, appErrors.ErrNotFound)
	_, err = svc.AddUnit(ctx, "user-1", "fis", dto.UnitRequest{})
	assertAppError(t, err, appErrors.ErrValidation)
	assert.Len(t, store.get("user-1").Ramos[1].Unidades, 1)
}
