package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

type queryRecorder struct {
	labels []string
}

func (q *queryRecorder) ObserveDBQuery(label string, _ time.Duration) {
	q.labels = append(q.labels, label)
}

const loadQuery = "SELECT user_id, ramos, ramo_colors, semestre_colors, semestres_vacios, updated_at FROM notas WHERE user_id = $1"

func TestRecordLoad(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	observer := &queryRecorder{}
	repo := NewRecordRepository(db, observer)

	now := time.Now()
	ramos := `[{"id":"c1","nombre":"Cálculo I","semestre":"2025-1","unidades":[{"id":"u1","nombre":"Unidad 1","peso":100,"evaluaciones":[{"id":"e1","nombre":"Prueba","fecha":"10/10/2025","peso":100,"nota":5.5}],"promedioActual":0,"progreso":0}]}]`
	rows := sqlmock.NewRows([]string{"user_id", "ramos", "ramo_colors", "semestre_colors", "semestres_vacios", "updated_at"}).
		AddRow("user-1", []byte(ramos), []byte(`{"c1":"Azul"}`), []byte(`{"2025-1":"Verde"}`), []byte(`["2025-2"]`), now)
	mock.ExpectQuery(regexp.QuoteMeta(loadQuery)).WithArgs("user-1").WillReturnRows(rows)

	record, err := repo.Load(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, record.Ramos, 1)
	assert.Equal(t, "Cálculo I", record.Ramos[0].Nombre)
	assert.InDelta(t, 5.5, *record.Ramos[0].Unidades[0].Evaluaciones[0].Nota, 1e-9)
	assert.Equal(t, "Azul", record.RamoColors["c1"])
	assert.Equal(t, "Verde", record.SemestreColors["2025-1"])
	assert.True(t, record.SemestresVacios.Contains("2025-2"))
	assert.Equal(t, []string{"notas.load"}, observer.labels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordLoadMissingReturnsEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db, nil)

	rows := sqlmock.NewRows([]string{"user_id", "ramos", "ramo_colors", "semestre_colors", "semestres_vacios", "updated_at"})
	mock.ExpectQuery(regexp.QuoteMeta(loadQuery)).WithArgs("user-2").WillReturnRows(rows)

	record, err := repo.Load(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, "user-2", record.UserID)
	assert.NotNil(t, record.Ramos)
	assert.Empty(t, record.Ramos)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordLoadError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(loadQuery)).WithArgs("user-1").WillReturnError(errors.New("connection reset"))

	_, err := repo.Load(context.Background(), "user-1")
	assert.ErrorContains(t, err, "load record user-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSave(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db, nil)

	record := models.NewUserRecord("user-1")
	record.Ramos = models.CourseList{{ID: "c1", Nombre: "Física", Unidades: []models.Unit{}}}
	record.RamoColors["c1"] = "Rojo"

	mock.ExpectExec("(?s)INSERT INTO notas.*ON CONFLICT \\(user_id\\) DO UPDATE").
		WithArgs("user-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Save(context.Background(), record))
	assert.False(t, record.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notas WHERE user_id = $1")).WithArgs("user-1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "user-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
