package service

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/1Bnja/PonderacionesPersonales/internal/grading"
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
)

const (
	DefaultUpcomingLimit = 5
	DefaultOverdueLimit  = 3
)

var dateParts = regexp.MustCompile(`^(\d{1,4})[/-](\d{1,2})[/-](\d{1,4})$`)

// CalendarService lists dated evaluations across all of a user's courses.
type CalendarService struct {
	records recordWriter
}

// NewCalendarService constructs the service.
func NewCalendarService(store RecordStore, engine grading.Engine, logger *zap.Logger) *CalendarService {
	return &CalendarService{records: newRecordWriter(store, nil, nil, engine, logger)}
}

// Upcoming returns evaluations dated today or later, soonest first.
func (s *CalendarService) Upcoming(ctx context.Context, userID string, now time.Time, limit int) ([]models.ScheduledEvaluation, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	return s.filter(ctx, userID, now, limit, func(ev models.ScheduledEvaluation) bool {
		return !ev.Date.Before(startOfDay(now))
	})
}

// Overdue returns ungraded evaluations dated before today, oldest first.
func (s *CalendarService) Overdue(ctx context.Context, userID string, now time.Time, limit int) ([]models.ScheduledEvaluation, error) {
	if limit <= 0 {
		limit = DefaultOverdueLimit
	}
	return s.filter(ctx, userID, now, limit, func(ev models.ScheduledEvaluation) bool {
		return ev.Pendiente && ev.Date.Before(startOfDay(now))
	})
}

func (s *CalendarService) filter(ctx context.Context, userID string, now time.Time, limit int, keep func(models.ScheduledEvaluation) bool) ([]models.ScheduledEvaluation, error) {
	record, err := s.records.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ScheduledEvaluation, 0, limit)
	for _, ev := range schedule(record, now.Location()) {
		if len(out) == limit {
			break
		}
		if keep(ev) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// schedule flattens every evaluation with a parseable date, sorted by date.
func schedule(record *models.UserRecord, loc *time.Location) []models.ScheduledEvaluation {
	var out []models.ScheduledEvaluation
	for _, course := range record.Ramos {
		color := record.RamoColors[course.ID]
		if color == "" {
			color = DefaultColor
		}
		for _, unit := range course.Unidades {
			for _, ev := range unit.Evaluaciones {
				date, ok := ParseDate(ev.Fecha, loc)
				if !ok {
					continue
				}
				out = append(out, models.ScheduledEvaluation{
					Evaluation:   ev.Clone(),
					RamoID:       course.ID,
					RamoNombre:   course.Nombre,
					RamoColor:    color,
					UnidadNombre: unit.Nombre,
					Pendiente:    ev.Nota == nil,
					Date:         date,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// ParseDate accepts DD/MM/YYYY, DD-MM-YYYY and YYYY-MM-DD. Two digit years
// are taken as 20YY. Impossible calendar dates are rejected.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	m := dateParts.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	var dayS, monthS, yearS string
	if len(m[1]) == 4 {
		yearS, monthS, dayS = m[1], m[2], m[3]
	} else {
		dayS, monthS, yearS = m[1], m[2], m[3]
	}
	if len(dayS) > 2 || (len(yearS) != 2 && len(yearS) != 4) {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(dayS)
	month, _ := strconv.Atoi(monthS)
	year, _ := strconv.Atoi(yearS)
	if len(yearS) == 2 {
		year += 2000
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if date.Day() != day || int(date.Month()) != month || date.Year() != year {
		return time.Time{}, false
	}
	return date, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
