package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// UserRecord is the per-user document persisted by the record store.
type UserRecord struct {
	UserID          string       `db:"user_id" json:"userId"`
	Ramos           CourseList   `db:"ramos" json:"ramos"`
	RamoColors      ColorMap     `db:"ramo_colors" json:"ramoColors"`
	SemestreColors  ColorMap     `db:"semestre_colors" json:"semestreColors"`
	SemestresVacios SemesterList `db:"semestres_vacios" json:"semestresVacios"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`
}

// NewUserRecord returns an empty record for a user with no stored data.
func NewUserRecord(userID string) *UserRecord {
	return &UserRecord{
		UserID:          userID,
		Ramos:           CourseList{},
		RamoColors:      ColorMap{},
		SemestreColors:  ColorMap{},
		SemestresVacios: SemesterList{},
	}
}

// FindCourse returns the index of the course with the given ID or -1.
func (r *UserRecord) FindCourse(courseID string) int {
	for i := range r.Ramos {
		if r.Ramos[i].ID == courseID {
			return i
		}
	}
	return -1
}

// CourseList is stored as a JSONB array.
type CourseList []Course

// Value marshals the course list for persistence.
func (l CourseList) Value() (driver.Value, error) {
	if l == nil {
		l = CourseList{}
	}
	return marshalJSONB(l, "course list")
}

// Scan unmarshals a JSONB course list.
func (l *CourseList) Scan(value interface{}) error {
	*l = CourseList{}
	return scanJSONB(value, l, "course list")
}

// ColorMap maps a course ID or semester label to a palette color name.
type ColorMap map[string]string

// Value marshals the color map for persistence.
func (m ColorMap) Value() (driver.Value, error) {
	if m == nil {
		m = ColorMap{}
	}
	return marshalJSONB(m, "color map")
}

// Scan unmarshals a JSONB color map.
func (m *ColorMap) Scan(value interface{}) error {
	*m = ColorMap{}
	return scanJSONB(value, m, "color map")
}

// SemesterList holds semester labels that have no courses yet.
type SemesterList []string

// Value marshals the list for persistence.
func (l SemesterList) Value() (driver.Value, error) {
	if l == nil {
		l = SemesterList{}
	}
	return marshalJSONB(l, "semester list")
}

// Scan unmarshals a JSONB semester list.
func (l *SemesterList) Scan(value interface{}) error {
	*l = SemesterList{}
	return scanJSONB(value, l, "semester list")
}

// Contains reports whether the label is present.
func (l SemesterList) Contains(label string) bool {
	for _, s := range l {
		if s == label {
			return true
		}
	}
	return false
}

// Without returns a copy of the list without the label.
func (l SemesterList) Without(label string) SemesterList {
	out := make(SemesterList, 0, len(l))
	for _, s := range l {
		if s != label {
			out = append(out, s)
		}
	}
	return out
}

func marshalJSONB(v interface{}, label string) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", label, err)
	}
	return data, nil
}

func scanJSONB(value interface{}, dest interface{}, label string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, label)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", label, err)
	}
	return nil
}
