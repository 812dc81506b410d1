package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Schedule statuses. The assignment engine only ever writes
// ScheduleStatusScheduled; other statuses exist in the store for external
// workflows and are not interpreted by the engine.
const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusCancelled = "cancelled"
)

// TeacherSnapshot is the denormalized copy of a teacher embedded in a
// schedule at commit time. Later edits to the live teacher record do not
// touch committed schedules.
type TeacherSnapshot struct {
	ID             string   `json:"id"`
	FullName       string   `json:"full_name"`
	Email          string   `json:"email"`
	Subject        string   `json:"subject"`
	AvailableDays  []string `json:"available_days"`
	AvailableFrom  string   `json:"available_from"`
	AvailableUntil string   `json:"available_until"`
}

// SnapshotTeacher copies the teacher's assignable fields by value.
func SnapshotTeacher(t Teacher) TeacherSnapshot {
	days := make([]string, len(t.AvailableDays))
	copy(days, t.AvailableDays)
	return TeacherSnapshot{
		ID:             t.ID,
		FullName:       t.FullName,
		Email:          t.Email,
		Subject:        t.Subject,
		AvailableDays:  days,
		AvailableFrom:  t.AvailableFrom,
		AvailableUntil: t.AvailableUntil,
	}
}

// Value implements driver.Valuer storing the snapshot as JSONB.
func (s TeacherSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *TeacherSnapshot) Scan(src interface{}) error {
	return scanJSON(src, s)
}

// ClassroomSnapshot is the denormalized copy of a classroom embedded in a
// schedule at commit time.
type ClassroomSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RoomType string `json:"room_type"`
	Capacity int    `json:"capacity"`
}

// SnapshotClassroom copies the classroom's assignable fields by value.
func SnapshotClassroom(c Classroom) ClassroomSnapshot {
	return ClassroomSnapshot{
		ID:       c.ID,
		Name:     c.Name,
		RoomType: c.RoomType,
		Capacity: c.Capacity,
	}
}

// Value implements driver.Valuer storing the snapshot as JSONB.
func (s ClassroomSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *ClassroomSnapshot) Scan(src interface{}) error {
	return scanJSON(src, s)
}

// Schedule represents a committed teaching session. Never mutated by the
// assignment engine after creation.
type Schedule struct {
	ID          string            `db:"id" json:"id"`
	SessionDate string            `db:"session_date" json:"date"`
	DayOfWeek   string            `db:"day_of_week" json:"day_of_week"`
	StartTime   string            `db:"start_time" json:"start_time"`
	EndTime     string            `db:"end_time" json:"end_time"`
	Subject     string            `db:"subject" json:"subject"`
	Notes       string            `db:"notes" json:"notes"`
	Recurring   bool              `db:"recurring" json:"recurring"`
	Status      string            `db:"status" json:"status"`
	Teacher     TeacherSnapshot   `db:"teacher_snapshot" json:"teacher"`
	Classroom   ClassroomSnapshot `db:"classroom_snapshot" json:"classroom"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	DayOfWeek   string
	TeacherID   string
	ClassroomID string
	Status      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

func scanJSON(src, dest interface{}) error {
	switch raw := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(raw, dest)
	case string:
		return json.Unmarshal([]byte(raw), dest)
	default:
		return fmt.Errorf("unsupported snapshot column type %T", src)
	}
}
