package models

import (
	"time"

	"github.com/lib/pq"
)

// Teacher represents an instructor record. Each teacher declares a single
// availability window reused across all of their available days.
type Teacher struct {
	ID             string         `db:"id" json:"id"`
	FullName       string         `db:"full_name" json:"full_name"`
	Email          string         `db:"email" json:"email"`
	Subject        string         `db:"subject" json:"subject"`
	AvailableDays  pq.StringArray `db:"available_days" json:"available_days"`
	AvailableFrom  string         `db:"available_from" json:"available_from"`
	AvailableUntil string         `db:"available_until" json:"available_until"`
	Active         bool           `db:"active" json:"active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Subject   string
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
