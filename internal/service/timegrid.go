package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/jlcruz-dev/class-scheduler-api/internal/models"
)

var weekdayNames = map[string]bool{
	"MONDAY":    true,
	"TUESDAY":   true,
	"WEDNESDAY": true,
	"THURSDAY":  true,
	"FRIDAY":    true,
	"SATURDAY":  true,
	"SUNDAY":    true,
}

// normalizeDay canonicalises a weekday name. Returns "" for unknown input.
func normalizeDay(raw string) string {
	day := strings.ToUpper(strings.TrimSpace(raw))
	if !weekdayNames[day] {
		return ""
	}
	return day
}

// minuteOfDay parses an "HH:MM" clock value into minutes since midnight.
func minuteOfDay(raw string) (int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse clock value %q: %w", raw, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// rangesOverlap reports whether two time-of-day ranges share any instant.
// Strict inequality: ranges that merely touch (one ends exactly when the
// other starts) do not overlap, so back-to-back sessions are always allowed.
func rangesOverlap(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}

// teacherCoversWindow reports whether the teacher works on the requested day
// and their single availability window fully contains the requested range.
func teacherCoversWindow(teacher models.Teacher, day string, start, end int) bool {
	onDay := false
	for _, available := range teacher.AvailableDays {
		if normalizeDay(available) == day {
			onDay = true
			break
		}
	}
	if !onDay {
		return false
	}

	availFrom, err := minuteOfDay(teacher.AvailableFrom)
	if err != nil {
		return false
	}
	availUntil, err := minuteOfDay(teacher.AvailableUntil)
	if err != nil {
		return false
	}
	return availFrom <= start && availUntil >= end
}
