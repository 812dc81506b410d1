package dto

import "github.com/jlcruz-dev/class-scheduler-api/internal/models"

// SessionRequest is one scheduling request inside a batch. Immutable once
// submitted; a request yields at most one committed schedule.
type SessionRequest struct {
	Subject   string `json:"subject" validate:"required"`
	RoomType  string `json:"room_type" validate:"required"`
	Capacity  int    `json:"capacity" validate:"required,min=1"`
	DayOfWeek string `json:"day_of_week" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Notes     string `json:"notes"`
	Recurring bool   `json:"recurring"`
}

// AssignBatchRequest submits an ordered list of session requests. An empty
// list is a valid batch and reports a zero summary.
type AssignBatchRequest struct {
	Requests []SessionRequest `json:"requests" validate:"dive"`
}

// AssignmentFailure reports a request no conflict-free pair could be found
// for. The eligible counts reflect the pools at filter time, before conflict
// checks; they do not shrink as conflicted candidates are rejected.
type AssignmentFailure struct {
	Request            SessionRequest `json:"request"`
	Reason             string         `json:"reason"`
	EligibleTeachers   int            `json:"eligible_teachers"`
	EligibleClassrooms int            `json:"eligible_classrooms"`
}

// AssignmentSummary aggregates a batch run.
type AssignmentSummary struct {
	TotalRequests int    `json:"total_requests"`
	Successful    int    `json:"successful"`
	Failed        int    `json:"failed"`
	SuccessRate   string `json:"success_rate"`
}

// AssignBatchResponse returns committed schedules in commit order, failures
// in request order and the run summary.
type AssignBatchResponse struct {
	Scheduled []models.Schedule   `json:"scheduled"`
	Failures  []AssignmentFailure `json:"failures"`
	Summary   AssignmentSummary   `json:"summary"`
}
