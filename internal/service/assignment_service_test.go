package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jlcruz-dev/class-scheduler-api/internal/dto"
	"github.com/jlcruz-dev/class-scheduler-api/internal/models"
	"github.com/jlcruz-dev/class-scheduler-api/pkg/config"
	appErrors "github.com/jlcruz-dev/class-scheduler-api/pkg/errors"
)

func TestAssignmentServiceSingleRequest(t *testing.T) {
	store := &scheduleStoreStub{}
	svc := newAssignmentFixture(
		[]models.Teacher{mockTeacher("t1", "Math")},
		[]models.Classroom{mockClassroom("r1", "lab", 30)},
		store,
	)

	resp, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
		Requests: []dto.SessionRequest{mockRequest("Math", "lab", 20, "Monday", "09:00", "10:00")},
	})
	require.NoError(t, err)
	require.Len(t, resp.Scheduled, 1)
	assert.Empty(t, resp.Failures)

	sched := resp.Scheduled[0]
	assert.Equal(t, "t1", sched.Teacher.ID)
	assert.Equal(t, "r1", sched.Classroom.ID)
	assert.Equal(t, "MONDAY", sched.DayOfWeek)
	assert.Equal(t, models.ScheduleStatusScheduled, sched.Status)
	assert.Len(t, store.created, 1)

	assert.Equal(t, 1, resp.Summary.TotalRequests)
	assert.Equal(t, 1, resp.Summary.Successful)
	assert.Equal(t, 0, resp.Summary.Failed)
	assert.Equal(t, "100%", resp.Summary.SuccessRate)
}

func TestAssignmentServiceBackToBackSessions(t *testing.T) {
	store := &scheduleStoreStub{}
	svc := newAssignmentFixture(
		[]models.Teacher{mockTeacher("t1", "Math")},
		[]models.Classroom{mockClassroom("r1", "lab", 30)},
		store,
	)

	resp, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
		Requests: []dto.SessionRequest{
			mockRequest("Math", "lab", 20, "Monday", "09:00", "10:00"),
			mockRequest("Math", "lab", 20, "Monday", "10:00", "11:00"),
		},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Scheduled, 2, "sessions that touch at a boundary do not conflict")
	assert.Empty(t, resp.Failures)
}

func TestAssignmentServiceIdenticalRequestsConflict(t *testing.T) {
	store := &scheduleStoreStub{}
	svc := newAssignmentFixture(
		[]models.Teacher{mockTeacher("t1", "Math")},
		[]models.Classroom{mockClassroom("r1", "lab", 30)},
		store,
	)

	req := mockRequest("Math", "lab", 20, "Monday", "09:00", "10:00")
	resp, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
		Requests: []dto.SessionRequest{req, req},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Scheduled, 1)
	require.Len(t, resp.Failures, 1)

	failure := resp.Failures[0]
	assert.Equal(t, failureReasonNoPair, failure.Reason)
	assert.Equal(t, 1, failure.EligibleTeachers, "eligible counts reflect the filter stage, not surviving candidates")
	assert.Equal(t, 1, failure.EligibleClassrooms)
	assert.Equal(t, "50%", resp.Summary.SuccessRate)
}

func TestAssignmentServiceFirstFitAdvancesPastConflicts(t *testing.T) {
	store := &scheduleStoreStub{}
	svc := newAssignmentFixture(
		[]models.Teacher{mockTeacher("t1", "Math"), mockTeacher("t2", "Math")},
		[]models.Classroom{mockClassroom("r1", "lab", 30), mockClassroom("r2", "lab", 30)},
		store,
	)

	req := mockRequest("Math", "lab", 20, "Monday", "09:00", "10:00")
	resp, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
		Requests: []dto.SessionRequest{req, req},
	})
	require.NoError(t, err)
	require.Len(t, resp.Scheduled, 2)

	// First request lands on the first pair. The second cannot reuse t1 or
	// r1 in the same window, so only the t2/r2 pair survives.
	assert.Equal(t, "t1", resp.Scheduled[0].Teacher.ID)
	assert.Equal(t, "r1", resp.Scheduled[0].Classroom.ID)
	assert.Equal(t, "t2", resp.Scheduled[1].Teacher.ID)
	assert.Equal(t, "r2", resp.Scheduled[1].Classroom.ID)
}

func TestAssignmentServiceEligibilityFilters(t *testing.T) {
	store := &scheduleStoreStub{}
	svc := newAssignmentFixture(
		[]models.Teacher{mockTeacher("t1", "Math"), mockTeacher("t2", "History")},
		[]models.Classroom{mockClassroom("r1", "lab", 10), mockClassroom("r2", "lecture", 100)},
		store,
	)

	resp, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
		Requests: []dto.SessionRequest{
			mockRequest("Biology", "lab", 5, "Monday", "09:00", "10:00"),
			mockRequest("Math", "lab", 50, "Monday", "09:00", "10:00"),
			mockRequest("Math", "auditorium", 5, "Monday", "09:00", "10:00"),
		},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Scheduled)
	require.Len(t, resp.Failures, 3)

	assert.Equal(t, 0, resp.Failures[0].EligibleTeachers, "no teacher covers the subject")
	assert.Equal(t, 1, resp.Failures[0].EligibleClassrooms)
	assert.Equal(t, 1, resp.Failures[1].EligibleTeachers)
	assert.Equal(t, 0, resp.Failures[1].EligibleClassrooms, "capacity filter rejects the only lab")
	assert.Equal(t, 0, resp.Failures[2].EligibleClassrooms, "no classroom of the requested type")
	assert.Equal(t, "0%", resp.Summary.SuccessRate)
	assert.Empty(t, store.created)
}

func TestAssignmentServiceAvailabilityFilters(t *testing.T) {
	teacher := mockTeacher("t1", "Math")
	teacher.AvailableDays = []string{"TUESDAY"}
	store := &scheduleStoreStub{}
	svc := newAssignmentFixture(
		[]models.Teacher{teacher},
		[]models.Classroom{mockClassroom("r1", "lab", 30)},
		store,
	)

	resp, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
		Requests: []dto.SessionRequest{
			mockRequest("Math", "lab", 20, "Monday", "09:00", "10:00"),
			mockRequest("Math", "lab", 20, "Tuesday", "15:00", "17:00"),
		},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Scheduled)
	require.Len(t, resp.Failures, 2)
	assert.Equal(t, 0, resp.Failures[0].EligibleTeachers, "wrong day")
	assert.Equal(t, 0, resp.Failures[1].EligibleTeachers, "window extends past availability")
}

func TestAssignmentServiceHonoursExistingCommitments(t *testing.T) {
	existing := models.Schedule{
		DayOfWeek: "MONDAY",
		StartTime: "09:00",
		EndTime:   "10:00",
		Teacher:   models.TeacherSnapshot{ID: "t1"},
		Classroom: models.ClassroomSnapshot{ID: "other-room"},
	}
	store := &scheduleStoreStub{existing: []models.Schedule{existing}}
	svc := newAssignmentFixture(
		[]models.Teacher{mockTeacher("t1", "Math")},
		[]models.Classroom{mockClassroom("r1", "lab", 30)},
		store,
	)

	resp, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
		Requests: []dto.SessionRequest{mockRequest("Math", "lab", 20, "Monday", "09:30", "10:30")},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Scheduled, "teacher already holds an overlapping committed session")
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, 1, resp.Failures[0].EligibleTeachers)
}

func TestAssignmentServiceEmptyBatch(t *testing.T) {
	store := &scheduleStoreStub{}
	svc := newAssignmentFixture(nil, nil, store)

	resp, err := svc.Assign(context.Background(), dto.AssignBatchRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp.Scheduled)
	assert.NotNil(t, resp.Failures)
	assert.Equal(t, 0, resp.Summary.TotalRequests)
	assert.Equal(t, "0%", resp.Summary.SuccessRate)
}

func TestAssignmentServiceSuccessRateRounding(t *testing.T) {
	store := &scheduleStoreStub{}
	svc := newAssignmentFixture(
		[]models.Teacher{mockTeacher("t1", "Math")},
		[]models.Classroom{mockClassroom("r1", "lab", 30)},
		store,
	)

	resp, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
		Requests: []dto.SessionRequest{
			mockRequest("Math", "lab", 20, "Monday", "09:00", "10:00"),
			mockRequest("Math", "lab", 20, "Monday", "10:00", "11:00"),
			mockRequest("Math", "lab", 20, "Monday", "09:30", "10:30"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Summary.Successful)
	assert.Equal(t, 1, resp.Summary.Failed)
	assert.Equal(t, "67%", resp.Summary.SuccessRate)
}

func TestAssignmentServiceStoreFailureAborts(t *testing.T) {
	store := &scheduleStoreStub{errOnCall: 2, err: fmt.Errorf("connection reset")}
	svc := newAssignmentFixture(
		[]models.Teacher{mockTeacher("t1", "Math")},
		[]models.Classroom{mockClassroom("r1", "lab", 30)},
		store,
	)

	resp, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
		Requests: []dto.SessionRequest{
			mockRequest("Math", "lab", 20, "Monday", "09:00", "10:00"),
			mockRequest("Math", "lab", 20, "Monday", "10:00", "11:00"),
			mockRequest("Math", "lab", 20, "Monday", "11:00", "12:00"),
		},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBatchAborted.Code, appErr.Code)

	require.NotNil(t, resp, "partial progress is returned alongside the abort")
	assert.Len(t, resp.Scheduled, 1)
	assert.Equal(t, 3, resp.Summary.TotalRequests)
	assert.Equal(t, 1, resp.Summary.Successful)
	assert.Len(t, store.created, 1, "schedules committed before the failure stay committed")
}

func TestAssignmentServiceBatchSizeLimit(t *testing.T) {
	store := &scheduleStoreStub{}
	svc := NewAssignmentService(
		teacherDirectoryStub{},
		classroomDirectoryStub{},
		store,
		nil, nil, validator.New(), zap.NewNop(),
		config.SchedulerConfig{MaxBatchSize: 1},
	)

	req := mockRequest("Math", "lab", 20, "Monday", "09:00", "10:00")
	_, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
		Requests: []dto.SessionRequest{req, req},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAssignmentServiceRejectsInvalidWindows(t *testing.T) {
	store := &scheduleStoreStub{}
	svc := newAssignmentFixture(
		[]models.Teacher{mockTeacher("t1", "Math")},
		[]models.Classroom{mockClassroom("r1", "lab", 30)},
		store,
	)

	cases := []dto.SessionRequest{
		mockRequest("Math", "lab", 20, "Monday", "10:00", "09:00"),
		mockRequest("Math", "lab", 20, "Monday", "10:00", "10:00"),
		mockRequest("Math", "lab", 20, "Noday", "09:00", "10:00"),
		mockRequest("Math", "lab", 20, "Monday", "9am", "10:00"),
	}
	for _, bad := range cases {
		_, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
			Requests: []dto.SessionRequest{mockRequest("Math", "lab", 20, "Monday", "09:00", "10:00"), bad},
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
	assert.Empty(t, store.created, "a malformed request fails the whole batch before any placement")
}

func TestAssignmentServicePayloadValidation(t *testing.T) {
	store := &scheduleStoreStub{}
	svc := newAssignmentFixture(nil, nil, store)

	req := mockRequest("", "lab", 20, "Monday", "09:00", "10:00")
	_, err := svc.Assign(context.Background(), dto.AssignBatchRequest{Requests: []dto.SessionRequest{req}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = mockRequest("Math", "lab", 0, "Monday", "09:00", "10:00")
	_, err = svc.Assign(context.Background(), dto.AssignBatchRequest{Requests: []dto.SessionRequest{req}})
	require.Error(t, err)
}

func TestAssignmentServiceDirectoryLoadFailure(t *testing.T) {
	store := &scheduleStoreStub{}
	svc := NewAssignmentService(
		teacherDirectoryStub{err: fmt.Errorf("db down")},
		classroomDirectoryStub{},
		store,
		nil, nil, validator.New(), zap.NewNop(),
		config.SchedulerConfig{},
	)

	_, err := svc.Assign(context.Background(), dto.AssignBatchRequest{
		Requests: []dto.SessionRequest{mockRequest("Math", "lab", 20, "Monday", "09:00", "10:00")},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

func newAssignmentFixture(teachers []models.Teacher, classrooms []models.Classroom, store *scheduleStoreStub) *AssignmentService {
	return NewAssignmentService(
		teacherDirectoryStub{items: teachers},
		classroomDirectoryStub{items: classrooms},
		store,
		nil, nil, validator.New(), zap.NewNop(),
		config.SchedulerConfig{MaxBatchSize: 50},
	)
}

func mockTeacher(id, subject string) models.Teacher {
	return models.Teacher{
		ID:             id,
		FullName:       "Teacher " + id,
		Email:          id + "@school.test",
		Subject:        subject,
		AvailableDays:  []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"},
		AvailableFrom:  "08:00",
		AvailableUntil: "16:00",
		Active:         true,
	}
}

func mockClassroom(id, roomType string, capacity int) models.Classroom {
	return models.Classroom{
		ID:       id,
		Name:     "Room " + id,
		RoomType: roomType,
		Capacity: capacity,
		Active:   true,
	}
}

func mockRequest(subject, roomType string, capacity int, day, start, end string) dto.SessionRequest {
	return dto.SessionRequest{
		Subject:   subject,
		RoomType:  roomType,
		Capacity:  capacity,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		Date:      "2025-09-01",
	}
}

type teacherDirectoryStub struct {
	items []models.Teacher
	err   error
}

func (s teacherDirectoryStub) ListActive(_ context.Context) ([]models.Teacher, error) {
	return s.items, s.err
}

type classroomDirectoryStub struct {
	items []models.Classroom
	err   error
}

func (s classroomDirectoryStub) ListActive(_ context.Context) ([]models.Classroom, error) {
	return s.items, s.err
}

type scheduleStoreStub struct {
	existing  []models.Schedule
	created   []models.Schedule
	calls     int
	errOnCall int // 1-based call number that fails; 0 never fails
	err       error
}

func (s *scheduleStoreStub) ListAll(_ context.Context) ([]models.Schedule, error) {
	return s.existing, nil
}

func (s *scheduleStoreStub) Create(_ context.Context, schedule *models.Schedule) error {
	s.calls++
	if s.errOnCall > 0 && s.calls == s.errOnCall {
		return s.err
	}
	schedule.ID = fmt.Sprintf("sched-%d", s.calls)
	s.created = append(s.created, *schedule)
	return nil
}
