package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlcruz-dev/class-scheduler-api/internal/models"
)

func scheduleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "session_date", "day_of_week", "start_time", "end_time", "subject", "notes", "recurring", "status", "teacher_snapshot", "classroom_snapshot", "created_at", "updated_at"})
}

const (
	teacherSnapshotJSON   = `{"id":"t1","full_name":"Teacher A","email":"a@school.test","subject":"Math","available_days":["MONDAY"],"available_from":"08:00","available_until":"16:00"}`
	classroomSnapshotJSON = `{"id":"r1","name":"Room 1","room_type":"lab","capacity":30}`
)

func TestScheduleRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := scheduleRows().
		AddRow("s1", "2025-09-01", "MONDAY", "09:00", "10:00", "Math", "", false, "scheduled",
			[]byte(teacherSnapshotJSON), []byte(classroomSnapshotJSON), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules ORDER BY created_at ASC, id ASC")).
		WillReturnRows(rows)

	schedules, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, schedules, 1)

	sched := schedules[0]
	assert.Equal(t, "t1", sched.Teacher.ID, "teacher snapshot decodes from jsonb")
	assert.Equal(t, "Math", sched.Teacher.Subject)
	assert.Equal(t, "r1", sched.Classroom.ID)
	assert.Equal(t, 30, sched.Classroom.Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListFiltersBySnapshotID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := scheduleRows().
		AddRow("s1", "2025-09-01", "MONDAY", "09:00", "10:00", "Math", "", false, "scheduled",
			[]byte(teacherSnapshotJSON), []byte(classroomSnapshotJSON), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE 1=1 AND teacher_snapshot->>'id' = $1 ORDER BY created_at ASC LIMIT 20 OFFSET 0")).
		WithArgs("t1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedules WHERE 1=1 AND teacher_snapshot->>'id' = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ScheduleFilter{TeacherID: "t1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("INSERT INTO schedules").
		WithArgs(sqlmock.AnyArg(), "2025-09-01", "MONDAY", "09:00", "10:00", "Math", "", false, "scheduled",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sched := &models.Schedule{
		SessionDate: "2025-09-01",
		DayOfWeek:   "MONDAY",
		StartTime:   "09:00",
		EndTime:     "10:00",
		Subject:     "Math",
		Status:      models.ScheduleStatusScheduled,
		Teacher:     models.TeacherSnapshot{ID: "t1"},
		Classroom:   models.ClassroomSnapshot{ID: "r1"},
	}
	require.NoError(t, repo.Create(context.Background(), sched))
	assert.NotEmpty(t, sched.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("UPDATE schedules SET status").
		WithArgs("s1", models.ScheduleStatusCancelled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "s1", models.ScheduleStatusCancelled))
	assert.NoError(t, mock.ExpectationsWereMet())
}
