package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlcruz-dev/class-scheduler-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func teacherRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "full_name", "email", "subject", "available_days", "available_from", "available_until", "active", "created_at", "updated_at"})
}

func TestTeacherRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := teacherRows().
		AddRow("t1", "Teacher A", "a@school.test", "Math", "{MONDAY,WEDNESDAY}", "08:00", "16:00", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, email, subject, available_days, available_from, available_until, active, created_at, updated_at FROM teachers WHERE 1=1 AND subject = $1 ORDER BY created_at ASC LIMIT 20 OFFSET 0")).
		WithArgs("Math").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers WHERE 1=1 AND subject = $1")).
		WithArgs("Math").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.TeacherFilter{Subject: "Math"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"MONDAY", "WEDNESDAY"}, []string(list[0].AvailableDays))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := teacherRows().
		AddRow("t1", "Teacher A", "a@school.test", "Math", "{MONDAY}", "08:00", "16:00", true, time.Now(), time.Now()).
		AddRow("t2", "Teacher B", "b@school.test", "Math", "{TUESDAY}", "08:00", "16:00", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE active = TRUE ORDER BY created_at ASC, id ASC")).
		WillReturnRows(rows)

	teachers, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	assert.Equal(t, "t1", teachers[0].ID)
	assert.Equal(t, "t2", teachers[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("a@school.test").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "a@school.test", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE LOWER(email) = LOWER($1) AND id <> $2 LIMIT 1")).
		WithArgs("a@school.test", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByEmail(context.Background(), "a@school.test", "t1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreateAndDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teachers").
		WithArgs(sqlmock.AnyArg(), "Teacher A", "a@school.test", "Math", sqlmock.AnyArg(), "08:00", "16:00", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	teacher := &models.Teacher{
		FullName:       "Teacher A",
		Email:          "a@school.test",
		Subject:        "Math",
		AvailableDays:  []string{"MONDAY"},
		AvailableFrom:  "08:00",
		AvailableUntil: "16:00",
		Active:         true,
	}
	require.NoError(t, repo.Create(context.Background(), teacher))
	assert.NotEmpty(t, teacher.ID, "create assigns an identity")

	mock.ExpectExec("UPDATE teachers SET active = FALSE").
		WithArgs("t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "t1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
