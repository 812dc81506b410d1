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

func classroomRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "room_type", "capacity", "active", "created_at", "updated_at"})
}

func TestClassroomRepositoryListWithCapacityFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	rows := classroomRows().
		AddRow("r1", "Lab 1", "lab", 30, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM classrooms WHERE 1=1 AND room_type = $1 AND capacity >= $2 ORDER BY created_at ASC LIMIT 20 OFFSET 0")).
		WithArgs("lab", 25).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classrooms WHERE 1=1 AND room_type = $1 AND capacity >= $2")).
		WithArgs("lab", 25).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ClassroomFilter{RoomType: "lab", MinCapacity: 25})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	rows := classroomRows().
		AddRow("r1", "Lab 1", "lab", 30, true, time.Now(), time.Now()).
		AddRow("r2", "Lecture Hall", "lecture", 100, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM classrooms WHERE active = TRUE ORDER BY created_at ASC, id ASC")).
		WillReturnRows(rows)

	classrooms, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, classrooms, 2)
	assert.Equal(t, "r1", classrooms[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryCreateAndDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectExec("INSERT INTO classrooms").
		WithArgs(sqlmock.AnyArg(), "Lab 1", "lab", 30, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	classroom := &models.Classroom{Name: "Lab 1", RoomType: "lab", Capacity: 30, Active: true}
	require.NoError(t, repo.Create(context.Background(), classroom))
	assert.NotEmpty(t, classroom.ID)

	mock.ExpectExec("UPDATE classrooms SET active = FALSE").
		WithArgs("r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "r1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
