package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/jlcruz-dev/class-scheduler-api/internal/models"
	appErrors "github.com/jlcruz-dev/class-scheduler-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// ScheduleService exposes read and cancel access to committed schedules.
// The assignment engine is the only writer of new schedules.
type ScheduleService struct {
	repo   scheduleRepository
	logger *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, logger: logger}
}

// List returns schedules with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return schedules, pagination, nil
}

// Get loads a single schedule.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	sched, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return sched, nil
}

// Cancel flips a schedule to the cancelled status. Cancelled schedules still
// participate in conflict checks; the engine does not interpret status.
func (s *ScheduleService) Cancel(ctx context.Context, id string) error {
	sched, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sched.Status == models.ScheduleStatusCancelled {
		return appErrors.Clone(appErrors.ErrConflict, "schedule already cancelled")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.ScheduleStatusCancelled); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel schedule")
	}
	return nil
}
