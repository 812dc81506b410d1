package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jlcruz-dev/class-scheduler-api/internal/models"
	appErrors "github.com/jlcruz-dev/class-scheduler-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Deactivate(ctx context.Context, id string) error
}

// CreateTeacherRequest describes payload for creating a teacher.
type CreateTeacherRequest struct {
	FullName       string   `json:"full_name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Subject        string   `json:"subject" validate:"required"`
	AvailableDays  []string `json:"available_days" validate:"required,min=1,dive,required"`
	AvailableFrom  string   `json:"available_from" validate:"required"`
	AvailableUntil string   `json:"available_until" validate:"required"`
}

// UpdateTeacherRequest updates an existing teacher.
type UpdateTeacherRequest struct {
	FullName       string   `json:"full_name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Subject        string   `json:"subject" validate:"required"`
	AvailableDays  []string `json:"available_days" validate:"required,min=1,dive,required"`
	AvailableFrom  string   `json:"available_from" validate:"required"`
	AvailableUntil string   `json:"available_until" validate:"required"`
	Active         *bool    `json:"active"`
}

// TeacherService coordinates teacher directory management.
type TeacherService struct {
	repo      teacherRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService instantiates TeacherService.
func NewTeacherService(repo teacherRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns teachers with pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
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
	return teachers, pagination, nil
}

// Get loads a single teacher.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new teacher.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	days, err := normalizeAvailability(req.AvailableDays, req.AvailableFrom, req.AvailableUntil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher email already registered")
	}

	teacher := &models.Teacher{
		FullName:       req.FullName,
		Email:          req.Email,
		Subject:        req.Subject,
		AvailableDays:  days,
		AvailableFrom:  req.AvailableFrom,
		AvailableUntil: req.AvailableUntil,
		Active:         true,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	s.invalidateDirectory(ctx)
	return teacher, nil
}

// Update modifies an existing teacher.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	days, err := normalizeAvailability(req.AvailableDays, req.AvailableFrom, req.AvailableUntil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability")
	}

	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher email already registered")
	}

	teacher.FullName = req.FullName
	teacher.Email = req.Email
	teacher.Subject = req.Subject
	teacher.AvailableDays = days
	teacher.AvailableFrom = req.AvailableFrom
	teacher.AvailableUntil = req.AvailableUntil
	if req.Active != nil {
		teacher.Active = *req.Active
	}

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	s.invalidateDirectory(ctx)
	return teacher, nil
}

// Deactivate removes a teacher from the assignable pool.
func (s *TeacherService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate teacher")
	}
	s.invalidateDirectory(ctx)
	return nil
}

func (s *TeacherService) invalidateDirectory(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, teacherDirectoryCacheKey+"*"); err != nil {
		s.logger.Warn("failed to invalidate teacher directory cache", zap.Error(err))
	}
}

// normalizeAvailability canonicalises day names and checks the window is a
// valid forward range.
func normalizeAvailability(rawDays []string, from, until string) ([]string, error) {
	days := make([]string, 0, len(rawDays))
	seen := make(map[string]bool, len(rawDays))
	for _, raw := range rawDays {
		day := normalizeDay(raw)
		if day == "" {
			return nil, fmt.Errorf("unknown day of week %q", raw)
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}

	start, err := minuteOfDay(from)
	if err != nil {
		return nil, err
	}
	end, err := minuteOfDay(until)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, fmt.Errorf("availability window %s-%s is empty", from, until)
	}
	return days, nil
}
