package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jlcruz-dev/class-scheduler-api/internal/models"
	appErrors "github.com/jlcruz-dev/class-scheduler-api/pkg/errors"
)

type classroomRepository interface {
	List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error)
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	Update(ctx context.Context, classroom *models.Classroom) error
	Deactivate(ctx context.Context, id string) error
}

// CreateClassroomRequest describes payload for creating a classroom.
type CreateClassroomRequest struct {
	Name     string `json:"name" validate:"required"`
	RoomType string `json:"room_type" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

// UpdateClassroomRequest updates an existing classroom.
type UpdateClassroomRequest struct {
	Name     string `json:"name" validate:"required"`
	RoomType string `json:"room_type" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	Active   *bool  `json:"active"`
}

// ClassroomService coordinates classroom directory management.
type ClassroomService struct {
	repo      classroomRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassroomService instantiates ClassroomService.
func NewClassroomService(repo classroomRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassroomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns classrooms with pagination metadata.
func (s *ClassroomService) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, *models.Pagination, error) {
	classrooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
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
	return classrooms, pagination, nil
}

// Get loads a single classroom.
func (s *ClassroomService) Get(ctx context.Context, id string) (*models.Classroom, error) {
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return classroom, nil
}

// Create registers a new classroom.
func (s *ClassroomService) Create(ctx context.Context, req CreateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}

	classroom := &models.Classroom{
		Name:     req.Name,
		RoomType: req.RoomType,
		Capacity: req.Capacity,
		Active:   true,
	}
	if err := s.repo.Create(ctx, classroom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create classroom")
	}
	s.invalidateDirectory(ctx)
	return classroom, nil
}

// Update modifies an existing classroom.
func (s *ClassroomService) Update(ctx context.Context, id string, req UpdateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}

	classroom, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	classroom.Name = req.Name
	classroom.RoomType = req.RoomType
	classroom.Capacity = req.Capacity
	if req.Active != nil {
		classroom.Active = *req.Active
	}

	if err := s.repo.Update(ctx, classroom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update classroom")
	}
	s.invalidateDirectory(ctx)
	return classroom, nil
}

// Deactivate removes a classroom from the assignable pool.
func (s *ClassroomService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate classroom")
	}
	s.invalidateDirectory(ctx)
	return nil
}

func (s *ClassroomService) invalidateDirectory(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, classroomDirectoryCacheKey+"*"); err != nil {
		s.logger.Warn("failed to invalidate classroom directory cache", zap.Error(err))
	}
}
