package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/jlcruz-dev/class-scheduler-api/internal/dto"
	"github.com/jlcruz-dev/class-scheduler-api/internal/models"
	"github.com/jlcruz-dev/class-scheduler-api/pkg/config"
	appErrors "github.com/jlcruz-dev/class-scheduler-api/pkg/errors"
)

// failureReasonNoPair is the diagnostic attached to every unschedulable
// request. Kept stable for API consumers.
const failureReasonNoPair = "No available teacher-classroom combination found without conflicts"

const (
	teacherDirectoryCacheKey   = "directory:teachers:active"
	classroomDirectoryCacheKey = "directory:classrooms:active"
)

type teacherDirectory interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type classroomDirectory interface {
	ListActive(ctx context.Context) ([]models.Classroom, error)
}

type scheduleStore interface {
	ListAll(ctx context.Context) ([]models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
}

// AssignmentService assigns session requests to teacher/classroom pairs
// without time conflicts. Requests are processed strictly in input order and
// every commit is visible to the conflict checks of later requests in the
// same batch, so a batch must never be parallelized across requests.
type AssignmentService struct {
	teachers   teacherDirectory
	classrooms classroomDirectory
	schedules  scheduleStore
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        config.SchedulerConfig
}

// NewAssignmentService wires the engine's collaborators.
func NewAssignmentService(
	teachers teacherDirectory,
	classrooms classroomDirectory,
	schedules scheduleStore,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		teachers:   teachers,
		classrooms: classrooms,
		schedules:  schedules,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// sessionWindow is a request's placement target in canonical form.
type sessionWindow struct {
	day   string
	start int
	end   int
}

// Assign runs the batch. First-fit over eligible teachers (outer) and
// eligible classrooms (inner); the first conflict-free pair wins and no
// further pairs are tried for that request. On a store failure mid-batch the
// run aborts and the partial response is returned alongside the error;
// schedules persisted before the failure stay persisted.
func (s *AssignmentService) Assign(ctx context.Context, batch dto.AssignBatchRequest) (*dto.AssignBatchResponse, error) {
	if err := s.validator.Struct(batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment batch payload")
	}
	if s.cfg.MaxBatchSize > 0 && len(batch.Requests) > s.cfg.MaxBatchSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("batch exceeds maximum of %d requests", s.cfg.MaxBatchSize))
	}

	windows := make([]sessionWindow, len(batch.Requests))
	for i, req := range batch.Requests {
		window, err := parseSessionWindow(req)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("request %d has an invalid day or time range", i))
		}
		windows[i] = window
	}

	if s.cfg.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.BatchTimeout)
		defer cancel()
	}

	started := time.Now()

	teachers, err := s.loadTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher directory")
	}
	classrooms, err := s.loadClassrooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom directory")
	}
	committed, err := s.schedules.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committed schedules")
	}

	resp := &dto.AssignBatchResponse{
		Scheduled: make([]models.Schedule, 0, len(batch.Requests)),
		Failures:  make([]dto.AssignmentFailure, 0),
	}

	for i, req := range batch.Requests {
		window := windows[i]

		eligibleTeachers := lo.Filter(teachers, func(t models.Teacher, _ int) bool {
			return t.Subject == req.Subject && teacherCoversWindow(t, window.day, window.start, window.end)
		})
		eligibleClassrooms := lo.Filter(classrooms, func(room models.Classroom, _ int) bool {
			return room.RoomType == req.RoomType && room.Capacity >= req.Capacity
		})

		schedule, found := placeFirstFit(req, window, eligibleTeachers, eligibleClassrooms, committed)
		if !found {
			resp.Failures = append(resp.Failures, dto.AssignmentFailure{
				Request:            req,
				Reason:             failureReasonNoPair,
				EligibleTeachers:   len(eligibleTeachers),
				EligibleClassrooms: len(eligibleClassrooms),
			})
			if s.metrics != nil {
				s.metrics.RecordAssignment(false)
			}
			continue
		}

		if err := s.persist(ctx, &schedule); err != nil {
			resp.Summary = buildSummary(len(batch.Requests), len(resp.Scheduled), len(resp.Failures))
			s.logger.Error("assignment batch aborted",
				zap.Int("request_index", i),
				zap.Int("committed", len(resp.Scheduled)),
				zap.Error(err),
			)
			return resp, appErrors.Wrap(err, appErrors.ErrBatchAborted.Code, appErrors.ErrBatchAborted.Status,
				fmt.Sprintf("schedule store failed at request %d; %d schedules committed before abort", i, len(resp.Scheduled)))
		}

		committed = append(committed, schedule)
		resp.Scheduled = append(resp.Scheduled, schedule)
		if s.metrics != nil {
			s.metrics.RecordAssignment(true)
		}
	}

	resp.Summary = buildSummary(len(batch.Requests), len(resp.Scheduled), len(resp.Failures))
	if s.metrics != nil {
		s.metrics.ObserveBatchDuration(time.Since(started))
	}
	s.logger.Info("assignment batch complete",
		zap.Int("total", resp.Summary.TotalRequests),
		zap.Int("successful", resp.Summary.Successful),
		zap.Int("failed", resp.Summary.Failed),
		zap.String("success_rate", resp.Summary.SuccessRate),
		zap.Duration("duration", time.Since(started)),
	)
	return resp, nil
}

func (s *AssignmentService) loadTeachers(ctx context.Context) ([]models.Teacher, error) {
	var cached []models.Teacher
	if hit, err := s.cache.Get(ctx, teacherDirectoryCacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, teacherDirectoryCacheKey, teachers, s.cfg.DirectoryCacheTTL); err != nil {
		s.logger.Warn("failed to cache teacher directory", zap.Error(err))
	}
	return teachers, nil
}

func (s *AssignmentService) loadClassrooms(ctx context.Context) ([]models.Classroom, error) {
	var cached []models.Classroom
	if hit, err := s.cache.Get(ctx, classroomDirectoryCacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	classrooms, err := s.classrooms.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, classroomDirectoryCacheKey, classrooms, s.cfg.DirectoryCacheTTL); err != nil {
		s.logger.Warn("failed to cache classroom directory", zap.Error(err))
	}
	return classrooms, nil
}

func (s *AssignmentService) persist(ctx context.Context, schedule *models.Schedule) error {
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}
	return s.schedules.Create(ctx, schedule)
}

// placeFirstFit scans teacher-major, classroom-minor and returns the
// schedule built from the first conflict-free pair.
func placeFirstFit(
	req dto.SessionRequest,
	window sessionWindow,
	teachers []models.Teacher,
	classrooms []models.Classroom,
	committed []models.Schedule,
) (models.Schedule, bool) {
	for _, teacher := range teachers {
		for _, classroom := range classrooms {
			if hasConflict(committed, teacher.ID, classroom.ID, window) {
				continue
			}
			return buildSchedule(req, window, teacher, classroom), true
		}
	}
	return models.Schedule{}, false
}

// hasConflict reports whether any committed schedule on the same day holds
// the candidate teacher or the candidate classroom during an overlapping
// range. Both axes can trip independently.
func hasConflict(committed []models.Schedule, teacherID, classroomID string, window sessionWindow) bool {
	for _, sched := range committed {
		if normalizeDay(sched.DayOfWeek) != window.day {
			continue
		}
		if sched.Teacher.ID != teacherID && sched.Classroom.ID != classroomID {
			continue
		}
		start, err := minuteOfDay(sched.StartTime)
		if err != nil {
			continue
		}
		end, err := minuteOfDay(sched.EndTime)
		if err != nil {
			continue
		}
		if rangesOverlap(start, end, window.start, window.end) {
			return true
		}
	}
	return false
}

// buildSchedule copies the request payload and snapshots both parties at
// commit time.
func buildSchedule(req dto.SessionRequest, window sessionWindow, teacher models.Teacher, classroom models.Classroom) models.Schedule {
	return models.Schedule{
		SessionDate: req.Date,
		DayOfWeek:   window.day,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Subject:     req.Subject,
		Notes:       req.Notes,
		Recurring:   req.Recurring,
		Status:      models.ScheduleStatusScheduled,
		Teacher:     models.SnapshotTeacher(teacher),
		Classroom:   models.SnapshotClassroom(classroom),
	}
}

func parseSessionWindow(req dto.SessionRequest) (sessionWindow, error) {
	day := normalizeDay(req.DayOfWeek)
	if day == "" {
		return sessionWindow{}, fmt.Errorf("unknown day of week %q", req.DayOfWeek)
	}
	start, err := minuteOfDay(req.StartTime)
	if err != nil {
		return sessionWindow{}, err
	}
	end, err := minuteOfDay(req.EndTime)
	if err != nil {
		return sessionWindow{}, err
	}
	if end <= start {
		return sessionWindow{}, fmt.Errorf("end time %s is not after start time %s", req.EndTime, req.StartTime)
	}
	return sessionWindow{day: day, start: start, end: end}, nil
}

// buildSummary aggregates a run. An empty batch reports "0%" so the field
// stays a parseable percentage for clients.
func buildSummary(total, successful, failed int) dto.AssignmentSummary {
	summary := dto.AssignmentSummary{
		TotalRequests: total,
		Successful:    successful,
		Failed:        failed,
		SuccessRate:   "0%",
	}
	if total > 0 {
		summary.SuccessRate = fmt.Sprintf("%d%%", int(math.Round(float64(successful)/float64(total)*100)))
	}
	return summary
}
