package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jlcruz-dev/class-scheduler-api/internal/models"
	"github.com/jlcruz-dev/class-scheduler-api/internal/service"
	"github.com/jlcruz-dev/class-scheduler-api/pkg/response"
)

// ScheduleHandler exposes the committed schedule store.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler constructs a new ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// List godoc
// @Summary List committed schedules
// @Tags Schedules
// @Produce json
// @Param day_of_week query string false "Filter by day of week"
// @Param teacher_id query string false "Filter by assigned teacher"
// @Param classroom_id query string false "Filter by assigned classroom"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	filter := models.ScheduleFilter{
		DayOfWeek:   strings.ToUpper(strings.TrimSpace(c.Query("day_of_week"))),
		TeacherID:   strings.TrimSpace(c.Query("teacher_id")),
		ClassroomID: strings.TrimSpace(c.Query("classroom_id")),
		Status:      strings.TrimSpace(c.Query("status")),
		SortBy:      c.Query("sort"),
		SortOrder:   c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	schedules, pagination, err := h.schedules.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get schedule detail
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	sched, err := h.schedules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sched, nil)
}

// Cancel godoc
// @Summary Cancel a committed schedule
// @Tags Schedules
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	if err := h.schedules.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
