package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jlcruz-dev/class-scheduler-api/internal/dto"
	"github.com/jlcruz-dev/class-scheduler-api/internal/service"
	appErrors "github.com/jlcruz-dev/class-scheduler-api/pkg/errors"
	"github.com/jlcruz-dev/class-scheduler-api/pkg/response"
)

type batchAssigner interface {
	Assign(ctx context.Context, batch dto.AssignBatchRequest) (*dto.AssignBatchResponse, error)
}

// AssignmentHandler exposes the batch assignment endpoint.
type AssignmentHandler struct {
	service batchAssigner
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Assign godoc
// @Summary Assign a batch of session requests to teacher/classroom pairs
// @Description Processes requests in input order with first-fit placement. Commits are visible to later requests in the same batch.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.AssignBatchRequest true "Ordered session requests"
// @Success 200 {object} response.Envelope
// @Router /schedules/assign [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var batch dto.AssignBatchRequest
	if err := c.ShouldBindJSON(&batch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	resp, err := h.service.Assign(c.Request.Context(), batch)
	if err != nil {
		// Mid-batch store failures carry partial progress; surface both
		// the committed schedules and the abort in one envelope.
		var appErr *appErrors.Error
		if resp != nil && errors.As(err, &appErr) && appErr.Code == appErrors.ErrBatchAborted.Code {
			c.Header("Cache-Control", "no-store")
			c.JSON(appErr.Status, response.Envelope{Data: resp, Error: appErr})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
