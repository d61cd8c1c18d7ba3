package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/practice/backend/internal/application/practice"
	"github.com/practice/backend/internal/domain/engagement"
	"github.com/practice/backend/internal/infrastructure/logger"
	"github.com/practice/backend/internal/interfaces/http/dto"
)

// PracticeHandler exposes period/task generation and the engagement and task
// status changes that drive billing
type PracticeHandler struct {
	BaseHandler
	generator *practice.GeneratorService
	statuses  *practice.StatusService
}

// NewPracticeHandler creates a new PracticeHandler
func NewPracticeHandler(generator *practice.GeneratorService, statuses *practice.StatusService) *PracticeHandler {
	return &PracticeHandler{generator: generator, statuses: statuses}
}

// Generate materializes the periods and tasks of an engagement up to as_of
func (h *PracticeHandler) Generate(c *gin.Context) {
	h.generate(c, h.generator.Generate)
}

// Regenerate deletes the generated periods and tasks of an engagement, then generates again
func (h *PracticeHandler) Regenerate(c *gin.Context) {
	h.generate(c, h.generator.Regenerate)
}

type generateFunc func(ctx context.Context, cmd practice.GenerateCommand) (*practice.GenerateResult, error)

func (h *PracticeHandler) generate(c *gin.Context, run generateFunc) {
	tenant, ok := h.requireTenant(c)
	if !ok {
		return
	}
	engagementID, ok := h.bindID(c)
	if !ok {
		return
	}
	var req dto.GenerateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	asOf, err := time.Parse(dto.DateLayout, req.AsOf)
	if err != nil {
		h.BadRequest(c, "as_of must be a date")
		return
	}

	ctx := logger.WithEngagementID(c.Request.Context(), engagementID.String())
	result, err := run(ctx, practice.GenerateCommand{
		TenantID:     tenant,
		EngagementID: engagementID,
		AsOf:         asOf,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangeEngagementStatus moves an engagement to another status
func (h *PracticeHandler) ChangeEngagementStatus(c *gin.Context) {
	tenant, ok := h.requireTenant(c)
	if !ok {
		return
	}
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := logger.WithEngagementID(c.Request.Context(), id.String())
	eng, err := h.statuses.ChangeEngagementStatus(ctx, practice.ChangeEngagementStatusCommand{
		TenantID:     tenant,
		EngagementID: id,
		Status:       engagement.Status(req.Status),
		At:           parseAt(req.At),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, eng)
}

// ChangeTaskStatus moves a task to another status
func (h *PracticeHandler) ChangeTaskStatus(c *gin.Context) {
	tenant, ok := h.requireTenant(c)
	if !ok {
		return
	}
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.statuses.ChangeTaskStatus(c.Request.Context(), practice.ChangeTaskStatusCommand{
		TenantID: tenant,
		TaskID:   id,
		Status:   engagement.TaskStatus(req.Status),
		At:       parseAt(req.At),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}
