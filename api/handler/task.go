package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/usecase/organizer"
)

type TaskHandler struct {
	baseHandler
	coordinator *organizer.Coordinator
}

func NewTaskHandler(coordinator *organizer.Coordinator, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		coordinator: coordinator,
	}
}

// @Summary List archived tasks
// @Tags tasks
// @Router /api/v1/tasks/archived [get]
func (h *TaskHandler) Archived(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.coordinator.ArchivedTasks())
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.Title == nil || req.BoardID == "" {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}
	in := organizer.TaskInput{
		BoardID: req.BoardID,
		Title:   *req.Title,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Status != nil {
		in.Status = domain.Status(*req.Status)
	}
	if req.Priority != nil {
		in.Priority = domain.Priority(*req.Priority)
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}
	if req.DueDate != nil {
		in.DueDate = *req.DueDate
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.coordinator.CreateTask(stdCtx, in)
	h.respondResult(ctx, http.StatusCreated, task, err)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	patch := organizer.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		s := domain.Status(*req.Status)
		patch.Status = &s
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		patch.Priority = &p
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.coordinator.UpdateTask(stdCtx, pathID(ctx), patch)
	h.respondResult(ctx, http.StatusOK, task, err)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	err := h.coordinator.DeleteTask(stdCtx, pathID(ctx))
	h.respondResult(ctx, http.StatusOK, map[string]string{"id": pathID(ctx)}, err)
}

// @Summary Archive task
// @Tags tasks
// @Router /api/v1/tasks/{id}/archive [post]
func (h *TaskHandler) Archive(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.coordinator.ArchiveTask(stdCtx, pathID(ctx))
	h.respondResult(ctx, http.StatusOK, task, err)
}

// @Summary Restore task
// @Tags tasks
// @Router /api/v1/tasks/{id}/restore [post]
func (h *TaskHandler) Restore(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.coordinator.RestoreTask(stdCtx, pathID(ctx))
	h.respondResult(ctx, http.StatusOK, task, err)
}

// @Summary Duplicate task
// @Tags tasks
// @Router /api/v1/tasks/{id}/duplicate [post]
func (h *TaskHandler) Duplicate(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.coordinator.DuplicateTask(stdCtx, pathID(ctx))
	h.respondResult(ctx, http.StatusCreated, task, err)
}
