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

type BoardHandler struct {
	baseHandler
	coordinator *organizer.Coordinator
}

func NewBoardHandler(coordinator *organizer.Coordinator, adapter *httpcontext.Adapter, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		coordinator: coordinator,
	}
}

// @Summary List boards
// @Tags boards
// @Router /api/v1/boards [get]
func (h *BoardHandler) List(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.coordinator.Boards())
}

// @Summary Create board
// @Tags boards
// @Router /api/v1/boards [post]
func (h *BoardHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.BoardRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.Title == nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}
	in := organizer.BoardInput{Title: *req.Title}
	if req.ParentID != nil {
		in.ParentID = *req.ParentID
	}
	if req.IsFavorite != nil {
		in.IsFavorite = *req.IsFavorite
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	board, err := h.coordinator.CreateBoard(stdCtx, in)
	h.respondResult(ctx, http.StatusCreated, board, err)
}

// @Summary Update board
// @Tags boards
// @Router /api/v1/boards/{id} [put]
func (h *BoardHandler) Update(ctx *fasthttp.RequestCtx) {
	var req transport.BoardRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	board, err := h.coordinator.UpdateBoard(stdCtx, pathID(ctx), organizer.BoardPatch{
		Title:      req.Title,
		ParentID:   req.ParentID,
		IsFavorite: req.IsFavorite,
		Collapsed:  req.Collapsed,
	})
	h.respondResult(ctx, http.StatusOK, board, err)
}

// @Summary Delete board and its tasks
// @Tags boards
// @Router /api/v1/boards/{id} [delete]
func (h *BoardHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	err := h.coordinator.DeleteBoard(stdCtx, pathID(ctx))
	h.respondResult(ctx, http.StatusOK, map[string]string{"id": pathID(ctx)}, err)
}

// @Summary Archive board
// @Tags boards
// @Router /api/v1/boards/{id}/archive [post]
func (h *BoardHandler) Archive(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	board, err := h.coordinator.ArchiveBoard(stdCtx, pathID(ctx))
	h.respondResult(ctx, http.StatusOK, board, err)
}

// @Summary Restore board
// @Tags boards
// @Router /api/v1/boards/{id}/restore [post]
func (h *BoardHandler) Restore(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	board, err := h.coordinator.RestoreBoard(stdCtx, pathID(ctx))
	h.respondResult(ctx, http.StatusOK, board, err)
}

// @Summary Duplicate board with its tasks
// @Tags boards
// @Router /api/v1/boards/{id}/duplicate [post]
func (h *BoardHandler) Duplicate(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	board, err := h.coordinator.DuplicateBoard(stdCtx, pathID(ctx))
	h.respondResult(ctx, http.StatusCreated, board, err)
}

// @Summary List tasks of a board
// @Tags boards
// @Router /api/v1/boards/{id}/tasks [get]
func (h *BoardHandler) Tasks(ctx *fasthttp.RequestCtx) {
	tasks, err := h.coordinator.Tasks(pathID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}
