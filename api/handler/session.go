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

type SessionHandler struct {
	baseHandler
	coordinator *organizer.Coordinator
}

func NewSessionHandler(coordinator *organizer.Coordinator, adapter *httpcontext.Adapter, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		coordinator: coordinator,
	}
}

func (h *SessionHandler) List(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.coordinator.Sessions())
}

func (h *SessionHandler) Start(ctx *fasthttp.RequestCtx) {
	var req transport.SessionRequest
	if len(ctx.PostBody()) > 0 && !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.coordinator.StartSession(stdCtx, organizer.SessionInput{
		TaskID: req.TaskID,
		Kind:   domain.SessionKind(req.Kind),
	})
	h.respondResult(ctx, http.StatusCreated, session, err)
}

func (h *SessionHandler) Stop(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.coordinator.StopSession(stdCtx, pathID(ctx))
	h.respondResult(ctx, http.StatusOK, session, err)
}

func (h *SessionHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	err := h.coordinator.DeleteSession(stdCtx, pathID(ctx))
	h.respondResult(ctx, http.StatusOK, map[string]string{"id": pathID(ctx)}, err)
}
