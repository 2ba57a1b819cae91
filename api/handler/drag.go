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

type DragHandler struct {
	baseHandler
	coordinator *organizer.Coordinator
}

func NewDragHandler(coordinator *organizer.Coordinator, adapter *httpcontext.Adapter, logger *zap.Logger) *DragHandler {
	return &DragHandler{
		baseHandler: newBaseHandler(adapter, logger),
		coordinator: coordinator,
	}
}

// @Summary Apply a drag gesture
// @Tags drag
// @Router /api/v1/drag [post]
func (h *DragHandler) Drag(ctx *fasthttp.RequestCtx) {
	var req transport.DragRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out := h.coordinator.ApplyRawDrag(stdCtx, organizer.RawGesture{
		Item:        req.Item,
		ItemID:      req.ItemID,
		Source:      req.Source,
		Destination: req.Destination,
		Index:       req.Index,
	})
	if req.Wait {
		out = out.Wait(stdCtx)
	}

	resp := transport.DragResponse{
		Status:    string(out.Status),
		Operation: out.Operation.String(),
		Changed:   make([]transport.RecordRef, 0, len(out.Changed)),
		Pending:   out.Pending(),
	}
	for _, ref := range out.Changed {
		resp.Changed = append(resp.Changed, transport.RecordRef{Kind: string(ref.Kind), ID: ref.ID})
	}

	switch out.Status {
	case organizer.StatusApplied, organizer.StatusNoOp:
		h.respondSuccess(ctx, http.StatusOK, resp)
	case organizer.StatusPersistenceFailed:
		h.log(stdCtx).Warn("drag applied but not stored", zap.Error(out.Err))
		h.respondJSON(ctx, http.StatusAccepted, transport.NewAccepted(resp, string(domain.ErrCodePersistence), errString(out.Err)))
	case organizer.StatusDestinationNotFound:
		h.respondJSON(ctx, http.StatusNotFound, transport.NewError(string(domain.ErrCodeDestinationNotFound), errString(out.Err), resp))
	default:
		h.respondJSON(ctx, http.StatusNotFound, transport.NewError(string(domain.ErrCodeNotFound), errString(out.Err), resp))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
