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

type SettingsHandler struct {
	baseHandler
	coordinator *organizer.Coordinator
}

func NewSettingsHandler(coordinator *organizer.Coordinator, adapter *httpcontext.Adapter, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		coordinator: coordinator,
	}
}

func (h *SettingsHandler) Get(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.coordinator.Settings())
}

func (h *SettingsHandler) Update(ctx *fasthttp.RequestCtx) {
	var req transport.SettingsRequest
	if !h.decode(ctx, &req) {
		return
	}
	patch := organizer.SettingsPatch{
		WeekStartsOn: req.WeekStartsOn,
		SoundEnabled: req.SoundEnabled,
		Theme:        req.Theme,
		Locale:       req.Locale,
		ShowArchived: req.ShowArchived,
	}
	if req.DefaultView != nil {
		v := domain.ViewMode(*req.DefaultView)
		patch.DefaultView = &v
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	settings, err := h.coordinator.UpdateSettings(stdCtx, patch)
	h.respondResult(ctx, http.StatusOK, settings, err)
}
