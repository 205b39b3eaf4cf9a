package llmChat

import (
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
	}
}

// Chat handles POST /chat.
func (h *HandlerImpl) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "Chat")
	defer span.End()

	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode chat request", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.WriteError(w, r, err)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := api.ValidateStruct(req); err != nil {
		span.SetStatus(codes.Error, "Invalid chat request")
		api.WriteError(w, r, err)
		return
	}

	resp := h.service.Reply(ctx, req)
	span.SetStatus(codes.Ok, "Reply sent")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
