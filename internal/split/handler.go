package split

import (
	"encoding/json"
	"net/http"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/transport"
	"github.com/autorentar/rental-payments/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		service:     service,
	}
}

// ProcessSplit handles POST /process-payment-split. The bearer check runs in
// middleware before this handler.
func (h *Handler) ProcessSplit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.HandleError(w, errors.ErrMethodNotAllowed)
		return
	}

	body, err := h.ReadBody(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		h.Logger.Warn("ProcessSplit: invalid payload", "error", err)
		h.HandleError(w, errors.ErrInvalidPayload)
		return
	}

	result, err := h.service.Process(r.Context(), req)
	if err != nil {
		h.Logger.Error("ProcessSplit: service error", "error", err, "payment_id", req.PaymentID)
		h.HandleError(w, err)
		return
	}

	logger.From(r.Context()).Info("payment split processed",
		"payment_id", req.PaymentID,
		"subject", errors.SubjectFromContext(r.Context()),
		"total_split_cents", result.TotalSplitCents)

	h.WriteJSON(w, http.StatusOK, Response{Success: true, Result: result})
}
