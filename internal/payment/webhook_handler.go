package payment

import (
	"encoding/json"
	"net/http"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/transport"
)

type WebhookHandler struct {
	*transport.BaseHandler
	paymentService ServiceAPI
	verifier       Verifier
	schema         *SchemaValidator
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, paymentService ServiceAPI, verifier Verifier, schema *SchemaValidator) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:    baseHandler,
		paymentService: paymentService,
		verifier:       verifier,
		schema:         schema,
	}
}

// HandleWebhook handles POST /payment-webhook.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.HandleError(w, errors.ErrMethodNotAllowed)
		return
	}

	rawBody, err := h.ReadBody(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	var decoded interface{}
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		h.Logger.Warn("webhook: malformed JSON", "error", err)
		h.HandleError(w, errors.ErrInvalidPayload)
		return
	}
	if h.schema != nil {
		if err := h.schema.Validate(decoded); err != nil {
			h.Logger.Warn("webhook: payload does not match schema", "error", err)
			h.HandleError(w, errors.ErrInvalidPayload.WithCause(err))
			return
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		h.HandleError(w, errors.ErrInvalidPayload)
		return
	}

	headerSignature := r.Header.Get(SignatureHeader(payload.Provider))
	if !h.verifier.Verify(payload.Provider, rawBody, headerSignature, payload.Signature) {
		h.Logger.Warn("webhook: signature rejected",
			"provider", payload.Provider,
			"payment_id", payload.PaymentID,
			"event_type", payload.EventType)
		h.HandleError(w, errors.ErrInvalidSignature)
		return
	}

	h.Logger.Info("received payment webhook",
		"provider", payload.Provider,
		"event_type", payload.EventType,
		"payment_id", payload.PaymentID,
		"status", payload.Status)

	result, err := h.paymentService.HandleWebhookEvent(r.Context(), payload.EventType, payload.PaymentID)
	if err != nil {
		h.Logger.Error("webhook: processing failed",
			"error", err,
			"event_type", payload.EventType,
			"payment_id", payload.PaymentID)
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, WebhookResponse{Success: true, WebhookResult: result})
}
