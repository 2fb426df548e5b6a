package transport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/pkg/logger"
)

// MaxBodyBytes bounds every request body the service reads.
const MaxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

type ErrorResponse struct {
	Error   string           `json:"error"`
	Code    errors.ErrorCode `json:"code,omitempty"`
	Message string           `json:"message,omitempty"`
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// HandleError maps err to the error envelope. 4xx carry {error, code};
// 5xx carry {error, message} with the underlying cause for operators.
func (h *BaseHandler) HandleError(w http.ResponseWriter, err error) {
	appErr, ok := errors.IsAppError(err)
	if !ok {
		h.Logger.Error("unhandled error", "error", err)
		h.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		message := appErr.Message
		if appErr.Cause != nil {
			message = appErr.Cause.Error()
		}
		h.Logger.Error("request failed", "code", appErr.Code, "error", appErr)
		h.WriteJSON(w, appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Message: message,
		})
		return
	}

	h.WriteJSON(w, appErr.StatusCode, ErrorResponse{
		Error: appErr.GetDetailedMessage(),
		Code:  appErr.Code,
	})
}

// ReadBody returns the raw request body exactly as received.
func (h *BaseHandler) ReadBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, errors.ErrEmptyBody
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, errors.ErrInvalidPayload.WithCause(err)
	}
	if len(body) > MaxBodyBytes {
		return nil, errors.NewPayloadTooLargeError(MaxBodyBytes)
	}
	if len(body) == 0 {
		return nil, errors.ErrEmptyBody
	}
	return body, nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}
	return authHeader[7:]
}
