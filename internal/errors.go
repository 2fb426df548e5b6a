package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeMethod       ErrorType = "METHOD_NOT_ALLOWED"
	ErrorTypeTooLarge     ErrorType = "PAYLOAD_TOO_LARGE"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeEmptyBody        ErrorCode = "EMPTY_BODY"
	ErrCodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeInvalidPayload   ErrorCode = "INVALID_PAYLOAD"
	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	ErrCodeMissingField     ErrorCode = "MISSING_FIELD"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"

	ErrCodePaymentNotFound     ErrorCode = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidPaymentState ErrorCode = "INVALID_PAYMENT_STATE"
	ErrCodeInvalidSplitConfig  ErrorCode = "INVALID_SPLIT_CONFIG"
	ErrCodeOwnerNotFound       ErrorCode = "OWNER_NOT_FOUND"

	ErrCodeSplitRecordingFailed     ErrorCode = "SPLIT_RECORDING_FAILED"
	ErrCodeInsuranceRecordingFailed ErrorCode = "INSURANCE_RECORDING_FAILED"

	ErrCodeUnknownEnumValue ErrorCode = "UNKNOWN_ENUM_VALUE"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so sentinel errors keep working after WithCause copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy carrying cause; package-level sentinels stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewMethodNotAllowedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeMethod,
		Code:       ErrCodeMethodNotAllowed,
		Message:    message,
		StatusCode: http.StatusMethodNotAllowed,
	}
}

func NewPayloadTooLargeError(limit int64) *AppError {
	return &AppError{
		Type:       ErrorTypeTooLarge,
		Code:       ErrCodePayloadTooLarge,
		Message:    fmt.Sprintf("Request body exceeds %d bytes", limit),
		StatusCode: http.StatusRequestEntityTooLarge,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewRecordingError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrMethodNotAllowed = NewMethodNotAllowedError("Method not allowed")
	ErrEmptyBody        = NewValidationError("Empty request body", ErrCodeEmptyBody)
	ErrInvalidPayload   = NewValidationError("Invalid JSON payload", ErrCodeInvalidPayload)
	ErrInvalidSignature = NewUnauthorizedError("Invalid signature", ErrCodeInvalidSignature)
	ErrUnauthorized     = NewUnauthorizedError("Missing or invalid authorization header", ErrCodeUnauthorized)

	ErrPaymentNotFound     = NewNotFoundError("Payment not found", ErrCodePaymentNotFound)
	ErrInvalidPaymentState = NewValidationError("Payment must be completed before it can be split", ErrCodeInvalidPaymentState)
	ErrInvalidSplitConfig  = NewValidationError("Split percentages must sum to 100", ErrCodeInvalidSplitConfig)
	ErrOwnerNotFound       = NewNotFoundError("Car owner not found for payment", ErrCodeOwnerNotFound)

	ErrSplitRecordingFailed     = NewRecordingError("Failed to record split transaction", ErrCodeSplitRecordingFailed, nil)
	ErrInsuranceRecordingFailed = NewRecordingError("Failed to record insurance transaction", ErrCodeInsuranceRecordingFailed, nil)
)

func NewMissingFieldError(field string) *AppError {
	return NewValidationFieldError(field, fmt.Sprintf("Missing required field: %s", field), ErrCodeMissingField)
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Code == code
}
