package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDomainError maps a service error onto the API error table. Internal
// details stay in the logs.
func RespondDomainError(w http.ResponseWriter, err error) {
	var fieldErr *domain.InvalidInputError
	if errors.As(err, &fieldErr) {
		RespondValidationError(w, []FieldError{{Field: fieldErr.Field, Message: fieldErr.Reason}})
		return
	}

	var appErr *AppError

	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		RespondValidationError(w, []FieldError{{Field: "amount", Message: "must be a positive integer"}})
		return
	case errors.Is(err, domain.ErrInvalidInput):
		appErr = ErrValidationFailed
	case errors.Is(err, domain.ErrUnauthenticated):
		appErr = ErrMissingToken
	case errors.Is(err, domain.ErrMerchantNotFound):
		appErr = ErrMerchantNotFound
	case errors.Is(err, domain.ErrMerchantExists):
		appErr = ErrMerchantExists
	case errors.Is(err, domain.ErrBankDestinationExists):
		appErr = ErrBankDestinationExists
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		appErr = ErrUpstreamUnavailable
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}
