package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid demo credentials"}
	ErrInvalidSignature   = &AppError{http.StatusUnauthorized, "INVALID_SIGNATURE", "Webhook signature is invalid"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrPayloadTooLarge    = &AppError{http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body is too large"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrMerchantNotFound      = &AppError{http.StatusNotFound, "MERCHANT_NOT_FOUND", "Complete merchant onboarding first"}
	ErrMerchantExists        = &AppError{http.StatusConflict, "MERCHANT_ALREADY_EXISTS", "Merchant already onboarded"}
	ErrBankDestinationExists = &AppError{http.StatusConflict, "BANK_DESTINATION_EXISTS", "A bank destination is already linked"}
	ErrUpstreamUnavailable   = &AppError{http.StatusInternalServerError, "PAYMENT_PROCESSOR_UNAVAILABLE", "Could not create payment, please try again"}
	ErrDemoDisabled          = &AppError{http.StatusNotFound, "DEMO_DISABLED", "Demo sessions are not enabled"}

	ErrIdempotencyConflict = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
