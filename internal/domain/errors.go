package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidAmount           = errors.New("amount must be a positive integer")
	ErrUnauthenticated         = errors.New("unauthenticated")
	ErrMerchantNotFound        = errors.New("merchant not found")
	ErrMerchantExists          = errors.New("merchant already onboarded")
	ErrBankDestinationExists   = errors.New("active bank destination already linked")
	ErrUpstreamUnavailable     = errors.New("payment processor unavailable")
	ErrUnknownPayment          = errors.New("no payment matches external id")
	ErrConflictingTransition   = errors.New("conflicting status transition")
	ErrUnrecognizedEventType   = errors.New("unrecognized event type")
	ErrSignatureInvalid        = errors.New("signature invalid")
	ErrStatusChanged           = errors.New("payment status changed concurrently")
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
)

// InvalidInputError names the offending field so callers can surface it.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func InvalidField(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
