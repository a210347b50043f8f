package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/dermapay-backend/internal/auth"
	"github.com/josh-kwaku/dermapay-backend/internal/logging"
)

const (
	demoIdentifier = "demo"
	demoEmail      = "demo@dermapay.com"
)

// DemoSessionHandler issues sandbox tokens. The demo identity is fixed; the
// password is checked against a bcrypt hash from configuration, and an empty
// hash disables the endpoint.
type DemoSessionHandler struct {
	passwordHash []byte
	jwtSecret    string
	tokenTTL     time.Duration
}

func NewDemoSessionHandler(passwordHash, jwtSecret string, tokenTTL time.Duration) *DemoSessionHandler {
	return &DemoSessionHandler{
		passwordHash: []byte(passwordHash),
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
	}
}

type demoSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (r demoSessionRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Identifier == "" {
		errs = append(errs, FieldError{Field: "identifier", Message: "required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "required"})
	}
	return errs
}

type demoSessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Demo      bool      `json:"demo"`
}

func (h *DemoSessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if len(h.passwordHash) == 0 {
		RespondAppError(w, ErrDemoDisabled, nil)
		return
	}

	var req demoSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if !strings.EqualFold(strings.TrimSpace(req.Identifier), demoIdentifier) {
		RespondAppError(w, ErrInvalidCredentials, nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		RespondAppError(w, ErrInvalidCredentials, nil)
		return
	}

	actor := auth.Actor{UserID: auth.DemoUserID, Email: demoEmail, Demo: true}
	token, err := auth.GenerateToken(actor, h.jwtSecret, h.tokenTTL)
	if err != nil {
		logging.FromContext(r.Context()).Error("demo token signing failed", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	logging.FromContext(r.Context()).Info("demo session issued")
	RespondSuccess(w, http.StatusOK, demoSessionResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(h.tokenTTL),
		Demo:      true,
	})
}
