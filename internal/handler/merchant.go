package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/auth"
	"github.com/josh-kwaku/dermapay-backend/internal/domain"
	"github.com/josh-kwaku/dermapay-backend/internal/logging"
	"github.com/josh-kwaku/dermapay-backend/internal/service/merchant"
)

type merchantService interface {
	Onboard(ctx context.Context, actor auth.Actor, in merchant.OnboardInput) (*domain.Merchant, error)
	Current(ctx context.Context, actor auth.Actor) (*domain.Merchant, error)
	UpdateDefaultFeePayer(ctx context.Context, actor auth.Actor, payer domain.FeePayer) (*domain.Merchant, error)
	LinkBankDestination(ctx context.Context, actor auth.Actor, in merchant.BankInput) (*domain.BankDestination, error)
	ActiveBankDestination(ctx context.Context, actor auth.Actor) (*domain.BankDestination, error)
}

type MerchantHandler struct {
	merchants byActor[merchantService]
}

func NewMerchantHandler(live, demo merchantService) *MerchantHandler {
	return &MerchantHandler{merchants: byActor[merchantService]{live: live, demo: demo}}
}

type onboardRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	ShopName        string `json:"shopName"`
	City            string `json:"city"`
	State           string `json:"state"`
	BusinessType    string `json:"businessType"`
	MonthlyVolume   string `json:"monthlyVolume"`
	DefaultFeePayer string `json:"defaultFeePayer"`
}

type updateMerchantRequest struct {
	DefaultFeePayer string `json:"defaultFeePayer"`
}

func (r updateMerchantRequest) Validate() []FieldError {
	if r.DefaultFeePayer == "" {
		return []FieldError{{Field: "defaultFeePayer", Message: "required"}}
	}
	return nil
}

type bankDestinationRequest struct {
	RoutingNumber string `json:"routingNumber"`
	AccountNumber string `json:"accountNumber"`
	AccountType   string `json:"accountType"`
}

type merchantDTO struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	ShopName        string    `json:"shopName"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	BusinessType    string    `json:"businessType"`
	MonthlyVolume   string    `json:"monthlyVolume"`
	DefaultFeePayer string    `json:"defaultFeePayer"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toMerchantDTO(m *domain.Merchant) merchantDTO {
	return merchantDTO{
		ID:              m.ID,
		FullName:        m.FullName,
		Email:           m.Email,
		Phone:           m.Phone,
		ShopName:        m.ShopName,
		City:            m.City,
		State:           m.State,
		BusinessType:    m.BusinessType,
		MonthlyVolume:   m.MonthlyVolume,
		DefaultFeePayer: string(m.DefaultFeePayer),
		CreatedAt:       m.CreatedAt,
	}
}

type bankDestinationDTO struct {
	ID                 uuid.UUID `json:"id"`
	RoutingNumber      string    `json:"routingNumber"`
	AccountNumberLast4 string    `json:"accountNumberLast4"`
	AccountType        string    `json:"accountType"`
	CreatedAt          time.Time `json:"createdAt"`
}

func toBankDestinationDTO(b *domain.BankDestination) bankDestinationDTO {
	return bankDestinationDTO{
		ID:                 b.ID,
		RoutingNumber:      b.RoutingNumber,
		AccountNumberLast4: b.AccountNumberLast4,
		AccountType:        string(b.AccountType),
		CreatedAt:          b.CreatedAt,
	}
}

func (h *MerchantHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req onboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	m, err := h.merchants.pick(actor).Onboard(r.Context(), actor, merchant.OnboardInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		ShopName:        req.ShopName,
		City:            req.City,
		State:           req.State,
		BusinessType:    req.BusinessType,
		MonthlyVolume:   req.MonthlyVolume,
		DefaultFeePayer: domain.FeePayer(req.DefaultFeePayer),
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("merchant onboarding failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/merchants/me")
	RespondSuccess(w, http.StatusCreated, toMerchantDTO(m))
}

func (h *MerchantHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	m, err := h.merchants.pick(actor).Current(r.Context(), actor)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toMerchantDTO(m))
}

func (h *MerchantHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req updateMerchantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	m, err := h.merchants.pick(actor).UpdateDefaultFeePayer(r.Context(), actor, domain.FeePayer(req.DefaultFeePayer))
	if err != nil {
		logging.FromContext(r.Context()).Warn("merchant update failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toMerchantDTO(m))
}

func (h *MerchantHandler) LinkBankDestination(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req bankDestinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	b, err := h.merchants.pick(actor).LinkBankDestination(r.Context(), actor, merchant.BankInput{
		RoutingNumber: req.RoutingNumber,
		AccountNumber: req.AccountNumber,
		AccountType:   domain.BankAccountType(req.AccountType),
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("bank destination link failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toBankDestinationDTO(b))
}

func (h *MerchantHandler) BankDestination(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	b, err := h.merchants.pick(actor).ActiveBankDestination(r.Context(), actor)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toBankDestinationDTO(b))
}
