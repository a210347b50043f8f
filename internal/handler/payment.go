package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/josh-kwaku/dermapay-backend/internal/auth"
	"github.com/josh-kwaku/dermapay-backend/internal/domain"
	"github.com/josh-kwaku/dermapay-backend/internal/logging"
	"github.com/josh-kwaku/dermapay-backend/internal/service/payment"
)

const qrSize = 256

type paymentService interface {
	CreatePayment(ctx context.Context, actor auth.Actor, in payment.CreatePaymentInput) (*payment.Receipt, error)
	GetPayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*domain.Payment, error)
	ListPayments(ctx context.Context, actor auth.Actor, limit int) ([]domain.Payment, error)
}

type PaymentHandler struct {
	payments byActor[paymentService]
}

func NewPaymentHandler(live, demo paymentService) *PaymentHandler {
	return &PaymentHandler{payments: byActor[paymentService]{live: live, demo: demo}}
}

// createPaymentRequest has no merchant field. The merchant is always the
// authenticated actor's own, so any merchant reference in the body is dropped
// by the decoder.
type createPaymentRequest struct {
	Mode       string      `json:"mode"`
	Amount     json.Number `json:"amount"`
	FeePayer   string      `json:"feePayer"`
	Note       *string     `json:"note"`
	ClientName *string     `json:"clientName"`
}

func (r createPaymentRequest) Validate() (int64, []FieldError) {
	var errs []FieldError

	if r.Mode == "" {
		errs = append(errs, FieldError{Field: "mode", Message: "required"})
	}

	var amount int64
	if r.Amount == "" {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if n, err := strconv.ParseInt(r.Amount.String(), 10, 64); err != nil {
		errs = append(errs, FieldError{Field: "amount", Message: "must be an integer amount in minor units"})
	} else {
		amount = n
	}

	if r.FeePayer == "" {
		errs = append(errs, FieldError{Field: "feePayer", Message: "required"})
	}

	return amount, errs
}

type receiptDTO struct {
	ID                    uuid.UUID `json:"id"`
	CheckoutURL           string    `json:"checkoutUrl"`
	Amount                int64     `json:"amount"`
	CustomerChargedAmount int64     `json:"customerChargedAmount"`
}

type paymentDTO struct {
	ID                    uuid.UUID `json:"id"`
	Mode                  string    `json:"mode"`
	Status                string    `json:"status"`
	Amount                int64     `json:"amount"`
	CustomerChargedAmount int64     `json:"customerChargedAmount"`
	FeePayer              string    `json:"feePayer"`
	CheckoutURL           string    `json:"checkoutUrl"`
	Note                  *string   `json:"note"`
	ClientName            *string   `json:"clientName"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func toPaymentDTO(p *domain.Payment) paymentDTO {
	return paymentDTO{
		ID:                    p.ID,
		Mode:                  string(p.Mode),
		Status:                string(p.Status),
		Amount:                p.RequestedAmount,
		CustomerChargedAmount: p.CustomerChargedAmount,
		FeePayer:              string(p.FeePayer),
		CheckoutURL:           p.CheckoutURL,
		Note:                  p.Note,
		ClientName:            p.ClientName,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	amount, fields := req.Validate()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	receipt, err := h.payments.pick(actor).CreatePayment(r.Context(), actor, payment.CreatePaymentInput{
		Mode:       domain.PaymentMode(req.Mode),
		Amount:     amount,
		FeePayer:   domain.FeePayer(req.FeePayer),
		Note:       req.Note,
		ClientName: req.ClientName,
	})
	if err != nil {
		log.Warn("payment creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/payments/%s", receipt.ID))
	RespondSuccess(w, http.StatusCreated, receiptDTO{
		ID:                    receipt.ID,
		CheckoutURL:           receipt.CheckoutURL,
		Amount:                receipt.Amount,
		CustomerChargedAmount: receipt.CustomerChargedAmount,
	})
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			RespondValidationError(w, []FieldError{{Field: "limit", Message: "must be a positive integer"}})
			return
		}
		limit = n
	}

	list, err := h.payments.pick(actor).ListPayments(r.Context(), actor, limit)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment list failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]paymentDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, toPaymentDTO(&list[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}
	RespondSuccess(w, http.StatusOK, toPaymentDTO(p))
}

// QRCode renders the checkout URL as a PNG for in-person hand-off.
func (h *PaymentHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}

	png, err := qrcode.Encode(p.CheckoutURL, qrcode.Medium, qrSize)
	if err != nil {
		logging.FromContext(r.Context()).Error("qr encode failed", "error", err, "payment_id", p.ID)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := bytes.NewReader(png).WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Error("failed to write qr code", "error", err)
	}
}

func (h *PaymentHandler) lookup(w http.ResponseWriter, r *http.Request) (*domain.Payment, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return nil, false
	}

	paymentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return nil, false
	}

	p, err := h.payments.pick(actor).GetPayment(r.Context(), actor, paymentID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment lookup failed", "error", err, "payment_id", paymentID)
		RespondDomainError(w, err)
		return nil, false
	}
	return p, true
}
