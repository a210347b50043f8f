package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/josh-kwaku/dermapay-backend/internal/deposyt"
	"github.com/josh-kwaku/dermapay-backend/internal/logging"
	"github.com/josh-kwaku/dermapay-backend/internal/service/payment"
)

const maxWebhookBody = 1 << 20

type reconciler interface {
	Reconcile(ctx context.Context, n payment.Notification) (*payment.ReconcileResult, error)
}

type WebhookHandler struct {
	payments reconciler
	secret   string
}

func NewWebhookHandler(payments reconciler, secret string) *WebhookHandler {
	return &WebhookHandler{payments: payments, secret: secret}
}

type webhookAck struct {
	Received bool `json:"received"`
}

// ReceiveDeposytWebhook acknowledges every notification it could handle,
// including ones that changed nothing. Only storage failures return 5xx so
// the processor redelivers.
func (h *WebhookHandler) ReceiveDeposytWebhook(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("webhook body too large", "limit", tooLarge.Limit)
			RespondAppError(w, ErrPayloadTooLarge, nil)
			return
		}
		log.Error("failed to read webhook body", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if !deposyt.VerifySignature(body, r.Header.Get(deposyt.SignatureHeader), h.secret) {
		log.Warn("webhook signature verification failed")
		RespondAppError(w, ErrInvalidSignature, nil)
		return
	}

	var event deposyt.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn("failed to parse webhook payload", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if event.PaymentID == "" {
		RespondValidationError(w, []FieldError{{Field: "payment_id", Message: "required"}})
		return
	}

	res, err := h.payments.Reconcile(r.Context(), payment.Notification{
		ExternalPaymentID: event.PaymentID,
		EventType:         event.EventType,
		Payload:           body,
	})
	if res == nil {
		log.Error("webhook reconciliation failed", "error", err, "external_payment_id", event.PaymentID)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	log.Info("webhook handled",
		"external_payment_id", event.PaymentID,
		"event_type", event.EventType,
		"outcome", res.Outcome,
	)
	RespondJSON(w, http.StatusOK, webhookAck{Received: true})
}
