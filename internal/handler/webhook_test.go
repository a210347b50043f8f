package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/dermapay-backend/internal/deposyt"
	"github.com/josh-kwaku/dermapay-backend/internal/domain"
	"github.com/josh-kwaku/dermapay-backend/internal/service/payment"
)

const testWebhookSecret = "test-secret-key"

type mockReconciler struct {
	got    *payment.Notification
	result *payment.ReconcileResult
	err    error
}

func (m *mockReconciler) Reconcile(_ context.Context, n payment.Notification) (*payment.ReconcileResult, error) {
	m.got = &n
	return m.result, m.err
}

func eventBody(eventType, paymentID string) string {
	b, _ := json.Marshal(deposyt.Event{EventType: eventType, PaymentID: paymentID})
	return string(b)
}

func TestReceiveDeposytWebhook(t *testing.T) {
	applied := &payment.ReconcileResult{Outcome: domain.DeliveryOutcomeApplied}

	tests := []struct {
		name       string
		body       string
		setupSig   func(body string) string
		result     *payment.ReconcileResult
		reconErr   error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid signed webhook",
			body:       eventBody("payment.succeeded", "cs_123"),
			setupSig:   func(body string) string { return deposyt.Sign([]byte(body), testWebhookSecret) },
			result:     applied,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing signature header",
			body:       eventBody("payment.succeeded", "cs_123"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_SIGNATURE",
		},
		{
			name:       "invalid signature",
			body:       eventBody("payment.succeeded", "cs_123"),
			setupSig:   func(_ string) string { return "deadbeefdeadbeef" },
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_SIGNATURE",
		},
		{
			name:       "signed with another secret",
			body:       eventBody("payment.succeeded", "cs_123"),
			setupSig:   func(body string) string { return deposyt.Sign([]byte(body), "other-secret") },
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_SIGNATURE",
		},
		{
			name:       "invalid JSON body",
			body:       "not-json",
			setupSig:   func(body string) string { return deposyt.Sign([]byte(body), testWebhookSecret) },
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "missing payment_id",
			body:       eventBody("payment.succeeded", ""),
			setupSig:   func(body string) string { return deposyt.Sign([]byte(body), testWebhookSecret) },
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "unknown payment is acknowledged",
			body:       eventBody("payment.succeeded", "cs_ghost"),
			setupSig:   func(body string) string { return deposyt.Sign([]byte(body), testWebhookSecret) },
			result:     &payment.ReconcileResult{Outcome: domain.DeliveryOutcomeUnknownPayment},
			reconErr:   fmt.Errorf("Reconcile: %w", domain.ErrUnknownPayment),
			wantStatus: http.StatusOK,
		},
		{
			name:       "conflict is acknowledged",
			body:       eventBody("payment.failed", "cs_123"),
			setupSig:   func(body string) string { return deposyt.Sign([]byte(body), testWebhookSecret) },
			result:     &payment.ReconcileResult{Outcome: domain.DeliveryOutcomeConflict},
			reconErr:   fmt.Errorf("Reconcile: %w", domain.ErrConflictingTransition),
			wantStatus: http.StatusOK,
		},
		{
			name:       "storage failure returns 500",
			body:       eventBody("payment.succeeded", "cs_123"),
			setupSig:   func(body string) string { return deposyt.Sign([]byte(body), testWebhookSecret) },
			reconErr:   errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &mockReconciler{result: tc.result, err: tc.reconErr}
			h := NewWebhookHandler(rec, testWebhookSecret)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/deposyt", strings.NewReader(tc.body))
			if tc.setupSig != nil {
				req.Header.Set(deposyt.SignatureHeader, tc.setupSig(tc.body))
			}
			rr := httptest.NewRecorder()

			h.ReceiveDeposytWebhook(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)

			if tc.wantCode == "" {
				var ack webhookAck
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ack))
				assert.True(t, ack.Received)
				return
			}

			var resp APIResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestReceiveDeposytWebhook_PassesNotificationThrough(t *testing.T) {
	rec := &mockReconciler{result: &payment.ReconcileResult{Outcome: domain.DeliveryOutcomeApplied}}
	h := NewWebhookHandler(rec, testWebhookSecret)

	body := eventBody("payment.refunded", "cs_abc")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/deposyt", strings.NewReader(body))
	req.Header.Set(deposyt.SignatureHeader, deposyt.Sign([]byte(body), testWebhookSecret))
	rr := httptest.NewRecorder()

	h.ReceiveDeposytWebhook(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, rec.got)
	assert.Equal(t, "cs_abc", rec.got.ExternalPaymentID)
	assert.Equal(t, "payment.refunded", rec.got.EventType)
	assert.JSONEq(t, body, string(rec.got.Payload))
}

func TestReceiveDeposytWebhook_SignatureFailureDoesNotReconcile(t *testing.T) {
	rec := &mockReconciler{}
	h := NewWebhookHandler(rec, testWebhookSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/deposyt", strings.NewReader(eventBody("payment.succeeded", "cs_1")))
	req.Header.Set(deposyt.SignatureHeader, "00")
	rr := httptest.NewRecorder()

	h.ReceiveDeposytWebhook(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, rec.got)
	assert.NotContains(t, rr.Body.String(), "secret")
}

func TestReceiveDeposytWebhook_OversizedBody(t *testing.T) {
	rec := &mockReconciler{}
	h := NewWebhookHandler(rec, testWebhookSecret)

	body := `{"event_type":"payment.succeeded","payment_id":"cs_1","pad":"` + strings.Repeat("x", maxWebhookBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/deposyt", strings.NewReader(body))
	req.Header.Set(deposyt.SignatureHeader, deposyt.Sign([]byte(body), testWebhookSecret))
	rr := httptest.NewRecorder()

	h.ReceiveDeposytWebhook(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, rr.Body.String(), "PAYLOAD_TOO_LARGE")
	assert.Nil(t, rec.got)
}

func TestReceiveDeposytWebhook_BodyAtLimitIsAccepted(t *testing.T) {
	rec := &mockReconciler{result: &payment.ReconcileResult{Outcome: domain.DeliveryOutcomeApplied}}
	h := NewWebhookHandler(rec, testWebhookSecret)

	prefix := `{"event_type":"payment.succeeded","payment_id":"cs_1","pad":"`
	suffix := `"}`
	body := prefix + strings.Repeat("x", maxWebhookBody-len(prefix)-len(suffix)) + suffix
	require.Len(t, body, maxWebhookBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/deposyt", strings.NewReader(body))
	req.Header.Set(deposyt.SignatureHeader, deposyt.Sign([]byte(body), testWebhookSecret))
	rr := httptest.NewRecorder()

	h.ReceiveDeposytWebhook(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, rec.got)
}
