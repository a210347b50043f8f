package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v3"

	"github.com/josh-kwaku/dermapay-backend/internal/deposyt"
)

type session struct {
	ID          string
	Reference   string
	Amount      int64
	Mode        string
	CallbackURL string
}

type notifier interface {
	Send(ctx context.Context, callbackURL string, ev deposyt.Event) (int, error)
}

type server struct {
	checkoutBaseURL  string
	notifier         notifier
	autoSucceedAfter time.Duration

	mu       sync.Mutex
	sessions map[string]session
	pending  sync.WaitGroup
}

func newServer(checkoutBaseURL string, n notifier, autoSucceedAfter time.Duration) *server {
	return &server{
		checkoutBaseURL:  strings.TrimRight(checkoutBaseURL, "/"),
		notifier:         n,
		autoSucceedAfter: autoSucceedAfter,
		sessions:         make(map[string]session),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /v1/checkout-sessions", s.createSession)
	mux.HandleFunc("POST /v1/checkout-sessions/{id}/events", s.emitEvent)
	return mux
}

func (s *server) createSession(w http.ResponseWriter, r *http.Request) {
	var req deposyt.CheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if req.Amount <= 0 || req.CallbackURL == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "amount and callback_url are required"})
		return
	}

	sess := session{
		ID:          "cs_" + shortuuid.New(),
		Reference:   req.ClientReferenceID,
		Amount:      req.Amount,
		Mode:        req.Mode,
		CallbackURL: req.CallbackURL,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Info("checkout session created", "session_id", sess.ID, "reference", sess.Reference, "amount", sess.Amount)

	if s.autoSucceedAfter > 0 {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			time.Sleep(s.autoSucceedAfter)
			s.deliver(context.Background(), sess, "payment.succeeded")
		}()
	}

	writeJSON(w, http.StatusCreated, deposyt.CheckoutSessionResponse{
		ID:          sess.ID,
		CheckoutURL: s.checkoutBaseURL + "/" + sess.ID,
	})
}

type eventRequest struct {
	EventType string `json:"event_type"`
}

// emitEvent lets a developer push a notification for a session by hand.
func (s *server) emitEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sess, ok := s.sessions[r.PathValue("id")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown session"})
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "event_type is required"})
		return
	}

	status, err := s.deliver(r.Context(), sess, req.EventType)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"delivered": false, "callback_status": status})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"delivered": true, "callback_status": status})
}

func (s *server) deliver(ctx context.Context, sess session, eventType string) (int, error) {
	ev := deposyt.Event{
		EventType: eventType,
		PaymentID: sess.ID,
		Status:    strings.TrimPrefix(eventType, "payment."),
	}
	status, err := s.notifier.Send(ctx, sess.CallbackURL, ev)
	if err != nil {
		slog.Warn("event delivery failed", "session_id", sess.ID, "event_type", eventType, "status", status, "error", err)
		return status, err
	}
	slog.Info("event delivered", "session_id", sess.ID, "event_type", eventType, "status", status)
	return status, nil
}

func (s *server) wait() {
	s.pending.Wait()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
