package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/dermapay-backend/internal/auth"
)

func newRequest(method, target, body string, actor *auth.Actor) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if actor != nil {
		req = req.WithContext(auth.ContextWithActor(req.Context(), *actor))
	}
	return req
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder, data any) APIResponse {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	if data != nil && len(raw.Data) > 0 && string(raw.Data) != "null" {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return APIResponse{Success: raw.Success, Error: raw.Error}
}

func fieldDetails(t *testing.T, resp APIResponse) []FieldError {
	t.Helper()
	require.NotNil(t, resp.Error)

	b, err := json.Marshal(resp.Error.Details)
	require.NoError(t, err)
	var fields []FieldError
	require.NoError(t, json.Unmarshal(b, &fields))
	return fields
}
