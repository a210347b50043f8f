package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/dermapay-backend/internal/deposyt"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFeeCmd(t *testing.T) {
	out, err := run(t, "", "fee", "8025")
	require.NoError(t, err)
	assert.Contains(t, out, "charged=8266")
	assert.Contains(t, out, "surcharge=241")

	out, err = run(t, "", "fee", "8025", "--payer", "merchant")
	require.NoError(t, err)
	assert.Contains(t, out, "charged=8025")

	out, err = run(t, "", "fee", "10000", "--rate", "0.05")
	require.NoError(t, err)
	assert.Contains(t, out, "charged=10500")
}

func TestFeeCmd_Rejects(t *testing.T) {
	_, err := run(t, "", "fee", "0")
	assert.Error(t, err)

	_, err = run(t, "", "fee", "12.5")
	assert.Error(t, err)

	_, err = run(t, "", "fee", "100", "--rate=-0.01")
	assert.Error(t, err)
}

func TestSignCmd(t *testing.T) {
	body := `{"event_type":"payment.succeeded","payment_id":"cs_1"}`

	out, err := run(t, body, "sign", "--secret", "whsec")
	require.NoError(t, err)
	assert.Equal(t, deposyt.Sign([]byte(body), "whsec"), strings.TrimSpace(out))
}

func TestSignCmd_RequiresSecret(t *testing.T) {
	t.Setenv(secretEnv, "")
	_, err := run(t, "{}", "sign", "--secret", "")
	assert.Error(t, err)
}

func TestNotifyCmd(t *testing.T) {
	var verified bool
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		verified = deposyt.VerifySignature(body, r.Header.Get(deposyt.SignatureHeader), "whsec")
		got = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out, err := run(t, "", "notify", "--url", srv.URL, "--secret", "whsec", "--event", "payment.failed", "--payment-id", "cs_9")
	require.NoError(t, err)
	assert.True(t, verified)
	assert.Contains(t, got, `"payment_id":"cs_9"`)
	assert.Contains(t, got, `"event_type":"payment.failed"`)
	assert.Contains(t, out, "delivered payment.failed for cs_9: 200")
}
