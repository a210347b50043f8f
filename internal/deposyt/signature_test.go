package deposyt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"event_type":"payment.succeeded","payment_id":"cs_123"}`)
	valid := Sign(body, secret)

	tests := []struct {
		name      string
		body      []byte
		signature string
		secret    string
		want      bool
	}{
		{name: "valid", body: body, signature: valid, secret: secret, want: true},
		{name: "empty signature", body: body, signature: "", secret: secret},
		{name: "wrong secret", body: body, signature: valid, secret: "other"},
		{name: "tampered body", body: []byte(`{"event_type":"payment.refunded","payment_id":"cs_123"}`), signature: valid, secret: secret},
		{name: "truncated signature", body: body, signature: valid[:10], secret: secret},
		{name: "empty secret", body: body, signature: Sign(body, ""), secret: ""},
		{name: "uppercase hex", body: body, signature: strings.ToUpper(valid), secret: secret, want: true},
		{name: "surrounding whitespace", body: body, signature: " " + valid + "\n", secret: secret, want: true},
		{name: "not hex", body: body, signature: "zz" + valid[2:], secret: secret},
		{name: "odd length", body: body, signature: valid[:63], secret: secret},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, VerifySignature(tc.body, tc.signature, tc.secret))
		})
	}
}

func TestSign_KnownVector(t *testing.T) {
	// RFC 4231 test case 2.
	got := Sign([]byte("what do ya want for nothing?"), "Jefe")
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
}
