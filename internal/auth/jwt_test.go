package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	actor := Actor{UserID: uuid.New(), Email: "artist@test.com"}

	token, err := GenerateToken(actor, testSecret, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, got.UserID)
	assert.Equal(t, actor.Email, got.Email)
	assert.False(t, got.Demo)
}

func TestValidateToken_DemoActor(t *testing.T) {
	token, err := GenerateToken(Actor{UserID: DemoUserID, Demo: true}, testSecret, time.Hour)
	require.NoError(t, err)

	got, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.True(t, got.Demo)
	assert.Equal(t, DemoUserID, got.UserID)
}

func TestValidateToken_DemoClaimMismatch(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
	}{
		{name: "real user claiming demo", actor: Actor{UserID: uuid.New(), Demo: true}},
		{name: "demo user without flag", actor: Actor{UserID: DemoUserID}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, err := GenerateToken(tc.actor, testSecret, time.Hour)
			require.NoError(t, err)

			_, err = ValidateToken(token, testSecret)
			require.Error(t, err)
		})
	}
}

func TestValidateToken(t *testing.T) {
	actor := Actor{UserID: uuid.New(), Email: "artist@test.com"}

	validToken, err := GenerateToken(actor, testSecret, 24*time.Hour)
	require.NoError(t, err)

	expiredToken, err := GenerateToken(actor, testSecret, -1*time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		secret    string
		wantErrIs error
	}{
		{
			name:      "expired token",
			token:     expiredToken,
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenExpired,
		},
		{
			name:      "wrong secret",
			token:     validToken,
			secret:    "wrong-secret",
			wantErrIs: jwt.ErrTokenSignatureInvalid,
		},
		{
			name:      "malformed token",
			token:     "not.a.valid.jwt",
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenMalformed,
		},
		{
			name:      "empty token",
			token:     "",
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenMalformed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateToken(tc.token, tc.secret)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErrIs)
		})
	}
}

func TestValidateToken_RejectsNonHMAC(t *testing.T) {
	// A token signed with "none" must be rejected.
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: "artist@test.com",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSecret)
	require.Error(t, err)
}

func TestValidateToken_RejectsNonUUIDSubject(t *testing.T) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "demo-user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSecret)
	require.Error(t, err)
}
