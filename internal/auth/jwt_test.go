package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarotfutura/futura/internal/auth"
)

var secret = []byte("test-secret")

func TestIssueAndVerify(t *testing.T) {
	tok, err := auth.Issue(secret, "user-1", "authenticated", time.Hour)
	require.NoError(t, err)

	id, err := auth.NewVerifier(secret, "authenticated").UserID(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestVerifyRejects(t *testing.T) {
	good, err := auth.Issue(secret, "user-1", "", time.Hour)
	require.NoError(t, err)
	expired, err := auth.Issue(secret, "user-1", "", -time.Minute)
	require.NoError(t, err)
	noSubject, err := auth.Issue(secret, "", "", time.Hour)
	require.NoError(t, err)
	wrongAud, err := auth.Issue(secret, "user-1", "other", time.Hour)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).SignedString(secret)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)

	tests := []struct {
		name     string
		verifier *auth.Verifier
		token    string
	}{
		{"garbage", auth.NewVerifier(secret, ""), "not-a-token"},
		{"wrong secret", auth.NewVerifier([]byte("other"), ""), good},
		{"expired", auth.NewVerifier(secret, ""), expired},
		{"no subject", auth.NewVerifier(secret, ""), noSubject},
		{"wrong audience", auth.NewVerifier(secret, "authenticated"), wrongAud},
		{"no expiry", auth.NewVerifier(secret, ""), noExp},
		{"other algorithm", auth.NewVerifier(secret, ""), hs512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.verifier.UserID(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}
