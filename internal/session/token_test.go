package session

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := NewTokens("", "credit-wizard", time.Hour)
	assert.Error(t, err)
}

func TestIssueAndParse(t *testing.T) {
	tokens, err := NewTokens("s3cret", "credit-wizard", time.Hour)
	require.NoError(t, err)

	signed, id, err := tokens.Issue("fr")
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Subject)
	assert.Equal(t, "fr", claims.Language)
	assert.Equal(t, "credit-wizard", claims.Issuer)
}

func TestIssueCreatesDistinctSessions(t *testing.T) {
	tokens, err := NewTokens("s3cret", "credit-wizard", time.Hour)
	require.NoError(t, err)

	_, first, err := tokens.Issue("")
	require.NoError(t, err)
	_, second, err := tokens.Issue("")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestParseRejects(t *testing.T) {
	tokens, err := NewTokens("s3cret", "credit-wizard", time.Hour)
	require.NoError(t, err)
	signed, _, err := tokens.Issue("it")
	require.NoError(t, err)

	other, err := NewTokens("other", "credit-wizard", time.Hour)
	require.NoError(t, err)
	otherIssuer, err := NewTokens("s3cret", "someone-else", time.Hour)
	require.NoError(t, err)

	expired, err := NewTokens("s3cret", "credit-wizard", time.Hour)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "credit-wizard",
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		tokens *Tokens
		token  string
	}{
		{"Wrong secret", other, signed},
		{"Wrong issuer", otherIssuer, signed},
		{"Expired", expired, signed},
		{"Tampered", tokens, strings.TrimSuffix(signed, signed[len(signed)-2:]) + "xx"},
		{"Unsigned", tokens, noneToken},
		{"Garbage", tokens, "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tokens.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
