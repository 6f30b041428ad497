package utils

import (
	"testing"
	"time"

	"feedmart-pos/internal/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	tok, exp, err := issuer.GenerateToken(42, "ama", access.RoleManager)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := issuer.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserId)
	assert.Equal(t, "ama", claims.Username)
	assert.Equal(t, access.RoleManager, claims.Role)
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	tok, _, err := other.GenerateToken(1, "kofi", access.RoleCashier)
	require.NoError(t, err)
	_, err = issuer.ParseToken(tok)
	assert.Error(t, err)

	_, err = issuer.ParseToken("not-a-token")
	assert.Error(t, err)
}
