package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTamperedTokenRejected(t *testing.T) {
	token, err := GenerateToken(42)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ValidateToken(tampered)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
