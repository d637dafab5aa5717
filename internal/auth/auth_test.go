package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	Init("configured-at-startup")

	token, err := GenerateJWT("user-1", "student")
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "student", claims.Role)
}

func TestInitReplacesSigningSecret(t *testing.T) {
	Init("first-secret")
	token, err := GenerateJWT("user-1", "student")
	require.NoError(t, err)

	// A secret configured after the package loaded must be the one tokens
	// are signed and checked with; anything signed before it changed stops
	// validating.
	Init("second-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)

	token, err = GenerateJWT("user-2", "admin")
	require.NoError(t, err)
	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestInitEmptySecretKeepsCurrent(t *testing.T) {
	Init("stable-secret")
	token, err := GenerateJWT("user-1", "student")
	require.NoError(t, err)

	Init("")
	_, err = ValidateJWT(token)
	assert.NoError(t, err)
}
