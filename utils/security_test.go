package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndVerifyAccessToken(t *testing.T) {
	token, err := CreateAccessToken("user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims["sub"])
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	_, err := VerifyAccessToken("not-a-token")
	assert.Error(t, err)
}
