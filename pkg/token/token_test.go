package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	signed, err := Generate("secret", "issuer", "user-123", true, time.Hour)
	require.NoError(t, err)

	subject, isAdmin, err := Parse("secret", signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
	assert.True(t, isAdmin)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := Generate("secret", "issuer", "user-123", false, time.Hour)
	require.NoError(t, err)

	_, _, err = Parse("other-secret", signed)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	signed, err := Generate("secret", "issuer", "user-123", false, -time.Minute)
	require.NoError(t, err)

	_, _, err = Parse("secret", signed)
	assert.Error(t, err)
}

func TestGenerateRequiresSecret(t *testing.T) {
	_, err := Generate("", "issuer", "user-123", false, time.Hour)
	assert.Error(t, err)
}
