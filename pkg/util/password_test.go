package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "secret123"))
	assert.False(t, VerifyPassword(hash, "wrong-password"))
	assert.False(t, VerifyPassword("not-a-hash", "secret123"))
}

func TestGenerateSlug(t *testing.T) {
	slug, err := GenerateSlug(SlugLength)
	require.NoError(t, err)
	assert.Len(t, slug, SlugLength)
	for _, c := range slug {
		assert.Contains(t, slugAlphabet, string(c))
	}

	// Two slugs should practically never collide
	other, err := GenerateSlug(SlugLength)
	require.NoError(t, err)
	assert.NotEqual(t, slug, other)
}

func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
}
