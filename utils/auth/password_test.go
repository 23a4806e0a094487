package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, VerifyPassword(hash, "secret1"))
	assert.Error(t, VerifyPassword(hash, "wrong"))
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	h1, err := HashPassword("secret1")
	require.NoError(t, err)
	h2, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestIsPasswordValid(t *testing.T) {
	assert.False(t, IsPasswordValid(""))
	assert.False(t, IsPasswordValid("tiny"))
	assert.True(t, IsPasswordValid("secret"))
	assert.True(t, IsPasswordValid("a much longer password"))
}
