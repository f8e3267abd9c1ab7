package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng!Password")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Password", hash)

	assert.True(t, CheckPassword(hash, "Str0ng!Password"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
	assert.False(t, CheckPassword(hash, ""))
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	first, err := HashPassword("Str0ng!Password")
	require.NoError(t, err)
	second, err := HashPassword("Str0ng!Password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestGenerateOpaqueToken(t *testing.T) {
	first, err := GenerateOpaqueToken()
	require.NoError(t, err)
	second, err := GenerateOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}
