package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Xy7kQm2P", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Xy7kQm2P", hash)

	assert.True(t, VerifyPassword(hash, "Xy7kQm2P"))
	assert.False(t, VerifyPassword(hash, "xy7kqm2p"))
	assert.False(t, VerifyPassword(hash, ""))
	assert.False(t, VerifyPassword("not-a-hash", "Xy7kQm2P"))
}

func TestGeneratedPasswordVerifiesAgainstStoredHash(t *testing.T) {
	plain, err := GeneratePassword()
	require.NoError(t, err)
	hash, err := HashPassword(plain, bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, plain))
}
