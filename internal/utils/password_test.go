package utils_test

import (
	"testing"

	"github.com/contactkeeper/contacts_backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Roundtrip(t *testing.T) {
	password := "s3cret-password"

	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, utils.CheckPasswordHash(password, hash))
}

func TestCheckPasswordHash_WrongPassword(t *testing.T) {
	hash, err := utils.HashPassword("correct-password")
	require.NoError(t, err)

	assert.False(t, utils.CheckPasswordHash("wrong-password", hash))
}

func TestCheckPasswordHash_MalformedHash(t *testing.T) {
	// A garbage hash must fail verification, not panic or error out.
	assert.False(t, utils.CheckPasswordHash("whatever", "not-a-bcrypt-hash"))
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	first, err := utils.HashPassword("same-password")
	require.NoError(t, err)
	second, err := utils.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
