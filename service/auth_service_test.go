// file: service/auth_service_test.go

package service

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(salt)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	other, err := GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, salt, other)
}

func TestHashAndCheckPassword(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	hash, err := HashPassword("mySecretPassword123", salt, bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotContains(t, hash, "mySecretPassword123")

	assert.True(t, CheckPassword("mySecretPassword123", salt, hash))
	assert.False(t, CheckPassword("notMyPassword", salt, hash))
	assert.False(t, CheckPassword("mySecretPassword123", "other-salt", hash))
}

func TestHashPassword_SamePasswordDistinctRecords(t *testing.T) {
	saltA, _ := GenerateSalt()
	saltB, _ := GenerateSalt()

	hashA, err := HashPassword("samepass", saltA, bcrypt.MinCost)
	require.NoError(t, err)
	hashB, err := HashPassword("samepass", saltB, bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, hashA, hashB)
}

func TestHashPassword_LongPasswordUsesWholeInput(t *testing.T) {
	salt, _ := GenerateSalt()
	long := strings.Repeat("a", 100)

	hash, err := HashPassword(long, salt, bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(long, salt, hash))
	assert.False(t, CheckPassword(long+"b", salt, hash))
}
