package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vugru/internal/models"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour, nil)
	user := models.User{ID: "user-1", Name: "Dana", Role: models.RoleVideographer}

	raw, err := tokens.Mint(user)
	require.NoError(t, err)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "Dana", claims.Name)
	assert.Equal(t, models.RoleVideographer, claims.UserRole())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	minted := NewTokens("secret-a", time.Hour, nil)
	raw, err := minted.Mint(models.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = NewTokens("secret-b", time.Hour, nil).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := issued
	tokens := NewTokens("secret", time.Hour, func() time.Time { return clock })

	raw, err := tokens.Mint(models.User{ID: "user-1"})
	require.NoError(t, err)

	clock = issued.Add(2 * time.Hour)
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tokens := NewTokens("secret", time.Hour, nil)
	_, err := tokens.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, CheckPassword(hash, "hunter22"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}
