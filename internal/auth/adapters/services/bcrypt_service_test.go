package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	adapters "authkeeper/internal/auth/adapters/services"
	"authkeeper/internal/auth/domain/services"
)

func TestServiceBcrypt_HashAndVerify(t *testing.T) {
	ctx := context.Background()
	svc := adapters.NewBcrypt(bcrypt.MinCost)

	hash, err := svc.Hash(ctx, "password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	ok, err := svc.Verify(ctx, "password123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(ctx, "wrongpass1", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServiceBcrypt_HashRejectsInvalidPasswords(t *testing.T) {
	ctx := context.Background()
	svc := adapters.NewBcrypt(bcrypt.MinCost)

	for name, password := range map[string]string{
		"empty":     "",
		"too short": "short1",
		"too long":  strings.Repeat("a1", 40),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Hash(ctx, password)
			require.ErrorIs(t, err, services.ErrInvalidPassword)
		})
	}
}

func TestServiceBcrypt_VerifyErrors(t *testing.T) {
	ctx := context.Background()
	svc := adapters.NewBcrypt(0)

	_, err := svc.Verify(ctx, "", "hash")
	require.ErrorIs(t, err, services.ErrInvalidPassword)

	_, err = svc.Verify(ctx, "password123", "not-a-bcrypt-hash")
	require.Error(t, err)
}
