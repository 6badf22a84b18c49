package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapters "authkeeper/internal/auth/adapters/services"
	"authkeeper/internal/auth/domain/services"
)

func TestIssuer_IssuePair(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	codec := adapters.NewJWT(testSecret, adapters.WithClock(clock.Now))
	issuer := adapters.NewIssuer(codec, 15*time.Minute, 7*24*time.Hour)

	pair, err := issuer.IssuePair(ctx, testUserID, testEmail)
	require.NoError(t, err)

	assert.Equal(t, testUserID, pair.UserID)
	assert.Equal(t, clock.now.Add(15*time.Minute), pair.AccessTokenExpiresAt)
	assert.Equal(t, clock.now.Add(7*24*time.Hour), pair.RefreshTokenExpiresAt)

	access, err := codec.Verify(ctx, pair.AccessToken, services.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, testUserID, access.UserID)

	refresh, err := codec.Verify(ctx, pair.RefreshToken, services.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, testEmail, refresh.Email)

	_, err = codec.Verify(ctx, pair.AccessToken, services.TokenKindRefresh)
	require.ErrorIs(t, err, services.ErrTokenKindMismatch)
}

func TestIssuer_IssueRefreshUsesCallerLifetime(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	issuer := adapters.NewIssuer(adapters.NewJWT(testSecret, adapters.WithClock(clock.Now)), time.Minute, 24*time.Hour)

	_, expiresAt, err := issuer.IssueRefresh(ctx, testUserID, testEmail, 90*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, clock.now.Add(90*time.Minute), expiresAt)
	assert.Equal(t, 24*time.Hour, issuer.RefreshTTL())
}

func TestIssuer_PropagatesCodecErrors(t *testing.T) {
	issuer := adapters.NewIssuer(adapters.NewJWT(""), time.Minute, time.Hour)

	pair, err := issuer.IssuePair(context.Background(), testUserID, testEmail)
	require.ErrorIs(t, err, services.ErrGeneratingJWTToken)
	assert.Nil(t, pair)
}

func TestServiceFactory(t *testing.T) {
	factory := adapters.NewServiceFactory(testSecret, time.Minute, time.Hour, 4)

	require.NotNil(t, factory.PasswordService())
	require.NotNil(t, factory.ClaimsCodec())
	require.NotNil(t, factory.TokenIssuer())
	assert.Equal(t, time.Hour, factory.TokenIssuer().RefreshTTL())
}
