package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapters "authkeeper/internal/auth/adapters/services"
	"authkeeper/internal/auth/domain/services"
)

const (
	testSecret = "test-secret-key"
	testUserID = "user-123"
	testEmail  = "user@example.com"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)}
}

func TestServiceJWT_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	codec := adapters.NewJWT(testSecret, adapters.WithClock(clock.Now))

	token, expiresAt, err := codec.Issue(ctx, services.JWTClaims{
		UserID: testUserID,
		Email:  testEmail,
		Kind:   services.TokenKindAccess,
	}, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(15*time.Minute), expiresAt)

	claims, err := codec.Verify(ctx, token, services.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.UserID)
	assert.Equal(t, testEmail, claims.Email)
	assert.Equal(t, services.TokenKindAccess, claims.Kind)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.IssuedAt.Equal(clock.now))
	assert.True(t, claims.ExpiresAt.Equal(expiresAt))
}

func TestServiceJWT_ReportedExpiryMatchesEmbedded(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, time.January, 1, 12, 0, 0, 900_000_000, time.UTC)}
	codec := adapters.NewJWT(testSecret, adapters.WithClock(clock.Now))

	token, expiresAt, err := codec.Issue(ctx, services.JWTClaims{
		UserID: testUserID,
		Email:  testEmail,
		Kind:   services.TokenKindRefresh,
	}, time.Hour)
	require.NoError(t, err)
	assert.True(t, expiresAt.Equal(time.Date(2025, time.January, 1, 13, 0, 0, 0, time.UTC)))

	claims, err := codec.Verify(ctx, token, services.TokenKindRefresh)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Equal(expiresAt), "reported %s, embedded %s", expiresAt, claims.ExpiresAt)
	assert.True(t, claims.IssuedAt.Equal(time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)))
}

func TestServiceJWT_TokensAreUnique(t *testing.T) {
	ctx := context.Background()
	codec := adapters.NewJWT(testSecret, adapters.WithClock(newClock().Now))
	claims := services.JWTClaims{UserID: testUserID, Email: testEmail, Kind: services.TokenKindRefresh}

	first, _, err := codec.Issue(ctx, claims, time.Hour)
	require.NoError(t, err)
	second, _, err := codec.Issue(ctx, claims, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same claims at the same instant must still produce distinct tokens")
}

func TestServiceJWT_IssueErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		secret   string
		claims   services.JWTClaims
		lifetime time.Duration
	}{
		{
			name:     "empty secret",
			secret:   "",
			claims:   services.JWTClaims{UserID: testUserID, Kind: services.TokenKindAccess},
			lifetime: time.Minute,
		},
		{
			name:     "non-positive lifetime",
			secret:   testSecret,
			claims:   services.JWTClaims{UserID: testUserID, Kind: services.TokenKindAccess},
			lifetime: 0,
		},
		{
			name:     "empty subject",
			secret:   testSecret,
			claims:   services.JWTClaims{Kind: services.TokenKindAccess},
			lifetime: time.Minute,
		},
		{
			name:     "unknown kind",
			secret:   testSecret,
			claims:   services.JWTClaims{UserID: testUserID, Kind: "id"},
			lifetime: time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := adapters.NewJWT(tt.secret)
			token, expiresAt, err := codec.Issue(ctx, tt.claims, tt.lifetime)
			require.ErrorIs(t, err, services.ErrGeneratingJWTToken)
			assert.Empty(t, token)
			assert.True(t, expiresAt.IsZero())
		})
	}
}

func TestServiceJWT_VerifyErrors(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	codec := adapters.NewJWT(testSecret, adapters.WithClock(clock.Now))

	refreshToken, _, err := codec.Issue(ctx, services.JWTClaims{
		UserID: testUserID,
		Email:  testEmail,
		Kind:   services.TokenKindRefresh,
	}, time.Hour)
	require.NoError(t, err)

	t.Run("kind mismatch", func(t *testing.T) {
		_, err := codec.Verify(ctx, refreshToken, services.TokenKindAccess)
		require.ErrorIs(t, err, services.ErrTokenKindMismatch)
	})

	t.Run("garbage string", func(t *testing.T) {
		_, err := codec.Verify(ctx, "not-a-token", services.TokenKindRefresh)
		require.ErrorIs(t, err, services.ErrMalformedToken)
	})

	t.Run("tampered signature", func(t *testing.T) {
		parts := strings.Split(refreshToken, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

		_, err := codec.Verify(ctx, tampered, services.TokenKindRefresh)
		require.ErrorIs(t, err, services.ErrMalformedToken)
	})

	t.Run("signed with another secret", func(t *testing.T) {
		other := adapters.NewJWT("another-secret", adapters.WithClock(clock.Now))
		_, err := other.Verify(ctx, refreshToken, services.TokenKindRefresh)
		require.ErrorIs(t, err, services.ErrMalformedToken)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, adapters.Claims{
			UserID: testUserID,
			Kind:   services.TokenKindRefresh,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   testUserID,
				ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
			},
		})
		unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Verify(ctx, unsigned, services.TokenKindRefresh)
		require.ErrorIs(t, err, services.ErrMalformedToken)
	})

	t.Run("missing kind claim", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, adapters.Claims{
			UserID: testUserID,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   testUserID,
				ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = codec.Verify(ctx, signed, services.TokenKindRefresh)
		require.ErrorIs(t, err, services.ErrMalformedToken)
	})

	t.Run("expired at the exact deadline", func(t *testing.T) {
		expiring := newClock()
		shortCodec := adapters.NewJWT(testSecret, adapters.WithClock(expiring.Now))

		token, _, err := shortCodec.Issue(ctx, services.JWTClaims{
			UserID: testUserID,
			Kind:   services.TokenKindRefresh,
		}, time.Minute)
		require.NoError(t, err)

		expiring.Advance(time.Minute)

		_, err = shortCodec.Verify(ctx, token, services.TokenKindRefresh)
		require.ErrorIs(t, err, services.ErrExpiredToken)
	})
}
