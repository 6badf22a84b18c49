package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"authkeeper/internal/auth/adapters/redis"
	adapters "authkeeper/internal/auth/adapters/services"
	"authkeeper/internal/auth/app"
	"authkeeper/internal/auth/domain/entities"
	"authkeeper/internal/auth/domain/services"
	"authkeeper/internal/auth/ports/api"
	"authkeeper/internal/auth/ports/repositories"
	svc "authkeeper/internal/auth/ports/services"
)

const (
	testSecret   = "test-secret-key"
	testPassword = "secret123"
	accessTTL    = 15 * time.Minute
	refreshTTL   = 7 * 24 * time.Hour
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)}
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Create(ctx context.Context, session *services.RefreshSession) (*services.RefreshSession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RefreshSession), args.Error(1)
}

func (m *mockSessionRepository) FindByToken(ctx context.Context, token string) (*services.RefreshSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RefreshSession), args.Error(1)
}

func (m *mockSessionRepository) FindByOwner(ctx context.Context, userID string) ([]*services.RefreshSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*services.RefreshSession), args.Error(1)
}

func (m *mockSessionRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionRepository) ConsumeByToken(ctx context.Context, token string) (*services.RefreshSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RefreshSession), args.Error(1)
}

func (m *mockSessionRepository) DeleteByOwnerAndToken(ctx context.Context, userID, token string) (bool, error) {
	args := m.Called(ctx, userID, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionRepository) DeleteAllByOwner(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Verify(ctx context.Context, password, hash string) (bool, error) {
	args := m.Called(ctx, password, hash)
	return args.Bool(0), args.Error(1)
}

// fixture собирает сервис на настоящем JWT кодеке и хранилище в miniredis.
type fixture struct {
	clock     *fakeClock
	users     *mockUserRepository
	passwords *mockPasswordService
	store     repositories.SessionRepository
	issuer    svc.TokenIssuer
	uc        api.AuthUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return newFixtureWithStore(t, redis.NewSessionRepository(client))
}

func newFixtureWithStore(t *testing.T, store repositories.SessionRepository) *fixture {
	t.Helper()

	clock := newClock()
	factory := adapters.NewServiceFactory(testSecret, accessTTL, refreshTTL, 4, adapters.WithClock(clock.Now))

	f := &fixture{
		clock:     clock,
		users:     &mockUserRepository{},
		passwords: &mockPasswordService{},
		store:     store,
		issuer:    factory.TokenIssuer(),
	}

	f.uc = app.NewAuthUseCase(
		f.users,
		store,
		f.passwords,
		factory.ClaimsCodec(),
		factory.TokenIssuer(),
		app.WithClock(clock.Now),
	)

	return f
}

func activeUser(id, email string) *entities.User {
	return &entities.User{
		ID:           id,
		Email:        email,
		Username:     id,
		PasswordHash: "hash-" + id,
		Status:       entities.UserStatusActive,
	}
}

// expectUser регистрирует пользователя для входа и повторной проверки при ротации.
func (f *fixture) expectUser(user *entities.User) {
	f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil).Maybe()
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil).Maybe()
	f.passwords.On("Verify", mock.Anything, testPassword, user.PasswordHash).Return(true, nil).Maybe()
}

func (f *fixture) login(t *testing.T, user *entities.User) *services.TokenPair {
	t.Helper()
	result, err := f.uc.Login(context.Background(), user.Email, testPassword, services.DeviceInfo{UserAgent: "test-agent"})
	require.NoError(t, err)
	return result.Tokens
}
