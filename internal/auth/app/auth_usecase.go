package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"authkeeper/internal/auth/domain/entities"
	"authkeeper/internal/auth/domain/services"
	"authkeeper/internal/auth/ports/api"
	"authkeeper/internal/auth/ports/repositories"
	svc "authkeeper/internal/auth/ports/services"
	"authkeeper/pkg/logger"
)

const (
	methodRegister     = "Register"
	methodLogin        = "Login"
	methodLogout       = "Logout"
	methodLogoutAll    = "LogoutAll"
	methodListSessions = "ListSessions"
	methodAuthenticate = "Authenticate"
	methodOpenSession  = "openSession"

	msgStartRegistration   = "starting user registration"
	msgInvalidEmailFormat  = "invalid email format"
	msgEmptyUsername       = "empty username provided"
	msgInvalidPassword     = "invalid password"
	msgEmailExists         = "user with this email already exists"
	msgUsernameExists      = "user with this username already exists"
	msgUserRegistered      = "user registered successfully"
	msgLoginAttempt        = "login attempt"
	msgLoginNonExistent    = "login attempt with non-existent email"
	msgInvalidPasswordAuth = "invalid password provided"
	msgInactiveAccount     = "login attempt for inactive account"
	msgUserLoggedIn        = "user logged in successfully"
	msgProcessingLogout    = "processing logout request"
	msgSubjectMismatch     = "access and refresh tokens belong to different users"
	msgSessionNotOwned     = "no matching session for user"
	msgUserLoggedOut       = "user logged out successfully"
	msgLoggedOutEverywhere = "user logged out from all devices"
	msgRejectedAccessToken = "access token rejected"
	msgRejectedRefresh     = "refresh token rejected"
	msgSessionOpened       = "refresh session opened"
	msgUserRolledBack      = "registration rolled back after session failure"

	msgErrCheckExistingUser = "failed to check existing user"
	msgErrHashPassword      = "failed to hash password"
	msgErrCreateUser        = "failed to create user"
	msgErrRollbackUser      = "failed to roll back registered user"
	msgErrFindingUser       = "error finding user by email"
	msgErrVerifyingPassword = "error verifying password"
	msgErrIssueTokens       = "failed to issue token pair"
	msgErrStoreSession      = "failed to store refresh session"
	msgErrDeletingSession   = "failed to delete refresh session"
	msgErrDeletingSessions  = "failed to delete user sessions"
	msgErrListingSessions   = "failed to list user sessions"

	errCtxValidatingEmail    = "validating email"
	errCtxValidatingUsername = "validating username"
	errCtxValidatingPassword = "validating password"
	errCtxCheckingUser       = "checking existing user"
	errCtxEmailRegistered    = "email already registered"
	errCtxUsernameRegistered = "username already registered"
	errCtxHashingPassword    = "hashing password"
	errCtxCreatingUser       = "creating user"
	errCtxInvalidCredentials = "invalid credentials"
	errCtxFindingUser        = "finding user"
	errCtxVerifyingPassword  = "verifying password"
	errCtxAccountStatus      = "checking account status"
	errCtxGeneratingTokens   = "generating tokens"
	errCtxStoringSession     = "storing refresh session"
	errCtxVerifyingAccess    = "verifying access token"
	errCtxVerifyingRefresh   = "verifying refresh token"
	errCtxMatchingSubjects   = "matching token subjects"
	errCtxDeletingSession    = "deleting refresh session"
	errCtxDeletingSessions   = "deleting user sessions"
	errCtxListingSessions    = "listing user sessions"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	letterRegex = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex  = regexp.MustCompile(`\d`)
)

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	passwordSvc svc.PasswordService
	codec       svc.ClaimsCodec
	issuer      svc.TokenIssuer
	now         func() time.Time
}

// Option настраивает AuthUseCaseImpl.
type Option func(*AuthUseCaseImpl)

// WithClock задает источник времени. Должен совпадать с часами ClaimsCodec.
func WithClock(now func() time.Time) Option {
	return func(a *AuthUseCaseImpl) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	passwordSvc svc.PasswordService,
	codec svc.ClaimsCodec,
	issuer svc.TokenIssuer,
	opts ...Option,
) api.AuthUseCase {
	a := &AuthUseCaseImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
		codec:       codec,
		issuer:      issuer,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register создает нового пользователя и открывает для него первую сессию.
// Если сессию открыть не удалось, пользователь удаляется, и регистрацию можно повторить.
func (a *AuthUseCaseImpl) Register(ctx context.Context, email, username, password string, device services.DeviceInfo) (*services.AuthResult, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("email", email))
	log.Debug(ctx, msgStartRegistration)

	if err := validateEmail(email); err != nil {
		log.Debug(ctx, msgInvalidEmailFormat, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
	}
	if username == "" {
		log.Debug(ctx, msgEmptyUsername)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUsername, entities.ErrEmptyUsername)
	}
	if err := validatePassword(password); err != nil {
		log.Debug(ctx, msgInvalidPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}

	emailTaken, err := a.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if emailTaken {
		log.Debug(ctx, msgEmailExists)
		return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
	}

	usernameTaken, err := a.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if usernameTaken {
		log.Debug(ctx, msgUsernameExists)
		return nil, fmt.Errorf("%s: %w", errCtxUsernameRegistered, services.ErrUsernameAlreadyExists)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	createdUser, err := a.userRepo.Create(ctx, &entities.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashedPassword,
		Status:       entities.UserStatusActive,
	})
	if err != nil {
		log.Error(ctx, msgErrCreateUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.String("userID", createdUser.ID))

	tokens, err := a.openSession(ctx, createdUser, device)
	if err != nil {
		if delErr := a.userRepo.Delete(ctx, createdUser.ID); delErr != nil {
			log.Error(ctx, msgErrRollbackUser, zap.Error(delErr), zap.String("userID", createdUser.ID))
		} else {
			log.Info(ctx, msgUserRolledBack, zap.String("userID", createdUser.ID))
		}
		return nil, err
	}

	return &services.AuthResult{User: createdUser, Tokens: tokens}, nil
}

// Login аутентифицирует пользователя по email и паролю.
func (a *AuthUseCaseImpl) Login(ctx context.Context, email, password string, device services.DeviceInfo) (*services.AuthResult, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("email", email))
	log.Debug(ctx, msgLoginAttempt)

	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgLoginNonExistent)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	valid, err := a.passwordSvc.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgInvalidPasswordAuth, zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	if !user.IsActive() {
		log.Info(ctx, msgInactiveAccount, zap.String("userID", user.ID), zap.String("status", string(user.Status)))
		return nil, fmt.Errorf("%s: %w", errCtxAccountStatus, services.ErrAccountInactive)
	}

	tokens, err := a.openSession(ctx, user, device)
	if err != nil {
		return nil, err
	}

	log.Info(ctx, msgUserLoggedIn, zap.String("userID", user.ID))
	return &services.AuthResult{User: user, Tokens: tokens}, nil
}

// Logout закрывает одну сессию. Оба токена должны принадлежать одному пользователю.
func (a *AuthUseCaseImpl) Logout(ctx context.Context, accessToken, refreshToken string) error {
	log := logger.Log(ctx).With(zap.String("method", methodLogout))
	log.Debug(ctx, msgProcessingLogout)

	access, err := a.verifyAccess(ctx, accessToken)
	if err != nil {
		return err
	}

	log = log.With(zap.String("userID", access.UserID))

	refresh, err := a.codec.Verify(ctx, refreshToken, services.TokenKindRefresh)
	if err != nil {
		log.Debug(ctx, msgRejectedRefresh, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxVerifyingRefresh, services.ErrInvalidRefreshToken)
	}

	if refresh.UserID != access.UserID {
		log.Warn(ctx, msgSubjectMismatch, zap.String("refreshUserID", refresh.UserID))
		return fmt.Errorf("%s: %w", errCtxMatchingSubjects, services.ErrTokenSubjectMismatch)
	}

	removed, err := a.sessionRepo.DeleteByOwnerAndToken(ctx, access.UserID, refreshToken)
	if err != nil {
		log.Error(ctx, msgErrDeletingSession, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxDeletingSession, err)
	}
	if !removed {
		log.Debug(ctx, msgSessionNotOwned)
		return fmt.Errorf("%s: %w", errCtxDeletingSession, services.ErrSessionNotFound)
	}

	log.Info(ctx, msgUserLoggedOut)
	return nil
}

// LogoutAll закрывает все сессии владельца access токена. Ноль удаленных - не ошибка.
func (a *AuthUseCaseImpl) LogoutAll(ctx context.Context, accessToken string) (int64, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogoutAll))

	access, err := a.verifyAccess(ctx, accessToken)
	if err != nil {
		return 0, err
	}

	log = log.With(zap.String("userID", access.UserID))

	removed, err := a.sessionRepo.DeleteAllByOwner(ctx, access.UserID)
	if err != nil {
		log.Error(ctx, msgErrDeletingSessions, zap.Error(err))
		return 0, fmt.Errorf("%s: %w", errCtxDeletingSessions, err)
	}

	log.Info(ctx, msgLoggedOutEverywhere, zap.Int64("count", removed))
	return removed, nil
}

// ListSessions возвращает активные сессии владельца access токена.
func (a *AuthUseCaseImpl) ListSessions(ctx context.Context, accessToken string) ([]*services.RefreshSession, error) {
	log := logger.Log(ctx).With(zap.String("method", methodListSessions))

	access, err := a.verifyAccess(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	sessions, err := a.sessionRepo.FindByOwner(ctx, access.UserID)
	if err != nil {
		log.Error(ctx, msgErrListingSessions, zap.Error(err), zap.String("userID", access.UserID))
		return nil, fmt.Errorf("%s: %w", errCtxListingSessions, err)
	}

	now := a.now()
	active := make([]*services.RefreshSession, 0, len(sessions))
	for _, session := range sessions {
		if session.ExpiresAt.After(now) {
			active = append(active, session)
		}
	}

	return active, nil
}

// Authenticate проверяет access токен и возвращает его claims.
func (a *AuthUseCaseImpl) Authenticate(ctx context.Context, accessToken string) (*services.JWTClaims, error) {
	return a.verifyAccess(ctx, accessToken)
}

func (a *AuthUseCaseImpl) verifyAccess(ctx context.Context, accessToken string) (*services.JWTClaims, error) {
	claims, err := a.codec.Verify(ctx, accessToken, services.TokenKindAccess)
	if err != nil {
		logger.Log(ctx).With(zap.String("method", methodAuthenticate)).Debug(ctx, msgRejectedAccessToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingAccess, services.ErrInvalidAccessToken)
	}
	return claims, nil
}

// openSession выпускает пару токенов и сохраняет запись с полным сроком жизни refresh токена.
func (a *AuthUseCaseImpl) openSession(ctx context.Context, user *entities.User, device services.DeviceInfo) (*services.TokenPair, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodOpenSession),
		zap.String("userID", user.ID),
	)

	tokens, err := a.issuer.IssuePair(ctx, user.ID, user.Email)
	if err != nil {
		log.Error(ctx, msgErrIssueTokens, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxGeneratingTokens, errors.Join(services.ErrTokenGenerationFailed, err))
	}

	expiresAt := a.now().Add(a.issuer.RefreshTTL())

	if _, err := a.sessionRepo.Create(ctx, &services.RefreshSession{
		UserID:    user.ID,
		Token:     tokens.RefreshToken,
		Device:    device.Bounded(),
		CreatedAt: a.now(),
		ExpiresAt: expiresAt,
	}); err != nil {
		log.Error(ctx, msgErrStoreSession, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxStoringSession, err)
	}

	log.Debug(ctx, msgSessionOpened, zap.Time("expiresAt", expiresAt))
	return tokens, nil
}

// Валидация email.
func validateEmail(email string) error {
	if email == "" || !emailRegex.MatchString(email) {
		return entities.ErrInvalidEmail
	}
	return nil
}

// Валидация пароля.
func validatePassword(password string) error {
	if len(password) < services.MinPasswordLength {
		return entities.ErrPasswordTooShort
	}
	if !letterRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return entities.ErrPasswordTooWeak
	}
	return nil
}
