package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"authkeeper/internal/auth/domain/entities"
	"authkeeper/internal/auth/domain/services"
	"authkeeper/pkg/logger"
)

const (
	methodRefreshTokens = "RefreshTokens"

	msgRefreshingTokens      = "refreshing tokens"
	msgRefreshRejected       = "refresh token rejected by codec"
	msgAccessRejected        = "presented access token rejected"
	msgRotationSubjectDiffer = "refresh and access tokens belong to different users"
	msgReusedRefreshToken    = "refresh token not recognized, possible reuse"
	msgSessionExpired        = "refresh session past its deadline"
	msgUserGone              = "user behind refresh session no longer exists"
	msgUserInactive          = "user behind refresh session is not active"
	msgTokensRefreshed       = "tokens refreshed successfully"

	msgErrConsumingSession = "failed to consume refresh session"
	msgErrLoadingUser      = "failed to load user for refresh session"
	msgErrReissuing        = "failed to issue replacement tokens"
	msgErrPersisting       = "failed to store replacement session"

	errCtxConsumingSession = "consuming refresh session"
	errCtxSessionExpired   = "checking session deadline"
	errCtxReissuing        = "issuing replacement tokens"
	errCtxPersisting       = "storing replacement session"
)

// RefreshTokens обменивает refresh токен на новую пару. Старая запись удаляется до выпуска
// новой, а новая наследует исходный абсолютный срок действия.
func (a *AuthUseCaseImpl) RefreshTokens(ctx context.Context, refreshToken, accessToken string, device services.DeviceInfo) (*services.TokenPair, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRefreshTokens))
	log.Debug(ctx, msgRefreshingTokens)

	refresh, err := a.codec.Verify(ctx, refreshToken, services.TokenKindRefresh)
	if err != nil {
		log.Debug(ctx, msgRefreshRejected, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingRefresh, services.ErrInvalidRefreshToken)
	}

	log = log.With(zap.String("userID", refresh.UserID))

	if accessToken != "" {
		access, err := a.codec.Verify(ctx, accessToken, services.TokenKindAccess)
		if err != nil {
			log.Debug(ctx, msgAccessRejected, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxVerifyingAccess, services.ErrInvalidAccessToken)
		}
		if access.UserID != refresh.UserID {
			log.Warn(ctx, msgRotationSubjectDiffer, zap.String("accessUserID", access.UserID))
			return nil, fmt.Errorf("%s: %w", errCtxMatchingSubjects, services.ErrTokenSubjectMismatch)
		}
	}

	session, err := a.sessionRepo.ConsumeByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			log.Warn(ctx, msgReusedRefreshToken)
			return nil, fmt.Errorf("%s: %w", errCtxConsumingSession, services.ErrRefreshTokenNotRecognized)
		}
		log.Error(ctx, msgErrConsumingSession, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxConsumingSession, err)
	}

	now := a.now()
	remaining := max(session.ExpiresAt.Sub(now), 0)
	if remaining == 0 {
		log.Debug(ctx, msgSessionExpired, zap.Time("expiresAt", session.ExpiresAt))
		return nil, fmt.Errorf("%s: %w", errCtxSessionExpired, services.ErrRefreshTokenExpired)
	}

	user, err := a.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Info(ctx, msgUserGone)
			return nil, fmt.Errorf("%s: %w", errCtxFindingUser, services.ErrAccountInactive)
		}
		log.Error(ctx, msgErrLoadingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}
	if !user.IsActive() {
		log.Info(ctx, msgUserInactive, zap.String("status", string(user.Status)))
		return nil, fmt.Errorf("%s: %w", errCtxAccountStatus, services.ErrAccountInactive)
	}

	newRefresh, refreshExpires, err := a.issuer.IssueRefresh(ctx, user.ID, user.Email, remaining)
	if err != nil {
		log.Error(ctx, msgErrReissuing, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxReissuing, errors.Join(services.ErrTokenGenerationFailed, err))
	}

	newAccess, accessExpires, err := a.issuer.IssueAccess(ctx, user.ID, user.Email)
	if err != nil {
		log.Error(ctx, msgErrReissuing, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxReissuing, errors.Join(services.ErrTokenGenerationFailed, err))
	}

	if device == (services.DeviceInfo{}) {
		device = session.Device
	}

	if _, err := a.sessionRepo.Create(ctx, &services.RefreshSession{
		UserID:    user.ID,
		Token:     newRefresh,
		Device:    device.Bounded(),
		CreatedAt: now,
		ExpiresAt: session.ExpiresAt,
	}); err != nil {
		log.Error(ctx, msgErrPersisting, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxPersisting, err)
	}

	log.Info(ctx, msgTokensRefreshed, zap.Time("expiresAt", session.ExpiresAt))

	return &services.TokenPair{
		UserID:                user.ID,
		AccessToken:           newAccess,
		RefreshToken:          newRefresh,
		AccessTokenExpiresAt:  accessExpires,
		RefreshTokenExpiresAt: refreshExpires,
	}, nil
}
