package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"authkeeper/internal/auth/domain/entities"
	"authkeeper/internal/auth/domain/services"
	"authkeeper/internal/auth/ports/api"
	"authkeeper/internal/auth/ports/repositories"
	svc "authkeeper/internal/auth/ports/services"
	"authkeeper/pkg/logger"
)

// Границы страницы списка пользователей.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

const (
	methodGetUserProfile = "GetUserProfile"
	methodListUsers      = "ListUsers"
	methodUpdateUser     = "UpdateUser"
	methodDeleteUser     = "DeleteUser"

	msgRequestingProfile   = "requesting user profile"
	msgEmptyUserIDProvided = "empty user ID provided"
	msgProfileRetrieved    = "user profile successfully retrieved"
	msgForeignAccount      = "attempt to modify another user's account"
	msgEmptyUpdate         = "update without changes"
	msgUserUpdated         = "user profile updated"
	msgPasswordChanged     = "password changed, user sessions revoked"
	msgUserDeleted         = "user deleted"

	msgErrFindingUserByID = "failed to find user by ID"
	msgErrListingUsers    = "failed to list users"
	msgErrUpdatingUser    = "failed to update user"
	msgErrDeletingUser    = "failed to delete user"

	errCtxValidatingUserID = "validating user ID"
	errCtxFetchingProfile  = "fetching user profile"
	errCtxListingUsers     = "listing users"
	errCtxCheckingAccess   = "checking account ownership"
	errCtxValidatingUpdate = "validating update"
	errCtxUpdatingUser     = "updating user"
	errCtxDeletingUser     = "deleting user"
	errCtxRevokingSessions = "revoking user sessions"
)

// UserUseCaseImpl реализует интерфейс UserUseCase.
type UserUseCaseImpl struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	passwordSvc svc.PasswordService
}

// NewUserUseCase создает новый экземпляр сервиса пользователя.
func NewUserUseCase(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	passwordSvc svc.PasswordService,
) api.UserUseCase {
	return &UserUseCaseImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
	}
}

// GetUserProfile получает профиль пользователя по ID.
func (u *UserUseCaseImpl) GetUserProfile(ctx context.Context, userID string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGetUserProfile), zap.String("userID", userID))
	log.Debug(ctx, msgRequestingProfile)

	if userID == "" {
		log.Debug(ctx, msgEmptyUserIDProvided)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUserID, entities.ErrEmptyUserID)
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Debug(ctx, msgErrFindingUserByID, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFetchingProfile, err)
	}

	log.Debug(ctx, msgProfileRetrieved)
	return user, nil
}

// ListUsers возвращает страницу пользователей. limit приводится к [1, MaxListLimit].
func (u *UserUseCaseImpl) ListUsers(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodListUsers))

	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	users, err := u.userRepo.List(ctx, limit, offset)
	if err != nil {
		log.Error(ctx, msgErrListingUsers, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxListingUsers, err)
	}

	return users, nil
}

// UpdateUser меняет email, имя или пароль собственной учетной записи.
// Смена пароля закрывает все сессии пользователя.
func (u *UserUseCaseImpl) UpdateUser(ctx context.Context, actorID, targetID string, changes entities.UserChanges) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodUpdateUser), zap.String("userID", targetID))

	if err := checkOwnership(actorID, targetID); err != nil {
		log.Warn(ctx, msgForeignAccount, zap.String("actorID", actorID))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingAccess, err)
	}
	if changes.IsEmpty() {
		log.Debug(ctx, msgEmptyUpdate)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUpdate, entities.ErrEmptyUpdate)
	}

	user, err := u.userRepo.FindByID(ctx, targetID)
	if err != nil {
		log.Debug(ctx, msgErrFindingUserByID, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFetchingProfile, err)
	}

	updated := *user
	if err := u.applyChanges(ctx, user, &updated, changes); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUpdate, err)
	}

	saved, err := u.userRepo.Update(ctx, &updated)
	if err != nil {
		log.Error(ctx, msgErrUpdatingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingUser, err)
	}

	if changes.Password != nil {
		removed, err := u.sessionRepo.DeleteAllByOwner(ctx, targetID)
		if err != nil {
			log.Error(ctx, msgErrDeletingSessions, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxRevokingSessions, err)
		}
		log.Info(ctx, msgPasswordChanged, zap.Int64("count", removed))
	}

	log.Info(ctx, msgUserUpdated)
	return saved, nil
}

func (u *UserUseCaseImpl) applyChanges(ctx context.Context, current, updated *entities.User, changes entities.UserChanges) error {
	if changes.Email != nil && *changes.Email != current.Email {
		if err := validateEmail(*changes.Email); err != nil {
			return err
		}
		taken, err := u.userRepo.ExistsByEmail(ctx, *changes.Email)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtxCheckingUser, err)
		}
		if taken {
			return services.ErrEmailAlreadyExists
		}
		updated.Email = *changes.Email
	}

	if changes.Username != nil && *changes.Username != current.Username {
		if *changes.Username == "" {
			return entities.ErrEmptyUsername
		}
		taken, err := u.userRepo.ExistsByUsername(ctx, *changes.Username)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtxCheckingUser, err)
		}
		if taken {
			return services.ErrUsernameAlreadyExists
		}
		updated.Username = *changes.Username
	}

	if changes.Password != nil {
		if err := validatePassword(*changes.Password); err != nil {
			return err
		}
		hash, err := u.passwordSvc.Hash(ctx, *changes.Password)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtxHashingPassword, err)
		}
		updated.PasswordHash = hash
	}

	return nil
}

// DeleteUser удаляет собственную учетную запись вместе со всеми ее сессиями.
func (u *UserUseCaseImpl) DeleteUser(ctx context.Context, actorID, targetID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodDeleteUser), zap.String("userID", targetID))

	if err := checkOwnership(actorID, targetID); err != nil {
		log.Warn(ctx, msgForeignAccount, zap.String("actorID", actorID))
		return fmt.Errorf("%s: %w", errCtxCheckingAccess, err)
	}

	if err := u.userRepo.Delete(ctx, targetID); err != nil {
		log.Debug(ctx, msgErrDeletingUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxDeletingUser, err)
	}

	removed, err := u.sessionRepo.DeleteAllByOwner(ctx, targetID)
	if err != nil {
		log.Error(ctx, msgErrDeletingSessions, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxRevokingSessions, err)
	}

	log.Info(ctx, msgUserDeleted, zap.Int64("sessions", removed))
	return nil
}

func checkOwnership(actorID, targetID string) error {
	if targetID == "" {
		return entities.ErrEmptyUserID
	}
	if actorID != targetID {
		return entities.ErrForbidden
	}
	return nil
}
