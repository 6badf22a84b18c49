package api

import (
	"context"

	"authkeeper/internal/auth/domain/entities"
)

// UserUseCase определяет основной порт для пользовательских операций.
// actorID - владелец access токена, targetID - изменяемая учетная запись.
type UserUseCase interface {
	GetUserProfile(ctx context.Context, userID string) (*entities.User, error)

	ListUsers(ctx context.Context, limit, offset int) ([]*entities.User, error)

	UpdateUser(ctx context.Context, actorID, targetID string, changes entities.UserChanges) (*entities.User, error)

	DeleteUser(ctx context.Context, actorID, targetID string) error
}
