package repositories

import (
	"context"
	"time"

	"authkeeper/internal/auth/domain/services"
)

// SessionRepository хранит записи refresh-сессий. Каждая операция атомарна сама по себе;
// транзакций поверх нескольких вызовов нет.
type SessionRepository interface {
	// Create сохраняет запись; ErrSessionConflict, если токен уже существует.
	Create(ctx context.Context, session *services.RefreshSession) (*services.RefreshSession, error)

	FindByToken(ctx context.Context, token string) (*services.RefreshSession, error)

	FindByOwner(ctx context.Context, userID string) ([]*services.RefreshSession, error)

	DeleteByToken(ctx context.Context, token string) (bool, error)

	// ConsumeByToken атомарно находит и удаляет запись. Из конкурирующих вызовов
	// для одного токена запись получает не более одного.
	ConsumeByToken(ctx context.Context, token string) (*services.RefreshSession, error)

	DeleteByOwnerAndToken(ctx context.Context, userID, token string) (bool, error)

	DeleteAllByOwner(ctx context.Context, userID string) (int64, error)

	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}
