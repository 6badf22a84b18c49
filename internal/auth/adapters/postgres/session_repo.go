package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"authkeeper/internal/auth/domain/services"
	"authkeeper/internal/auth/ports/repositories"
	"authkeeper/pkg/logger"
)

const sessionColumns = `id, user_id, token, user_agent, ip_address, created_at, expires_at`

// SessionRepository реализует repositories.SessionRepository для Postgres.
type SessionRepository struct {
	pool PgxPoolInterface
}

// NewSessionRepository создает новый экземпляр репозитория сессий.
func NewSessionRepository(pool PgxPoolInterface) repositories.SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) log(ctx context.Context, method string) *logger.Logger {
	return logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", method))
}

func scanSession(row pgx.Row) (*services.RefreshSession, error) {
	var session services.RefreshSession
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.Device.UserAgent,
		&session.Device.IPAddress,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Create сохраняет новую запись refresh-сессии. Метаданные устройства усекаются до ширины столбцов.
func (r *SessionRepository) Create(ctx context.Context, session *services.RefreshSession) (*services.RefreshSession, error) {
	log := r.log(ctx, "Create").With(zap.String("userID", session.UserID))

	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	device := session.Device.Bounded()

	query := `
        INSERT INTO refresh_sessions (user_id, token, user_agent, ip_address, created_at, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + sessionColumns

	created, err := scanSession(r.pool.QueryRow(ctx, query,
		session.UserID,
		session.Token,
		device.UserAgent,
		device.IPAddress,
		createdAt,
		session.ExpiresAt,
	))
	if err != nil {
		if code, _, ok := pgErrorCode(err); ok && code == pgCodeUniqueViolation {
			log.Error(ctx, "refresh session token collision", zap.Error(err))
			return nil, fmt.Errorf("error storing refresh session: %w", services.ErrSessionConflict)
		}
		log.Error(ctx, "error storing refresh session", zap.Error(err))
		return nil, fmt.Errorf("error storing refresh session: %w", err)
	}

	return created, nil
}

// FindByToken находит запись по строке токена.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*services.RefreshSession, error) {
	log := r.log(ctx, "FindByToken")

	query := `
        SELECT ` + sessionColumns + `
        FROM refresh_sessions
        WHERE token = $1
    `

	session, err := scanSession(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "refresh session not found")
			return nil, services.ErrSessionNotFound
		}
		log.Error(ctx, "error finding refresh session", zap.Error(err))
		return nil, fmt.Errorf("error querying refresh session: %w", err)
	}

	return session, nil
}

// FindByOwner возвращает все сессии пользователя, новые первыми.
func (r *SessionRepository) FindByOwner(ctx context.Context, userID string) ([]*services.RefreshSession, error) {
	log := r.log(ctx, "FindByOwner").With(zap.String("userID", userID))

	query := `
        SELECT ` + sessionColumns + `
        FROM refresh_sessions
        WHERE user_id = $1
        ORDER BY created_at DESC
    `

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		log.Error(ctx, "error querying user sessions", zap.Error(err))
		return nil, fmt.Errorf("error querying user sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*services.RefreshSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			log.Error(ctx, "error scanning session row", zap.Error(err))
			return nil, fmt.Errorf("error scanning session row: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating session rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}

	return sessions, nil
}

// DeleteByToken удаляет запись по токену и сообщает, была ли она удалена.
func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	log := r.log(ctx, "DeleteByToken")

	result, err := r.pool.Exec(ctx, `DELETE FROM refresh_sessions WHERE token = $1`, token)
	if err != nil {
		log.Error(ctx, "error deleting refresh session", zap.Error(err))
		return false, fmt.Errorf("error deleting refresh session: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ConsumeByToken удаляет запись одним DELETE ... RETURNING; из гонки выигрывает один вызов.
func (r *SessionRepository) ConsumeByToken(ctx context.Context, token string) (*services.RefreshSession, error) {
	log := r.log(ctx, "ConsumeByToken")

	query := `
        DELETE FROM refresh_sessions
        WHERE token = $1
        RETURNING ` + sessionColumns

	session, err := scanSession(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "refresh session already consumed or unknown")
			return nil, services.ErrSessionNotFound
		}
		log.Error(ctx, "error consuming refresh session", zap.Error(err))
		return nil, fmt.Errorf("error consuming refresh session: %w", err)
	}

	return session, nil
}

// DeleteByOwnerAndToken удаляет запись, только если она принадлежит userID.
func (r *SessionRepository) DeleteByOwnerAndToken(ctx context.Context, userID, token string) (bool, error) {
	log := r.log(ctx, "DeleteByOwnerAndToken").With(zap.String("userID", userID))

	result, err := r.pool.Exec(ctx,
		`DELETE FROM refresh_sessions WHERE user_id = $1 AND token = $2`, userID, token)
	if err != nil {
		if code, _, ok := pgErrorCode(err); ok && code == pgCodeInvalidTextRepr {
			log.Debug(ctx, "malformed user id")
			return false, nil
		}
		log.Error(ctx, "error deleting user session", zap.Error(err))
		return false, fmt.Errorf("error deleting user session: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// DeleteAllByOwner удаляет все сессии пользователя.
func (r *SessionRepository) DeleteAllByOwner(ctx context.Context, userID string) (int64, error) {
	log := r.log(ctx, "DeleteAllByOwner").With(zap.String("userID", userID))

	result, err := r.pool.Exec(ctx, `DELETE FROM refresh_sessions WHERE user_id = $1`, userID)
	if err != nil {
		log.Error(ctx, "error deleting all user sessions", zap.Error(err))
		return 0, fmt.Errorf("error deleting all user sessions: %w", err)
	}

	log.Info(ctx, "all user sessions deleted", zap.Int64("count", result.RowsAffected()))
	return result.RowsAffected(), nil
}

// SweepExpired удаляет записи с expires_at <= now.
func (r *SessionRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	log := r.log(ctx, "SweepExpired")

	result, err := r.pool.Exec(ctx, `DELETE FROM refresh_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		log.Error(ctx, "error sweeping expired sessions", zap.Error(err))
		return 0, fmt.Errorf("error sweeping expired sessions: %w", err)
	}

	log.Debug(ctx, "expired sessions swept", zap.Int64("removed_count", result.RowsAffected()))
	return result.RowsAffected(), nil
}
