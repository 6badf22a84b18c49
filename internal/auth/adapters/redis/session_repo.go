// Package redis реализует хранилище refresh-сессий на Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"authkeeper/internal/auth/domain/services"
	"authkeeper/internal/auth/ports/repositories"
	"authkeeper/pkg/logger"
)

// DefaultKeyPrefix - префикс ключей по умолчанию.
const DefaultKeyPrefix = "authkeeper"

var errUnexpectedReply = errors.New("unexpected redis reply")

// SessionRepository хранит сессии в hash-ключах, индекс пользователя в set,
// а сроки действия в sorted set.
type SessionRepository struct {
	client *goredis.Client
	prefix string
	now    func() time.Time
}

// Option настраивает SessionRepository.
type Option func(*SessionRepository)

// WithKeyPrefix задает префикс ключей.
func WithKeyPrefix(prefix string) Option {
	return func(r *SessionRepository) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithClock задает источник времени для created_at.
func WithClock(now func() time.Time) Option {
	return func(r *SessionRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewSessionRepository создает новый экземпляр репозитория сессий.
// Скрипты вычисляют часть ключей из ARGV, поэтому хранилище работает только
// с одиночным узлом Redis и не поддерживает Redis Cluster.
func NewSessionRepository(client *goredis.Client, opts ...Option) repositories.SessionRepository {
	r := &SessionRepository{
		client: client,
		prefix: DefaultKeyPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SessionRepository) sessionPrefix() string { return r.prefix + ":session:" }
func (r *SessionRepository) userPrefix() string    { return r.prefix + ":user:" }
func (r *SessionRepository) expiryKey() string     { return r.prefix + ":expiry" }

func (r *SessionRepository) sessionKey(token string) string { return r.sessionPrefix() + token }
func (r *SessionRepository) userKey(userID string) string   { return r.userPrefix() + userID }

func indexMember(userID, token string) string { return userID + "|" + token }

func (r *SessionRepository) log(ctx context.Context, method string) *logger.Logger {
	return logger.Log(ctx).With(zap.String("repository", "redis_session"), zap.String("method", method))
}

// Create сохраняет новую запись refresh-сессии.
func (r *SessionRepository) Create(ctx context.Context, session *services.RefreshSession) (*services.RefreshSession, error) {
	log := r.log(ctx, "Create").With(zap.String("userID", session.UserID))

	stored := *session
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}
	stored.CreatedAt = stored.CreatedAt.Truncate(time.Millisecond).UTC()
	stored.ExpiresAt = stored.ExpiresAt.Truncate(time.Millisecond).UTC()

	created, err := createScript.Run(ctx, r.client,
		[]string{r.sessionKey(stored.Token), r.userKey(stored.UserID), r.expiryKey()},
		stored.ID,
		stored.UserID,
		stored.Token,
		stored.CreatedAt.UnixMilli(),
		stored.ExpiresAt.UnixMilli(),
		stored.Device.UserAgent,
		stored.Device.IPAddress,
		indexMember(stored.UserID, stored.Token),
	).Int64()
	if err != nil {
		log.Error(ctx, "error storing refresh session", zap.Error(err))
		return nil, fmt.Errorf("error storing refresh session: %w", err)
	}

	if created == 0 {
		log.Error(ctx, "refresh session token collision")
		return nil, fmt.Errorf("error storing refresh session: %w", services.ErrSessionConflict)
	}

	return &stored, nil
}

// FindByToken находит запись по строке токена.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*services.RefreshSession, error) {
	log := r.log(ctx, "FindByToken")

	fields, err := r.client.HGetAll(ctx, r.sessionKey(token)).Result()
	if err != nil {
		log.Error(ctx, "error finding refresh session", zap.Error(err))
		return nil, fmt.Errorf("error querying refresh session: %w", err)
	}

	if len(fields) == 0 {
		log.Debug(ctx, "refresh session not found")
		return nil, services.ErrSessionNotFound
	}

	return decodeSession(fields)
}

// FindByOwner возвращает все сессии пользователя, новые первыми.
func (r *SessionRepository) FindByOwner(ctx context.Context, userID string) ([]*services.RefreshSession, error) {
	log := r.log(ctx, "FindByOwner").With(zap.String("userID", userID))

	tokens, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		log.Error(ctx, "error querying user sessions", zap.Error(err))
		return nil, fmt.Errorf("error querying user sessions: %w", err)
	}

	if len(tokens) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*goredis.MapStringStringCmd, 0, len(tokens))
	for _, token := range tokens {
		cmds = append(cmds, pipe.HGetAll(ctx, r.sessionKey(token)))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		log.Error(ctx, "error loading user sessions", zap.Error(err))
		return nil, fmt.Errorf("error loading user sessions: %w", err)
	}

	sessions := make([]*services.RefreshSession, 0, len(cmds))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		session, err := decodeSession(fields)
		if err != nil {
			log.Error(ctx, "error decoding user session", zap.Error(err))
			return nil, err
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	return sessions, nil
}

// DeleteByToken удаляет запись по токену и сообщает, была ли она удалена.
func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	_, err := r.ConsumeByToken(ctx, token)
	if errors.Is(err, services.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ConsumeByToken атомарно читает и удаляет запись Lua-скриптом.
func (r *SessionRepository) ConsumeByToken(ctx context.Context, token string) (*services.RefreshSession, error) {
	log := r.log(ctx, "ConsumeByToken")

	reply, err := consumeScript.Run(ctx, r.client,
		[]string{r.sessionKey(token), r.expiryKey()},
		token,
		r.userPrefix(),
	).StringSlice()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			log.Debug(ctx, "refresh session already consumed or unknown")
			return nil, services.ErrSessionNotFound
		}
		log.Error(ctx, "error consuming refresh session", zap.Error(err))
		return nil, fmt.Errorf("error consuming refresh session: %w", err)
	}

	if len(reply)%2 != 0 {
		return nil, fmt.Errorf("error consuming refresh session: %w", errUnexpectedReply)
	}

	fields := make(map[string]string, len(reply)/2)
	for i := 0; i < len(reply); i += 2 {
		fields[reply[i]] = reply[i+1]
	}

	return decodeSession(fields)
}

// DeleteByOwnerAndToken удаляет запись, только если она принадлежит userID.
func (r *SessionRepository) DeleteByOwnerAndToken(ctx context.Context, userID, token string) (bool, error) {
	log := r.log(ctx, "DeleteByOwnerAndToken").With(zap.String("userID", userID))

	removed, err := deleteOwnedScript.Run(ctx, r.client,
		[]string{r.sessionKey(token), r.userKey(userID), r.expiryKey()},
		userID,
		token,
	).Int64()
	if err != nil {
		log.Error(ctx, "error deleting user session", zap.Error(err))
		return false, fmt.Errorf("error deleting user session: %w", err)
	}

	return removed == 1, nil
}

// DeleteAllByOwner удаляет все сессии пользователя.
func (r *SessionRepository) DeleteAllByOwner(ctx context.Context, userID string) (int64, error) {
	log := r.log(ctx, "DeleteAllByOwner").With(zap.String("userID", userID))

	removed, err := deleteAllScript.Run(ctx, r.client,
		[]string{r.userKey(userID), r.expiryKey()},
		r.sessionPrefix(),
		userID,
	).Int64()
	if err != nil {
		log.Error(ctx, "error deleting all user sessions", zap.Error(err))
		return 0, fmt.Errorf("error deleting all user sessions: %w", err)
	}

	log.Info(ctx, "all user sessions deleted", zap.Int64("count", removed))
	return removed, nil
}

// SweepExpired удаляет записи с expires_at <= now.
func (r *SessionRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	log := r.log(ctx, "SweepExpired")

	removed, err := sweepScript.Run(ctx, r.client,
		[]string{r.expiryKey()},
		now.UnixMilli(),
		r.sessionPrefix(),
		r.userPrefix(),
	).Int64()
	if err != nil {
		log.Error(ctx, "error sweeping expired sessions", zap.Error(err))
		return 0, fmt.Errorf("error sweeping expired sessions: %w", err)
	}

	log.Debug(ctx, "expired sessions swept", zap.Int64("removed_count", removed))
	return removed, nil
}

func decodeSession(fields map[string]string) (*services.RefreshSession, error) {
	createdAt, err := parseMillis(fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("decoding created_at: %w", err)
	}

	expiresAt, err := parseMillis(fields["expires_at"])
	if err != nil {
		return nil, fmt.Errorf("decoding expires_at: %w", err)
	}

	return &services.RefreshSession{
		ID:     fields["id"],
		UserID: fields["user_id"],
		Token:  fields["token"],
		Device: services.DeviceInfo{
			UserAgent: fields["user_agent"],
			IPAddress: fields["ip_address"],
		},
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

func parseMillis(value string) (time.Time, error) {
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
