package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"authkeeper/internal/auth/domain/entities"
	"authkeeper/internal/auth/domain/services"
	"authkeeper/internal/auth/ports/repositories"
	"authkeeper/pkg/logger"
)

const userColumns = `id, email, username, password_hash, status, created_at, updated_at`

// UserRepository реализует интерфейс repositories.UserRepository для работы с Postgres.
type UserRepository struct {
	pool PgxPoolInterface
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(pool PgxPoolInterface) repositories.UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var (
		user   entities.User
		status string
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Status = entities.UserStatus(status)
	return &user, nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByID"))

	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = $1
    `

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found", zap.String("id", id))
			return nil, entities.ErrUserNotFound
		}
		if code, _, ok := pgErrorCode(err); ok && code == pgCodeInvalidTextRepr {
			log.Debug(ctx, "malformed user id", zap.String("id", id))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by id", zap.Error(err))
		return nil, fmt.Errorf("error querying user by id: %w", err)
	}

	return user, nil
}

// FindByEmail находит пользователя по email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByEmail"))

	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE email = $1
    `

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found", zap.String("email", email))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by email", zap.Error(err))
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}

	return user, nil
}

// ExistsByEmail проверяет, занят ли email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "ExistsByEmail", `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

// ExistsByUsername проверяет, занято ли имя пользователя.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "ExistsByUsername", `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepository) exists(ctx context.Context, method, query, arg string) (bool, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	var exists bool
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		log.Error(ctx, "error checking user existence", zap.Error(err))
		return false, fmt.Errorf("error checking user existence: %w", err)
	}

	return exists, nil
}

// Create создает нового пользователя. Статус по умолчанию - active.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	status := user.Status
	if status == "" {
		status = entities.UserStatusActive
	}

	query := `
        INSERT INTO users (email, username, password_hash, status)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + userColumns

	createdUser, err := scanUser(r.pool.QueryRow(ctx, query,
		user.Email,
		user.Username,
		user.PasswordHash,
		string(status),
	))
	if err != nil {
		if code, constraint, ok := pgErrorCode(err); ok && code == pgCodeUniqueViolation {
			switch constraint {
			case constraintUsersEmail:
				return nil, fmt.Errorf("error creating user: %w", services.ErrEmailAlreadyExists)
			case constraintUsersUsername:
				return nil, fmt.Errorf("error creating user: %w", services.ErrUsernameAlreadyExists)
			}
		}
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return createdUser, nil
}

// List возвращает страницу пользователей в порядке регистрации.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "List"))

	query := `
        SELECT ` + userColumns + `
        FROM users
        ORDER BY created_at, id
        LIMIT $1 OFFSET $2
    `

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		log.Error(ctx, "error listing users", zap.Error(err))
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*entities.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Error(ctx, "error scanning user", zap.Error(err))
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating users", zap.Error(err))
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// Update обновляет email, имя, хэш пароля и статус пользователя.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Update"))

	query := `
        UPDATE users
        SET email = $2, username = $3, password_hash = $4, status = $5, updated_at = now()
        WHERE id = $1
        RETURNING ` + userColumns

	updatedUser, err := scanUser(r.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		string(user.Status),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found for update", zap.String("id", user.ID))
			return nil, entities.ErrUserNotFound
		}
		if code, constraint, ok := pgErrorCode(err); ok {
			switch {
			case code == pgCodeInvalidTextRepr:
				return nil, entities.ErrUserNotFound
			case code == pgCodeUniqueViolation && constraint == constraintUsersEmail:
				return nil, fmt.Errorf("error updating user: %w", services.ErrEmailAlreadyExists)
			case code == pgCodeUniqueViolation && constraint == constraintUsersUsername:
				return nil, fmt.Errorf("error updating user: %w", services.ErrUsernameAlreadyExists)
			}
		}
		log.Error(ctx, "error updating user", zap.Error(err))
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return updatedUser, nil
}

// Delete удаляет пользователя по ID.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Delete"))

	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if code, _, ok := pgErrorCode(err); ok && code == pgCodeInvalidTextRepr {
			return entities.ErrUserNotFound
		}
		log.Error(ctx, "error deleting user", zap.Error(err))
		return fmt.Errorf("error deleting user: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "user not found for deletion", zap.String("id", id))
		return entities.ErrUserNotFound
	}

	return nil
}
