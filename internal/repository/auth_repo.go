package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const authUserColumns = `id, email, password_hash, created_at, last_sign_in_at`

type postgresAuthRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresAuthRepository(db *sqlx.DB, logger *logrus.Logger) domain.AuthRepository {
	return &postgresAuthRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresAuthRepository) CreateUser(ctx context.Context, user *domain.AuthUser) (*domain.AuthUser, error) {
	query := `
        INSERT INTO auth_users (email, password_hash)
        VALUES ($1, $2)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warnf("Repository: Attempt to register duplicate email: %s", user.Email)
			return nil, domain.Conflict("user with email %s", user.Email)
		}
		r.log.Errorf("Repository: Error creating user %s: %v", user.Email, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	r.log.Infof("Repository: User created with ID %s, Email %s", user.ID, user.Email)
	return user, nil
}

func (r *postgresAuthRepository) GetUserByEmail(ctx context.Context, email string) (*domain.AuthUser, error) {
	user := &domain.AuthUser{}
	err := r.db.GetContext(ctx, user, `SELECT `+authUserColumns+` FROM auth_users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("user", email)
		}
		r.log.Errorf("Repository: Error fetching user by email %s: %v", email, err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *postgresAuthRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.AuthUser, error) {
	user := &domain.AuthUser{}
	err := r.db.GetContext(ctx, user, `SELECT `+authUserColumns+` FROM auth_users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("user", id)
		}
		r.log.Errorf("Repository: Error fetching user %s: %v", id, err)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// DeleteUser removes the identity; profile, sessions and cart rows cascade.
func (r *postgresAuthRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM auth_users WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Error deleting user %s: %v", id, err)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not confirm user deletion: %w", err)
	}
	if n == 0 {
		return domain.NotFound("user", id)
	}
	r.log.Infof("Repository: User %s deleted", id)
	return nil
}

func (r *postgresAuthRepository) TouchLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE auth_users SET last_sign_in_at = $1 WHERE id = $2`, at, id); err != nil {
		r.log.Errorf("Repository: Error touching last sign-in of user %s: %v", id, err)
		return fmt.Errorf("failed to update last sign-in: %w", err)
	}
	return nil
}

func (r *postgresAuthRepository) CreateSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	query := `
        INSERT INTO auth_sessions (user_id, expires_at)
        VALUES ($1, $2)
        RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, session.UserID, session.ExpiresAt).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NotFound("user", session.UserID)
		}
		r.log.Errorf("Repository: Error creating session for user %s: %v", session.UserID, err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func (r *postgresAuthRepository) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	session := &domain.Session{}
	err := r.db.GetContext(ctx, session,
		`SELECT id, user_id, created_at, expires_at FROM auth_sessions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("session", id)
		}
		r.log.Errorf("Repository: Error fetching session %s: %v", id, err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (r *postgresAuthRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = $1`, id); err != nil {
		r.log.Errorf("Repository: Error deleting session %s: %v", id, err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
