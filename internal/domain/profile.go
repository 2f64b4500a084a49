package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Profile is the application-level user record.
type Profile struct {
	ID           uuid.UUID  `json:"id"                        db:"id"`
	Email        string     `json:"email"                     db:"email"`
	DisplayName  string     `json:"display_name"              db:"display_name"`
	IsAdmin      bool       `json:"is_admin"                  db:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"                db:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty" db:"last_sign_in_at"`
}

type ProfileUpdate struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=120"`
	IsAdmin     *bool   `json:"is_admin"`
}

// AuthUser is the authentication identity behind a profile.
type AuthUser struct {
	ID           uuid.UUID  `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	LastSignInAt *time.Time `db:"last_sign_in_at"`
}

type Session struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	UserID    uuid.UUID `json:"user_id"    db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionInfo is what an authenticated request knows about its caller.
type SessionInfo struct {
	Session Session `json:"session"`
	Profile Profile `json:"profile"`
	Token   string  `json:"access_token,omitempty"`
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *Profile) (*Profile, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Profile, error)
	ListProfiles(ctx context.Context, params ListParams) ([]Profile, int, error)
	TouchLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error
}

type AuthRepository interface {
	CreateUser(ctx context.Context, user *AuthUser) (*AuthUser, error)
	GetUserByEmail(ctx context.Context, email string) (*AuthUser, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*AuthUser, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	TouchLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error

	CreateSession(ctx context.Context, session *Session) (*Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
