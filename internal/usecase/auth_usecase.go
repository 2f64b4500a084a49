package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AuthUseCase interface {
	SignUp(ctx context.Context, email, password, displayName string) (*domain.SessionInfo, error)
	SignIn(ctx context.Context, email, password string) (*domain.SessionInfo, error)
	SignOut(ctx context.Context, sessionID uuid.UUID) error
	// GetSession resolves a bearer token to its live session and profile.
	GetSession(ctx context.Context, token string) (*domain.SessionInfo, error)

	AdminCreateUser(ctx context.Context, email, password, displayName string, isAdmin bool) (*domain.Profile, error)
	AdminDeleteUser(ctx context.Context, id uuid.UUID) error
}

type authUseCase struct {
	authRepo       domain.AuthRepository
	profileRepo    domain.ProfileRepository
	tokens         *auth.TokenIssuer
	sessionTTL     time.Duration
	adminUsersOpen bool
	now            func() time.Time
	log            *logrus.Logger
}

// NewAuthUseCase builds the auth use case. Admin user management is only
// available when adminUsersEnabled is true (a service role key is configured).
func NewAuthUseCase(authRepo domain.AuthRepository, profileRepo domain.ProfileRepository, tokens *auth.TokenIssuer,
	sessionTTL time.Duration, adminUsersEnabled bool, logger *logrus.Logger) AuthUseCase {
	return &authUseCase{
		authRepo:       authRepo,
		profileRepo:    profileRepo,
		tokens:         tokens,
		sessionTTL:     sessionTTL,
		adminUsersOpen: adminUsersEnabled,
		now:            time.Now,
		log:            logger,
	}
}

var errBadCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", domain.Invalid("invalid email format")
	}
	return email, nil
}

func (uc *authUseCase) SignUp(ctx context.Context, email, password, displayName string) (*domain.SessionInfo, error) {
	profile, err := uc.register(ctx, email, password, displayName, false)
	if err != nil {
		return nil, err
	}
	return uc.startSession(ctx, *profile)
}

func (uc *authUseCase) register(ctx context.Context, email, password, displayName string, isAdmin bool) (*domain.Profile, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		uc.log.Warnf("Use Case: Registration failed - invalid email format: %s", email)
		return nil, err
	}
	email = normalized
	if err := auth.ValidatePassword(password); err != nil {
		uc.log.Warnf("Use Case: Registration failed - password validation error: %v", err)
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if len(displayName) > 120 {
		return nil, domain.Invalid("display_name must be at most 120 characters")
	}

	uc.log.Infof("Use Case: Attempting registration for email: %s", email)
	hash, err := auth.HashPassword(password)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	user, err := uc.authRepo.CreateUser(ctx, &domain.AuthUser{Email: email, PasswordHash: hash})
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create user %s: %v", email, err)
		return nil, err
	}

	profile, err := uc.profileRepo.CreateProfile(ctx, &domain.Profile{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: displayName,
		IsAdmin:     isAdmin,
	})
	if err != nil {
		uc.log.Errorf("Use Case: User %s created but profile creation failed: %v", user.ID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: User registered successfully. ID: %s, Email: %s", user.ID, user.Email)
	return profile, nil
}

func (uc *authUseCase) SignIn(ctx context.Context, email, password string) (*domain.SessionInfo, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errBadCredentials
	}
	uc.log.Infof("Use Case: Attempting authentication for email: %s", email)

	user, err := uc.authRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", email)
			return nil, errBadCredentials
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", email, err)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		uc.log.Warnf("Use Case: Auth failed for user %s: %v", user.ID, err)
		return nil, err
	}

	profile, err := uc.profileRepo.GetProfileByID(ctx, user.ID)
	if err != nil {
		uc.log.Errorf("Use Case: User %s has no profile: %v", user.ID, err)
		return nil, err
	}
	return uc.startSession(ctx, *profile)
}

func (uc *authUseCase) startSession(ctx context.Context, profile domain.Profile) (*domain.SessionInfo, error) {
	now := uc.now()
	session, err := uc.authRepo.CreateSession(ctx, &domain.Session{
		UserID:    profile.ID,
		ExpiresAt: auth.SessionExpiry(now, uc.sessionTTL),
	})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to create session for user %s: %v", profile.ID, err)
		return nil, err
	}
	token, err := uc.tokens.Issue(*session)
	if err != nil {
		return nil, err
	}

	if err := uc.authRepo.TouchLastSignIn(ctx, profile.ID, now); err != nil {
		uc.log.Warnf("Use Case: Failed to record sign-in of user %s: %v", profile.ID, err)
	}
	if err := uc.profileRepo.TouchLastSignIn(ctx, profile.ID, now); err != nil {
		uc.log.Warnf("Use Case: Failed to record sign-in on profile %s: %v", profile.ID, err)
	}
	profile.LastSignInAt = &now

	uc.log.Infof("Use Case: Session %s started for user %s", session.ID, profile.ID)
	return &domain.SessionInfo{Session: *session, Profile: profile, Token: token}, nil
}

func (uc *authUseCase) SignOut(ctx context.Context, sessionID uuid.UUID) error {
	if err := uc.authRepo.DeleteSession(ctx, sessionID); err != nil {
		uc.log.Errorf("Use Case: Failed to end session %s: %v", sessionID, err)
		return err
	}
	uc.log.Infof("Use Case: Session %s ended", sessionID)
	return nil
}

func (uc *authUseCase) GetSession(ctx context.Context, token string) (*domain.SessionInfo, error) {
	userID, sessionID, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	session, err := uc.authRepo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: session ended", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if session.UserID != userID || session.Expired(uc.now()) {
		return nil, fmt.Errorf("%w: session expired", domain.ErrUnauthorized)
	}

	profile, err := uc.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return &domain.SessionInfo{Session: *session, Profile: *profile}, nil
}

func (uc *authUseCase) AdminCreateUser(ctx context.Context, email, password, displayName string, isAdmin bool) (*domain.Profile, error) {
	if !uc.adminUsersOpen {
		return nil, domain.ErrAdminKeyMissing
	}
	return uc.register(ctx, email, password, displayName, isAdmin)
}

func (uc *authUseCase) AdminDeleteUser(ctx context.Context, id uuid.UUID) error {
	if !uc.adminUsersOpen {
		return domain.ErrAdminKeyMissing
	}
	uc.log.Infof("Use Case: Deleting user %s", id)
	if err := uc.authRepo.DeleteUser(ctx, id); err != nil {
		uc.log.Errorf("Use Case: Failed to delete user %s: %v", id, err)
		return err
	}
	return nil
}
