package usecase

import (
	"context"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProfileUseCase interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	// UpdateOwnProfile changes self-service fields only; the admin flag is ignored.
	UpdateOwnProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Profile, error)
	AdminUpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Profile, error)
	ListProfiles(ctx context.Context, params domain.ListParams) (domain.Page[domain.Profile], error)
}

type profileUseCase struct {
	profileRepo     domain.ProfileRepository
	defaultPageSize int
	log             *logrus.Logger
}

func NewProfileUseCase(repo domain.ProfileRepository, defaultPageSize int, logger *logrus.Logger) ProfileUseCase {
	return &profileUseCase{
		profileRepo:     repo,
		defaultPageSize: defaultPageSize,
		log:             logger,
	}
}

func (uc *profileUseCase) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, err := uc.profileRepo.GetProfileByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to get profile %s: %v", id, err)
		return nil, err
	}
	return profile, nil
}

func (uc *profileUseCase) UpdateOwnProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Profile, error) {
	update.IsAdmin = nil
	return uc.update(ctx, id, update)
}

func (uc *profileUseCase) AdminUpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Profile, error) {
	if update.IsAdmin != nil {
		uc.log.Infof("Use Case: Setting admin flag of profile %s to %t", id, *update.IsAdmin)
	}
	return uc.update(ctx, id, update)
}

func (uc *profileUseCase) update(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Profile, error) {
	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		update.DisplayName = &name
	}
	if err := validateStruct(update); err != nil {
		uc.log.Warnf("Use Case: Rejected profile update for %s: %v", id, err)
		return nil, err
	}
	profile, err := uc.profileRepo.UpdateProfile(ctx, id, update)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to update profile %s: %v", id, err)
		return nil, err
	}
	return profile, nil
}

func (uc *profileUseCase) ListProfiles(ctx context.Context, params domain.ListParams) (domain.Page[domain.Profile], error) {
	params = params.Normalize(uc.defaultPageSize)
	profiles, total, err := uc.profileRepo.ListProfiles(ctx, params)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list profiles: %v", err)
		return domain.Page[domain.Profile]{}, err
	}
	return domain.NewPage(profiles, total, params), nil
}
