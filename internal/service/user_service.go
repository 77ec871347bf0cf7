package service

import (
	"context"
	"errors"
	"strings"

	"sportspot/internal/database"
	"sportspot/internal/domain"
	"sportspot/internal/metrics"
	"sportspot/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	users  domain.UserRepository
	logger *zerolog.Logger
}

func NewUserService(users domain.UserRepository, logger *zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) storeFailure(op string, err error) error {
	metrics.IncStoreError(op)
	s.logger.Error().Err(err).Str("op", op).Msg("Store operation failed")
	return domain.Infrastructure("user store is unavailable, please retry", err)
}

func (s *UserService) Profile(ctx context.Context, identity *models.Identity) (*models.Profile, error) {
	if identity == nil {
		return nil, domain.Unauthorized("authentication required")
	}
	profile, err := s.users.GetProfile(ctx, identity.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("profile not found")
	}
	if err != nil {
		return nil, s.storeFailure("get profile", err)
	}
	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, identity *models.Identity, update models.ProfileUpdate) (*models.Profile, error) {
	if identity == nil {
		return nil, domain.Unauthorized("authentication required")
	}

	update.FullName = strings.TrimSpace(update.FullName)
	update.StudentNumber = strings.TrimSpace(update.StudentNumber)
	update.Year = strings.TrimSpace(update.Year)
	update.Course = strings.TrimSpace(update.Course)
	update.PhoneNumber = strings.TrimSpace(update.PhoneNumber)
	if update.FullName == "" {
		return nil, domain.Validation("fullName", "fullName is required")
	}

	profile, err := s.users.UpdateProfile(ctx, identity.UserID, update)
	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, database.ErrNotFound):
		return nil, domain.NotFound("profile not found")
	case errors.Is(err, database.ErrDuplicate):
		return nil, domain.Conflict("student number already registered", nil)
	default:
		return nil, s.storeFailure("update profile", err)
	}
}
