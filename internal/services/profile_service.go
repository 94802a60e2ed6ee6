package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
)

// ProfileService mirrors resolved identities into the user store so
// submissions and role grants can be joined back to a profile.
type ProfileService interface {
	// Touch records the caller's profile and login time. Best-effort:
	// failures are logged and never block the request.
	Touch(ctx context.Context, caller *identity.Identity)
}

type profileService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewProfileService(repo repositories.Repository, logger *slog.Logger) ProfileService {
	return &profileService{repo: repo, logger: logger}
}

func (s *profileService) Touch(ctx context.Context, caller *identity.Identity) {
	now := time.Now()
	user := &models.User{
		ID:          caller.UID,
		FullName:    caller.DisplayName,
		Email:       caller.Email,
		IsActive:    true,
		LastLoginAt: &now,
	}

	if err := s.repo.User().Upsert(ctx, user); err != nil {
		s.logger.Warn("Failed to record user profile",
			"uid", caller.UID,
			"error", err)
	}
}
