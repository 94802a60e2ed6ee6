package services

import (
	"context"
	"log/slog"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
)

// GatekeeperService decides whether the current identity may act in a
// given role. It is consulted before every mutating operation.
type GatekeeperService interface {
	// Authorize returns nil when the caller holds the required role. A
	// *DeniedError means the caller must be deauthenticated and the
	// operation aborted; an *AuthorizationError means the check itself
	// failed against the backend and should be reported to an operator.
	Authorize(ctx context.Context, caller *identity.Identity, role models.UserRole) error

	// Grant records a role for a user. Only admins may grant roles.
	Grant(ctx context.Context, grantor *identity.Identity, uid string, role models.UserRole) error
}

type gatekeeperService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewGatekeeperService(repo repositories.Repository, logger *slog.Logger) GatekeeperService {
	return &gatekeeperService{
		repo:   repo,
		logger: logger,
	}
}

// Authorize looks up the role record keyed by the identity provider's
// stable UID and compares its embedded marker against the caller's
// authenticated identity. Absence or any mismatch is a denial, never a
// silent downgrade to a lower privilege.
func (s *gatekeeperService) Authorize(ctx context.Context, caller *identity.Identity, role models.UserRole) error {
	record, err := s.repo.Role().Get(ctx, caller.UID, role)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Warn("Role record not found",
				"uid", caller.UID,
				"role", role)
			return NewDeniedError(caller.UID, string(role), "no role record")
		}
		// A backend failure is a configuration problem, not a denial.
		s.logger.Error("Role lookup failed",
			"uid", caller.UID,
			"role", role,
			"error", err)
		return NewAuthorizationError(err)
	}

	if record.Marker != caller.UID {
		s.logger.Warn("Role marker mismatch",
			"uid", caller.UID,
			"role", role,
			"marker", record.Marker)
		return NewDeniedError(caller.UID, string(role), "identity marker mismatch")
	}

	return nil
}

func (s *gatekeeperService) Grant(ctx context.Context, grantor *identity.Identity, uid string, role models.UserRole) error {
	if err := s.Authorize(ctx, grantor, models.RoleAdmin); err != nil {
		return err
	}

	record := &models.RoleRecord{
		UID:       uid,
		Role:      role,
		Marker:    uid,
		GrantedBy: grantor.UID,
	}
	if err := s.repo.Role().Upsert(ctx, record); err != nil {
		return NewStoreError(err)
	}

	s.logger.Info("Role granted", "uid", uid, "role", role, "granted_by", grantor.UID)
	return nil
}
