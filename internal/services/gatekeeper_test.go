package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestGatekeeper_Authorize(t *testing.T) {
	caller := &identity.Identity{UID: "uid-1", DisplayName: "Ada", Email: "ada@example.com"}

	tests := []struct {
		name       string
		setupMocks func(*MockRoleRepository)
		check      func(*testing.T, error)
	}{
		{
			name: "granted when record exists with matching marker",
			setupMocks: func(roleRepo *MockRoleRepository) {
				roleRepo.On("Get", mock.Anything, "uid-1", models.RoleTeacher).Return(
					&models.RoleRecord{UID: "uid-1", Role: models.RoleTeacher, Marker: "uid-1"}, nil)
			},
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "denied when record is absent",
			setupMocks: func(roleRepo *MockRoleRepository) {
				roleRepo.On("Get", mock.Anything, "uid-1", models.RoleTeacher).Return(
					nil, gorm.ErrRecordNotFound)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, IsDenied(err))
				assert.False(t, IsAuthorizationError(err))
			},
		},
		{
			name: "denied when marker does not match caller",
			setupMocks: func(roleRepo *MockRoleRepository) {
				roleRepo.On("Get", mock.Anything, "uid-1", models.RoleTeacher).Return(
					&models.RoleRecord{UID: "uid-1", Role: models.RoleTeacher, Marker: "uid-2"}, nil)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, IsDenied(err))
				var denied *DeniedError
				assert.ErrorAs(t, err, &denied)
				assert.Equal(t, "uid-1", denied.UID)
			},
		},
		{
			name: "store failure is not a denial",
			setupMocks: func(roleRepo *MockRoleRepository) {
				roleRepo.On("Get", mock.Anything, "uid-1", models.RoleTeacher).Return(
					nil, errors.New("connection refused"))
			},
			check: func(t *testing.T, err error) {
				assert.True(t, IsAuthorizationError(err))
				assert.False(t, IsDenied(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := newMockRepository()
			tt.setupMocks(mockRepo.roleRepo)

			gatekeeper := NewGatekeeperService(mockRepo, testLogger())
			err := gatekeeper.Authorize(context.Background(), caller, models.RoleTeacher)

			tt.check(t, err)
			mockRepo.roleRepo.AssertExpectations(t)
		})
	}
}

func TestGatekeeper_Grant(t *testing.T) {
	admin := &identity.Identity{UID: "admin-1"}

	t.Run("admin grants a role with the grantee's own marker", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.roleRepo.On("Get", mock.Anything, "admin-1", models.RoleAdmin).Return(
			&models.RoleRecord{UID: "admin-1", Role: models.RoleAdmin, Marker: "admin-1"}, nil)
		mockRepo.roleRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(r *models.RoleRecord) bool {
			return r.UID == "uid-9" && r.Role == models.RoleTeacher &&
				r.Marker == "uid-9" && r.GrantedBy == "admin-1"
		})).Return(nil)

		gatekeeper := NewGatekeeperService(mockRepo, testLogger())
		err := gatekeeper.Grant(context.Background(), admin, "uid-9", models.RoleTeacher)

		assert.NoError(t, err)
		mockRepo.roleRepo.AssertExpectations(t)
	})

	t.Run("non-admin cannot grant", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.roleRepo.On("Get", mock.Anything, "admin-1", models.RoleAdmin).Return(
			nil, gorm.ErrRecordNotFound)

		gatekeeper := NewGatekeeperService(mockRepo, testLogger())
		err := gatekeeper.Grant(context.Background(), admin, "uid-9", models.RoleTeacher)

		assert.True(t, IsDenied(err))
		mockRepo.roleRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("upsert failure surfaces as store error", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.roleRepo.On("Get", mock.Anything, "admin-1", models.RoleAdmin).Return(
			&models.RoleRecord{UID: "admin-1", Role: models.RoleAdmin, Marker: "admin-1"}, nil)
		mockRepo.roleRepo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("write failed"))

		gatekeeper := NewGatekeeperService(mockRepo, testLogger())
		err := gatekeeper.Grant(context.Background(), admin, "uid-9", models.RoleTeacher)

		assert.True(t, IsStoreUnavailable(err))
	})
}
