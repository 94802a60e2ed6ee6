package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/stretchr/testify/mock"
)

func TestProfileService_Touch(t *testing.T) {
	caller := &identity.Identity{UID: "uid-1", DisplayName: "Ada Lovelace", Email: "ada@example.com"}

	t.Run("mirrors the caller into the user store", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.userRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.ID == "uid-1" &&
				u.FullName == "Ada Lovelace" &&
				u.Email == "ada@example.com" &&
				u.LastLoginAt != nil
		})).Return(nil)

		svc := NewProfileService(mockRepo, testLogger())
		svc.Touch(context.Background(), caller)

		mockRepo.userRepo.AssertExpectations(t)
	})

	t.Run("store failure is logged, not propagated", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.userRepo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		svc := NewProfileService(mockRepo, testLogger())
		svc.Touch(context.Background(), caller)

		mockRepo.userRepo.AssertExpectations(t)
	})
}
