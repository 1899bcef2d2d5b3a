package service

import (
	"context"
	"fmt"

	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/aDolgosheev/bank-card-management/internal/repository"
	"github.com/sirupsen/logrus"
)

// UserService handles user lookups and user-level access checks.
type UserService struct {
	store repository.Store
	log   *logrus.Logger
}

// NewUserService initializes a new user service
func NewUserService(store repository.Store, log *logrus.Logger) *UserService {
	return &UserService{store: store, log: log}
}

// GetAllUsers returns users ordered by id
func (s *UserService) GetAllUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.store.ListUsers(ctx, limit, offset)
}

// GetUserByID returns the user with the given id
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// GetUserByEmail returns the user with the given email
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.store.GetUserByEmail(ctx, email)
}

// DeleteUser removes the user with the given id
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.Infof("User deleted: %d", id)
	return nil
}

// ValidateUserAccess checks that the principal identified by email may act on
// the user with the given id: either it is the same user or an administrator.
func (s *UserService) ValidateUserAccess(ctx context.Context, principalEmail string, userID int64) error {
	current, err := s.store.GetUserByEmail(ctx, principalEmail)
	if err != nil {
		return err
	}
	if current.ID != userID && !current.IsAdmin() {
		return fmt.Errorf("no access to user data with id %d: %w", userID, ErrAccessDenied)
	}
	return nil
}

// EnsureAdmin checks that the principal identified by email holds the
// administrator role.
func (s *UserService) EnsureAdmin(ctx context.Context, principalEmail string) error {
	current, err := s.store.GetUserByEmail(ctx, principalEmail)
	if err != nil {
		return err
	}
	if !current.IsAdmin() {
		return fmt.Errorf("administrator role required: %w", ErrAccessDenied)
	}
	return nil
}
