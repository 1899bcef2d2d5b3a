package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/config"
	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/aDolgosheev/bank-card-management/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles signup and token issuance.
type AuthService struct {
	store  repository.Store
	log    *logrus.Logger
	config *config.Config
}

// NewAuthService initializes a new auth service
func NewAuthService(store repository.Store, log *logrus.Logger, cfg *config.Config) *AuthService {
	return &AuthService{store: store, log: log, config: cfg}
}

// Register creates a new user with a hashed password and the default role
func (s *AuthService) Register(ctx context.Context, email, firstName, lastName, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hashedPassword),
		Roles:        []models.Role{models.RoleUser},
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a signed JWT. The token subject is
// the user's email; roles travel in a claim so the HTTP layer can route
// admin-only endpoints without a lookup.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, string(r))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.Email,
		"roles": roles,
		"exp":   jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}
