// Package service contains server-side business logic over the repository
// and blob-store interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/fileshare/internal/common"
	"github.com/avolkov/fileshare/internal/server/auth"
	"github.com/avolkov/fileshare/internal/server/config"
	"github.com/avolkov/fileshare/internal/server/models"
	"github.com/avolkov/fileshare/internal/server/repository"
)

// UserService handles registration, login, and the second factor.
type UserService struct {
	users         repository.Users
	jwtSecret     []byte
	tokenValidity time.Duration

	// now is a seam for TOTP validation in tests.
	now func() time.Time
}

func NewUserService(users repository.Users, cfg *config.Config) *UserService {
	return &UserService{
		users:         users,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.Token.Validity,
		now:           time.Now,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}

// Login verifies credentials and mints an access token. Accounts with the
// second factor enabled additionally require a valid one-time code;
// a missing or wrong code yields ErrSecondFactorRequired.
func (s *UserService) Login(ctx context.Context, login, password, otpCode string) (*models.User, string, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, "", common.ErrorUnauthorized
	}

	if user.OTPEnabled {
		if otpCode == "" || !auth.ValidateCode(user.OTPSecret, otpCode, s.now()) {
			return nil, "", common.ErrSecondFactorRequired
		}
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return user, token, nil
}

// GetByID loads an account, for token validation.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// EnableOTP generates and persists a TOTP secret for the user and returns
// it for enrollment in an authenticator app.
func (s *UserService) EnableOTP(ctx context.Context, userID int64) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	secret, err := auth.NewTOTPSecret(user.Username)
	if err != nil {
		return "", err
	}
	user.OTPSecret = secret
	user.OTPEnabled = true
	if err := s.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("error saving otp secret: %w", err)
	}
	return secret, nil
}
