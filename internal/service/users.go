package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rewards-optimizer-go/internal/models"
	"rewards-optimizer-go/internal/storage"
)

// Register creates an account with a bcrypt password hash and a fresh public UUID.
func (s *RewardsService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidUser)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		UUID:         uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate checks a username or email against the stored hash.
func (s *RewardsService) Authenticate(ctx context.Context, identifier, password string) (models.User, error) {
	user, err := s.store.GetUserByLogin(ctx, strings.TrimSpace(identifier))
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, ErrBadCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrBadCredentials
	}
	return user, nil
}

func (s *RewardsService) UserByUUID(ctx context.Context, id string) (models.User, error) {
	return s.store.GetUserByUUID(ctx, id)
}

func (s *RewardsService) UserByLogin(ctx context.Context, identifier string) (models.User, error) {
	return s.store.GetUserByLogin(ctx, identifier)
}
