package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/models"
	"taskboard/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthService interface {
	// Login verifies username and password and returns the matching user.
	Login(ctx context.Context, username, password string) (*models.User, error)
}

type AuthServiceImpl struct {
	store store.Store
}

func NewAuthService(st store.Store) *AuthServiceImpl {
	return &AuthServiceImpl{store: st}
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func HashPassword(plainPassword string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainPassword), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
