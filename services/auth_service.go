//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"fmt"
	"log/slog"

	"talksy/auth"
	"talksy/domain"
	"talksy/errors"
	"talksy/repositories"
	"talksy/storage"
)

type IAuthService interface {
	Signup(req auth.SignupRequest) (domain.User, string, error)
	Login(email, password string) (domain.User, string, error)
	CheckAuth(userID string) (domain.User, error)
	UpdateProfile(userID, fullName, avatarDataURL string) (domain.User, error)
	SearchUsers(query, selfID string) ([]domain.User, error)
}

type AuthService struct {
	users  repositories.IUserRepository
	media  *storage.MediaStore
	tokens *auth.Tokens
	log    *slog.Logger
}

func NewAuthService(
	users repositories.IUserRepository,
	media *storage.MediaStore,
	tokens *auth.Tokens,
	log *slog.Logger,
) IAuthService {
	return &AuthService{users: users, media: media, tokens: tokens, log: log}
}

func (s *AuthService) Signup(req auth.SignupRequest) (domain.User, string, error) {
	// Business rules first, before any expensive cryptographic operation.
	if err := auth.ValidateSignup(req); err != nil {
		return domain.User{}, "", err
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.users.CreateUser(req.FullName, req.Email, hashedPassword)
	if err != nil {
		return domain.User{}, "", err // propagates ErrUserAlreadyExists
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return domain.User{}, "", errors.ErrTokenGeneration
	}

	s.log.Info("user signed up", "user_id", user.ID)
	return user, token, nil
}

func (s *AuthService) Login(email, password string) (domain.User, string, error) {
	stored, err := s.users.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, stored.PasswordHash)
	if err != nil || !match {
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(stored.ID)
	if err != nil {
		return domain.User{}, "", errors.ErrTokenGeneration
	}
	return stored.ToDomain(), token, nil
}

func (s *AuthService) CheckAuth(userID string) (domain.User, error) {
	return s.users.GetUserByID(userID)
}

// UpdateProfile saves a new avatar when one is supplied as a data URL and
// patches the display name. Either field may be empty.
func (s *AuthService) UpdateProfile(userID, fullName, avatarDataURL string) (domain.User, error) {
	avatarURL := ""
	if avatarDataURL != "" {
		url, err := s.media.SaveImage(avatarDataURL)
		if err != nil {
			return domain.User{}, err
		}
		avatarURL = url
	}
	return s.users.UpdateUser(userID, fullName, avatarURL)
}

func (s *AuthService) SearchUsers(query, selfID string) ([]domain.User, error) {
	if query == "" {
		return nil, nil
	}
	return s.users.SearchUsers(query, selfID)
}
