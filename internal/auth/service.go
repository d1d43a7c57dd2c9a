package auth

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/mkorchagin/docforge/internal/config"
	"github.com/mkorchagin/docforge/internal/database"
	"github.com/mkorchagin/docforge/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
)

// Service handles user management and API token authentication.
type Service struct {
	db     *database.Database
	config config.Auth
}

func NewService(db *database.Database, cfg config.Auth) *Service {
	return &Service{db: db, config: cfg}
}

// CreateUser registers a new user and issues their API token. The plaintext
// token is returned once and never stored.
func (s *Service) CreateUser(username, password string) (*entities.User, string, error) {
	if username == "" {
		return nil, "", ErrUsernameRequired
	}
	if password == "" {
		return nil, "", ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, "", ErrUsernameInvalid
	}

	_, err := s.db.GetUserByUsername(username)
	if err == nil {
		return nil, "", ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, "", err
	}

	token, tokenHash, err := GenerateAPIToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
		TokenHash:    tokenHash,
	}
	if err := s.db.CreateUser(user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	return user, token, nil
}

// Login verifies the password and rotates the user's API token. The previous
// token stops working.
func (s *Service) Login(username, password string) (*entities.User, string, error) {
	user, err := s.db.GetUserByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", err
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, "", err
	}

	token, tokenHash, err := GenerateAPIToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	user.TokenHash = tokenHash
	if err := s.db.SaveUser(user); err != nil {
		return nil, "", fmt.Errorf("failed to rotate token: %w", err)
	}

	return user, token, nil
}

// Authenticate resolves an API token to its user.
func (s *Service) Authenticate(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.db.GetUserByTokenHash(HashToken(token))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
