package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/models"
	"expense-tracker/internal/repository"
	"expense-tracker/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minPasswordLength = 6
	maxFullNameLength = 200
)

type AuthService struct {
	userRepo   UserStore
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

func NewAuthService(userRepo UserStore, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if len(email) < 3 || !strings.Contains(email, "@") {
		return nil, invalid("a valid email is required")
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		return nil, invalid("email must be at most %d characters", maxEmailLength)
	}
	fullName := strings.TrimSpace(sanitizeUTF8(req.FullName))
	if len([]rune(fullName)) > maxFullNameLength {
		return nil, invalid("full name must be at most %d characters", maxFullNameLength)
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	// Check if user exists
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrUserExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// GetUser loads the account behind a token subject.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*dto.TokenResponse, error) {
	token, err := s.jwtManager.GenerateToken(user.ID.String(), user.Email, user.FullName)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{Token: token}, nil
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLength {
		return invalid("password must be at least %d characters", minPasswordLength)
	}
	for _, r := range pw {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return nil
		}
	}
	return invalid("password must contain at least one non-alphanumeric character")
}
