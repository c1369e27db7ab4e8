package user

import (
	"context"
	"errors"
	"strings"

	"topupin-be/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

type Service interface {
	Register(ctx context.Context, email, password string) (*Account, error)
	Login(ctx context.Context, email, password string) (string, *Account, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, email, password string) (*Account, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	account, err := s.repo.Create(ctx, email, hash, RoleUser)
	if err != nil {
		return nil, err
	}

	log.Info("account registered", zap.Uint("account_id", account.ID))
	return account, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !CheckPasswordHash(password, account.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(account.ID, account.Role, account.Email)
	if err != nil {
		return "", nil, err
	}

	return token, account, nil
}
