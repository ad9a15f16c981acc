package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"ajuda-api/internal/models"
	"ajuda-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

var (
	ErrOperadorExists     = errors.New("operator already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.Operador, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error)
}

type authService struct {
	repo      repository.OperadorRepository
	logger    *zap.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(repo repository.OperadorRepository, jwtSecret []byte, tokenTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates the bootstrap operator account. Only one operator may be
// registered through the API; further accounts are an operations task.
func (s *authService) Register(ctx context.Context, username, password string) (*models.Operador, error) {
	count, err := s.repo.CountOperadores(ctx)
	if err != nil {
		s.logger.Error("Failed to count operators", zap.Error(err))
		return nil, fmt.Errorf("failed to check existing operators: %w", err)
	}
	if count > 0 {
		return nil, ErrOperadorExists
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	operador := &models.Operador{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := s.repo.CreateOperador(ctx, operador); err != nil {
		s.logger.Error("Failed to create operator", zap.Error(err))
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}
	return operador, nil
}

// Login verifies the credentials and issues a signed JWT.
func (s *authService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	operador, err := s.repo.GetOperadorByUsername(ctx, username)
	if err != nil {
		s.logger.Error("Failed to get operator by username", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to retrieve operator: %w", err)
	}
	if operador == nil || !s.verifyPassword(operador.PasswordHash, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	claims := &models.Claims{
		Username: operador.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// hashPassword derives an argon2id hash, encoded as base64(salt)$base64(hash).
func (s *authService) hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.RawStdEncoding.EncodeToString(salt) + "$" + base64.RawStdEncoding.EncodeToString(hash), nil
}

func (s *authService) verifyPassword(encoded, password string) bool {
	parts := strings.SplitN(encoded, "$", 2)
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(got, want) == 1
}
