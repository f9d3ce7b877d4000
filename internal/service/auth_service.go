package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"pos-service/internal/entity"
)

const tokenTTL = 24 * time.Hour

type OperatorStore interface {
	GetOperatorByUsername(ctx context.Context, username string) (*entity.Operator, error)
}

// OperatorClaims are carried by every token issued at login.
type OperatorClaims struct {
	OperatorID int    `json:"operator_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	repo   OperatorStore
	secret []byte
}

func NewAuthService(repo OperatorStore, secret string) *AuthService {
	return &AuthService{repo: repo, secret: []byte(secret)}
}

// Login checks the operator's credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", entity.ErrInvalidCredentials
	}

	op, err := s.repo.GetOperatorByUsername(ctx, username)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting operator %s", username)
		return "", err
	}
	if op == nil || !op.IsActive {
		logger.Warn().Msgf("Login rejected for %s: unknown or inactive", username)
		return "", entity.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Error().Err(err).Msgf("Stored hash for %s is unusable", username)
		}
		return "", entity.ErrInvalidCredentials
	}

	now := time.Now()
	claims := &OperatorClaims{
		OperatorID: op.ID,
		Name:       op.Name,
		Role:       op.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(op.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}
