package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"pos-service/internal/entity"
)

const testSecret = "test-secret"

type fakeOperators map[string]*entity.Operator

func (f fakeOperators) GetOperatorByUsername(ctx context.Context, username string) (*entity.Operator, error) {
	if username == "broken" {
		return nil, entity.ErrUnavailable
	}
	return f[username], nil
}

func newOperators(t *testing.T) fakeOperators {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	return fakeOperators{
		"admin":   {ID: 1, Username: "admin", PasswordHash: string(hash), Name: "Store Administrator", Role: entity.RoleAdmin, IsActive: true},
		"retired": {ID: 2, Username: "retired", PasswordHash: string(hash), Name: "Old Cashier", Role: entity.RoleCashier},
	}
}

func TestLoginIssuesOperatorToken(t *testing.T) {
	svc := NewAuthService(newOperators(t), testSecret)

	signed, err := svc.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	claims := &OperatorClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, 1, claims.OperatorID)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
	assert.Equal(t, "1", claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(newOperators(t), testSecret)
	ctx := context.Background()

	tests := []struct {
		name, username, password string
	}{
		{"wrong password", "admin", "nope"},
		{"unknown operator", "ghost", "admin123"},
		{"inactive operator", "retired", "admin123"},
		{"empty password", "admin", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
		})
	}
}

func TestLoginStoreFailure(t *testing.T) {
	svc := NewAuthService(newOperators(t), testSecret)

	_, err := svc.Login(context.Background(), "broken", "admin123")

	assert.True(t, errors.Is(err, entity.ErrUnavailable))
}
