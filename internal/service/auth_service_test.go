package service

import (
	"testing"

	"rentautopro/internal/db"
	apperrors "rentautopro/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginIssuesTokenWithClaims(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	users := newFakeUserRepo()
	hash, err := hashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, users.Create(&db.User{
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         db.RoleAdmin,
	}))

	svc := NewAuthService(users)
	token, user, err := svc.Login("admin@example.com", "secret123")
	require.NoError(t, err)
	require.NotNil(t, user)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, db.RoleAdmin, claims["role"])
}

func TestLoginRejectsUnknownEmailAndWrongPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	users := newFakeUserRepo()
	hash, err := hashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, users.Create(&db.User{
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         db.RoleAdmin,
	}))

	svc := NewAuthService(users)

	_, _, err = svc.Login("nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterCreatesCustomerAndLogsIn(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	users := newFakeUserRepo()
	svc := NewAuthService(users)

	token, user, err := svc.Register(RegisterInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NotNil(t, user)
	assert.Equal(t, db.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	// The new credentials work immediately.
	_, again, err := svc.Login("jane@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestRegisterRejectsDuplicateEmailAndShortPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	users := newFakeUserRepo()
	svc := NewAuthService(users)

	_, _, err := svc.Register(RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, _, err = svc.Register(RegisterInput{Name: "Other", Email: "jane@example.com", Password: "secret123"})
	var httpErr *apperrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 422, httpErr.Code)

	_, _, err = svc.Register(RegisterInput{Name: "Short", Email: "short@example.com", Password: "pw"})
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 422, httpErr.Code)
}
