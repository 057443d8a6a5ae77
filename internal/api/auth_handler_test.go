package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rentautopro/internal/db"
	"rentautopro/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	token string
	user  *db.User
	err   error
}

func (s *stubAuthService) Login(email, password string) (string, *db.User, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return s.token, s.user, nil
}

func (s *stubAuthService) Register(in service.RegisterInput) (string, *db.User, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return s.token, s.user, nil
}

func TestLoginReturnsTokenAndUser(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{
		token: "signed.jwt.token",
		user:  &db.User{ID: "usr-1", Email: "admin@example.com", Role: db.RoleAdmin},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"secret123"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "signed.jwt.token", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "usr-1", resp.User.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{err: service.ErrInvalidCredentials})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterReturnsTokenAndCreatedStatus(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{
		token: "signed.jwt.token",
		user:  &db.User{ID: "usr-2", Email: "jane@example.com", Role: db.RoleCustomer},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"Jane Doe","email":"jane@example.com","password":"secret123"}`))
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "signed.jwt.token", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, db.RoleCustomer, resp.User.Role)
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
