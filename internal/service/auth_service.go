package service

import (
	"errors"
	"os"
	"time"

	"rentautopro/internal/db"
	apperrors "rentautopro/internal/errors"
	"rentautopro/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so login failures are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Login(email, password string) (string, *db.User, error)
	Register(in RegisterInput) (string, *db.User, error)
}

// RegisterInput is the self-service signup payload. The role is always
// customer; staff accounts are created through the admin user endpoints.
type RegisterInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type authService struct {
	repo     repository.UserRepository
	tokenTTL time.Duration
}

func NewAuthService(repo repository.UserRepository) AuthService {
	return &authService{repo: repo, tokenTTL: 24 * time.Hour}
}

func (s *authService) Login(email, password string) (string, *db.User, error) {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	signed, err := s.signToken(user)
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}

func (s *authService) Register(in RegisterInput) (string, *db.User, error) {
	input := UserInput{
		Name:      in.Name,
		Email:     in.Email,
		Password:  in.Password,
		Role:      db.RoleCustomer,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	}
	if fields := validateUserInput(input, true); len(fields) > 0 {
		return "", nil, apperrors.NewValidation(fields)
	}

	taken, err := s.repo.EmailExists(in.Email, "")
	if err != nil {
		return "", nil, err
	}
	if taken {
		return "", nil, apperrors.NewValidation(map[string]string{"email": "email is already in use"})
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return "", nil, err
	}

	user := &db.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         db.RoleCustomer,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
	}
	if err := s.repo.Create(user); err != nil {
		return "", nil, err
	}

	signed, err := s.signToken(user)
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}

func (s *authService) signToken(user *db.User) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET not set")
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
