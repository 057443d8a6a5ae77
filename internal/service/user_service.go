package service

import (
	"database/sql"
	"errors"

	"rentautopro/internal/db"
	apperrors "rentautopro/internal/errors"
	"rentautopro/internal/repository"
)

var validRoles = map[string]bool{
	db.RoleAdmin:        true,
	db.RoleFleetManager: true,
	db.RoleCustomer:     true,
	db.RoleMechanic:     true,
	db.RoleAccounting:   true,
}

type UserInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) ListUsers() ([]db.User, error) {
	return s.repo.List()
}

func (s *UserService) GetUser(id string) (*db.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFound("user not found")
	}
	return user, nil
}

func (s *UserService) CreateUser(in UserInput) (*db.User, error) {
	if fields := validateUserInput(in, true); len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	taken, err := s.repo.EmailExists(in.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewValidation(map[string]string{"email": "email is already in use"})
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &db.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(id string, in UserInput) (*db.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if fields := validateUserInput(in, false); len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	taken, err := s.repo.EmailExists(in.Email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewValidation(map[string]string{"email": "email is already in use"})
	}

	user.Name = in.Name
	user.Email = in.Email
	user.Role = in.Role
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Phone = in.Phone
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(id string) error {
	err := s.repo.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound("user not found")
	}
	return err
}

// validateUserInput checks required fields; the password is only mandatory
// on create, an empty one on update keeps the current hash.
func validateUserInput(in UserInput, requirePassword bool) map[string]string {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "name is required"
	}
	if in.Email == "" {
		fields["email"] = "email is required"
	}
	if requirePassword && in.Password == "" {
		fields["password"] = "password is required"
	}
	if in.Password != "" && len(in.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if !validRoles[in.Role] {
		fields["role"] = "role is invalid"
	}
	return fields
}
