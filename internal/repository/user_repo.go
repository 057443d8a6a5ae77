package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"rentautopro/internal/db"
)

type UserRepository interface {
	List() ([]db.User, error)
	GetByID(id string) (*db.User, error)
	GetByEmail(email string) (*db.User, error)
	Create(u *db.User) error
	Update(u *db.User) error
	Delete(id string) error
	EmailExists(email, excludeUserID string) (bool, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(conn *sql.DB) UserRepository {
	return &userRepository{db: conn}
}

const userSelect = `
	SELECT id, name, email, password_hash, role, first_name, last_name, phone, created_at, updated_at
	FROM users`

func scanUser(s interface{ Scan(...interface{}) error }, u *db.User) error {
	return s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepository) List() ([]db.User, error) {
	rows, err := r.db.Query(userSelect + ` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	var users []db.User
	for rows.Next() {
		var u db.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating users: %w", err)
	}
	return users, nil
}

func (r *userRepository) GetByID(id string) (*db.User, error) {
	var u db.User
	err := scanUser(r.db.QueryRow(userSelect+` WHERE id = $1`, id), &u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(email string) (*db.User, error) {
	var u db.User
	err := scanUser(r.db.QueryRow(userSelect+` WHERE email = $1`, email), &u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}
	return &u, nil
}

func (r *userRepository) Create(u *db.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role, first_name, last_name, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(query,
		u.Name, u.Email, u.PasswordHash, u.Role, u.FirstName, u.LastName, u.Phone,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepository) Update(u *db.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, role = $5,
		    first_name = $6, last_name = $7, phone = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRow(query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.FirstName, u.LastName, u.Phone,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %s not found", u.ID)
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *userRepository) EmailExists(email, excludeUserID string) (bool, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(1) FROM users WHERE email = $1 AND id::text <> $2`,
		email, excludeUserID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return n > 0, nil
}
