package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/models"
)

// AuthRepository defines the interface for user account database operations.
type AuthRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error)
	FindUserByEmail(email string) (*models.User, string, error) // Returns User, HashedPassword, Error
	FindUserByID(userID int64) (*models.User, error)
	GetPasswordHashByID(userID int64) (string, error)
	UpdatePassword(executor SQLExecutor, userID int64, hashedPassword string) error
	UpdateUserStatus(executor SQLExecutor, userID int64, isActive bool) error
	UpdateLastLogin(executor SQLExecutor, userID int64, at time.Time) error
	ListUsers() ([]models.User, error)
	CountUsers() (int, error)
}

// authRepository implements the AuthRepository interface.
type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, phone, role, position, is_active, last_login, created_at, updated_at`

func scanUser(s scanner, extra ...interface{}) (*models.User, error) {
	user := &models.User{}
	var phone, position sql.NullString
	var lastLogin sql.NullTime
	dest := []interface{}{
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &phone,
		&user.Role, &position, &user.IsActive, &lastLogin, &user.CreatedAt, &user.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	user.Phone = stringPtr(phone)
	user.Position = stringPtr(position)
	user.LastLogin = timePtr(lastLogin)
	return user, nil
}

// CreateUser inserts a new user. Email is stored lower-cased.
func (r *authRepository) CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	query := `INSERT INTO users (first_name, last_name, email, phone, password_hash, role, position, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	          RETURNING id`

	now := time.Now()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt, user.UpdatedAt = now, now

	err := executor.QueryRow(query,
		user.FirstName, user.LastName, user.Email, nullString(user.Phone), hashedPassword,
		string(user.Role), nullString(user.Position), user.IsActive, now,
	).Scan(&user.ID)
	if err != nil {
		return 0, translatePQError(err, "creating user")
	}
	return user.ID, nil
}

// FindUserByEmail retrieves a user together with their password hash.
func (r *authRepository) FindUserByEmail(email string) (*models.User, string, error) {
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE email = $1`

	var hash string
	user, err := scanUser(r.db.QueryRow(query, strings.ToLower(strings.TrimSpace(email))), &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: finding user by email: %v", ErrDatabaseError, err)
	}
	user.PasswordHash = hash
	return user, hash, nil
}

// FindUserByID retrieves a user by their ID.
func (r *authRepository) FindUserByID(userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}

// GetPasswordHashByID returns the stored bcrypt hash for a user.
func (r *authRepository) GetPasswordHashByID(userID int64) (string, error) {
	var hash string
	err := r.db.QueryRow(`SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: getting password hash for user %d: %v", ErrDatabaseError, userID, err)
	}
	return hash, nil
}

// UpdatePassword replaces the password hash of a user.
func (r *authRepository) UpdatePassword(executor SQLExecutor, userID int64, hashedPassword string) error {
	result, err := executor.Exec(`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		hashedPassword, time.Now(), userID)
	if err != nil {
		return translatePQError(err, "updating password")
	}
	return checkRowsAffected(result, "updating password")
}

// UpdateUserStatus activates or deactivates an account.
func (r *authRepository) UpdateUserStatus(executor SQLExecutor, userID int64, isActive bool) error {
	result, err := executor.Exec(`UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`,
		isActive, time.Now(), userID)
	if err != nil {
		return translatePQError(err, "updating user status")
	}
	return checkRowsAffected(result, "updating user status")
}

// UpdateLastLogin records a successful login.
func (r *authRepository) UpdateLastLogin(executor SQLExecutor, userID int64, at time.Time) error {
	result, err := executor.Exec(`UPDATE users SET last_login = $1 WHERE id = $2`, at, userID)
	if err != nil {
		return translatePQError(err, "updating last login")
	}
	return checkRowsAffected(result, "updating last login")
}

// ListUsers returns every account ordered by name.
func (r *authRepository) ListUsers() ([]models.User, error) {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY last_name ASC, first_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, nil
}

// CountUsers returns the number of accounts.
func (r *authRepository) CountUsers() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting users: %v", ErrDatabaseError, err)
	}
	return n, nil
}
