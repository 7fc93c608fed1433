package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is deactivated, please contact an administrator")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterUserRequest DTO
type RegisterUserRequest struct {
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=6"`
	Phone     *string `json:"phone"`
	Role      string  `json:"role" binding:"omitempty,user_role"`
	Position  *string `json:"position"`
}

// ChangePasswordRequest DTO
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// UpdateUserStatusRequest DTO
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// AuthResponse DTO
type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
}

// AuthService covers accounts, login and password management.
type AuthService interface {
	RegisterUser(req RegisterUserRequest) (*models.User, error)
	LoginUser(req LoginRequest) (*AuthResponse, error)
	GetUserProfile(userID int64) (*models.User, error)
	ChangePassword(userID int64, req ChangePasswordRequest) error
	ListUsers() ([]models.User, error)
	UpdateUserStatus(userID int64, isActive bool) (*models.User, error)
	EnsureAdmin(email, password, firstName, lastName string) (bool, error)
}

type authService struct {
	authRepo   repositories.AuthRepository
	tx         repositories.Transactor
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, tx repositories.Transactor, bcryptCost int) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{authRepo: authRepo, tx: tx, bcryptCost: bcryptCost, now: time.Now}
}

func (s *authService) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// RegisterUser creates an account. Role defaults to receptionist.
func (s *authService) RegisterUser(req RegisterUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, _, err := s.authRepo.FindUserByEmail(email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	role := models.RoleReceptionist
	if req.Role != "" {
		if !models.IsValidUserRole(req.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
		}
		role = models.UserRole(req.Role)
	}

	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Phone:     req.Phone,
		Role:      role,
		Position:  req.Position,
		IsActive:  true,
	}
	err = s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		_, err := s.authRepo.CreateUser(tx, user, hashed)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// LoginUser verifies credentials and issues an access token.
func (s *authService) LoginUser(req LoginRequest) (*AuthResponse, error) {
	user, hash, err := s.authRepo.FindUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateAccessToken(user.ID, string(user.Role), user.Email, user.FullName())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	now := s.now()
	err = s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		return s.authRepo.UpdateLastLogin(tx, user.ID, now)
	})
	if err != nil {
		utils.LogError(err, "LoginUser: failed to record last login", map[string]interface{}{"user_id": user.ID})
	} else {
		user.LastLogin = &now
	}

	return &AuthResponse{User: user, AccessToken: token, TokenType: "Bearer"}, nil
}

// GetUserProfile returns the account behind a token.
func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		return nil, mapRepoError(err, ErrUserNotFound)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *authService) ChangePassword(userID int64, req ChangePasswordRequest) error {
	hash, err := s.authRepo.GetPasswordHashByID(userID)
	if err != nil {
		return mapRepoError(err, ErrUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}
	newHash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	err = s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		return s.authRepo.UpdatePassword(tx, userID, newHash)
	})
	return mapRepoError(err, ErrUserNotFound)
}

// ListUsers returns every account.
func (s *authService) ListUsers() ([]models.User, error) {
	return s.authRepo.ListUsers()
}

// UpdateUserStatus activates or deactivates an account.
func (s *authService) UpdateUserStatus(userID int64, isActive bool) (*models.User, error) {
	err := s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		return s.authRepo.UpdateUserStatus(tx, userID, isActive)
	})
	if err != nil {
		return nil, mapRepoError(err, ErrUserNotFound)
	}
	return s.GetUserProfile(userID)
}

// EnsureAdmin creates the first admin account when no users exist yet. It
// reports whether an account was created.
func (s *authService) EnsureAdmin(email, password, firstName, lastName string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := s.authRepo.CountUsers()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	_, err = s.RegisterUser(RegisterUserRequest{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  password,
		Role:      string(models.RoleAdmin),
	})
	if err != nil {
		return false, err
	}
	utils.LogInfo("Bootstrapped admin account", map[string]interface{}{"email": strings.ToLower(email)})
	return true, nil
}
