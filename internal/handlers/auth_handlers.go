package handlers

import (
	"errors"
	"net/http"

	"salon_backend/internal/middleware"
	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// currentUserID reads the authenticated user from the context or answers 401.
func currentUserID(c *gin.Context) (int64, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.LogError(errors.New("userID not found in context"), "currentUserID: missing user ID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", nil))
		return 0, false
	}
	return id, true
}

// RegisterUser handles user registration (admin only).
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req services.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "RegisterUser")
		return
	}

	user, err := h.authService.RegisterUser(req)
	if err != nil {
		respondServiceError(c, err, "RegisterUser", "Failed to register user.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// LoginUser handles user login.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "LoginUser")
		return
	}

	authResp, err := h.authService.LoginUser(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.LogWarn("LoginUser: rejected credentials", map[string]interface{}{"client_ip": c.ClientIP()})
		}
		respondServiceError(c, err, "LoginUser", "Failed to login.")
		return
	}
	c.JSON(http.StatusOK, authResp)
}

// GetCurrentUser retrieves the profile of the currently authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.authService.GetUserProfile(userID)
	if err != nil {
		respondServiceError(c, err, "GetCurrentUser", "Failed to fetch user profile.")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the caller's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "ChangePassword")
		return
	}
	if err := h.authService.ChangePassword(userID, req); err != nil {
		respondServiceError(c, err, "ChangePassword", "Failed to change password.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// ListUsers returns every account (admin only).
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers()
	if err != nil {
		respondServiceError(c, err, "ListUsers", "Failed to fetch users.")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUserStatus activates or deactivates an account (admin only).
func (h *AuthHandler) UpdateUserStatus(c *gin.Context) {
	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}
	var req services.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateUserStatus")
		return
	}
	user, err := h.authService.UpdateUserStatus(userID, *req.IsActive)
	if err != nil {
		respondServiceError(c, err, "UpdateUserStatus", "Failed to update user status.")
		return
	}
	c.JSON(http.StatusOK, user)
}
