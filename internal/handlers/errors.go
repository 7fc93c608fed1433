package handlers

import (
	"errors"
	"net/http"

	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps a service error onto the API error envelope.
// failMsg is used for internal errors so that their text never leaks.
func respondServiceError(c *gin.Context, err error, where, failMsg string) {
	var dup *services.DuplicatePhoneError
	switch {
	case errors.As(err, &dup):
		utils.LogWarn(where+": duplicate phone", map[string]interface{}{"existing_client_id": dup.Existing.ID})
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), gin.H{"existing_client": dup.Existing}))
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrWrongPassword):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil))
	case errors.Is(err, services.ErrAccountInactive):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), nil))
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), nil))
	case errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), nil))
	case errors.Is(err, services.ErrInvalidState):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidState, err.Error(), nil))
	case errors.Is(err, services.ErrInvalidInput):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), nil))
	default:
		utils.LogError(err, where+": unexpected error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, failMsg, "Internal error"))
	}
}

// respondBindError reports a payload that failed to bind or validate.
func respondBindError(c *gin.Context, err error, where string) {
	utils.LogDebug(where+": failed to bind JSON", map[string]interface{}{"error": err.Error()})
	utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload", err.Error()))
}
