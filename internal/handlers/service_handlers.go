package handlers

import (
	"net/http"
	"strconv"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ServiceHandler exposes the service catalog.
type ServiceHandler struct {
	catalogService services.CatalogService
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(cs services.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalogService: cs}
}

func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req services.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateService")
		return
	}

	service, err := h.catalogService.CreateService(req)
	if err != nil {
		respondServiceError(c, err, "CreateService", "Failed to create service.")
		return
	}
	c.JSON(http.StatusCreated, service)
}

// GetServices lists the catalog, optionally filtered by category and status.
func (h *ServiceHandler) GetServices(c *gin.Context) {
	filters := models.ServiceFilters{
		Category:  optionalQuery(c, "category"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if v := optionalQuery(c, "is_active"); v != nil {
		active, err := strconv.ParseBool(*v)
		if err != nil {
			utils.RespondValidationFailed(c, "is_active must be true or false")
			return
		}
		filters.IsActive = &active
	}

	list, err := h.catalogService.GetServices(filters)
	if err != nil {
		respondServiceError(c, err, "GetServices", "Failed to fetch services.")
		return
	}
	if list == nil {
		list = []models.Service{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *ServiceHandler) GetServiceByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "service")
	if !ok {
		return
	}
	service, err := h.catalogService.GetServiceByID(id)
	if err != nil {
		respondServiceError(c, err, "GetServiceByID", "Failed to fetch service.")
		return
	}
	c.JSON(http.StatusOK, service)
}

func (h *ServiceHandler) UpdateService(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "service")
	if !ok {
		return
	}
	var req services.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateService")
		return
	}
	service, err := h.catalogService.UpdateService(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateService", "Failed to update service.")
		return
	}
	c.JSON(http.StatusOK, service)
}

// UpdateServiceStatus toggles whether a service can be sold.
func (h *ServiceHandler) UpdateServiceStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "service")
	if !ok {
		return
	}
	var req services.UpdateServiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateServiceStatus")
		return
	}
	service, err := h.catalogService.UpdateServiceStatus(id, *req.IsActive)
	if err != nil {
		respondServiceError(c, err, "UpdateServiceStatus", "Failed to update service status.")
		return
	}
	c.JSON(http.StatusOK, service)
}

func (h *ServiceHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.GetCategories()
	if err != nil {
		respondServiceError(c, err, "GetCategories", "Failed to fetch categories.")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, categories)
}

// GetServiceStats reports usage and revenue of one service.
func (h *ServiceHandler) GetServiceStats(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "service")
	if !ok {
		return
	}
	stats, err := h.catalogService.GetServiceStats(id, optionalQuery(c, "start_date"), optionalQuery(c, "end_date"))
	if err != nil {
		respondServiceError(c, err, "GetServiceStats", "Failed to compute service stats.")
		return
	}
	c.JSON(http.StatusOK, stats)
}
