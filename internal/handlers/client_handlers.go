package handlers

import (
	"net/http"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ClientHandler holds the client service.
type ClientHandler struct {
	clientService services.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(cs services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: cs}
}

// CreateClient handles the creation of a new client.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateClient")
		return
	}

	client, err := h.clientService.CreateClient(req)
	if err != nil {
		respondServiceError(c, err, "CreateClient", "Failed to create client.")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClients handles fetching clients with pagination, search and sorting.
func (h *ClientHandler) GetClients(c *gin.Context) {
	page, pageSize := pagination(c)
	filters := models.ClientFilters{
		Search:    optionalQuery(c, "search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		PageSize:  pageSize,
	}
	if level := optionalQuery(c, "membership_level"); level != nil {
		if !models.IsValidMembershipLevel(*level) {
			utils.RespondValidationFailed(c, "unknown membership_level "+*level)
			return
		}
		ml := models.MembershipLevel(*level)
		filters.MembershipLevel = &ml
	}

	clients, total, err := h.clientService.GetClients(filters)
	if err != nil {
		respondServiceError(c, err, "GetClients", "Failed to fetch clients.")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	c.JSON(http.StatusOK, paginated(clients, total, page, pageSize))
}

// GetClientByID returns a client together with their visit history.
func (h *ClientHandler) GetClientByID(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}

	details, err := h.clientService.GetClientByID(clientID)
	if err != nil {
		respondServiceError(c, err, "GetClientByID", "Failed to fetch client.")
		return
	}
	if details.Visits == nil {
		details.Visits = []models.Visit{}
	}
	c.JSON(http.StatusOK, details)
}

// UpdateClient handles updating a client profile.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}

	var req services.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateClient")
		return
	}

	client, err := h.clientService.UpdateClient(clientID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateClient", "Failed to update client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// SearchClients is the quick lookup used at the front desk.
func (h *ClientHandler) SearchClients(c *gin.Context) {
	clients, err := h.clientService.SearchClients(c.Param("query"))
	if err != nil {
		respondServiceError(c, err, "SearchClients", "Failed to search clients.")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	c.JSON(http.StatusOK, clients)
}

// GetLoyaltyClients lists clients with at least min_points points.
func (h *ClientHandler) GetLoyaltyClients(c *gin.Context) {
	minPoints := 0
	if v := optionalQuery(c, "min_points"); v != nil {
		minPoints = utils.StrToIntDefault(*v, 0)
	}

	clients, err := h.clientService.GetLoyaltyClients(minPoints)
	if err != nil {
		respondServiceError(c, err, "GetLoyaltyClients", "Failed to fetch loyalty clients.")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	c.JSON(http.StatusOK, clients)
}

// UpdateLoyalty sets or adjusts a client's points balance.
func (h *ClientHandler) UpdateLoyalty(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}

	var req services.UpdateLoyaltyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateLoyalty")
		return
	}

	client, err := h.clientService.UpdateLoyalty(clientID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateLoyalty", "Failed to update loyalty points.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient handles deleting a client without visit history.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}

	if err := h.clientService.DeleteClient(clientID); err != nil {
		respondServiceError(c, err, "DeleteClient", "Failed to delete client.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
