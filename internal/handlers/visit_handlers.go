package handlers

import (
	"net/http"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// VisitHandler holds the visit service.
type VisitHandler struct {
	visitService services.VisitService
}

// NewVisitHandler creates a new VisitHandler.
func NewVisitHandler(vs services.VisitService) *VisitHandler {
	return &VisitHandler{visitService: vs}
}

// CreateVisit records a visit for the authenticated receptionist.
func (h *VisitHandler) CreateVisit(c *gin.Context) {
	receptionistID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req services.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateVisit")
		return
	}

	visit, err := h.visitService.CreateVisit(receptionistID, req)
	if err != nil {
		respondServiceError(c, err, "CreateVisit", "Failed to create visit.")
		return
	}
	c.JSON(http.StatusCreated, visit)
}

// visitFilters parses the list query. It writes a 400 and returns false on
// malformed input.
func visitFilters(c *gin.Context) (models.VisitFilters, bool) {
	page, pageSize := pagination(c)
	filters := models.VisitFilters{
		PaymentMethod: optionalQuery(c, "payment_method"),
		PaymentStatus: optionalQuery(c, "payment_status"),
		SortBy:        c.Query("sort_by"),
		SortOrder:     c.Query("sort_order"),
		Page:          page,
		PageSize:      pageSize,
	}

	if m := filters.PaymentMethod; m != nil && !models.IsValidPaymentMethod(*m) {
		utils.RespondValidationFailed(c, "unknown payment_method "+*m)
		return filters, false
	}
	if s := filters.PaymentStatus; s != nil && !models.IsValidPaymentStatus(*s) {
		utils.RespondValidationFailed(c, "unknown payment_status "+*s)
		return filters, false
	}

	for key, dst := range map[string]**int64{"client_id": &filters.ClientID, "service_id": &filters.ServiceID} {
		if v := optionalQuery(c, key); v != nil {
			id, err := utils.StrToInt64(*v)
			if err != nil {
				utils.RespondValidationFailed(c, key+" must be an integer")
				return filters, false
			}
			*dst = &id
		}
	}

	start, end, err := services.OptionalRange(optionalQuery(c, "start_date"), optionalQuery(c, "end_date"))
	if err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return filters, false
	}
	filters.StartDate, filters.EndDate = start, end
	return filters, true
}

// GetVisits lists visits with filters and pagination.
func (h *VisitHandler) GetVisits(c *gin.Context) {
	filters, ok := visitFilters(c)
	if !ok {
		return
	}

	visits, total, err := h.visitService.GetVisits(filters)
	if err != nil {
		respondServiceError(c, err, "GetVisits", "Failed to fetch visits.")
		return
	}
	if visits == nil {
		visits = []models.Visit{}
	}
	c.JSON(http.StatusOK, paginated(visits, total, filters.Page, filters.PageSize))
}

func (h *VisitHandler) GetVisitByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "visit")
	if !ok {
		return
	}
	visit, err := h.visitService.GetVisitByID(id)
	if err != nil {
		respondServiceError(c, err, "GetVisitByID", "Failed to fetch visit.")
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *VisitHandler) UpdateVisit(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "visit")
	if !ok {
		return
	}
	var req services.UpdateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateVisit")
		return
	}
	visit, err := h.visitService.UpdateVisit(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateVisit", "Failed to update visit.")
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *VisitHandler) CancelVisit(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "visit")
	if !ok {
		return
	}
	visit, err := h.visitService.CancelVisit(id)
	if err != nil {
		respondServiceError(c, err, "CancelVisit", "Failed to cancel visit.")
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *VisitHandler) DeleteVisit(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "visit")
	if !ok {
		return
	}
	if err := h.visitService.DeleteVisit(id); err != nil {
		respondServiceError(c, err, "DeleteVisit", "Failed to delete visit.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Visit deleted successfully"})
}

// ResendSMS sends the thank-you message for a visit again.
func (h *VisitHandler) ResendSMS(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "visit")
	if !ok {
		return
	}
	visit, err := h.visitService.ResendSMS(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "ResendSMS", "Failed to send SMS.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "SMS sent successfully", "visit": visit})
}
