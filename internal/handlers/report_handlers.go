package handlers

import (
	"net/http"

	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the read-only reports.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// parseReportQuery helps parse common query parameters for reports.
func parseReportQuery(c *gin.Context) services.ReportQuery {
	return services.ReportQuery{
		StartDate: optionalQuery(c, "start_date"),
		EndDate:   optionalQuery(c, "end_date"),
		GroupBy:   c.Query("group_by"),
		Limit:     utils.StrToIntDefault(c.Query("limit"), 0),
	}
}

// GetRevenueReport buckets completed revenue by day, week, month or year.
func (h *ReportHandler) GetRevenueReport(c *gin.Context) {
	report, err := h.reportService.Revenue(parseReportQuery(c))
	if err != nil {
		respondServiceError(c, err, "GetRevenueReport", "Failed to build revenue report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetServicesReport(c *gin.Context) {
	report, err := h.reportService.Services(parseReportQuery(c))
	if err != nil {
		respondServiceError(c, err, "GetServicesReport", "Failed to build services report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetClientsReport(c *gin.Context) {
	report, err := h.reportService.Clients(parseReportQuery(c))
	if err != nil {
		respondServiceError(c, err, "GetClientsReport", "Failed to build clients report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetStaffReport(c *gin.Context) {
	report, err := h.reportService.Staff(parseReportQuery(c))
	if err != nil {
		respondServiceError(c, err, "GetStaffReport", "Failed to build staff report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetDailyReport lists one day's visits; ?date= defaults to today.
func (h *ReportHandler) GetDailyReport(c *gin.Context) {
	report, err := h.reportService.Daily(optionalQuery(c, "date"))
	if err != nil {
		respondServiceError(c, err, "GetDailyReport", "Failed to build daily report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetDashboardSummary provides a summary of key metrics for the dashboard.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.reportService.Dashboard()
	if err != nil {
		respondServiceError(c, err, "GetDashboardSummary", "Failed to build dashboard.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportData dumps visits, clients, services or staff as JSON.
func (h *ReportHandler) ExportData(c *gin.Context) {
	export, err := h.reportService.Export(c.Param("type"), parseReportQuery(c))
	if err != nil {
		respondServiceError(c, err, "ExportData", "Failed to export data.")
		return
	}
	c.JSON(http.StatusOK, export)
}
