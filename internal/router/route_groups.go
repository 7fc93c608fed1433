package router

import (
	"salon_backend/internal/handlers"
	"salon_backend/internal/middleware"
	"salon_backend/internal/models"

	"github.com/gin-gonic/gin"
)

var adminOnly = middleware.RoleAuthMiddleware(string(models.RoleAdmin))

// SetupPublicAuthRoutes sets up the routes reachable without a token.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler, loginLimiter *middleware.IPRateLimiter) {
	group.POST("/login", middleware.RateLimitMiddleware(loginLimiter), authHandler.LoginUser)
}

// SetupAuthenticatedAuthRoutes sets up account routes for signed-in users.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
	group.PUT("/change-password", authHandler.ChangePassword)

	group.POST("/register", adminOnly, authHandler.RegisterUser)
	group.GET("/users", adminOnly, authHandler.ListUsers)
	group.PATCH("/users/:id/status", adminOnly, authHandler.UpdateUserStatus)
}

// SetupClientRoutes sets up the client routes.
func SetupClientRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler) {
	clientRoutes := authenticatedGroup.Group("/clients")
	{
		clientRoutes.GET("", clientHandler.GetClients)
		clientRoutes.POST("", clientHandler.CreateClient)
		clientRoutes.GET("/search/:query", clientHandler.SearchClients)
		clientRoutes.GET("/loyalty/list", adminOnly, clientHandler.GetLoyaltyClients)
		clientRoutes.GET("/:id", clientHandler.GetClientByID)
		clientRoutes.PUT("/:id", clientHandler.UpdateClient)
		clientRoutes.PATCH("/:id/loyalty", adminOnly, clientHandler.UpdateLoyalty)
		clientRoutes.DELETE("/:id", adminOnly, clientHandler.DeleteClient)
	}
}

// SetupServiceRoutes sets up the service catalog routes.
func SetupServiceRoutes(authenticatedGroup *gin.RouterGroup, serviceHandler *handlers.ServiceHandler) {
	serviceRoutes := authenticatedGroup.Group("/services")
	{
		serviceRoutes.GET("", serviceHandler.GetServices)
		serviceRoutes.POST("", adminOnly, serviceHandler.CreateService)
		serviceRoutes.GET("/categories/list", serviceHandler.GetCategories)
		serviceRoutes.GET("/:id", serviceHandler.GetServiceByID)
		serviceRoutes.PUT("/:id", adminOnly, serviceHandler.UpdateService)
		serviceRoutes.GET("/:id/stats", adminOnly, serviceHandler.GetServiceStats)
		serviceRoutes.PATCH("/:id/status", adminOnly, serviceHandler.UpdateServiceStatus)
	}
}

// SetupVisitRoutes sets up the visit routes.
func SetupVisitRoutes(authenticatedGroup *gin.RouterGroup, visitHandler *handlers.VisitHandler) {
	visitRoutes := authenticatedGroup.Group("/visits")
	{
		visitRoutes.GET("", visitHandler.GetVisits)
		visitRoutes.POST("", visitHandler.CreateVisit)
		visitRoutes.GET("/:id", visitHandler.GetVisitByID)
		visitRoutes.PUT("/:id", visitHandler.UpdateVisit)
		visitRoutes.PATCH("/:id/cancel", visitHandler.CancelVisit)
		visitRoutes.POST("/:id/resend-sms", visitHandler.ResendSMS)
		visitRoutes.DELETE("/:id", adminOnly, visitHandler.DeleteVisit)
	}
}

// SetupReportRoutes sets up the report routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := authenticatedGroup.Group("/reports")
	{
		reportRoutes.GET("/revenue", reportHandler.GetRevenueReport)
		reportRoutes.GET("/services", reportHandler.GetServicesReport)
		reportRoutes.GET("/clients", adminOnly, reportHandler.GetClientsReport)
		reportRoutes.GET("/staff", adminOnly, reportHandler.GetStaffReport)
		reportRoutes.GET("/daily", reportHandler.GetDailyReport)
		reportRoutes.GET("/dashboard", reportHandler.GetDashboardSummary)
		reportRoutes.GET("/export/:type", adminOnly, reportHandler.ExportData)
	}
}
