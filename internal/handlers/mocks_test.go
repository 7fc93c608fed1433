package handlers

import (
	"context"

	"salon_backend/internal/models"
	"salon_backend/internal/services"

	"github.com/stretchr/testify/mock"
)

type mockClientService struct{ mock.Mock }

func (m *mockClientService) CreateClient(req services.CreateClientRequest) (*models.Client, error) {
	args := m.Called(req)
	c, _ := args.Get(0).(*models.Client)
	return c, args.Error(1)
}

func (m *mockClientService) GetClientByID(id int64) (*services.ClientDetails, error) {
	args := m.Called(id)
	d, _ := args.Get(0).(*services.ClientDetails)
	return d, args.Error(1)
}

func (m *mockClientService) GetClients(filters models.ClientFilters) ([]models.Client, int, error) {
	args := m.Called(filters)
	c, _ := args.Get(0).([]models.Client)
	return c, args.Int(1), args.Error(2)
}

func (m *mockClientService) UpdateClient(id int64, req services.UpdateClientRequest) (*models.Client, error) {
	args := m.Called(id, req)
	c, _ := args.Get(0).(*models.Client)
	return c, args.Error(1)
}

func (m *mockClientService) SearchClients(query string) ([]models.Client, error) {
	args := m.Called(query)
	c, _ := args.Get(0).([]models.Client)
	return c, args.Error(1)
}

func (m *mockClientService) GetLoyaltyClients(minPoints int) ([]models.Client, error) {
	args := m.Called(minPoints)
	c, _ := args.Get(0).([]models.Client)
	return c, args.Error(1)
}

func (m *mockClientService) UpdateLoyalty(id int64, req services.UpdateLoyaltyRequest) (*models.Client, error) {
	args := m.Called(id, req)
	c, _ := args.Get(0).(*models.Client)
	return c, args.Error(1)
}

func (m *mockClientService) DeleteClient(id int64) error {
	return m.Called(id).Error(0)
}

type mockVisitService struct{ mock.Mock }

func (m *mockVisitService) CreateVisit(receptionistID int64, req services.CreateVisitRequest) (*models.Visit, error) {
	args := m.Called(receptionistID, req)
	v, _ := args.Get(0).(*models.Visit)
	return v, args.Error(1)
}

func (m *mockVisitService) GetVisitByID(id int64) (*models.Visit, error) {
	args := m.Called(id)
	v, _ := args.Get(0).(*models.Visit)
	return v, args.Error(1)
}

func (m *mockVisitService) GetVisits(filters models.VisitFilters) ([]models.Visit, int, error) {
	args := m.Called(filters)
	v, _ := args.Get(0).([]models.Visit)
	return v, args.Int(1), args.Error(2)
}

func (m *mockVisitService) UpdateVisit(id int64, req services.UpdateVisitRequest) (*models.Visit, error) {
	args := m.Called(id, req)
	v, _ := args.Get(0).(*models.Visit)
	return v, args.Error(1)
}

func (m *mockVisitService) CancelVisit(id int64) (*models.Visit, error) {
	args := m.Called(id)
	v, _ := args.Get(0).(*models.Visit)
	return v, args.Error(1)
}

func (m *mockVisitService) DeleteVisit(id int64) error {
	return m.Called(id).Error(0)
}

func (m *mockVisitService) ResendSMS(ctx context.Context, id int64) (*models.Visit, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.Visit)
	return v, args.Error(1)
}

func (m *mockVisitService) Drain(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) RegisterUser(req services.RegisterUserRequest) (*models.User, error) {
	args := m.Called(req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockAuthService) LoginUser(req services.LoginRequest) (*services.AuthResponse, error) {
	args := m.Called(req)
	r, _ := args.Get(0).(*services.AuthResponse)
	return r, args.Error(1)
}

func (m *mockAuthService) GetUserProfile(id int64) (*models.User, error) {
	args := m.Called(id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockAuthService) ChangePassword(id int64, req services.ChangePasswordRequest) error {
	return m.Called(id, req).Error(0)
}

func (m *mockAuthService) ListUsers() ([]models.User, error) {
	args := m.Called()
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

func (m *mockAuthService) UpdateUserStatus(id int64, isActive bool) (*models.User, error) {
	args := m.Called(id, isActive)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockAuthService) EnsureAdmin(email, password, firstName, lastName string) (bool, error) {
	args := m.Called(email, password, firstName, lastName)
	return args.Bool(0), args.Error(1)
}

type mockReportService struct{ mock.Mock }

func (m *mockReportService) Revenue(q services.ReportQuery) (*models.RevenueReport, error) {
	args := m.Called(q)
	r, _ := args.Get(0).(*models.RevenueReport)
	return r, args.Error(1)
}

func (m *mockReportService) Services(q services.ReportQuery) (*models.ServicesReport, error) {
	args := m.Called(q)
	r, _ := args.Get(0).(*models.ServicesReport)
	return r, args.Error(1)
}

func (m *mockReportService) Clients(q services.ReportQuery) (*models.ClientsReport, error) {
	args := m.Called(q)
	r, _ := args.Get(0).(*models.ClientsReport)
	return r, args.Error(1)
}

func (m *mockReportService) Staff(q services.ReportQuery) (*models.StaffReport, error) {
	args := m.Called(q)
	r, _ := args.Get(0).(*models.StaffReport)
	return r, args.Error(1)
}

func (m *mockReportService) Daily(date *string) (*models.DailyReport, error) {
	args := m.Called(date)
	r, _ := args.Get(0).(*models.DailyReport)
	return r, args.Error(1)
}

func (m *mockReportService) Dashboard() (*models.DashboardSummary, error) {
	args := m.Called()
	r, _ := args.Get(0).(*models.DashboardSummary)
	return r, args.Error(1)
}

func (m *mockReportService) Export(exportType string, q services.ReportQuery) (*models.Export, error) {
	args := m.Called(exportType, q)
	r, _ := args.Get(0).(*models.Export)
	return r, args.Error(1)
}
