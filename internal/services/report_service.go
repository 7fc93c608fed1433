package services

import (
	"fmt"
	"time"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"
)

const (
	defaultReportDays       = 30
	defaultClientReportDays = 90
	defaultTopServices      = 10
	topClientsLimit         = 10
	upcomingVisitsLimit     = 5
)

// ReportQuery carries the common report parameters as received from the
// query string. Empty dates fall back to the report's default window.
type ReportQuery struct {
	StartDate *string
	EndDate   *string
	GroupBy   string
	Limit     int
}

// ReportService computes read-only aggregations over visits and clients.
type ReportService interface {
	Revenue(q ReportQuery) (*models.RevenueReport, error)
	Services(q ReportQuery) (*models.ServicesReport, error)
	Clients(q ReportQuery) (*models.ClientsReport, error)
	Staff(q ReportQuery) (*models.StaffReport, error)
	Daily(date *string) (*models.DailyReport, error)
	Dashboard() (*models.DashboardSummary, error)
	Export(exportType string, q ReportQuery) (*models.Export, error)
}

type reportService struct {
	reportRepo  repositories.ReportRepository
	visitRepo   repositories.VisitRepository
	clientRepo  repositories.ClientRepository
	serviceRepo repositories.ServiceRepository
	authRepo    repositories.AuthRepository
	now         func() time.Time
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	reportRepo repositories.ReportRepository,
	visitRepo repositories.VisitRepository,
	clientRepo repositories.ClientRepository,
	serviceRepo repositories.ServiceRepository,
	authRepo repositories.AuthRepository,
) ReportService {
	return &reportService{
		reportRepo:  reportRepo,
		visitRepo:   visitRepo,
		clientRepo:  clientRepo,
		serviceRepo: serviceRepo,
		authRepo:    authRepo,
		now:         time.Now,
	}
}

func (s *reportService) Revenue(q ReportQuery) (*models.RevenueReport, error) {
	start, end, err := dateRange(q.StartDate, q.EndDate, s.now(), defaultReportDays)
	if err != nil {
		return nil, err
	}
	groupBy := models.ParseRevenueGroupBy(q.GroupBy)

	buckets, err := s.reportRepo.RevenueByPeriod(start, end, groupBy)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue: %w", err)
	}
	methods, err := s.reportRepo.RevenueByPaymentMethod(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment methods: %w", err)
	}

	var summary models.RevenueSummary
	for _, b := range buckets {
		summary.TotalRevenue += b.TotalRevenue
		summary.VisitCount += b.VisitCount
	}
	summary.TotalRevenue = utils.RoundTo(summary.TotalRevenue, 2)
	if summary.VisitCount > 0 {
		summary.AverageTicket = utils.RoundTo(summary.TotalRevenue/float64(summary.VisitCount), 2)
	}

	return &models.RevenueReport{
		DateRange:      models.DateRange{Start: start, End: end},
		GroupBy:        groupBy,
		Revenue:        emptyIfNil(buckets),
		PaymentMethods: emptyIfNil(methods),
		Summary:        summary,
	}, nil
}

func (s *reportService) Services(q ReportQuery) (*models.ServicesReport, error) {
	start, end, err := dateRange(q.StartDate, q.EndDate, s.now(), defaultReportDays)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultTopServices
	}

	top, err := s.reportRepo.TopServices(start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top services: %w", err)
	}
	categories, err := s.reportRepo.CategoryUsage(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load category usage: %w", err)
	}
	return &models.ServicesReport{
		DateRange:   models.DateRange{Start: start, End: end},
		TopServices: emptyIfNil(top),
		Categories:  emptyIfNil(categories),
	}, nil
}

// Clients reports acquisition and retention. Retention is the share of
// clients created before the end of the range who completed a visit in it.
func (s *reportService) Clients(q ReportQuery) (*models.ClientsReport, error) {
	start, end, err := dateRange(q.StartDate, q.EndDate, s.now(), defaultClientReportDays)
	if err != nil {
		return nil, err
	}

	signups, err := s.reportRepo.NewClientSignups(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load signups: %w", err)
	}
	visitTypes, err := s.reportRepo.ClientVisitTypes(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load visit types: %w", err)
	}
	top, err := s.reportRepo.TopClients(start, end, topClientsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top clients: %w", err)
	}
	active, err := s.reportRepo.CountActiveClients(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count active clients: %w", err)
	}
	total, err := s.reportRepo.CountClientsCreatedBefore(end)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	return &models.ClientsReport{
		DateRange:        models.DateRange{Start: start, End: end},
		NewClientSignups: emptyIfNil(signups),
		ClientVisitTypes: emptyIfNil(visitTypes),
		TopClients:       emptyIfNil(top),
		TotalClients:     total,
		ActiveClients:    active,
		RetentionRate:    utils.Percentage(float64(active), float64(total)),
	}, nil
}

func (s *reportService) Staff(q ReportQuery) (*models.StaffReport, error) {
	start, end, err := dateRange(q.StartDate, q.EndDate, s.now(), defaultReportDays)
	if err != nil {
		return nil, err
	}
	staff, err := s.reportRepo.StaffPerformance(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff performance: %w", err)
	}
	receptionists, err := s.reportRepo.ReceptionistPerformance(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load receptionist performance: %w", err)
	}
	return &models.StaffReport{
		DateRange:     models.DateRange{Start: start, End: end},
		Staff:         emptyIfNil(staff),
		Receptionists: emptyIfNil(receptionists),
	}, nil
}

// Daily lists every visit of one day regardless of status. Revenue and the
// payment method counts only include completed visits.
func (s *reportService) Daily(date *string) (*models.DailyReport, error) {
	day := s.now()
	if d, err := parseOptionalDate(date); err != nil {
		return nil, err
	} else if d != nil {
		day = *d
	}
	start, end := startOfDay(day), endOfDay(day)

	visits, _, err := s.visitRepo.GetVisits(models.VisitFilters{
		StartDate: &start,
		EndDate:   &end,
		SortBy:    "date",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load visits: %w", err)
	}
	newClients, err := s.reportRepo.CountClientsCreatedBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count new clients: %w", err)
	}

	summary := models.DailySummary{
		TotalVisits:    len(visits),
		PaymentMethods: map[models.PaymentMethod]int{},
		NewClients:     newClients,
	}
	for _, v := range visits {
		summary.ServiceCount += len(v.Services)
		if v.PaymentStatus != models.PaymentStatusCompleted {
			continue
		}
		summary.TotalRevenue += v.TotalAmount
		summary.PaymentMethods[v.PaymentMethod]++
	}
	summary.TotalRevenue = utils.RoundTo(summary.TotalRevenue, 2)

	return &models.DailyReport{
		Date:    start.Format(dateLayout),
		Visits:  emptyIfNil(visits),
		Summary: summary,
	}, nil
}

func (s *reportService) Dashboard() (*models.DashboardSummary, error) {
	now := s.now()
	monthStart := startOfMonth(now)
	prevStart := monthStart.AddDate(0, -1, 0)
	prevEnd := monthStart.Add(-time.Millisecond)

	today, err := s.reportRepo.PeriodTotals(startOfDay(now), endOfDay(now))
	if err != nil {
		return nil, fmt.Errorf("failed to load today's totals: %w", err)
	}
	month, err := s.reportRepo.PeriodTotals(monthStart, endOfMonth(now))
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly totals: %w", err)
	}
	prev, err := s.reportRepo.PeriodTotals(prevStart, prevEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous month totals: %w", err)
	}
	totalClients, err := s.reportRepo.CountClients()
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}
	newClients, err := s.reportRepo.CountClientsCreatedBetween(monthStart, endOfMonth(now))
	if err != nil {
		return nil, fmt.Errorf("failed to count new clients: %w", err)
	}
	upcoming, err := s.visitRepo.GetUpcomingVisits(now, upcomingVisitsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming visits: %w", err)
	}

	return &models.DashboardSummary{
		Today:                today,
		ThisMonth:            month,
		RevenueGrowth:        utils.Percentage(month.Revenue-prev.Revenue, prev.Revenue),
		TotalClients:         totalClients,
		NewClientsThisMonth:  newClients,
		UpcomingAppointments: emptyIfNil(upcoming),
	}, nil
}

// Export dumps a whole dataset. Visits honour the optional date range; a
// positive limit caps every dataset.
func (s *reportService) Export(exportType string, q ReportQuery) (*models.Export, error) {
	if !models.IsValidExportType(exportType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExportType, exportType)
	}

	var (
		data  interface{}
		count int
	)
	switch models.ExportType(exportType) {
	case models.ExportVisits:
		filters := models.VisitFilters{SortBy: "date", SortOrder: "desc"}
		start, end, err := OptionalRange(q.StartDate, q.EndDate)
		if err != nil {
			return nil, err
		}
		filters.StartDate, filters.EndDate = start, end
		if q.Limit > 0 {
			filters.Page, filters.PageSize = 1, q.Limit
		}
		visits, _, err := s.visitRepo.GetVisits(filters)
		if err != nil {
			return nil, fmt.Errorf("failed to export visits: %w", err)
		}
		data, count = emptyIfNil(visits), len(visits)
	case models.ExportClients:
		clients, err := s.clientRepo.ListAllClients()
		if err != nil {
			return nil, fmt.Errorf("failed to export clients: %w", err)
		}
		clients = capSlice(clients, q.Limit)
		data, count = emptyIfNil(clients), len(clients)
	case models.ExportServices:
		services, err := s.serviceRepo.GetServices(models.ServiceFilters{})
		if err != nil {
			return nil, fmt.Errorf("failed to export services: %w", err)
		}
		services = capSlice(services, q.Limit)
		data, count = emptyIfNil(services), len(services)
	case models.ExportStaff:
		users, err := s.authRepo.ListUsers()
		if err != nil {
			return nil, fmt.Errorf("failed to export staff: %w", err)
		}
		users = capSlice(users, q.Limit)
		data, count = emptyIfNil(users), len(users)
	}

	return &models.Export{
		Type:       models.ExportType(exportType),
		ExportedAt: s.now(),
		Count:      count,
		Data:       data,
	}, nil
}

// emptyIfNil keeps JSON arrays from rendering as null.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func capSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
