package models

import "time"

// RevenueGroupBy is the bucket granularity of a revenue report.
type RevenueGroupBy string

const (
	GroupByDay   RevenueGroupBy = "day"
	GroupByWeek  RevenueGroupBy = "week"
	GroupByMonth RevenueGroupBy = "month"
	GroupByYear  RevenueGroupBy = "year"
)

// ParseRevenueGroupBy falls back to day for unknown values.
func ParseRevenueGroupBy(s string) RevenueGroupBy {
	switch RevenueGroupBy(s) {
	case GroupByWeek, GroupByMonth, GroupByYear:
		return RevenueGroupBy(s)
	default:
		return GroupByDay
	}
}

// DateRange is a closed reporting interval.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RevenueBucket is one time bucket of the revenue report.
type RevenueBucket struct {
	Period        string  `json:"period"`
	TotalRevenue  float64 `json:"total_revenue"`
	VisitCount    int     `json:"visit_count"`
	AverageTicket float64 `json:"average_ticket"`
}

// PaymentMethodBreakdown aggregates completed visits per payment method.
type PaymentMethodBreakdown struct {
	PaymentMethod PaymentMethod `json:"payment_method"`
	TotalRevenue  float64       `json:"total_revenue"`
	VisitCount    int           `json:"visit_count"`
}

// RevenueSummary is the overall rollup of a revenue report.
type RevenueSummary struct {
	TotalRevenue  float64 `json:"total_revenue"`
	VisitCount    int     `json:"visit_count"`
	AverageTicket float64 `json:"average_ticket"`
}

// RevenueReport is returned by GET /reports/revenue.
type RevenueReport struct {
	DateRange      DateRange                `json:"date_range"`
	GroupBy        RevenueGroupBy           `json:"group_by"`
	Revenue        []RevenueBucket          `json:"revenue"`
	PaymentMethods []PaymentMethodBreakdown `json:"payment_methods"`
	Summary        RevenueSummary           `json:"summary"`
}

// ServiceUsage is a single row of the top services list.
type ServiceUsage struct {
	ServiceID    int64           `json:"service_id"`
	Name         string          `json:"name"`
	Category     ServiceCategory `json:"category"`
	Count        int             `json:"count"`
	TotalRevenue float64         `json:"total_revenue"`
}

// CategoryUsage aggregates line items per service category.
type CategoryUsage struct {
	Category     ServiceCategory `json:"category"`
	Count        int             `json:"count"`
	TotalRevenue float64         `json:"total_revenue"`
}

// ServicesReport is returned by GET /reports/services.
type ServicesReport struct {
	DateRange   DateRange       `json:"date_range"`
	TopServices []ServiceUsage  `json:"top_services"`
	Categories  []CategoryUsage `json:"categories"`
}

// MonthlyCount is a per-month counter.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// ClientVisitType splits a month's visits into new and returning clients.
type ClientVisitType struct {
	Month   string  `json:"month"`
	IsNew   bool    `json:"is_new"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// TopClient is a client ranked by spend within a range.
type TopClient struct {
	ClientID   int64   `json:"client_id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Phone      string  `json:"phone"`
	VisitCount int     `json:"visit_count"`
	TotalSpent float64 `json:"total_spent"`
}

// ClientsReport is returned by GET /reports/clients.
type ClientsReport struct {
	DateRange        DateRange         `json:"date_range"`
	NewClientSignups []MonthlyCount    `json:"new_client_signups"`
	ClientVisitTypes []ClientVisitType `json:"client_visit_types"`
	TopClients       []TopClient       `json:"top_clients"`
	TotalClients     int               `json:"total_clients"`
	ActiveClients    int               `json:"active_clients"`
	RetentionRate    float64           `json:"retention_rate"`
}

// StaffPerformance aggregates line items attributed to a staff member.
type StaffPerformance struct {
	StaffID      int64   `json:"staff_id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	ServiceCount int     `json:"service_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

// ReceptionistPerformance aggregates visits recorded by a receptionist.
type ReceptionistPerformance struct {
	ReceptionistID int64   `json:"receptionist_id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	VisitCount     int     `json:"visit_count"`
	TotalRevenue   float64 `json:"total_revenue"`
	AverageTicket  float64 `json:"average_ticket"`
}

// StaffReport is returned by GET /reports/staff.
type StaffReport struct {
	DateRange     DateRange                 `json:"date_range"`
	Staff         []StaffPerformance        `json:"staff"`
	Receptionists []ReceptionistPerformance `json:"receptionists"`
}

// DailySummary rolls up a single day.
type DailySummary struct {
	TotalVisits    int                   `json:"total_visits"`
	TotalRevenue   float64               `json:"total_revenue"`
	PaymentMethods map[PaymentMethod]int `json:"payment_methods"`
	ServiceCount   int                   `json:"service_count"`
	NewClients     int                   `json:"new_clients"`
}

// DailyReport is returned by GET /reports/daily.
type DailyReport struct {
	Date    string       `json:"date"`
	Visits  []Visit      `json:"visits"`
	Summary DailySummary `json:"summary"`
}

// PeriodTotals is revenue and visit count for one period.
type PeriodTotals struct {
	Revenue float64 `json:"revenue"`
	Visits  int     `json:"visits"`
}

// DashboardSummary holds the key figures for the dashboard.
type DashboardSummary struct {
	Today                PeriodTotals `json:"today"`
	ThisMonth            PeriodTotals `json:"this_month"`
	RevenueGrowth        float64      `json:"revenue_growth"`
	TotalClients         int          `json:"total_clients"`
	NewClientsThisMonth  int          `json:"new_clients_this_month"`
	UpcomingAppointments []Visit      `json:"upcoming_appointments"`
}

// ExportType enumerates the datasets available for export.
type ExportType string

const (
	ExportVisits   ExportType = "visits"
	ExportClients  ExportType = "clients"
	ExportServices ExportType = "services"
	ExportStaff    ExportType = "staff"
)

// IsValidExportType checks if the provided string is a known export type.
func IsValidExportType(t string) bool {
	switch ExportType(t) {
	case ExportVisits, ExportClients, ExportServices, ExportStaff:
		return true
	default:
		return false
	}
}

// Export is the payload of GET /reports/export/:type.
type Export struct {
	Type       ExportType  `json:"type"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Data       interface{} `json:"data"`
}
