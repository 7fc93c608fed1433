package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"salon_backend/internal/models"
)

// ReportRepository runs the read-only aggregations behind the reports.
// Unless stated otherwise every query is limited to completed visits dated
// within [start, end].
type ReportRepository interface {
	RevenueByPeriod(start, end time.Time, groupBy models.RevenueGroupBy) ([]models.RevenueBucket, error)
	RevenueByPaymentMethod(start, end time.Time) ([]models.PaymentMethodBreakdown, error)
	PeriodTotals(start, end time.Time) (models.PeriodTotals, error)
	TopServices(start, end time.Time, limit int) ([]models.ServiceUsage, error)
	CategoryUsage(start, end time.Time) ([]models.CategoryUsage, error)
	NewClientSignups(start, end time.Time) ([]models.MonthlyCount, error)
	ClientVisitTypes(start, end time.Time) ([]models.ClientVisitType, error)
	TopClients(start, end time.Time, limit int) ([]models.TopClient, error)
	CountActiveClients(start, end time.Time) (int, error)
	CountClientsCreatedBefore(end time.Time) (int, error)
	CountClientsCreatedBetween(start, end time.Time) (int, error)
	CountClients() (int, error)
	StaffPerformance(start, end time.Time) ([]models.StaffPerformance, error)
	ReceptionistPerformance(start, end time.Time) ([]models.ReceptionistPerformance, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

// periodFormats are TO_CHAR patterns per bucket granularity. Weeks use the
// ISO year and week number, e.g. 2024-W07.
var periodFormats = map[models.RevenueGroupBy]string{
	models.GroupByDay:   "YYYY-MM-DD",
	models.GroupByWeek:  `IYYY-"W"IW`,
	models.GroupByMonth: "YYYY-MM",
	models.GroupByYear:  "YYYY",
}

const completedInRange = `v.payment_status = 'completed' AND v.visit_date >= $1 AND v.visit_date <= $2`

// RevenueByPeriod buckets completed revenue. Empty buckets are not emitted.
func (r *reportRepository) RevenueByPeriod(start, end time.Time, groupBy models.RevenueGroupBy) ([]models.RevenueBucket, error) {
	format, ok := periodFormats[groupBy]
	if !ok {
		format = periodFormats[models.GroupByDay]
	}
	query := fmt.Sprintf(`SELECT TO_CHAR(v.visit_date, '%s') AS period,
	            COALESCE(SUM(v.total_amount), 0), COUNT(*), COALESCE(AVG(v.total_amount), 0)
	          FROM visits v
	          WHERE %s
	          GROUP BY period
	          ORDER BY period ASC`, format, completedInRange)

	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying revenue by period: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	buckets := []models.RevenueBucket{}
	for rows.Next() {
		var b models.RevenueBucket
		if err := rows.Scan(&b.Period, &b.TotalRevenue, &b.VisitCount, &b.AverageTicket); err != nil {
			return nil, fmt.Errorf("%w: scanning revenue bucket: %v", ErrDatabaseError, err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating revenue buckets: %v", ErrDatabaseError, err)
	}
	return buckets, nil
}

// RevenueByPaymentMethod sums completed revenue per payment method, largest first.
func (r *reportRepository) RevenueByPaymentMethod(start, end time.Time) ([]models.PaymentMethodBreakdown, error) {
	query := `SELECT v.payment_method, COALESCE(SUM(v.total_amount), 0), COUNT(*)
	          FROM visits v
	          WHERE ` + completedInRange + `
	          GROUP BY v.payment_method
	          ORDER BY 2 DESC, v.payment_method ASC`

	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying revenue by payment method: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.PaymentMethodBreakdown{}
	for rows.Next() {
		var b models.PaymentMethodBreakdown
		if err := rows.Scan(&b.PaymentMethod, &b.TotalRevenue, &b.VisitCount); err != nil {
			return nil, fmt.Errorf("%w: scanning payment method breakdown: %v", ErrDatabaseError, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payment method breakdown: %v", ErrDatabaseError, err)
	}
	return out, nil
}

// PeriodTotals returns completed revenue and visit count for the range.
func (r *reportRepository) PeriodTotals(start, end time.Time) (models.PeriodTotals, error) {
	var t models.PeriodTotals
	query := `SELECT COALESCE(SUM(v.total_amount), 0), COUNT(*) FROM visits v WHERE ` + completedInRange
	if err := r.db.QueryRow(query, start, end).Scan(&t.Revenue, &t.Visits); err != nil {
		return models.PeriodTotals{}, fmt.Errorf("%w: querying period totals: %v", ErrDatabaseError, err)
	}
	return t, nil
}

// TopServices ranks services by line-item count, revenue from snapshot prices.
func (r *reportRepository) TopServices(start, end time.Time, limit int) ([]models.ServiceUsage, error) {
	query := `SELECT s.id, s.name, s.category, COUNT(*) AS usage, COALESCE(SUM(vs.price), 0) AS revenue
	          FROM visits v
	          JOIN visit_services vs ON vs.visit_id = v.id
	          JOIN services s ON s.id = vs.service_id
	          WHERE ` + completedInRange + `
	          GROUP BY s.id, s.name, s.category
	          ORDER BY usage DESC, revenue DESC, s.id ASC
	          LIMIT $3`

	rows, err := r.db.Query(query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying top services: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.ServiceUsage{}
	for rows.Next() {
		var u models.ServiceUsage
		if err := rows.Scan(&u.ServiceID, &u.Name, &u.Category, &u.Count, &u.TotalRevenue); err != nil {
			return nil, fmt.Errorf("%w: scanning service usage: %v", ErrDatabaseError, err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating service usage: %v", ErrDatabaseError, err)
	}
	return out, nil
}

// CategoryUsage groups line items by service category, highest revenue first.
func (r *reportRepository) CategoryUsage(start, end time.Time) ([]models.CategoryUsage, error) {
	query := `SELECT s.category, COUNT(*), COALESCE(SUM(vs.price), 0) AS revenue
	          FROM visits v
	          JOIN visit_services vs ON vs.visit_id = v.id
	          JOIN services s ON s.id = vs.service_id
	          WHERE ` + completedInRange + `
	          GROUP BY s.category
	          ORDER BY revenue DESC, s.category ASC`

	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying category usage: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.CategoryUsage{}
	for rows.Next() {
		var u models.CategoryUsage
		if err := rows.Scan(&u.Category, &u.Count, &u.TotalRevenue); err != nil {
			return nil, fmt.Errorf("%w: scanning category usage: %v", ErrDatabaseError, err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating category usage: %v", ErrDatabaseError, err)
	}
	return out, nil
}

// NewClientSignups counts clients created per month within the range.
func (r *reportRepository) NewClientSignups(start, end time.Time) ([]models.MonthlyCount, error) {
	query := `SELECT TO_CHAR(created_at, 'YYYY-MM') AS month, COUNT(*)
	          FROM clients
	          WHERE created_at >= $1 AND created_at <= $2
	          GROUP BY month
	          ORDER BY month ASC`

	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying client signups: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.MonthlyCount{}
	for rows.Next() {
		var m models.MonthlyCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, fmt.Errorf("%w: scanning client signups: %v", ErrDatabaseError, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating client signups: %v", ErrDatabaseError, err)
	}
	return out, nil
}

// ClientVisitTypes splits completed visits per month by whether the client
// has exactly one recorded visit.
func (r *reportRepository) ClientVisitTypes(start, end time.Time) ([]models.ClientVisitType, error) {
	query := `SELECT TO_CHAR(v.visit_date, 'YYYY-MM') AS month, (c.visit_count = 1) AS is_new,
	            COUNT(*), COALESCE(SUM(v.total_amount), 0)
	          FROM visits v
	          JOIN clients c ON c.id = v.client_id
	          WHERE ` + completedInRange + `
	          GROUP BY month, is_new
	          ORDER BY month ASC, is_new DESC`

	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying client visit types: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.ClientVisitType{}
	for rows.Next() {
		var t models.ClientVisitType
		if err := rows.Scan(&t.Month, &t.IsNew, &t.Count, &t.Revenue); err != nil {
			return nil, fmt.Errorf("%w: scanning client visit type: %v", ErrDatabaseError, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating client visit types: %v", ErrDatabaseError, err)
	}
	return out, nil
}

// TopClients ranks clients by completed spend within the range.
func (r *reportRepository) TopClients(start, end time.Time, limit int) ([]models.TopClient, error) {
	query := `SELECT c.id, c.first_name, c.last_name, c.phone, COUNT(*), COALESCE(SUM(v.total_amount), 0) AS spent
	          FROM visits v
	          JOIN clients c ON c.id = v.client_id
	          WHERE ` + completedInRange + `
	          GROUP BY c.id, c.first_name, c.last_name, c.phone
	          ORDER BY spent DESC, c.id ASC
	          LIMIT $3`

	rows, err := r.db.Query(query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying top clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.TopClient{}
	for rows.Next() {
		var t models.TopClient
		if err := rows.Scan(&t.ClientID, &t.FirstName, &t.LastName, &t.Phone, &t.VisitCount, &t.TotalSpent); err != nil {
			return nil, fmt.Errorf("%w: scanning top client: %v", ErrDatabaseError, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating top clients: %v", ErrDatabaseError, err)
	}
	return out, nil
}

// CountActiveClients counts distinct clients with a completed visit in range.
func (r *reportRepository) CountActiveClients(start, end time.Time) (int, error) {
	return r.count(`SELECT COUNT(DISTINCT v.client_id) FROM visits v WHERE `+completedInRange,
		"counting active clients", start, end)
}

// CountClientsCreatedBefore counts clients that existed at end.
func (r *reportRepository) CountClientsCreatedBefore(end time.Time) (int, error) {
	return r.count(`SELECT COUNT(*) FROM clients WHERE created_at < $1`, "counting clients", end)
}

// CountClientsCreatedBetween counts clients created within [start, end].
func (r *reportRepository) CountClientsCreatedBetween(start, end time.Time) (int, error) {
	return r.count(`SELECT COUNT(*) FROM clients WHERE created_at >= $1 AND created_at <= $2`,
		"counting new clients", start, end)
}

// CountClients counts every client.
func (r *reportRepository) CountClients() (int, error) {
	return r.count(`SELECT COUNT(*) FROM clients`, "counting clients")
}

func (r *reportRepository) count(query, action string, args ...interface{}) (int, error) {
	return countRows(r.db, query, action, args...)
}

// StaffPerformance attributes line items to their staff member. Items
// without a staff reference are skipped.
func (r *reportRepository) StaffPerformance(start, end time.Time) ([]models.StaffPerformance, error) {
	query := `SELECT u.id, u.first_name, u.last_name, COUNT(*), COALESCE(SUM(vs.price), 0) AS revenue
	          FROM visits v
	          JOIN visit_services vs ON vs.visit_id = v.id
	          JOIN users u ON u.id = vs.staff_id
	          WHERE ` + completedInRange + ` AND vs.staff_id IS NOT NULL
	          GROUP BY u.id, u.first_name, u.last_name
	          ORDER BY revenue DESC, u.id ASC`

	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying staff performance: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.StaffPerformance{}
	for rows.Next() {
		var p models.StaffPerformance
		if err := rows.Scan(&p.StaffID, &p.FirstName, &p.LastName, &p.ServiceCount, &p.TotalRevenue); err != nil {
			return nil, fmt.Errorf("%w: scanning staff performance: %v", ErrDatabaseError, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating staff performance: %v", ErrDatabaseError, err)
	}
	return out, nil
}

// ReceptionistPerformance attributes whole visits to the recording user.
func (r *reportRepository) ReceptionistPerformance(start, end time.Time) ([]models.ReceptionistPerformance, error) {
	query := `SELECT u.id, u.first_name, u.last_name, COUNT(*),
	            COALESCE(SUM(v.total_amount), 0) AS revenue, COALESCE(AVG(v.total_amount), 0)
	          FROM visits v
	          JOIN users u ON u.id = v.receptionist_id
	          WHERE ` + completedInRange + `
	          GROUP BY u.id, u.first_name, u.last_name
	          ORDER BY revenue DESC, u.id ASC`

	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying receptionist performance: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.ReceptionistPerformance{}
	for rows.Next() {
		var p models.ReceptionistPerformance
		if err := rows.Scan(&p.ReceptionistID, &p.FirstName, &p.LastName, &p.VisitCount, &p.TotalRevenue, &p.AverageTicket); err != nil {
			return nil, fmt.Errorf("%w: scanning receptionist performance: %v", ErrDatabaseError, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating receptionist performance: %v", ErrDatabaseError, err)
	}
	return out, nil
}
