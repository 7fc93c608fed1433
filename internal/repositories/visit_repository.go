package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/models"

	"github.com/lib/pq"
)

// VisitRepository defines the interface for visit ledger database operations.
type VisitRepository interface {
	CreateVisit(executor SQLExecutor, visit *models.Visit) (int64, error)
	GetVisitByID(id int64) (*models.Visit, error)
	LockVisit(executor SQLExecutor, id int64) (*models.Visit, error)
	GetVisits(filters models.VisitFilters) ([]models.Visit, int, error) // Visits, total count, error
	GetVisitsByClientID(clientID int64) ([]models.Visit, error)
	CountVisitsByClientID(clientID int64) (int, error)
	GetUpcomingVisits(after time.Time, limit int) ([]models.Visit, error)
	UpdateVisit(executor SQLExecutor, visit *models.Visit) error
	ReplaceVisitItems(executor SQLExecutor, visitID int64, items []models.VisitService) error
	UpdateVisitStatus(executor SQLExecutor, id int64, status models.PaymentStatus) error
	MarkSMSSent(id int64, at time.Time) error
	DeleteVisit(executor SQLExecutor, id int64) error
}

type visitRepository struct {
	db *sql.DB
}

// NewVisitRepository creates a new instance of VisitRepository.
func NewVisitRepository(db *sql.DB) VisitRepository {
	return &visitRepository{db: db}
}

const visitColumns = `v.id, v.client_id, v.visit_date, v.total_amount, v.payment_method, v.payment_status,
	v.loyalty_points_earned, v.discount_applied, v.receptionist_id, v.notes, v.sms_sent, v.sms_sent_at,
	v.created_at, v.updated_at`

const visitSelect = `SELECT ` + visitColumns + `,
	c.first_name, c.last_name, c.phone, c.email, u.first_name, u.last_name
	FROM visits v
	LEFT JOIN clients c ON c.id = v.client_id
	LEFT JOIN users u ON u.id = v.receptionist_id`

var visitSortColumns = map[string]string{
	"date":         "v.visit_date",
	"total_amount": "v.total_amount",
	"created_at":   "v.created_at",
}

func scanVisitRow(s scanner, extra ...interface{}) (*models.Visit, error) {
	v := &models.Visit{}
	var notes sql.NullString
	var smsSentAt sql.NullTime
	dest := []interface{}{
		&v.ID, &v.ClientID, &v.Date, &v.TotalAmount, &v.PaymentMethod, &v.PaymentStatus,
		&v.LoyaltyPointsEarned, &v.DiscountApplied, &v.ReceptionistID, &notes, &v.SMSSent, &smsSentAt,
		&v.CreatedAt, &v.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	v.Notes = stringPtr(notes)
	v.SMSSentAt = timePtr(smsSentAt)
	v.Services = []models.VisitService{}
	return v, nil
}

// scanVisit reads a visitSelect row including the joined client and receptionist.
func scanVisit(s scanner, extra ...interface{}) (*models.Visit, error) {
	var cFirst, cLast, cPhone, cEmail, uFirst, uLast sql.NullString
	joined := []interface{}{&cFirst, &cLast, &cPhone, &cEmail, &uFirst, &uLast}
	v, err := scanVisitRow(s, append(joined, extra...)...)
	if err != nil {
		return nil, err
	}
	if cFirst.Valid {
		v.Client = &models.ClientRef{
			ID:        v.ClientID,
			FirstName: cFirst.String,
			LastName:  cLast.String,
			Phone:     cPhone.String,
			Email:     stringPtr(cEmail),
		}
	}
	if uFirst.Valid {
		v.Receptionist = &models.UserRef{ID: v.ReceptionistID, FirstName: uFirst.String, LastName: uLast.String}
	}
	return v, nil
}

// CreateVisit inserts the visit and its line items. Call it inside a
// transaction so the items and the header commit together.
func (r *visitRepository) CreateVisit(executor SQLExecutor, visit *models.Visit) (int64, error) {
	query := `INSERT INTO visits (client_id, visit_date, total_amount, payment_method, payment_status,
	            loyalty_points_earned, discount_applied, receptionist_id, notes, sms_sent, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10, $10)
	          RETURNING id`

	now := time.Now()
	if visit.Date.IsZero() {
		visit.Date = now
	}
	if visit.PaymentStatus == "" {
		visit.PaymentStatus = models.PaymentStatusCompleted
	}
	visit.CreatedAt, visit.UpdatedAt = now, now

	err := executor.QueryRow(query,
		visit.ClientID, visit.Date, visit.TotalAmount, string(visit.PaymentMethod), string(visit.PaymentStatus),
		visit.LoyaltyPointsEarned, visit.DiscountApplied, visit.ReceptionistID, nullString(visit.Notes), now,
	).Scan(&visit.ID)
	if err != nil {
		return 0, translatePQError(err, "creating visit")
	}

	if err := r.insertItems(executor, visit.ID, visit.Services); err != nil {
		return 0, err
	}
	return visit.ID, nil
}

func (r *visitRepository) insertItems(executor SQLExecutor, visitID int64, items []models.VisitService) error {
	query := `INSERT INTO visit_services (visit_id, service_id, price, staff_id, notes, position)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	for i := range items {
		items[i].VisitID = visitID
		items[i].Position = i
		err := executor.QueryRow(query,
			visitID, items[i].ServiceID, items[i].Price, nullInt64(items[i].StaffID), nullString(items[i].Notes), i,
		).Scan(&items[i].ID)
		if err != nil {
			return translatePQError(err, "creating visit line item")
		}
	}
	return nil
}

// GetVisitByID retrieves a visit with its line items and joined references.
func (r *visitRepository) GetVisitByID(id int64) (*models.Visit, error) {
	visit, err := scanVisit(r.db.QueryRow(visitSelect+` WHERE v.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting visit by ID %d: %v", ErrDatabaseError, id, err)
	}
	visits := []models.Visit{*visit}
	if err := r.loadItems(visits); err != nil {
		return nil, err
	}
	return &visits[0], nil
}

// LockVisit reads the visit header and locks the row for the rest of the
// transaction. Line items are not loaded.
func (r *visitRepository) LockVisit(executor SQLExecutor, id int64) (*models.Visit, error) {
	visit, err := scanVisitRow(executor.QueryRow(`SELECT `+visitColumns+` FROM visits v WHERE v.id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking visit %d: %v", ErrDatabaseError, id, err)
	}
	return visit, nil
}

// GetVisits lists visits matching filters. A PageSize of 0 returns every match.
func (r *visitRepository) GetVisits(filters models.VisitFilters) ([]models.Visit, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + visitColumns + `,
	c.first_name, c.last_name, c.phone, c.email, u.first_name, u.last_name, COUNT(*) OVER() as total_count
	FROM visits v
	LEFT JOIN clients c ON c.id = v.client_id
	LEFT JOIN users u ON u.id = v.receptionist_id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("v.visit_date >= $%d", argCount))
		args = append(args, *filters.StartDate)
		argCount++
	}
	if filters.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("v.visit_date <= $%d", argCount))
		args = append(args, *filters.EndDate)
		argCount++
	}
	if filters.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("v.client_id = $%d", argCount))
		args = append(args, *filters.ClientID)
		argCount++
	}
	if filters.PaymentMethod != nil && *filters.PaymentMethod != "" {
		conditions = append(conditions, fmt.Sprintf("v.payment_method = $%d", argCount))
		args = append(args, *filters.PaymentMethod)
		argCount++
	}
	if filters.PaymentStatus != nil && *filters.PaymentStatus != "" {
		conditions = append(conditions, fmt.Sprintf("v.payment_status = $%d", argCount))
		args = append(args, *filters.PaymentStatus)
		argCount++
	}
	if filters.ServiceID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM visit_services f WHERE f.visit_id = v.id AND f.service_id = $%d)", argCount))
		args = append(args, *filters.ServiceID)
		argCount++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	queryBuilder.WriteString(where)
	filterArgs := len(args)

	sortCol, ok := visitSortColumns[filters.SortBy]
	if !ok {
		sortCol = "v.visit_date"
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s, v.id DESC", sortCol, sortDirection(filters.SortOrder, "DESC")))

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, (filters.Page-1)*filters.PageSize)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying visits: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	visits := []models.Visit{}
	totalCount := 0
	for rows.Next() {
		visit, err := scanVisit(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning visit: %v", ErrDatabaseError, err)
		}
		visits = append(visits, *visit)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating visit rows: %v", ErrDatabaseError, err)
	}
	rows.Close()

	// COUNT(*) OVER() has no row to ride on past the last page.
	if len(visits) == 0 && filters.PageSize > 0 && filters.Page > 1 {
		n, err := countRows(r.db, `SELECT COUNT(*) FROM visits v`+where, "counting visits", args[:filterArgs]...)
		if err != nil {
			return nil, 0, err
		}
		return visits, n, nil
	}

	if err := r.loadItems(visits); err != nil {
		return nil, 0, err
	}
	return visits, totalCount, nil
}

// GetVisitsByClientID returns a client's visit history, newest first.
func (r *visitRepository) GetVisitsByClientID(clientID int64) ([]models.Visit, error) {
	return r.query(visitSelect+` WHERE v.client_id = $1 ORDER BY v.visit_date DESC, v.id DESC`,
		"querying client visits", clientID)
}

// GetUpcomingVisits returns the next non-cancelled visits dated after the given time.
func (r *visitRepository) GetUpcomingVisits(after time.Time, limit int) ([]models.Visit, error) {
	return r.query(visitSelect+` WHERE v.visit_date > $1 AND v.payment_status <> 'cancelled'
	    ORDER BY v.visit_date ASC, v.id ASC LIMIT $2`, "querying upcoming visits", after, limit)
}

func (r *visitRepository) query(query, action string, args ...interface{}) ([]models.Visit, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
	}
	defer rows.Close()

	visits := []models.Visit{}
	for rows.Next() {
		visit, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning visit: %v", ErrDatabaseError, err)
		}
		visits = append(visits, *visit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
	}
	rows.Close()

	if err := r.loadItems(visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// loadItems attaches line items, with joined service and staff names, to visits.
func (r *visitRepository) loadItems(visits []models.Visit) error {
	if len(visits) == 0 {
		return nil
	}
	ids := make([]int64, len(visits))
	index := make(map[int64]int, len(visits))
	for i := range visits {
		ids[i] = visits[i].ID
		index[visits[i].ID] = i
	}

	query := `SELECT vs.id, vs.visit_id, vs.service_id, vs.price, vs.staff_id, vs.notes, vs.position,
	            s.name, s.category, su.first_name, su.last_name
	          FROM visit_services vs
	          LEFT JOIN services s ON s.id = vs.service_id
	          LEFT JOIN users su ON su.id = vs.staff_id
	          WHERE vs.visit_id = ANY($1)
	          ORDER BY vs.visit_id, vs.position`

	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("%w: querying visit line items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.VisitService
		var staffID sql.NullInt64
		var notes, svcName, svcCategory, staffFirst, staffLast sql.NullString
		if err := rows.Scan(
			&item.ID, &item.VisitID, &item.ServiceID, &item.Price, &staffID, &notes, &item.Position,
			&svcName, &svcCategory, &staffFirst, &staffLast,
		); err != nil {
			return fmt.Errorf("%w: scanning visit line item: %v", ErrDatabaseError, err)
		}
		item.StaffID = int64Ptr(staffID)
		item.Notes = stringPtr(notes)
		if svcName.Valid {
			item.Service = &models.ServiceRef{
				ID:       item.ServiceID,
				Name:     svcName.String,
				Category: models.ServiceCategory(svcCategory.String),
			}
		}
		if item.StaffID != nil && staffFirst.Valid {
			item.Staff = &models.UserRef{ID: *item.StaffID, FirstName: staffFirst.String, LastName: staffLast.String}
		}
		if i, ok := index[item.VisitID]; ok {
			visits[i].Services = append(visits[i].Services, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating visit line items: %v", ErrDatabaseError, err)
	}
	return nil
}

// CountVisitsByClientID returns how many visits reference the client.
func (r *visitRepository) CountVisitsByClientID(clientID int64) (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM visits WHERE client_id = $1`, clientID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting visits for client %d: %v", ErrDatabaseError, clientID, err)
	}
	return n, nil
}

// UpdateVisit writes the mutable header fields.
func (r *visitRepository) UpdateVisit(executor SQLExecutor, visit *models.Visit) error {
	query := `UPDATE visits SET
	            visit_date = $1, total_amount = $2, payment_method = $3, payment_status = $4,
	            loyalty_points_earned = $5, notes = $6, updated_at = $7
	          WHERE id = $8`

	visit.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		visit.Date, visit.TotalAmount, string(visit.PaymentMethod), string(visit.PaymentStatus),
		visit.LoyaltyPointsEarned, nullString(visit.Notes), visit.UpdatedAt, visit.ID,
	)
	if err != nil {
		return translatePQError(err, "updating visit")
	}
	return checkRowsAffected(result, "updating visit")
}

// ReplaceVisitItems swaps the visit's line items for items.
func (r *visitRepository) ReplaceVisitItems(executor SQLExecutor, visitID int64, items []models.VisitService) error {
	if _, err := executor.Exec(`DELETE FROM visit_services WHERE visit_id = $1`, visitID); err != nil {
		return translatePQError(err, "deleting visit line items")
	}
	return r.insertItems(executor, visitID, items)
}

// UpdateVisitStatus sets the payment status.
func (r *visitRepository) UpdateVisitStatus(executor SQLExecutor, id int64, status models.PaymentStatus) error {
	result, err := executor.Exec(`UPDATE visits SET payment_status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now(), id)
	if err != nil {
		return translatePQError(err, "updating visit status")
	}
	return checkRowsAffected(result, "updating visit status")
}

// MarkSMSSent records a confirmed thank-you message delivery.
func (r *visitRepository) MarkSMSSent(id int64, at time.Time) error {
	result, err := r.db.Exec(`UPDATE visits SET sms_sent = TRUE, sms_sent_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return translatePQError(err, "marking sms sent")
	}
	return checkRowsAffected(result, "marking sms sent")
}

// DeleteVisit removes the visit. Line items go with it (ON DELETE CASCADE).
func (r *visitRepository) DeleteVisit(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM visits WHERE id = $1`, id)
	if err != nil {
		return translatePQError(err, "deleting visit")
	}
	return checkRowsAffected(result, "deleting visit")
}
