package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/models"
)

// ServiceRepository defines the interface for catalog database operations.
type ServiceRepository interface {
	CreateService(executor SQLExecutor, service *models.Service) (int64, error)
	GetServiceByID(id int64) (*models.Service, error)
	GetServiceByName(name string) (*models.Service, error)
	GetServices(filters models.ServiceFilters) ([]models.Service, error)
	UpdateService(executor SQLExecutor, service *models.Service) error
	UpdateServiceStatus(executor SQLExecutor, id int64, isActive bool) (*models.Service, error)
	GetCategories() ([]string, error)
	GetServiceStats(id int64, start, end *time.Time) (*models.ServiceStats, error)
}

type serviceRepository struct {
	db *sql.DB
}

// NewServiceRepository creates a new instance of ServiceRepository.
func NewServiceRepository(db *sql.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

const serviceColumns = `id, name, description, category, duration, price, loyalty_points_earned, is_active, created_at, updated_at`

var serviceSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"duration":   "duration",
	"category":   "category",
	"created_at": "created_at",
}

func scanService(s scanner) (*models.Service, error) {
	svc := &models.Service{}
	var description sql.NullString
	if err := s.Scan(
		&svc.ID, &svc.Name, &description, &svc.Category, &svc.Duration, &svc.Price,
		&svc.LoyaltyPointsEarned, &svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	svc.Description = stringPtr(description)
	return svc, nil
}

// CreateService inserts a catalog entry.
func (r *serviceRepository) CreateService(executor SQLExecutor, service *models.Service) (int64, error) {
	query := `INSERT INTO services (name, description, category, duration, price, loyalty_points_earned, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	          RETURNING id`

	now := time.Now()
	service.CreatedAt, service.UpdatedAt = now, now
	err := executor.QueryRow(query,
		service.Name, nullString(service.Description), string(service.Category), service.Duration,
		service.Price, service.LoyaltyPointsEarned, service.IsActive, now,
	).Scan(&service.ID)
	if err != nil {
		return 0, translatePQError(err, "creating service")
	}
	return service.ID, nil
}

// GetServiceByID retrieves a service by its ID.
func (r *serviceRepository) GetServiceByID(id int64) (*models.Service, error) {
	svc, err := scanService(r.db.QueryRow(`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting service by ID %d: %v", ErrDatabaseError, id, err)
	}
	return svc, nil
}

// GetServiceByName retrieves a service by its exact name.
func (r *serviceRepository) GetServiceByName(name string) (*models.Service, error) {
	svc, err := scanService(r.db.QueryRow(`SELECT `+serviceColumns+` FROM services WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting service by name %q: %v", ErrDatabaseError, name, err)
	}
	return svc, nil
}

// GetServices lists the catalog with optional category and status filters.
func (r *serviceRepository) GetServices(filters models.ServiceFilters) ([]models.Service, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + serviceColumns + ` FROM services`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Category != nil && *filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *filters.Category)
		argCount++
	}
	if filters.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *filters.IsActive)
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	sortCol, ok := serviceSortColumns[filters.SortBy]
	if !ok {
		sortCol = "name"
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s, id ASC", sortCol, sortDirection(filters.SortOrder, "ASC")))

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying services: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning service: %v", ErrDatabaseError, err)
		}
		services = append(services, *svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating service rows: %v", ErrDatabaseError, err)
	}
	return services, nil
}

// UpdateService writes every editable catalog field.
func (r *serviceRepository) UpdateService(executor SQLExecutor, service *models.Service) error {
	query := `UPDATE services SET
	            name = $1, description = $2, category = $3, duration = $4, price = $5,
	            loyalty_points_earned = $6, is_active = $7, updated_at = $8
	          WHERE id = $9`

	service.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		service.Name, nullString(service.Description), string(service.Category), service.Duration,
		service.Price, service.LoyaltyPointsEarned, service.IsActive, service.UpdatedAt, service.ID,
	)
	if err != nil {
		return translatePQError(err, "updating service")
	}
	return checkRowsAffected(result, "updating service")
}

// UpdateServiceStatus toggles is_active and returns the updated row.
func (r *serviceRepository) UpdateServiceStatus(executor SQLExecutor, id int64, isActive bool) (*models.Service, error) {
	query := `UPDATE services SET is_active = $1, updated_at = $2 WHERE id = $3 RETURNING ` + serviceColumns
	svc, err := scanService(executor.QueryRow(query, isActive, time.Now(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, translatePQError(err, "updating service status")
	}
	return svc, nil
}

// GetCategories returns the distinct categories in use.
func (r *serviceRepository) GetCategories() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT category FROM services ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("%w: scanning category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating category rows: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

// GetServiceStats counts completed visits that include the service. Revenue
// takes the snapshot price of the first matching line item of each visit, and
// daily usage is keyed by the UTC calendar date of the visit.
func (r *serviceRepository) GetServiceStats(id int64, start, end *time.Time) (*models.ServiceStats, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT DISTINCT ON (v.id)
	        TO_CHAR(v.visit_date AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, vs.price
	    FROM visits v
	    JOIN visit_services vs ON vs.visit_id = v.id
	    WHERE vs.service_id = $1 AND v.payment_status = 'completed'`)

	args := []interface{}{id}
	if start != nil {
		args = append(args, *start)
		queryBuilder.WriteString(fmt.Sprintf(" AND v.visit_date >= $%d", len(args)))
	}
	if end != nil {
		args = append(args, *end)
		queryBuilder.WriteString(fmt.Sprintf(" AND v.visit_date <= $%d", len(args)))
	}
	queryBuilder.WriteString(" ORDER BY v.id, vs.position")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying service stats: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	stats := &models.ServiceStats{DailyUsage: map[string]int{}}
	for rows.Next() {
		var day string
		var price float64
		if err := rows.Scan(&day, &price); err != nil {
			return nil, fmt.Errorf("%w: scanning service stats: %v", ErrDatabaseError, err)
		}
		stats.TotalUsage++
		stats.TotalRevenue += price
		stats.DailyUsage[day]++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating service stats: %v", ErrDatabaseError, err)
	}
	if stats.TotalUsage > 0 {
		stats.AverageRevenue = stats.TotalRevenue / float64(stats.TotalUsage)
	}
	return stats, nil
}
