package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/models"
)

// ClientRepository defines the interface for client-related database operations.
type ClientRepository interface {
	CreateClient(executor SQLExecutor, client *models.Client) (int64, error)
	GetClientByID(id int64) (*models.Client, error)
	GetClientForUpdate(executor SQLExecutor, id int64) (*models.Client, error)
	GetClientByPhone(phone string) (*models.Client, error)
	GetClients(filters models.ClientFilters) ([]models.Client, int, error) // Clients, total count, error
	SearchClients(query string, limit int) ([]models.Client, error)
	GetLoyaltyClients(minPoints int) ([]models.Client, error)
	ListAllClients() ([]models.Client, error)
	UpdateClient(executor SQLExecutor, client *models.Client) error
	UpdateClientRollup(executor SQLExecutor, client *models.Client) error
	DeleteClient(executor SQLExecutor, id int64) error
}

type clientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, first_name, last_name, phone, email, gender, birthdate,
	address_street, address_city, address_state, address_zip, notes, marketing_consent,
	visit_count, total_spent, loyalty_points, membership_level, created_at, updated_at`

// clientSortColumns whitelists ORDER BY targets.
var clientSortColumns = map[string]string{
	"last_name":      "last_name",
	"first_name":     "first_name",
	"created_at":     "created_at",
	"visit_count":    "visit_count",
	"total_spent":    "total_spent",
	"loyalty_points": "loyalty_points",
}

func scanClient(s scanner, extra ...interface{}) (*models.Client, error) {
	c := &models.Client{}
	var email, street, city, state, zip, notes sql.NullString
	var birthdate sql.NullTime
	dest := []interface{}{
		&c.ID, &c.FirstName, &c.LastName, &c.Phone, &email, &c.Gender, &birthdate,
		&street, &city, &state, &zip, &notes, &c.MarketingConsent,
		&c.VisitCount, &c.TotalSpent, &c.LoyaltyPoints, &c.MembershipLevel, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.Email = stringPtr(email)
	c.Birthdate = timePtr(birthdate)
	c.Address = models.Address{
		Street: stringPtr(street),
		City:   stringPtr(city),
		State:  stringPtr(state),
		Zip:    stringPtr(zip),
	}
	c.Notes = stringPtr(notes)
	return c, nil
}

func nullBirthdate(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// CreateClient inserts a new client with a fresh rollup.
func (r *clientRepository) CreateClient(executor SQLExecutor, client *models.Client) (int64, error) {
	query := `INSERT INTO clients (first_name, last_name, phone, email, gender, birthdate,
	            address_street, address_city, address_state, address_zip, notes, marketing_consent,
	            visit_count, total_spent, loyalty_points, membership_level, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
	          RETURNING id`

	now := time.Now()
	client.CreatedAt, client.UpdatedAt = now, now
	if client.Gender == "" {
		client.Gender = models.GenderPreferNotToSay
	}
	client.RefreshMembership()

	err := executor.QueryRow(query,
		client.FirstName, client.LastName, client.Phone, nullString(client.Email), string(client.Gender),
		nullBirthdate(client.Birthdate), nullString(client.Address.Street), nullString(client.Address.City),
		nullString(client.Address.State), nullString(client.Address.Zip), nullString(client.Notes),
		client.MarketingConsent, client.VisitCount, client.TotalSpent, client.LoyaltyPoints,
		string(client.MembershipLevel), now,
	).Scan(&client.ID)
	if err != nil {
		return 0, translatePQError(err, "creating client")
	}
	return client.ID, nil
}

// GetClientByID retrieves a client by their ID.
func (r *clientRepository) GetClientByID(id int64) (*models.Client, error) {
	return r.getOne(r.db, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
}

// GetClientForUpdate reads a client and locks its row until the surrounding
// transaction ends.
func (r *clientRepository) GetClientForUpdate(executor SQLExecutor, id int64) (*models.Client, error) {
	return r.getOne(executor, `SELECT `+clientColumns+` FROM clients WHERE id = $1 FOR UPDATE`, id)
}

// GetClientByPhone retrieves a client by their phone number.
func (r *clientRepository) GetClientByPhone(phone string) (*models.Client, error) {
	return r.getOne(r.db, `SELECT `+clientColumns+` FROM clients WHERE phone = $1`, phone)
}

func (r *clientRepository) getOne(executor SQLExecutor, query string, arg interface{}) (*models.Client, error) {
	client, err := scanClient(executor.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting client (%v): %v", ErrDatabaseError, arg, err)
	}
	return client, nil
}

// GetClients retrieves a page of clients. Search is a case-insensitive
// regular expression over first name, last name, phone and email.
func (r *clientRepository) GetClients(filters models.ClientFilters) ([]models.Client, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + clientColumns + `, COUNT(*) OVER() as total_count FROM clients`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(first_name ~* $%d OR last_name ~* $%d OR phone ~* $%d OR COALESCE(email, '') ~* $%d)",
			argCount, argCount, argCount, argCount))
		args = append(args, *filters.Search)
		argCount++
	}
	if filters.MembershipLevel != nil && *filters.MembershipLevel != "" {
		conditions = append(conditions, fmt.Sprintf("membership_level = $%d", argCount))
		args = append(args, string(*filters.MembershipLevel))
		argCount++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	queryBuilder.WriteString(where)
	filterArgs := len(args)

	sortCol, ok := clientSortColumns[filters.SortBy]
	if !ok {
		sortCol = "last_name"
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s, id ASC", sortCol, sortDirection(filters.SortOrder, "ASC")))

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
		return nil, 0, translatePQError(err, "querying clients")
	}
	defer rows.Close()

	clients := []models.Client{}
	totalCount := 0
	for rows.Next() {
		client, err := scanClient(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
		}
		clients = append(clients, *client)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, translatePQError(err, "iterating client rows")
	}
	rows.Close()

	// COUNT(*) OVER() has no row to ride on past the last page.
	if len(clients) == 0 && filters.PageSize > 0 && filters.Page > 1 {
		totalCount, err = countRows(r.db, `SELECT COUNT(*) FROM clients`+where, "counting clients", args[:filterArgs]...)
		if err != nil {
			return nil, 0, err
		}
	}
	return clients, totalCount, nil
}

// SearchClients is the quick lookup used by the front desk: a regex over
// name and phone, capped at limit rows.
func (r *clientRepository) SearchClients(query string, limit int) ([]models.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients
	      WHERE first_name ~* $1 OR last_name ~* $1 OR phone ~* $1
	      ORDER BY last_name ASC, first_name ASC
	      LIMIT $2`
	return r.list(q, "searching clients", query, limit)
}

// GetLoyaltyClients lists clients holding at least minPoints, richest first.
func (r *clientRepository) GetLoyaltyClients(minPoints int) ([]models.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients WHERE loyalty_points >= $1 ORDER BY loyalty_points DESC, id ASC`
	return r.list(q, "querying loyalty clients", minPoints)
}

// ListAllClients returns every client, used by exports.
func (r *clientRepository) ListAllClients() ([]models.Client, error) {
	return r.list(`SELECT `+clientColumns+` FROM clients ORDER BY id ASC`, "listing clients")
}

func (r *clientRepository) list(query, action string, args ...interface{}) ([]models.Client, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, translatePQError(err, action)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePQError(err, action)
	}
	return clients, nil
}

// UpdateClient writes the profile fields. The rollup is left alone.
func (r *clientRepository) UpdateClient(executor SQLExecutor, client *models.Client) error {
	query := `UPDATE clients SET
	            first_name = $1, last_name = $2, phone = $3, email = $4, gender = $5, birthdate = $6,
	            address_street = $7, address_city = $8, address_state = $9, address_zip = $10,
	            notes = $11, marketing_consent = $12, updated_at = $13
	          WHERE id = $14`

	client.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		client.FirstName, client.LastName, client.Phone, nullString(client.Email), string(client.Gender),
		nullBirthdate(client.Birthdate), nullString(client.Address.Street), nullString(client.Address.City),
		nullString(client.Address.State), nullString(client.Address.Zip), nullString(client.Notes),
		client.MarketingConsent, client.UpdatedAt, client.ID,
	)
	if err != nil {
		return translatePQError(err, "updating client")
	}
	return checkRowsAffected(result, "updating client")
}

// UpdateClientRollup persists visit_count, total_spent, loyalty_points and
// membership_level as computed by the caller.
func (r *clientRepository) UpdateClientRollup(executor SQLExecutor, client *models.Client) error {
	query := `UPDATE clients SET
	            visit_count = $1, total_spent = $2, loyalty_points = $3, membership_level = $4, updated_at = $5
	          WHERE id = $6`

	client.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		client.VisitCount, client.TotalSpent, client.LoyaltyPoints, string(client.MembershipLevel),
		client.UpdatedAt, client.ID,
	)
	if err != nil {
		return translatePQError(err, "updating client rollup")
	}
	return checkRowsAffected(result, "updating client rollup")
}

// DeleteClient removes a client. Clients referenced by visits fail with ErrForeignKey.
func (r *clientRepository) DeleteClient(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return translatePQError(err, "deleting client")
	}
	return checkRowsAffected(result, "deleting client")
}
