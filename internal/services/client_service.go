package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
)

// DuplicatePhoneError is returned when creating a client whose phone number
// is already registered. Existing holds that client.
type DuplicatePhoneError struct {
	Existing *models.Client
}

func (e *DuplicatePhoneError) Error() string { return ErrPhoneExists.Error() }
func (e *DuplicatePhoneError) Unwrap() error { return ErrPhoneExists }

// --- Client DTOs ---

type AddressRequest struct {
	Street *string `json:"street"`
	City   *string `json:"city"`
	State  *string `json:"state"`
	Zip    *string `json:"zip"`
}

type CreateClientRequest struct {
	FirstName        string          `json:"first_name" binding:"required"`
	LastName         string          `json:"last_name" binding:"required"`
	Phone            string          `json:"phone" binding:"required"`
	Email            *string         `json:"email" binding:"omitempty,email"`
	Gender           string          `json:"gender" binding:"omitempty,gender"`
	Birthdate        *string         `json:"birthdate"` // YYYY-MM-DD
	Address          *AddressRequest `json:"address"`
	Notes            *string         `json:"notes"`
	MarketingConsent bool            `json:"marketing_consent"`
}

type UpdateClientRequest struct {
	FirstName        *string         `json:"first_name"`
	LastName         *string         `json:"last_name"`
	Phone            *string         `json:"phone"`
	Email            *string         `json:"email" binding:"omitempty,email"`
	Gender           *string         `json:"gender" binding:"omitempty,gender"`
	Birthdate        *string         `json:"birthdate"`
	Address          *AddressRequest `json:"address"`
	Notes            *string         `json:"notes"`
	MarketingConsent *bool           `json:"marketing_consent"`
}

// UpdateLoyaltyRequest either sets the balance (Adjustment false) or adds a
// signed amount to it (Adjustment true).
type UpdateLoyaltyRequest struct {
	Points     *int `json:"points" binding:"required"`
	Adjustment bool `json:"adjustment"`
}

// ClientDetails is a client with their visit history.
type ClientDetails struct {
	Client *models.Client `json:"client"`
	Visits []models.Visit `json:"visits"`
}

// ClientSearchLimit caps quick search results.
const ClientSearchLimit = 10

// ClientService manages the client ledger outside of visit cascades.
type ClientService interface {
	CreateClient(req CreateClientRequest) (*models.Client, error)
	GetClientByID(clientID int64) (*ClientDetails, error)
	GetClients(filters models.ClientFilters) ([]models.Client, int, error)
	UpdateClient(clientID int64, req UpdateClientRequest) (*models.Client, error)
	SearchClients(query string) ([]models.Client, error)
	GetLoyaltyClients(minPoints int) ([]models.Client, error)
	UpdateLoyalty(clientID int64, req UpdateLoyaltyRequest) (*models.Client, error)
	DeleteClient(clientID int64) error
}

type clientService struct {
	clientRepo repositories.ClientRepository
	visitRepo  repositories.VisitRepository
	tx         repositories.Transactor
}

// NewClientService creates a new instance of ClientService.
func NewClientService(clientRepo repositories.ClientRepository, visitRepo repositories.VisitRepository, tx repositories.Transactor) ClientService {
	return &clientService{clientRepo: clientRepo, visitRepo: visitRepo, tx: tx}
}

func parseBirthdate(s *string) (*time.Time, error) {
	t, err := parseOptionalDate(s)
	if err != nil {
		return nil, err
	}
	if t != nil && t.After(time.Now()) {
		return nil, fmt.Errorf("%w: birthdate cannot be in the future", ErrInvalidInput)
	}
	return t, nil
}

func applyAddress(dst *models.Address, req *AddressRequest) {
	if req == nil {
		return
	}
	dst.Street = req.Street
	dst.City = req.City
	dst.State = req.State
	dst.Zip = req.Zip
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	e := strings.ToLower(strings.TrimSpace(*email))
	if e == "" {
		return nil
	}
	return &e
}

func (s *clientService) CreateClient(req CreateClientRequest) (*models.Client, error) {
	phone := strings.TrimSpace(req.Phone)
	existing, err := s.clientRepo.GetClientByPhone(phone)
	if err == nil {
		return nil, &DuplicatePhoneError{Existing: existing}
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check phone uniqueness: %w", err)
	}

	birthdate, err := parseBirthdate(req.Birthdate)
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Phone:            phone,
		Email:            normalizeEmail(req.Email),
		Gender:           models.Gender(req.Gender),
		Birthdate:        birthdate,
		Notes:            req.Notes,
		MarketingConsent: req.MarketingConsent,
	}
	applyAddress(&client.Address, req.Address)

	err = s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		_, err := s.clientRepo.CreateClient(tx, client)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrPhoneExists
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClientByID(clientID int64) (*ClientDetails, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		return nil, mapRepoError(err, ErrClientNotFound)
	}
	visits, err := s.visitRepo.GetVisitsByClientID(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load visit history: %w", err)
	}
	return &ClientDetails{Client: client, Visits: visits}, nil
}

func (s *clientService) GetClients(filters models.ClientFilters) ([]models.Client, int, error) {
	clients, total, err := s.clientRepo.GetClients(filters)
	if err != nil {
		return nil, 0, mapRepoError(err, ErrClientNotFound)
	}
	return clients, total, nil
}

func (s *clientService) UpdateClient(clientID int64, req UpdateClientRequest) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		return nil, mapRepoError(err, ErrClientNotFound)
	}

	if req.FirstName != nil {
		if strings.TrimSpace(*req.FirstName) == "" {
			return nil, fmt.Errorf("%w: first name cannot be empty", ErrInvalidInput)
		}
		client.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		if strings.TrimSpace(*req.LastName) == "" {
			return nil, fmt.Errorf("%w: last name cannot be empty", ErrInvalidInput)
		}
		client.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			return nil, fmt.Errorf("%w: phone cannot be empty", ErrInvalidInput)
		}
		if phone != client.Phone {
			other, err := s.clientRepo.GetClientByPhone(phone)
			if err == nil && other.ID != clientID {
				return nil, ErrPhoneExists
			}
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("failed to check phone uniqueness: %w", err)
			}
		}
		client.Phone = phone
	}
	if req.Email != nil {
		client.Email = normalizeEmail(req.Email)
	}
	if req.Gender != nil {
		client.Gender = models.Gender(*req.Gender)
	}
	if req.Birthdate != nil {
		birthdate, err := parseBirthdate(req.Birthdate)
		if err != nil {
			return nil, err
		}
		client.Birthdate = birthdate
	}
	applyAddress(&client.Address, req.Address)
	if req.Notes != nil {
		client.Notes = req.Notes
	}
	if req.MarketingConsent != nil {
		client.MarketingConsent = *req.MarketingConsent
	}

	err = s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		return s.clientRepo.UpdateClient(tx, client)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrPhoneExists
		}
		return nil, mapRepoError(err, ErrClientNotFound)
	}
	return client, nil
}

func (s *clientService) SearchClients(query string) ([]models.Client, error) {
	clients, err := s.clientRepo.SearchClients(query, ClientSearchLimit)
	if err != nil {
		return nil, mapRepoError(err, ErrClientNotFound)
	}
	return clients, nil
}

func (s *clientService) GetLoyaltyClients(minPoints int) ([]models.Client, error) {
	if minPoints < 0 {
		minPoints = 0
	}
	return s.clientRepo.GetLoyaltyClients(minPoints)
}

// UpdateLoyalty sets or adjusts the points balance under a row lock.
// The balance never goes below zero and membership is recomputed.
func (s *clientService) UpdateLoyalty(clientID int64, req UpdateLoyaltyRequest) (*models.Client, error) {
	if req.Points == nil {
		return nil, ErrLoyaltyUpdateEmpty
	}
	var updated *models.Client
	err := s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		client, err := s.clientRepo.GetClientForUpdate(tx, clientID)
		if err != nil {
			return err
		}
		if req.Adjustment {
			client.ApplyRollup(0, 0, *req.Points)
		} else {
			client.SetLoyaltyPoints(*req.Points)
		}
		if err := s.clientRepo.UpdateClientRollup(tx, client); err != nil {
			return err
		}
		updated = client
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, ErrClientNotFound)
	}
	return updated, nil
}

// DeleteClient removes a client without visit history.
func (s *clientService) DeleteClient(clientID int64) error {
	if _, err := s.clientRepo.GetClientByID(clientID); err != nil {
		return mapRepoError(err, ErrClientNotFound)
	}
	n, err := s.visitRepo.CountVisitsByClientID(clientID)
	if err != nil {
		return fmt.Errorf("failed to count client visits: %w", err)
	}
	if n > 0 {
		return ErrClientHasVisits
	}
	err = s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		return s.clientRepo.DeleteClient(tx, clientID)
	})
	if errors.Is(err, repositories.ErrForeignKey) {
		// a visit was recorded between the count and the delete
		return ErrClientHasVisits
	}
	return mapRepoError(err, ErrClientNotFound)
}
