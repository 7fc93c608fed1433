package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
)

// --- Catalog DTOs ---

type CreateServiceRequest struct {
	Name                string  `json:"name" binding:"required"`
	Description         *string `json:"description"`
	Category            string  `json:"category" binding:"omitempty,service_category"`
	Duration            int     `json:"duration" binding:"required,min=5"`
	Price               float64 `json:"price" binding:"min=0"`
	LoyaltyPointsEarned *int    `json:"loyalty_points_earned" binding:"omitempty,min=0"`
}

type UpdateServiceRequest struct {
	Name                *string  `json:"name"`
	Description         *string  `json:"description"`
	Category            *string  `json:"category" binding:"omitempty,service_category"`
	Duration            *int     `json:"duration" binding:"omitempty,min=5"`
	Price               *float64 `json:"price" binding:"omitempty,min=0"`
	LoyaltyPointsEarned *int     `json:"loyalty_points_earned" binding:"omitempty,min=0"`
	IsActive            *bool    `json:"is_active"`
}

type UpdateServiceStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ServiceStatsResponse pairs a service with its sales figures.
type ServiceStatsResponse struct {
	Service *models.ServiceRef   `json:"service"`
	Stats   *models.ServiceStats `json:"stats"`
}

// CatalogService manages the service catalog.
type CatalogService interface {
	CreateService(req CreateServiceRequest) (*models.Service, error)
	GetServiceByID(id int64) (*models.Service, error)
	GetServices(filters models.ServiceFilters) ([]models.Service, error)
	UpdateService(id int64, req UpdateServiceRequest) (*models.Service, error)
	UpdateServiceStatus(id int64, isActive bool) (*models.Service, error)
	GetCategories() ([]string, error)
	GetServiceStats(id int64, startDate, endDate *string) (*ServiceStatsResponse, error)
}

type catalogService struct {
	serviceRepo repositories.ServiceRepository
	tx          repositories.Transactor
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(serviceRepo repositories.ServiceRepository, tx repositories.Transactor) CatalogService {
	return &catalogService{serviceRepo: serviceRepo, tx: tx}
}

// DefaultLoyaltyPoints is one point per 10 currency units, rounded down.
func DefaultLoyaltyPoints(price float64) int {
	return int(math.Floor(price / 10))
}

func (s *catalogService) ensureNameFree(name string, exceptID int64) error {
	existing, err := s.serviceRepo.GetServiceByName(name)
	if err == nil && existing.ID != exceptID {
		return ErrServiceNameExists
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check service name: %w", err)
	}
	return nil
}

func (s *catalogService) CreateService(req CreateServiceRequest) (*models.Service, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if req.Price < 0 {
		return nil, ErrNegativeAmount
	}
	if err := s.ensureNameFree(name, 0); err != nil {
		return nil, err
	}

	category := models.CategoryOther
	if req.Category != "" {
		category = models.ServiceCategory(req.Category)
	}
	points := DefaultLoyaltyPoints(req.Price)
	if req.LoyaltyPointsEarned != nil && *req.LoyaltyPointsEarned > 0 {
		points = *req.LoyaltyPointsEarned
	}

	service := &models.Service{
		Name:                name,
		Description:         req.Description,
		Category:            category,
		Duration:            req.Duration,
		Price:               req.Price,
		LoyaltyPointsEarned: points,
		IsActive:            true,
	}
	err := s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		_, err := s.serviceRepo.CreateService(tx, service)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrServiceNameExists
		}
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return service, nil
}

func (s *catalogService) GetServiceByID(id int64) (*models.Service, error) {
	service, err := s.serviceRepo.GetServiceByID(id)
	if err != nil {
		return nil, mapRepoError(err, ErrServiceNotFound)
	}
	return service, nil
}

func (s *catalogService) GetServices(filters models.ServiceFilters) ([]models.Service, error) {
	return s.serviceRepo.GetServices(filters)
}

// UpdateService applies a partial update. Recorded visits keep their prices.
func (s *catalogService) UpdateService(id int64, req UpdateServiceRequest) (*models.Service, error) {
	service, err := s.serviceRepo.GetServiceByID(id)
	if err != nil {
		return nil, mapRepoError(err, ErrServiceNotFound)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		if err := s.ensureNameFree(name, id); err != nil {
			return nil, err
		}
		service.Name = name
	}
	if req.Description != nil {
		service.Description = req.Description
	}
	if req.Category != nil {
		service.Category = models.ServiceCategory(*req.Category)
	}
	if req.Duration != nil {
		if *req.Duration < models.MinServiceDuration {
			return nil, fmt.Errorf("%w: duration must be at least %d minutes", ErrInvalidInput, models.MinServiceDuration)
		}
		service.Duration = *req.Duration
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, ErrNegativeAmount
		}
		service.Price = *req.Price
	}
	if req.LoyaltyPointsEarned != nil {
		service.LoyaltyPointsEarned = *req.LoyaltyPointsEarned
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	err = s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		return s.serviceRepo.UpdateService(tx, service)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrServiceNameExists
		}
		return nil, mapRepoError(err, ErrServiceNotFound)
	}
	return service, nil
}

func (s *catalogService) UpdateServiceStatus(id int64, isActive bool) (*models.Service, error) {
	var service *models.Service
	err := s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		var err error
		service, err = s.serviceRepo.UpdateServiceStatus(tx, id, isActive)
		return err
	})
	if err != nil {
		return nil, mapRepoError(err, ErrServiceNotFound)
	}
	return service, nil
}

func (s *catalogService) GetCategories() ([]string, error) {
	return s.serviceRepo.GetCategories()
}

// GetServiceStats reports completed usage of a service. Both bounds are optional.
func (s *catalogService) GetServiceStats(id int64, startDate, endDate *string) (*ServiceStatsResponse, error) {
	service, err := s.serviceRepo.GetServiceByID(id)
	if err != nil {
		return nil, mapRepoError(err, ErrServiceNotFound)
	}
	start, end, err := OptionalRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	stats, err := s.serviceRepo.GetServiceStats(id, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to compute service stats: %w", err)
	}
	return &ServiceStatsResponse{
		Service: &models.ServiceRef{
			ID:       service.ID,
			Name:     service.Name,
			Category: service.Category,
			Duration: service.Duration,
			Price:    service.Price,
		},
		Stats: stats,
	}, nil
}
