package models

import "time"

// ServiceCategory groups catalog services.
type ServiceCategory string

const (
	CategoryHair    ServiceCategory = "hair"
	CategoryFacial  ServiceCategory = "facial"
	CategoryMassage ServiceCategory = "massage"
	CategoryNails   ServiceCategory = "nails"
	CategoryMakeup  ServiceCategory = "makeup"
	CategorySpa     ServiceCategory = "spa"
	CategoryOther   ServiceCategory = "other"
)

// IsValidServiceCategory checks if the provided string is a known category.
func IsValidServiceCategory(category string) bool {
	switch ServiceCategory(category) {
	case CategoryHair, CategoryFacial, CategoryMassage, CategoryNails,
		CategoryMakeup, CategorySpa, CategoryOther:
		return true
	default:
		return false
	}
}

// MinServiceDuration is the shortest bookable service, in minutes.
const MinServiceDuration = 5

// Service is a sellable catalog entry.
type Service struct {
	ID                  int64           `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	Description         *string         `json:"description,omitempty" db:"description"`
	Category            ServiceCategory `json:"category" db:"category"`
	Duration            int             `json:"duration" db:"duration"` // minutes
	Price               float64         `json:"price" db:"price"`
	LoyaltyPointsEarned int             `json:"loyalty_points_earned" db:"loyalty_points_earned"`
	IsActive            bool            `json:"is_active" db:"is_active"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// ServiceRef is the subset of service fields embedded in visit line items.
type ServiceRef struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Category ServiceCategory `json:"category"`
	Duration int             `json:"duration,omitempty"`
	Price    float64         `json:"price,omitempty"`
}

// ServiceFilters defines the available filters for listing services.
type ServiceFilters struct {
	Category  *string
	IsActive  *bool
	SortBy    string // name, price, duration, category, created_at
	SortOrder string
}

// ServiceStats summarises how a single service sold over a period.
type ServiceStats struct {
	TotalUsage     int            `json:"total_usage"`
	TotalRevenue   float64        `json:"total_revenue"`
	AverageRevenue float64        `json:"average_revenue"`
	DailyUsage     map[string]int `json:"daily_usage"`
}
