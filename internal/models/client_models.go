package models

import "time"

// Gender values accepted on a client profile.
type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer not to say"
)

// IsValidGender checks if the provided string is a known gender value.
func IsValidGender(g string) bool {
	switch Gender(g) {
	case GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay:
		return true
	default:
		return false
	}
}

// Address is the postal address of a client.
type Address struct {
	Street *string `json:"street,omitempty"`
	City   *string `json:"city,omitempty"`
	State  *string `json:"state,omitempty"`
	Zip    *string `json:"zip,omitempty"`
}

// Client represents a customer of the salon together with the accounting
// rollup maintained from their visits.
type Client struct {
	ID               int64           `json:"id" db:"id"`
	FirstName        string          `json:"first_name" db:"first_name"`
	LastName         string          `json:"last_name" db:"last_name"`
	Phone            string          `json:"phone" db:"phone"`
	Email            *string         `json:"email,omitempty" db:"email"`
	Gender           Gender          `json:"gender" db:"gender"`
	Birthdate        *time.Time      `json:"birthdate,omitempty" db:"birthdate"`
	Address          Address         `json:"address"`
	Notes            *string         `json:"notes,omitempty" db:"notes"`
	MarketingConsent bool            `json:"marketing_consent" db:"marketing_consent"`
	VisitCount       int             `json:"visit_count" db:"visit_count"`
	TotalSpent       float64         `json:"total_spent" db:"total_spent"`
	LoyaltyPoints    int             `json:"loyalty_points" db:"loyalty_points"`
	MembershipLevel  MembershipLevel `json:"membership_level" db:"membership_level"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// FullName returns "First Last".
func (c *Client) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ClientRef is the subset of client fields embedded in visit responses.
type ClientRef struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email,omitempty"`
}

// ClientFilters defines the available filters for listing clients.
type ClientFilters struct {
	Search          *string
	MembershipLevel *MembershipLevel
	SortBy          string // last_name, first_name, created_at, visit_count, total_spent, loyalty_points
	SortOrder       string // asc or desc
	Page            int
	PageSize        int
}
