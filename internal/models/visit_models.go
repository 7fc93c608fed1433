package models

import "time"

// PaymentMethod defines how a visit was paid.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentCreditCard  PaymentMethod = "credit_card"
	PaymentDebitCard   PaymentMethod = "debit_card"
	PaymentMobileMoney PaymentMethod = "mobile_money"
	PaymentOther       PaymentMethod = "other"
)

// IsValidPaymentMethod checks if the provided string is a known payment method.
func IsValidPaymentMethod(method string) bool {
	switch PaymentMethod(method) {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentMobileMoney, PaymentOther:
		return true
	default:
		return false
	}
}

// PaymentStatus is the lifecycle state of a visit.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// IsValidPaymentStatus checks if the provided string is a known payment status.
func IsValidPaymentStatus(status string) bool {
	switch PaymentStatus(status) {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusRefunded, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

// VisitService is one line item of a visit. Price is the sale-time snapshot.
type VisitService struct {
	ID        int64       `json:"id" db:"id"`
	VisitID   int64       `json:"visit_id" db:"visit_id"`
	ServiceID int64       `json:"service_id" db:"service_id"`
	Price     float64     `json:"price" db:"price"`
	StaffID   *int64      `json:"staff_id,omitempty" db:"staff_id"`
	Notes     *string     `json:"notes,omitempty" db:"notes"`
	Position  int         `json:"-" db:"position"`
	Service   *ServiceRef `json:"service,omitempty"`
	Staff     *UserRef    `json:"staff,omitempty"`
}

// Visit is a single recorded transaction for one client.
type Visit struct {
	ID                  int64          `json:"id" db:"id"`
	ClientID            int64          `json:"client_id" db:"client_id"`
	Services            []VisitService `json:"services"`
	Date                time.Time      `json:"date" db:"visit_date"`
	TotalAmount         float64        `json:"total_amount" db:"total_amount"`
	PaymentMethod       PaymentMethod  `json:"payment_method" db:"payment_method"`
	PaymentStatus       PaymentStatus  `json:"payment_status" db:"payment_status"`
	LoyaltyPointsEarned int            `json:"loyalty_points_earned" db:"loyalty_points_earned"`
	DiscountApplied     float64        `json:"discount_applied" db:"discount_applied"`
	ReceptionistID      int64          `json:"receptionist_id" db:"receptionist_id"`
	Notes               *string        `json:"notes,omitempty" db:"notes"`
	SMSSent             bool           `json:"sms_sent" db:"sms_sent"`
	SMSSentAt           *time.Time     `json:"sms_sent_at,omitempty" db:"sms_sent_at"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
	Client              *ClientRef     `json:"client,omitempty"`
	Receptionist        *UserRef       `json:"receptionist,omitempty"`
}

// ServiceNames lists the names of the line-item services in order, skipping
// items whose service was not joined.
func (v *Visit) ServiceNames() []string {
	names := make([]string, 0, len(v.Services))
	for _, item := range v.Services {
		if item.Service != nil && item.Service.Name != "" {
			names = append(names, item.Service.Name)
		}
	}
	return names
}

// VisitFilters defines the available filters for querying visits.
type VisitFilters struct {
	StartDate     *time.Time
	EndDate       *time.Time
	ClientID      *int64
	PaymentMethod *string
	PaymentStatus *string
	ServiceID     *int64
	SortBy        string // date, total_amount
	SortOrder     string
	Page          int
	PageSize      int
}
