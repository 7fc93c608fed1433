package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"salon_backend/internal/metrics"
	"salon_backend/internal/models"
	"salon_backend/internal/notifications"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"
)

// smsTimeout bounds one thank-you delivery including retries.
const smsTimeout = 30 * time.Second

// --- Visit DTOs ---

// VisitItemRequest is one line item. Price overrides the catalog price when set.
type VisitItemRequest struct {
	ServiceID int64    `json:"service_id" binding:"required"`
	Price     *float64 `json:"price" binding:"omitempty,min=0"`
	StaffID   *int64   `json:"staff_id"`
	Notes     *string  `json:"notes"`
}

type CreateVisitRequest struct {
	ClientID        int64              `json:"client_id" binding:"required"`
	Services        []VisitItemRequest `json:"services" binding:"required,min=1,dive"`
	Date            *string            `json:"date"` // YYYY-MM-DD or RFC3339, defaults to now
	PaymentMethod   string             `json:"payment_method" binding:"required,payment_method"`
	PaymentStatus   string             `json:"payment_status" binding:"omitempty,payment_status"`
	DiscountApplied float64            `json:"discount_applied" binding:"min=0"`
	Notes           *string            `json:"notes"`
	SendSMS         bool               `json:"send_sms"`
}

type UpdateVisitRequest struct {
	Services      []VisitItemRequest `json:"services" binding:"omitempty,dive"`
	Date          *string            `json:"date"`
	PaymentMethod *string            `json:"payment_method" binding:"omitempty,payment_method"`
	PaymentStatus *string            `json:"payment_status" binding:"omitempty,payment_status"`
	Notes         *string            `json:"notes"`
}

// VisitService records visits and keeps the client rollup in step with them.
type VisitService interface {
	CreateVisit(receptionistID int64, req CreateVisitRequest) (*models.Visit, error)
	GetVisitByID(id int64) (*models.Visit, error)
	GetVisits(filters models.VisitFilters) ([]models.Visit, int, error)
	UpdateVisit(id int64, req UpdateVisitRequest) (*models.Visit, error)
	CancelVisit(id int64) (*models.Visit, error)
	DeleteVisit(id int64) error
	ResendSMS(ctx context.Context, id int64) (*models.Visit, error)
	Drain(ctx context.Context) error
}

type visitService struct {
	visitRepo   repositories.VisitRepository
	clientRepo  repositories.ClientRepository
	serviceRepo repositories.ServiceRepository
	tx          repositories.Transactor
	notifier    notifications.Notifier
	dispatch    func(task func())
	inflight    sync.WaitGroup
	now         func() time.Time
}

// NewVisitService creates a new instance of VisitService.
func NewVisitService(
	visitRepo repositories.VisitRepository,
	clientRepo repositories.ClientRepository,
	serviceRepo repositories.ServiceRepository,
	tx repositories.Transactor,
	notifier notifications.Notifier,
) VisitService {
	s := &visitService{
		visitRepo:   visitRepo,
		clientRepo:  clientRepo,
		serviceRepo: serviceRepo,
		tx:          tx,
		notifier:    notifier,
		now:         time.Now,
	}
	s.dispatch = s.goTracked
	return s
}

// goTracked runs task in the background and counts it until it returns.
func (s *visitService) goTracked(task func()) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		task()
	}()
}

// Drain blocks until background SMS sends finish or ctx is done. Call it
// after the HTTP server has stopped accepting requests.
func (s *visitService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pricedItems is the result of resolving line items against the catalog.
type pricedItems struct {
	items  []models.VisitService
	total  float64
	points int
	names  []string
}

// resolveItems looks up every service, rejects missing or inactive ones and
// snapshots price and points. An explicit price, even zero, wins over the
// catalog price.
func (s *visitService) resolveItems(reqs []VisitItemRequest) (*pricedItems, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyVisit
	}
	out := &pricedItems{items: make([]models.VisitService, 0, len(reqs))}
	for _, r := range reqs {
		svc, err := s.serviceRepo.GetServiceByID(r.ServiceID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: %d", ErrServiceNotFound, r.ServiceID)
			}
			return nil, fmt.Errorf("failed to load service %d: %w", r.ServiceID, err)
		}
		if !svc.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrServiceInactive, svc.Name)
		}

		price := svc.Price
		if r.Price != nil {
			if *r.Price < 0 {
				return nil, ErrNegativeAmount
			}
			price = *r.Price
		}
		out.total += price
		out.points += svc.LoyaltyPointsEarned
		out.names = append(out.names, svc.Name)
		out.items = append(out.items, models.VisitService{
			ServiceID: svc.ID,
			Price:     price,
			StaffID:   r.StaffID,
			Notes:     r.Notes,
			Service:   &models.ServiceRef{ID: svc.ID, Name: svc.Name, Category: svc.Category},
		})
	}
	out.total = utils.RoundTo(out.total, 2)
	return out, nil
}

// CreateVisit persists a visit and credits the client in one transaction:
// one more visit, the total added to spend, the points added to the balance.
func (s *visitService) CreateVisit(receptionistID int64, req CreateVisitRequest) (*models.Visit, error) {
	if !models.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, req.PaymentMethod)
	}
	status := models.PaymentStatusCompleted
	if req.PaymentStatus != "" {
		if !models.IsValidPaymentStatus(req.PaymentStatus) {
			return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, req.PaymentStatus)
		}
		status = models.PaymentStatus(req.PaymentStatus)
	}
	if req.DiscountApplied < 0 {
		return nil, ErrNegativeAmount
	}
	date := s.now()
	if d, err := parseOptionalDate(req.Date); err != nil {
		return nil, err
	} else if d != nil {
		date = *d
	}

	if _, err := s.clientRepo.GetClientByID(req.ClientID); err != nil {
		return nil, mapRepoError(err, ErrClientNotFound)
	}
	priced, err := s.resolveItems(req.Services)
	if err != nil {
		return nil, err
	}

	visit := &models.Visit{
		ClientID:            req.ClientID,
		Services:            priced.items,
		Date:                date,
		TotalAmount:         priced.total,
		PaymentMethod:       models.PaymentMethod(req.PaymentMethod),
		PaymentStatus:       status,
		LoyaltyPointsEarned: priced.points,
		DiscountApplied:     req.DiscountApplied,
		ReceptionistID:      receptionistID,
		Notes:               req.Notes,
	}

	var client *models.Client
	err = s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		var err error
		client, err = s.clientRepo.GetClientForUpdate(tx, req.ClientID)
		if err != nil {
			return err
		}
		if _, err := s.visitRepo.CreateVisit(tx, visit); err != nil {
			return err
		}
		client.ApplyRollup(1, visit.TotalAmount, visit.LoyaltyPointsEarned)
		return s.clientRepo.UpdateClientRollup(tx, client)
	})
	if err != nil {
		return nil, mapRepoError(err, ErrClientNotFound)
	}
	metrics.RecordVisitOperation("create")

	if req.SendSMS && client.MarketingConsent {
		target := *client
		visitID, total, names := visit.ID, visit.TotalAmount, priced.names
		s.dispatch(func() {
			ctx, cancel := context.WithTimeout(context.Background(), smsTimeout)
			defer cancel()
			if _, err := s.sendThankYou(ctx, visitID, &target, names, total); err != nil {
				utils.LogError(err, "CreateVisit: thank-you SMS not delivered", map[string]interface{}{"visit_id": visitID})
			}
		})
	}

	return s.reload(visit), nil
}

// reload fetches the stored visit with joined references. If that fails the
// in-memory copy is returned since the write already committed.
func (s *visitService) reload(visit *models.Visit) *models.Visit {
	stored, err := s.visitRepo.GetVisitByID(visit.ID)
	if err != nil {
		utils.LogError(err, "failed to reload visit", map[string]interface{}{"visit_id": visit.ID})
		return visit
	}
	return stored
}

// sendThankYou delivers the message and then flags the visit.
func (s *visitService) sendThankYou(ctx context.Context, visitID int64, client *models.Client, serviceNames []string, total float64) (time.Time, error) {
	msg := notifications.ThankYouMessage(client.FirstName, serviceNames, total)
	if err := s.notifier.SendSMS(ctx, client.Phone, msg); err != nil {
		return time.Time{}, err
	}
	sentAt := s.now()
	if err := s.visitRepo.MarkSMSSent(visitID, sentAt); err != nil {
		return time.Time{}, fmt.Errorf("sms sent but flag not saved: %w", err)
	}
	return sentAt, nil
}

func (s *visitService) GetVisitByID(id int64) (*models.Visit, error) {
	visit, err := s.visitRepo.GetVisitByID(id)
	if err != nil {
		return nil, mapRepoError(err, ErrVisitNotFound)
	}
	return visit, nil
}

func (s *visitService) GetVisits(filters models.VisitFilters) ([]models.Visit, int, error) {
	return s.visitRepo.GetVisits(filters)
}

// UpdateVisit corrects a visit. Only the loyalty points difference is
// applied to the client; visit count and total spent are left untouched.
func (s *visitService) UpdateVisit(id int64, req UpdateVisitRequest) (*models.Visit, error) {
	var priced *pricedItems
	if len(req.Services) > 0 {
		var err error
		if priced, err = s.resolveItems(req.Services); err != nil {
			return nil, err
		}
	}
	if req.PaymentMethod != nil && !models.IsValidPaymentMethod(*req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, *req.PaymentMethod)
	}
	if req.PaymentStatus != nil && !models.IsValidPaymentStatus(*req.PaymentStatus) {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, *req.PaymentStatus)
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return nil, err
	}

	var updated *models.Visit
	err = s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		visit, err := s.visitRepo.LockVisit(tx, id)
		if err != nil {
			return mapRepoError(err, ErrVisitNotFound)
		}
		client, err := s.clientRepo.GetClientForUpdate(tx, visit.ClientID)
		if err != nil {
			return mapRepoError(err, ErrClientNotFound)
		}

		oldPoints := visit.LoyaltyPointsEarned
		if priced != nil {
			visit.TotalAmount = priced.total
			visit.LoyaltyPointsEarned = priced.points
		}
		if date != nil {
			visit.Date = *date
		}
		if req.PaymentMethod != nil {
			visit.PaymentMethod = models.PaymentMethod(*req.PaymentMethod)
		}
		if req.PaymentStatus != nil {
			visit.PaymentStatus = models.PaymentStatus(*req.PaymentStatus)
		}
		if req.Notes != nil {
			visit.Notes = req.Notes
		}

		if err := s.visitRepo.UpdateVisit(tx, visit); err != nil {
			return err
		}
		if priced != nil {
			if err := s.visitRepo.ReplaceVisitItems(tx, visit.ID, priced.items); err != nil {
				return err
			}
		}

		if diff := visit.LoyaltyPointsEarned - oldPoints; diff != 0 {
			client.ApplyRollup(0, 0, diff)
			if err := s.clientRepo.UpdateClientRollup(tx, client); err != nil {
				return err
			}
		}
		updated = visit
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, ErrVisitNotFound)
	}
	metrics.RecordVisitOperation("update")
	return s.reload(updated), nil
}

// CancelVisit voids a visit. A completed visit gives its points back; visit
// count and total spent are kept.
func (s *visitService) CancelVisit(id int64) (*models.Visit, error) {
	var cancelled *models.Visit
	err := s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		visit, err := s.visitRepo.LockVisit(tx, id)
		if err != nil {
			return mapRepoError(err, ErrVisitNotFound)
		}
		if visit.PaymentStatus == models.PaymentStatusCancelled {
			return ErrVisitCancelled
		}
		client, err := s.clientRepo.GetClientForUpdate(tx, visit.ClientID)
		if err != nil {
			return mapRepoError(err, ErrClientNotFound)
		}

		previous := visit.PaymentStatus
		if err := s.visitRepo.UpdateVisitStatus(tx, id, models.PaymentStatusCancelled); err != nil {
			return err
		}
		visit.PaymentStatus = models.PaymentStatusCancelled

		if previous == models.PaymentStatusCompleted {
			client.ApplyRollup(0, 0, -visit.LoyaltyPointsEarned)
			if err := s.clientRepo.UpdateClientRollup(tx, client); err != nil {
				return err
			}
		}
		cancelled = visit
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err, ErrVisitNotFound)
	}
	metrics.RecordVisitOperation("cancel")
	return s.reload(cancelled), nil
}

// DeleteVisit erases a visit and reverses all three rollup fields. The visit
// is removed even when its client no longer exists.
func (s *visitService) DeleteVisit(id int64) error {
	err := s.tx.WithinTx(func(tx repositories.SQLExecutor) error {
		visit, err := s.visitRepo.LockVisit(tx, id)
		if err != nil {
			return mapRepoError(err, ErrVisitNotFound)
		}

		client, err := s.clientRepo.GetClientForUpdate(tx, visit.ClientID)
		switch {
		case err == nil:
			client.ApplyRollup(-1, -visit.TotalAmount, -visit.LoyaltyPointsEarned)
			if err := s.clientRepo.UpdateClientRollup(tx, client); err != nil {
				return err
			}
		case errors.Is(err, repositories.ErrNotFound):
			utils.LogWarn("DeleteVisit: client missing, skipping rollup", map[string]interface{}{"visit_id": id, "client_id": visit.ClientID})
		default:
			return err
		}

		return s.visitRepo.DeleteVisit(tx, id)
	})
	if err != nil {
		return mapRepoError(err, ErrVisitNotFound)
	}
	metrics.RecordVisitOperation("delete")
	return nil
}

// ResendSMS sends the thank-you message again, synchronously.
func (s *visitService) ResendSMS(ctx context.Context, id int64) (*models.Visit, error) {
	visit, err := s.visitRepo.GetVisitByID(id)
	if err != nil {
		return nil, mapRepoError(err, ErrVisitNotFound)
	}
	client, err := s.clientRepo.GetClientByID(visit.ClientID)
	if err != nil {
		return nil, mapRepoError(err, ErrClientNotFound)
	}
	if !client.MarketingConsent {
		return nil, ErrNoMarketingConsent
	}

	ctx, cancel := context.WithTimeout(ctx, smsTimeout)
	defer cancel()
	sentAt, err := s.sendThankYou(ctx, visit.ID, client, visit.ServiceNames(), visit.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to send sms: %w", err)
	}
	visit.SMSSent = true
	visit.SMSSentAt = &sentAt
	return visit, nil
}
