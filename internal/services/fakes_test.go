package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
)

// fakeTx runs the callback without a real transaction.
type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(fn func(tx repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

// --- clients ---

type fakeClientRepo struct {
	clients map[int64]models.Client
	nextID  int64
	err     error
}

func newFakeClientRepo(clients ...models.Client) *fakeClientRepo {
	r := &fakeClientRepo{clients: map[int64]models.Client{}}
	for _, c := range clients {
		r.clients[c.ID] = c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *fakeClientRepo) CreateClient(_ repositories.SQLExecutor, c *models.Client) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	for _, existing := range r.clients {
		if existing.Phone == c.Phone {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	c.ID = r.nextID
	c.MembershipLevel = models.MembershipStandard
	r.clients[c.ID] = *c
	return c.ID, nil
}

func (r *fakeClientRepo) GetClientByID(id int64) (*models.Client, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *fakeClientRepo) GetClientForUpdate(_ repositories.SQLExecutor, id int64) (*models.Client, error) {
	return r.GetClientByID(id)
}

func (r *fakeClientRepo) GetClientByPhone(phone string) (*models.Client, error) {
	for _, c := range r.clients {
		if c.Phone == phone {
			c := c
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeClientRepo) GetClients(filters models.ClientFilters) ([]models.Client, int, error) {
	all, _ := r.ListAllClients()
	return all, len(all), r.err
}

func (r *fakeClientRepo) SearchClients(query string, limit int) ([]models.Client, error) {
	var out []models.Client
	for _, c := range r.clients {
		if strings.Contains(strings.ToLower(c.FullName()+" "+c.Phone), strings.ToLower(query)) {
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeClientRepo) GetLoyaltyClients(minPoints int) ([]models.Client, error) {
	var out []models.Client
	for _, c := range r.clients {
		if c.LoyaltyPoints >= minPoints {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) ListAllClients() ([]models.Client, error) {
	out := make([]models.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeClientRepo) UpdateClient(_ repositories.SQLExecutor, c *models.Client) error {
	if _, ok := r.clients[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.clients[c.ID] = *c
	return nil
}

func (r *fakeClientRepo) UpdateClientRollup(_ repositories.SQLExecutor, c *models.Client) error {
	stored, ok := r.clients[c.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.VisitCount = c.VisitCount
	stored.TotalSpent = c.TotalSpent
	stored.LoyaltyPoints = c.LoyaltyPoints
	stored.MembershipLevel = c.MembershipLevel
	r.clients[c.ID] = stored
	return nil
}

func (r *fakeClientRepo) DeleteClient(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.clients[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.clients, id)
	return nil
}

// --- services ---

type fakeServiceRepo struct {
	services map[int64]models.Service
	nextID   int64
	stats    *models.ServiceStats
	gotStart *time.Time
	gotEnd   *time.Time
}

func newFakeServiceRepo(services ...models.Service) *fakeServiceRepo {
	r := &fakeServiceRepo{services: map[int64]models.Service{}}
	for _, s := range services {
		r.services[s.ID] = s
		if s.ID > r.nextID {
			r.nextID = s.ID
		}
	}
	return r
}

func (r *fakeServiceRepo) CreateService(_ repositories.SQLExecutor, s *models.Service) (int64, error) {
	r.nextID++
	s.ID = r.nextID
	r.services[s.ID] = *s
	return s.ID, nil
}

func (r *fakeServiceRepo) GetServiceByID(id int64) (*models.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &s, nil
}

func (r *fakeServiceRepo) GetServiceByName(name string) (*models.Service, error) {
	for _, s := range r.services {
		if strings.EqualFold(s.Name, name) {
			s := s
			return &s, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeServiceRepo) GetServices(filters models.ServiceFilters) ([]models.Service, error) {
	out := make([]models.Service, 0, len(r.services))
	for _, s := range r.services {
		if filters.IsActive != nil && s.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeServiceRepo) UpdateService(_ repositories.SQLExecutor, s *models.Service) error {
	if _, ok := r.services[s.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.services[s.ID] = *s
	return nil
}

func (r *fakeServiceRepo) UpdateServiceStatus(_ repositories.SQLExecutor, id int64, isActive bool) (*models.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	s.IsActive = isActive
	r.services[id] = s
	return &s, nil
}

func (r *fakeServiceRepo) GetCategories() ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, s := range r.services {
		if !seen[string(s.Category)] {
			seen[string(s.Category)] = true
			out = append(out, string(s.Category))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeServiceRepo) GetServiceStats(id int64, start, end *time.Time) (*models.ServiceStats, error) {
	r.gotStart, r.gotEnd = start, end
	if r.stats != nil {
		return r.stats, nil
	}
	return &models.ServiceStats{DailyUsage: map[string]int{}}, nil
}

// --- visits ---

type fakeVisitRepo struct {
	mu        sync.Mutex
	visits    map[int64]models.Visit
	nextID    int64
	upcoming  []models.Visit
	lastQuery models.VisitFilters
	smsMarked map[int64]time.Time
	reloadErr error
}

func newFakeVisitRepo(visits ...models.Visit) *fakeVisitRepo {
	r := &fakeVisitRepo{visits: map[int64]models.Visit{}, smsMarked: map[int64]time.Time{}}
	for _, v := range visits {
		r.visits[v.ID] = v
		if v.ID > r.nextID {
			r.nextID = v.ID
		}
	}
	return r
}

func (r *fakeVisitRepo) CreateVisit(_ repositories.SQLExecutor, v *models.Visit) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	v.ID = r.nextID
	for i := range v.Services {
		v.Services[i].VisitID = v.ID
		v.Services[i].Position = i
	}
	r.visits[v.ID] = *v
	return v.ID, nil
}

func (r *fakeVisitRepo) GetVisitByID(id int64) (*models.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reloadErr != nil {
		return nil, r.reloadErr
	}
	v, ok := r.visits[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if at, sent := r.smsMarked[id]; sent {
		v.SMSSent = true
		v.SMSSentAt = &at
	}
	return &v, nil
}

func (r *fakeVisitRepo) LockVisit(_ repositories.SQLExecutor, id int64) (*models.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visits[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &v, nil
}

func (r *fakeVisitRepo) GetVisits(filters models.VisitFilters) ([]models.Visit, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = filters
	var out []models.Visit
	for _, v := range r.visits {
		if filters.StartDate != nil && v.Date.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && v.Date.After(*filters.EndDate) {
			continue
		}
		if filters.ClientID != nil && v.ClientID != *filters.ClientID {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	total := len(out)
	if filters.PageSize > 0 && len(out) > filters.PageSize {
		out = out[:filters.PageSize]
	}
	return out, total, nil
}

func (r *fakeVisitRepo) GetVisitsByClientID(clientID int64) ([]models.Visit, error) {
	visits, _, err := r.GetVisits(models.VisitFilters{ClientID: &clientID})
	return visits, err
}

func (r *fakeVisitRepo) CountVisitsByClientID(clientID int64) (int, error) {
	visits, err := r.GetVisitsByClientID(clientID)
	return len(visits), err
}

func (r *fakeVisitRepo) GetUpcomingVisits(after time.Time, limit int) ([]models.Visit, error) {
	return r.upcoming, nil
}

func (r *fakeVisitRepo) UpdateVisit(_ repositories.SQLExecutor, v *models.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.visits[v.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	v.Services = stored.Services
	r.visits[v.ID] = *v
	return nil
}

func (r *fakeVisitRepo) ReplaceVisitItems(_ repositories.SQLExecutor, visitID int64, items []models.VisitService) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.visits[visitID]
	v.Services = items
	r.visits[visitID] = v
	return nil
}

func (r *fakeVisitRepo) UpdateVisitStatus(_ repositories.SQLExecutor, id int64, status models.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visits[id]
	if !ok {
		return repositories.ErrNotFound
	}
	v.PaymentStatus = status
	r.visits[id] = v
	return nil
}

func (r *fakeVisitRepo) MarkSMSSent(id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.smsMarked[id] = at
	return nil
}

func (r *fakeVisitRepo) DeleteVisit(_ repositories.SQLExecutor, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.visits[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.visits, id)
	return nil
}

// --- users ---

type fakeAuthRepo struct {
	users     map[int64]models.User
	hashes    map[int64]string
	nextID    int64
	loginErr  error
	lastLogin map[int64]time.Time
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: map[int64]models.User{}, hashes: map[int64]string{}, lastLogin: map[int64]time.Time{}}
}

func (r *fakeAuthRepo) CreateUser(_ repositories.SQLExecutor, u *models.User, hash string) (int64, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = *u
	r.hashes[u.ID] = hash
	return u.ID, nil
}

func (r *fakeAuthRepo) FindUserByEmail(email string) (*models.User, string, error) {
	for id, u := range r.users {
		if u.Email == strings.ToLower(email) {
			u := u
			return &u, r.hashes[id], nil
		}
	}
	return nil, "", repositories.ErrNotFound
}

func (r *fakeAuthRepo) FindUserByID(id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *fakeAuthRepo) GetPasswordHashByID(id int64) (string, error) {
	h, ok := r.hashes[id]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return h, nil
}

func (r *fakeAuthRepo) UpdatePassword(_ repositories.SQLExecutor, id int64, hash string) error {
	if _, ok := r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	r.hashes[id] = hash
	return nil
}

func (r *fakeAuthRepo) UpdateUserStatus(_ repositories.SQLExecutor, id int64, isActive bool) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.IsActive = isActive
	r.users[id] = u
	return nil
}

func (r *fakeAuthRepo) UpdateLastLogin(_ repositories.SQLExecutor, id int64, at time.Time) error {
	if r.loginErr != nil {
		return r.loginErr
	}
	r.lastLogin[id] = at
	return nil
}

func (r *fakeAuthRepo) ListUsers() ([]models.User, error) {
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAuthRepo) CountUsers() (int, error) { return len(r.users), nil }

// --- reports ---

type fakeReportRepo struct {
	buckets       []models.RevenueBucket
	methods       []models.PaymentMethodBreakdown
	totals        map[time.Time]models.PeriodTotals
	active        int
	createdBefore int
	createdRange  int
	clients       int
	topLimit      int
	gotStart      time.Time
	gotEnd        time.Time
	gotGroupBy    models.RevenueGroupBy
}

func (r *fakeReportRepo) RevenueByPeriod(start, end time.Time, groupBy models.RevenueGroupBy) ([]models.RevenueBucket, error) {
	r.gotStart, r.gotEnd, r.gotGroupBy = start, end, groupBy
	return r.buckets, nil
}

func (r *fakeReportRepo) RevenueByPaymentMethod(start, end time.Time) ([]models.PaymentMethodBreakdown, error) {
	return r.methods, nil
}

func (r *fakeReportRepo) PeriodTotals(start, end time.Time) (models.PeriodTotals, error) {
	return r.totals[start], nil
}

func (r *fakeReportRepo) TopServices(start, end time.Time, limit int) ([]models.ServiceUsage, error) {
	r.topLimit = limit
	return nil, nil
}

func (r *fakeReportRepo) CategoryUsage(start, end time.Time) ([]models.CategoryUsage, error) {
	return nil, nil
}

func (r *fakeReportRepo) NewClientSignups(start, end time.Time) ([]models.MonthlyCount, error) {
	r.gotStart, r.gotEnd = start, end
	return nil, nil
}

func (r *fakeReportRepo) ClientVisitTypes(start, end time.Time) ([]models.ClientVisitType, error) {
	return nil, nil
}

func (r *fakeReportRepo) TopClients(start, end time.Time, limit int) ([]models.TopClient, error) {
	return nil, nil
}

func (r *fakeReportRepo) CountActiveClients(start, end time.Time) (int, error) { return r.active, nil }

func (r *fakeReportRepo) CountClientsCreatedBefore(end time.Time) (int, error) {
	return r.createdBefore, nil
}

func (r *fakeReportRepo) CountClientsCreatedBetween(start, end time.Time) (int, error) {
	return r.createdRange, nil
}

func (r *fakeReportRepo) CountClients() (int, error) { return r.clients, nil }

func (r *fakeReportRepo) StaffPerformance(start, end time.Time) ([]models.StaffPerformance, error) {
	return nil, nil
}

func (r *fakeReportRepo) ReceptionistPerformance(start, end time.Time) ([]models.ReceptionistPerformance, error) {
	return nil, nil
}

// --- notifier ---

type sentSMS struct {
	phone   string
	message string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentSMS
	err  error
}

func (n *fakeNotifier) SendSMS(_ context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentSMS{phone: phone, message: message})
	return nil
}

func (n *fakeNotifier) messages() []sentSMS {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentSMS(nil), n.sent...)
}
