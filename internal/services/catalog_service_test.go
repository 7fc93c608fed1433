package services

import (
	"testing"
	"time"

	"salon_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoyaltyPoints(t *testing.T) {
	assert.Equal(t, 0, DefaultLoyaltyPoints(9.99))
	assert.Equal(t, 4, DefaultLoyaltyPoints(45))
	assert.Equal(t, 12, DefaultLoyaltyPoints(120))
}

func TestCreateService(t *testing.T) {
	repo := newFakeServiceRepo()
	svc := NewCatalogService(repo, &fakeTx{})

	created, err := svc.CreateService(CreateServiceRequest{Name: " Braids ", Duration: 120, Price: 250})
	require.NoError(t, err)
	assert.Equal(t, "Braids", created.Name)
	assert.Equal(t, models.CategoryOther, created.Category)
	assert.Equal(t, 25, created.LoyaltyPointsEarned)
	assert.True(t, created.IsActive)

	points := 40
	custom, err := svc.CreateService(CreateServiceRequest{Name: "Massage", Category: "massage", Duration: 60, Price: 200, LoyaltyPointsEarned: &points})
	require.NoError(t, err)
	assert.Equal(t, 40, custom.LoyaltyPointsEarned)
	assert.Equal(t, models.CategoryMassage, custom.Category)

	_, err = svc.CreateService(CreateServiceRequest{Name: "braids", Duration: 30, Price: 10})
	assert.ErrorIs(t, err, ErrServiceNameExists)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateService(t *testing.T) {
	repo := newFakeServiceRepo(
		models.Service{ID: 1, Name: "Haircut", Category: models.CategoryHair, Duration: 30, Price: 100, LoyaltyPointsEarned: 10, IsActive: true},
		models.Service{ID: 2, Name: "Manicure", Category: models.CategoryNails, Duration: 45, Price: 50, IsActive: true},
	)
	svc := NewCatalogService(repo, &fakeTx{})

	price := 120.0
	updated, err := svc.UpdateService(1, UpdateServiceRequest{Name: strPtr("Haircut"), Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.Price)
	assert.Equal(t, 120.0, repo.services[1].Price)

	_, err = svc.UpdateService(1, UpdateServiceRequest{Name: strPtr("Manicure")})
	assert.ErrorIs(t, err, ErrServiceNameExists)

	short := 2
	_, err = svc.UpdateService(1, UpdateServiceRequest{Duration: &short})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateService(9, UpdateServiceRequest{})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestUpdateServiceStatus(t *testing.T) {
	repo := newFakeServiceRepo(models.Service{ID: 1, Name: "Haircut", IsActive: true})
	svc := NewCatalogService(repo, &fakeTx{})

	service, err := svc.UpdateServiceStatus(1, false)
	require.NoError(t, err)
	assert.False(t, service.IsActive)

	_, err = svc.UpdateServiceStatus(2, true)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestGetServiceStatsNormalisesEnd(t *testing.T) {
	repo := newFakeServiceRepo(models.Service{ID: 1, Name: "Haircut", Price: 100, Duration: 30})
	repo.stats = &models.ServiceStats{TotalUsage: 2, TotalRevenue: 200, AverageRevenue: 100, DailyUsage: map[string]int{"2024-03-01": 2}}
	svc := NewCatalogService(repo, &fakeTx{})

	resp, err := svc.GetServiceStats(1, strPtr("2024-03-01"), strPtr("2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, "Haircut", resp.Service.Name)
	assert.Equal(t, 2, resp.Stats.TotalUsage)
	require.NotNil(t, repo.gotEnd)
	assert.Equal(t, 23, repo.gotEnd.Hour())
	assert.Equal(t, int(999*time.Millisecond), repo.gotEnd.Nanosecond())

	_, err = svc.GetServiceStats(1, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, repo.gotStart)

	_, err = svc.GetServiceStats(1, strPtr("March"), nil)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.GetServiceStats(5, nil, nil)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
