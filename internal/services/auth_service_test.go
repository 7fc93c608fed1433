package services

import (
	"errors"
	"testing"
	"time"

	"salon_backend/internal/models"
	"salon_backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (*authService, *fakeAuthRepo) {
	t.Helper()
	utils.InitJWT("test-secret", time.Hour)
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, &fakeTx{}, bcrypt.MinCost).(*authService)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func registerReceptionist(t *testing.T, svc AuthService) *models.User {
	t.Helper()
	user, err := svc.RegisterUser(RegisterUserRequest{
		FirstName: "Esi",
		LastName:  "Owusu",
		Email:     "Esi@Salon.test",
		Password:  "secret1",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterUser(t *testing.T) {
	svc, repo := newAuthFixture(t)

	user := registerReceptionist(t, svc)
	assert.Equal(t, "esi@salon.test", user.Email)
	assert.Equal(t, models.RoleReceptionist, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret1", repo.hashes[user.ID])

	_, err := svc.RegisterUser(RegisterUserRequest{FirstName: "E", LastName: "O", Email: "esi@salon.test", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.RegisterUser(RegisterUserRequest{FirstName: "E", LastName: "O", Email: "x@salon.test", Password: "secret1", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginUser(t *testing.T) {
	svc, repo := newAuthFixture(t)
	user := registerReceptionist(t, svc)

	resp, err := svc.LoginUser(LoginRequest{Email: "esi@salon.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	require.NotNil(t, resp.User.LastLogin)
	assert.Equal(t, fixedNow, repo.lastLogin[user.ID])

	claims, err := utils.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(models.RoleReceptionist), claims.Role)

	_, err = svc.LoginUser(LoginRequest{Email: "esi@salon.test", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.LoginUser(LoginRequest{Email: "nobody@salon.test", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUserInactive(t *testing.T) {
	svc, _ := newAuthFixture(t)
	user := registerReceptionist(t, svc)

	_, err := svc.UpdateUserStatus(user.ID, false)
	require.NoError(t, err)

	_, err = svc.LoginUser(LoginRequest{Email: "esi@salon.test", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestLoginSurvivesLastLoginFailure(t *testing.T) {
	svc, repo := newAuthFixture(t)
	registerReceptionist(t, svc)
	repo.loginErr = errors.New("db unavailable")

	resp, err := svc.LoginUser(LoginRequest{Email: "esi@salon.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Nil(t, resp.User.LastLogin)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	user := registerReceptionist(t, svc)

	err := svc.ChangePassword(user.ID, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(user.ID, ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}))
	_, err = svc.LoginUser(LoginRequest{Email: "esi@salon.test", Password: "secret2"})
	assert.NoError(t, err)

	err = svc.ChangePassword(99, ChangePasswordRequest{CurrentPassword: "a", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	svc, repo := newAuthFixture(t)

	created, err := svc.EnsureAdmin("", "", "Salon", "Admin")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureAdmin("Admin@Salon.test", "changeme", "Salon", "Admin")
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, repo.users, 1)
	assert.Equal(t, models.RoleAdmin, repo.users[1].Role)

	created, err = svc.EnsureAdmin("other@salon.test", "changeme", "Salon", "Admin")
	require.NoError(t, err)
	assert.False(t, created)
}
