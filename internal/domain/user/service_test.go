// internal/domain/user/service_test.go
package user_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"github.com/your-org/storefront-backend/internal/pkg/testutil"
)

const testPassword = "Sup3rSecret"

func newUserService(t *testing.T) (*user.Service, *auth.JWTManager, *gorm.DB) {
	db := testutil.NewDB(t)
	cfg := testutil.NewConfig(t)
	return user.NewService(db, cfg), auth.NewJWTManager(cfg), db
}

func register(t *testing.T, svc *user.Service, email string) *user.AuthResponse {
	t.Helper()
	resp, err := svc.Register(&user.RegisterRequest{
		Email:    email,
		Password: testPassword,
		Name:     "Nguyen Van A",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterNormalizesEmailAndIssuesTokens(t *testing.T) {
	svc, jwtManager, _ := newUserService(t)

	resp := register(t, svc, "  Alice@Example.COM ")
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.False(t, resp.User.IsAdmin)

	claims, err := jwtManager.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	// refresh token is not usable as an access token
	_, err = jwtManager.ValidateAccessToken(resp.RefreshToken)
	assert.Error(t, err)

	// duplicate registration, case-insensitive
	_, err = svc.Register(&user.RegisterRequest{
		Email: "ALICE@example.com", Password: testPassword, Name: "B",
	})
	assert.True(t, errs.IsKind(err, errs.KindConflict))
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _, _ := newUserService(t)

	_, err := svc.Register(&user.RegisterRequest{
		Email: "weak@example.com", Password: "short", Name: "W",
	})
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestLogin(t *testing.T) {
	svc, _, db := newUserService(t)
	registered := register(t, svc, "bob@example.com")

	resp, err := svc.Login(&user.LoginRequest{Email: "BOB@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotNil(t, resp.User.LastLoginAt)

	_, err = svc.Login(&user.LoginRequest{Email: "bob@example.com", Password: "WrongPass1"})
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))

	_, err = svc.Login(&user.LoginRequest{Email: "nobody@example.com", Password: testPassword})
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))

	// disabled accounts cannot log in
	require.NoError(t, db.Model(&user.User{}).Where("id = ?", registered.User.ID).
		Update("is_active", false).Error)
	_, err = svc.Login(&user.LoginRequest{Email: "bob@example.com", Password: testPassword})
	assert.True(t, errs.IsKind(err, errs.KindForbidden))
}

func TestRefreshIssuesNewPair(t *testing.T) {
	svc, _, _ := newUserService(t)
	registered := register(t, svc, "carol@example.com")

	resp, err := svc.Refresh(&user.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Refresh(&user.RefreshRequest{RefreshToken: "not-a-token"})
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))

	// an access token is not accepted as a refresh token
	_, err = svc.Refresh(&user.RefreshRequest{RefreshToken: registered.AccessToken})
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newUserService(t)
	registered := register(t, svc, "dave@example.com")

	err := svc.ChangePassword(registered.User.ID, &user.ChangePasswordRequest{
		CurrentPassword: "WrongPass1",
		NewPassword:     "NewSecret99",
	})
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))

	require.NoError(t, svc.ChangePassword(registered.User.ID, &user.ChangePasswordRequest{
		CurrentPassword: testPassword,
		NewPassword:     "NewSecret99",
	}))

	_, err = svc.Login(&user.LoginRequest{Email: "dave@example.com", Password: testPassword})
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))

	_, err = svc.Login(&user.LoginRequest{Email: "dave@example.com", Password: "NewSecret99"})
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newUserService(t)
	registered := register(t, svc, "erin@example.com")

	updated, err := svc.UpdateProfile(registered.User.ID, &user.UpdateProfileRequest{
		Name:  "Erin Pham",
		Phone: "0912345678",
	})
	require.NoError(t, err)
	assert.Equal(t, "Erin Pham", updated.Name)
	assert.Equal(t, "0912345678", updated.Phone)

	// empty fields are left untouched
	updated, err = svc.UpdateProfile(registered.User.ID, &user.UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Erin Pham", updated.Name)

	_, err = svc.GetProfile(9999)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", auth.ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", auth.ExtractTokenFromHeader("bearer abc"))
	assert.Equal(t, "", auth.ExtractTokenFromHeader("Token abc"))
	assert.Equal(t, "", auth.ExtractTokenFromHeader(""))
}
