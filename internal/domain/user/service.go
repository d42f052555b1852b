// internal/domain/user/service.go
package user

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service handles user account business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	jwt       *auth.JWTManager
	passwords *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		jwt:       auth.NewJWTManager(cfg),
		passwords: auth.NewPasswordManager(cfg),
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// AuthResponse bundles the user with a token pair
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new account and returns a token pair
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, errs.Conflict("an account with this email already exists")
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, errs.Validation("%s", err.Error())
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		Phone:        req.Phone,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(user)
}

// Login authenticates a user and returns a token pair
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errs.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if !user.IsActive {
		return nil, errs.Forbidden("account is disabled")
	}

	if err := s.passwords.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		return nil, errs.Unauthorized("invalid email or password")
	}

	now := time.Now()
	if err := s.db.Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoginAt = &now

	return s.issueTokens(&user)
}

// Refresh exchanges a refresh token for a new token pair
func (s *Service) Refresh(req *RefreshRequest) (*AuthResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, errs.Unauthorized("invalid refresh token")
	}

	var user User
	if err := s.db.First(&user, claims.UserID).Error; err != nil {
		return nil, errs.Unauthorized("invalid refresh token")
	}
	if !user.IsActive {
		return nil, errs.Forbidden("account is disabled")
	}

	return s.issueTokens(&user)
}

// GetProfile returns a user by id
func (s *Service) GetProfile(userID uint) (*User, error) {
	var user User
	err := s.db.First(&user, userID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errs.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates mutable profile fields
func (s *Service) UpdateProfile(userID uint, req *UpdateProfileRequest) (*User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password and sets a new one
func (s *Service) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}

	if err := s.passwords.VerifyPassword(req.CurrentPassword, user.PasswordHash); err != nil {
		return errs.Unauthorized("current password is incorrect")
	}

	hash, err := s.passwords.HashPassword(req.NewPassword)
	if err != nil {
		return errs.Validation("%s", err.Error())
	}

	if err := s.db.Model(user).Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *Service) issueTokens(user *User) (*AuthResponse, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &AuthResponse{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
