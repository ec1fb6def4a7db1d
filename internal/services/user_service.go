package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/auth"
	"crm-backend/internal/cache"
	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// UserStore is the part of the user repository this service consumes
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
	UpdateProfile(ctx context.Context, id int, name, phone string) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	SetActive(ctx context.Context, id int, active bool) error
}

// TOTPStore is the 2FA state the login flow needs
type TOTPStore interface {
	GetByUser(ctx context.Context, userID int) (*models.UserTOTP, error)
}

type UserService struct {
	users UserStore
	totp  TOTPStore
	jwt   *auth.JWTManager
}

func NewUserService(users UserStore, totp TOTPStore, jwt *auth.JWTManager) *UserService {
	return &UserService{users: users, totp: totp, jwt: jwt}
}

// Signup registers a new agent account and returns a session token
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email already registered: %w", apperrors.ErrDuplicate)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         "agent",
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	log.Printf("[Auth] New signup: %s (id=%d)", user.Email, user.ID)
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login authenticates a user. Returns either a full AuthResponse, or a
// TwoFactorPendingResponse when the account has 2FA enabled.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, *models.TwoFactorPendingResponse, error) {
	// Fast path: recently verified credentials skip the bcrypt check
	if userID, ok := cache.GetCachedAuth(ctx, req.Email, req.Password); ok {
		user, err := s.users.Get(ctx, userID)
		if err == nil && user.IsActive {
			return s.issueSession(ctx, user)
		}
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
		}
		return nil, nil, fmt.Errorf("fetching user: %w", err)
	}

	if !user.IsActive {
		return nil, nil, fmt.Errorf("account disabled: %w", apperrors.ErrUnauthorized)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}

	cache.CacheAuth(ctx, req.Email, req.Password, user.ID)
	return s.issueSession(ctx, user)
}

// issueSession emits a full token, or a temp token when 2FA is on
func (s *UserService) issueSession(ctx context.Context, user *models.User) (*models.AuthResponse, *models.TwoFactorPendingResponse, error) {
	if totp, err := s.totp.GetByUser(ctx, user.ID); err == nil && totp != nil && totp.Enabled {
		tempToken, err := s.jwt.GenerateTempToken(user)
		if err != nil {
			return nil, nil, fmt.Errorf("generating temp token: %w", err)
		}
		return nil, &models.TwoFactorPendingResponse{Requires2FA: true, TempToken: tempToken}, nil
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generating token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil, nil
}

// GetProfile returns the authenticated user's record
func (s *UserService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile updates the authenticated user's name and phone
func (s *UserService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, req.Name, req.Phone); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return s.users.Get(ctx, userID)
}

// UpdatePassword changes the authenticated user's password after
// verifying the current one
func (s *UserService) UpdatePassword(ctx context.Context, userID int, req *models.UpdatePasswordRequest) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetching user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.CurrentPassword) {
		return fmt.Errorf("current password incorrect: %w", apperrors.ErrUnauthorized)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	// Stale cached credentials must not keep working
	cache.InvalidateAuth(ctx, user.Email, req.CurrentPassword)
	log.Printf("[Auth] Password changed for user %d", userID)
	return nil
}

// ListUsers returns every user account (team settings page)
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// CreateUser adds a team member (admin only)
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email already registered: %w", apperrors.ErrDuplicate)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// UpdateUser edits a team member (admin only)
func (s *UserService) UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Phone = req.Phone
	user.Role = req.Role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

// SetUserActive enables or disables an account (admin only)
func (s *UserService) SetUserActive(ctx context.Context, id int, active bool) error {
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("setting user active=%t: %w", active, err)
	}
	return nil
}
