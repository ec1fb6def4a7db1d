package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/auth"
	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/pquerna/otp/totp"
)

// TOTPManager is the full 2FA state surface
type TOTPManager interface {
	GetByUser(ctx context.Context, userID int) (*models.UserTOTP, error)
	Upsert(ctx context.Context, userID int, secret string) error
	SetEnabled(ctx context.Context, userID int, enabled bool) error
	Delete(ctx context.Context, userID int) error
}

type TOTPService struct {
	totp  TOTPManager
	users UserStore
	jwt   *auth.JWTManager
}

func NewTOTPService(totpStore TOTPManager, users UserStore, jwt *auth.JWTManager) *TOTPService {
	return &TOTPService{totp: totpStore, users: users, jwt: jwt}
}

// Setup provisions a new secret for the user and returns the otpauth
// URI for the authenticator app. The secret stays disabled until the
// first code is confirmed.
func (s *TOTPService) Setup(ctx context.Context, userID int) (*models.TOTPSetupResponse, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "CRM Automotriz",
		AccountName: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("generating TOTP secret: %w", err)
	}

	if err := s.totp.Upsert(ctx, userID, key.Secret()); err != nil {
		return nil, fmt.Errorf("storing TOTP secret: %w", err)
	}

	return &models.TOTPSetupResponse{Secret: key.Secret(), URI: key.URL()}, nil
}

// Confirm activates 2FA after the user proves the authenticator works
func (s *TOTPService) Confirm(ctx context.Context, userID int, code string) error {
	record, err := s.totp.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("no pending TOTP setup: %w", apperrors.ErrNotFound)
		}
		return err
	}

	if !totp.Validate(code, record.Secret) {
		return fmt.Errorf("invalid code: %w", apperrors.ErrUnauthorized)
	}
	if err := s.totp.SetEnabled(ctx, userID, true); err != nil {
		return fmt.Errorf("enabling TOTP: %w", err)
	}

	log.Printf("[Auth] 2FA enabled for user %d", userID)
	return nil
}

// VerifyLogin exchanges a temp token plus a valid code for a full
// session token (login step 2)
func (s *TOTPService) VerifyLogin(ctx context.Context, tempToken, code string) (*models.AuthResponse, error) {
	claims, err := s.jwt.ValidateTempToken(tempToken)
	if err != nil {
		return nil, fmt.Errorf("invalid temp token: %w", apperrors.ErrUnauthorized)
	}

	record, err := s.totp.GetByUser(ctx, claims.UserID)
	if err != nil || !record.Enabled {
		return nil, fmt.Errorf("2FA not enabled: %w", apperrors.ErrUnauthorized)
	}
	if !totp.Validate(code, record.Secret) {
		return nil, fmt.Errorf("invalid code: %w", apperrors.ErrUnauthorized)
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Disable turns 2FA off after a final code check
func (s *TOTPService) Disable(ctx context.Context, userID int, code string) error {
	record, err := s.totp.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("2FA not configured: %w", apperrors.ErrNotFound)
		}
		return err
	}

	if record.Enabled && !totp.Validate(code, record.Secret) {
		return fmt.Errorf("invalid code: %w", apperrors.ErrUnauthorized)
	}
	if err := s.totp.Delete(ctx, userID); err != nil {
		return fmt.Errorf("disabling TOTP: %w", err)
	}

	log.Printf("[Auth] 2FA disabled for user %d", userID)
	return nil
}
