package models

import "time"

// UserTOTP holds the 2FA secret for an admin account
type UserTOTP struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Secret    string    `json:"-"` // never exposed
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// TOTPSetupResponse carries the provisioning URI for the authenticator app
type TOTPSetupResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

// TOTPVerifyRequest confirms a 6-digit code
type TOTPVerifyRequest struct {
	Code      string `json:"code" validate:"required,len=6"`
	TempToken string `json:"temp_token"`
}
