package handlers

import (
	"encoding/json"
	"net/http"

	"crm-backend/internal/models"
	"crm-backend/internal/services"
	"crm-backend/internal/validator"
	"crm-backend/pkg/utils"
)

type AuthHandler struct {
	Users *services.UserService
	TOTP  *services.TOTPService
}

func NewAuthHandler(users *services.UserService, totp *services.TOTPService) *AuthHandler {
	return &AuthHandler{Users: users, TOTP: totp}
}

// Signup handles user registration
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	authResp, err := h.Users.Signup(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, authResp)
}

// Login handles user authentication. Accounts with 2FA enabled get a
// temp token instead of a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	authResp, pending, err := h.Users.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if pending != nil {
		utils.JSON(w, http.StatusOK, pending)
		return
	}

	utils.JSON(w, http.StatusOK, authResp)
}

// VerifyTOTP is login step 2: temp token plus authenticator code
func (h *AuthHandler) VerifyTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TempToken == "" || req.Code == "" {
		utils.Error(w, http.StatusBadRequest, "temp_token and code are required")
		return
	}

	authResp, err := h.TOTP.VerifyLogin(r.Context(), req.TempToken, req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, authResp)
}
