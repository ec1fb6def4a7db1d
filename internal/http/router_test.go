package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"crm-backend/internal/handlers"
	"crm-backend/internal/middleware"
)

func newRouterForTest() *mux.Router {
	return NewRouter(
		&handlers.AuthHandler{},
		&handlers.UserHandler{},
		&handlers.TOTPHandler{},
		&handlers.LeadHandler{},
		&handlers.ConversationHandler{},
		&handlers.InteractionHandler{},
		&handlers.TaskHandler{},
		&handlers.AppointmentHandler{},
		&handlers.VehicleHandler{},
		&handlers.QualificationHandler{},
		&handlers.NotificationHandler{},
		&handlers.ReportHandler{},
		&handlers.SettingHandler{},
		&handlers.HealthHandler{},
		&middleware.AuthMiddleware{},
	)
}

// Route matching only; no handler is invoked.
func TestRouter_RouteTable(t *testing.T) {
	r := newRouterForTest()

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/auth/signup"},
		{"POST", "/auth/login"},
		{"POST", "/auth/totp/verify"},
		{"GET", "/api/auth/me"},
		{"PATCH", "/api/auth/profile"},
		{"POST", "/api/auth/update-password"},
		{"POST", "/api/leads"},
		{"POST", "/api/leads/create"},
		{"GET", "/api/leads/board"},
		{"PATCH", "/api/leads/5"},
		{"PATCH", "/api/leads/5/stage"},
		{"POST", "/api/interactions/log"},
		{"GET", "/api/interactions/lead/5"},
		{"GET", "/api/conversations/5"},
		{"PATCH", "/api/tasks/5"},
		{"POST", "/api/appointments/5/outcome"},
		{"GET", "/api/notifications"},
		{"GET", "/api/reports"},
		{"GET", "/api/reports/export"},
		{"PUT", "/api/settings/dealership_name"},
		{"GET", "/health"},
		{"GET", "/metrics"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		var m mux.RouteMatch
		assert.True(t, r.Match(req, &m), "%s %s", tt.method, tt.path)
	}
}

func TestRouter_RetiredRoutesGone(t *testing.T) {
	r := newRouterForTest()

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/api/calls"},
		{"POST", "/api/leads/5/move"},
		{"POST", "/api/conversations/5/convert"},
		{"PATCH", "/api/tasks/5/complete"},
		{"PUT", "/api/me"},
		{"GET", "/api/reports/summary"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		var m mux.RouteMatch
		matched := r.Match(req, &m) && m.MatchErr == nil
		assert.False(t, matched, "%s %s", tt.method, tt.path)
	}
}
