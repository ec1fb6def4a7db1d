package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/models"
)

func TestWebhookDispatcher_NewLead(t *testing.T) {
	received := make(chan newLeadPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var p newLeadPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		received <- p
	}))
	defer srv.Close()

	d := NewWebhookDispatcher(srv.URL)
	d.NewLead(context.Background(), &models.Lead{
		ID:           12,
		Name:         "Juan Pérez",
		Phone:        "5551234567",
		Source:       "facebook",
		UrgencyLevel: "alta",
		AssignedTo:   3,
	})

	select {
	case p := <-received:
		assert.Equal(t, "new_lead", p.Event)
		assert.Equal(t, 12, p.LeadID)
		assert.Equal(t, "Juan Pérez", p.Name)
		assert.Equal(t, "alta", p.Urgency)
		assert.Equal(t, 3, p.AssignedTo)
	case <-time.After(2 * time.Second):
		t.Fatal("alert never reached the webhook")
	}
}

func TestWebhookDispatcher_EmptyURLIsNoop(t *testing.T) {
	d := &WebhookDispatcher{URL: "", Client: http.DefaultClient}
	// Must not panic or block
	d.NewLead(context.Background(), &models.Lead{ID: 1})
}
