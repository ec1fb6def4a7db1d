package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"crm-backend/internal/metrics"
	"crm-backend/internal/models"
)

// Dispatcher sends new-lead alerts to the sales team channel. Dispatch is
// always best-effort: a failed alert never fails the operation that
// triggered it.
type Dispatcher interface {
	NewLead(ctx context.Context, lead *models.Lead)
}

// WebhookDispatcher posts alert payloads to a configured webhook URL
type WebhookDispatcher struct {
	URL    string
	Client *http.Client
}

func NewWebhookDispatcher(url string) *WebhookDispatcher {
	return &WebhookDispatcher{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type newLeadPayload struct {
	Event      string `json:"event"`
	LeadID     int    `json:"lead_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Source     string `json:"source"`
	Urgency    string `json:"urgency_level"`
	AssignedTo int    `json:"assigned_to"`
}

// NewLead fires the alert in a goroutine so callers never block on it
func (d *WebhookDispatcher) NewLead(ctx context.Context, lead *models.Lead) {
	if d.URL == "" {
		return
	}

	payload := newLeadPayload{
		Event:      "new_lead",
		LeadID:     lead.ID,
		Name:       lead.Name,
		Phone:      lead.Phone,
		Source:     lead.Source,
		Urgency:    lead.UrgencyLevel,
		AssignedTo: lead.AssignedTo,
	}

	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			log.Printf("[Alerts] Failed to marshal new-lead payload: %v", err)
			metrics.AlertDispatchTotal.WithLabelValues("error").Inc()
			return
		}

		sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, d.URL, bytes.NewReader(body))
		if err != nil {
			log.Printf("[Alerts] Failed to build alert request: %v", err)
			metrics.AlertDispatchTotal.WithLabelValues("error").Inc()
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.Client.Do(req)
		if err != nil {
			log.Printf("[Alerts] New-lead alert failed for lead %d: %v", lead.ID, err)
			metrics.AlertDispatchTotal.WithLabelValues("error").Inc()
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			log.Printf("[Alerts] New-lead alert for lead %d returned status %d", lead.ID, resp.StatusCode)
			metrics.AlertDispatchTotal.WithLabelValues("error").Inc()
			return
		}

		metrics.AlertDispatchTotal.WithLabelValues("ok").Inc()
	}()
}

// NoopDispatcher is used when no webhook URL is configured
type NoopDispatcher struct{}

func (NoopDispatcher) NewLead(ctx context.Context, lead *models.Lead) {}

// Multi fans one alert out to several dispatchers
type Multi []Dispatcher

func (m Multi) NewLead(ctx context.Context, lead *models.Lead) {
	for _, d := range m {
		d.NewLead(ctx, lead)
	}
}
