package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"time"

	"crm-backend/internal/cache"
	"crm-backend/internal/models"
	"crm-backend/internal/timeutil"
)

const feedLimit = 20

// NotificationSources groups the read slices the feed is built from
type NotificationSources struct {
	Conversations interface {
		ListRecentActive(ctx context.Context, limit int) ([]*models.Conversation, error)
	}
	Leads interface {
		ListRecent(ctx context.Context, limit int) ([]*models.Lead, error)
	}
	Appointments interface {
		ListUpcoming(ctx context.Context, from, to time.Time) ([]*models.Appointment, error)
	}
	Tasks interface {
		ListDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Task, error)
	}
	LeadNames interface {
		Get(ctx context.Context, id int) (*models.Lead, error)
	}
}

type NotificationService struct {
	src NotificationSources
}

func NewNotificationService(src NotificationSources) *NotificationService {
	return &NotificationService{src: src}
}

// Feed builds the bell feed on the fly from four sources: active
// conversations, fresh leads, imminent appointments and due tasks.
// Results are merged, deduplicated, sorted by recency and capped.
// A per-user cache keeps repeated polls cheap.
func (s *NotificationService) Feed(ctx context.Context, userID int) ([]*models.Notification, error) {
	if data, ok := cache.GetCachedNotifications(ctx, userID); ok {
		var cached []*models.Notification
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	now := timeutil.Now()
	var feed []*models.Notification

	conversations, err := s.src.Conversations.ListRecentActive(ctx, feedLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching active conversations: %w", err)
	}
	// A lead born from one of these conversations is already represented
	// by the conversation entry, so its own notification is skipped below
	represented := make(map[int]bool)
	for _, c := range conversations {
		represented[c.ID] = true
		msg := "Conversación activa"
		if c.PhoneNumber != "" {
			msg = "Conversación activa con " + c.PhoneNumber
		}
		feed = append(feed, &models.Notification{
			ID:       fmt.Sprintf("conversation-%d", c.ID),
			Type:     "conversation",
			Title:    "Nueva conversación",
			Message:  msg,
			Time:     FormatRelative(c.UpdatedAt, now),
			Urgency:  c.UrgencyLevel,
			LinkPath: fmt.Sprintf("/conversations/%d", c.ID),
		})
	}

	leads, err := s.src.Leads.ListRecent(ctx, feedLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent leads: %w", err)
	}
	for _, l := range leads {
		if l.ConversationID != nil && represented[*l.ConversationID] {
			continue
		}
		feed = append(feed, &models.Notification{
			ID:       fmt.Sprintf("lead-%d", l.ID),
			Type:     "lead",
			Title:    "Nuevo lead",
			Message:  l.Name + " (" + l.Source + ")",
			Time:     FormatRelative(l.CreatedAt, now),
			LeadID:   l.ID,
			Urgency:  l.UrgencyLevel,
			LinkPath: fmt.Sprintf("/leads/%d", l.ID),
		})
	}

	appointments, err := s.src.Appointments.ListUpcoming(ctx, now, now.Add(2*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("fetching upcoming appointments: %w", err)
	}
	for _, a := range appointments {
		feed = append(feed, &models.Notification{
			ID:       fmt.Sprintf("appointment-%d", a.ID),
			Type:     "appointment",
			Title:    "Cita próxima",
			Message:  "Cita con " + s.leadName(ctx, a.LeadID),
			Time:     FormatRelative(a.ScheduledAt, now),
			LeadID:   a.LeadID,
			LinkPath: "/appointments",
		})
	}

	tasks, err := s.src.Tasks.ListDueBefore(ctx, timeutil.EndOfDay(now), feedLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching due tasks: %w", err)
	}
	for _, t := range tasks {
		feed = append(feed, &models.Notification{
			ID:       fmt.Sprintf("task-%d", t.ID),
			Type:     "task",
			Title:    "Tarea pendiente",
			Message:  t.Title,
			Time:     FormatRelative(t.DueAt, now),
			LeadID:   t.LeadID,
			Urgency:  t.Priority,
			LinkPath: fmt.Sprintf("/leads/%d", t.LeadID),
		})
	}

	sortByRecency(feed)
	if len(feed) > feedLimit {
		feed = feed[:feedLimit]
	}
	if feed == nil {
		feed = []*models.Notification{}
	}

	if data, err := json.Marshal(feed); err == nil {
		cache.CacheNotifications(ctx, userID, data)
	}

	return feed, nil
}

// leadName resolves a lead's display name; feed building never fails on it
func (s *NotificationService) leadName(ctx context.Context, leadID int) string {
	lead, err := s.src.LeadNames.Get(ctx, leadID)
	if err != nil {
		log.Printf("[Notifications] Could not resolve lead %d name: %v", leadID, err)
		return fmt.Sprintf("lead %d", leadID)
	}
	return lead.Name
}

// FormatRelative renders a timestamp relative to now: "ahora",
// "hace 5 min", "hace 2 h", "hace 3 días". Future timestamps (upcoming
// appointments) render as "en 30 min".
func FormatRelative(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = -d
		switch {
		case d < time.Minute:
			return "ahora"
		case d < time.Hour:
			return fmt.Sprintf("en %d min", int(d.Minutes()))
		case d < 24*time.Hour:
			return fmt.Sprintf("en %d h", int(d.Hours()))
		default:
			return fmt.Sprintf("en %d días", int(d.Hours()/24))
		}
	}
	switch {
	case d < time.Minute:
		return "ahora"
	case d < time.Hour:
		return fmt.Sprintf("hace %d min", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("hace %d h", int(d.Hours()))
	default:
		return fmt.Sprintf("hace %d días", int(d.Hours()/24))
	}
}

var relativeRe = regexp.MustCompile(`^(hace|en) (\d+) (min|h|días)$`)

// ParseRelative inverts FormatRelative into minutes-ago. Future times
// come back negative so sorting puts them first; the second return is
// false for anything the pattern does not cover.
func ParseRelative(s string) (int, bool) {
	if s == "ahora" {
		return 0, true
	}
	m := relativeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	switch m[3] {
	case "h":
		n *= 60
	case "días":
		n *= 24 * 60
	}
	if m[1] == "en" {
		n = -n
	}
	return n, true
}

// sortByRecency orders the feed most-imminent and most-recent first.
// Items with unparseable times sink to the end; ties keep input order.
func sortByRecency(feed []*models.Notification) {
	sort.SliceStable(feed, func(i, j int) bool {
		mi, oki := ParseRelative(feed[i].Time)
		mj, okj := ParseRelative(feed[j].Time)
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		return mi < mj
	})
}
