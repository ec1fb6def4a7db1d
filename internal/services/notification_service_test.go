package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/models"
	"crm-backend/internal/timeutil"
)

type notificationSourcesMock struct {
	conversations []*models.Conversation
	leads         []*models.Lead
	appointments  []*models.Appointment
	tasks         []*models.Task
	taskCutoff    time.Time
}

func (m *notificationSourcesMock) ListRecentActive(ctx context.Context, limit int) ([]*models.Conversation, error) {
	return m.conversations, nil
}

func (m *notificationSourcesMock) ListRecent(ctx context.Context, limit int) ([]*models.Lead, error) {
	return m.leads, nil
}

func (m *notificationSourcesMock) ListUpcoming(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	return m.appointments, nil
}

func (m *notificationSourcesMock) ListDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Task, error) {
	m.taskCutoff = cutoff
	return m.tasks, nil
}

func (m *notificationSourcesMock) Get(ctx context.Context, id int) (*models.Lead, error) {
	for _, l := range m.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return &models.Lead{ID: id, Name: fmt.Sprintf("lead %d", id)}, nil
}

func newNotificationServiceForTest(src *notificationSourcesMock) *NotificationService {
	return NewNotificationService(NotificationSources{
		Conversations: src,
		Leads:         src,
		Appointments:  src,
		Tasks:         src,
		LeadNames:     src,
	})
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, timeutil.MX)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-20 * time.Second), "ahora"},
		{"minutes ago", now.Add(-5 * time.Minute), "hace 5 min"},
		{"hours ago", now.Add(-3 * time.Hour), "hace 3 h"},
		{"days ago", now.Add(-49 * time.Hour), "hace 2 días"},
		{"imminent future", now.Add(30 * time.Second), "ahora"},
		{"future minutes", now.Add(30 * time.Minute), "en 30 min"},
		{"future hours", now.Add(5 * time.Hour), "en 5 h"},
		{"future days", now.Add(72 * time.Hour), "en 3 días"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRelative(tt.t, now))
		})
	}
}

func TestParseRelative(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"ahora", 0, true},
		{"hace 5 min", 5, true},
		{"hace 3 h", 180, true},
		{"hace 2 días", 2880, true},
		{"en 30 min", -30, true},
		{"en 2 h", -120, true},
		{"yesterday", 0, false},
		{"hace min", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseRelative(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatParseRelative_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, timeutil.MX)

	for _, offset := range []time.Duration{
		-5 * time.Minute, -2 * time.Hour, -72 * time.Hour,
		10 * time.Minute, 90 * time.Minute,
	} {
		s := FormatRelative(now.Add(offset), now)
		mins, ok := ParseRelative(s)
		require.True(t, ok, s)
		assert.InDelta(t, -offset.Minutes(), float64(mins), 60, s)
	}
}

func TestFeed_MergesAllSources(t *testing.T) {
	now := timeutil.Now()
	src := &notificationSourcesMock{
		leads: []*models.Lead{
			{ID: 1, Name: "Juan", Source: "facebook", UrgencyLevel: "alta", CreatedAt: now.Add(-10 * time.Minute)},
		},
		conversations: []*models.Conversation{
			{ID: 7, PhoneNumber: "5551112222", UrgencyLevel: "media", UpdatedAt: now.Add(-2 * time.Minute)},
		},
		appointments: []*models.Appointment{
			{ID: 3, LeadID: 1, ScheduledAt: now.Add(30 * time.Minute)},
		},
		tasks: []*models.Task{
			{ID: 9, LeadID: 1, Title: "Llamar a Juan", Priority: "alta", DueAt: now.Add(20 * time.Minute)},
		},
	}
	svc := newNotificationServiceForTest(src)

	feed, err := svc.Feed(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, feed, 4)

	types := map[string]bool{}
	for _, n := range feed {
		types[n.Type] = true
	}
	assert.Equal(t, map[string]bool{"lead": true, "conversation": true, "appointment": true, "task": true}, types)

	// Upcoming items sort before past ones
	assert.Equal(t, "appointment-3", feed[0].ID)
	assert.Equal(t, "task-9", feed[1].ID)

	// Appointment message resolves the lead name
	assert.Equal(t, "Cita con Juan", feed[0].Message)
}

func TestFeed_ConvertedConversationDeduped(t *testing.T) {
	now := timeutil.Now()
	convID := 7
	src := &notificationSourcesMock{
		leads: []*models.Lead{
			{ID: 1, Name: "Juan", Source: "facebook", ConversationID: &convID, CreatedAt: now.Add(-5 * time.Minute)},
			{ID: 2, Name: "Ana", Source: "website", CreatedAt: now.Add(-4 * time.Minute)},
		},
		conversations: []*models.Conversation{
			{ID: 7, UpdatedAt: now.Add(-3 * time.Minute)},
			{ID: 8, UpdatedAt: now.Add(-1 * time.Minute)},
		},
	}
	svc := newNotificationServiceForTest(src)

	feed, err := svc.Feed(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	ids := map[string]bool{}
	for _, n := range feed {
		ids[n.ID] = true
	}
	assert.True(t, ids["conversation-7"], "conversation stays in the feed")
	assert.False(t, ids["lead-1"], "lead already represented by its conversation")
	assert.True(t, ids["conversation-8"])
	assert.True(t, ids["lead-2"], "lead without a conversation keeps its entry")
}

func TestFeed_LeadFromInactiveConversationKept(t *testing.T) {
	now := timeutil.Now()
	convID := 7
	src := &notificationSourcesMock{
		leads: []*models.Lead{
			{ID: 1, Name: "Juan", Source: "facebook", ConversationID: &convID, CreatedAt: now.Add(-5 * time.Minute)},
		},
	}
	svc := newNotificationServiceForTest(src)

	feed, err := svc.Feed(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "lead-1", feed[0].ID, "conversation no longer active, lead speaks for itself")
}

func TestFeed_TasksDueTodayIncluded(t *testing.T) {
	src := &notificationSourcesMock{}
	svc := newNotificationServiceForTest(src)

	_, err := svc.Feed(context.Background(), 7)
	require.NoError(t, err)

	// Cutoff covers the whole current day, not just the next hour
	now := timeutil.Now()
	assert.Equal(t, timeutil.EndOfDay(now).Format("2006-01-02 15:04"), src.taskCutoff.Format("2006-01-02 15:04"))
}

func TestFeed_CappedAtLimit(t *testing.T) {
	now := timeutil.Now()
	src := &notificationSourcesMock{}
	for i := 1; i <= 30; i++ {
		src.leads = append(src.leads, &models.Lead{
			ID:        i,
			Name:      fmt.Sprintf("Lead %d", i),
			Source:    "website",
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	svc := newNotificationServiceForTest(src)

	feed, err := svc.Feed(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, feed, feedLimit)
	assert.Equal(t, "lead-1", feed[0].ID, "most recent first")
}

func TestFeed_EmptySourcesReturnEmptySlice(t *testing.T) {
	svc := newNotificationServiceForTest(&notificationSourcesMock{})

	feed, err := svc.Feed(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
}
