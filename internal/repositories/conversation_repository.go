package repositories

import (
	"context"

	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationRepository struct {
	DB *pgxpool.Pool
}

func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{DB: db}
}

func (r *ConversationRepository) Get(ctx context.Context, id int) (*models.Conversation, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, COALESCE(phone_number, '') as phone_number, platform, status, urgency_level,
             message_count, created_at, updated_at
         FROM conversations WHERE id=$1`, id)

	var c models.Conversation
	err := row.Scan(&c.ID, &c.PhoneNumber, &c.Platform, &c.Status, &c.UrgencyLevel,
		&c.MessageCount, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *ConversationRepository) List(ctx context.Context) ([]*models.Conversation, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, COALESCE(phone_number, '') as phone_number, platform, status, urgency_level,
             message_count, created_at, updated_at
         FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		var c models.Conversation
		err := rows.Scan(&c.ID, &c.PhoneNumber, &c.Platform, &c.Status, &c.UrgencyLevel,
			&c.MessageCount, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, &c)
	}
	return conversations, rows.Err()
}

// ListRecentActive returns the newest active conversations for the feed
func (r *ConversationRepository) ListRecentActive(ctx context.Context, limit int) ([]*models.Conversation, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, COALESCE(phone_number, '') as phone_number, platform, status, urgency_level,
             message_count, created_at, updated_at
         FROM conversations WHERE status='active' ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		var c models.Conversation
		err := rows.Scan(&c.ID, &c.PhoneNumber, &c.Platform, &c.Status, &c.UrgencyLevel,
			&c.MessageCount, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, &c)
	}
	return conversations, rows.Err()
}

// GetContext returns the derived context row, or pgx.ErrNoRows when the
// conversation never produced one.
func (r *ConversationRepository) GetContext(ctx context.Context, conversationID int) (*models.ConversationContext, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, conversation_id, COALESCE(vehicle_interest, '') as vehicle_interest,
             COALESCE(budget_range, '') as budget_range, COALESCE(credit_situation, '') as credit_situation,
             COALESCE(concerns, '') as concerns, COALESCE(timeline, '') as timeline, updated_at
         FROM conversation_contexts WHERE conversation_id=$1`, conversationID)

	var cc models.ConversationContext
	err := row.Scan(&cc.ID, &cc.ConversationID, &cc.VehicleInterest, &cc.BudgetRange,
		&cc.CreditSituation, &cc.Concerns, &cc.Timeline, &cc.UpdatedAt)
	return &cc, err
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID int) ([]*models.Message, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, conversation_id, role, content, created_at
         FROM messages WHERE conversation_id=$1 ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func (r *ConversationRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE conversations SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		status, id)
	return err
}
