package repositories

import (
	"context"
	"encoding/json"

	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type InteractionRepository struct {
	DB *pgxpool.Pool
}

func NewInteractionRepository(db *pgxpool.Pool) *InteractionRepository {
	return &InteractionRepository{DB: db}
}

// Create appends an interaction row. Interactions are immutable; there is
// no update or delete.
func (r *InteractionRepository) Create(ctx context.Context, i *models.Interaction) error {
	metadata := i.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	var userID interface{}
	if i.UserID != 0 {
		userID = i.UserID
	}

	return r.DB.QueryRow(ctx,
		`INSERT INTO interactions(lead_id, user_id, type, outcome, notes, duration_seconds, metadata)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at`,
		i.LeadID, userID, i.Type, i.Outcome, i.Notes, i.DurationSeconds, metaJSON,
	).Scan(&i.ID, &i.CreatedAt)
}

func (r *InteractionRepository) ListByLead(ctx context.Context, leadID int) ([]*models.Interaction, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, lead_id, COALESCE(user_id, 0) as user_id, type, COALESCE(outcome, '') as outcome,
             COALESCE(notes, '') as notes, duration_seconds, metadata, created_at
         FROM interactions WHERE lead_id=$1 ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []*models.Interaction
	for rows.Next() {
		var i models.Interaction
		var metaJSON []byte
		err := rows.Scan(&i.ID, &i.LeadID, &i.UserID, &i.Type, &i.Outcome, &i.Notes,
			&i.DurationSeconds, &metaJSON, &i.CreatedAt)
		if err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &i.Metadata); err != nil {
				return nil, err
			}
		}
		interactions = append(interactions, &i)
	}
	return interactions, rows.Err()
}
