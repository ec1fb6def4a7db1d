package services

import (
	"context"
	"errors"
	"fmt"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// QualificationStore is the qualification repository surface
type QualificationStore interface {
	GetForLead(ctx context.Context, leadID int) (*models.Qualification, error)
	ReplaceForLead(ctx context.Context, leadID int, q *models.Qualification) error
}

type QualificationService struct {
	qualifications QualificationStore
	leads          LeadStore
}

func NewQualificationService(qualifications QualificationStore, leads LeadStore) *QualificationService {
	return &QualificationService{qualifications: qualifications, leads: leads}
}

// GetForLead returns the full qualification bundle for a lead
func (s *QualificationService) GetForLead(ctx context.Context, leadID int) (*models.Qualification, error) {
	if _, err := s.leads.Get(ctx, leadID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lead %d: %w", leadID, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return s.qualifications.GetForLead(ctx, leadID)
}

// Save replaces the lead's qualification data wholesale: the dialog
// always submits the full form, so partial merges are never needed.
func (s *QualificationService) Save(ctx context.Context, leadID int, req *models.SaveQualificationRequest) (*models.Qualification, error) {
	if _, err := s.leads.Get(ctx, leadID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lead %d: %w", leadID, apperrors.ErrNotFound)
		}
		return nil, err
	}

	q := &models.Qualification{
		Employments:      req.Employments,
		BankAccounts:     req.BankAccounts,
		LegalDocuments:   req.LegalDocuments,
		Cosigners:        req.Cosigners,
		VehicleInterests: req.VehicleInterests,
	}
	if err := s.qualifications.ReplaceForLead(ctx, leadID, q); err != nil {
		return nil, fmt.Errorf("saving qualification for lead %d: %w", leadID, err)
	}
	return s.qualifications.GetForLead(ctx, leadID)
}
