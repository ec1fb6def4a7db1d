package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/models"
	"crm-backend/internal/storage"
	"crm-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// VehicleStore is the part of the vehicle repository this service consumes
type VehicleStore interface {
	Create(ctx context.Context, v *models.Vehicle) error
	Get(ctx context.Context, id int) (*models.Vehicle, error)
	List(ctx context.Context, status string) ([]*models.Vehicle, error)
	Update(ctx context.Context, v *models.Vehicle) error
}

type VehicleService struct {
	vehicles VehicleStore
	images   storage.ImageStore
}

func NewVehicleService(vehicles VehicleStore, images storage.ImageStore) *VehicleService {
	return &VehicleService{vehicles: vehicles, images: images}
}

// CreateVehicle adds a unit to inventory
func (s *VehicleService) CreateVehicle(ctx context.Context, req *models.CreateVehicleRequest) (*models.Vehicle, error) {
	v := &models.Vehicle{
		VIN:         strings.ToUpper(req.VIN),
		StockNumber: req.StockNumber,
		Year:        req.Year,
		Make:        req.Make,
		Model:       req.Model,
		Trim:        req.Trim,
		Price:       req.Price,
		Mileage:     req.Mileage,
		Status:      "available",
		Images:      []string{},
	}
	if err := s.vehicles.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("creating vehicle: %w", err)
	}
	return v, nil
}

// GetVehicle fetches one inventory unit
func (s *VehicleService) GetVehicle(ctx context.Context, id int) (*models.Vehicle, error) {
	v, err := s.vehicles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// ListVehicles returns inventory, optionally filtered by status
func (s *VehicleService) ListVehicles(ctx context.Context, status string) ([]*models.Vehicle, error) {
	if status != "" && status != "available" && status != "pending" && status != "sold" {
		return nil, fmt.Errorf("unknown vehicle status %q: %w", status, apperrors.ErrValidation)
	}
	return s.vehicles.List(ctx, status)
}

// UpdateVehicle applies a partial inventory update
func (s *VehicleService) UpdateVehicle(ctx context.Context, id int, req *models.UpdateVehicleRequest) (*models.Vehicle, error) {
	v, err := s.vehicles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	if req.Price != nil {
		v.Price = *req.Price
	}
	if req.Mileage != nil {
		v.Mileage = *req.Mileage
	}
	if req.Status != nil {
		v.Status = *req.Status
	}
	if req.Trim != nil {
		v.Trim = *req.Trim
	}

	if err := s.vehicles.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("updating vehicle %d: %w", id, err)
	}
	return v, nil
}

// AddImage uploads a photo and attaches its URL to the vehicle. When
// the database update fails the uploaded object is removed again so the
// bucket does not accumulate orphans.
func (s *VehicleService) AddImage(ctx context.Context, id int, filename, contentType string, data []byte) (*models.Vehicle, error) {
	v, err := s.vehicles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("empty image upload: %w", apperrors.ErrValidation)
	}

	key := fmt.Sprintf("vehicles/%d/%d-%s", id, timeutil.Now().UnixNano(), sanitizeFilename(filename))
	url, err := s.images.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}

	v.Images = append(v.Images, url)
	if err := s.vehicles.Update(ctx, v); err != nil {
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			log.Printf("[Vehicles] Rollback delete failed for %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("attaching image to vehicle %d: %w", id, err)
	}
	return v, nil
}

// sanitizeFilename strips path separators and spaces from upload names
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		return "image"
	}
	return name
}
