package repositories

import (
	"context"
	"encoding/json"

	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VehicleRepository struct {
	DB *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{DB: db}
}

const vehicleColumns = `id, vin, stock_number, year, make, model, COALESCE(trim, '') as trim,
    price, mileage, status, images, COALESCE(facebook_post_id, '') as facebook_post_id,
    facebook_posted_at, created_at, updated_at`

func scanVehicle(row pgx.Row) (*models.Vehicle, error) {
	var v models.Vehicle
	var imagesJSON []byte
	err := row.Scan(&v.ID, &v.VIN, &v.StockNumber, &v.Year, &v.Make, &v.Model, &v.Trim,
		&v.Price, &v.Mileage, &v.Status, &imagesJSON, &v.FacebookPostID,
		&v.FacebookPostedAt, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Images = []string{}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &v.Images); err != nil {
			return nil, err
		}
	}
	return &v, nil
}

func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	if v.Images == nil {
		v.Images = []string{}
	}
	imagesJSON, err := json.Marshal(v.Images)
	if err != nil {
		return err
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO vehicles(vin, stock_number, year, make, model, trim, price, mileage, status, images)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id, created_at, updated_at`,
		v.VIN, v.StockNumber, v.Year, v.Make, v.Model, v.Trim, v.Price, v.Mileage, v.Status, imagesJSON,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *VehicleRepository) Get(ctx context.Context, id int) (*models.Vehicle, error) {
	return scanVehicle(r.DB.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id=$1`, id))
}

func (r *VehicleRepository) List(ctx context.Context, status string) ([]*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *VehicleRepository) Update(ctx context.Context, v *models.Vehicle) error {
	imagesJSON, err := json.Marshal(v.Images)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx,
		`UPDATE vehicles SET trim=$1, price=$2, mileage=$3, status=$4, images=$5,
             facebook_post_id=$6, facebook_posted_at=$7, updated_at=CURRENT_TIMESTAMP
         WHERE id=$8`,
		v.Trim, v.Price, v.Mileage, v.Status, imagesJSON, v.FacebookPostID, v.FacebookPostedAt, v.ID)
	return err
}

