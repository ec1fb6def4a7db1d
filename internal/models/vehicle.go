package models

import "time"

type Vehicle struct {
	ID               int        `json:"id"`
	VIN              string     `json:"vin"`
	StockNumber      string     `json:"stock_number"`
	Year             int        `json:"year"`
	Make             string     `json:"make"`
	Model            string     `json:"model"`
	Trim             string     `json:"trim,omitempty"`
	Price            float64    `json:"price"`
	Mileage          int        `json:"mileage"`
	Status           string     `json:"status"` // available, pending, sold
	Images           []string   `json:"images"`
	FacebookPostID   string     `json:"facebook_post_id,omitempty"`
	FacebookPostedAt *time.Time `json:"facebook_posted_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateVehicleRequest represents the request body for adding inventory
type CreateVehicleRequest struct {
	VIN         string  `json:"vin" validate:"required,len=17"`
	StockNumber string  `json:"stock_number" validate:"required"`
	Year        int     `json:"year" validate:"required,gte=1950,lte=2100"`
	Make        string  `json:"make" validate:"required"`
	Model       string  `json:"model" validate:"required"`
	Trim        string  `json:"trim"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Mileage     int     `json:"mileage" validate:"gte=0"`
}

// UpdateVehicleRequest is a partial inventory update
type UpdateVehicleRequest struct {
	Price   *float64 `json:"price"`
	Mileage *int     `json:"mileage"`
	Status  *string  `json:"status" validate:"omitempty,oneof=available pending sold"`
	Trim    *string  `json:"trim"`
}
