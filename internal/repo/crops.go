package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Crop is a catalog listing offered by a farmer.
type Crop struct {
	ID                string    `json:"id"`
	FarmerID          string    `json:"farmerId"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	Variety           string    `json:"variety,omitempty"`
	PricePerUnit      float64   `json:"pricePerUnit"`
	QuantityAvailable float64   `json:"quantityAvailable"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

const cropColumns = `id, farmer_id, name, category, variety, price_per_unit, quantity_available, created_at, updated_at`

func scanCrop(row pgx.Row) (Crop, error) {
	var c Crop
	err := row.Scan(&c.ID, &c.FarmerID, &c.Name, &c.Category, &c.Variety,
		&c.PricePerUnit, &c.QuantityAvailable, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Crop{}, ErrNotFound
	}
	return c, err
}

// ListCrops returns a page of catalog listings ordered by creation time.
func (s *Store) ListCrops(ctx context.Context, limit, offset int) ([]Crop, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+cropColumns+` FROM crops ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var crops []Crop
	for rows.Next() {
		c, err := scanCrop(rows)
		if err != nil {
			return nil, err
		}
		crops = append(crops, c)
	}
	return crops, rows.Err()
}

// CountCrops returns the total number of catalog listings.
func (s *Store) CountCrops(ctx context.Context) (int, error) {
	var count int
	err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM crops`).Scan(&count)
	return count, err
}

// GetCrop loads one listing by id.
func (s *Store) GetCrop(ctx context.Context, id string) (Crop, error) {
	return scanCrop(s.Pool.QueryRow(ctx,
		`SELECT `+cropColumns+` FROM crops WHERE id = $1`, id))
}

// CreateCrop inserts a new listing and returns it.
func (s *Store) CreateCrop(ctx context.Context, c Crop) (Crop, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return scanCrop(s.Pool.QueryRow(ctx,
		`INSERT INTO crops (id, farmer_id, name, category, variety, price_per_unit, quantity_available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+cropColumns,
		c.ID, c.FarmerID, c.Name, c.Category, c.Variety, c.PricePerUnit, c.QuantityAvailable))
}

// UpdateCrop updates price and quantity for a listing owned by the farmer.
func (s *Store) UpdateCrop(ctx context.Context, id, farmerID string, price, quantity float64) (Crop, error) {
	return scanCrop(s.Pool.QueryRow(ctx,
		`UPDATE crops SET price_per_unit = $3, quantity_available = $4, updated_at = now()
		 WHERE id = $1 AND farmer_id = $2
		 RETURNING `+cropColumns,
		id, farmerID, price, quantity))
}
