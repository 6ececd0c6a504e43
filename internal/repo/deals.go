package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Deal statuses.
const (
	DealStatusPending  = "pending"
	DealStatusAccepted = "accepted"
	DealStatusDeclined = "declined"
)

// Deal is a contract-farming agreement generated from a cart snapshot.
// The per-line fee breakdown is frozen at creation time so the invoice
// never drifts from what the parties agreed to.
type Deal struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Role            string          `json:"role"`
	Direction       string          `json:"direction"`
	Status          string          `json:"status"`
	Subtotal        float64         `json:"subtotal"`
	TaxTotal        float64         `json:"taxTotal"`
	CommissionTotal float64         `json:"commissionTotal"`
	GrandTotal      float64         `json:"grandTotal"`
	Lines           json.RawMessage `json:"lines"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

const dealColumns = `id, user_id, role, direction, status, subtotal, tax_total, commission_total, grand_total, lines, created_at, updated_at`

func scanDeal(row pgx.Row) (Deal, error) {
	var d Deal
	err := row.Scan(&d.ID, &d.UserID, &d.Role, &d.Direction, &d.Status,
		&d.Subtotal, &d.TaxTotal, &d.CommissionTotal, &d.GrandTotal,
		&d.Lines, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Deal{}, ErrNotFound
	}
	return d, err
}

// CreateDeal persists a deal snapshot.
func (s *Store) CreateDeal(ctx context.Context, d Deal) (Deal, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = DealStatusPending
	}
	return scanDeal(s.Pool.QueryRow(ctx,
		`INSERT INTO deals (id, user_id, role, direction, status, subtotal, tax_total, commission_total, grand_total, lines)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+dealColumns,
		d.ID, d.UserID, d.Role, d.Direction, d.Status,
		d.Subtotal, d.TaxTotal, d.CommissionTotal, d.GrandTotal, d.Lines))
}

// GetDeal loads one deal by id.
func (s *Store) GetDeal(ctx context.Context, id string) (Deal, error) {
	return scanDeal(s.Pool.QueryRow(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE id = $1`, id))
}

// ListDealsByUser returns the user's deals, newest first.
func (s *Store) ListDealsByUser(ctx context.Context, userID string, limit, offset int) ([]Deal, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var deals []Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// UpdateDealStatus transitions a deal to the provided status.
func (s *Store) UpdateDealStatus(ctx context.Context, id, status string) (Deal, error) {
	return scanDeal(s.Pool.QueryRow(ctx,
		`UPDATE deals SET status = $2, updated_at = now() WHERE id = $1 RETURNING `+dealColumns,
		id, status))
}
