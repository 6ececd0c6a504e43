package deal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agriai/backend-mandi/internal/cart"
	"github.com/agriai/backend-mandi/internal/events"
	"github.com/agriai/backend-mandi/internal/fees"
	"github.com/agriai/backend-mandi/internal/obs"
	"github.com/agriai/backend-mandi/internal/repo"
)

// Errors surfaced to the HTTP layer.
var (
	ErrNotFound          = errors.New("deal not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("deal belongs to another user")
)

// DealStore is the persistence surface deal operations need.
type DealStore interface {
	CreateDeal(ctx context.Context, d repo.Deal) (repo.Deal, error)
	GetDeal(ctx context.Context, id string) (repo.Deal, error)
	ListDealsByUser(ctx context.Context, userID string, limit, offset int) ([]repo.Deal, error)
	UpdateDealStatus(ctx context.Context, id, status string) (repo.Deal, error)
}

// CartSource provides the cart snapshot a deal is created from.
type CartSource interface {
	Breakdown(ctx context.Context, userID, role string, view cart.View) ([]repo.CartItem, fees.Breakdown, error)
	Clear(ctx context.Context, userID, role string) error
}

// Service turns carts into persisted deals and manages their lifecycle.
type Service struct {
	Store DealStore
	Carts CartSource
	Bus   *events.Bus
	Log   zerolog.Logger
}

// Line is the frozen per-item snapshot stored with a deal. It carries both
// the trade terms and the fee breakdown computed at creation time.
type Line struct {
	CropID           string     `json:"cropId"`
	CropName         string     `json:"cropName"`
	Category         string     `json:"category"`
	Group            fees.Group `json:"group"`
	QuantityOrdered  float64    `json:"quantityOrdered"`
	PricePerUnit     float64    `json:"pricePerUnit"`
	TaxRate          float64    `json:"taxRate"`
	CommissionRate   float64    `json:"commissionRate"`
	TaxAmount        float64    `json:"taxAmount"`
	CommissionAmount float64    `json:"commissionAmount"`
	LineSubtotal     float64    `json:"lineSubtotal"`
	ItemTotal        float64    `json:"itemTotal"`
}

func directionFor(role string) string {
	if role == string(fees.RoleFarmer) {
		return "sale"
	}
	return "purchase"
}

// Create snapshots the user's cart into a pending deal, clears the cart and
// emits a deal.created event. The fee breakdown is frozen at this point.
func (s *Service) Create(ctx context.Context, userID, role, email string) (repo.Deal, error) {
	if s == nil || s.Store == nil || s.Carts == nil {
		return repo.Deal{}, errors.New("deal service not configured")
	}
	items, breakdown, err := s.Carts.Breakdown(ctx, userID, role, cart.ViewDefault)
	if err != nil {
		return repo.Deal{}, err
	}
	if len(items) == 0 {
		return repo.Deal{}, ErrEmptyCart
	}
	lines := snapshotLines(items, breakdown.Lines)
	encoded, err := json.Marshal(lines)
	if err != nil {
		return repo.Deal{}, fmt.Errorf("deal: encode lines: %w", err)
	}

	created, err := s.Store.CreateDeal(ctx, repo.Deal{
		UserID:          userID,
		Role:            role,
		Direction:       directionFor(role),
		Status:          repo.DealStatusPending,
		Subtotal:        breakdown.Summary.Subtotal,
		TaxTotal:        breakdown.Summary.TaxTotal,
		CommissionTotal: breakdown.Summary.CommissionTotal,
		GrandTotal:      breakdown.Summary.GrandTotal,
		Lines:           encoded,
	})
	if err != nil {
		return repo.Deal{}, err
	}
	if obs.DealsCreatedTotal != nil {
		obs.DealsCreatedTotal.WithLabelValues(created.Direction).Inc()
	}

	if err := s.Carts.Clear(ctx, userID, role); err != nil {
		s.Log.Error().Err(err).Str("deal_id", created.ID).Msg("cart clear after deal failed")
	}
	s.emit(ctx, events.TopicDealCreated, created, email)
	return created, nil
}

// Get loads one deal, scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, id string) (repo.Deal, error) {
	if s == nil || s.Store == nil {
		return repo.Deal{}, errors.New("deal service not configured")
	}
	d, err := s.Store.GetDeal(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.Deal{}, ErrNotFound
	}
	if err != nil {
		return repo.Deal{}, err
	}
	if d.UserID != userID {
		return repo.Deal{}, ErrForbidden
	}
	return d, nil
}

// List returns the user's deals, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]repo.Deal, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("deal service not configured")
	}
	return s.Store.ListDealsByUser(ctx, userID, limit, offset)
}

// UpdateStatus transitions a pending deal to accepted or declined. Settled
// deals are immutable.
func (s *Service) UpdateStatus(ctx context.Context, userID, id, status, email string) (repo.Deal, error) {
	if s == nil || s.Store == nil {
		return repo.Deal{}, errors.New("deal service not configured")
	}
	if status != repo.DealStatusAccepted && status != repo.DealStatusDeclined {
		return repo.Deal{}, fmt.Errorf("status %q: %w", status, ErrInvalidTransition)
	}
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return repo.Deal{}, err
	}
	if current.Status != repo.DealStatusPending {
		return repo.Deal{}, fmt.Errorf("deal is %s: %w", current.Status, ErrInvalidTransition)
	}
	updated, err := s.Store.UpdateDealStatus(ctx, id, status)
	if err != nil {
		return repo.Deal{}, err
	}
	if obs.DealStatusTotal != nil {
		obs.DealStatusTotal.WithLabelValues(status).Inc()
	}
	topic := events.TopicDealAccepted
	if status == repo.DealStatusDeclined {
		topic = events.TopicDealDeclined
	}
	s.emit(ctx, topic, updated, email)
	return updated, nil
}

func (s *Service) emit(ctx context.Context, topic string, d repo.Deal, email string) {
	if s.Bus == nil {
		return
	}
	payload := map[string]any{
		"dealId":     d.ID,
		"status":     d.Status,
		"role":       d.Role,
		"direction":  d.Direction,
		"grandTotal": d.GrandTotal,
		"email":      email,
	}
	if _, err := s.Bus.Emit(ctx, topic, d.ID, payload); err != nil {
		s.Log.Error().Err(err).Str("deal_id", d.ID).Str("topic", topic).Msg("deal event emit failed")
	}
}

func snapshotLines(items []repo.CartItem, results []fees.LineResult) []Line {
	byID := make(map[string]fees.LineResult, len(results))
	for _, r := range results {
		byID[r.ID] = r
	}
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		r := byID[it.ID]
		lines = append(lines, Line{
			CropID:           it.CropID,
			CropName:         it.CropName,
			Category:         it.Category,
			Group:            r.Group,
			QuantityOrdered:  it.QuantityOrdered,
			PricePerUnit:     it.PricePerUnit,
			TaxRate:          r.TaxRate,
			CommissionRate:   r.CommissionRate,
			TaxAmount:        r.TaxAmount,
			CommissionAmount: r.CommissionAmount,
			LineSubtotal:     r.LineSubtotal,
			ItemTotal:        r.ItemTotal,
		})
	}
	return lines
}

// DecodeLines parses the frozen line snapshot stored with a deal.
func DecodeLines(d repo.Deal) ([]Line, error) {
	if len(d.Lines) == 0 {
		return nil, nil
	}
	var lines []Line
	if err := json.Unmarshal(d.Lines, &lines); err != nil {
		return nil, fmt.Errorf("deal: decode lines: %w", err)
	}
	return lines, nil
}
