package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/agriai/backend-mandi/internal/fees"
	"github.com/agriai/backend-mandi/internal/obs"
	"github.com/agriai/backend-mandi/internal/repo"
)

// ErrNotFound indicates the requested cart line could not be located.
var ErrNotFound = errors.New("cart item not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Store is the persistence surface cart operations need.
type Store interface {
	EnsureCart(ctx context.Context, userID, role string) (repo.Cart, error)
	ListCartItems(ctx context.Context, cartID string) ([]repo.CartItem, error)
	FindCartItemByCrop(ctx context.Context, cartID, cropID string) (repo.CartItem, error)
	GetCartItem(ctx context.Context, cartID, itemID string) (repo.CartItem, error)
	CreateCartItem(ctx context.Context, it repo.CartItem) (repo.CartItem, error)
	UpdateCartItem(ctx context.Context, itemID string, qty, price float64) (repo.CartItem, error)
	DeleteCartItem(ctx context.Context, cartID, itemID string) error
	ClearCart(ctx context.Context, cartID string) error
	GetCrop(ctx context.Context, id string) (repo.Crop, error)
}

// Service encapsulates cart domain operations. Fee totals are always
// recomputed from the full line list: tiered rates depend on the whole
// cart's composition, so nothing per-line is ever cached.
type Service struct {
	Store Store
}

// View selects which fee schedule prices a cart readout.
type View string

// Cart views.
const (
	// ViewDefault picks the schedule matching the cart's role: buyers see
	// the purchase schedule, farmers see their outgoing-sale schedule.
	ViewDefault View = ""
	// ViewPurchase prices the cart as an incoming purchase (fees added).
	ViewPurchase View = "purchase"
	// ViewSale prices the cart as an outgoing sale (fees deducted).
	ViewSale View = "sale"
	// ViewPreview is the lightweight net estimate used by notifications.
	ViewPreview View = "preview"
)

func scheduleFor(role fees.Role, view View) fees.Schedule {
	switch view {
	case ViewPurchase:
		return fees.PurchaseSchedule()
	case ViewSale:
		return fees.SaleSchedule()
	case ViewPreview:
		return fees.PreviewSchedule()
	}
	if role == fees.RoleFarmer {
		return fees.SaleSchedule()
	}
	return fees.PurchaseSchedule()
}

// AddItem adds a crop to the user's role-keyed cart, or tops up an
// existing line. Ordered quantity is clamped to the listed availability.
func (s *Service) AddItem(ctx context.Context, userID, role, cropID string, qty float64) (repo.CartItem, error) {
	if s == nil || s.Store == nil {
		return repo.CartItem{}, errors.New("cart service not configured")
	}
	if qty <= 0 {
		return repo.CartItem{}, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	crop, err := s.Store.GetCrop(ctx, cropID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.CartItem{}, fmt.Errorf("crop not found: %w", ErrInvalidInput)
		}
		return repo.CartItem{}, err
	}
	cart, err := s.Store.EnsureCart(ctx, userID, role)
	if err != nil {
		return repo.CartItem{}, err
	}

	existing, err := s.Store.FindCartItemByCrop(ctx, cart.ID, cropID)
	if err == nil {
		newQty := clampQty(existing.QuantityOrdered+qty, crop.QuantityAvailable)
		return s.Store.UpdateCartItem(ctx, existing.ID, newQty, existing.PricePerUnit)
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return repo.CartItem{}, err
	}

	return s.Store.CreateCartItem(ctx, repo.CartItem{
		CartID:            cart.ID,
		CropID:            crop.ID,
		CropName:          crop.Name,
		Category:          crop.Category,
		QuantityAvailable: crop.QuantityAvailable,
		QuantityOrdered:   clampQty(qty, crop.QuantityAvailable),
		PricePerUnit:      crop.PricePerUnit,
	})
}

// UpdateItem edits the ordered quantity and/or unit price of a line.
// Negative values leave the corresponding field unchanged.
func (s *Service) UpdateItem(ctx context.Context, userID, role, itemID string, qty, price float64) (repo.CartItem, error) {
	if s == nil || s.Store == nil {
		return repo.CartItem{}, errors.New("cart service not configured")
	}
	cart, err := s.Store.EnsureCart(ctx, userID, role)
	if err != nil {
		return repo.CartItem{}, err
	}
	item, err := s.Store.GetCartItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.CartItem{}, ErrNotFound
		}
		return repo.CartItem{}, err
	}
	if qty < 0 {
		qty = item.QuantityOrdered
	}
	if price < 0 {
		price = item.PricePerUnit
	}
	return s.Store.UpdateCartItem(ctx, item.ID, clampQty(qty, item.QuantityAvailable), price)
}

// RemoveItem deletes one line from the user's cart.
func (s *Service) RemoveItem(ctx context.Context, userID, role, itemID string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	cart, err := s.Store.EnsureCart(ctx, userID, role)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteCartItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Clear removes every line from the user's cart.
func (s *Service) Clear(ctx context.Context, userID, role string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	cart, err := s.Store.EnsureCart(ctx, userID, role)
	if err != nil {
		return err
	}
	return s.Store.ClearCart(ctx, cart.ID)
}

// Breakdown loads the cart and runs the fee engine over its lines.
func (s *Service) Breakdown(ctx context.Context, userID, role string, view View) ([]repo.CartItem, fees.Breakdown, error) {
	if s == nil || s.Store == nil {
		return nil, fees.Breakdown{}, errors.New("cart service not configured")
	}
	cart, err := s.Store.EnsureCart(ctx, userID, role)
	if err != nil {
		return nil, fees.Breakdown{}, err
	}
	items, err := s.Store.ListCartItems(ctx, cart.ID)
	if err != nil {
		return nil, fees.Breakdown{}, err
	}
	feeRole := fees.Role(role)
	schedule := scheduleFor(feeRole, view)
	calc := fees.NewCalculator(schedule)
	breakdown := calc.Compute(feeLines(items), feeRole)
	if obs.FeeComputeTotal != nil {
		obs.FeeComputeTotal.WithLabelValues(schedule.Name, role).Inc()
	}
	return items, breakdown, nil
}

func feeLines(items []repo.CartItem) []fees.LineItem {
	lines := make([]fees.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, fees.LineItem{
			ID:                it.ID,
			CropName:          it.CropName,
			Category:          it.Category,
			QuantityAvailable: it.QuantityAvailable,
			QuantityOrdered:   it.QuantityOrdered,
			PricePerUnit:      it.PricePerUnit,
		})
	}
	return lines
}

func clampQty(qty, available float64) float64 {
	if qty < 0 {
		return 0
	}
	if available > 0 && qty > available {
		return available
	}
	return qty
}
