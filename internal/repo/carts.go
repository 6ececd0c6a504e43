package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Cart is a role-keyed cart: a user holds at most one cart per role, so a
// farmer's purchase basket and their sale basket never mix.
type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartItem is one line in a cart. Crop attributes are snapshotted at add
// time so fee classification stays stable if the listing is edited later.
type CartItem struct {
	ID                string    `json:"id"`
	CartID            string    `json:"cartId"`
	CropID            string    `json:"cropId"`
	CropName          string    `json:"cropName"`
	Category          string    `json:"category"`
	QuantityAvailable float64   `json:"quantityAvailable"`
	QuantityOrdered   float64   `json:"quantityOrdered"`
	PricePerUnit      float64   `json:"pricePerUnit"`
	CreatedAt         time.Time `json:"createdAt"`
}

const cartItemColumns = `id, cart_id, crop_id, crop_name, category, quantity_available, quantity_ordered, price_per_unit, created_at`

func scanCartItem(row pgx.Row) (CartItem, error) {
	var it CartItem
	err := row.Scan(&it.ID, &it.CartID, &it.CropID, &it.CropName, &it.Category,
		&it.QuantityAvailable, &it.QuantityOrdered, &it.PricePerUnit, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CartItem{}, ErrNotFound
	}
	return it, err
}

// EnsureCart loads or creates the cart for the given user and role.
func (s *Store) EnsureCart(ctx context.Context, userID, role string) (Cart, error) {
	var c Cart
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO carts (id, user_id, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, role) DO UPDATE SET updated_at = now()
		 RETURNING id, user_id, role, created_at, updated_at`,
		uuid.NewString(), userID, role).
		Scan(&c.ID, &c.UserID, &c.Role, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListCartItems returns every line in the cart in insertion order.
func (s *Store) ListCartItems(ctx context.Context, cartID string) ([]CartItem, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE cart_id = $1 ORDER BY created_at`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CartItem
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// FindCartItemByCrop locates an existing line for a crop, if any.
func (s *Store) FindCartItemByCrop(ctx context.Context, cartID, cropID string) (CartItem, error) {
	return scanCartItem(s.Pool.QueryRow(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE cart_id = $1 AND crop_id = $2`, cartID, cropID))
}

// GetCartItem loads one line by id, scoped to the cart.
func (s *Store) GetCartItem(ctx context.Context, cartID, itemID string) (CartItem, error) {
	return scanCartItem(s.Pool.QueryRow(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID))
}

// CreateCartItem inserts a new line.
func (s *Store) CreateCartItem(ctx context.Context, it CartItem) (CartItem, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	return scanCartItem(s.Pool.QueryRow(ctx,
		`INSERT INTO cart_items (id, cart_id, crop_id, crop_name, category, quantity_available, quantity_ordered, price_per_unit)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+cartItemColumns,
		it.ID, it.CartID, it.CropID, it.CropName, it.Category,
		it.QuantityAvailable, it.QuantityOrdered, it.PricePerUnit))
}

// UpdateCartItem sets the ordered quantity and unit price for a line.
func (s *Store) UpdateCartItem(ctx context.Context, itemID string, qty, price float64) (CartItem, error) {
	return scanCartItem(s.Pool.QueryRow(ctx,
		`UPDATE cart_items SET quantity_ordered = $2, price_per_unit = $3
		 WHERE id = $1
		 RETURNING `+cartItemColumns,
		itemID, qty, price))
}

// DeleteCartItem removes one line from the cart.
func (s *Store) DeleteCartItem(ctx context.Context, cartID, itemID string) error {
	tag, err := s.Pool.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCart removes every line from the cart.
func (s *Store) ClearCart(ctx context.Context, cartID string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}
