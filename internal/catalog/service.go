package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agriai/backend-mandi/internal/events"
	"github.com/agriai/backend-mandi/internal/repo"
)

// ErrNotFound indicates the requested listing does not exist.
var ErrNotFound = errors.New("crop not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// CropStore is the persistence surface the catalog needs.
type CropStore interface {
	ListCrops(ctx context.Context, limit, offset int) ([]repo.Crop, error)
	CountCrops(ctx context.Context) (int, error)
	GetCrop(ctx context.Context, id string) (repo.Crop, error)
	CreateCrop(ctx context.Context, c repo.Crop) (repo.Crop, error)
	UpdateCrop(ctx context.Context, id, farmerID string, price, quantity float64) (repo.Crop, error)
}

// Service encapsulates crop catalog operations.
type Service struct {
	Store CropStore
	Cache *Cache
	Bus   *events.Bus
	Log   zerolog.Logger
}

// ListPage is a cached page of listings.
type ListPage struct {
	Crops []repo.Crop `json:"crops"`
	Total int         `json:"total"`
}

// listKeySet tracks every cached listing page so writes can drop them all,
// whatever page size the clients asked for.
const listKeySet = "catalog:crops:pages"

func listKey(page, perPage int) string {
	return fmt.Sprintf("catalog:crops:p%d:n%d", page, perPage)
}

// List returns a page of listings, served from cache when possible.
func (s *Service) List(ctx context.Context, page, perPage int) (ListPage, error) {
	if s == nil || s.Store == nil {
		return ListPage{}, errors.New("catalog service not configured")
	}
	key := listKey(page, perPage)
	var cached ListPage
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	crops, err := s.Store.ListCrops(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return ListPage{}, err
	}
	total, err := s.Store.CountCrops(ctx)
	if err != nil {
		return ListPage{}, err
	}
	result := ListPage{Crops: crops, Total: total}
	_ = s.Cache.SetJSONTracked(ctx, listKeySet, key, result)
	return result, nil
}

// Get loads one listing.
func (s *Service) Get(ctx context.Context, id string) (repo.Crop, error) {
	if s == nil || s.Store == nil {
		return repo.Crop{}, errors.New("catalog service not configured")
	}
	crop, err := s.Store.GetCrop(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.Crop{}, ErrNotFound
	}
	return crop, err
}

// Create adds a listing for the farmer and drops all cached listing pages.
func (s *Service) Create(ctx context.Context, c repo.Crop) (repo.Crop, error) {
	if s == nil || s.Store == nil {
		return repo.Crop{}, errors.New("catalog service not configured")
	}
	if c.FarmerID == "" || c.Name == "" {
		return repo.Crop{}, fmt.Errorf("farmer id and name are required: %w", ErrInvalidInput)
	}
	if c.PricePerUnit < 0 || c.QuantityAvailable < 0 {
		return repo.Crop{}, fmt.Errorf("price and quantity must be non-negative: %w", ErrInvalidInput)
	}
	crop, err := s.Store.CreateCrop(ctx, c)
	if err != nil {
		return repo.Crop{}, err
	}
	_ = s.Cache.InvalidateSet(ctx, listKeySet)
	s.emit(ctx, events.TopicCropCreated, crop)
	return crop, nil
}

// Update adjusts price and quantity on a listing owned by the farmer.
func (s *Service) Update(ctx context.Context, id, farmerID string, price, quantity float64) (repo.Crop, error) {
	if s == nil || s.Store == nil {
		return repo.Crop{}, errors.New("catalog service not configured")
	}
	if price < 0 || quantity < 0 {
		return repo.Crop{}, fmt.Errorf("price and quantity must be non-negative: %w", ErrInvalidInput)
	}
	crop, err := s.Store.UpdateCrop(ctx, id, farmerID, price, quantity)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.Crop{}, ErrNotFound
	}
	if err != nil {
		return repo.Crop{}, err
	}
	_ = s.Cache.InvalidateSet(ctx, listKeySet)
	s.emit(ctx, events.TopicCropUpdated, crop)
	return crop, nil
}

// emit records a catalog event. Listing writes succeed even when the event
// log is unavailable, so failures are logged rather than returned.
func (s *Service) emit(ctx context.Context, topic string, crop repo.Crop) {
	if s.Bus == nil {
		return
	}
	payload := map[string]any{
		"cropId":            crop.ID,
		"farmerId":          crop.FarmerID,
		"name":              crop.Name,
		"category":          crop.Category,
		"pricePerUnit":      crop.PricePerUnit,
		"quantityAvailable": crop.QuantityAvailable,
	}
	if _, err := s.Bus.Emit(ctx, topic, crop.ID, payload); err != nil {
		s.Log.Error().Err(err).Str("crop_id", crop.ID).Str("topic", topic).Msg("crop event emit failed")
	}
}

// DefaultPerPage is the page size used when the client does not specify one.
const DefaultPerPage = 20
