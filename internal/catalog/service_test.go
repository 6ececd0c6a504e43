package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/agriai/backend-mandi/internal/events"
	"github.com/agriai/backend-mandi/internal/repo"
)

type fakeCropStore struct {
	crops     []repo.Crop
	listCalls int
}

func (f *fakeCropStore) ListCrops(_ context.Context, limit, offset int) ([]repo.Crop, error) {
	f.listCalls++
	if offset >= len(f.crops) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.crops) {
		end = len(f.crops)
	}
	return f.crops[offset:end], nil
}

func (f *fakeCropStore) CountCrops(_ context.Context) (int, error) {
	return len(f.crops), nil
}

func (f *fakeCropStore) GetCrop(_ context.Context, id string) (repo.Crop, error) {
	for _, c := range f.crops {
		if c.ID == id {
			return c, nil
		}
	}
	return repo.Crop{}, repo.ErrNotFound
}

func (f *fakeCropStore) CreateCrop(_ context.Context, c repo.Crop) (repo.Crop, error) {
	c.ID = fmt.Sprintf("crop-%d", len(f.crops)+1)
	f.crops = append(f.crops, c)
	return c, nil
}

func (f *fakeCropStore) UpdateCrop(_ context.Context, id, farmerID string, price, quantity float64) (repo.Crop, error) {
	for i, c := range f.crops {
		if c.ID == id && c.FarmerID == farmerID {
			f.crops[i].PricePerUnit = price
			f.crops[i].QuantityAvailable = quantity
			return f.crops[i], nil
		}
	}
	return repo.Crop{}, repo.ErrNotFound
}

func newTestService(t *testing.T) (*Service, *fakeCropStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := &fakeCropStore{}
	return &Service{Store: store, Cache: NewCache(client, time.Minute)}, store
}

func TestListServesSecondReadFromCache(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, repo.Crop{FarmerID: "f1", Name: "Wheat", Category: "crops", PricePerUnit: 24, QuantityAvailable: 100})
	require.NoError(t, err)

	first, err := svc.List(ctx, 1, DefaultPerPage)
	require.NoError(t, err)
	require.Equal(t, 1, first.Total)
	require.Equal(t, 1, store.listCalls)

	second, err := svc.List(ctx, 1, DefaultPerPage)
	require.NoError(t, err)
	require.Equal(t, first.Total, second.Total)
	require.Len(t, second.Crops, 1)
	require.Equal(t, "Wheat", second.Crops[0].Name)
	require.Equal(t, 1, store.listCalls, "second page read must come from cache")
}

func TestCreateInvalidatesFirstPage(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, repo.Crop{FarmerID: "f1", Name: "Wheat", PricePerUnit: 24, QuantityAvailable: 100})
	require.NoError(t, err)

	_, err = svc.List(ctx, 1, DefaultPerPage)
	require.NoError(t, err)
	require.Equal(t, 1, store.listCalls)

	_, err = svc.Create(ctx, repo.Crop{FarmerID: "f1", Name: "Rice", PricePerUnit: 38, QuantityAvailable: 50})
	require.NoError(t, err)

	page, err := svc.List(ctx, 1, DefaultPerPage)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.Equal(t, 2, store.listCalls, "create must invalidate the cached first page")
}

func TestWritesInvalidateEveryCachedPage(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, repo.Crop{FarmerID: "f1", Name: fmt.Sprintf("Crop %d", i), PricePerUnit: 10, QuantityAvailable: 5})
		require.NoError(t, err)
	}

	_, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Equal(t, 2, store.listCalls)

	_, err = svc.Create(ctx, repo.Crop{FarmerID: "f1", Name: "Late arrival", PricePerUnit: 12, QuantityAvailable: 8})
	require.NoError(t, err)

	page, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Equal(t, 4, page.Total)
	require.Equal(t, 3, store.listCalls, "second page must be refetched after a write")
}

type memEventStore struct {
	events []repo.DomainEvent
}

func (m *memEventStore) InsertDomainEvent(_ context.Context, topic, aggregateID string, payload []byte) (repo.DomainEvent, error) {
	ev := repo.DomainEvent{ID: "ev", Topic: topic, AggregateID: aggregateID, Payload: payload}
	m.events = append(m.events, ev)
	return ev, nil
}

func TestWritesEmitCropEvents(t *testing.T) {
	svc, _ := newTestService(t)
	evs := &memEventStore{}
	svc.Bus = &events.Bus{Store: evs, Topics: events.DefaultTopics()}
	ctx := context.Background()

	created, err := svc.Create(ctx, repo.Crop{FarmerID: "f1", Name: "Wheat", PricePerUnit: 24, QuantityAvailable: 100})
	require.NoError(t, err)
	require.Len(t, evs.events, 1)
	require.Equal(t, events.TopicCropCreated, evs.events[0].Topic)
	require.Equal(t, created.ID, evs.events[0].AggregateID)
	require.Contains(t, string(evs.events[0].Payload), "Wheat")

	_, err = svc.Update(ctx, created.ID, "f1", 30, 90)
	require.NoError(t, err)
	require.Len(t, evs.events, 2)
	require.Equal(t, events.TopicCropUpdated, evs.events[1].Topic)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, repo.Crop{FarmerID: "f1"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, repo.Crop{FarmerID: "f1", Name: "Wheat", PricePerUnit: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateScopedToOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, repo.Crop{FarmerID: "f1", Name: "Wheat", PricePerUnit: 24, QuantityAvailable: 100})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, "someone-else", 30, 90)
	require.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.Update(ctx, created.ID, "f1", 30, 90)
	require.NoError(t, err)
	require.Equal(t, 30.0, updated.PricePerUnit)
	require.Equal(t, 90.0, updated.QuantityAvailable)
}

func TestGetMissingCrop(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
