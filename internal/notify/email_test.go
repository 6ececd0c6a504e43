package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/agriai/backend-mandi/internal/common"
	"github.com/agriai/backend-mandi/internal/deal"
	"github.com/agriai/backend-mandi/internal/events"
	"github.com/agriai/backend-mandi/internal/fees"
	"github.com/agriai/backend-mandi/internal/invoice"
	"github.com/agriai/backend-mandi/internal/repo"
)

type fakeDealSource struct {
	deals map[string]repo.Deal
}

func (f *fakeDealSource) GetDeal(_ context.Context, id string) (repo.Deal, error) {
	d, ok := f.deals[id]
	if !ok {
		return repo.Deal{}, repo.ErrNotFound
	}
	return d, nil
}

func acceptedDealFixture(t *testing.T) repo.Deal {
	t.Helper()
	lines := []deal.Line{{
		CropID:           "crop-1",
		CropName:         "Wheat",
		Category:         "crop",
		Group:            fees.GroupCrop,
		QuantityOrdered:  100,
		PricePerUnit:     50,
		TaxRate:          18,
		CommissionRate:   2.0,
		TaxAmount:        18,
		CommissionAmount: 100,
		LineSubtotal:     5000,
		ItemTotal:        4882,
	}}
	encoded, err := json.Marshal(lines)
	require.NoError(t, err)
	return repo.Deal{
		ID:              "deal-1",
		UserID:          "u1",
		Role:            "farmer",
		Direction:       "sale",
		Status:          repo.DealStatusAccepted,
		Subtotal:        5000,
		TaxTotal:        18,
		CommissionTotal: 100,
		GrandTotal:      4882,
		Lines:           encoded,
		CreatedAt:       time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestHandleDealEmailSends(t *testing.T) {
	mail := &common.InMemoryEmail{}
	worker := &EmailWorker{Mail: mail, Enabled: true, Log: zerolog.Nop()}

	task, err := NewDealEmailTask(DealEmailPayload{
		DealID:     "deal-1",
		Topic:      events.TopicDealAccepted,
		Email:      "farmer@example.com",
		Role:       "farmer",
		Status:     "accepted",
		GrandTotal: 4882,
	})
	require.NoError(t, err)

	require.NoError(t, worker.HandleDealEmail(context.Background(), task))
	require.Len(t, mail.Outbox, 1)
	require.Equal(t, "farmer@example.com", mail.Outbox[0].To)
	require.Equal(t, "Your deal was accepted", mail.Outbox[0].Subject)
	require.Contains(t, mail.Outbox[0].HTML, "deal-1")
	require.Contains(t, mail.Outbox[0].HTML, "receivable")
	require.Contains(t, mail.Outbox[0].HTML, "4882.00")
}

func TestHandleDealEmailEmbedsInvoice(t *testing.T) {
	mail := &common.InMemoryEmail{}
	worker := &EmailWorker{
		Mail:    mail,
		Deals:   &fakeDealSource{deals: map[string]repo.Deal{"deal-1": acceptedDealFixture(t)}},
		Invoice: invoice.NewRenderer("en-IN"),
		Enabled: true,
		Log:     zerolog.Nop(),
	}

	task, err := NewDealEmailTask(DealEmailPayload{
		DealID:     "deal-1",
		Topic:      events.TopicDealCreated,
		Email:      "farmer@example.com",
		Role:       "farmer",
		Status:     "pending",
		GrandTotal: 4882,
	})
	require.NoError(t, err)

	require.NoError(t, worker.HandleDealEmail(context.Background(), task))
	require.Len(t, mail.Outbox, 1)
	html := mail.Outbox[0].HTML
	require.Contains(t, html, "Wheat")
	require.Contains(t, html, "2.0%")
	require.Contains(t, html, "Net receivable")
	require.Contains(t, html, "₹4,882.00")
}

func TestHandleDealEmailMissingDealRetries(t *testing.T) {
	mail := &common.InMemoryEmail{}
	worker := &EmailWorker{
		Mail:    mail,
		Deals:   &fakeDealSource{deals: map[string]repo.Deal{}},
		Invoice: invoice.NewRenderer("en-IN"),
		Enabled: true,
		Log:     zerolog.Nop(),
	}

	task, err := NewDealEmailTask(DealEmailPayload{DealID: "ghost", Email: "x@example.com"})
	require.NoError(t, err)
	require.Error(t, worker.HandleDealEmail(context.Background(), task))
	require.Empty(t, mail.Outbox)
}

func TestHandleDealEmailDisabledSkips(t *testing.T) {
	mail := &common.InMemoryEmail{}
	worker := &EmailWorker{Mail: mail, Enabled: false, Log: zerolog.Nop()}

	task, err := NewDealEmailTask(DealEmailPayload{DealID: "deal-1", Email: "x@example.com"})
	require.NoError(t, err)
	require.NoError(t, worker.HandleDealEmail(context.Background(), task))
	require.Empty(t, mail.Outbox)
}

func TestHandleDealEmailMalformedPayload(t *testing.T) {
	worker := &EmailWorker{Mail: &common.InMemoryEmail{}, Enabled: true, Log: zerolog.Nop()}
	task := asynq.NewTask(TypeDealEmail, []byte("{broken"))
	require.Error(t, worker.HandleDealEmail(context.Background(), task))
}

func TestEnqueuerIgnoresUnrelatedTopics(t *testing.T) {
	enq := Enqueuer{}
	err := enq.Notify(context.Background(), repo.DomainEvent{Topic: events.TopicCropCreated})
	require.NoError(t, err)
}

func TestBuyerDealBodyIsPayable(t *testing.T) {
	body := bodyFor(DealEmailPayload{DealID: "deal-2", Role: "buyer", Status: "pending", GrandTotal: 1191.6})
	require.Contains(t, body, "payable")
	require.Contains(t, body, "1191.60")
}
