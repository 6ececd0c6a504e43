package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/agriai/backend-mandi/internal/events"
	"github.com/agriai/backend-mandi/internal/repo"
)

// TypeDealEmail is the asynq task type for deal notification emails.
const TypeDealEmail = "notify:deal_email"

// DealEmailPayload is the task payload carried through the queue.
type DealEmailPayload struct {
	DealID     string  `json:"dealId"`
	Topic      string  `json:"topic"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	Status     string  `json:"status"`
	GrandTotal float64 `json:"grandTotal"`
}

// NewDealEmailTask builds the asynq task for a deal notification.
func NewDealEmailTask(p DealEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("notify: encode payload: %w", err)
	}
	return asynq.NewTask(TypeDealEmail, data, asynq.MaxRetry(5)), nil
}

// Enqueuer bridges the event bus to the task queue: deal events become
// queued email tasks processed by the worker.
type Enqueuer struct {
	Client *asynq.Client
}

// Notify implements events.Notifier.
func (e Enqueuer) Notify(ctx context.Context, event repo.DomainEvent) error {
	if e.Client == nil {
		return nil
	}
	if !strings.HasPrefix(event.Topic, "deal.") {
		return nil
	}
	var body map[string]any
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &body); err != nil {
			return fmt.Errorf("notify: decode event payload: %w", err)
		}
	}
	payload := DealEmailPayload{
		DealID: event.AggregateID,
		Topic:  event.Topic,
		Email:  stringField(body, "email"),
		Role:   stringField(body, "role"),
		Status: stringField(body, "status"),
	}
	if v, ok := body["grandTotal"].(float64); ok {
		payload.GrandTotal = v
	}
	if payload.Email == "" {
		return nil
	}
	task, err := NewDealEmailTask(payload)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("notify: enqueue %s: %w", event.Topic, err)
	}
	return nil
}

func stringField(body map[string]any, key string) string {
	if v, ok := body[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

var _ events.Notifier = Enqueuer{}
