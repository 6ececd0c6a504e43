package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/agriai/backend-mandi/internal/common"
	"github.com/agriai/backend-mandi/internal/deal"
	"github.com/agriai/backend-mandi/internal/events"
	"github.com/agriai/backend-mandi/internal/invoice"
	"github.com/agriai/backend-mandi/internal/obs"
	"github.com/agriai/backend-mandi/internal/repo"
)

// DealSource loads the deal a queued notification refers to.
type DealSource interface {
	GetDeal(ctx context.Context, id string) (repo.Deal, error)
}

// EmailWorker processes queued deal notification emails. When Deals and
// Invoice are set, the rendered invoice is embedded below the status note.
type EmailWorker struct {
	Mail    common.EmailSender
	Deals   DealSource
	Invoice *invoice.Renderer
	From    string
	Enabled bool
	Log     zerolog.Logger
}

// Register attaches the worker's handlers to an asynq mux.
func (w *EmailWorker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeDealEmail, w.HandleDealEmail)
}

// HandleDealEmail sends the email for one queued deal notification.
func (w *EmailWorker) HandleDealEmail(ctx context.Context, task *asynq.Task) error {
	var p DealEmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		countEmail("malformed")
		return fmt.Errorf("notify: decode task payload: %w", err)
	}
	if !w.Enabled || w.Mail == nil || p.Email == "" {
		countEmail("skipped")
		return nil
	}
	body, err := w.composeBody(ctx, p)
	if err != nil {
		countEmail("error")
		return err
	}
	if err := w.Mail.Send(p.Email, subjectFor(p.Topic), body); err != nil {
		countEmail("error")
		w.Log.Error().Err(err).Str("deal_id", p.DealID).Str("topic", p.Topic).Msg("deal email failed")
		return err
	}
	countEmail("sent")
	w.Log.Info().Str("deal_id", p.DealID).Str("topic", p.Topic).Msg("deal email sent")
	return nil
}

// composeBody builds the status note and, when a deal source and renderer are
// wired, appends the invoice for the referenced deal. A load failure is
// returned so the queue retries; an unreadable snapshot is logged and the
// status note goes out alone.
func (w *EmailWorker) composeBody(ctx context.Context, p DealEmailPayload) (string, error) {
	body := bodyFor(p)
	if w.Deals == nil || w.Invoice == nil {
		return body, nil
	}
	d, err := w.Deals.GetDeal(ctx, p.DealID)
	if err != nil {
		return "", fmt.Errorf("notify: load deal %s: %w", p.DealID, err)
	}
	lines, err := deal.DecodeLines(d)
	if err != nil {
		w.Log.Warn().Err(err).Str("deal_id", p.DealID).Msg("deal snapshot unreadable, sending status note only")
		return body, nil
	}
	rendered, err := w.Invoice.Render(d, lines)
	if err != nil {
		w.Log.Warn().Err(err).Str("deal_id", p.DealID).Msg("invoice render failed, sending status note only")
		return body, nil
	}
	return body + "\n" + rendered, nil
}

func subjectFor(topic string) string {
	switch topic {
	case events.TopicDealCreated:
		return "Your deal has been placed"
	case events.TopicDealAccepted:
		return "Your deal was accepted"
	case events.TopicDealDeclined:
		return "Your deal was declined"
	default:
		return fmt.Sprintf("Marketplace update: %s", topic)
	}
}

func bodyFor(p DealEmailPayload) string {
	body := fmt.Sprintf("<p>Deal <strong>%s</strong> is now <strong>%s</strong>.</p>", p.DealID, p.Status)
	if p.GrandTotal > 0 {
		verb := "payable"
		if p.Role == "farmer" {
			verb = "receivable"
		}
		body += fmt.Sprintf("<p>Total %s: ₹%.2f</p>", verb, p.GrandTotal)
	}
	return body
}

func countEmail(result string) {
	if obs.NotifyEmailTotal != nil {
		obs.NotifyEmailTotal.WithLabelValues(result).Inc()
	}
}
