package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"rentaBack/internal/metrics"
	"rentaBack/internal/models"
	"rentaBack/internal/wompi"
)

const webhookProvider = "wompi"

// Outcomes stored with every webhook delivery.
const (
	OutcomeApplied          = "applied"
	OutcomeDuplicate        = "duplicate"
	OutcomeIgnored          = "ignored"
	OutcomeUnmapped         = "unmapped"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeMalformed        = "malformed"
	OutcomeError            = "error"
)

type paymentApplier interface {
	ApplyPaymentEvent(ctx context.Context, ev models.PaymentEvent, now time.Time) (models.PaymentOutcome, error)
}

type webhookEventStore interface {
	Record(ctx context.Context, e models.WebhookEventRecord) (int64, error)
	SetOutcome(ctx context.Context, id int64, outcome string) error
}

type PaymentWebhookService struct {
	Payments     paymentApplier
	Events       webhookEventStore
	Notifier     notifier
	EventsSecret string
	Logger       *slog.Logger
	Now          func() time.Time
}

// WebhookResult is the acknowledgement returned to the gateway.
type WebhookResult struct {
	Message string                 `json:"message"`
	Outcome *models.PaymentOutcome `json:"-"`
}

func (s *PaymentWebhookService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PaymentWebhookService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Handle verifies, records and applies one gateway callback. A replayed event
// is acknowledged without touching the subscription again.
func (s *PaymentWebhookService) Handle(ctx context.Context, raw []byte, header http.Header) (WebhookResult, error) {
	valid := wompi.VerifyEvent(raw, header, s.EventsSecret)
	ev, parseErr := wompi.ParseEvent(raw)
	if ev.Event == "" {
		ev.Event = header.Get(wompi.HeaderEvent)
	}

	recordID := s.record(ctx, raw, ev, valid)
	finish := func(outcome string) {
		metrics.RecordWebhook(ev.Status, outcome)
		if recordID > 0 {
			if err := s.Events.SetOutcome(ctx, recordID, outcome); err != nil {
				s.logger().Error("store webhook outcome", "id", recordID, "error", err)
			}
		}
	}

	if !valid {
		finish(OutcomeInvalidSignature)
		s.logger().Warn("wompi webhook rejected", "reason", "invalid signature", "transaction_id", ev.TransactionID)
		return WebhookResult{}, wompi.ErrInvalidSignature
	}
	if parseErr != nil {
		finish(OutcomeMalformed)
		return WebhookResult{}, parseErr
	}

	switch ev.Status {
	case models.TransactionApproved, models.TransactionDeclined, models.TransactionVoided, models.TransactionError:
	default:
		finish(OutcomeIgnored)
		return WebhookResult{Message: fmt.Sprintf("status %s acknowledged", ev.Status)}, nil
	}

	out, err := s.Payments.ApplyPaymentEvent(ctx, ev, s.now())
	if errors.Is(err, models.ErrSubscriptionNotFound) {
		finish(OutcomeUnmapped)
		s.logger().Warn("wompi webhook for unknown transaction", "transaction_id", ev.TransactionID, "reference", ev.Reference)
		return WebhookResult{}, err
	}
	if err != nil {
		finish(OutcomeError)
		s.logger().Error("apply wompi event", "transaction_id", ev.TransactionID, "error", err)
		return WebhookResult{}, err
	}
	if out.AlreadyProcessed {
		finish(OutcomeDuplicate)
		return WebhookResult{Message: "event already processed", Outcome: &out}, nil
	}

	finish(OutcomeApplied)
	s.logger().Info("wompi event applied", "transaction_id", ev.TransactionID, "status", ev.Status, "subscription_id", out.SubscriptionID)
	s.notify(ctx, out)

	msg := "subscription activated"
	if out.Status != models.SubscriptionStatusActive {
		msg = "subscription expired"
	}
	return WebhookResult{Message: msg, Outcome: &out}, nil
}

func (s *PaymentWebhookService) record(ctx context.Context, raw []byte, ev models.PaymentEvent, valid bool) int64 {
	if s.Events == nil {
		return 0
	}
	id, err := s.Events.Record(ctx, models.WebhookEventRecord{
		Provider:       webhookProvider,
		EventType:      ev.Event,
		TransactionID:  ev.TransactionID,
		Status:         ev.Status,
		SignatureValid: valid,
		Payload:        raw,
		Outcome:        "received",
	})
	if err != nil {
		s.logger().Error("store webhook event", "error", err)
		return 0
	}
	return id
}

func (s *PaymentWebhookService) notify(ctx context.Context, out models.PaymentOutcome) {
	if s.Notifier == nil || out.UserID == "" {
		return
	}
	n := models.Notification{
		UserID: out.UserID,
		Type:   models.NotificationSubscription,
		Title:  "Pago rechazado",
		Body:   "Tu pago no fue aprobado, la suscripción no está activa",
		Link:   "/subscription",
	}
	if out.Status == models.SubscriptionStatusActive {
		n.Title = "Suscripción activa"
		n.Body = "Tu pago fue aprobado"
		if out.ExpiresAt != nil {
			n.Body = fmt.Sprintf("Tu pago fue aprobado, la suscripción vence el %s", out.ExpiresAt.Format("2006-01-02"))
		}
	}
	if _, err := s.Notifier.Notify(ctx, n); err != nil {
		s.logger().Error("notify subscription change", "user_id", out.UserID, "error", err)
	}
}
