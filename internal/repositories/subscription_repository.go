package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentaBack/internal/models"
)

var errAlreadyApplied = errors.New("payment event already applied")

type SubscriptionRepository struct {
	DB *sql.DB
}

const subscriptionColumns = `id, user_id, plan_id, status, payment_reference, transaction_id, amount_in_cents, currency, started_at, expires_at, created_at, updated_at`

func scanSubscription(s scanner) (models.Subscription, error) {
	var sub models.Subscription
	var txID sql.NullString
	var started, expires, updated sql.NullTime
	err := s.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.PaymentReference, &txID, &sub.AmountInCents, &sub.Currency,
		&started, &expires, &sub.CreatedAt, &updated)
	if err != nil {
		return models.Subscription{}, err
	}
	sub.TransactionID = nullString(txID)
	sub.StartedAt = nullTime(started)
	sub.ExpiresAt = nullTime(expires)
	sub.UpdatedAt = nullTime(updated)
	return sub, nil
}

// Latest returns the user's current subscription, preferring active rows.
func (r *SubscriptionRepository) Latest(ctx context.Context, userID string) (models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = ?
	ORDER BY (status = 'active') DESC, created_at DESC, id DESC LIMIT 1`
	sub, err := scanSubscription(r.DB.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscription{}, models.ErrSubscriptionNotFound
	}
	return sub, err
}

// ActivePlans returns the plan ids of every subscription active at now.
func (r *SubscriptionRepository) ActivePlans(ctx context.Context, userID string, now time.Time) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT plan_id FROM subscriptions WHERE user_id = ? AND status = 'active' AND (expires_at IS NULL OR expires_at > ?)`,
		userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []string
	for rows.Next() {
		var plan string
		if err := rows.Scan(&plan); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func (r *SubscriptionRepository) CreatePending(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO subscriptions (user_id, plan_id, status, payment_reference, amount_in_cents, currency) VALUES (?, ?, ?, ?, ?, ?)`,
		sub.UserID, sub.PlanID, models.SubscriptionStatusPending, sub.PaymentReference, sub.AmountInCents, sub.Currency)
	if err != nil {
		return models.Subscription{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Subscription{}, err
	}
	sub.ID = id
	sub.Status = models.SubscriptionStatusPending
	return sub, nil
}

// AttachTransaction links a gateway transaction to the user's pending subscription.
func (r *SubscriptionRepository) AttachTransaction(ctx context.Context, userID string, subscriptionID int64, transactionID string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE subscriptions SET transaction_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ? AND status = 'pending'`,
		transactionID, subscriptionID, userID)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("%w: transaction already linked", models.ErrInvalidInput)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrSubscriptionNotFound
	}
	return nil
}

// ExpireLapsed marks active subscriptions past their expiry as expired.
func (r *SubscriptionRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE subscriptions SET status = 'expired', updated_at = CURRENT_TIMESTAMP WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= ?`,
		now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ApplyPaymentEvent records the gateway result and updates the subscription in
// one transaction. The payment row is unique per (transaction_id, status), so a
// replayed event reports AlreadyProcessed and changes nothing.
func (r *SubscriptionRepository) ApplyPaymentEvent(ctx context.Context, ev models.PaymentEvent, now time.Time) (models.PaymentOutcome, error) {
	if ev.TransactionID == "" {
		return models.PaymentOutcome{}, fmt.Errorf("%w: payment event without transaction id", models.ErrInvalidInput)
	}
	var paymentStatus, subStatus string
	switch ev.Status {
	case models.TransactionApproved:
		paymentStatus, subStatus = models.PaymentStatusApproved, models.SubscriptionStatusActive
	case models.TransactionDeclined, models.TransactionVoided, models.TransactionError:
		paymentStatus, subStatus = models.PaymentStatusFailed, models.SubscriptionStatusExpired
	default:
		return models.PaymentOutcome{}, fmt.Errorf("%w: unsupported payment status %q", models.ErrInvalidInput, ev.Status)
	}

	var out models.PaymentOutcome
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		sub, err := lockSubscription(ctx, tx, ev)
		if err != nil {
			return err
		}
		out.SubscriptionID = sub.ID
		out.UserID = sub.UserID

		amount, currency := ev.AmountInCents, ev.Currency
		if amount == 0 {
			amount = sub.AmountInCents
		}
		if currency == "" {
			currency = sub.Currency
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO payment_transactions (subscription_id, user_id, transaction_id, reference, amount_in_cents, currency, status, gateway_status, payment_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sub.ID, sub.UserID, ev.TransactionID, sub.PaymentReference, amount, currency, paymentStatus, ev.Status, ev.PaymentMethod)
		if isDuplicateEntry(err) {
			return errAlreadyApplied
		}
		if err != nil {
			return err
		}

		if subStatus == models.SubscriptionStatusActive {
			base := now
			if sub.Status == models.SubscriptionStatusActive && sub.ExpiresAt != nil && sub.ExpiresAt.After(now) {
				base = *sub.ExpiresAt
			}
			expires := base.AddDate(0, 1, 0)
			_, err = tx.ExecContext(ctx, `
			UPDATE subscriptions
			SET status = 'active', started_at = COALESCE(started_at, ?), expires_at = ?, transaction_id = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`, now, expires, ev.TransactionID, sub.ID)
			out.ExpiresAt = &expires
		} else {
			_, err = tx.ExecContext(ctx, `
			UPDATE subscriptions
			SET status = 'expired', transaction_id = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`, ev.TransactionID, sub.ID)
		}
		out.Status = subStatus
		return err
	})
	if errors.Is(err, errAlreadyApplied) {
		return models.PaymentOutcome{SubscriptionID: out.SubscriptionID, UserID: out.UserID, AlreadyProcessed: true}, nil
	}
	if err != nil {
		return models.PaymentOutcome{}, err
	}
	return out, nil
}

// lockSubscription finds the subscription by transaction id, falling back to
// the checkout reference, and holds a row lock until the transaction ends.
func lockSubscription(ctx context.Context, tx *sql.Tx, ev models.PaymentEvent) (models.Subscription, error) {
	base := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE `
	if ev.TransactionID != "" {
		sub, err := scanSubscription(tx.QueryRowContext(ctx, base+`transaction_id = ? FOR UPDATE`, ev.TransactionID))
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.Subscription{}, err
		}
	}
	if ev.Reference != "" {
		sub, err := scanSubscription(tx.QueryRowContext(ctx, base+`payment_reference = ? FOR UPDATE`, ev.Reference))
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.Subscription{}, err
		}
	}
	return models.Subscription{}, models.ErrSubscriptionNotFound
}

func (r *SubscriptionRepository) ListPayments(ctx context.Context, userID string) ([]models.PaymentTransaction, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT id, subscription_id, user_id, transaction_id, reference, amount_in_cents, currency, status, gateway_status, payment_method, created_at
	FROM payment_transactions WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PaymentTransaction{}
	for rows.Next() {
		var p models.PaymentTransaction
		if err := rows.Scan(&p.ID, &p.SubscriptionID, &p.UserID, &p.TransactionID, &p.Reference, &p.AmountInCents, &p.Currency,
			&p.Status, &p.GatewayStatus, &p.PaymentMethod, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
