package models

import (
	"strings"
	"time"
)

const (
	SubscriptionStatusPending = "pending"
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
)

const (
	PaymentStatusApproved = "approved"
	PaymentStatusFailed   = "failed"
)

// Gateway transaction statuses.
const (
	TransactionApproved = "APPROVED"
	TransactionDeclined = "DECLINED"
	TransactionVoided   = "VOIDED"
	TransactionPending  = "PENDING"
	TransactionError    = "ERROR"
)

type Plan struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	AmountInCents int64  `yaml:"amount_in_cents" json:"amount_in_cents"`
	Currency      string `yaml:"currency" json:"currency"`
}

// IsPro reports whether the plan grants PRO features.
func IsPro(planID string) bool {
	return strings.Contains(strings.ToLower(planID), "pro")
}

type Subscription struct {
	ID               int64      `json:"id"`
	UserID           string     `json:"user_id"`
	PlanID           string     `json:"plan_id"`
	Status           string     `json:"status"`
	PaymentReference string     `json:"payment_reference"`
	TransactionID    *string    `json:"transaction_id,omitempty"`
	AmountInCents    int64      `json:"amount_in_cents"`
	Currency         string     `json:"currency"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// ActivePro reports whether the subscription currently grants PRO.
func (s Subscription) ActivePro(now time.Time) bool {
	if s.Status != SubscriptionStatusActive || !IsPro(s.PlanID) {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}

type SubscriptionStatusView struct {
	Subscription *Subscription `json:"subscription"`
	HasPro       bool          `json:"has_pro"`
}

type Checkout struct {
	SubscriptionID     int64  `json:"subscription_id"`
	Reference          string `json:"reference"`
	AmountInCents      int64  `json:"amount_in_cents"`
	Currency           string `json:"currency"`
	IntegritySignature string `json:"integrity_signature"`
	PublicKey          string `json:"public_key,omitempty"`
	RedirectURL        string `json:"redirect_url,omitempty"`
}

type PaymentTransaction struct {
	ID             int64     `json:"id"`
	SubscriptionID int64     `json:"subscription_id"`
	UserID         string    `json:"user_id"`
	TransactionID  string    `json:"transaction_id"`
	Reference      string    `json:"reference"`
	AmountInCents  int64     `json:"amount_in_cents"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	GatewayStatus  string    `json:"gateway_status"`
	PaymentMethod  string    `json:"payment_method,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// PaymentEvent is the normalized content of a gateway callback.
type PaymentEvent struct {
	Event         string
	TransactionID string
	Status        string
	Reference     string
	AmountInCents int64
	Currency      string
	PaymentMethod string
}

// PaymentOutcome describes what a callback did to the subscription.
type PaymentOutcome struct {
	SubscriptionID   int64
	UserID           string
	Status           string
	ExpiresAt        *time.Time
	AlreadyProcessed bool
}

type WebhookEventRecord struct {
	ID             int64     `json:"id"`
	Provider       string    `json:"provider"`
	EventType      string    `json:"event_type"`
	TransactionID  string    `json:"transaction_id"`
	Status         string    `json:"status"`
	SignatureValid bool      `json:"signature_valid"`
	Payload        []byte    `json:"-"`
	Outcome        string    `json:"outcome"`
	ReceivedAt     time.Time `json:"received_at"`
}
