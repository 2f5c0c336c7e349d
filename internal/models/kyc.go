package models

import "time"

const (
	KYCStatusPending  = "pending"
	KYCStatusVerified = "verified"
	KYCStatusRejected = "rejected"
)

const InsuranceStatusApproved = "approved"

type KYCVerification struct {
	ID             int64      `json:"id"`
	UserID         string     `json:"user_id"`
	DocumentType   string     `json:"document_type"`
	DocumentNumber string     `json:"document_number"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes,omitempty"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Valid reports whether the verification is usable at now.
func (k KYCVerification) Valid(now time.Time) bool {
	if k.Status != KYCStatusVerified {
		return false
	}
	return k.ExpiresAt == nil || k.ExpiresAt.After(now)
}

type InsuranceApproval struct {
	ID         int64     `json:"id"`
	TenantID   string    `json:"tenant_id"`
	Insurer    string    `json:"insurer"`
	Status     string    `json:"status"`
	MaxRent    float64   `json:"max_rent"`
	ValidUntil time.Time `json:"valid_until"`
	CreatedAt  time.Time `json:"created_at"`
}
