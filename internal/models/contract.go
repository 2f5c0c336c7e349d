package models

import "time"

const (
	MessageTypeComment       = "comment"
	MessageTypeChangeRequest = "change_request"
	MessageTypeApproval      = "approval"
	MessageTypeRejection     = "rejection"
	MessageTypeSystem        = "system"
)

const (
	PartyTenant = "tenant"
	PartyOwner  = "owner"
)

type ContractRequest struct {
	ID         int64      `json:"id"`
	PropertyID int64      `json:"property_id"`
	TenantID   string     `json:"tenant_id"`
	OwnerID    string     `json:"owner_id"`
	Status     string     `json:"status"`
	Message    string     `json:"message,omitempty"`
	ContractID *int64     `json:"contract_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// ContractRequestView is a request as seen by one of its parties.
type ContractRequestView struct {
	ContractRequest
	Property     PropertySummary `json:"property"`
	Counterparty ProfileSummary  `json:"counterparty"`
}

type RentalContract struct {
	ID             int64      `json:"id"`
	RequestID      *int64     `json:"request_id,omitempty"`
	PropertyID     int64      `json:"property_id"`
	TenantID       string     `json:"tenant_id"`
	OwnerID        string     `json:"owner_id"`
	MonthlyRent    float64    `json:"monthly_rent"`
	Deposit        float64    `json:"deposit"`
	DurationMonths int        `json:"duration_months"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Content        string     `json:"content"`
	Status         string     `json:"status"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Party reports which side of the contract userID is on, or "" for strangers.
func (c RentalContract) Party(userID string) string {
	switch userID {
	case c.TenantID:
		return PartyTenant
	case c.OwnerID:
		return PartyOwner
	}
	return ""
}

// ContractTerms are the negotiable fields of a contract. Zero values keep the current terms.
type ContractTerms struct {
	MonthlyRent    float64    `json:"monthly_rent,omitempty"`
	Deposit        float64    `json:"deposit,omitempty"`
	DurationMonths int        `json:"duration_months,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
}

type ContractView struct {
	RentalContract
	Role         string          `json:"role"`
	Property     PropertySummary `json:"property"`
	Tenant       ProfileSummary  `json:"tenant"`
	Owner        ProfileSummary  `json:"owner"`
	UnreadCount  int             `json:"unread_count"`
	AllowedMoves []string        `json:"allowed_actions"`
}

type ContractMessage struct {
	ID         int64     `json:"id"`
	ContractID int64     `json:"contract_id"`
	SenderID   string    `json:"sender_id"`
	Content    string    `json:"content"`
	Type       string    `json:"message_type"`
	IsRead     bool      `json:"is_read"`
	SenderName string    `json:"sender_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ContractTransition is a single compare-and-swap move together with its side effects.
type ContractTransition struct {
	ContractID   int64
	FromStatus   string
	ToStatus     string
	Version      int
	Terms        *RentalContract // replaces rent, deposit, dates and content when set
	Message      *ContractMessage
	Notification *Notification
}
