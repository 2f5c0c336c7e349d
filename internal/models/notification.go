package models

import "time"

const (
	NotificationContractRequest  = "contract_request"
	NotificationRequestApproved  = "request_approved"
	NotificationRequestRejected  = "request_rejected"
	NotificationContractUpdated  = "contract_updated"
	NotificationContractApproved = "contract_approved"
	NotificationContractMessage  = "contract_message"
	NotificationNewMessage       = "new_message"
	NotificationIntention        = "intention"
	NotificationSubscription     = "subscription"
	NotificationKYC              = "kyc"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
