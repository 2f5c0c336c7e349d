package models

import "time"

type Conversation struct {
	ID            int64            `json:"id"`
	PropertyID    *int64           `json:"property_id,omitempty"`
	User1ID       string           `json:"user1_id"`
	User2ID       string           `json:"user2_id"`
	LastMessage   string           `json:"last_message,omitempty"`
	LastMessageAt *time.Time       `json:"last_message_at,omitempty"`
	UnreadCount   int              `json:"unread_count"`
	Counterparty  *ProfileSummary  `json:"counterparty,omitempty"`
	Property      *PropertySummary `json:"property,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Other returns the participant that is not userID.
func (c Conversation) Other(userID string) string {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

func (c Conversation) Has(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}
