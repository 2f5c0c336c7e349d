package wompi

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"rentaBack/internal/models"
)

const (
	HeaderSignature = "x-wompi-signature"
	HeaderEvent     = "x-wompi-event"
	HeaderTimestamp = "x-wompi-timestamp"

	EventTransactionUpdated = "transaction.updated"
)

var (
	ErrMalformedEvent   = errors.New("wompi: malformed event")
	ErrInvalidSignature = errors.New("wompi: invalid event signature")
)

// ParseEvent extracts the transaction fields from a callback body. Both the
// documented envelope (data.transaction.*) and the short form (data.id,
// data.status) are accepted.
func ParseEvent(raw []byte) (models.PaymentEvent, error) {
	if !gjson.ValidBytes(raw) {
		return models.PaymentEvent{}, ErrMalformedEvent
	}
	root := gjson.ParseBytes(raw)
	tx := transactionObject(root)

	ev := models.PaymentEvent{
		Event:         root.Get("event").String(),
		TransactionID: strings.TrimSpace(tx.Get("id").String()),
		Status:        strings.ToUpper(strings.TrimSpace(tx.Get("status").String())),
		Reference:     tx.Get("reference").String(),
		AmountInCents: tx.Get("amount_in_cents").Int(),
		Currency:      tx.Get("currency").String(),
		PaymentMethod: tx.Get("payment_method_type").String(),
	}
	// The transaction id keys payment dedup, so an event without one cannot be applied.
	if ev.TransactionID == "" {
		return models.PaymentEvent{}, ErrMalformedEvent
	}
	if ev.Status == "" {
		return models.PaymentEvent{}, ErrMalformedEvent
	}
	if ev.Event == "" {
		ev.Event = EventTransactionUpdated
	}
	return ev, nil
}

func transactionObject(root gjson.Result) gjson.Result {
	if tx := root.Get("data.transaction"); tx.IsObject() {
		return tx
	}
	return root.Get("data")
}

// EventPayload is the envelope sent by Wompi, used by tests and tooling.
type EventPayload struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Signature *Signature      `json:"signature,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	SentAt    string          `json:"sent_at,omitempty"`
}

type Signature struct {
	Properties []string `json:"properties"`
	Checksum   string   `json:"checksum"`
}
