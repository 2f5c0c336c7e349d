package wompi

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_events_secret"

func signedBody(t *testing.T, id, status string, amount int64, ts int64) []byte {
	t.Helper()
	sum := Checksum([]string{id, status, fmt.Sprint(amount)}, fmt.Sprint(ts), testSecret)
	return []byte(fmt.Sprintf(`{
		"event": "transaction.updated",
		"data": {"transaction": {"id": %q, "status": %q, "amount_in_cents": %d, "reference": "ref-1", "currency": "COP", "payment_method_type": "CARD"}},
		"signature": {"properties": ["transaction.id", "transaction.status", "transaction.amount_in_cents"], "checksum": %q},
		"timestamp": %d
	}`, id, status, amount, sum, ts))
}

func TestParseEventEnvelope(t *testing.T) {
	ev, err := ParseEvent(signedBody(t, "tx_1", "APPROVED", 4990000, 1700000000))
	require.NoError(t, err)
	assert.Equal(t, "transaction.updated", ev.Event)
	assert.Equal(t, "tx_1", ev.TransactionID)
	assert.Equal(t, "APPROVED", ev.Status)
	assert.Equal(t, "ref-1", ev.Reference)
	assert.Equal(t, int64(4990000), ev.AmountInCents)
	assert.Equal(t, "COP", ev.Currency)
	assert.Equal(t, "CARD", ev.PaymentMethod)
}

func TestParseEventShortForm(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"data":{"id":"tx_2","status":"declined"}}`))
	require.NoError(t, err)
	assert.Equal(t, "tx_2", ev.TransactionID)
	assert.Equal(t, "DECLINED", ev.Status)
	assert.Equal(t, EventTransactionUpdated, ev.Event)
}

func TestParseEventRejectsGarbage(t *testing.T) {
	for _, body := range []string{``, `not json`, `{"data":{}}`, `{"data":{"id":"tx"}}`} {
		_, err := ParseEvent([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedEvent, body)
	}
}

func TestParseEventRequiresTransactionID(t *testing.T) {
	body := `{"event":"transaction.updated","data":{"transaction":{"status":"APPROVED","reference":"ref-1","amount_in_cents":4990000}}}`
	_, err := ParseEvent([]byte(body))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestVerifyEventBodyChecksum(t *testing.T) {
	body := signedBody(t, "tx_1", "APPROVED", 4990000, 1700000000)
	assert.True(t, VerifyEvent(body, http.Header{}, testSecret))
	assert.False(t, VerifyEvent(body, http.Header{}, "other"))
	assert.False(t, VerifyEvent(body, http.Header{}, ""))
}

func TestVerifyEventHeaderChecksum(t *testing.T) {
	body := []byte(`{"data":{"id":"tx_1","status":"APPROVED","amount_in_cents":100}}`)
	h := http.Header{}
	h.Set(HeaderTimestamp, "42")
	h.Set(HeaderSignature, Checksum([]string{"tx_1", "APPROVED", "100"}, "42", testSecret))
	assert.True(t, VerifyEvent(body, h, testSecret))

	h.Set(HeaderSignature, "deadbeef")
	assert.False(t, VerifyEvent(body, h, testSecret))

	h.Set(HeaderSignature, "zz-not-hex")
	assert.False(t, VerifyEvent(body, h, testSecret))
}

func TestVerifyEventUppercaseChecksum(t *testing.T) {
	body := []byte(`{"data":{"id":"tx_1","status":"APPROVED","amount_in_cents":100},"timestamp":7}`)
	sum := Checksum([]string{"tx_1", "APPROVED", "100"}, "7", testSecret)
	h := http.Header{}
	h.Set(HeaderSignature, strings.ToUpper(sum))
	assert.True(t, VerifyEvent(body, h, testSecret))
}

func TestVerifyEventTamperedStatus(t *testing.T) {
	body := signedBody(t, "tx_1", "DECLINED", 4990000, 1700000000)
	// checksum was computed for DECLINED
	tampered := []byte(strings.Replace(string(body), `"DECLINED"`, `"APPROVED"`, 1))
	assert.False(t, VerifyEvent(tampered, http.Header{}, testSecret))
}

func TestVerifyEventMissingSignature(t *testing.T) {
	assert.False(t, VerifyEvent([]byte(`{"data":{"id":"tx_1","status":"APPROVED"}}`), http.Header{}, testSecret))
}

func TestIntegritySignature(t *testing.T) {
	// sha256("ref-1" + "4990000" + "COP" + "secret")
	got := IntegritySignature("ref-1", 4990000, "COP", "secret")
	assert.Len(t, got, 64)
	assert.Equal(t, got, IntegritySignature("ref-1", 4990000, "COP", "secret"))
	assert.NotEqual(t, got, IntegritySignature("ref-1", 4990001, "COP", "secret"))
}
