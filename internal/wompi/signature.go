package wompi

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var defaultProperties = []string{"transaction.id", "transaction.status", "transaction.amount_in_cents"}

// Checksum computes the event checksum: sha256 over the property values, the
// timestamp and the events secret, hex encoded.
func Checksum(values []string, timestamp, secret string) string {
	h := sha256.New()
	for _, v := range values {
		h.Write([]byte(v))
	}
	h.Write([]byte(timestamp))
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyEvent checks the callback checksum. The checksum is read from the
// x-wompi-signature header or, failing that, from signature.checksum in the
// body. An empty secret never validates.
func VerifyEvent(raw []byte, header http.Header, secret string) bool {
	if strings.TrimSpace(secret) == "" || !gjson.ValidBytes(raw) {
		return false
	}
	root := gjson.ParseBytes(raw)

	provided := strings.TrimSpace(header.Get(HeaderSignature))
	if provided == "" {
		provided = strings.TrimSpace(root.Get("signature.checksum").String())
	}
	if provided == "" {
		return false
	}
	providedBytes, err := hex.DecodeString(strings.ToLower(provided))
	if err != nil {
		return false
	}

	props := defaultProperties
	if p := root.Get("signature.properties"); p.IsArray() && len(p.Array()) > 0 {
		props = nil
		for _, item := range p.Array() {
			props = append(props, item.String())
		}
	}

	tx := transactionObject(root)
	values := make([]string, 0, len(props))
	for _, prop := range props {
		values = append(values, propertyValue(root, tx, prop))
	}

	timestamp := root.Get("timestamp").String()
	if timestamp == "" {
		timestamp = strings.TrimSpace(header.Get(HeaderTimestamp))
	}

	expected, _ := hex.DecodeString(Checksum(values, timestamp, secret))
	return subtle.ConstantTimeCompare(expected, providedBytes) == 1
}

// propertyValue resolves a dotted property such as "transaction.amount_in_cents"
// against data, falling back to the short form where the transaction fields
// sit directly under data.
func propertyValue(root, tx gjson.Result, prop string) string {
	if v := root.Get("data." + prop); v.Exists() {
		return v.String()
	}
	field := prop
	if i := strings.Index(prop, "."); i >= 0 {
		field = prop[i+1:]
	}
	return tx.Get(field).String()
}

// IntegritySignature signs a checkout so the widget cannot tamper with the amount.
func IntegritySignature(reference string, amountInCents int64, currency, secret string) string {
	sum := sha256.Sum256([]byte(reference + strconv.FormatInt(amountInCents, 10) + currency + secret))
	return hex.EncodeToString(sum[:])
}
