// file: internals/features/orders/service/webhook_parse.go
package service

import (
	"encoding/json"
	"strconv"
)

// ParseNotification extracts the external charge id from a webhook
// delivery. The processor pushes several shapes; they are tried in a fixed
// priority order:
//
//  1. query parameters: topic=payment&id=<id>  (IPN style)
//  2. body {"type":"payment","data":{"id":...}}
//  3. body {"action":"payment.updated"|"payment.created","data":{"id":...}}
//  4. body {"payment_id":...}
//  5. body {"id":...}  (bare fallback)
//
// Only the identifier is trusted; the full charge is always re-fetched from
// the processor before any order mutation.
func ParseNotification(topicParam, idParam string, body []byte) (paymentID string, ok bool) {
	if topicParam == "payment" && idParam != "" {
		return idParam, true
	}

	if len(body) == 0 {
		return "", false
	}

	var payload struct {
		Type   string `json:"type"`
		Action string `json:"action"`
		Data   struct {
			ID json.RawMessage `json:"id"`
		} `json:"data"`
		PaymentID json.RawMessage `json:"payment_id"`
		ID        json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}

	if payload.Type == "payment" {
		if id := rawToString(payload.Data.ID); id != "" {
			return id, true
		}
	}
	if payload.Action == "payment.updated" || payload.Action == "payment.created" {
		if id := rawToString(payload.Data.ID); id != "" {
			return id, true
		}
	}
	if id := rawToString(payload.PaymentID); id != "" {
		return id, true
	}
	if id := rawToString(payload.ID); id != "" {
		return id, true
	}

	return "", false
}

// rawToString accepts the id both as JSON string and as JSON number.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		// reject non-numeric garbage that json.Number would carry through
		if _, convErr := strconv.ParseFloat(n.String(), 64); convErr == nil {
			return n.String()
		}
	}
	return ""
}
