package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNotification(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		id    string
		body  string
		want  string
		ok    bool
	}{
		{
			name:  "query params IPN style",
			topic: "payment",
			id:    "12345678",
			want:  "12345678",
			ok:    true,
		},
		{
			name: "type payment with string id",
			body: `{"type":"payment","data":{"id":"987654"}}`,
			want: "987654",
			ok:   true,
		},
		{
			name: "type payment with numeric id",
			body: `{"type":"payment","data":{"id":987654}}`,
			want: "987654",
			ok:   true,
		},
		{
			name: "action payment.updated",
			body: `{"action":"payment.updated","data":{"id":"555"}}`,
			want: "555",
			ok:   true,
		},
		{
			name: "action payment.created",
			body: `{"action":"payment.created","data":{"id":42}}`,
			want: "42",
			ok:   true,
		},
		{
			name: "flat payment_id",
			body: `{"payment_id":"778899"}`,
			want: "778899",
			ok:   true,
		},
		{
			name: "bare id fallback",
			body: `{"id":112233}`,
			want: "112233",
			ok:   true,
		},
		{
			name: "query id without topic is ignored",
			id:   "12345",
			body: "",
			ok:   false,
		},
		{
			name: "typed shape wins over bare id",
			body: `{"type":"payment","data":{"id":"1"},"id":"2"}`,
			want: "1",
			ok:   true,
		},
		{
			name: "unrelated topic falls through to body",
			topic: "merchant_order",
			id:    "99",
			body:  `{"payment_id":"321"}`,
			want:  "321",
			ok:    true,
		},
		{
			name: "empty everything",
			ok:   false,
		},
		{
			name: "malformed json",
			body: `{"type":"payment","data":`,
			ok:   false,
		},
		{
			name: "unrecognized shape",
			body: `{"hello":"world"}`,
			ok:   false,
		},
		{
			name: "non-payment type without other ids",
			body: `{"type":"merchant_order","data":{"id":"1"}}`,
			// the bare-id fallback only reads a top-level id
			ok: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNotification(tt.topic, tt.id, []byte(tt.body))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
