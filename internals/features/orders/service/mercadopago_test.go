package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(baseURL string) *MercadoPago {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(5 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	return &MercadoPago{http: client, notificationURL: "https://example.com/hook"}
}

func TestCreatePixPayment(t *testing.T) {
	var gotBody map[string]interface{}
	var gotIdempotency string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payments", r.URL.Path)
		gotIdempotency = r.Header.Get("X-Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": 123456789,
			"status": "pending",
			"status_detail": "pending_waiting_transfer",
			"external_reference": "order-abc",
			"point_of_interaction": {
				"transaction_data": {
					"qr_code": "00020126btnpix",
					"qr_code_base64": "aGVsbG8=",
					"ticket_url": "https://mp.example/ticket"
				}
			}
		}`))
	}))
	defer srv.Close()

	gw := newTestGateway(srv.URL)
	payment, err := gw.CreatePixPayment(context.Background(), PixCharge{
		AmountCents: 1499,
		Description: "Momentos de Amor - Nossa História",
		PayerEmail:  "ana@example.com",
		PayerName:   "Ana Clara Souza",
		OrderRef:    "order-abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "123456789", payment.ID)
	assert.Equal(t, "pending", payment.Status)
	assert.Equal(t, "00020126btnpix", payment.QRCode)
	assert.Equal(t, "aGVsbG8=", payment.QRCodeBase64)
	assert.Equal(t, "https://mp.example/ticket", payment.TicketURL)
	assert.False(t, payment.Approved())

	assert.Equal(t, "pix-order-abc", gotIdempotency)
	assert.Equal(t, 14.99, gotBody["transaction_amount"])
	assert.Equal(t, "pix", gotBody["payment_method_id"])
	assert.Equal(t, "order-abc", gotBody["external_reference"])
	assert.Equal(t, "https://example.com/hook", gotBody["notification_url"])

	payer := gotBody["payer"].(map[string]interface{})
	assert.Equal(t, "Ana", payer["first_name"])
	assert.Equal(t, "Clara Souza", payer["last_name"])
}

func TestCreateCardPaymentDeclineIsTerminal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// An approved-shape response with a rejected status: declines come
		// back as 201 from the processor, not as HTTP errors.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": "42",
			"status": "rejected",
			"status_detail": "cc_rejected_insufficient_amount"
		}`))
	}))
	defer srv.Close()

	gw := newTestGateway(srv.URL)
	payment, err := gw.CreateCardPayment(context.Background(), CardCharge{
		AmountCents:     1499,
		CardToken:       "tok_123",
		PaymentMethodID: "master",
		OrderRef:        "order-xyz",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "a decline must not be retried")
	assert.Equal(t, "rejected", payment.Status)
	assert.Equal(t, "cc_rejected_insufficient_amount", payment.StatusDetail)
	assert.False(t, payment.Approved())
}

func TestCreatePaymentBadRequestNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	gw := newTestGateway(srv.URL)
	_, err := gw.CreateCardPayment(context.Background(), CardCharge{
		AmountCents: 1499,
		CardToken:   "bad",
		OrderRef:    "order-xyz",
	})
	require.Error(t, err)

	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusBadRequest, ge.StatusCode)
	assert.Contains(t, ge.Message, "invalid token")
	assert.Equal(t, 1, calls)
}

func TestGetPaymentRetriesOnServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		require.Equal(t, "/v1/payments/777", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 777,
			"status": "approved",
			"status_detail": "accredited",
			"external_reference": "order-777",
			"payment_method_id": "visa",
			"card": {
				"last_four_digits": "4321",
				"cardholder": {"name": "ANA C SOUZA"}
			},
			"payer": {"identification": {"type": "CPF", "number": "12345678901"}}
		}`))
	}))
	defer srv.Close()

	gw := newTestGateway(srv.URL)
	payment, err := gw.GetPayment(context.Background(), "777")
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.True(t, payment.Approved())
	assert.Equal(t, "order-777", payment.ExternalReference)
	assert.Equal(t, "4321", payment.CardLastFour)
	assert.Equal(t, "visa", payment.CardBrand)
	assert.Equal(t, "ANA C SOUZA", payment.CardHolderName)
	assert.Equal(t, "***.***.789-01", payment.PayerDocument)
}

func TestMaskDocument(t *testing.T) {
	assert.Equal(t, "***.***.789-01", MaskDocument("12345678901"))
	assert.Equal(t, "***.***.789-01", MaskDocument("123.456.789-01"))
	// non-CPF lengths pass through untouched
	assert.Equal(t, "1234", MaskDocument("1234"))
	assert.Equal(t, "", MaskDocument(""))
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
	}{
		{"Ana Clara Souza", "Ana", "Clara Souza"},
		{"Ana", "Ana", "Ana"},
		{"  Ana  Souza  ", "Ana", "Souza"},
		{"", "Cliente", "Cliente"},
	}
	for _, tt := range tests {
		first, last := splitName(tt.in)
		assert.Equal(t, tt.first, first)
		assert.Equal(t, tt.last, last)
	}
}
