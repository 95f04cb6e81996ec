// file: internals/features/orders/service/mercadopago.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"momentoamor_backend/internals/configs"
)

/* =========================================================
   Gateway contract
========================================================= */

// Payment is the normalized view of a processor charge.
type Payment struct {
	ID                string
	Status            string // pending, approved, rejected, cancelled, ...
	StatusDetail      string
	PreferenceID      string
	ExternalReference string

	QRCode       string
	QRCodeBase64 string
	TicketURL    string

	CardLastFour   string
	CardBrand      string
	CardHolderName string
	PayerDocument  string
}

// Approved reports whether the charge reached its final success state.
func (p *Payment) Approved() bool { return p.Status == "approved" }

type PixCharge struct {
	AmountCents int
	Description string
	PayerEmail  string
	PayerName   string
	// OrderRef is stored as external_reference on the charge so async
	// notifications can be correlated back to the order.
	OrderRef string
}

type CardCharge struct {
	AmountCents     int
	Description     string
	PayerEmail      string
	CardToken       string
	Installments    int
	PaymentMethodID string
	IssuerID        string
	DocumentType    string
	DocumentNumber  string
	OrderRef        string
}

// PaymentGateway is the translation boundary to the external processor.
// Declines are terminal outcomes reported upward, never retried here;
// network failures and 5xx get bounded retries with backoff.
type PaymentGateway interface {
	CreatePixPayment(ctx context.Context, in PixCharge) (*Payment, error)
	CreateCardPayment(ctx context.Context, in CardCharge) (*Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// GatewayError carries the processor's denial reason to the caller.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error [%d]: %s", e.StatusCode, e.Message)
}

/* =========================================================
   Mercado Pago implementation
========================================================= */

type MercadoPago struct {
	http            *resty.Client
	notificationURL string
}

func NewMercadoPago(cfg configs.MercadoPagoConfig) *MercadoPago {
	client := resty.New().
		SetBaseURL("https://api.mercadopago.com").
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Retry transport failures and 5xx only. 4xx (declines,
			// bad requests) are terminal.
			return err != nil || r.StatusCode() >= 500
		})

	return &MercadoPago{http: client, notificationURL: cfg.NotificationURL}
}

/* ---------- wire types ---------- */

type mpPaymentResponse struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	StatusDetail      string      `json:"status_detail"`
	PreferenceID      string      `json:"preference_id"`
	ExternalReference string      `json:"external_reference"`
	PaymentMethodID   string      `json:"payment_method_id"`

	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`

	Card struct {
		LastFourDigits string `json:"last_four_digits"`
		Cardholder     struct {
			Name string `json:"name"`
		} `json:"cardholder"`
	} `json:"card"`

	Payer struct {
		Identification struct {
			Type   string `json:"type"`
			Number string `json:"number"`
		} `json:"identification"`
	} `json:"payer"`
}

type mpErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (r *mpPaymentResponse) toPayment() *Payment {
	p := &Payment{
		ID:                r.ID.String(),
		Status:            r.Status,
		StatusDetail:      r.StatusDetail,
		PreferenceID:      r.PreferenceID,
		ExternalReference: r.ExternalReference,
		QRCode:            r.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64:      r.PointOfInteraction.TransactionData.QRCodeBase64,
		TicketURL:         r.PointOfInteraction.TransactionData.TicketURL,
		CardLastFour:      r.Card.LastFourDigits,
		CardBrand:         r.PaymentMethodID,
		CardHolderName:    r.Card.Cardholder.Name,
	}
	if r.Payer.Identification.Number != "" {
		p.PayerDocument = MaskDocument(r.Payer.Identification.Number)
	}
	return p
}

/* ---------- operations ---------- */

func (m *MercadoPago) CreatePixPayment(ctx context.Context, in PixCharge) (*Payment, error) {
	first, last := splitName(in.PayerName)

	body := map[string]interface{}{
		"transaction_amount": centsToBRL(in.AmountCents),
		"description":        in.Description,
		"payment_method_id":  "pix",
		"payer": map[string]interface{}{
			"email":      in.PayerEmail,
			"first_name": first,
			"last_name":  last,
		},
		"external_reference": in.OrderRef,
	}
	if m.notificationURL != "" {
		body["notification_url"] = m.notificationURL
	}

	return m.createPayment(ctx, body, "pix-"+in.OrderRef)
}

func (m *MercadoPago) CreateCardPayment(ctx context.Context, in CardCharge) (*Payment, error) {
	installments := in.Installments
	if installments < 1 {
		installments = 1
	}

	payer := map[string]interface{}{"email": in.PayerEmail}
	if in.DocumentNumber != "" {
		payer["identification"] = map[string]string{
			"type":   in.DocumentType,
			"number": in.DocumentNumber,
		}
	}

	body := map[string]interface{}{
		"transaction_amount": centsToBRL(in.AmountCents),
		"description":        in.Description,
		"token":              in.CardToken,
		"installments":       installments,
		"payment_method_id":  in.PaymentMethodID,
		"payer":              payer,
		"external_reference": in.OrderRef,
	}
	if in.IssuerID != "" {
		body["issuer_id"] = in.IssuerID
	}
	if m.notificationURL != "" {
		body["notification_url"] = m.notificationURL
	}

	return m.createPayment(ctx, body, "card-"+in.OrderRef)
}

func (m *MercadoPago) createPayment(ctx context.Context, body map[string]interface{}, idempotencyKey string) (*Payment, error) {
	var out mpPaymentResponse
	var apiErr mpErrorResponse

	resp, err := m.http.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", idempotencyKey).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/payments")
	if err != nil {
		return nil, &GatewayError{StatusCode: 0, Message: err.Error()}
	}
	if resp.IsError() {
		return nil, &GatewayError{StatusCode: resp.StatusCode(), Message: errMessage(apiErr, resp.StatusCode())}
	}
	return out.toPayment(), nil
}

func (m *MercadoPago) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var out mpPaymentResponse
	var apiErr mpErrorResponse

	resp, err := m.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/v1/payments/" + paymentID)
	if err != nil {
		return nil, &GatewayError{StatusCode: 0, Message: err.Error()}
	}
	if resp.IsError() {
		return nil, &GatewayError{StatusCode: resp.StatusCode(), Message: errMessage(apiErr, resp.StatusCode())}
	}
	return out.toPayment(), nil
}

/* ---------- helpers ---------- */

func centsToBRL(cents int) float64 {
	return float64(cents) / 100.0
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	switch len(parts) {
	case 0:
		return "Cliente", "Cliente"
	case 1:
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func errMessage(e mpErrorResponse, status int) string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != "" {
		return e.Error
	}
	return fmt.Sprintf("unexpected processor response (HTTP %d)", status)
}

// MaskDocument keeps only the last digits of a CPF visible, matching the
// reporting format stored on the order.
func MaskDocument(doc string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, doc)
	if len(digits) != 11 {
		return doc
	}
	return fmt.Sprintf("***.***.%s-%s", digits[6:9], digits[9:])
}
