// file: internals/features/orders/dto/order_dto.go
package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	model "momentoamor_backend/internals/features/orders/model"
)

/* =======================================================================
   Create order (multipart form; photos arrive as files, not JSON)
======================================================================= */

type CreateOrderRequest struct {
	CustomerName  string `form:"nome_cliente"  validate:"required,min=2,max=120"`
	CustomerEmail string `form:"email"         validate:"required,email"`
	PartnerName   string `form:"nome_parceiro" validate:"required,min=1,max=120"`
	PageTitle     string `form:"titulo_pagina" validate:"required,min=2,max=120"`
	SpecialDate   string `form:"data_especial" validate:"required,datetime=2006-01-02"`
	Message       string `form:"mensagem"      validate:"required,max=3000"`
	MusicURL      string `form:"musica_url"    validate:"omitempty,url,max=500"`

	// Optional JSON array of timeline events, sent as a form field.
	TimelineJSON string `form:"journey_events" validate:"omitempty,max=20000"`
}

// Timeline decodes the journey_events field. An empty field is valid.
func (r *CreateOrderRequest) Timeline() ([]model.TimelineEvent, error) {
	if r.TimelineJSON == "" {
		return nil, nil
	}
	var events []model.TimelineEvent
	if err := json.Unmarshal([]byte(r.TimelineJSON), &events); err != nil {
		return nil, err
	}
	return events, nil
}

type CreateOrderResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	Slug        string    `json:"slug"`
	AmountCents int       `json:"amount_cents"`
}

/* =======================================================================
   Checkout
======================================================================= */

type InitiatePaymentRequest struct {
	Method string `json:"method" validate:"required,oneof=pix card"`

	// Card-only fields, produced by the processor's client-side SDK.
	CardToken       string `json:"token"`
	Installments    int    `json:"installments"`
	PaymentMethodID string `json:"payment_method_id"`
	IssuerID        string `json:"issuer_id"`
	DocumentType    string `json:"document_type"`
	DocumentNumber  string `json:"document_number"`
}

type PixPaymentResponse struct {
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	TicketURL    string `json:"ticket_url,omitempty"`
}

type CardPaymentResponse struct {
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
	StatusDetail string `json:"status_detail,omitempty"`
	PageActive   bool   `json:"page_active"`
}

type PaymentStatusResponse struct {
	Status       string `json:"status"`
	StatusDetail string `json:"status_detail,omitempty"`
}

/* =======================================================================
   Public page
======================================================================= */

// PublicPageResponse exposes only content fields; payment state, customer
// e-mail and card metadata never leave the admin surface.
type PublicPageResponse struct {
	CustomerName string                `json:"nome_cliente"`
	PartnerName  string                `json:"nome_parceiro"`
	PageTitle    string                `json:"titulo_pagina"`
	SpecialDate  string                `json:"data_especial"`
	Message      string                `json:"mensagem"`
	MusicURL     string                `json:"musica_url,omitempty"`
	Photos       []model.Photo         `json:"fotos"`
	Timeline     []model.TimelineEvent `json:"journey_events,omitempty"`
}

func PublicPageFromModel(o *model.Order) *PublicPageResponse {
	resp := &PublicPageResponse{
		CustomerName: o.OrderCustomerName,
		PartnerName:  o.OrderPartnerName,
		PageTitle:    o.OrderPageTitle,
		SpecialDate:  o.OrderSpecialDate,
		Message:      o.OrderMessage,
	}
	if o.OrderMusicURL != nil {
		resp.MusicURL = *o.OrderMusicURL
	}
	_ = json.Unmarshal(o.OrderPhotos, &resp.Photos)
	if len(o.OrderTimeline) > 0 {
		_ = json.Unmarshal(o.OrderTimeline, &resp.Timeline)
	}
	return resp
}

/* =======================================================================
   Admin
======================================================================= */

type AdminOrderResponse struct {
	OrderID       uuid.UUID  `json:"order_id"`
	Slug          string     `json:"slug"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	PageTitle     string     `json:"page_title"`
	AmountCents   int        `json:"amount_cents"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	PaymentID     string     `json:"payment_id,omitempty"`
	PaymentStatus string     `json:"payment_status"`
	PageActive    bool       `json:"page_active"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CardLastFour  string     `json:"card_last_four,omitempty"`
	CardBrand     string     `json:"card_brand,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func AdminOrderFromModel(o *model.Order) *AdminOrderResponse {
	resp := &AdminOrderResponse{
		OrderID:       o.OrderID,
		Slug:          o.OrderSlug,
		CustomerName:  o.OrderCustomerName,
		CustomerEmail: o.OrderCustomerEmail,
		PageTitle:     o.OrderPageTitle,
		AmountCents:   o.OrderAmountCents,
		PaymentStatus: string(o.OrderPaymentStatus),
		PageActive:    o.OrderPageActive,
		PaidAt:        o.OrderPaidAt,
		CreatedAt:     o.OrderCreatedAt,
	}
	if o.OrderPaymentMethod != nil {
		resp.PaymentMethod = string(*o.OrderPaymentMethod)
	}
	if o.OrderPaymentID != nil {
		resp.PaymentID = *o.OrderPaymentID
	}
	if o.OrderCardLastFour != nil {
		resp.CardLastFour = *o.OrderCardLastFour
	}
	if o.OrderCardBrand != nil {
		resp.CardBrand = *o.OrderCardBrand
	}
	return resp
}
