// file: internals/features/orders/model/order_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/* ================================
   ENUM mirror (must match DB)
================================ */

type PaymentStatus string
type PaymentMethod string

const (
	// PaymentStatus is monotonic: once approved it never regresses.
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
)

const (
	PaymentMethodPix  PaymentMethod = "pix"
	PaymentMethodCard PaymentMethod = "credit_card"
)

/* ================================
   JSONB payloads
================================ */

// Photo is one stored media reference on the page.
type Photo struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// TimelineEvent is one entry of the couple's journey.
type TimelineEvent struct {
	Emoji       string `json:"emoji"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

/* ================================
   MODEL: orders
================================ */

// Order is the sole persisted entity: one row per purchase attempt.
//
// Activation invariant: order_page_active flips false→true at most once,
// always through a conditional UPDATE guarded by order_page_active = FALSE,
// and always together with order_payment_status = 'approved' and
// order_paid_at. Content fields are immutable after creation.
type Order struct {
	OrderID uuid.UUID `json:"order_id" gorm:"column:order_id;type:uuid;primaryKey"`

	// Public lookup key for the rendered page. Unique, immutable.
	OrderSlug string `json:"order_slug" gorm:"column:order_slug;type:text;not null;uniqueIndex:uq_orders_slug"`

	// Customer-supplied content.
	OrderCustomerName  string         `json:"order_customer_name"  gorm:"column:order_customer_name;type:text;not null"`
	OrderCustomerEmail string         `json:"order_customer_email" gorm:"column:order_customer_email;type:text;not null"`
	OrderPartnerName   string         `json:"order_partner_name"   gorm:"column:order_partner_name;type:text;not null"`
	OrderPageTitle     string         `json:"order_page_title"     gorm:"column:order_page_title;type:text;not null"`
	OrderSpecialDate   string         `json:"order_special_date"   gorm:"column:order_special_date;type:date;not null"`
	OrderMessage       string         `json:"order_message"        gorm:"column:order_message;type:text;not null"`
	OrderMusicURL      *string        `json:"order_music_url"      gorm:"column:order_music_url;type:text"`
	OrderPhotos        datatypes.JSON `json:"order_photos"         gorm:"column:order_photos;type:jsonb;not null"`
	OrderTimeline      datatypes.JSON `json:"order_timeline"       gorm:"column:order_timeline;type:jsonb"`

	// Fixed product tier price in BRL cents. Never mutated after creation.
	OrderAmountCents int `json:"order_amount_cents" gorm:"column:order_amount_cents;type:int;not null;check:order_amount_cents>0"`

	// Gateway correlation. order_payment_id is the processor-assigned charge
	// id; order_preference_id the processor checkout preference/session id.
	OrderPaymentMethod  *PaymentMethod `json:"order_payment_method" gorm:"column:order_payment_method;type:text"`
	OrderPaymentID      *string        `json:"order_payment_id"     gorm:"column:order_payment_id;type:text"`
	OrderPreferenceID   *string        `json:"order_preference_id"  gorm:"column:order_preference_id;type:text"`
	OrderPaymentStatus  PaymentStatus  `json:"order_payment_status" gorm:"column:order_payment_status;type:text;not null;default:'pending'"`
	OrderPageActive     bool           `json:"order_page_active"    gorm:"column:order_page_active;not null;default:false"`
	OrderPaidAt         *time.Time     `json:"order_paid_at"        gorm:"column:order_paid_at;type:timestamptz"`

	// Card metadata captured opportunistically from the processor response.
	// Reporting only, never used for authorization.
	OrderCardLastFour    *string `json:"order_card_last_four"    gorm:"column:order_card_last_four;type:varchar(4)"`
	OrderCardBrand       *string `json:"order_card_brand"        gorm:"column:order_card_brand;type:text"`
	OrderCardHolderName  *string `json:"order_card_holder_name"  gorm:"column:order_card_holder_name;type:text"`
	OrderPayerDocument   *string `json:"order_payer_document"    gorm:"column:order_payer_document;type:text"`

	// Audit.
	OrderCreatedAt time.Time `json:"order_created_at" gorm:"column:order_created_at;type:timestamptz;not null"`
	OrderUpdatedAt time.Time `json:"order_updated_at" gorm:"column:order_updated_at;type:timestamptz;not null"`
}

func (Order) TableName() string { return "orders" }

// PageURL builds the shareable link for the order's public page.
func (o *Order) PageURL(appBase string) string {
	return appBase + "/p/" + o.OrderSlug
}
