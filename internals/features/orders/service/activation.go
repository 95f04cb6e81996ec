// file: internals/features/orders/service/activation.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "momentoamor_backend/internals/features/orders/model"
)

// ActivationExtras are auxiliary fields written together with the flip.
type ActivationExtras struct {
	PaymentID      string
	PaymentMethod  model.PaymentMethod
	CardLastFour   string
	CardBrand      string
	CardHolderName string
	PayerDocument  string
}

// ActivateOrder performs the one-time pending→active transition as a single
// conditional UPDATE guarded by order_page_active = FALSE. The write's row
// count is the only signal for who won a concurrent race: callers must gate
// the confirmation e-mail on won == true, never on a prior read of
// order_page_active.
func ActivateOrder(ctx context.Context, db *gorm.DB, orderID uuid.UUID, extras ActivationExtras) (won bool, err error) {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"order_payment_status": model.PaymentStatusApproved,
		"order_page_active":    true,
		"order_paid_at":        now,
		"order_updated_at":     now,
	}
	mergeExtras(updates, extras)

	res := db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND order_page_active = FALSE", orderID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateActivationExtras writes only auxiliary metadata (late-arriving card
// info, the charge id) on an already-active order. Never touches the
// activation fields.
func UpdateActivationExtras(ctx context.Context, db *gorm.DB, orderID uuid.UUID, extras ActivationExtras) error {
	updates := map[string]interface{}{
		"order_updated_at": time.Now().UTC(),
	}
	mergeExtras(updates, extras)

	return db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Updates(updates).Error
}

func mergeExtras(updates map[string]interface{}, extras ActivationExtras) {
	if extras.PaymentID != "" {
		updates["order_payment_id"] = extras.PaymentID
	}
	if extras.PaymentMethod != "" {
		updates["order_payment_method"] = extras.PaymentMethod
	}
	if extras.CardLastFour != "" {
		updates["order_card_last_four"] = extras.CardLastFour
	}
	if extras.CardBrand != "" {
		updates["order_card_brand"] = extras.CardBrand
	}
	if extras.CardHolderName != "" {
		updates["order_card_holder_name"] = extras.CardHolderName
	}
	if extras.PayerDocument != "" {
		updates["order_payer_document"] = extras.PayerDocument
	}
}
