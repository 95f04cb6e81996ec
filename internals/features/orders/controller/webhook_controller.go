// 📁 controller/webhook_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	model "momentoamor_backend/internals/features/orders/model"
	"momentoamor_backend/internals/features/orders/service"
)

// WebhookController receives processor push notifications. The contract is
// deliberately one-sided: every delivery is acked with 200 no matter what,
// because a non-2xx only triggers redelivery of the same payload and the
// charge re-fetch makes retries harmless. All outcomes land in
// gateway_events for manual reconciliation.
type WebhookController struct {
	DB      *gorm.DB
	Gateway service.PaymentGateway
	Mailer  service.Mailer
}

func NewWebhookController(db *gorm.DB, gateway service.PaymentGateway, mailer service.Mailer) *WebhookController {
	return &WebhookController{DB: db, Gateway: gateway, Mailer: mailer}
}

// 🟡 PAYMENT NOTIFICATION: idempotent, ordering-insensitive reconciliation.
// The push payload is only trusted for the charge id; the authoritative
// state is re-fetched from the processor before any order mutation.
func (ctrl *WebhookController) HandlePaymentNotification(c *fiber.Ctx) error {
	event := ctrl.newEvent(c)

	paymentID, ok := service.ParseNotification(c.Query("topic"), c.Query("id"), c.Body())
	if !ok {
		ctrl.finishEvent(c, event, model.GatewayEventStatusIgnored, "unrecognized payload shape")
		log.Printf("⚠️ webhook ignored: unrecognized payload")
		return ack(c)
	}
	event.GatewayEventExternalID = &paymentID

	payment, err := ctrl.Gateway.GetPayment(c.Context(), paymentID)
	if err != nil {
		ctrl.finishEvent(c, event, model.GatewayEventStatusFailed, "charge fetch: "+err.Error())
		log.Printf("❌ webhook charge fetch failed: payment=%s: %v", paymentID, err)
		return ack(c)
	}

	order, err := ctrl.resolveOrder(c, payment)
	if err != nil {
		ctrl.finishEvent(c, event, model.GatewayEventStatusFailed, "order lookup: "+err.Error())
		log.Printf("❌ webhook order lookup failed: payment=%s: %v", paymentID, err)
		return ack(c)
	}
	if order == nil {
		ctrl.finishEvent(c, event, model.GatewayEventStatusIgnored, "no matching order")
		log.Printf("⚠️ webhook unmatched: payment=%s ref=%q pref=%q",
			paymentID, payment.ExternalReference, payment.PreferenceID)
		return ack(c)
	}
	event.GatewayEventOrderID = &order.OrderID

	extras := service.ActivationExtras{
		PaymentID:      payment.ID,
		CardLastFour:   payment.CardLastFour,
		CardHolderName: payment.CardHolderName,
		PayerDocument:  payment.PayerDocument,
	}
	if order.OrderPaymentMethod != nil && *order.OrderPaymentMethod == model.PaymentMethodCard {
		extras.CardBrand = payment.CardBrand
	}

	if !payment.Approved() {
		// Pending, in-review, rejected: persist the charge reference and
		// metadata, never regress an already approved order.
		if err := service.UpdateActivationExtras(c.Context(), ctrl.DB, order.OrderID, extras); err != nil {
			ctrl.finishEvent(c, event, model.GatewayEventStatusFailed, "extras write: "+err.Error())
			log.Printf("❌ webhook extras write failed: order=%s: %v", order.OrderID, err)
			return ack(c)
		}
		ctrl.finishEvent(c, event, model.GatewayEventStatusProcessed, "")
		log.Printf("✅ webhook recorded: order=%s payment=%s status=%s", order.OrderID, payment.ID, payment.Status)
		return ack(c)
	}

	won, err := service.ActivateOrder(c.Context(), ctrl.DB, order.OrderID, extras)
	if err != nil {
		ctrl.finishEvent(c, event, model.GatewayEventStatusFailed, "activation write: "+err.Error())
		log.Printf("❌ webhook activation failed: order=%s payment=%s: %v", order.OrderID, payment.ID, err)
		return ack(c)
	}

	if won {
		ctrl.sendConfirmation(c, order.OrderID)
		log.Printf("✅ page activated via webhook: order=%s payment=%s", order.OrderID, payment.ID)
	} else {
		// Already active; keep any late-arriving metadata.
		if err := service.UpdateActivationExtras(c.Context(), ctrl.DB, order.OrderID, extras); err != nil {
			log.Printf("⚠️ webhook late extras write failed: order=%s: %v", order.OrderID, err)
		}
		log.Printf("✅ webhook duplicate approved: order=%s payment=%s (already active)", order.OrderID, payment.ID)
	}

	ctrl.finishEvent(c, event, model.GatewayEventStatusProcessed, "")
	return ack(c)
}

// resolveOrder correlates the charge back to an order: the stored checkout
// preference id takes priority, then external_reference, which carries the
// order id set when the charge was opened.
func (ctrl *WebhookController) resolveOrder(c *fiber.Ctx, payment *service.Payment) (*model.Order, error) {
	if payment.PreferenceID != "" {
		var order model.Order
		err := ctrl.DB.WithContext(c.Context()).
			First(&order, "order_preference_id = ?", payment.PreferenceID).Error
		if err == nil {
			return &order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if payment.ExternalReference != "" {
		orderID, err := uuid.Parse(payment.ExternalReference)
		if err != nil {
			return nil, nil
		}
		var order model.Order
		err = ctrl.DB.WithContext(c.Context()).First(&order, "order_id = ?", orderID).Error
		if err == nil {
			return &order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

func (ctrl *WebhookController) sendConfirmation(c *fiber.Ctx, orderID uuid.UUID) {
	var fresh model.Order
	if err := ctrl.DB.WithContext(c.Context()).First(&fresh, "order_id = ?", orderID).Error; err != nil {
		log.Printf("⚠️ reload for confirmation mail failed: order=%s: %v", orderID, err)
		return
	}
	if err := ctrl.Mailer.SendConfirmation(c.Context(), &fresh); err != nil {
		log.Printf("⚠️ confirmation mail failed: order=%s: %v", orderID, err)
	}
}

/* ---------- audit trail ---------- */

func (ctrl *WebhookController) newEvent(c *fiber.Ctx) *model.GatewayEvent {
	event := &model.GatewayEvent{
		GatewayEventID:         uuid.New(),
		GatewayEventProvider:   "mercadopago",
		GatewayEventStatus:     model.GatewayEventStatusReceived,
		GatewayEventReceivedAt: time.Now().UTC(),
	}
	// jsonb column: non-JSON bodies only survive in the log line.
	if body := c.Body(); json.Valid(body) {
		event.GatewayEventPayload = datatypes.JSON(append([]byte(nil), body...))
	}
	if q := string(c.Request().URI().QueryString()); q != "" {
		event.GatewayEventRawQuery = &q
	}
	return event
}

func (ctrl *WebhookController) finishEvent(c *fiber.Ctx, event *model.GatewayEvent, status model.GatewayEventStatus, errMsg string) {
	now := time.Now().UTC()
	event.GatewayEventStatus = status
	event.GatewayEventProcessedAt = &now
	if errMsg != "" {
		event.GatewayEventError = &errMsg
	}
	if err := ctrl.DB.WithContext(c.Context()).Create(event).Error; err != nil {
		log.Printf("⚠️ gateway event not recorded: %v", err)
	}
}

func ack(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
