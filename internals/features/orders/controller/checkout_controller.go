// 📁 controller/checkout_controller.go
package controller

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"momentoamor_backend/internals/features/orders/dto"
	model "momentoamor_backend/internals/features/orders/model"
	"momentoamor_backend/internals/features/orders/service"
	helper "momentoamor_backend/internals/helpers"
)

type CheckoutController struct {
	DB       *gorm.DB
	Gateway  service.PaymentGateway
	Mailer   service.Mailer
	Validate *validator.Validate
}

func NewCheckoutController(db *gorm.DB, gateway service.PaymentGateway, mailer service.Mailer) *CheckoutController {
	return &CheckoutController{
		DB:       db,
		Gateway:  gateway,
		Mailer:   mailer,
		Validate: validator.New(),
	}
}

// 🟢 INITIATE PAYMENT: open a charge on the processor for a pending order.
// PIX returns the copy-paste code and QR immediately and resolution arrives
// later via webhook. Card resolves synchronously: approved activates the
// page in the same request, rejected surfaces the processor's reason.
func (ctrl *CheckoutController) InitiatePayment(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID de pedido inválido")
	}

	var body dto.InitiatePaymentRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Requisição inválida")
	}
	if err := ctrl.Validate.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	var order model.Order
	if err := ctrl.DB.WithContext(c.Context()).First(&order, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Pedido não encontrado")
		}
		log.Printf("❌ load order failed: %v", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Falha ao carregar o pedido")
	}
	if order.OrderPageActive {
		return helper.Error(c, fiber.StatusConflict, "Este pedido já foi pago")
	}

	description := fmt.Sprintf("Momentos de Amor - %s", order.OrderPageTitle)

	switch body.Method {
	case "pix":
		return ctrl.initiatePix(c, &order, description)
	case "card":
		if body.CardToken == "" || body.PaymentMethodID == "" {
			return helper.Error(c, fiber.StatusBadRequest, "Dados do cartão incompletos")
		}
		return ctrl.initiateCard(c, &order, &body, description)
	}
	return helper.Error(c, fiber.StatusBadRequest, "Método de pagamento inválido")
}

func (ctrl *CheckoutController) initiatePix(c *fiber.Ctx, order *model.Order, description string) error {
	payment, err := ctrl.Gateway.CreatePixPayment(c.Context(), service.PixCharge{
		AmountCents: order.OrderAmountCents,
		Description: description,
		PayerEmail:  order.OrderCustomerEmail,
		PayerName:   order.OrderCustomerName,
		OrderRef:    order.OrderID.String(),
	})
	if err != nil {
		return gatewayFailure(c, "pix", err)
	}

	method := model.PaymentMethodPix
	updates := map[string]interface{}{
		"order_payment_method": method,
		"order_payment_id":     payment.ID,
		"order_updated_at":     time.Now().UTC(),
	}
	if payment.PreferenceID != "" {
		updates["order_preference_id"] = payment.PreferenceID
	}
	if err := ctrl.DB.WithContext(c.Context()).Model(&model.Order{}).
		Where("order_id = ?", order.OrderID).
		Updates(updates).Error; err != nil {
		log.Printf("❌ persist pix charge ref failed: order=%s payment=%s: %v", order.OrderID, payment.ID, err)
		return helper.Error(c, fiber.StatusInternalServerError, "Falha ao registrar o pagamento")
	}

	log.Printf("✅ pix charge opened: order=%s payment=%s", order.OrderID, payment.ID)
	return helper.Success(c, "Pagamento PIX criado", dto.PixPaymentResponse{
		PaymentID:    payment.ID,
		Status:       payment.Status,
		QRCode:       payment.QRCode,
		QRCodeBase64: payment.QRCodeBase64,
		TicketURL:    payment.TicketURL,
	})
}

func (ctrl *CheckoutController) initiateCard(c *fiber.Ctx, order *model.Order, body *dto.InitiatePaymentRequest, description string) error {
	payment, err := ctrl.Gateway.CreateCardPayment(c.Context(), service.CardCharge{
		AmountCents:     order.OrderAmountCents,
		Description:     description,
		PayerEmail:      order.OrderCustomerEmail,
		CardToken:       body.CardToken,
		Installments:    body.Installments,
		PaymentMethodID: body.PaymentMethodID,
		IssuerID:        body.IssuerID,
		DocumentType:    body.DocumentType,
		DocumentNumber:  body.DocumentNumber,
		OrderRef:        order.OrderID.String(),
	})
	if err != nil {
		return gatewayFailure(c, "card", err)
	}

	extras := service.ActivationExtras{
		PaymentID:      payment.ID,
		PaymentMethod:  model.PaymentMethodCard,
		CardLastFour:   payment.CardLastFour,
		CardBrand:      payment.CardBrand,
		CardHolderName: payment.CardHolderName,
		PayerDocument:  payment.PayerDocument,
	}

	if !payment.Approved() {
		// Declined or still in review: record the attempt, keep pending.
		if err := service.UpdateActivationExtras(c.Context(), ctrl.DB, order.OrderID, extras); err != nil {
			log.Printf("⚠️ persist card attempt failed: order=%s: %v", order.OrderID, err)
		}
		if payment.Status == "rejected" {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"code":          fiber.StatusPaymentRequired,
				"status":        "error",
				"message":       "Pagamento recusado",
				"status_detail": payment.StatusDetail,
			})
		}
		return helper.Success(c, "Pagamento em análise", dto.CardPaymentResponse{
			PaymentID:    payment.ID,
			Status:       payment.Status,
			StatusDetail: payment.StatusDetail,
			PageActive:   false,
		})
	}

	won, err := service.ActivateOrder(c.Context(), ctrl.DB, order.OrderID, extras)
	if err != nil {
		// The charge went through; the page will still activate when the
		// processor's notification lands.
		log.Printf("❌ card activation write failed: order=%s payment=%s: %v", order.OrderID, payment.ID, err)
		return helper.Error(c, fiber.StatusInternalServerError,
			"Pagamento aprovado, mas houve uma falha ao ativar a página. Ela será ativada em instantes.")
	}
	if won {
		ctrl.notify(c, order.OrderID)
	}

	log.Printf("✅ card approved: order=%s payment=%s won=%v", order.OrderID, payment.ID, won)
	return helper.Success(c, "Pagamento aprovado", dto.CardPaymentResponse{
		PaymentID:  payment.ID,
		Status:     payment.Status,
		PageActive: true,
	})
}

// 🔵 PAYMENT STATUS: read-only reconciliation poll for the waiting screen.
// Reports the processor's current view without mutating the order; the
// activation flip itself stays with the webhook and card paths.
func (ctrl *CheckoutController) GetPaymentStatus(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID de pedido inválido")
	}

	var order model.Order
	if err := ctrl.DB.WithContext(c.Context()).First(&order, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Pedido não encontrado")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Falha ao carregar o pedido")
	}

	if order.OrderPageActive {
		return helper.Success(c, "OK", dto.PaymentStatusResponse{Status: "approved"})
	}
	if order.OrderPaymentID == nil {
		return helper.Success(c, "OK", dto.PaymentStatusResponse{Status: string(order.OrderPaymentStatus)})
	}

	payment, err := ctrl.Gateway.GetPayment(c.Context(), *order.OrderPaymentID)
	if err != nil {
		// Gateway hiccup on a poll: report what the order knows.
		log.Printf("⚠️ status poll gateway error: order=%s: %v", order.OrderID, err)
		return helper.Success(c, "OK", dto.PaymentStatusResponse{Status: string(order.OrderPaymentStatus)})
	}

	return helper.Success(c, "OK", dto.PaymentStatusResponse{
		Status:       payment.Status,
		StatusDetail: payment.StatusDetail,
	})
}

func (ctrl *CheckoutController) notify(c *fiber.Ctx, orderID uuid.UUID) {
	var fresh model.Order
	if err := ctrl.DB.WithContext(c.Context()).First(&fresh, "order_id = ?", orderID).Error; err != nil {
		log.Printf("⚠️ reload for confirmation mail failed: order=%s: %v", orderID, err)
		return
	}
	if err := ctrl.Mailer.SendConfirmation(c.Context(), &fresh); err != nil {
		log.Printf("⚠️ confirmation mail failed: order=%s: %v", orderID, err)
	}
}

func gatewayFailure(c *fiber.Ctx, method string, err error) error {
	var ge *service.GatewayError
	if errors.As(err, &ge) && ge.StatusCode >= 400 && ge.StatusCode < 500 {
		log.Printf("⚠️ %s charge refused by processor: %s", method, ge.Message)
		return helper.Error(c, fiber.StatusUnprocessableEntity, ge.Message)
	}
	log.Printf("❌ %s charge failed: %v", method, err)
	return helper.Error(c, fiber.StatusBadGateway, "Processador de pagamentos indisponível, tente novamente")
}
