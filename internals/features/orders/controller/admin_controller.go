// 📁 controller/admin_controller.go
package controller

import (
	"crypto/subtle"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"momentoamor_backend/internals/configs"
	"momentoamor_backend/internals/features/orders/dto"
	model "momentoamor_backend/internals/features/orders/model"
	"momentoamor_backend/internals/features/orders/service"
	helper "momentoamor_backend/internals/helpers"
)

type AdminController struct {
	DB     *gorm.DB
	Mailer service.Mailer
}

func NewAdminController(db *gorm.DB, mailer service.Mailer) *AdminController {
	return &AdminController{DB: db, Mailer: mailer}
}

// RequireAdmin gates the admin surface on the X-Admin-Password header.
func RequireAdmin(c *fiber.Ctx) error {
	given := c.Get("X-Admin-Password")
	if given == "" ||
		subtle.ConstantTimeCompare([]byte(given), []byte(configs.AdminPassword)) != 1 {
		return helper.Error(c, fiber.StatusUnauthorized, "Não autorizado")
	}
	return c.Next()
}

// 🔵 LIST ORDERS: operational overview, newest first.
func (ctrl *AdminController) ListOrders(c *fiber.Ctx) error {
	var orders []model.Order
	if err := ctrl.DB.WithContext(c.Context()).
		Order("order_created_at DESC").
		Limit(200).
		Find(&orders).Error; err != nil {
		log.Printf("❌ admin list failed: %v", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Falha ao listar pedidos")
	}

	out := make([]*dto.AdminOrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, dto.AdminOrderFromModel(&orders[i]))
	}
	return helper.Success(c, "OK", out)
}

// 🟠 FORCE ACTIVATE: manual escape hatch when a payment confirmed
// out-of-band (a processor outage, a bank transfer). Same single
// conditional write as the automatic paths, so it stays idempotent and
// mails at most once.
func (ctrl *AdminController) ForceActivate(c *fiber.Ctx) error {
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

	won, err := service.ActivateOrder(c.Context(), ctrl.DB, orderID, service.ActivationExtras{})
	if err != nil {
		log.Printf("❌ force activate failed: order=%s: %v", orderID, err)
		return helper.Error(c, fiber.StatusInternalServerError, "Falha ao ativar o pedido")
	}
	if won {
		ctrl.sendConfirmation(c, orderID)
		log.Printf("✅ page force-activated: order=%s", orderID)
	}

	return helper.Success(c, "Pedido ativado", fiber.Map{
		"order_id":  orderID,
		"activated": won,
	})
}

// 🟠 RESEND CONFIRMATION: re-dispatch the confirmation e-mail. Only valid
// for an active page; resending for a pending order would hand out a link
// to a page that does not resolve yet.
func (ctrl *AdminController) ResendConfirmation(c *fiber.Ctx) error {
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
	if !order.OrderPageActive {
		return helper.Error(c, fiber.StatusConflict, "Pedido ainda não está ativo")
	}

	if err := ctrl.Mailer.SendConfirmation(c.Context(), &order); err != nil {
		log.Printf("❌ resend confirmation failed: order=%s: %v", orderID, err)
		return helper.Error(c, fiber.StatusBadGateway, "Falha ao reenviar o e-mail")
	}

	log.Printf("✅ confirmation resent: order=%s", orderID)
	return helper.Success(c, "E-mail reenviado", fiber.Map{"order_id": orderID})
}

func (ctrl *AdminController) sendConfirmation(c *fiber.Ctx, orderID uuid.UUID) {
	var fresh model.Order
	if err := ctrl.DB.WithContext(c.Context()).First(&fresh, "order_id = ?", orderID).Error; err != nil {
		log.Printf("⚠️ reload for confirmation mail failed: order=%s: %v", orderID, err)
		return
	}
	if err := ctrl.Mailer.SendConfirmation(c.Context(), &fresh); err != nil {
		log.Printf("⚠️ confirmation mail failed: order=%s: %v", orderID, err)
	}
}
