// 📁 route/order_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"momentoamor_backend/internals/features/orders/controller"
	"momentoamor_backend/internals/features/orders/service"
	"momentoamor_backend/internals/helpers/oss"
	"momentoamor_backend/internals/middlewares"
)

// OrderRoutes wires the full order lifecycle: creation, checkout, the
// processor webhook, the public page and the admin surface.
func OrderRoutes(api fiber.Router, db *gorm.DB, gateway service.PaymentGateway, mailer service.Mailer, photos oss.PhotoStore) {
	orderCtrl := controller.NewOrderController(db, photos)
	checkoutCtrl := controller.NewCheckoutController(db, gateway, mailer)
	webhookCtrl := controller.NewWebhookController(db, gateway, mailer)
	adminCtrl := controller.NewAdminController(db, mailer)

	orders := api.Group("/orders")
	orders.Post("/", middlewares.CreateOrderRateLimiter(), orderCtrl.CreateOrder)
	orders.Post("/:id/checkout", checkoutCtrl.InitiatePayment)
	orders.Get("/:id/payment-status", checkoutCtrl.GetPaymentStatus)

	// Processor push notifications. Always acks 200; must never sit behind
	// the admin gate or a strict limiter.
	api.Post("/webhooks/mercadopago", webhookCtrl.HandlePaymentNotification)

	// Public page lookup, active pages only.
	api.Get("/pages/:slug", orderCtrl.GetPublicPage)

	admin := api.Group("/admin", middlewares.AdminRateLimiter(), controller.RequireAdmin)
	admin.Get("/orders", adminCtrl.ListOrders)
	admin.Post("/orders/:id/activate", adminCtrl.ForceActivate)
	admin.Post("/orders/:id/resend", adminCtrl.ResendConfirmation)
}
