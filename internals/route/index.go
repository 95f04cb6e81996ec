// 📁 route/index.go
package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	messageController "momentoamor_backend/internals/features/messages/controller"
	musicController "momentoamor_backend/internals/features/music/controller"
	orderRoutes "momentoamor_backend/internals/features/orders/route"
	orderService "momentoamor_backend/internals/features/orders/service"
	"momentoamor_backend/internals/helpers/oss"
)

// SetupRoutes registers every endpoint under /api plus the base routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, gateway orderService.PaymentGateway, mailer orderService.Mailer, photos oss.PhotoStore) {
	BaseRoutes(app)

	api := app.Group("/api")

	orderRoutes.OrderRoutes(api, db, gateway, mailer, photos)

	musicCtrl := musicController.NewMusicController()
	api.Get("/music/search", musicCtrl.Search)

	messageCtrl := messageController.NewMessageController()
	api.Post("/messages/generate", messageCtrl.Generate)
}
