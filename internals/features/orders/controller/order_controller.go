// 📁 controller/order_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"momentoamor_backend/internals/configs"
	"momentoamor_backend/internals/features/orders/dto"
	model "momentoamor_backend/internals/features/orders/model"
	helper "momentoamor_backend/internals/helpers"
	"momentoamor_backend/internals/helpers/oss"
)

const maxOrderPhotos = 8

type OrderController struct {
	DB       *gorm.DB
	Photos   oss.PhotoStore
	Validate *validator.Validate
}

func NewOrderController(db *gorm.DB, photos oss.PhotoStore) *OrderController {
	return &OrderController{
		DB:       db,
		Photos:   photos,
		Validate: validator.New(),
	}
}

// 🟢 CREATE ORDER: persist the page content and open a pending order.
// Multipart form: text fields plus up to 8 photo files under "fotos".
// Photo uploads complete before the row is written so the stored JSONB
// only ever references objects that exist.
func (ctrl *OrderController) CreateOrder(c *fiber.Ctx) error {
	var body dto.CreateOrderRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Requisição inválida")
	}
	if err := ctrl.Validate.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	timeline, err := body.Timeline()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "journey_events inválido")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Formulário multipart inválido")
	}
	files := form.File["fotos"]
	if len(files) == 0 {
		return helper.Error(c, fiber.StatusBadRequest, "Envie pelo menos uma foto")
	}
	if len(files) > maxOrderPhotos {
		return helper.Error(c, fiber.StatusBadRequest, "Máximo de 8 fotos por página")
	}

	orderID := uuid.New()

	// Upload first. On any later failure the uploaded objects are removed
	// best-effort; a leaked object is preferable to a row pointing nowhere.
	photos := make([]model.Photo, 0, len(files))
	for _, fh := range files {
		url, upErr := ctrl.Photos.UploadOrderPhoto(c.Context(), orderID, fh)
		if upErr != nil {
			ctrl.cleanupPhotos(c, photos)
			var fe *fiber.Error
			if errors.As(upErr, &fe) {
				return helper.Error(c, fe.Code, fe.Message)
			}
			log.Printf("❌ photo upload failed: %v", upErr)
			return helper.Error(c, fiber.StatusInternalServerError, "Falha ao enviar foto")
		}
		photos = append(photos, model.Photo{URL: url, Alt: body.PageTitle})
	}

	photosJSON, _ := json.Marshal(photos)
	var timelineJSON datatypes.JSON
	if len(timeline) > 0 {
		timelineJSON, _ = json.Marshal(timeline)
	}

	now := time.Now().UTC()
	order := model.Order{
		OrderID:            orderID,
		OrderSlug:          helper.UniqueSlug(body.PageTitle),
		OrderCustomerName:  body.CustomerName,
		OrderCustomerEmail: body.CustomerEmail,
		OrderPartnerName:   body.PartnerName,
		OrderPageTitle:     body.PageTitle,
		OrderSpecialDate:   body.SpecialDate,
		OrderMessage:       body.Message,
		OrderPhotos:        photosJSON,
		OrderTimeline:      timelineJSON,
		OrderAmountCents:   configs.ProductPriceCents,
		OrderPaymentStatus: model.PaymentStatusPending,
		OrderPageActive:    false,
		OrderCreatedAt:     now,
		OrderUpdatedAt:     now,
	}
	if body.MusicURL != "" {
		order.OrderMusicURL = &body.MusicURL
	}

	if err := ctrl.DB.WithContext(c.Context()).Create(&order).Error; err != nil {
		// Slug collision: regenerate once, then give up with a conflict.
		if isUniqueViolation(err) {
			order.OrderSlug = helper.UniqueSlug(body.PageTitle)
			err = ctrl.DB.WithContext(c.Context()).Create(&order).Error
		}
		if err != nil {
			ctrl.cleanupPhotos(c, photos)
			if isUniqueViolation(err) {
				return helper.Error(c, fiber.StatusConflict, "Não foi possível gerar um link único, tente novamente")
			}
			log.Printf("❌ create order failed: %v", err)
			return helper.Error(c, fiber.StatusInternalServerError, "Falha ao salvar o pedido")
		}
	}

	log.Printf("✅ order created: id=%s slug=%s", order.OrderID, order.OrderSlug)
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Pedido criado", dto.CreateOrderResponse{
		OrderID:     order.OrderID,
		Slug:        order.OrderSlug,
		AmountCents: order.OrderAmountCents,
	})
}

// 🔵 PUBLIC PAGE: lookup by slug, active pages only. An existing but
// inactive page is indistinguishable from a missing one.
func (ctrl *OrderController) GetPublicPage(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Slug ausente")
	}

	var order model.Order
	err := ctrl.DB.WithContext(c.Context()).
		Where("order_slug = ? AND order_page_active = TRUE", slug).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Página não encontrada")
		}
		log.Printf("❌ public page lookup failed: %v", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Falha ao buscar a página")
	}

	return helper.Success(c, "OK", dto.PublicPageFromModel(&order))
}

func (ctrl *OrderController) cleanupPhotos(c *fiber.Ctx, photos []model.Photo) {
	for _, p := range photos {
		if err := ctrl.Photos.DeleteByPublicURL(c.Context(), p.URL); err != nil {
			log.Printf("⚠️ orphan photo not removed: %s: %v", p.URL, err)
		}
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
