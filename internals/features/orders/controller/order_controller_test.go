package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"momentoamor_backend/internals/helpers/oss"
)

func orderApp(db *gorm.DB, photos oss.PhotoStore) *fiber.App {
	app := newTestApp()
	ctrl := NewOrderController(db, photos)
	app.Post("/api/orders", ctrl.CreateOrder)
	app.Get("/api/pages/:slug", ctrl.GetPublicPage)
	return app
}

func multipartOrder(t *testing.T, fields map[string]string, photoNames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, name := range photoNames {
		fw, err := w.CreateFormFile("fotos", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func validOrderFields() map[string]string {
	return map[string]string{
		"nome_cliente":  "Ana Souza",
		"email":         "ana@example.com",
		"nome_parceiro": "João",
		"titulo_pagina": "Nossa História",
		"data_especial": "2020-02-14",
		"mensagem":      "Te amo desde o primeiro dia.",
	}
}

func TestCreateOrder(t *testing.T) {
	db, mock := newMockDB(t)
	photos := &fakePhotoStore{}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"order_page_active"}).AddRow(false))

	app := orderApp(db, photos)
	body, contentType := multipartOrder(t, validOrderFields(), "foto1.jpg", "foto2.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Data struct {
			OrderID     uuid.UUID `json:"order_id"`
			Slug        string    `json:"slug"`
			AmountCents int       `json:"amount_cents"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))

	assert.NotEqual(t, uuid.Nil, parsed.Data.OrderID)
	assert.Regexp(t, `^nossa-historia-[0-9a-f]{8}$`, parsed.Data.Slug)
	assert.Greater(t, parsed.Data.AmountCents, 0)

	assert.Len(t, photos.uploaded, 2, "photos upload before the row is written")
	assert.Empty(t, photos.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderValidation(t *testing.T) {
	db, _ := newMockDB(t)
	app := orderApp(db, &fakePhotoStore{})

	fields := validOrderFields()
	fields["email"] = "not-an-email"
	fields["data_especial"] = "14/02/2020"

	body, contentType := multipartOrder(t, fields, "foto.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, "email", parsed.Errors["CustomerEmail"])
	assert.Equal(t, "datetime", parsed.Errors["SpecialDate"])
}

func TestCreateOrderRequiresPhoto(t *testing.T) {
	db, _ := newMockDB(t)
	app := orderApp(db, &fakePhotoStore{})

	body, contentType := multipartOrder(t, validOrderFields())
	req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrderSlugCollisionRetriesOnce(t *testing.T) {
	db, mock := newMockDB(t)
	photos := &fakePhotoStore{}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"order_page_active"}).AddRow(false))

	app := orderApp(db, photos)
	body, contentType := multipartOrder(t, validOrderFields(), "foto.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Empty(t, photos.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderCleansUpPhotosOnInsertFailure(t *testing.T) {
	db, mock := newMockDB(t)
	photos := &fakePhotoStore{}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnError(assertableErr("connection reset"))

	app := orderApp(db, photos)
	body, contentType := multipartOrder(t, validOrderFields(), "foto.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Len(t, photos.deleted, 1, "uploaded photos are removed when the row never lands")
}

type assertableErr string

func (e assertableErr) Error() string { return string(e) }

func TestGetPublicPage(t *testing.T) {
	db, mock := newMockDB(t)
	orderID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE order_slug = \$1 AND order_page_active = TRUE`).
		WithArgs("nossa-historia-abc", 1).
		WillReturnRows(orderRow(orderID, "nossa-historia-abc", true))

	app := orderApp(db, &fakePhotoStore{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/pages/nossa-historia-abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))

	assert.Equal(t, "Nossa História", parsed.Data["titulo_pagina"])
	assert.Equal(t, "João", parsed.Data["nome_parceiro"])
	// payment state and customer e-mail never reach the public payload
	assert.NotContains(t, parsed.Data, "order_payment_status")
	assert.NotContains(t, parsed.Data, "customer_email")
}

func TestGetPublicPageInactiveLooksMissing(t *testing.T) {
	db, mock := newMockDB(t)

	// an inactive page is filtered by the WHERE clause, so the handler sees
	// the same empty result as a slug that never existed
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE order_slug = \$1 AND order_page_active = TRUE`).
		WithArgs("pagina-pendente-123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))

	app := orderApp(db, &fakePhotoStore{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/pages/pagina-pendente-123", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
