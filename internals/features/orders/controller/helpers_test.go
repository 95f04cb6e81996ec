package controller

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	model "momentoamor_backend/internals/features/orders/model"
	"momentoamor_backend/internals/features/orders/service"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

// orderRow builds a sqlmock row set mirroring a stored order.
func orderRow(orderID uuid.UUID, slug string, active bool) *sqlmock.Rows {
	status := model.PaymentStatusPending
	if active {
		status = model.PaymentStatusApproved
	}
	photos, _ := json.Marshal([]model.Photo{{URL: "https://cdn.example/orders/a/1.webp"}})
	return sqlmock.NewRows([]string{
		"order_id", "order_slug", "order_customer_name", "order_customer_email",
		"order_partner_name", "order_page_title", "order_special_date",
		"order_message", "order_photos", "order_amount_cents",
		"order_payment_status", "order_page_active",
		"order_created_at", "order_updated_at",
	}).AddRow(
		orderID, slug, "Ana", "ana@example.com",
		"João", "Nossa História", "2020-02-14",
		"Te amo!", photos, 1499,
		status, active,
		time.Now().UTC(), time.Now().UTC(),
	)
}

/* ---------- doubles ---------- */

type stubGateway struct {
	pixFn  func(in service.PixCharge) (*service.Payment, error)
	cardFn func(in service.CardCharge) (*service.Payment, error)
	getFn  func(paymentID string) (*service.Payment, error)
}

func (s *stubGateway) CreatePixPayment(_ context.Context, in service.PixCharge) (*service.Payment, error) {
	return s.pixFn(in)
}

func (s *stubGateway) CreateCardPayment(_ context.Context, in service.CardCharge) (*service.Payment, error) {
	return s.cardFn(in)
}

func (s *stubGateway) GetPayment(_ context.Context, paymentID string) (*service.Payment, error) {
	return s.getFn(paymentID)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string // customer e-mails, in order
	err  error
}

func (m *recordingMailer) SendConfirmation(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, o.OrderCustomerEmail)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakePhotoStore struct {
	uploaded  []string
	deleted   []string
	uploadErr error
}

func (f *fakePhotoStore) UploadOrderPhoto(_ context.Context, orderID uuid.UUID, fh *multipart.FileHeader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	url := "https://cdn.example/orders/" + orderID.String() + "/" + fh.Filename
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakePhotoStore) DeleteByPublicURL(_ context.Context, publicURL string) error {
	f.deleted = append(f.deleted, publicURL)
	return nil
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{DisableStartupMessage: true})
}
