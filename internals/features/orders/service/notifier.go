// file: internals/features/orders/service/notifier.go
package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"momentoamor_backend/internals/configs"
	model "momentoamor_backend/internals/features/orders/model"
)

// Mailer sends the confirmation message once an order becomes active.
// Sending is best-effort: a failure is logged and retriable out-of-band via
// the admin resend operation, never rolled back into the activation.
type Mailer interface {
	SendConfirmation(ctx context.Context, o *model.Order) error
}

/* =========================================================
   Resend implementation
========================================================= */

type ResendMailer struct {
	http    *resty.Client
	from    string
	appBase string
	enabled bool
}

func NewResendMailer(cfg configs.ResendConfig, appBase string) *ResendMailer {
	client := resty.New().
		SetBaseURL("https://api.resend.com").
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	return &ResendMailer{
		http:    client,
		from:    cfg.FromEmail,
		appBase: appBase,
		enabled: cfg.APIKey != "",
	}
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#0f0f1a;font-family:'Poppins',Arial,sans-serif;">
  <div style="max-width:580px;margin:32px auto;border-radius:24px;overflow:hidden;background:#13131f;">
    <div style="background:linear-gradient(135deg,#dc267f 0%,#e85d3a 100%);padding:48px 32px 40px;text-align:center;">
      <div style="font-size:44px;margin-bottom:12px;">💕</div>
      <h1 style="margin:4px 0 8px;font-size:32px;color:#ffffff;">Momentos de Amor</h1>
      <p style="margin:0;font-size:13px;color:rgba(255,255,255,0.8);">{{.PageTitle}}</p>
    </div>
    <div style="padding:40px 36px;">
      <p style="margin:0 0 8px;font-size:15px;color:#f0f0f0;">
        Olá, <strong style="color:#e8608a;">{{.CustomerName}}</strong>! 🥰
      </p>
      <p style="margin:0 0 32px;font-size:14px;color:#8888aa;line-height:1.7;">
        Seu pagamento foi confirmado! A página especial para você e
        <strong style="color:#f0f0f0;">{{.PartnerName}}</strong> já está disponível.
      </p>
      <div style="text-align:center;margin:0 0 32px;">
        <a href="{{.PageURL}}"
           style="display:inline-block;background:linear-gradient(135deg,#dc267f,#e85d3a);color:#ffffff;text-decoration:none;padding:15px 40px;border-radius:50px;font-size:15px;font-weight:600;">
          💖 Ver minha página
        </a>
      </div>
      <p style="text-align:center;margin:0 0 36px;font-size:12px;color:#555577;">
        Link direto: <a href="{{.PageURL}}" style="color:#dc267f;text-decoration:none;">{{.PageURL}}</a>
      </p>
      <div style="background:#0d0d1a;border-radius:16px;padding:28px;text-align:center;">
        <p style="margin:0 0 20px;font-size:12px;color:#555577;">Aponte a câmera do celular para escanear</p>
        <img src="{{.QRCodeURL}}" alt="QR Code" width="180" height="180" style="display:block;margin:0 auto;border-radius:6px;" />
      </div>
    </div>
    <div style="background:#0d0d1a;padding:24px 32px;text-align:center;">
      <p style="margin:0;font-size:11px;color:#444466;">Sua história de amor merece ser contada 💕</p>
    </div>
  </div>
</body>
</html>`))

type confirmationData struct {
	CustomerName string
	PartnerName  string
	PageTitle    string
	PageURL      string
	QRCodeURL    string
}

func (m *ResendMailer) SendConfirmation(ctx context.Context, o *model.Order) error {
	if !m.enabled {
		log.Printf("[MAIL] disabled, skipping confirmation for order=%s", o.OrderID)
		return nil
	}

	pageURL := o.PageURL(m.appBase)
	data := confirmationData{
		CustomerName: o.OrderCustomerName,
		PartnerName:  o.OrderPartnerName,
		PageTitle:    o.OrderPageTitle,
		PageURL:      pageURL,
		QRCodeURL:    QRCodeURL(pageURL),
	}

	var html bytes.Buffer
	if err := confirmationTmpl.Execute(&html, data); err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	var apiErr struct {
		Message string `json:"message"`
	}
	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"from":    m.from,
			"to":      []string{o.OrderCustomerEmail},
			"subject": fmt.Sprintf("💕 Sua página %q está pronta!", o.OrderPageTitle),
			"html":    html.String(),
		}).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("resend [%d]: %s", resp.StatusCode(), apiErr.Message)
	}

	log.Printf("✅ confirmation sent: order=%s to=%s", o.OrderID, o.OrderCustomerEmail)
	return nil
}

// QRCodeURL builds the scannable representation of the page link.
func QRCodeURL(pageURL string) string {
	return "https://api.qrserver.com/v1/create-qr-code/?size=220x220&data=" +
		url.QueryEscape(pageURL) + "&color=f0f0f0&bgcolor=1a1a2e&format=png"
}
