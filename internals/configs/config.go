package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

/* =======================
   Typed config objects
======================= */

// MercadoPagoConfig holds the processor credentials. Injected into the
// gateway adapter constructor; a missing access token is fatal at startup.
type MercadoPagoConfig struct {
	AccessToken     string
	PublicKey       string
	NotificationURL string
}

// ResendConfig holds the transactional mail settings. Optional: when the
// API key is empty the dispatcher runs disabled and only logs.
type ResendConfig struct {
	APIKey    string
	FromEmail string
}

// OSSConfig holds the object-storage settings for order photos.
type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	PublicBaseURL   string // optional CDN/custom domain; derived from bucket+endpoint when empty
	Prefix          string
}

var (
	MercadoPago MercadoPagoConfig
	Resend      ResendConfig
	OSS         OSSConfig

	// AppBaseURL is the public site prefix used to build shareable page links.
	AppBaseURL string

	// AdminPassword gates the administrative surface (X-Admin-Password header).
	AdminPassword string

	// ProductPriceCents is the fixed product tier price in BRL cents.
	ProductPriceCents int

	// Optional integrations.
	YouTubeAPIKey string
	AIGatewayURL  string
	AIGatewayKey  string
)

/* =======================
   ENV LOADER
======================= */

func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ no .env file found, using system ENV")
		} else {
			log.Println("✅ .env file loaded")
		}
	} else {
		log.Println("🚀 running on Railway, using system ENV")
	}

	MercadoPago = MercadoPagoConfig{
		AccessToken:     GetEnv("MERCADOPAGO_ACCESS_TOKEN"),
		PublicKey:       GetEnv("MERCADOPAGO_PUBLIC_KEY"),
		NotificationURL: GetEnv("MERCADOPAGO_NOTIFICATION_URL"),
	}
	Resend = ResendConfig{
		APIKey:    GetEnv("RESEND_API_KEY"),
		FromEmail: GetEnv("RESEND_FROM_EMAIL", "noreply@momentodeamor.com"),
	}
	OSS = OSSConfig{
		Endpoint:        GetEnv("OSS_ENDPOINT"),
		AccessKeyID:     GetEnv("OSS_ACCESS_KEY_ID"),
		AccessKeySecret: GetEnv("OSS_ACCESS_KEY_SECRET"),
		Bucket:          GetEnv("OSS_BUCKET"),
		PublicBaseURL:   GetEnv("OSS_PUBLIC_BASE_URL"),
		Prefix:          GetEnv("OSS_PREFIX", "uploads/"),
	}

	AppBaseURL = GetEnv("APP_BASE_URL", "https://momentodeamor.com")
	AdminPassword = GetEnv("ADMIN_PASSWORD")
	ProductPriceCents = GetEnvInt("PRODUCT_PRICE_CENTS", 1499)

	YouTubeAPIKey = GetEnv("YOUTUBE_API_KEY")
	AIGatewayURL = GetEnv("AI_GATEWAY_URL", "https://api.openai.com/v1/chat/completions")
	AIGatewayKey = GetEnv("AI_GATEWAY_KEY")

	// Required keys: a broken processor or admin surface is a startup-time
	// configuration error, never a per-request failure.
	mustSet("MERCADOPAGO_ACCESS_TOKEN", MercadoPago.AccessToken)
	mustSet("ADMIN_PASSWORD", AdminPassword)
	mustSet("OSS_ENDPOINT", OSS.Endpoint)
	mustSet("OSS_ACCESS_KEY_ID", OSS.AccessKeyID)
	mustSet("OSS_ACCESS_KEY_SECRET", OSS.AccessKeySecret)
	mustSet("OSS_BUCKET", OSS.Bucket)

	if Resend.APIKey == "" {
		log.Println("⚠️ RESEND_API_KEY not set; confirmation e-mails disabled")
	}
	if YouTubeAPIKey == "" {
		log.Println("⚠️ YOUTUBE_API_KEY not set; music search returns tracks without video ids")
	}
	if AIGatewayKey == "" {
		log.Println("⚠️ AI_GATEWAY_KEY not set; message generation disabled")
	}
}

func mustSet(key, value string) {
	if value == "" {
		log.Fatalf("❌ %s is not configured", key)
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
