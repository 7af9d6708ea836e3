package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type App struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	BaseURL  string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	// DB
	DBDSN string `envconfig:"DB_DSN" required:"true"`

	// Money
	SettlementCurrency string        `envconfig:"SETTLEMENT_CURRENCY" default:"USD"`
	RatesURL           string        `envconfig:"RATES_URL"`
	RatesStatic        string        `envconfig:"RATES_STATIC"` // JSON map, fallback when no RATES_URL
	RatesRefresh       time.Duration `envconfig:"RATES_REFRESH" default:"15m"`

	// Infra (all optional; features degrade without them)
	RedisAddr string `envconfig:"REDIS_ADDR"`
	RabbitURL string `envconfig:"RABBIT_URL"`

	// Notifications
	EmailFrom     string        `envconfig:"EMAIL_FROM" default:"no-reply@tembeya.com"`
	EmailFromName string        `envconfig:"EMAIL_FROM_NAME" default:"Tembeya"`
	NotifyTimeout time.Duration `envconfig:"NOTIFY_SEND_TIMEOUT" default:"5s"`

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host          string `envconfig:"SMTP_HOST" default:"localhost"`
	Port          string `envconfig:"SMTP_PORT" default:"1025"`
	User          string `envconfig:"SMTP_USER"`
	Pass          string `envconfig:"SMTP_PASS"`
	TLSMode       string `envconfig:"SMTP_TLS_MODE"` // "", "tls", "starttls"
	SkipVerifyTLS bool   `envconfig:"SMTP_SKIP_VERIFY_TLS"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
