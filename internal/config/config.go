package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuracion del servicio. Se carga una sola vez al
// arrancar y no se modifica despues.
type Config struct {
	HTTPHost        string        `env:"HTTP_HOST" envDefault:""`
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	DBMigrate       bool          `env:"DB_MIGRATE" envDefault:"true"`
	DomainURL       string        `env:"DOMAIN_URL,required"`
	SecretKey       string        `env:"SECRET_KEY,required,notEmpty"`
	SessionKey      string        `env:"SESSION_KEY,required,notEmpty"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	CookieDomain    string        `env:"COOKIE_DOMAIN"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
	ConfirmationTTL time.Duration `env:"CONFIRMATION_TTL" envDefault:"24h"`
	WorkerPoolSize  int           `env:"WORKER_POOL_SIZE" envDefault:"16"`
	SMTPHost        string        `env:"SMTP_HOST"`
	SMTPPort        int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser        string        `env:"SMTP_USER"`
	SMTPPass        string        `env:"SMTP_PASS"`
	SMTPFrom        string        `env:"SMTP_FROM"`
	SMTPFromName    string        `env:"SMTP_FROM_NAME"`
	SMTPUseTLS      bool          `env:"SMTP_USE_TLS" envDefault:"false"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuracion desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr devuelve host:puerto para el servidor HTTP.
func (c *Config) Addr() string {
	return c.HTTPHost + ":" + c.HTTPPort
}
