package config

import (
	"errors"
	"fmt"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"io/fs"
	"time"
)

type Config struct {
	AppPort   int    `env:"APP_PORT" envDefault:"3333"`
	AppURL    string `env:"APP_URL" envDefault:"http://localhost:3333"`
	AppSecret string `env:"APP_SECRET,required"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	// Timezone used when rendering dates for notifications and e-mails.
	DisplayTimezone string `env:"DISPLAY_TIMEZONE" envDefault:"UTC"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"./database.db"`

	UploadDir string `env:"UPLOAD_DIR" envDefault:"./tmp/uploads"`

	QueueDriver string `env:"QUEUE_DRIVER" envDefault:"memory"`
	QueueSize   int    `env:"QUEUE_SIZE" envDefault:"256"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://127.0.0.1:6379/0"`

	Mail MailConfig

	RateLimitRPS float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// MailConfig mirrors the transport options of the mail job.
type MailConfig struct {
	Driver    string `env:"MAIL_DRIVER" envDefault:"smtp"`
	Host      string `env:"MAIL_HOST"`
	Port      int    `env:"MAIL_PORT" envDefault:"2525"`
	User      string `env:"MAIL_USER"`
	Pass      string `env:"MAIL_PASS"`
	Secure    bool   `env:"MAIL_SECURE" envDefault:"false"`
	From      string `env:"MAIL_FROM" envDefault:"Equipe Gobarber <noreplay@gmail.com>"`
	AWSRegion string `env:"AWS_REGION" envDefault:"us-east-1"`
}

// Load reads an optional .env file and then parses the environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.QueueDriver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported QUEUE_DRIVER %q", c.QueueDriver)
	}

	switch c.Mail.Driver {
	case "smtp", "ses", "log":
	default:
		return fmt.Errorf("unsupported MAIL_DRIVER %q", c.Mail.Driver)
	}

	if c.Mail.Driver == "smtp" && c.Mail.Host == "" {
		return errors.New("MAIL_HOST is required when MAIL_DRIVER is smtp")
	}

	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		return fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the display timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
