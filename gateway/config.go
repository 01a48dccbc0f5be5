package gateway

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cardflow/paygate/gateway/bank"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

// Config is a configuration for the gateway application
type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`

	// ExpiryTZ is an IANA timezone name in which "the current month" is
	// evaluated for card expiry (e.g., "Australia/Sydney").
	ExpiryTZ string `yaml:"expiry_tz"`

	Bank      BankConfig      `yaml:"bank"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type BankConfig struct {
	// Protocol is "http" or "iso8583".
	Protocol       string `yaml:"protocol"`
	BaseURL        string `yaml:"base_url"`
	PaymentsPath   string `yaml:"payments_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ISO8583Addr    string `yaml:"iso8583_addr"`
}

// RateLimitConfig bounds inbound /payments traffic. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr: "localhost:9090",
		LogLevel: "info",
		ExpiryTZ: "UTC",
		Bank: BankConfig{
			Protocol:       bank.ProtocolHTTP,
			BaseURL:        "http://localhost:8080",
			PaymentsPath:   "payments",
			TimeoutSeconds: 10,
			ISO8583Addr:    "localhost:8583",
		},
	}
}

// LoadConfig builds the effective configuration: defaults, then the YAML file
// at path (if any), then .env, then the process environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("PAYGATE_HTTP_ADDR", &c.HTTPAddr)
	str("PAYGATE_LOG_LEVEL", &c.LogLevel)
	str("PAYGATE_EXPIRY_TZ", &c.ExpiryTZ)
	str("PAYGATE_BANK_PROTOCOL", &c.Bank.Protocol)
	str("PAYGATE_BANK_BASE_URL", &c.Bank.BaseURL)
	str("PAYGATE_BANK_PAYMENTS_PATH", &c.Bank.PaymentsPath)
	str("PAYGATE_BANK_ISO8583_ADDR", &c.Bank.ISO8583Addr)

	if err := integer("PAYGATE_BANK_TIMEOUT_SECONDS", &c.Bank.TimeoutSeconds); err != nil {
		return err
	}
	if err := integer("PAYGATE_RATE_LIMIT_BURST", &c.RateLimit.Burst); err != nil {
		return err
	}
	if v, ok := lookup("PAYGATE_RATE_LIMIT_RPS"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing PAYGATE_RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimit.RPS = rps
	}

	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("http_addr is required")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Bank.TimeoutSeconds <= 0 {
		return fmt.Errorf("bank.timeout_seconds must be positive, got %d", c.Bank.TimeoutSeconds)
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}

	switch c.Bank.Protocol {
	case bank.ProtocolHTTP:
		if c.Bank.BaseURL == "" {
			return fmt.Errorf("bank.base_url is required for the http protocol")
		}
	case bank.ProtocolISO8583:
		if c.Bank.ISO8583Addr == "" {
			return fmt.Errorf("bank.iso8583_addr is required for the iso8583 protocol")
		}
	default:
		return fmt.Errorf("unsupported bank.protocol %q", c.Bank.Protocol)
	}

	return nil
}

// Location resolves ExpiryTZ. An empty name means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.ExpiryTZ == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.ExpiryTZ)
	if err != nil {
		return nil, fmt.Errorf("expiry_tz %q: %w", c.ExpiryTZ, err)
	}
	return loc, nil
}

func (c *Config) BankTimeout() time.Duration {
	return time.Duration(c.Bank.TimeoutSeconds) * time.Second
}

func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
}
