package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	RateLimit      string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type ReadingsConfig struct {
	BulkMax int
}

type ReportsConfig struct {
	DefaultMargin  decimal.Decimal
	BalanceEpsilon decimal.Decimal
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Readings    ReadingsConfig
	Reports     ReportsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("PORT"),
			AllowedOrigins: parseList(v.GetString("FRONTEND_URL")),
			RateLimit:      strings.TrimSpace(v.GetString("RATE_LIMIT")),
		},
		DB: DBConfig{
			DSN:          v.GetString("DATABASE_URL"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Readings: ReadingsConfig{
			BulkMax: v.GetInt("READINGS_BULK_MAX"),
		},
	}

	if raw := strings.TrimSpace(v.GetString("DB_CONN_MAX_LIFETIME")); raw != "" {
		lifetime, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
		}
		cfg.DB.ConnMaxLifetime = lifetime
	}

	margin, err := parseDecimal(v.GetString("REPORT_DEFAULT_MARGIN"), decimal.RequireFromString("0.10"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_DEFAULT_MARGIN: %w", err)
	}
	epsilon, err := parseDecimal(v.GetString("REPORT_BALANCE_EPSILON"), decimal.RequireFromString("0.01"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_BALANCE_EPSILON: %w", err)
	}
	cfg.Reports = ReportsConfig{DefaultMargin: margin, BalanceEpsilon: epsilon}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.HTTP.RateLimit == "" {
		cfg.HTTP.RateLimit = "300-M"
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 20
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 5
	}
	if cfg.DB.ConnMaxLifetime == 0 {
		cfg.DB.ConnMaxLifetime = time.Hour
	}
	if cfg.Readings.BulkMax == 0 {
		cfg.Readings.BulkMax = 50
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Readings.BulkMax < 0 {
		return fmt.Errorf("READINGS_BULK_MAX must be positive")
	}
	if cfg.Reports.DefaultMargin.IsNegative() || cfg.Reports.DefaultMargin.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("REPORT_DEFAULT_MARGIN must be in [0, 1)")
	}
	if !cfg.Reports.BalanceEpsilon.IsPositive() {
		return fmt.Errorf("REPORT_BALANCE_EPSILON must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func parseDecimal(raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return decimal.NewFromString(raw)
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
