package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"loan-pipeline/pkg/retry"

	"github.com/BurntSushi/toml"
)

type Config struct {
	AppPort string `toml:"app_port"`

	DBDriver   string `toml:"db_driver"` // mysql | sqlite
	SQLitePath string `toml:"sqlite_path"`
	DBDebug    bool   `toml:"db_debug"`

	MySQLHost string `toml:"mysql_host"`
	MySQLPort string `toml:"mysql_port"`
	MySQLDB   string `toml:"mysql_db"`
	MySQLUser string `toml:"mysql_user"`
	MySQLPass string `toml:"mysql_pass"`

	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`

	IdempTTLSecs int `toml:"idempotency_ttl_seconds"`

	NATSURL           string `toml:"nats_url"`
	TransitionSubject string `toml:"nats_transition_subject"`
	GateSubject       string `toml:"nats_gate_subject"`
	PaymentSubject    string `toml:"nats_payment_subject"`

	// ReportTimezone fixes calendar bucket boundaries for stats.
	ReportTimezone string `toml:"report_timezone"`

	CASMaxAttempts int `toml:"cas_max_attempts"`
	CASBaseDelayMS int `toml:"cas_base_delay_ms"`

	MetricsEnabled bool `toml:"metrics_enabled"`
}

func defaults() *Config {
	return &Config{
		AppPort:           "8080",
		DBDriver:          "mysql",
		SQLitePath:        "pipeline.db",
		MySQLHost:         "mysql",
		MySQLPort:         "3306",
		MySQLDB:           "pipeline",
		MySQLUser:         "pipeline",
		MySQLPass:         "pipeline",
		RedisAddr:         "redis:6379",
		IdempTTLSecs:      300,
		TransitionSubject: "pipeline.loan.transitioned",
		GateSubject:       "pipeline.loan.gate_updated",
		PaymentSubject:    "pipeline.payment.confirmed",
		ReportTimezone:    "UTC",
		CASMaxAttempts:    5,
		CASBaseDelayMS:    10,
		MetricsEnabled:    true,
	}
}

// Load builds the config from defaults and environment variables.
func Load() *Config {
	c := defaults()
	c.applyEnv()
	return c
}

// LoadFile reads a TOML file over the defaults; environment variables still win.
func LoadFile(path string) (*Config, error) {
	c := defaults()
	if path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	c.applyEnv()
	return c, nil
}

func (c *Config) applyEnv() {
	envString(&c.AppPort, "APP_PORT")
	envString(&c.DBDriver, "DB_DRIVER")
	envString(&c.SQLitePath, "SQLITE_PATH")
	envBool(&c.DBDebug, "DB_DEBUG")
	envString(&c.MySQLHost, "MYSQL_HOST")
	envString(&c.MySQLPort, "MYSQL_PORT")
	envString(&c.MySQLDB, "MYSQL_DB")
	envString(&c.MySQLUser, "MYSQL_USER")
	envString(&c.MySQLPass, "MYSQL_PASS")
	envString(&c.RedisAddr, "REDIS_ADDR")
	envInt(&c.RedisDB, "REDIS_DB")
	envInt(&c.IdempTTLSecs, "IDEMPOTENCY_TTL_SECONDS")
	envString(&c.NATSURL, "NATS_URL")
	envString(&c.TransitionSubject, "NATS_TRANSITION_SUBJECT")
	envString(&c.GateSubject, "NATS_GATE_SUBJECT")
	envString(&c.PaymentSubject, "NATS_PAYMENT_SUBJECT")
	envString(&c.ReportTimezone, "REPORT_TIMEZONE")
	envInt(&c.CASMaxAttempts, "CAS_MAX_ATTEMPTS")
	envInt(&c.CASBaseDelayMS, "CAS_BASE_DELAY_MS")
	envBool(&c.MetricsEnabled, "METRICS_ENABLED")
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
}

func envString(dst *string, k string) {
	if v := os.Getenv(k); v != "" {
		*dst = v
	}
}

func envInt(dst *int, k string) {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(dst *bool, k string) {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.CASMaxAttempts < 1 {
		return fmt.Errorf("CAS_MAX_ATTEMPTS must be >= 1, got %d", c.CASMaxAttempts)
	}
	if c.NATSURL != "" && (c.TransitionSubject == "" || c.GateSubject == "" || c.PaymentSubject == "") {
		return errors.New("NATS subjects must be set when NATS_URL is configured")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps stored timestamps zone-free
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}
	return loc, nil
}

func (c *Config) IdempTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.Attempts = c.CASMaxAttempts
	p.BaseDelay = time.Duration(c.CASBaseDelayMS) * time.Millisecond
	return p
}
