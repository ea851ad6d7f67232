package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c := Load()
	if c.AppPort != "8080" || c.DBDriver != "mysql" || c.ReportTimezone != "UTC" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if c.IdempTTL() != 300*time.Second {
		t.Fatalf("ttl=%v", c.IdempTTL())
	}
	if p := c.RetryPolicy(); p.Attempts != 5 || p.BaseDelay != 10*time.Millisecond {
		t.Fatalf("policy=%+v", p)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CAS_MAX_ATTEMPTS", "7")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("REPORT_TIMEZONE", "America/New_York")

	c := Load()
	if c.AppPort != "9090" || c.DBDriver != "sqlite" || c.RedisDB != 3 || c.CASMaxAttempts != 7 || c.MetricsEnabled {
		t.Fatalf("env not applied: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	loc, err := c.Location()
	if err != nil || loc.String() != "America/New_York" {
		t.Fatalf("loc=%v err=%v", loc, err)
	}
}

func TestLoadFile_TOMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.toml")
	body := `
app_port = "7070"
db_driver = "sqlite"
sqlite_path = "dev.db"
nats_url = "nats://localhost:4222"
cas_max_attempts = 3
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_PORT", "6060")

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.AppPort != "6060" {
		t.Fatalf("env should win over file, got %s", c.AppPort)
	}
	if c.DBDriver != "sqlite" || c.SQLitePath != "dev.db" || c.CASMaxAttempts != 3 {
		t.Fatalf("file not applied: %+v", c)
	}
	if c.PaymentSubject != "pipeline.payment.confirmed" {
		t.Fatalf("defaults lost: %q", c.PaymentSubject)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad driver", func(c *Config) { c.DBDriver = "oracle" }, "DB_DRIVER"},
		{"bad port", func(c *Config) { c.MySQLPort = "notaport" }, "MYSQL_PORT"},
		{"missing host", func(c *Config) { c.MySQLHost = "" }, "MySQL"},
		{"bad tz", func(c *Config) { c.ReportTimezone = "Mars/Olympus" }, "REPORT_TIMEZONE"},
		{"no attempts", func(c *Config) { c.CASMaxAttempts = 0 }, "CAS_MAX_ATTEMPTS"},
		{"nats without subject", func(c *Config) { c.NATSURL = "nats://x"; c.PaymentSubject = "" }, "NATS"},
		{"no port", func(c *Config) { c.AppPort = "" }, "APP_PORT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := defaults()
			tc.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v want substring %q", err, tc.want)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := defaults()
	if got := c.MySQLDSN(); !strings.HasPrefix(got, "pipeline:pipeline@tcp(mysql:3306)/pipeline?") || !strings.Contains(got, "parseTime=true") {
		t.Fatalf("dsn=%s", got)
	}
}
