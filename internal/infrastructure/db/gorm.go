package db

import (
	"fmt"
	"log/slog"
	"time"

	"loan-pipeline/internal/domain/approval"
	"loan-pipeline/internal/domain/loan"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	Debug bool
}

func OpenMySQL(dsn string, opt Options) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), opt)
}

// OpenSQLite opens a file-backed (or memory, for ":memory:") database for local runs.
func OpenSQLite(path string, opt Options) (*gorm.DB, error) {
	gdb, err := OpenGormWithDialector(sqlite.Open(path), opt)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY under concurrent CAS.
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)
	return gdb, nil
}

func OpenGormWithDialector(dial gorm.Dialector, opts ...Options) (*gorm.DB, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	level := logger.Warn
	if opt.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:               logger.Default.LogMode(level),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	slog.Info("gorm: connected", "dialect", dial.Name())
	return db, nil
}

// Migrate creates or updates the pipeline tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&loan.Loan{}, &loan.HistoryEntry{}, &approval.Approval{}); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}
