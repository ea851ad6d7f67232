// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/infrastructure/db"
	"loan-pipeline/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Open returns a fresh, migrated database private to the calling test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite("file:"+id.NewID32()+"?mode=memory&cache=shared", db.Options{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// LoanOption adjusts a seeded loan before insert.
type LoanOption func(*loan.Loan)

func WithStatus(s loan.Status) LoanOption { return func(l *loan.Loan) { l.Status = s } }
func WithGates(g loan.Gates) LoanOption   { return func(l *loan.Loan) { l.Gates = g } }
func WithAmount(a string) LoanOption {
	return func(l *loan.Loan) { l.LoanAmount = decimal.RequireFromString(a) }
}
func WithCreatedAt(ts time.Time) LoanOption { return func(l *loan.Loan) { l.CreatedAt = ts } }
func WithFundedAt(ts time.Time) LoanOption {
	return func(l *loan.Loan) { l.Status = loan.StatusFunded; l.FundedAt = &ts }
}

// SeedLoan inserts a loan (new_request, version 0, amount 100000 unless overridden).
func SeedLoan(t *testing.T, gdb *gorm.DB, opts ...LoanOption) *loan.Loan {
	t.Helper()
	num, err := id.NewLoanNumber()
	if err != nil {
		t.Fatalf("loan number: %v", err)
	}
	l := &loan.Loan{
		LoanID:          id.NewID32(),
		LoanNumber:      num,
		BorrowerID:      "user_" + id.NewID32()[:8],
		LoanAmount:      decimal.NewFromInt(100_000),
		PropertyType:    "single_family",
		TransactionType: "purchase",
		Status:          loan.StatusNewRequest,
		StatusUpdatedAt: time.Now().UTC(),
	}
	for _, o := range opts {
		o(l)
	}
	if err := gdb.WithContext(context.Background()).Create(l).Error; err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return l
}
