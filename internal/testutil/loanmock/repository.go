package loanmock

import (
	"context"
	"errors"

	domain "loan-pipeline/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)
var _ domain.HistoryRepository = (*History)(nil)

var errUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset functions return errUnimplemented (Create and CompareAndSwap succeed).
type Repo struct {
	CreateFn         func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn    func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListFn           func(ctx context.Context, f domain.ListFilter) ([]domain.Loan, error)
	SnapshotFn       func(ctx context.Context) ([]domain.Loan, error)
	CompareAndSwapFn func(ctx context.Context, l *domain.Loan, expectedVersion int64) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, errUnimplemented
}

func (m *Repo) Snapshot(ctx context.Context) ([]domain.Loan, error) {
	if m.SnapshotFn != nil {
		return m.SnapshotFn(ctx)
	}
	return nil, errUnimplemented
}

func (m *Repo) CompareAndSwap(ctx context.Context, l *domain.Loan, expectedVersion int64) error {
	if m.CompareAndSwapFn != nil {
		return m.CompareAndSwapFn(ctx, l, expectedVersion)
	}
	return nil
}

// History is a function-backed mock that satisfies domain.HistoryRepository.
type History struct {
	AppendFn func(ctx context.Context, e *domain.HistoryEntry) error
}

func (m *History) Append(ctx context.Context, e *domain.HistoryEntry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	return nil
}
