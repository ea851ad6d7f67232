package approvalmock

import (
	"context"
	"errors"

	domain "loan-pipeline/internal/domain/approval"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("approvalmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn          func(ctx context.Context, a *domain.Approval) error
	ListByLoanFn      func(ctx context.Context, loanRefID uint64) ([]domain.Approval, error)
	GetByApprovalIDFn func(ctx context.Context, approvalID string) (*domain.Approval, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Approval) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) ListByLoan(ctx context.Context, loanRefID uint64) ([]domain.Approval, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanRefID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByApprovalID(ctx context.Context, approvalID string) (*domain.Approval, error) {
	if m.GetByApprovalIDFn != nil {
		return m.GetByApprovalIDFn(ctx, approvalID)
	}
	return nil, errUnimplemented
}
