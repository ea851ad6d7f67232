package uow

import (
	"context"

	"loan-pipeline/internal/domain/approval"
	"loan-pipeline/internal/domain/loan"
)

// Repos are bound to the transaction opened by WithinTx.
type Repos struct {
	Loans     loan.Repository
	History   loan.HistoryRepository
	Approvals approval.Repository
}

type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
