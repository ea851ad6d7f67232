package uowmock

import (
	"context"
	"errors"

	"loan-pipeline/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
type UoW struct {
	WithinTxFn func(ctx context.Context, fn func(r uow.Repos) error) error
}

// Passthrough runs fn directly against repos, without a transaction.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
		return fn(repos)
	}}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
