// Package gate raises loan gate flags under the same compare-and-swap
// discipline the transition service uses.
package gate

import (
	"context"
	"errors"
	"fmt"

	"loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/uow"
	"loan-pipeline/pkg/retry"
)

// WithinFn runs inside the raising transaction after the loan row was swapped.
type WithinFn func(r uow.Repos, l *loan.Loan) error

type Result struct {
	Loan *loan.Loan
	// Raised is false when the flag was already set and nothing was written.
	Raised bool
}

// Raise sets flag on the loan and bumps its version. Version conflicts are
// retried under p after a fresh read. An already-set flag is reported through
// Result.Raised, never as an error.
func Raise(ctx context.Context, u uow.UnitOfWork, p retry.Policy, loanID string, flag loan.GateFlag, within WithinFn) (Result, error) {
	var res Result
	err := retry.Do(ctx, p, isConflict, func(int) error {
		res = Result{}
		return u.WithinTx(ctx, func(r uow.Repos) error {
			l, err := r.Loans.GetByLoanID(ctx, loanID)
			if err != nil {
				return err
			}
			if l.Gates.IsSet(flag) {
				res.Loan = l
				return nil
			}
			if !l.Gates.Set(flag) {
				return fmt.Errorf("%w: unknown gate %q", loan.ErrInvalidInput, flag)
			}
			expected := l.Version
			l.Version++
			if err := r.Loans.CompareAndSwap(ctx, l, expected); err != nil {
				return err
			}
			if within != nil {
				if err := within(r, l); err != nil {
					return err
				}
			}
			res = Result{Loan: l, Raised: true}
			return nil
		})
	})
	if errors.Is(err, retry.ErrExhausted) {
		return Result{}, fmt.Errorf("%w: raising %s on loan %s: %w", loan.ErrExhausted, flag, loanID, err)
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func isConflict(err error) bool { return errors.Is(err, loan.ErrVersionConflict) }
