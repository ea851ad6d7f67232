package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	// GetByLoanID loads the loan with its full history. Returns ErrNotFound when absent.
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	List(ctx context.Context, f ListFilter) ([]Loan, error)
	// Snapshot returns every loan without history, for aggregation.
	Snapshot(ctx context.Context) ([]Loan, error)
	// CompareAndSwap persists l's lifecycle fields only if the stored version still equals
	// expectedVersion. Returns ErrVersionConflict otherwise.
	CompareAndSwap(ctx context.Context, l *Loan, expectedVersion int64) error
}

type HistoryRepository interface {
	Append(ctx context.Context, e *HistoryEntry) error
}
