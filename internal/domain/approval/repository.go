package approval

import "context"

type Repository interface {
	// Create a new approval (DB uniqueness ensures at most one per loan and gate)
	Create(ctx context.Context, a *Approval) error

	// List approvals recorded for a loan, oldest first
	ListByLoan(ctx context.Context, loanRefID uint64) ([]Approval, error)

	// Get by public approval_id
	GetByApprovalID(ctx context.Context, approvalID string) (*Approval, error)
}
