package loan

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "loan-pipeline/internal/domain/loan"
	"loan-pipeline/pkg/id"
)

type Usecase struct{ repo domain.Repository }

func NewUsecase(r domain.Repository) *Usecase { return &Usecase{repo: r} }

// Create registers a loan at intake: new_request, version 0, no history.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	if strings.TrimSpace(in.BorrowerID) == "" || !in.LoanAmount.IsPositive() {
		return nil, fmt.Errorf("%w: borrower_id and a positive loan_amount are required", domain.ErrInvalidInput)
	}
	num, err := id.NewLoanNumber()
	if err != nil {
		return nil, err
	}

	l := &domain.Loan{
		LoanID:          id.NewID32(),
		LoanNumber:      num,
		BorrowerID:      strings.TrimSpace(in.BorrowerID),
		LoanAmount:      in.LoanAmount.Round(2),
		PropertyType:    in.PropertyType,
		TransactionType: in.TransactionType,
		Status:          domain.StatusNewRequest,
		StatusUpdatedAt: time.Now().UTC(),
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return ToDTO(l), nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return ToDTO(l), nil
}

func (u *Usecase) List(ctx context.Context, f domain.ListFilter) ([]LoanDTO, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, f.Status)
	}
	loans, err := u.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, *ToDTO(&loans[i]))
	}
	return out, nil
}

func (u *Usecase) StatusOptions() []domain.StatusOption { return domain.StatusOptions() }
