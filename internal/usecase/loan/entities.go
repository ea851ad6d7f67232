package loan

import (
	"time"

	domain "loan-pipeline/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	BorrowerID      string          `json:"borrower_id"`
	LoanAmount      decimal.Decimal `json:"loan_amount"`
	PropertyType    string          `json:"property_type"`
	TransactionType string          `json:"transaction_type"`
}

type LoanDTO struct {
	LoanID          string                `json:"loan_id"`
	LoanNumber      string                `json:"loan_number"`
	BorrowerID      string                `json:"borrower_id"`
	LoanAmount      decimal.Decimal       `json:"loan_amount"`
	PropertyType    string                `json:"property_type"`
	TransactionType string                `json:"transaction_type"`
	Status          domain.Status         `json:"status"`
	StatusLabel     string                `json:"status_label"`
	Terminal        bool                  `json:"terminal"`
	Progress        int                   `json:"progress"`
	NextStatuses    []domain.Status       `json:"next_statuses"`
	Gates           domain.Gates          `json:"gates"`
	Version         int64                 `json:"version"`
	StatusUpdatedAt time.Time             `json:"status_updated_at"`
	FundedAt        *time.Time            `json:"funded_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	History         []domain.HistoryEntry `json:"status_history,omitempty"`
}

func ToDTO(l *domain.Loan) *LoanDTO {
	next := domain.NextStatuses(l.Status)
	if next == nil {
		next = []domain.Status{}
	}
	return &LoanDTO{
		LoanID:          l.LoanID,
		LoanNumber:      l.LoanNumber,
		BorrowerID:      l.BorrowerID,
		LoanAmount:      l.LoanAmount,
		PropertyType:    l.PropertyType,
		TransactionType: l.TransactionType,
		Status:          l.Status,
		StatusLabel:     l.Status.Label(),
		Terminal:        l.Status.Terminal(),
		Progress:        l.Status.ProgressPercent(),
		NextStatuses:    next,
		Gates:           l.Gates,
		Version:         l.Version,
		StatusUpdatedAt: l.StatusUpdatedAt,
		FundedAt:        l.FundedAt,
		CreatedAt:       l.CreatedAt,
		History:         l.History,
	}
}
