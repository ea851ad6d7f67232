package stats

import (
	"time"

	"loan-pipeline/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type StatusBucket struct {
	Status      loan.Status     `json:"status"`
	Label       string          `json:"label"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// PipelineStats is derived from one store snapshot and never cached.
// Sum of ByStatus counts equals TotalLoans; sum of their amounts equals TotalAmount.
type PipelineStats struct {
	TotalLoans    int             `json:"total_loans"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	FundedLoans   int             `json:"funded_loans"`
	FundedAmount  decimal.Decimal `json:"funded_amount"`
	MonthlyVolume decimal.Decimal `json:"monthly_volume"`
	MonthlyFunded decimal.Decimal `json:"monthly_funded"`
	ByStatus      []StatusBucket  `json:"by_status"`
	AsOf          time.Time       `json:"as_of"`
}

// Bucket is one calendar period. Created* use the loan's creation date,
// Funded* use its funding date.
type Bucket struct {
	Period        string          `json:"period"`
	Start         time.Time       `json:"start"`
	CreatedCount  int             `json:"created_count"`
	CreatedVolume decimal.Decimal `json:"created_volume"`
	FundedCount   int             `json:"funded_count"`
	FundedAmount  decimal.Decimal `json:"funded_amount"`
}

type History struct {
	Timezone string   `json:"timezone"`
	Buckets  []Bucket `json:"buckets"`
}

type ClosingSummary struct {
	LoanID          string          `json:"loan_id"`
	LoanNumber      string          `json:"loan_number"`
	BorrowerID      string          `json:"borrower_id"`
	LoanAmount      decimal.Decimal `json:"loan_amount"`
	PropertyType    string          `json:"property_type"`
	TransactionType string          `json:"transaction_type"`
	FundedAt        time.Time       `json:"funded_at"`
}
