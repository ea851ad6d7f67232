package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Loan struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string          `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	LoanNumber      string          `gorm:"size:16;uniqueIndex:ux_loans_loan_number" json:"loan_number"`
	BorrowerID      string          `gorm:"size:64;index:idx_loans_borrower" json:"borrower_id"`
	LoanAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"loan_amount"`
	PropertyType    string          `gorm:"size:64" json:"property_type"`
	TransactionType string          `gorm:"size:64" json:"transaction_type"`
	Status          Status          `gorm:"size:32;not null;index:idx_loans_status" json:"status"`
	Gates           Gates           `gorm:"embedded" json:"gates"`
	Version         int64           `gorm:"not null;default:0" json:"version"`
	StatusUpdatedAt time.Time       `json:"status_updated_at"`
	FundedAt        *time.Time      `gorm:"index:idx_loans_funded_at" json:"funded_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	History         []HistoryEntry  `gorm:"foreignKey:LoanRefID" json:"status_history"`
}

func (Loan) TableName() string { return "loans" }

// HistoryEntry is one audit tuple. Seq equals the loan version produced by the transition.
type HistoryEntry struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	LoanRefID  uint64    `gorm:"column:loan_ref_id;not null;uniqueIndex:ux_history_loan_seq" json:"-"`
	Seq        int64     `gorm:"not null;uniqueIndex:ux_history_loan_seq" json:"seq"`
	FromStatus Status    `gorm:"size:32;not null" json:"from_status"`
	ToStatus   Status    `gorm:"size:32;not null" json:"to_status"`
	Actor      string    `gorm:"size:64;not null" json:"actor"`
	At         time.Time `gorm:"not null" json:"at"`
}

func (HistoryEntry) TableName() string { return "loan_status_history" }

// ListFilter narrows listLoans. Zero values mean "any".
type ListFilter struct {
	Status Status
	Search string
}
