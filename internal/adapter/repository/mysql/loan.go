package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	loanDomain "loan-pipeline/internal/domain/loan"

	"gorm.io/gorm"
)

// likeEscaper makes search terms match literally. MySQL and SQLite both accept
// a single-character ESCAPE clause, so '!' is used instead of a backslash.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Omit("History").Create(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("loan_id = ?", loanID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", loanDomain.ErrNotFound, loanID)
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *LoanRepository) List(ctx context.Context, f loanDomain.ListFilter) ([]loanDomain.Loan, error) {
	q := r.db.WithContext(ctx).Model(&loanDomain.Loan{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + likeEscaper.Replace(s) + "%"
		q = q.Where("LOWER(loan_number) LIKE ? ESCAPE '!' OR LOWER(borrower_id) LIKE ? ESCAPE '!' OR "+
			"LOWER(property_type) LIKE ? ESCAPE '!' OR LOWER(transaction_type) LIKE ? ESCAPE '!'",
			like, like, like, like)
	}
	var out []loanDomain.Loan
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) Snapshot(ctx context.Context) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CompareAndSwap writes the lifecycle columns keyed on (id, expectedVersion).
// Zero rows affected means another writer already moved the version.
func (r *LoanRepository) CompareAndSwap(ctx context.Context, l *loanDomain.Loan, expectedVersion int64) error {
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("id = ? AND version = ?", l.ID, expectedVersion).
		Updates(map[string]any{
			"status":               l.Status,
			"approval_granted":     l.Gates.ApprovalGranted,
			"payment_captured":     l.Gates.PaymentCaptured,
			"closing_fee_captured": l.Gates.ClosingFeeCaptured,
			"conditions_cleared":   l.Gates.ConditionsCleared,
			"version":              l.Version,
			"status_updated_at":    l.StatusUpdatedAt,
			"funded_at":            l.FundedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: loan %s at version %d", loanDomain.ErrVersionConflict, l.LoanID, expectedVersion)
	}
	return nil
}

type HistoryRepository struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func (r *HistoryRepository) Append(ctx context.Context, e *loanDomain.HistoryEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}
