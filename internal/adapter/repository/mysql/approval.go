package mysql

import (
	"context"
	"errors"

	approvalDomain "loan-pipeline/internal/domain/approval"

	"gorm.io/gorm"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDomain.Approval) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApprovalRepository) ListByLoan(ctx context.Context, loanRefID uint64) ([]approvalDomain.Approval, error) {
	var out []approvalDomain.Approval
	err := r.db.WithContext(ctx).
		Where("loan_ref_id = ?", loanRefID).
		Order("granted_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *ApprovalRepository) GetByApprovalID(ctx context.Context, approvalID string) (*approvalDomain.Approval, error) {
	var out approvalDomain.Approval
	res := r.db.WithContext(ctx).Where("approval_id = ?", approvalID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, approvalDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
