package mysql

import (
	"context"

	"loan-pipeline/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Bind(tx))
	})
}

// Bind returns repositories sharing db, which may be a transaction.
func Bind(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:     &LoanRepository{db: db},
		History:   &HistoryRepository{db: db},
		Approvals: &ApprovalRepository{db: db},
	}
}
