package approval

import (
	"errors"
	"time"

	"loan-pipeline/internal/domain/loan"
)

var (
	ErrNotFound = errors.New("approval not found")
)

// Approval records an operator raising a gate flag on a loan.
// At most one row exists per (loan, gate).
type Approval struct {
	ID         uint64        `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ApprovalID string        `gorm:"column:approval_id;type:char(32);not null;uniqueIndex:ux_approvals_approval_id" json:"approval_id"`
	LoanRefID  uint64        `gorm:"column:loan_ref_id;not null;uniqueIndex:ux_approvals_loan_gate" json:"-"`
	Gate       loan.GateFlag `gorm:"column:gate;size:32;not null;uniqueIndex:ux_approvals_loan_gate" json:"gate"`
	Actor      string        `gorm:"column:actor;size:64;not null" json:"actor"`
	Note       string        `gorm:"column:note;type:text" json:"note,omitempty"`
	GrantedAt  time.Time     `gorm:"column:granted_at;not null" json:"granted_at"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Approval) TableName() string { return "approvals" }
