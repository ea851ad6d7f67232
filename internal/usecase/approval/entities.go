package approval

import (
	"time"

	"loan-pipeline/internal/domain/loan"
)

type GrantInput struct {
	LoanID string
	Gate   loan.GateFlag // approval_granted or conditions_cleared
	Actor  string
	Note   string
}

type ApprovalDTO struct {
	ApprovalID  string        `json:"approval_id"`
	LoanID      string        `json:"loan_id"`
	Gate        loan.GateFlag `json:"gate"`
	Actor       string        `json:"actor"`
	Note        string        `json:"note,omitempty"`
	GrantedAt   time.Time     `json:"granted_at"`
	LoanVersion int64         `json:"loan_version,omitempty"`
}
