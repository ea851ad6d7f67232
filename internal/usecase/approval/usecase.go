package approval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-pipeline/internal/adapter/events"
	domainApproval "loan-pipeline/internal/domain/approval"
	domainLoan "loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/uow"
	"loan-pipeline/internal/infrastructure/metrics"
	"loan-pipeline/internal/usecase/gate"
	"loan-pipeline/pkg/id"
	"loan-pipeline/pkg/retry"
)

type Usecase struct {
	loanRepo     domainLoan.Repository
	approvalRepo domainApproval.Repository
	uow          uow.UnitOfWork
	pub          events.Publisher
	topic        string
	metrics      *metrics.Metrics
	policy       retry.Policy
	logger       *slog.Logger
	now          func() time.Time
}

type Option func(*Usecase)

func WithGateTopic(topic string) Option     { return func(u *Usecase) { u.topic = topic } }
func WithMetrics(m *metrics.Metrics) Option { return func(u *Usecase) { u.metrics = m } }
func WithRetryPolicy(p retry.Policy) Option { return func(u *Usecase) { u.policy = p } }
func WithLogger(l *slog.Logger) Option      { return func(u *Usecase) { u.logger = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

// NewUsecase: pass both repos and a UoW for tx flows.
func NewUsecase(loans domainLoan.Repository, approvals domainApproval.Repository, tx uow.UnitOfWork, pub events.Publisher, opts ...Option) *Usecase {
	u := &Usecase{
		loanRepo:     loans,
		approvalRepo: approvals,
		uow:          tx,
		pub:          pub,
		topic:        events.TopicGateUpdated,
		policy:       retry.DefaultPolicy(),
		logger:       slog.Default(),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(u)
	}
	if u.pub == nil {
		u.pub = &events.NoopPublisher{}
	}
	return u
}

// Grant raises an operator gate on a loan and records who granted it.
// Granting a gate that is already set fails with ErrAlreadyGranted.
func (u *Usecase) Grant(ctx context.Context, in GrantInput) (*ApprovalDTO, error) {
	if u.uow == nil {
		return nil, fmt.Errorf("%w: no unit of work configured", domainLoan.ErrUnavailable)
	}
	if !in.Gate.OperatorGate() {
		return nil, fmt.Errorf("%w: %q is not an operator gate", domainLoan.ErrInvalidInput, in.Gate)
	}
	if in.LoanID == "" || in.Actor == "" {
		return nil, fmt.Errorf("%w: loan id and actor are required", domainLoan.ErrInvalidInput)
	}

	var a *domainApproval.Approval
	res, err := gate.Raise(ctx, u.uow, u.policy, in.LoanID, in.Gate, func(r uow.Repos, l *domainLoan.Loan) error {
		a = &domainApproval.Approval{
			ApprovalID: id.NewID32(),
			LoanRefID:  l.ID, // numeric FK
			Gate:       in.Gate,
			Actor:      in.Actor,
			Note:       in.Note,
			GrantedAt:  u.now(),
		}
		return r.Approvals.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	if !res.Raised {
		return nil, fmt.Errorf("%w: %s on loan %s", domainLoan.ErrAlreadyGranted, in.Gate, in.LoanID)
	}

	u.metrics.ObserveGateUpdate(in.Gate, "operator")
	ev := events.GateUpdated{
		EventID: events.NewEventID(),
		LoanID:  in.LoanID,
		Gate:    in.Gate,
		Source:  "operator",
		Actor:   in.Actor,
		Version: res.Loan.Version,
		At:      a.GrantedAt,
	}
	if err := u.pub.Publish(ctx, u.topic, ev); err != nil {
		u.logger.Warn("approval: publish failed", "loan_id", in.LoanID, "gate", in.Gate, "err", err)
	}

	dto := toDTO(in.LoanID, a)
	dto.LoanVersion = res.Loan.Version
	return dto, nil
}

// ListByLoan returns the operator grants recorded for a loan, oldest first.
func (u *Usecase) ListByLoan(ctx context.Context, loanID string) ([]ApprovalDTO, error) {
	l, err := u.loanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	rows, err := u.approvalRepo.ListByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	out := make([]ApprovalDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(l.LoanID, &rows[i]))
	}
	return out, nil
}

func toDTO(loanID string, a *domainApproval.Approval) *ApprovalDTO {
	return &ApprovalDTO{
		ApprovalID: a.ApprovalID,
		LoanID:     loanID, // public id
		Gate:       a.Gate,
		Actor:      a.Actor,
		Note:       a.Note,
		GrantedAt:  a.GrantedAt,
	}
}
