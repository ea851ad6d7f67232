// Package transition is the only path that changes a loan's status.
package transition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-pipeline/internal/adapter/events"
	"loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/uow"
	"loan-pipeline/internal/infrastructure/metrics"
	"loan-pipeline/pkg/retry"
)

type ApplyInput struct {
	LoanID          string
	To              loan.Status
	Actor           string
	ExpectedVersion int64
}

// RequestInput is ApplyInput with an optional expected version. Without one the
// service re-reads the loan and retries version conflicts under its retry policy.
type RequestInput struct {
	LoanID          string
	To              loan.Status
	Actor           string
	ExpectedVersion *int64
}

type Service struct {
	uow     uow.UnitOfWork
	pub     events.Publisher
	topic   string
	metrics *metrics.Metrics
	policy  retry.Policy
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithTopic(topic string) Option         { return func(s *Service) { s.topic = topic } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }
func WithRetryPolicy(p retry.Policy) Option { return func(s *Service) { s.policy = p } }
func WithLogger(l *slog.Logger) Option      { return func(s *Service) { s.logger = l } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(u uow.UnitOfWork, pub events.Publisher, opts ...Option) *Service {
	s := &Service{
		uow:    u,
		pub:    pub,
		topic:  events.TopicLoanTransitioned,
		policy: retry.DefaultPolicy(),
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	if s.pub == nil {
		s.pub = &events.NoopPublisher{}
	}
	return s
}

// Apply moves the loan to in.To if the edge is legal, its gates allow it, and
// nobody else has written the loan since in.ExpectedVersion.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (*loan.Loan, error) {
	l, entry, err := s.apply(ctx, in)
	if err != nil {
		s.metrics.ObserveTransitionFailure(err)
		return nil, err
	}
	s.metrics.ObserveTransition(entry.FromStatus, entry.ToStatus)
	s.emit(ctx, l, entry)
	return l, nil
}

func (s *Service) apply(ctx context.Context, in ApplyInput) (*loan.Loan, *loan.HistoryEntry, error) {
	if in.LoanID == "" || in.Actor == "" {
		return nil, nil, fmt.Errorf("%w: loan id and actor are required", loan.ErrInvalidInput)
	}

	var (
		out   *loan.Loan
		entry *loan.HistoryEntry
	)
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, in.LoanID)
		if errors.Is(err, loan.ErrNotFound) {
			return &loan.TransitionError{Kind: loan.ErrNotFound, LoanID: in.LoanID, To: in.To}
		}
		if err != nil {
			return err
		}

		if l.Version != in.ExpectedVersion {
			return &loan.TransitionError{
				Kind: loan.ErrVersionConflict, LoanID: in.LoanID, From: l.Status, To: in.To,
				Expected: in.ExpectedVersion, Actual: l.Version,
			}
		}
		if !loan.IsLegalEdge(l.Status, in.To) {
			return &loan.TransitionError{
				Kind: loan.ErrIllegalTransition, LoanID: in.LoanID, From: l.Status, To: in.To,
				Reason: fmt.Sprintf("%s cannot move to %s", l.Status.Label(), in.To.Label()),
			}
		}
		if d := loan.Evaluate(l.Gates, in.To); !d.Allowed {
			return &loan.TransitionError{
				Kind: loan.ErrGateBlocked, LoanID: in.LoanID, From: l.Status, To: in.To,
				Gate: d.Gate, Reason: d.Reason,
			}
		}

		now := s.now()
		from := l.Status
		l.Status = in.To
		l.StatusUpdatedAt = now
		l.Version = in.ExpectedVersion + 1
		if in.To == loan.StatusFunded {
			l.FundedAt = &now
		}
		if err := r.Loans.CompareAndSwap(ctx, l, in.ExpectedVersion); err != nil {
			if errors.Is(err, loan.ErrVersionConflict) {
				return &loan.TransitionError{
					Kind: loan.ErrVersionConflict, LoanID: in.LoanID, From: from, To: in.To,
					Expected: in.ExpectedVersion, Actual: -1,
				}
			}
			return err
		}

		e := &loan.HistoryEntry{
			LoanRefID: l.ID, Seq: l.Version, FromStatus: from, ToStatus: in.To, Actor: in.Actor, At: now,
		}
		if err := r.History.Append(ctx, e); err != nil {
			return err
		}
		l.History = append(l.History, *e)
		out, entry = l, e
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, entry, nil
}

// Request applies a transition, retrying version conflicts when the caller did
// not pin a version. A pinned version is applied exactly once.
func (s *Service) Request(ctx context.Context, in RequestInput) (*loan.Loan, error) {
	if in.ExpectedVersion != nil {
		return s.Apply(ctx, ApplyInput{LoanID: in.LoanID, To: in.To, Actor: in.Actor, ExpectedVersion: *in.ExpectedVersion})
	}

	var out *loan.Loan
	err := retry.Do(ctx, s.policy, isConflict, func(int) error {
		v, err := s.currentVersion(ctx, in.LoanID)
		if err != nil {
			return err
		}
		out, err = s.Apply(ctx, ApplyInput{LoanID: in.LoanID, To: in.To, Actor: in.Actor, ExpectedVersion: v})
		return err
	})
	if errors.Is(err, retry.ErrExhausted) {
		te := &loan.TransitionError{
			Kind: loan.ErrExhausted, LoanID: in.LoanID, To: in.To,
			Reason: fmt.Sprintf("transition to %s lost %d concurrent races", in.To, s.policy.Attempts),
		}
		s.metrics.ObserveTransitionFailure(te)
		return nil, te
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) currentVersion(ctx context.Context, loanID string) (int64, error) {
	var v int64
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if errors.Is(err, loan.ErrNotFound) {
			return &loan.TransitionError{Kind: loan.ErrNotFound, LoanID: loanID}
		}
		if err != nil {
			return err
		}
		v = l.Version
		return nil
	})
	return v, err
}

// emit runs after commit. A publish failure is logged, never returned: the
// transition is already durable.
func (s *Service) emit(ctx context.Context, l *loan.Loan, e *loan.HistoryEntry) {
	ev := events.LoanTransitioned{
		EventID:    events.NewEventID(),
		LoanID:     l.LoanID,
		LoanNumber: l.LoanNumber,
		From:       e.FromStatus,
		To:         e.ToStatus,
		Actor:      e.Actor,
		Version:    l.Version,
		At:         e.At,
	}
	if err := s.pub.Publish(ctx, s.topic, ev); err != nil {
		s.logger.Warn("transition: publish failed", "loan_id", l.LoanID, "to", e.ToStatus, "err", err)
	}
}

func isConflict(err error) bool { return errors.Is(err, loan.ErrVersionConflict) }
