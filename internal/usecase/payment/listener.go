// Package payment turns payment-processor confirmations into loan gate flags.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-pipeline/internal/adapter/events"
	"loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/uow"
	"loan-pipeline/internal/infrastructure/metrics"
	"loan-pipeline/internal/usecase/gate"
	"loan-pipeline/pkg/retry"
)

// Outcome labels recorded per confirmation.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

type Listener struct {
	uow     uow.UnitOfWork
	pub     events.Publisher
	topic   string
	metrics *metrics.Metrics
	policy  retry.Policy
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Listener)

func WithGateTopic(topic string) Option     { return func(l *Listener) { l.topic = topic } }
func WithMetrics(m *metrics.Metrics) Option { return func(l *Listener) { l.metrics = m } }
func WithRetryPolicy(p retry.Policy) Option { return func(l *Listener) { l.policy = p } }
func WithLogger(lg *slog.Logger) Option     { return func(l *Listener) { l.logger = lg } }
func WithClock(now func() time.Time) Option { return func(l *Listener) { l.now = now } }

func NewListener(u uow.UnitOfWork, pub events.Publisher, opts ...Option) *Listener {
	l := &Listener{
		uow:    u,
		pub:    pub,
		topic:  events.TopicGateUpdated,
		policy: retry.DefaultPolicy(),
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(l)
	}
	if l.pub == nil {
		l.pub = &events.NoopPublisher{}
	}
	return l
}

// Result reports what a confirmation did to the loan.
type Result struct {
	LoanID  string        `json:"loan_id"`
	Gate    loan.GateFlag `json:"gate"`
	Applied bool          `json:"applied"`
	Version int64         `json:"version"`
}

// OnPaymentConfirmed raises the gate flag matching kind. A confirmation for a
// flag that is already set is a no-op, so redelivered events are harmless.
func (l *Listener) OnPaymentConfirmed(ctx context.Context, loanID string, kind loan.FeeKind) (Result, error) {
	flag, ok := kind.Gate()
	if !ok {
		l.metrics.ObservePayment(kind, OutcomeFailed)
		return Result{}, fmt.Errorf("%w: unknown fee kind %q", loan.ErrInvalidInput, kind)
	}
	if loanID == "" {
		l.metrics.ObservePayment(kind, OutcomeFailed)
		return Result{}, fmt.Errorf("%w: loan id is required", loan.ErrInvalidInput)
	}

	res, err := gate.Raise(ctx, l.uow, l.policy, loanID, flag, nil)
	if err != nil {
		l.metrics.ObservePayment(kind, OutcomeFailed)
		return Result{}, fmt.Errorf("payment %s for loan %s: %w", kind, loanID, err)
	}

	out := Result{LoanID: loanID, Gate: flag, Applied: res.Raised, Version: res.Loan.Version}
	if !res.Raised {
		l.metrics.ObservePayment(kind, OutcomeDuplicate)
		l.logger.Debug("payment: duplicate confirmation", "loan_id", loanID, "fee_kind", kind)
		return out, nil
	}

	l.metrics.ObservePayment(kind, OutcomeApplied)
	l.metrics.ObserveGateUpdate(flag, "payment")
	ev := events.GateUpdated{
		EventID: events.NewEventID(),
		LoanID:  loanID,
		Gate:    flag,
		Source:  "payment",
		Version: res.Loan.Version,
		At:      l.now(),
	}
	if err := l.pub.Publish(ctx, l.topic, ev); err != nil {
		l.logger.Warn("payment: publish failed", "loan_id", loanID, "gate", flag, "err", err)
	}
	return out, nil
}

// StartSubscriber consumes payment confirmations from topic and applies them.
// It blocks until ctx is cancelled or the subscription channel closes.
func (l *Listener) StartSubscriber(ctx context.Context, sub events.Subscriber, topic string) error {
	ch, cancel, err := sub.Subscribe(topic)
	if err != nil {
		return fmt.Errorf("payment: subscribe: %w", err)
	}
	defer cancel()

	l.logger.Info("payment: subscriber started", "topic", topic)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("payment: subscriber stopping")
			return nil
		case raw, ok := <-ch:
			if !ok {
				l.logger.Info("payment: subscription channel closed")
				return nil
			}
			l.handle(ctx, raw)
		}
	}
}

// transient reports whether a failed confirmation may succeed on redelivery.
// Core NATS does not redeliver, so the subscriber retries these itself.
func transient(err error) bool {
	return !errors.Is(err, loan.ErrInvalidInput) && !errors.Is(err, loan.ErrNotFound) &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (l *Listener) handle(ctx context.Context, raw []byte) {
	var ev events.PaymentConfirmed
	if err := json.Unmarshal(raw, &ev); err != nil {
		l.logger.Warn("payment: bad event payload", "err", err)
		return
	}
	kind, ok := loan.ParseFeeKind(ev.FeeKind)
	if !ok {
		l.logger.Warn("payment: unknown fee kind", "event_id", ev.EventID, "fee_kind", ev.FeeKind)
		return
	}
	var res Result
	err := retry.Do(ctx, l.policy, transient, func(attempt int) error {
		var err error
		res, err = l.OnPaymentConfirmed(ctx, ev.LoanID, kind)
		if err != nil && transient(err) {
			l.logger.Warn("payment: confirmation attempt failed", "event_id", ev.EventID, "loan_id", ev.LoanID, "attempt", attempt, "err", err)
		}
		return err
	})
	if err != nil {
		l.logger.Error("payment: confirmation dropped", "event_id", ev.EventID, "loan_id", ev.LoanID, "err", err)
		return
	}
	l.logger.Info("payment: confirmation handled",
		"event_id", ev.EventID, "loan_id", ev.LoanID, "gate", res.Gate, "applied", res.Applied)
}
