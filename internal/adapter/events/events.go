package events

import (
	"context"
	"time"

	"loan-pipeline/internal/domain/loan"

	"github.com/google/uuid"
)

// Default subjects. Deployments may override them through config.
const (
	TopicLoanTransitioned = "pipeline.loan.transitioned"
	TopicGateUpdated      = "pipeline.loan.gate_updated"
	TopicPaymentConfirmed = "pipeline.payment.confirmed"
)

// Publisher sends events to the event bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}

type LoanTransitioned struct {
	EventID    string      `json:"event_id"`
	LoanID     string      `json:"loan_id"`
	LoanNumber string      `json:"loan_number"`
	From       loan.Status `json:"from_status"`
	To         loan.Status `json:"to_status"`
	Actor      string      `json:"actor"`
	Version    int64       `json:"version"`
	At         time.Time   `json:"at"`
}

type GateUpdated struct {
	EventID string        `json:"event_id"`
	LoanID  string        `json:"loan_id"`
	Gate    loan.GateFlag `json:"gate"`
	Source  string        `json:"source"`
	Actor   string        `json:"actor,omitempty"`
	Version int64         `json:"version"`
	At      time.Time     `json:"at"`
}

// PaymentConfirmed is the inbound notification from the payment processor.
type PaymentConfirmed struct {
	EventID string `json:"event_id"`
	LoanID  string `json:"loan_id"`
	FeeKind string `json:"fee_kind"`
}

func NewEventID() string { return uuid.NewString() }
