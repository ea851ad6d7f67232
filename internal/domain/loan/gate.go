package loan

import "strings"

type GateFlag string

const (
	GateApprovalGranted    GateFlag = "approval_granted"
	GatePaymentCaptured    GateFlag = "payment_captured"
	GateClosingFeeCaptured GateFlag = "closing_fee_captured"
	GateConditionsCleared  GateFlag = "conditions_cleared"
)

// Gates are the per-loan progression preconditions.
type Gates struct {
	ApprovalGranted    bool `gorm:"column:approval_granted;not null;default:false" json:"approval_granted"`
	PaymentCaptured    bool `gorm:"column:payment_captured;not null;default:false" json:"payment_captured"`
	ClosingFeeCaptured bool `gorm:"column:closing_fee_captured;not null;default:false" json:"closing_fee_captured"`
	ConditionsCleared  bool `gorm:"column:conditions_cleared;not null;default:false" json:"conditions_cleared"`
}

func (g Gates) IsSet(f GateFlag) bool {
	switch f {
	case GateApprovalGranted:
		return g.ApprovalGranted
	case GatePaymentCaptured:
		return g.PaymentCaptured
	case GateClosingFeeCaptured:
		return g.ClosingFeeCaptured
	case GateConditionsCleared:
		return g.ConditionsCleared
	}
	return false
}

// Set raises flag f. It reports false for an unknown flag.
func (g *Gates) Set(f GateFlag) bool {
	switch f {
	case GateApprovalGranted:
		g.ApprovalGranted = true
	case GatePaymentCaptured:
		g.PaymentCaptured = true
	case GateClosingFeeCaptured:
		g.ClosingFeeCaptured = true
	case GateConditionsCleared:
		g.ConditionsCleared = true
	default:
		return false
	}
	return true
}

// OperatorGate reports whether f is set by an operator action rather than a payment.
func (f GateFlag) OperatorGate() bool {
	return f == GateApprovalGranted || f == GateConditionsCleared
}

// FeeKind identifies a fee confirmed by the payment processor.
type FeeKind string

const (
	FeeUnderwriting FeeKind = "underwriting_fee"
	FeeClosing      FeeKind = "closing_fee"
)

var feeGates = map[FeeKind]GateFlag{
	FeeUnderwriting: GatePaymentCaptured,
	FeeClosing:      GateClosingFeeCaptured,
}

// ParseFeeKind accepts snake_case and the processor's camelCase spelling.
func ParseFeeKind(raw string) (FeeKind, bool) {
	switch strings.TrimSpace(raw) {
	case "underwriting_fee", "underwritingFee":
		return FeeUnderwriting, true
	case "closing_fee", "closingFee":
		return FeeClosing, true
	}
	return "", false
}

// Gate returns the flag satisfied by a confirmed payment of kind k.
func (k FeeKind) Gate() (GateFlag, bool) {
	f, ok := feeGates[k]
	return f, ok
}

type GateRule struct {
	Flag   GateFlag `json:"gate"`
	Reason string   `json:"reason"`
}

// gateRules maps a target status to the flags that must be set before a loan may enter it.
var gateRules = map[Status][]GateRule{
	StatusAppraisalOrdered:      {{Flag: GatePaymentCaptured, Reason: "underwriting fee not yet captured"}},
	StatusConditionallyApproved: {{Flag: GateClosingFeeCaptured, Reason: "closing fee not yet captured"}},
	StatusClearToClose:          {{Flag: GateConditionsCleared, Reason: "conditions not yet cleared"}},
}

// RulesFor returns the gate rules guarding entry into to.
func RulesFor(to Status) []GateRule {
	rules := gateRules[to]
	out := make([]GateRule, len(rules))
	copy(out, rules)
	return out
}

type Decision struct {
	Allowed bool
	Gate    GateFlag
	Reason  string
}

// Evaluate decides whether the loan's current gates allow entering to.
// It does not check structural legality; see IsLegalEdge.
func Evaluate(g Gates, to Status) Decision {
	for _, r := range gateRules[to] {
		if !g.IsSet(r.Flag) {
			return Decision{Gate: r.Flag, Reason: r.Reason}
		}
	}
	return Decision{Allowed: true}
}
