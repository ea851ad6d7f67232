package loan

type Status string

const (
	StatusNewRequest             Status = "new_request"
	StatusQuoteRequested         Status = "quote_requested"
	StatusSoftQuoteIssued        Status = "soft_quote_issued"
	StatusTermSheetIssued        Status = "term_sheet_issued"
	StatusTermSheetSigned        Status = "term_sheet_signed"
	StatusAppraisalOrdered       Status = "appraisal_ordered"
	StatusAppraisalReceived      Status = "appraisal_received"
	StatusConditionallyApproved  Status = "conditionally_approved"
	StatusConditionalItemsNeeded Status = "conditional_items_needed"
	StatusClearToClose           Status = "clear_to_close"
	StatusFunded                 Status = "funded"
)

// stages is the canonical order. Index in this slice is the progress index.
var stages = []struct {
	status Status
	label  string
}{
	{StatusNewRequest, "New Request"},
	{StatusQuoteRequested, "Quote Requested"},
	{StatusSoftQuoteIssued, "Soft Quote Issued"},
	{StatusTermSheetIssued, "Term Sheet Issued"},
	{StatusTermSheetSigned, "Term Sheet Signed"},
	{StatusAppraisalOrdered, "Appraisal Ordered"},
	{StatusAppraisalReceived, "Appraisal Received"},
	{StatusConditionallyApproved, "Conditionally Approved"},
	{StatusConditionalItemsNeeded, "Conditional Items Needed"},
	{StatusClearToClose, "Clear to Close"},
	{StatusFunded, "Funded"},
}

type edge struct{ from, to Status }

// backEdges are the only transitions that are not "next stage in canonical order".
var backEdges = map[edge]struct{}{
	{StatusConditionalItemsNeeded, StatusConditionallyApproved}: {},
	{StatusClearToClose, StatusConditionalItemsNeeded}:          {},
}

var progress = func() map[Status]int {
	m := make(map[Status]int, len(stages))
	for i, s := range stages {
		m[s.status] = i
	}
	return m
}()

// Statuses returns every stage in canonical order.
func Statuses() []Status {
	out := make([]Status, len(stages))
	for i, s := range stages {
		out[i] = s.status
	}
	return out
}

func (s Status) Valid() bool {
	_, ok := progress[s]
	return ok
}

// Label is the display name, or the raw value for unknown statuses.
func (s Status) Label() string {
	if i, ok := progress[s]; ok {
		return stages[i].label
	}
	return string(s)
}

// ProgressIndex returns the position in the canonical order, -1 when unknown.
func (s Status) ProgressIndex() int {
	if i, ok := progress[s]; ok {
		return i
	}
	return -1
}

// ProgressPercent maps the progress index onto 0..100.
func (s Status) ProgressPercent() int {
	i := s.ProgressIndex()
	if i < 0 {
		return 0
	}
	return i * 100 / (len(stages) - 1)
}

func (s Status) Terminal() bool { return s == StatusFunded }

// IsLegalEdge reports whether from -> to is a declared edge of the pipeline:
// the immediate next stage, or one of the back edges around the conditions loop.
func IsLegalEdge(from, to Status) bool {
	fi, ok := progress[from]
	if !ok {
		return false
	}
	ti, ok := progress[to]
	if !ok {
		return false
	}
	if ti == fi+1 {
		return true
	}
	_, ok = backEdges[edge{from, to}]
	return ok
}

// NextStatuses lists the targets reachable from s in one transition, in canonical order.
func NextStatuses(s Status) []Status {
	var out []Status
	for _, st := range stages {
		if IsLegalEdge(s, st.status) {
			out = append(out, st.status)
		}
	}
	return out
}

type StatusOption struct {
	Value    Status     `json:"value"`
	Label    string     `json:"label"`
	Terminal bool       `json:"terminal"`
	Requires []GateRule `json:"requires,omitempty"`
}

func StatusOptions() []StatusOption {
	out := make([]StatusOption, len(stages))
	for i, s := range stages {
		out[i] = StatusOption{Value: s.status, Label: s.label, Terminal: s.status.Terminal()}
		if rules := RulesFor(s.status); len(rules) > 0 {
			out[i].Requires = rules
		}
	}
	return out
}
