package loan

import "testing"

func TestIsLegalEdge_AdjacencyTable(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
		label    string
	}{
		{StatusNewRequest, StatusQuoteRequested, true, "intake-forward"},
		{StatusQuoteRequested, StatusSoftQuoteIssued, true, "quote-forward"},
		{StatusTermSheetSigned, StatusAppraisalOrdered, true, "signed-appraisal"},
		{StatusAppraisalReceived, StatusConditionallyApproved, true, "appraisal-ca"},
		{StatusConditionallyApproved, StatusConditionalItemsNeeded, true, "ca-cin"},
		{StatusConditionalItemsNeeded, StatusConditionallyApproved, true, "cin-ca-back"},
		{StatusConditionalItemsNeeded, StatusClearToClose, true, "cin-ctc"},
		{StatusClearToClose, StatusConditionalItemsNeeded, true, "ctc-cin-back"},
		{StatusClearToClose, StatusFunded, true, "ctc-funded"},

		{StatusNewRequest, StatusFunded, false, "skip-to-funded"},
		{StatusNewRequest, StatusSoftQuoteIssued, false, "skip-one"},
		{StatusConditionallyApproved, StatusClearToClose, false, "ca-ctc-skip"},
		{StatusQuoteRequested, StatusNewRequest, false, "undeclared-back"},
		{StatusFunded, StatusClearToClose, false, "terminal-back"},
		{StatusFunded, StatusFunded, false, "self-loop"},
		{StatusNewRequest, StatusNewRequest, false, "self-loop-initial"},
		{"unknown", StatusNewRequest, false, "unknown-from"},
		{StatusNewRequest, "unknown", false, "unknown-to"},
	}
	for _, tc := range cases {
		if got := IsLegalEdge(tc.from, tc.to); got != tc.want {
			t.Fatalf("%s: IsLegalEdge(%s,%s)=%v want %v", tc.label, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsLegalEdge_OnlyConditionsLoopGoesBackwards(t *testing.T) {
	all := Statuses()
	for _, from := range all {
		for _, to := range all {
			if !IsLegalEdge(from, to) {
				continue
			}
			if to.ProgressIndex() == from.ProgressIndex()+1 {
				continue
			}
			back := (from == StatusConditionalItemsNeeded && to == StatusConditionallyApproved) ||
				(from == StatusClearToClose && to == StatusConditionalItemsNeeded)
			if !back {
				t.Fatalf("unexpected non-adjacent edge %s -> %s", from, to)
			}
		}
	}
}

func TestStatusOptions_CanonicalOrder(t *testing.T) {
	opts := StatusOptions()
	if len(opts) != 11 {
		t.Fatalf("len=%d want 11", len(opts))
	}
	if opts[0].Value != StatusNewRequest || opts[len(opts)-1].Value != StatusFunded {
		t.Fatalf("unexpected bounds: %+v ... %+v", opts[0], opts[len(opts)-1])
	}
	for i, o := range opts {
		if o.Value.ProgressIndex() != i {
			t.Fatalf("%s progress=%d want %d", o.Value, o.Value.ProgressIndex(), i)
		}
		if o.Label == "" || o.Label == string(o.Value) {
			t.Fatalf("%s has no display label", o.Value)
		}
	}
}

func TestStatus_Helpers(t *testing.T) {
	if StatusNewRequest.ProgressPercent() != 0 || StatusFunded.ProgressPercent() != 100 {
		t.Fatalf("percent bounds wrong")
	}
	if Status("nope").Valid() || Status("nope").ProgressIndex() != -1 {
		t.Fatalf("unknown status treated as valid")
	}
	if !StatusFunded.Terminal() || StatusClearToClose.Terminal() {
		t.Fatalf("terminal detection wrong")
	}
	next := NextStatuses(StatusClearToClose)
	if len(next) != 2 || next[0] != StatusConditionalItemsNeeded || next[1] != StatusFunded {
		t.Fatalf("NextStatuses(clear_to_close)=%v", next)
	}
	if got := NextStatuses(StatusFunded); len(got) != 0 {
		t.Fatalf("funded has successors: %v", got)
	}
}
