package game

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStateJSONKeepsPhase(t *testing.T) {
	e := newTestEngine()
	s := loanState(t, e)
	pending, preview, err := e.AdvanceMonth(s)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	over := s.Clone()
	over.Phase = Terminal{Reason: "retired", Title: "Pauper"}

	for _, in := range []State{s, pending, over} {
		raw, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out State
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if phaseKind(out.Phase) != phaseKind(in.Phase) {
			t.Fatalf("phase %s came back as %s", phaseKind(in.Phase), phaseKind(out.Phase))
		}
		if snapshot(t, out) != string(raw) {
			t.Fatalf("round trip changed state for phase %s", phaseKind(in.Phase))
		}
	}

	raw, _ := json.Marshal(pending)
	var out State
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p := out.Phase.(PendingSettlement)
	if len(p.Bills) != len(preview.Bills) || p.Bills[0].ID != preview.Bills[0].ID {
		t.Fatalf("pending bills=%+v", p.Bills)
	}
	if !strings.Contains(string(raw), `"kind":"pending_settlement"`) {
		t.Fatalf("phase kind missing from %s", raw)
	}
}

func TestStateJSONRejectsUnknownPhase(t *testing.T) {
	var s State
	err := json.Unmarshal([]byte(`{"age":240,"phase":{"kind":"limbo"}}`), &s)
	if err == nil {
		t.Fatalf("unknown phase accepted")
	}
}

func TestMissingPhaseIsActive(t *testing.T) {
	var s State
	if err := json.Unmarshal([]byte(`{"age":240}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := s.Phase.(Active); !ok {
		t.Fatalf("phase=%T want Active", s.Phase)
	}
	if err := requireActive(s); err != nil {
		t.Fatalf("requireActive: %v", err)
	}
}

func TestAffordableBills(t *testing.T) {
	bills := []Bill{
		{ID: "rent_241", Amount: 300},
		{ID: "loan_a_241", Amount: 90},
		{ID: "rent_240", Amount: 300, MonthsOverdue: 1},
	}
	tests := []struct {
		cash float64
		want string
	}{
		{0, ""},
		{100, "loan_a_241"},
		{300, "rent_240"},
		{400, "rent_240,loan_a_241"},
		{700, "rent_240,rent_241,loan_a_241"},
	}
	for _, tc := range tests {
		got := strings.Join(AffordableBills(bills, tc.cash), ",")
		if got != tc.want {
			t.Fatalf("cash %.0f: got %q want %q", tc.cash, got, tc.want)
		}
	}
}
