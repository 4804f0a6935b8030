package game

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateIntelActivation(t *testing.T) {
	e := newTestEngine(0.9)
	s := e.NewGame()
	next, in := e.GenerateIntel(s, IntelRequest{Trigger: TriggerTrade, GoodID: "wheat"})
	if in != nil {
		t.Fatalf("intel generated above activation chance: %+v", in)
	}
	if len(next.Intelligence) != 0 {
		t.Fatalf("state gained intel")
	}
}

func TestGenerateIntelProbabilityOverride(t *testing.T) {
	never := 0.0
	e := newTestEngine(0.01)
	if _, in := e.GenerateIntel(e.NewGame(), IntelRequest{Trigger: TriggerTrade, GoodID: "wheat", Probability: &never}); in != nil {
		t.Fatalf("zero probability produced intel: %+v", in)
	}
	if _, in := e.GenerateIntel(e.NewGame(), IntelRequest{Trigger: TriggerTrade, GoodID: "wheat"}); in == nil {
		t.Fatalf("default rate did not fire on a 0.01 roll")
	}
}

func TestGenerateIntelTargets(t *testing.T) {
	tests := []struct {
		name     string
		vals     []float64
		goodID   string
		wantGood string
		wantCat  string
		wantDir  Direction
		start    int
		end      int
	}{
		{
			name:     "named good",
			vals:     []float64{0.0, 0.9, 0.0, 0.9},
			goodID:   "wheat",
			wantGood: "wheat", wantDir: Up, start: 1, end: 2,
		},
		{
			// activation, category, narrowing, direction, delay, duration
			name:    "category wide",
			vals:    []float64{0.0, 0.0, 0.9, 0.1, 0.6, 0.1},
			wantCat: "tech", wantDir: Down, start: 2, end: 2,
		},
		{
			// activation, category, narrowing, good, direction, delay, duration
			name:     "narrowed to good",
			vals:     []float64{0.0, 0.0, 0.1, 0.0, 0.9, 0.0, 0.0},
			wantGood: "consumer_electronics", wantDir: Up, start: 1, end: 1,
		},
	}
	for _, tc := range tests {
		e := newTestEngine(tc.vals...)
		s := e.NewGame()
		next, in := e.GenerateIntel(s, IntelRequest{Trigger: TriggerMonthly, GoodID: tc.goodID})
		if in == nil {
			t.Fatalf("%s: no intel", tc.name)
		}
		if in.TargetGoodID != tc.wantGood || in.TargetCategory != tc.wantCat {
			t.Fatalf("%s: target good=%q category=%q", tc.name, in.TargetGoodID, in.TargetCategory)
		}
		if in.Direction != tc.wantDir {
			t.Fatalf("%s: direction=%s", tc.name, in.Direction)
		}
		if in.StartMonth != s.Age+tc.start || in.EndMonth != s.Age+tc.end {
			t.Fatalf("%s: window=[%d,%d] want [%d,%d]", tc.name, in.StartMonth-s.Age, in.EndMonth-s.Age, tc.start, tc.end)
		}
		if in.Source != "Street rumor" || in.Content == "" || in.ID == "" {
			t.Fatalf("%s: intel=%+v", tc.name, in)
		}
		if len(next.Intelligence) != 1 || len(s.Intelligence) != 0 {
			t.Fatalf("%s: intel not appended to a copy", tc.name)
		}
	}
}

func TestGenerateIntelProperties(t *testing.T) {
	e := NewEngine(nil, DefaultRules(), NewRand(17), quietLogger())
	s := e.NewGame()
	always := 1.0
	for i := 0; i < 500; i++ {
		_, in := e.GenerateIntel(s, IntelRequest{Trigger: TriggerTrain, Probability: &always})
		if in == nil {
			t.Fatalf("probability 1 produced nothing")
		}
		if (in.TargetGoodID == "") == (in.TargetCategory == "") {
			t.Fatalf("intel must name exactly one target: %+v", in)
		}
		if in.StartMonth < s.Age+1 || in.StartMonth > s.Age+2 {
			t.Fatalf("start=%d outside window", in.StartMonth-s.Age)
		}
		if in.EndMonth < in.StartMonth || in.EndMonth > in.StartMonth+1 {
			t.Fatalf("end=%d for start %d", in.EndMonth, in.StartMonth)
		}
		if in.GeneratedAt != s.Age {
			t.Fatalf("generated at %d", in.GeneratedAt)
		}
		if in.Direction == Up && !strings.Contains(in.Content, "uptrend") {
			t.Fatalf("up content=%q", in.Content)
		}
	}
}

func TestIntelWindow(t *testing.T) {
	in := Intelligence{StartMonth: 10, EndMonth: 11}
	for age, want := range map[int]bool{9: false, 10: true, 11: true, 12: false} {
		if got := in.ActiveAt(age); got != want {
			t.Fatalf("ActiveAt(%d)=%v", age, got)
		}
	}
	if !in.ExpiredAt(12) || in.ExpiredAt(11) {
		t.Fatalf("expiry wrong")
	}
	got := ActiveIntel([]Intelligence{in, {StartMonth: 1, EndMonth: 2}}, 10)
	if len(got) != 1 {
		t.Fatalf("active=%d want 1", len(got))
	}
}

func TestMarkIntelRead(t *testing.T) {
	e := newTestEngine(0.0, 0.9, 0.0, 0.9)
	s, in := e.GenerateIntel(e.NewGame(), IntelRequest{Trigger: TriggerTrade, GoodID: "gold"})
	if in == nil {
		t.Fatalf("no intel")
	}
	next, err := e.MarkIntelRead(s, in.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !next.Intelligence[0].Read || s.Intelligence[0].Read {
		t.Fatalf("read flag not set on a copy")
	}
	if _, err := e.MarkIntelRead(s, "nope"); !errors.Is(err, ErrIntelNotFound) {
		t.Fatalf("unknown intel: err=%v", err)
	}
}
