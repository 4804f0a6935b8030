package game

import (
	"testing"
)

func TestNextPriceNeverBelowFloor(t *testing.T) {
	e := NewEngine(nil, DefaultRules(), NewRand(42), quietLogger())
	for _, g := range e.Catalog().Goods {
		floor := g.BasePrice * PriceFloorRatio
		price := floor
		down := []Intelligence{{TargetGoodID: g.ID, Direction: Down, StartMonth: 0, EndMonth: 1 << 20}}
		for i := 0; i < 500; i++ {
			price = e.NextPrice(g, price, 300+i, down)
			if price < floor {
				t.Fatalf("%s price %.4f below floor %.4f", g.ID, price, floor)
			}
		}
	}
}

func TestWheatScenarioRange(t *testing.T) {
	e := NewEngine(nil, DefaultRules(), NewRand(7), quietLogger())
	wheat := mustGood(t, e, "wheat")
	for i := 0; i < 2000; i++ {
		got := e.NextPrice(wheat, 1.2, 24, nil)
		if got < 1.14 || got > 1.26 {
			t.Fatalf("wheat next price %.2f outside [1.14, 1.26]", got)
		}
	}
}

func TestUpSignalForcesRise(t *testing.T) {
	e := NewEngine(nil, DefaultRules(), NewRand(9), quietLogger())
	wheat := mustGood(t, e, "wheat")
	intel := []Intelligence{{TargetGoodID: "wheat", Direction: Up, StartMonth: 24, EndMonth: 24}}
	min := 1.2 * (1 + IntelBiasPerSignal*0.05)
	for i := 0; i < 2000; i++ {
		got := e.NextPrice(wheat, 1.2, 24, intel)
		if got < min {
			t.Fatalf("biased price %.4f below %.4f", got, min)
		}
	}
}

func TestBiasSignOverridesSample(t *testing.T) {
	e := newTestEngine()
	gold := mustGood(t, e, "gold")
	tests := []struct {
		name   string
		sample float64
		dir    Direction
		rise   bool
	}{
		{name: "up flips negative sample", sample: -0.4, dir: Up, rise: true},
		{name: "up keeps positive sample", sample: 0.3, dir: Up, rise: true},
		{name: "down flips positive sample", sample: 0.4, dir: Down, rise: false},
		{name: "down on zero sample", sample: 0, dir: Down, rise: false},
	}
	for _, tc := range tests {
		intel := []Intelligence{{TargetCategory: gold.Category, Direction: tc.dir, StartMonth: 10, EndMonth: 11}}
		got := nextPrice(gold, 400, tc.sample, 11, intel)
		if tc.rise && got <= 400 {
			t.Fatalf("%s: got %.2f, want rise", tc.name, got)
		}
		if !tc.rise && got >= 400 {
			t.Fatalf("%s: got %.2f, want fall", tc.name, got)
		}
	}
}

func TestIntelBiasScope(t *testing.T) {
	e := newTestEngine()
	wheat := mustGood(t, e, "wheat")
	intel := []Intelligence{
		{TargetGoodID: "wheat", Direction: Up, StartMonth: 5, EndMonth: 6},
		{TargetGoodID: "rice", Direction: Up, StartMonth: 1, EndMonth: 20},
		{TargetCategory: wheat.Category, Direction: Up, StartMonth: 6, EndMonth: 6},
		{TargetCategory: "tech", Direction: Down, StartMonth: 1, EndMonth: 20},
	}
	tests := []struct {
		age  int
		want float64
	}{
		{age: 4, want: 0},
		{age: 5, want: 0.15},
		{age: 6, want: 0.30},
		{age: 7, want: 0},
	}
	for _, tc := range tests {
		got := intelBias(wheat, tc.age, intel)
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("age=%d bias=%.2f want %.2f", tc.age, got, tc.want)
		}
	}
}

func TestMeanReversion(t *testing.T) {
	e := newTestEngine()
	coal := mustGood(t, e, "coal")
	tests := []struct {
		price, want float64
	}{
		{price: 100, want: 98.5},
		{price: 30, want: 30.45},
		{price: 50, want: 50},
	}
	for _, tc := range tests {
		if got := nextPrice(coal, tc.price, 0, 1, nil); got != tc.want {
			t.Fatalf("price %.2f moved to %.2f want %.2f", tc.price, got, tc.want)
		}
	}
}

func TestRollMarketCapsHistory(t *testing.T) {
	rules := DefaultRules()
	rules.PriceHistoryLen = 3
	e := NewEngine(nil, rules, NewRand(3), quietLogger())
	s := e.NewGame()
	m := s.Market
	for i := 0; i < 5; i++ {
		m = e.RollMarket(m, s.Age+i+1, nil)
	}
	for _, g := range e.Catalog().Goods {
		if _, ok := m.Prices[g.ID]; !ok {
			t.Fatalf("price for %s missing", g.ID)
		}
		h := m.History[g.ID]
		if len(h) != 3 {
			t.Fatalf("%s history len=%d want 3", g.ID, len(h))
		}
		if h[len(h)-1] != m.Prices[g.ID] {
			t.Fatalf("%s history tail %.2f != price %.2f", g.ID, h[len(h)-1], m.Prices[g.ID])
		}
	}
	if len(s.Market.History["wheat"]) != 1 {
		t.Fatalf("input market mutated")
	}
}
