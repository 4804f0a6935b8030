package game

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"tycoon/internal/catalog"
)

// scriptedRand replays a fixed sequence of samples, cycling when exhausted.
type scriptedRand struct {
	vals []float64
	i    int
	b    byte
}

func (r *scriptedRand) Float64() float64 {
	if len(r.vals) == 0 {
		return 0.5
	}
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func (r *scriptedRand) Read(p []byte) (int, error) {
	for i := range p {
		r.b++
		p[i] = r.b
	}
	return len(p), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(vals ...float64) *Engine {
	return NewEngine(catalog.Default(), DefaultRules(), &scriptedRand{vals: vals}, quietLogger())
}

// readyState has a warehouse and a rented flat so the gating rule passes.
func readyState(t *testing.T, e *Engine) State {
	t.Helper()
	s := e.NewGame()
	s, err := e.BuyWarehouse(s, "wh_small")
	if err != nil {
		t.Fatalf("buy warehouse: %v", err)
	}
	s, err = e.SetAccommodation(s, "youth_apartment")
	if err != nil {
		t.Fatalf("set accommodation: %v", err)
	}
	return s
}

func snapshot(t *testing.T, s State) string {
	t.Helper()
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func mustGood(t *testing.T, e *Engine, id string) catalog.Good {
	t.Helper()
	g, ok := e.Catalog().Good(id)
	if !ok {
		t.Fatalf("good %s missing", id)
	}
	return g
}
