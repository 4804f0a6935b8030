package game

import (
	"maps"
	"slices"
)

// Clone returns a deep copy sharing no maps or slices with s.
func (s State) Clone() State {
	out := s
	out.Attributes = cloneMap(s.Attributes)
	out.Inventory = cloneMap(s.Inventory)
	out.Warehouses = cloneMap(s.Warehouses)
	out.Market = s.Market.Clone()
	out.Loans = slices.Clone(s.Loans)
	out.Bills = slices.Clone(s.Bills)
	out.Companies = cloneCompanies(s.Companies)
	out.Intelligence = slices.Clone(s.Intelligence)
	out.Logs = slices.Clone(s.Logs)
	if p, ok := s.Phase.(PendingSettlement); ok {
		p.Bills = slices.Clone(p.Bills)
		out.Phase = p
	}
	return out
}

func (m MarketState) Clone() MarketState {
	out := MarketState{
		Prices:  cloneMap(m.Prices),
		History: make(map[string][]float64, len(m.History)),
	}
	for id, h := range m.History {
		out.History[id] = slices.Clone(h)
	}
	return out
}

func cloneCompanies(in []Company) []Company {
	if in == nil {
		return nil
	}
	out := make([]Company, len(in))
	for i, c := range in {
		c.Employees = slices.Clone(c.Employees)
		out[i] = c
	}
	return out
}

// cloneMap is maps.Clone that never returns nil.
func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return make(map[K]V)
	}
	return maps.Clone(m)
}
