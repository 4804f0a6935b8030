package game

import (
	"math"

	"tycoon/internal/catalog"
)

// NextPrice rolls one good's price for the month at age. The roll is a
// uniform sample in [-0.5, 0.5], pulled back toward base price when the
// price has drifted, pushed by active intelligence and scaled by the good's
// volatility. The result never drops below a tenth of base price.
func (e *Engine) NextPrice(good catalog.Good, price float64, age int, intel []Intelligence) float64 {
	sample := e.nextFloat() - 0.5
	return nextPrice(good, price, sample, age, intel)
}

func nextPrice(good catalog.Good, price, sample float64, age int, intel []Intelligence) float64 {
	ratio := price / good.BasePrice
	switch {
	case ratio > ReversionHighRatio:
		sample -= good.Risk.Reversion()
	case ratio < ReversionLowRatio:
		sample += good.Risk.Reversion()
	}

	bias := intelBias(good, age, intel)
	if bias != 0 {
		sample = math.Copysign(math.Abs(sample), bias) + bias
	}

	next := price * (1 + sample*good.Risk.Volatility())
	floor := good.BasePrice * PriceFloorRatio
	if next < floor {
		next = floor
	}
	next = round2(next)
	if next < floor {
		next = ceil2(floor)
	}
	return next
}

// intelBias sums the pushes of every signal active at age that targets good.
func intelBias(good catalog.Good, age int, intel []Intelligence) float64 {
	bias := 0.0
	for _, in := range intel {
		if !in.ActiveAt(age) || !in.Targets(good) {
			continue
		}
		if in.Direction == Up {
			bias += IntelBiasPerSignal
		} else {
			bias -= IntelBiasPerSignal
		}
	}
	return bias
}

// RollMarket prices every catalog good for the month at age and appends the
// result to its bounded history. Each good's roll depends only on its own
// current price.
func (e *Engine) RollMarket(m MarketState, age int, intel []Intelligence) MarketState {
	out := m.Clone()
	if out.Prices == nil {
		out.Prices = make(map[string]float64, len(e.cat.Goods))
	}
	for _, g := range e.cat.Goods {
		current, ok := m.Prices[g.ID]
		if !ok {
			current = g.BasePrice
		}
		next := e.NextPrice(g, current, age, intel)
		out.Prices[g.ID] = next
		out.History[g.ID] = appendHistory(out.History[g.ID], next, e.rules.PriceHistoryLen)
	}
	return out
}

func appendHistory(h []float64, v float64, limit int) []float64 {
	h = append(h, v)
	if len(h) > limit {
		h = h[len(h)-limit:]
	}
	return h
}
