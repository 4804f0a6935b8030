package game

import (
	"fmt"
	"log/slog"
	"math"

	"tycoon/internal/catalog"
)

type Engine struct {
	cat   *catalog.Catalog
	rules Rules
	rand  Rand
	log   *slog.Logger
}

func NewEngine(cat *catalog.Catalog, rules Rules, r Rand, logger *slog.Logger) *Engine {
	if cat == nil {
		cat = catalog.Default()
	}
	if r == nil {
		r = NewRand(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultRules()
	if rules.RetirementAgeYears <= 0 {
		rules.RetirementAgeYears = defaults.RetirementAgeYears
	}
	if rules.StartingAgeYears <= 0 {
		rules.StartingAgeYears = defaults.StartingAgeYears
	}
	if rules.BaseMaxEnergy <= 0 {
		rules.BaseMaxEnergy = defaults.BaseMaxEnergy
	}
	if rules.PriceHistoryLen <= 0 {
		rules.PriceHistoryLen = defaults.PriceHistoryLen
	}
	if rules.IntelProbability == nil {
		rules.IntelProbability = defaults.IntelProbability
	}
	return &Engine{cat: cat, rules: rules, rand: r, log: logger}
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// NewGame returns the opening state: starting cash, full energy, level 1
// attributes and every good at its base price.
func (e *Engine) NewGame() State {
	age := e.rules.StartingAgeYears * MonthsPerYear
	s := State{
		Age:        age,
		Cash:       e.rules.StartingCash,
		Energy:     e.rules.BaseMaxEnergy,
		MaxEnergy:  e.rules.BaseMaxEnergy,
		Attributes: make(map[catalog.Attribute]AttributeLevel, len(catalog.Attributes)),
		Inventory:  map[string]InventoryItem{},
		Warehouses: map[string]int{},
		Market: MarketState{
			Prices:  make(map[string]float64, len(e.cat.Goods)),
			History: make(map[string][]float64, len(e.cat.Goods)),
		},
		Loans:         []Loan{},
		Bills:         []Bill{},
		Companies:     []Company{},
		CurrentReport: FinancialReport{Month: age},
		LastReport:    FinancialReport{Month: age - 1},
		Intelligence:  []Intelligence{},
		Logs:          []string{},
		Phase:         Active{},
	}
	for _, attr := range catalog.Attributes {
		s.Attributes[attr] = AttributeLevel{Level: 1}
	}
	for _, g := range e.cat.Goods {
		s.Market.Prices[g.ID] = g.BasePrice
		s.Market.History[g.ID] = []float64{g.BasePrice}
	}
	s.CreditScore = CreditScore(e.TotalAssets(s), 0)
	s.Logs = appendLog(s.Logs, fmt.Sprintf("%s: started with %.2f cash", ageLabel(age), s.Cash))
	return s
}

// price returns the current market price, falling back to the base price for
// goods the market has not seen.
func (e *Engine) price(s State, goodID string) float64 {
	if p, ok := s.Market.Prices[goodID]; ok {
		return p
	}
	if g, ok := e.cat.Good(goodID); ok {
		return g.BasePrice
	}
	return 0
}

// MaxEnergyFor is the base energy plus every owned property's bonus.
func (e *Engine) MaxEnergyFor(s State) int {
	total := e.rules.BaseMaxEnergy
	for id, item := range s.Inventory {
		g, ok := e.cat.Good(id)
		if !ok || g.RealEstate == nil {
			continue
		}
		total += g.RealEstate.MaxEnergyBonus * item.Quantity
	}
	return total
}

func (e *Engine) WarehouseCapacity(s State) int {
	total := 0
	for id, n := range s.Warehouses {
		if w, ok := e.cat.Warehouse(id); ok {
			total += w.Capacity * n
		}
	}
	return total
}

// UsedCapacity counts commodity and product units; real estate needs no space.
func (e *Engine) UsedCapacity(s State) int {
	used := 0
	for id, item := range s.Inventory {
		g, ok := e.cat.Good(id)
		if !ok || !g.UsesStorage() {
			continue
		}
		used += item.Quantity
	}
	return used
}

// RecoveryRate is the fraction of max energy restored each month by the
// current accommodation.
func (e *Engine) RecoveryRate(s State) float64 {
	if s.Accommodation == "" {
		return 0
	}
	if h, ok := e.cat.HousingOption(s.Accommodation); ok {
		return h.RecoveryRate
	}
	if g, ok := e.cat.Good(s.Accommodation); ok && g.RealEstate != nil {
		if g.RealEstate.RecoveryRate > 0 {
			return g.RealEstate.RecoveryRate
		}
		return DefaultRecoveryRate
	}
	return 0
}

// MissingPrerequisites lists what the gating rule still needs. An empty
// result means trading, working and borrowing are allowed.
func (e *Engine) MissingPrerequisites(s State) []string {
	var missing []string
	if e.WarehouseCapacity(s) <= 0 {
		missing = append(missing, "warehouse")
	}
	if s.Accommodation == "" {
		missing = append(missing, "housing")
	}
	return missing
}

func (e *Engine) requireGate(s State) error {
	if err := requireActive(s); err != nil {
		return err
	}
	missing := e.MissingPrerequisites(s)
	if len(missing) == 0 {
		return nil
	}
	detail := missing[0]
	if len(missing) > 1 {
		detail = missing[0] + " and " + missing[1]
	}
	return reject(ErrMissingPrerequisite, "need %s", detail)
}

// refresh recomputes the derived fields after a mutation.
func (e *Engine) refresh(s *State) {
	s.Cash = round2(s.Cash)
	s.MaxEnergy = e.MaxEnergyFor(*s)
	s.CreditScore = CreditScore(e.TotalAssets(*s), s.UnpaidBillCount)
}

func (e *Engine) Summarize(s State) Summary {
	assets := e.TotalAssets(s)
	out := Summary{
		Age:               s.Age,
		Years:             s.Age / MonthsPerYear,
		Month:             s.Age%MonthsPerYear + 1,
		Cash:              s.Cash,
		Energy:            s.Energy,
		MaxEnergy:         s.MaxEnergy,
		TotalAssets:       assets,
		CreditScore:       CreditScore(assets, s.UnpaidBillCount),
		WarehouseCapacity: e.WarehouseCapacity(s),
		UsedCapacity:      e.UsedCapacity(s),
		Accommodation:     s.Accommodation,
		Phase:             string(phaseKind(s.Phase)),
		LastMonthNet:      s.LastReport.Net(),
		UnpaidBills:       s.UnpaidBillCount,

		MissingPrerequisites: e.MissingPrerequisites(s),
	}
	out.MaxLoan = MaxLoanAmount(out.CreditScore)
	if t, ok := s.Phase.(Terminal); ok {
		out.Title = t.Title
	}
	return out
}

func appendLog(logs []string, entry string) []string {
	out := make([]string, 0, min(len(logs)+1, MaxLogEntries))
	out = append(out, entry)
	for _, l := range logs {
		if len(out) == MaxLogEntries {
			break
		}
		out = append(out, l)
	}
	return out
}

func (e *Engine) logf(s *State, format string, args ...any) {
	s.Logs = appendLog(s.Logs, ageLabel(s.Age)+": "+fmt.Sprintf(format, args...))
}

func floorInt(v float64) int {
	return int(math.Floor(v + 1e-9))
}
