package game

import (
	"encoding/json"
	"fmt"
	"slices"
)

type PhaseKind string

const (
	PhaseActive            PhaseKind = "active"
	PhasePendingSettlement PhaseKind = "pending_settlement"
	PhaseTerminal          PhaseKind = "terminal"
)

// Phase is the tick state machine. It is one of Active, PendingSettlement or
// Terminal; a nil Phase is treated as Active.
type Phase interface {
	Kind() PhaseKind
}

type Active struct{}

func (Active) Kind() PhaseKind { return PhaseActive }

// PendingSettlement holds the bills computed by AdvanceMonth until the player
// chooses which of them to pay.
type PendingSettlement struct {
	Bills   []Bill
	Preview FinancialReport
}

func (PendingSettlement) Kind() PhaseKind { return PhasePendingSettlement }

type Terminal struct {
	Reason string
	Title  string
}

func (Terminal) Kind() PhaseKind { return PhaseTerminal }

func phaseKind(p Phase) PhaseKind {
	if p == nil {
		return PhaseActive
	}
	return p.Kind()
}

// PendingBills returns the bills awaiting settlement, or nil outside
// PendingSettlement.
func PendingBills(s State) []Bill {
	if p, ok := s.Phase.(PendingSettlement); ok {
		return p.Bills
	}
	return nil
}

// AffordableBills picks bills greedily, most overdue first, while their
// running total stays within cash. Ties keep the given order.
func AffordableBills(bills []Bill, cash float64) []string {
	order := slices.Clone(bills)
	slices.SortStableFunc(order, func(a, b Bill) int {
		return b.MonthsOverdue - a.MonthsOverdue
	})
	ids := make([]string, 0, len(order))
	spent := 0.0
	for _, b := range order {
		if round2(spent+b.Amount) > cash {
			continue
		}
		spent = round2(spent + b.Amount)
		ids = append(ids, b.ID)
	}
	return ids
}

// requireActive rejects when the state is not accepting player actions.
func requireActive(s State) error {
	switch p := s.Phase.(type) {
	case nil, Active:
		return nil
	case PendingSettlement:
		return reject(ErrSettlementPending, "%d bills awaiting settlement", len(p.Bills))
	case Terminal:
		return reject(ErrGameOver, "%s", p.Reason)
	default:
		return fmt.Errorf("unknown phase %T", p)
	}
}

type phaseJSON struct {
	Kind    PhaseKind        `json:"kind"`
	Bills   []Bill           `json:"bills,omitempty"`
	Preview *FinancialReport `json:"preview,omitempty"`
	Reason  string           `json:"reason,omitempty"`
	Title   string           `json:"title,omitempty"`
}

func encodePhase(p Phase) phaseJSON {
	switch v := p.(type) {
	case PendingSettlement:
		preview := v.Preview
		return phaseJSON{Kind: PhasePendingSettlement, Bills: v.Bills, Preview: &preview}
	case Terminal:
		return phaseJSON{Kind: PhaseTerminal, Reason: v.Reason, Title: v.Title}
	default:
		return phaseJSON{Kind: PhaseActive}
	}
}

func (p phaseJSON) decode() (Phase, error) {
	switch p.Kind {
	case "", PhaseActive:
		return Active{}, nil
	case PhasePendingSettlement:
		out := PendingSettlement{Bills: p.Bills}
		if p.Preview != nil {
			out.Preview = *p.Preview
		}
		return out, nil
	case PhaseTerminal:
		return Terminal{Reason: p.Reason, Title: p.Title}, nil
	default:
		return nil, fmt.Errorf("unknown phase kind %q", p.Kind)
	}
}

type stateFields State

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		stateFields
		Phase phaseJSON `json:"phase"`
	}{stateFields(s), encodePhase(s.Phase)})
}

func (s *State) UnmarshalJSON(raw []byte) error {
	var aux struct {
		stateFields
		Phase phaseJSON `json:"phase"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return err
	}
	phase, err := aux.Phase.decode()
	if err != nil {
		return err
	}
	*s = State(aux.stateFields)
	s.Phase = phase
	return nil
}
