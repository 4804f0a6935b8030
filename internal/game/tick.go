package game

import (
	"fmt"
	"slices"
)

// AdvanceMonth closes the player's month. It computes this month's bills
// (carried-over unpaid bills one month more overdue, plus rent and loan
// payments) and a projected report, and moves the state into
// PendingSettlement. Nothing else changes until SettleBills.
func (e *Engine) AdvanceMonth(s State) (State, MonthPreview, error) {
	if err := requireActive(s); err != nil {
		return s, MonthPreview{}, err
	}

	bills := make([]Bill, 0, len(s.Bills)+len(s.Loans)+1)
	for _, b := range s.Bills {
		b.MonthsOverdue++
		bills = append(bills, b)
	}
	if h, ok := e.cat.HousingOption(s.Accommodation); ok && h.Rent > 0 {
		bills = append(bills, Bill{
			ID:     fmt.Sprintf("rent_%d", s.Age),
			Name:   h.Name + " rent",
			Amount: h.Rent,
		})
	}
	for _, l := range s.Loans {
		name := l.Name
		if name == "" {
			name = "loan"
		}
		bills = append(bills, Bill{
			ID:     fmt.Sprintf("loan_%s_%d", l.ID, s.Age),
			Name:   name + " repayment",
			Amount: l.MonthlyPayment,
		})
	}

	report := s.CurrentReport
	biz := e.RunBusinesses(s)
	report.Income.Business = round2(report.Income.Business + biz.Revenue)
	report.Expense.Business = round2(report.Expense.Business + biz.Cost)
	report.Income.Rent = round2(report.Income.Rent + e.PassiveIncome(s))

	preview := MonthPreview{Bills: bills, Report: report}
	for _, b := range bills {
		preview.Total += b.Amount
	}
	preview.Total = round2(preview.Total)

	next := s.Clone()
	next.Phase = PendingSettlement{Bills: slices.Clone(bills), Preview: report}
	e.log.Debug("month advanced", "age", s.Age, "bills", len(bills), "due", preview.Total)
	return next, preview, nil
}

// SettleBills pays the chosen pending bills and commits the month. Bills not
// chosen stay outstanding and count against the credit score.
func (e *Engine) SettleBills(s State, paidBillIDs []string) (State, error) {
	pending, ok := s.Phase.(PendingSettlement)
	if !ok {
		if err := requireActive(s); err != nil {
			return s, err
		}
		return s, reject(ErrNotPendingSettlement, "advance the month first")
	}

	paid := make(map[string]struct{}, len(paidBillIDs))
	for _, id := range paidBillIDs {
		if !slices.ContainsFunc(pending.Bills, func(b Bill) bool { return b.ID == id }) {
			return s, reject(ErrUnknownBill, "%s", id)
		}
		paid[id] = struct{}{}
	}

	total := 0.0
	unpaid := make([]Bill, 0, len(pending.Bills))
	for _, b := range pending.Bills {
		if _, ok := paid[b.ID]; ok {
			total += b.Amount
			continue
		}
		unpaid = append(unpaid, b)
	}
	total = round2(total)
	if total > s.Cash {
		return s, reject(ErrInsufficientCash, "bills %.2f, cash %.2f", total, s.Cash)
	}

	next := s.Clone()
	next.Cash = round2(next.Cash - total)
	next.CurrentReport.Expense.Bills = round2(next.CurrentReport.Expense.Bills + total)
	if total > 0 {
		e.logf(&next, "paid %d bills totalling %.2f", len(paid), total)
	}
	if len(unpaid) > 0 {
		e.logf(&next, "%d bills left unpaid", len(unpaid))
	}
	return e.commit(s, next, unpaid), nil
}

// commit applies the month transition. prev is the state the month was
// closed on; next already carries the bill payments. Business output is
// sold at prev's prices, before this month's price roll.
func (e *Engine) commit(prev, next State, unpaid []Bill) State {
	nextAge := prev.Age + 1
	next.Bills = unpaid
	next.UnpaidBillCount = len(unpaid)

	if nextAge >= e.rules.RetirementAge() {
		next.Age = nextAge
		next.GameOver = true
		e.refresh(&next)
		title := EndGameTitle(e.TotalAssets(next))
		next.Phase = Terminal{Reason: "retired", Title: title}
		e.logf(&next, "retired as %s", title)
		e.log.Info("game over", "age", nextAge, "title", title, "assets", e.TotalAssets(next))
		return next
	}

	e.maybeIntel(&next, IntelRequest{Trigger: TriggerMonthly, Age: prev.Age})

	biz := e.RunBusinesses(prev)
	next.Inventory = biz.Inventory
	next.Companies = biz.Companies
	next.Cash += biz.Revenue - biz.Cost
	next.CurrentReport.Income.Business = round2(next.CurrentReport.Income.Business + biz.Revenue)
	next.CurrentReport.Expense.Business = round2(next.CurrentReport.Expense.Business + biz.Cost)
	for _, r := range biz.Results {
		if r.Skipped {
			e.logf(&next, "%s idle: missing materials", r.Name)
		}
	}

	next.Market = e.RollMarket(prev.Market, nextAge, next.Intelligence)

	next.Loans = amortizeAll(prev.Loans)

	passive := e.PassiveIncome(prev)
	next.Cash += passive
	next.CurrentReport.Income.Rent = round2(next.CurrentReport.Income.Rent + passive)

	recovered := floorInt(float64(next.MaxEnergy) * e.RecoveryRate(next))
	next.Energy = min(next.MaxEnergy, next.Energy+recovered)

	next.Age = nextAge
	next.LastReport = next.CurrentReport
	next.CurrentReport = FinancialReport{Month: nextAge}
	next.Phase = Active{}
	e.refresh(&next)

	e.log.Debug("month committed",
		"age", nextAge,
		"cash", next.Cash,
		"business_revenue", biz.Revenue,
		"business_cost", biz.Cost,
		"passive", passive,
		"unpaid", next.UnpaidBillCount,
		"credit", next.CreditScore,
	)
	return next
}

// PassiveIncome is the monthly rent paid by owned income properties.
func (e *Engine) PassiveIncome(s State) float64 {
	total := 0.0
	for id, item := range s.Inventory {
		g, ok := e.cat.Good(id)
		if !ok || g.RealEstate == nil || g.RealEstate.PassiveIncomeRate <= 0 {
			continue
		}
		total += g.BasePrice * g.RealEstate.PassiveIncomeRate * float64(item.Quantity)
	}
	return round2(total)
}
