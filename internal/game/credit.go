package game

import "math"

// TotalAssets is cash plus inventory at current prices plus warehouses at
// catalog price.
func (e *Engine) TotalAssets(s State) float64 {
	total := s.Cash
	for id, item := range s.Inventory {
		total += float64(item.Quantity) * e.price(s, id)
	}
	for id, n := range s.Warehouses {
		if w, ok := e.cat.Warehouse(id); ok {
			total += float64(n) * w.Price
		}
	}
	return round2(total)
}

// CreditScore halves the asset-based score for every unpaid bill.
func CreditScore(totalAssets float64, unpaidBills int) int {
	score := (totalAssets / AssetsPerCreditPoint) * math.Pow(0.5, float64(unpaidBills))
	return int(math.Floor(score))
}

func MaxLoanAmount(score int) float64 {
	if score <= 0 {
		return 0
	}
	return float64(score * CreditPerLoanUnit)
}

// MaxMortgageTerm is the longest mortgage, in months, the score allows.
func MaxMortgageTerm(score int) int {
	return min(MaxMortgageMonths, max(MinMortgageTermCap, score/2))
}

// LoanTerms returns the total repayment and monthly payment for a new loan at
// the fixed annual rate.
func LoanTerms(principal float64, months int) (total, monthly float64) {
	total = round2(principal * (1 + LoanAnnualRate*float64(months)/MonthsPerYear))
	monthly = round2(total / float64(months))
	return total, monthly
}

func (e *Engine) newLoan(name string, principal float64, months int) Loan {
	total, monthly := LoanTerms(principal, months)
	return Loan{
		ID:              e.newID(),
		Name:            name,
		Principal:       round2(principal),
		RemainingAmount: total,
		MonthlyPayment:  monthly,
		MonthsRemaining: months,
		AnnualRate:      LoanAnnualRate,
	}
}

// Amortize advances a loan by one month. The second result is false when the
// loan is finished and should be dropped; a finished loan has nothing left
// to pay.
func Amortize(l Loan) (Loan, bool) {
	paydown := l.MonthlyPayment - l.RemainingAmount*l.AnnualRate/MonthsPerYear
	if paydown < 0 {
		paydown = 0
	}
	l.RemainingAmount = round2(math.Max(0, l.RemainingAmount-paydown))
	l.MonthsRemaining--
	if l.MonthsRemaining <= 0 {
		l.RemainingAmount = 0
		return l, false
	}
	return l, true
}

func amortizeAll(loans []Loan) []Loan {
	out := make([]Loan, 0, len(loans))
	for _, l := range loans {
		if next, keep := Amortize(l); keep {
			out = append(out, next)
		}
	}
	return out
}
