package game

import "testing"

func TestCreditScore(t *testing.T) {
	tests := []struct {
		assets float64
		unpaid int
		want   int
	}{
		{assets: 100000, unpaid: 0, want: 1000},
		{assets: 100000, unpaid: 2, want: 250},
		{assets: 100000, unpaid: 11, want: 0},
		{assets: 99.99, unpaid: 0, want: 0},
		{assets: 0, unpaid: 0, want: 0},
		{assets: -500, unpaid: 0, want: -5},
	}
	for _, tc := range tests {
		if got := CreditScore(tc.assets, tc.unpaid); got != tc.want {
			t.Fatalf("CreditScore(%.2f, %d)=%d want %d", tc.assets, tc.unpaid, got, tc.want)
		}
	}
}

func TestMaxLoanAmount(t *testing.T) {
	tests := []struct {
		score int
		want  float64
	}{
		{score: 1000, want: 500000},
		{score: 1, want: 500},
		{score: 0, want: 0},
		{score: -3, want: 0},
	}
	for _, tc := range tests {
		if got := MaxLoanAmount(tc.score); got != tc.want {
			t.Fatalf("MaxLoanAmount(%d)=%.2f want %.2f", tc.score, got, tc.want)
		}
	}
}

func TestMaxMortgageTerm(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{score: 0, want: 60},
		{score: 119, want: 60},
		{score: 200, want: 100},
		{score: 720, want: 360},
		{score: 5000, want: 360},
	}
	for _, tc := range tests {
		if got := MaxMortgageTerm(tc.score); got != tc.want {
			t.Fatalf("MaxMortgageTerm(%d)=%d want %d", tc.score, got, tc.want)
		}
	}
}

func TestLoanTerms(t *testing.T) {
	total, monthly := LoanTerms(5000, 24)
	if total != 5500 || monthly != 229.17 {
		t.Fatalf("LoanTerms(5000, 24)=(%.2f, %.2f) want (5500, 229.17)", total, monthly)
	}
	total, monthly = LoanTerms(1000, 12)
	if total != 1050 || monthly != 87.5 {
		t.Fatalf("LoanTerms(1000, 12)=(%.2f, %.2f) want (1050, 87.50)", total, monthly)
	}
}

func TestAmortizeRunsDownToZero(t *testing.T) {
	for _, tc := range []struct {
		principal float64
		months    int
	}{
		{5000, 24},
		{160000, 240},
		{1000, 12},
		{250, 360},
	} {
		total, monthly := LoanTerms(tc.principal, tc.months)
		l := Loan{RemainingAmount: total, MonthlyPayment: monthly, MonthsRemaining: tc.months, AnnualRate: LoanAnnualRate}
		steps := 0
		for {
			prev := l.RemainingAmount
			next, keep := Amortize(l)
			steps++
			if next.RemainingAmount > prev {
				t.Fatalf("%.0f/%d: remaining grew %.2f -> %.2f", tc.principal, tc.months, prev, next.RemainingAmount)
			}
			if next.RemainingAmount < 0 {
				t.Fatalf("%.0f/%d: remaining went negative", tc.principal, tc.months)
			}
			l = next
			if !keep {
				break
			}
		}
		if steps != tc.months {
			t.Fatalf("%.0f/%d: finished after %d steps", tc.principal, tc.months, steps)
		}
		if l.RemainingAmount != 0 || l.MonthsRemaining != 0 {
			t.Fatalf("%.0f/%d: finished loan has %.2f over %d months", tc.principal, tc.months, l.RemainingAmount, l.MonthsRemaining)
		}
	}
}

func TestTotalAssets(t *testing.T) {
	e := newTestEngine()
	s := readyState(t, e)
	s.Inventory["wheat"] = InventoryItem{GoodID: "wheat", Quantity: 10, AvgCost: 1}
	s.Market.Prices["wheat"] = 1.5
	// 300 cash + 15 wheat + one small warehouse at 200
	if got := e.TotalAssets(s); got != 515 {
		t.Fatalf("total assets=%.2f want 515", got)
	}
}
