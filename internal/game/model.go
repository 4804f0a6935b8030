package game

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	MonthsPerYear = 12

	MaxAttributeLevel = 10
	XPScaleFactor     = 10

	EnergyCostTrade    = 1
	EnergyCostTrain    = 2
	EnergyCostMortgage = 1

	LoanAnnualRate       = 0.05
	MinDownPaymentRatio  = 0.2
	MinLoanMonths        = 12
	MinMortgageTermCap   = 60
	MaxMortgageMonths    = 360
	CreditPerLoanUnit    = 500
	AssetsPerCreditPoint = 100

	PriceFloorRatio      = 0.1
	ReversionHighRatio   = 1.5
	ReversionLowRatio    = 0.7
	IntelBiasPerSignal   = 0.15
	IntelNarrowingChance = 0.7

	LargeTradeQuantity = 50
	LargeTradeValue    = 2000

	MaxLogEntries = 50

	DefaultRecoveryRate = 0.8
)

var (
	ErrInsufficientCash     = errors.New("insufficient cash")
	ErrInsufficientEnergy   = errors.New("insufficient energy")
	ErrInsufficientCapacity = errors.New("insufficient warehouse capacity")
	ErrInsufficientGoods    = errors.New("insufficient goods")
	ErrMissingPrerequisite  = errors.New("missing prerequisite")
	ErrMissingRealEstate    = errors.New("missing required real estate")
	ErrCompanyLevelTooLow   = errors.New("company level too low")
	ErrAttributeTooLow      = errors.New("attribute level too low")
	ErrAttributeMaxed       = errors.New("attribute already at max level")
	ErrCreditLimitExceeded  = errors.New("credit limit exceeded")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrUnaffordablePayoff   = errors.New("cash does not cover early payoff")
	ErrMortgageRequired     = errors.New("real estate must be bought with a mortgage")
	ErrNotRealEstate        = errors.New("good is not real estate")
	ErrDownPaymentTooLow    = errors.New("down payment below minimum")
	ErrInvalidLoanTerm      = errors.New("invalid loan term")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidAmount        = errors.New("amount must be > 0")
	ErrUnknownGood          = errors.New("unknown good")
	ErrUnknownCompanyType   = errors.New("unknown company type")
	ErrUnknownEmployee      = errors.New("unknown employee")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrUnknownJob           = errors.New("unknown job")
	ErrUnknownWarehouse     = errors.New("unknown warehouse")
	ErrUnknownHousing       = errors.New("unknown housing")
	ErrPropertyNotOwned     = errors.New("property not owned")
	ErrUnknownAttribute     = errors.New("unknown attribute")
	ErrIntelNotFound        = errors.New("intelligence not found")
	ErrUnknownBill          = errors.New("unknown bill")
	ErrSettlementPending    = errors.New("month settlement pending")
	ErrNotPendingSettlement = errors.New("no settlement pending")
	ErrGameOver             = errors.New("game over")
)

// Rejection is returned by every action whose precondition fails. The state
// passed to the action is left untouched.
type Rejection struct {
	Reason error
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return r.Reason.Error()
	}
	return r.Reason.Error() + ": " + r.Detail
}

func (r *Rejection) Unwrap() error {
	return r.Reason
}

func reject(reason error, format string, args ...any) error {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is a user-actionable rejection rather than
// an infrastructure failure.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

// round2 rounds half away from zero to cents.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func ceil2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).RoundCeil(2).Float64()
	return f
}

func ageLabel(age int) string {
	return fmt.Sprintf("age %d, month %d", age/MonthsPerYear, age%MonthsPerYear+1)
}
