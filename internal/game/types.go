package game

import "tycoon/internal/catalog"

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

type Trigger string

const (
	TriggerTrade   Trigger = "trade"
	TriggerHire    Trigger = "hire"
	TriggerTrain   Trigger = "train"
	TriggerMonthly Trigger = "monthly"
)

// Rules are the tunable constants of a game.
type Rules struct {
	StartingCash       float64             `json:"starting_cash"`
	StartingAgeYears   int                 `json:"starting_age_years"`
	RetirementAgeYears int                 `json:"retirement_age_years"`
	BaseMaxEnergy      int                 `json:"base_max_energy"`
	PriceHistoryLen    int                 `json:"price_history_len"`
	IntelProbability   map[Trigger]float64 `json:"intel_probability"`
}

func DefaultRules() Rules {
	return Rules{
		StartingCash:       500,
		StartingAgeYears:   20,
		RetirementAgeYears: 60,
		BaseMaxEnergy:      100,
		PriceHistoryLen:    20,
		IntelProbability: map[Trigger]float64{
			TriggerTrade:   0.05,
			TriggerHire:    0.10,
			TriggerTrain:   0.08,
			TriggerMonthly: 0.075,
		},
	}
}

func (r Rules) RetirementAge() int {
	return r.RetirementAgeYears * MonthsPerYear
}

type AttributeLevel struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

type InventoryItem struct {
	GoodID   string  `json:"good_id"`
	Quantity int     `json:"quantity"`
	AvgCost  float64 `json:"avg_cost"`
}

type MarketState struct {
	Prices  map[string]float64   `json:"prices"`
	History map[string][]float64 `json:"history"`
}

type Intelligence struct {
	ID             string    `json:"id"`
	GeneratedAt    int       `json:"generated_at"`
	Label          string    `json:"label"`
	Trigger        Trigger   `json:"trigger"`
	Source         string    `json:"source"`
	Content        string    `json:"content"`
	TargetGoodID   string    `json:"target_good_id,omitempty"`
	TargetCategory string    `json:"target_category,omitempty"`
	Direction      Direction `json:"direction"`
	StartMonth     int       `json:"start_month"`
	EndMonth       int       `json:"end_month"`
	Read           bool      `json:"read"`
}

// ActiveAt reports whether age falls inside the activation window.
func (i Intelligence) ActiveAt(age int) bool {
	return age >= i.StartMonth && age <= i.EndMonth
}

func (i Intelligence) ExpiredAt(age int) bool {
	return age > i.EndMonth
}

// Targets reports whether the signal applies to the good.
func (i Intelligence) Targets(g catalog.Good) bool {
	if i.TargetGoodID != "" {
		return i.TargetGoodID == g.ID
	}
	return i.TargetCategory != "" && i.TargetCategory == g.Category
}

type Company struct {
	ID          string   `json:"id"`
	TypeID      string   `json:"type_id"`
	Name        string   `json:"name"`
	Level       int      `json:"level"`
	Employees   []string `json:"employees"`
	TotalProfit float64  `json:"total_profit"`
}

type Loan struct {
	ID              string  `json:"id"`
	Name            string  `json:"name,omitempty"`
	Principal       float64 `json:"principal"`
	RemainingAmount float64 `json:"remaining_amount"`
	MonthlyPayment  float64 `json:"monthly_payment"`
	MonthsRemaining int     `json:"months_remaining"`
	AnnualRate      float64 `json:"annual_rate"`
}

type Bill struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	MonthsOverdue int     `json:"months_overdue"`
}

type Income struct {
	Trade    float64 `json:"trade"`
	Salary   float64 `json:"salary"`
	Rent     float64 `json:"rent"`
	Business float64 `json:"business"`
}

func (i Income) Total() float64 {
	return i.Trade + i.Salary + i.Rent + i.Business
}

type Expense struct {
	Trade    float64 `json:"trade"`
	Bills    float64 `json:"bills"`
	Business float64 `json:"business"`
	Other    float64 `json:"other"`
}

func (e Expense) Total() float64 {
	return e.Trade + e.Bills + e.Business + e.Other
}

type FinancialReport struct {
	Month   int     `json:"month"`
	Income  Income  `json:"income"`
	Expense Expense `json:"expense"`
}

func (r FinancialReport) Net() float64 {
	return round2(r.Income.Total() - r.Expense.Total())
}

// State is the whole of one player's game. Engine methods take a State by
// value and return a new one; the input is never modified.
type State struct {
	Age             int                                  `json:"age"`
	Cash            float64                              `json:"cash"`
	Energy          int                                  `json:"energy"`
	MaxEnergy       int                                  `json:"max_energy"`
	Attributes      map[catalog.Attribute]AttributeLevel `json:"attributes"`
	Inventory       map[string]InventoryItem             `json:"inventory"`
	Warehouses      map[string]int                       `json:"warehouses"`
	Accommodation   string                               `json:"accommodation,omitempty"`
	Market          MarketState                          `json:"market"`
	Loans           []Loan                               `json:"loans"`
	Bills           []Bill                               `json:"bills"`
	UnpaidBillCount int                                  `json:"unpaid_bill_count"`
	CreditScore     int                                  `json:"credit_score"`
	Companies       []Company                            `json:"companies"`
	CurrentReport   FinancialReport                      `json:"current_report"`
	LastReport      FinancialReport                      `json:"last_report"`
	Intelligence    []Intelligence                       `json:"intelligence"`
	Logs            []string                             `json:"logs"`
	GameOver        bool                                 `json:"game_over"`
	Phase           Phase                                `json:"-"`
}

// MonthPreview is what the player sees before choosing which bills to pay.
type MonthPreview struct {
	Bills  []Bill          `json:"bills"`
	Report FinancialReport `json:"report"`
	Total  float64         `json:"total"`
}

type CompanyResult struct {
	CompanyID string  `json:"company_id"`
	Name      string  `json:"name"`
	Produced  int     `json:"produced"`
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
	Skipped   bool    `json:"skipped"`
}

type BusinessOutcome struct {
	Inventory map[string]InventoryItem `json:"inventory"`
	Companies []Company                `json:"companies"`
	Results   []CompanyResult          `json:"results"`
	Revenue   float64                  `json:"revenue"`
	Cost      float64                  `json:"cost"`
}

func (o BusinessOutcome) Net() float64 {
	return round2(o.Revenue - o.Cost)
}

type Summary struct {
	Age               int     `json:"age"`
	Years             int     `json:"years"`
	Month             int     `json:"month"`
	Cash              float64 `json:"cash"`
	Energy            int     `json:"energy"`
	MaxEnergy         int     `json:"max_energy"`
	TotalAssets       float64 `json:"total_assets"`
	CreditScore       int     `json:"credit_score"`
	MaxLoan           float64 `json:"max_loan"`
	WarehouseCapacity int     `json:"warehouse_capacity"`
	UsedCapacity      int     `json:"used_capacity"`
	Accommodation     string  `json:"accommodation,omitempty"`
	Phase             string  `json:"phase"`
	LastMonthNet      float64 `json:"last_month_net"`
	UnpaidBills       int     `json:"unpaid_bills"`
	Title             string  `json:"title,omitempty"`

	MissingPrerequisites []string `json:"missing_prerequisites,omitempty"`
}
