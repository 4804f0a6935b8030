package game

import (
	"fmt"
	"slices"

	"tycoon/internal/catalog"
)

// Trade buys or sells qty units of a good at its current price. Real estate
// can be sold here but must be bought through Mortgage.
func (e *Engine) Trade(s State, goodID string, side Side, qty int) (State, error) {
	if err := e.requireGate(s); err != nil {
		return s, err
	}
	if qty <= 0 {
		return s, reject(ErrInvalidQuantity, "got %d", qty)
	}
	g, ok := e.cat.Good(goodID)
	if !ok {
		return s, reject(ErrUnknownGood, "%s", goodID)
	}
	energy := qty * EnergyCostTrade
	if s.Energy < energy {
		return s, reject(ErrInsufficientEnergy, "need %d, have %d", energy, s.Energy)
	}
	price := e.price(s, goodID)
	value := round2(price * float64(qty))

	var next State
	switch side {
	case Buy:
		if g.IsRealEstate() {
			return s, reject(ErrMortgageRequired, "%s", g.Name)
		}
		if value > s.Cash {
			return s, reject(ErrInsufficientCash, "need %.2f, have %.2f", value, s.Cash)
		}
		if g.UsesStorage() {
			free := e.WarehouseCapacity(s) - e.UsedCapacity(s)
			if qty > free {
				return s, reject(ErrInsufficientCapacity, "need %d, free %d", qty, free)
			}
		}
		next = s.Clone()
		next.Cash -= value
		addToInventory(next.Inventory, goodID, qty, price)
		next.CurrentReport.Expense.Trade = round2(next.CurrentReport.Expense.Trade + value)
		e.logf(&next, "bought %d %s at %.2f", qty, g.Name, price)
	case Sell:
		held := s.Inventory[goodID].Quantity
		if held < qty {
			return s, reject(ErrInsufficientGoods, "hold %d %s", held, g.Name)
		}
		next = s.Clone()
		next.Cash += value
		takeFromInventory(next.Inventory, goodID, qty)
		next.CurrentReport.Income.Trade = round2(next.CurrentReport.Income.Trade + value)
		if next.Accommodation == goodID && next.Inventory[goodID].Quantity == 0 {
			next.Accommodation = ""
			e.logf(&next, "moved out of %s", g.Name)
		}
		e.logf(&next, "sold %d %s at %.2f", qty, g.Name, price)
	default:
		return s, fmt.Errorf("unknown trade side %q", side)
	}

	next.Energy -= energy
	if qty >= LargeTradeQuantity || value >= LargeTradeValue {
		e.maybeIntel(&next, IntelRequest{Trigger: TriggerTrade, GoodID: goodID})
	}
	e.refresh(&next)
	return next, nil
}

// addToInventory books a purchase, folding its price into the running
// average cost.
func addToInventory(inv map[string]InventoryItem, goodID string, qty int, price float64) {
	item := inv[goodID]
	q0 := float64(item.Quantity)
	item.GoodID = goodID
	item.AvgCost = (item.AvgCost*q0 + price*float64(qty)) / (q0 + float64(qty))
	item.Quantity += qty
	inv[goodID] = item
}

// Mortgage buys one unit of real estate with a down payment and finances the
// rest as a loan.
func (e *Engine) Mortgage(s State, goodID string, downPayment float64, months int) (State, error) {
	if err := e.requireGate(s); err != nil {
		return s, err
	}
	g, ok := e.cat.Good(goodID)
	if !ok {
		return s, reject(ErrUnknownGood, "%s", goodID)
	}
	if !g.IsRealEstate() {
		return s, reject(ErrNotRealEstate, "%s", g.Name)
	}
	price := e.price(s, goodID)
	minDown := round2(price * MinDownPaymentRatio)
	if downPayment < minDown {
		return s, reject(ErrDownPaymentTooLow, "minimum %.2f", minDown)
	}
	if downPayment >= price {
		return s, reject(ErrInvalidAmount, "down payment %.2f must be below price %.2f", downPayment, price)
	}
	maxTerm := MaxMortgageTerm(CreditScore(e.TotalAssets(s), s.UnpaidBillCount))
	if months < MinLoanMonths || months > maxTerm {
		return s, reject(ErrInvalidLoanTerm, "term must be %d-%d months", MinLoanMonths, maxTerm)
	}
	if s.Energy < EnergyCostMortgage {
		return s, reject(ErrInsufficientEnergy, "need %d, have %d", EnergyCostMortgage, s.Energy)
	}
	if downPayment > s.Cash {
		return s, reject(ErrInsufficientCash, "need %.2f, have %.2f", downPayment, s.Cash)
	}

	next := s.Clone()
	next.Cash -= downPayment
	next.Energy -= EnergyCostMortgage
	addToInventory(next.Inventory, goodID, 1, price)
	next.Loans = append(next.Loans, e.newLoan(g.Name+" mortgage", round2(price-downPayment), months))
	next.CurrentReport.Expense.Trade = round2(next.CurrentReport.Expense.Trade + downPayment)
	e.logf(&next, "bought %s with %.2f down over %d months", g.Name, downPayment, months)
	e.refresh(&next)
	return next, nil
}

// TakeLoan borrows cash up to the credit limit.
func (e *Engine) TakeLoan(s State, amount float64, months int) (State, error) {
	if err := e.requireGate(s); err != nil {
		return s, err
	}
	if amount <= 0 {
		return s, reject(ErrInvalidAmount, "got %.2f", amount)
	}
	if months <= 0 {
		return s, reject(ErrInvalidLoanTerm, "got %d months", months)
	}
	limit := MaxLoanAmount(CreditScore(e.TotalAssets(s), s.UnpaidBillCount))
	if amount > limit {
		return s, reject(ErrCreditLimitExceeded, "limit %.2f", limit)
	}

	next := s.Clone()
	loan := e.newLoan("", amount, months)
	next.Loans = append(next.Loans, loan)
	next.Cash += loan.Principal
	e.logf(&next, "borrowed %.2f over %d months at %.2f/month", loan.Principal, months, loan.MonthlyPayment)
	e.refresh(&next)
	return next, nil
}

// RepayLoanEarly pays off a loan's remaining amount in one go.
func (e *Engine) RepayLoanEarly(s State, loanID string) (State, error) {
	if err := requireActive(s); err != nil {
		return s, err
	}
	i := slices.IndexFunc(s.Loans, func(l Loan) bool { return l.ID == loanID })
	if i < 0 {
		return s, reject(ErrLoanNotFound, "%s", loanID)
	}
	loan := s.Loans[i]
	if s.Cash < loan.RemainingAmount {
		return s, reject(ErrUnaffordablePayoff, "need %.2f, have %.2f", loan.RemainingAmount, s.Cash)
	}

	next := s.Clone()
	next.Cash -= loan.RemainingAmount
	next.Loans = slices.Delete(next.Loans, i, i+1)
	next.CurrentReport.Expense.Bills = round2(next.CurrentReport.Expense.Bills + loan.RemainingAmount)
	e.logf(&next, "repaid loan early: %.2f", loan.RemainingAmount)
	e.refresh(&next)
	return next, nil
}

// CreateCompany founds a company of the given type. The player needs the
// startup cash, the type's attribute level and a property in the required
// real-estate category.
func (e *Engine) CreateCompany(s State, typeID string) (State, error) {
	if err := requireActive(s); err != nil {
		return s, err
	}
	def, ok := e.cat.CompanyType(typeID)
	if !ok {
		return s, reject(ErrUnknownCompanyType, "%s", typeID)
	}
	if s.Cash < def.StartupCost {
		return s, reject(ErrInsufficientCash, "need %.2f, have %.2f", def.StartupCost, s.Cash)
	}
	if def.ReqAttribute != "" {
		if lvl := s.Attributes[def.ReqAttribute].Level; lvl < def.ReqLevel {
			return s, reject(ErrAttributeTooLow, "%s %d, need %d", def.ReqAttribute, lvl, def.ReqLevel)
		}
	}
	if def.ReqEstateCategory != "" && !e.ownsEstateCategory(s, def.ReqEstateCategory) {
		return s, reject(ErrMissingRealEstate, "need %s property", def.ReqEstateCategory)
	}

	next := s.Clone()
	next.Cash -= def.StartupCost
	next.CurrentReport.Expense.Other = round2(next.CurrentReport.Expense.Other + def.StartupCost)
	next.Companies = append(next.Companies, Company{
		ID:        e.newID(),
		TypeID:    def.ID,
		Name:      fmt.Sprintf("%s #%d", def.Name, len(s.Companies)+1),
		Level:     1,
		Employees: []string{},
	})
	e.logf(&next, "founded %s", def.Name)
	e.refresh(&next)
	return next, nil
}

func (e *Engine) ownsEstateCategory(s State, category string) bool {
	for id, item := range s.Inventory {
		if item.Quantity <= 0 {
			continue
		}
		g, ok := e.cat.Good(id)
		if ok && g.IsRealEstate() && g.Category == category {
			return true
		}
	}
	return false
}

// HireEmployee adds an employee to a company. Salaries are charged monthly
// with the company's fixed costs.
func (e *Engine) HireEmployee(s State, companyID, employeeID string) (State, error) {
	if err := requireActive(s); err != nil {
		return s, err
	}
	i := slices.IndexFunc(s.Companies, func(c Company) bool { return c.ID == companyID })
	if i < 0 {
		return s, reject(ErrCompanyNotFound, "%s", companyID)
	}
	emp, ok := e.cat.Employee(employeeID)
	if !ok {
		return s, reject(ErrUnknownEmployee, "%s", employeeID)
	}
	company := s.Companies[i]
	if company.Level < emp.MinCompanyLevel {
		return s, reject(ErrCompanyLevelTooLow, "%s needs level %d", emp.Name, emp.MinCompanyLevel)
	}

	next := s.Clone()
	next.Companies[i].Employees = append(next.Companies[i].Employees, emp.ID)
	e.logf(&next, "%s joined %s", emp.Name, company.Name)
	e.maybeIntel(&next, IntelRequest{Trigger: TriggerHire})
	return next, nil
}

// TrainAttribute spends energy for one point of experience, levelling up
// when the level's threshold is reached.
func (e *Engine) TrainAttribute(s State, attr catalog.Attribute) (State, error) {
	if err := requireActive(s); err != nil {
		return s, err
	}
	cur, ok := s.Attributes[attr]
	if !ok {
		return s, reject(ErrUnknownAttribute, "%s", attr)
	}
	if cur.Level >= MaxAttributeLevel {
		return s, reject(ErrAttributeMaxed, "%s", attr)
	}
	if s.Energy < EnergyCostTrain {
		return s, reject(ErrInsufficientEnergy, "need %d, have %d", EnergyCostTrain, s.Energy)
	}

	next := s.Clone()
	next.Energy -= EnergyCostTrain
	cur.XP++
	if cur.XP >= cur.Level*XPScaleFactor {
		cur.Level++
		cur.XP = 0
		e.logf(&next, "%s reached level %d: %s", attr, cur.Level, e.cat.Title(attr, cur.Level))
	}
	next.Attributes[attr] = cur
	e.maybeIntel(&next, IntelRequest{Trigger: TriggerTrain})
	return next, nil
}

// WorkJob works one shift for the job's salary.
func (e *Engine) WorkJob(s State, jobID string) (State, error) {
	if err := e.requireGate(s); err != nil {
		return s, err
	}
	job, ok := e.cat.Job(jobID)
	if !ok {
		return s, reject(ErrUnknownJob, "%s", jobID)
	}
	for _, attr := range catalog.Attributes {
		need, ok := job.Requirements[attr]
		if !ok {
			continue
		}
		if have := s.Attributes[attr].Level; have < need {
			return s, reject(ErrAttributeTooLow, "%s %d, need %d", attr, have, need)
		}
	}
	if s.Energy < job.EnergyCost {
		return s, reject(ErrInsufficientEnergy, "need %d, have %d", job.EnergyCost, s.Energy)
	}

	next := s.Clone()
	next.Energy -= job.EnergyCost
	next.Cash += job.Salary
	next.CurrentReport.Income.Salary = round2(next.CurrentReport.Income.Salary + job.Salary)
	e.logf(&next, "worked as %s for %.2f", job.Name, job.Salary)
	e.refresh(&next)
	return next, nil
}

// SetAccommodation moves the player into a rental or an owned property.
func (e *Engine) SetAccommodation(s State, id string) (State, error) {
	if err := requireActive(s); err != nil {
		return s, err
	}
	name := ""
	if h, ok := e.cat.HousingOption(id); ok {
		name = h.Name
	} else if g, ok := e.cat.Good(id); ok && g.IsRealEstate() {
		if s.Inventory[id].Quantity <= 0 {
			return s, reject(ErrPropertyNotOwned, "%s", g.Name)
		}
		name = g.Name
	} else {
		return s, reject(ErrUnknownHousing, "%s", id)
	}
	if s.Accommodation == id {
		return s, nil
	}

	next := s.Clone()
	next.Accommodation = id
	e.logf(&next, "moved into %s", name)
	return next, nil
}

// BuyWarehouse buys one warehouse unit.
func (e *Engine) BuyWarehouse(s State, id string) (State, error) {
	if err := requireActive(s); err != nil {
		return s, err
	}
	w, ok := e.cat.Warehouse(id)
	if !ok {
		return s, reject(ErrUnknownWarehouse, "%s", id)
	}
	if s.Cash < w.Price {
		return s, reject(ErrInsufficientCash, "need %.2f, have %.2f", w.Price, s.Cash)
	}

	next := s.Clone()
	next.Cash -= w.Price
	if next.Warehouses == nil {
		next.Warehouses = map[string]int{}
	}
	next.Warehouses[id]++
	next.CurrentReport.Expense.Other = round2(next.CurrentReport.Expense.Other + w.Price)
	e.logf(&next, "bought %s (+%d capacity)", w.Name, w.Capacity)
	e.refresh(&next)
	return next, nil
}
