package game

import (
	"maps"

	"tycoon/internal/catalog"
)

// RunBusinesses resolves one month of production for every company against
// the state's inventory and current prices. A company either consumes all of
// its materials and sells its whole output, or consumes nothing; fixed costs
// are charged in both cases. s is not modified.
func (e *Engine) RunBusinesses(s State) BusinessOutcome {
	out := BusinessOutcome{
		Inventory: maps.Clone(s.Inventory),
		Companies: cloneCompanies(s.Companies),
		Results:   make([]CompanyResult, 0, len(s.Companies)),
	}
	if out.Inventory == nil {
		out.Inventory = map[string]InventoryItem{}
	}

	for i := range out.Companies {
		c := &out.Companies[i]
		def, ok := e.cat.CompanyType(c.TypeID)
		if !ok {
			continue
		}
		level := max(c.Level, 1)
		res := CompanyResult{CompanyID: c.ID, Name: c.Name}

		efficiency := 1.0
		salaries := 0.0
		for _, empID := range c.Employees {
			emp, ok := e.cat.Employee(empID)
			if !ok {
				continue
			}
			salaries += emp.Salary
			// Sales buffs are not applied to revenue.
			if emp.Buff == catalog.BuffEfficiency {
				efficiency += emp.BuffValue
			}
		}
		res.Cost = round2(def.BaseMonthlyCost*float64(level) + salaries)

		needs := make(map[string]int, len(def.Materials))
		for _, m := range def.Materials {
			needs[m.GoodID] += floorInt(m.Amount * float64(level))
		}
		res.Skipped = !hasMaterials(out.Inventory, needs)
		if !res.Skipped {
			for id, n := range needs {
				takeFromInventory(out.Inventory, id, n)
			}
			res.Produced = floorInt(float64(def.BaseProduction) * float64(level) * efficiency)
			res.Revenue = round2(float64(res.Produced) * e.price(s, def.ProductID))
		}

		c.TotalProfit = round2(c.TotalProfit + res.Revenue - res.Cost)
		out.Revenue = round2(out.Revenue + res.Revenue)
		out.Cost = round2(out.Cost + res.Cost)
		out.Results = append(out.Results, res)
	}
	return out
}

func hasMaterials(inv map[string]InventoryItem, needs map[string]int) bool {
	for id, n := range needs {
		if n <= 0 {
			continue
		}
		if inv[id].Quantity < n {
			return false
		}
	}
	return true
}

func takeFromInventory(inv map[string]InventoryItem, id string, n int) {
	if n <= 0 {
		return
	}
	item := inv[id]
	item.Quantity -= n
	if item.Quantity <= 0 {
		delete(inv, id)
		return
	}
	inv[id] = item
}
