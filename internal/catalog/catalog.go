package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type RiskClass string

const (
	RiskMinimal RiskClass = "minimal"
	RiskStable  RiskClass = "stable"
	RiskLow     RiskClass = "low"
	RiskMedium  RiskClass = "medium"
	RiskHigh    RiskClass = "high"
	RiskExtreme RiskClass = "extreme"
)

var riskVolatility = map[RiskClass]float64{
	RiskMinimal: 0.02,
	RiskStable:  0.05,
	RiskLow:     0.15,
	RiskMedium:  0.3,
	RiskHigh:    0.5,
	RiskExtreme: 1.0,
}

// Volatility is the maximum monthly fractional price swing for the class.
func (r RiskClass) Volatility() float64 {
	return riskVolatility[r]
}

// Reversion is the pull applied to the direction sample when a price drifts
// far from its base.
func (r RiskClass) Reversion() float64 {
	if r == RiskMinimal {
		return 0.2
	}
	return 0.1
}

func (r RiskClass) Valid() bool {
	_, ok := riskVolatility[r]
	return ok
}

type Kind string

const (
	KindCommodity  Kind = "commodity"
	KindRealEstate Kind = "real_estate"
	KindProduct    Kind = "product"
)

type Attribute string

const (
	Knowledge Attribute = "knowledge"
	Physical  Attribute = "physical"
	Art       Attribute = "art"
	Logic     Attribute = "logic"
	Business  Attribute = "business"
)

// Attributes lists the five trainable attributes in display order.
var Attributes = []Attribute{Knowledge, Physical, Art, Logic, Business}

type BuffType string

const (
	BuffEfficiency BuffType = "efficiency"
	// BuffSales is carried on employees but no production or revenue
	// formula reads it yet.
	BuffSales BuffType = "sales"
)

type RealEstate struct {
	MaxEnergyBonus    int     `yaml:"max_energy_bonus" json:"max_energy_bonus"`
	RecoveryRate      float64 `yaml:"recovery_rate" json:"recovery_rate"`
	PassiveIncomeRate float64 `yaml:"passive_income_rate" json:"passive_income_rate"`
}

type Good struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	BasePrice   float64     `yaml:"base_price" json:"base_price"`
	Risk        RiskClass   `yaml:"risk" json:"risk"`
	Kind        Kind        `yaml:"kind" json:"kind"`
	Category    string      `yaml:"category" json:"category"`
	RealEstate  *RealEstate `yaml:"real_estate,omitempty" json:"real_estate,omitempty"`
}

func (g Good) IsRealEstate() bool {
	return g.Kind == KindRealEstate
}

// UsesStorage reports whether holdings of the good occupy warehouse space.
func (g Good) UsesStorage() bool {
	return g.Kind == KindCommodity || g.Kind == KindProduct
}

type Material struct {
	GoodID string  `yaml:"good_id" json:"good_id"`
	Amount float64 `yaml:"amount" json:"amount"`
}

type CompanyType struct {
	ID                string     `yaml:"id" json:"id"`
	Name              string     `yaml:"name" json:"name"`
	Description       string     `yaml:"description" json:"description"`
	ReqAttribute      Attribute  `yaml:"req_attribute" json:"req_attribute"`
	ReqLevel          int        `yaml:"req_level" json:"req_level"`
	ReqEstateCategory string     `yaml:"req_estate_category" json:"req_estate_category"`
	StartupCost       float64    `yaml:"startup_cost" json:"startup_cost"`
	BaseMonthlyCost   float64    `yaml:"base_monthly_cost" json:"base_monthly_cost"`
	Materials         []Material `yaml:"materials" json:"materials"`
	ProductID         string     `yaml:"product_id" json:"product_id"`
	BaseProduction    int        `yaml:"base_production" json:"base_production"`
}

type Employee struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Salary          float64  `yaml:"salary" json:"salary"`
	Buff            BuffType `yaml:"buff" json:"buff"`
	BuffValue       float64  `yaml:"buff_value" json:"buff_value"`
	MinCompanyLevel int      `yaml:"min_company_level" json:"min_company_level"`
}

type Warehouse struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	Capacity int     `yaml:"capacity" json:"capacity"`
	Price    float64 `yaml:"price" json:"price"`
}

type Housing struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	Rent         float64 `yaml:"rent" json:"rent"`
	RecoveryRate float64 `yaml:"recovery_rate" json:"recovery_rate"`
}

type Job struct {
	ID           string            `yaml:"id" json:"id"`
	Name         string            `yaml:"name" json:"name"`
	Category     string            `yaml:"category" json:"category"`
	Salary       float64           `yaml:"salary" json:"salary"`
	EnergyCost   int               `yaml:"energy_cost" json:"energy_cost"`
	Requirements map[Attribute]int `yaml:"requirements,omitempty" json:"requirements,omitempty"`
}

// Catalog is the immutable reference data the engine reads. Build one with
// Default or Load; do not mutate it after the engine is constructed.
type Catalog struct {
	Goods           []Good                 `yaml:"goods" json:"goods"`
	Companies       []CompanyType          `yaml:"companies" json:"companies"`
	Employees       []Employee             `yaml:"employees" json:"employees"`
	Warehouses      []Warehouse            `yaml:"warehouses" json:"warehouses"`
	Housing         []Housing              `yaml:"housing" json:"housing"`
	Jobs            []Job                  `yaml:"jobs" json:"jobs"`
	Titles          map[Attribute][]string `yaml:"titles" json:"titles"`
	IntelCategories []string               `yaml:"intel_categories" json:"intel_categories"`

	goods      map[string]int
	companies  map[string]int
	employees  map[string]int
	warehouses map[string]int
	housing    map[string]int
	jobs       map[string]int
}

// Load reads a YAML catalog. Sections present in the file replace the
// built-in tables; absent sections keep the defaults.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	c.index()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) index() {
	c.goods = make(map[string]int, len(c.Goods))
	for i, g := range c.Goods {
		c.goods[g.ID] = i
	}
	c.companies = make(map[string]int, len(c.Companies))
	for i, t := range c.Companies {
		c.companies[t.ID] = i
	}
	c.employees = make(map[string]int, len(c.Employees))
	for i, e := range c.Employees {
		c.employees[e.ID] = i
	}
	c.warehouses = make(map[string]int, len(c.Warehouses))
	for i, w := range c.Warehouses {
		c.warehouses[w.ID] = i
	}
	c.housing = make(map[string]int, len(c.Housing))
	for i, h := range c.Housing {
		c.housing[h.ID] = i
	}
	c.jobs = make(map[string]int, len(c.Jobs))
	for i, j := range c.Jobs {
		c.jobs[j.ID] = i
	}
}

func (c *Catalog) Validate() error {
	var errs []error
	if len(c.Goods) == 0 {
		errs = append(errs, errors.New("no goods defined"))
	}
	seen := make(map[string]struct{}, len(c.Goods))
	for _, g := range c.Goods {
		if _, dup := seen[g.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate good %q", g.ID))
		}
		seen[g.ID] = struct{}{}
		if g.BasePrice <= 0 {
			errs = append(errs, fmt.Errorf("good %q: base price must be > 0", g.ID))
		}
		if !g.Risk.Valid() {
			errs = append(errs, fmt.Errorf("good %q: unknown risk class %q", g.ID, g.Risk))
		}
		switch g.Kind {
		case KindCommodity, KindProduct:
		case KindRealEstate:
			if g.RealEstate == nil {
				errs = append(errs, fmt.Errorf("good %q: real estate attributes missing", g.ID))
			}
		default:
			errs = append(errs, fmt.Errorf("good %q: unknown kind %q", g.ID, g.Kind))
		}
	}
	for _, t := range c.Companies {
		product, ok := c.Good(t.ProductID)
		if !ok {
			errs = append(errs, fmt.Errorf("company %q: unknown product %q", t.ID, t.ProductID))
		} else if product.IsRealEstate() {
			errs = append(errs, fmt.Errorf("company %q: product %q is real estate", t.ID, t.ProductID))
		}
		for _, m := range t.Materials {
			if _, ok := c.Good(m.GoodID); !ok {
				errs = append(errs, fmt.Errorf("company %q: unknown material %q", t.ID, m.GoodID))
			}
		}
		if t.ReqAttribute != "" && !validAttribute(t.ReqAttribute) {
			errs = append(errs, fmt.Errorf("company %q: unknown attribute %q", t.ID, t.ReqAttribute))
		}
	}
	for _, e := range c.Employees {
		if e.MinCompanyLevel < 1 {
			errs = append(errs, fmt.Errorf("employee %q: min company level must be >= 1", e.ID))
		}
	}
	for _, w := range c.Warehouses {
		if w.Capacity <= 0 {
			errs = append(errs, fmt.Errorf("warehouse %q: capacity must be > 0", w.ID))
		}
	}
	for _, j := range c.Jobs {
		if j.EnergyCost <= 0 {
			errs = append(errs, fmt.Errorf("job %q: energy cost must be > 0", j.ID))
		}
		for attr := range j.Requirements {
			if !validAttribute(attr) {
				errs = append(errs, fmt.Errorf("job %q: unknown attribute %q", j.ID, attr))
			}
		}
	}
	return errors.Join(errs...)
}

func validAttribute(a Attribute) bool {
	for _, known := range Attributes {
		if a == known {
			return true
		}
	}
	return false
}

func (c *Catalog) Good(id string) (Good, bool) {
	i, ok := c.goods[id]
	if !ok {
		return Good{}, false
	}
	return c.Goods[i], true
}

func (c *Catalog) CompanyType(id string) (CompanyType, bool) {
	i, ok := c.companies[id]
	if !ok {
		return CompanyType{}, false
	}
	return c.Companies[i], true
}

func (c *Catalog) Employee(id string) (Employee, bool) {
	i, ok := c.employees[id]
	if !ok {
		return Employee{}, false
	}
	return c.Employees[i], true
}

func (c *Catalog) Warehouse(id string) (Warehouse, bool) {
	i, ok := c.warehouses[id]
	if !ok {
		return Warehouse{}, false
	}
	return c.Warehouses[i], true
}

func (c *Catalog) HousingOption(id string) (Housing, bool) {
	i, ok := c.housing[id]
	if !ok {
		return Housing{}, false
	}
	return c.Housing[i], true
}

func (c *Catalog) Job(id string) (Job, bool) {
	i, ok := c.jobs[id]
	if !ok {
		return Job{}, false
	}
	return c.Jobs[i], true
}

func (c *Catalog) GoodsInCategory(category string) []Good {
	var out []Good
	for _, g := range c.Goods {
		if g.Category == category {
			out = append(out, g)
		}
	}
	return out
}

// Categories returns every distinct good category, sorted.
func (c *Catalog) Categories() []string {
	set := make(map[string]struct{})
	for _, g := range c.Goods {
		set[g.Category] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Title returns the display title for an attribute level, or "" when the
// table has no entry for it.
func (c *Catalog) Title(attr Attribute, level int) string {
	titles := c.Titles[attr]
	if level < 1 || level > len(titles) {
		return ""
	}
	return titles[level-1]
}
