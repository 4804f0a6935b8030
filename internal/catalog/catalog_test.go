package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}
	if got := len(c.Goods); got != 34 {
		t.Fatalf("goods=%d want 34", got)
	}
	wheat, ok := c.Good("wheat")
	if !ok {
		t.Fatalf("wheat missing")
	}
	if wheat.Risk.Volatility() != 0.05 {
		t.Fatalf("wheat volatility=%v", wheat.Risk.Volatility())
	}
}

func TestValidateRejectsFreeJob(t *testing.T) {
	c := Default()
	c.Jobs[0].EnergyCost = 0
	if err := c.Validate(); err == nil {
		t.Fatalf("job without energy cost accepted")
	}
}

func TestRiskClassOrdering(t *testing.T) {
	order := []RiskClass{RiskMinimal, RiskStable, RiskLow, RiskMedium, RiskHigh, RiskExtreme}
	for i := 1; i < len(order); i++ {
		if order[i].Volatility() <= order[i-1].Volatility() {
			t.Fatalf("%s volatility not above %s", order[i], order[i-1])
		}
	}
	if RiskMinimal.Reversion() != 0.2 || RiskExtreme.Reversion() != 0.1 {
		t.Fatalf("unexpected reversion strengths")
	}
}

func TestTitle(t *testing.T) {
	c := Default()
	tests := []struct {
		attr  Attribute
		level int
		want  string
	}{
		{Knowledge, 1, "Clueless"},
		{Business, 10, "God of Commerce"},
		{Logic, 0, ""},
		{Art, 11, ""},
	}
	for _, tc := range tests {
		if got := c.Title(tc.attr, tc.level); got != tc.want {
			t.Fatalf("%s/%d got=%q want=%q", tc.attr, tc.level, got, tc.want)
		}
	}
}

func TestGoodsInCategory(t *testing.T) {
	c := Default()
	got := c.GoodsInCategory(CategoryTech)
	if len(got) != 2 {
		t.Fatalf("tech goods=%d want 2", len(got))
	}
	for _, g := range got {
		if g.Kind != KindProduct {
			t.Fatalf("%s kind=%s", g.ID, g.Kind)
		}
	}
}

func TestLoadOverridesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `
warehouses:
  - id: shed
    name: Shed
    capacity: 10
    price: 5
housing:
  - id: tent
    name: Tent
    rent: 1
    recovery_rate: 0.2
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := c.Warehouse("shed"); !ok {
		t.Fatalf("shed not indexed")
	}
	if _, ok := c.Warehouse("wh_small"); ok {
		t.Fatalf("warehouses section should replace defaults")
	}
	if _, ok := c.Good("wheat"); !ok {
		t.Fatalf("goods should keep defaults")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `
goods:
  - id: dust
    name: Dust
    base_price: 0
    risk: wobbly
    kind: commodity
    category: junk
companies: []
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
