package catalog

const (
	CategoryStable      = "stable"
	CategoryLowRisk     = "low_risk"
	CategoryMediumRisk  = "medium_risk"
	CategoryHighRisk    = "high_risk"
	CategoryExtremeRisk = "extreme_risk"

	CategoryEntry      = "entry"
	CategoryImproved   = "improved"
	CategoryInvestment = "investment"
	CategoryLuxury     = "luxury"

	CategoryConsumer = "consumer"
	CategoryTech     = "tech"
	CategoryServices = "services"
)

// Default returns the built-in catalog.
func Default() *Catalog {
	c := &Catalog{
		Goods:      defaultGoods(),
		Companies:  defaultCompanies(),
		Employees:  defaultEmployees(),
		Warehouses: defaultWarehouses(),
		Housing:    defaultHousing(),
		Jobs:       defaultJobs(),
		Titles:     defaultTitles(),
		IntelCategories: []string{
			CategoryTech, CategoryConsumer, CategoryStable,
			CategoryHighRisk, CategoryLowRisk, CategoryInvestment,
		},
	}
	c.index()
	return c
}

func commodity(id, name string, price float64, risk RiskClass, category, desc string) Good {
	return Good{ID: id, Name: name, BasePrice: price, Risk: risk, Kind: KindCommodity, Category: category, Description: desc}
}

func product(id, name string, price float64, risk RiskClass, category, desc string) Good {
	return Good{ID: id, Name: name, BasePrice: price, Risk: risk, Kind: KindProduct, Category: category, Description: desc}
}

func estate(id, name string, price float64, risk RiskClass, category string, bonus int, recovery, passive float64, desc string) Good {
	return Good{
		ID: id, Name: name, BasePrice: price, Risk: risk, Kind: KindRealEstate, Category: category, Description: desc,
		RealEstate: &RealEstate{MaxEnergyBonus: bonus, RecoveryRate: recovery, PassiveIncomeRate: passive},
	}
}

func defaultGoods() []Good {
	return []Good{
		commodity("wheat", "Wheat", 1.2, RiskStable, CategoryStable, "Staple grain with constant demand."),
		commodity("tap_water", "Tap Water", 0.1, RiskStable, CategoryStable, "Price-controlled necessity."),
		commodity("salt", "Salt", 2, RiskStable, CategoryStable, "Strategic reserve seasoning."),
		commodity("rice", "Rice", 2.5, RiskStable, CategoryStable, "Staple food, extremely stable."),

		commodity("coal", "Coal", 50, RiskLow, CategoryLowRisk, "Basic energy, follows industrial demand."),
		commodity("steel", "Steel", 80, RiskLow, CategoryLowRisk, "Construction bellwether."),
		commodity("fertilizer", "Fertilizer", 30, RiskLow, CategoryLowRisk, "Seasonal farm input."),
		commodity("paper", "Industrial Paper", 20, RiskLow, CategoryLowRisk, "Office and packaging demand."),
		commodity("glass", "Glass", 40, RiskLow, CategoryLowRisk, "Building and automotive input."),

		commodity("coffee", "Coffee Beans", 40, RiskMedium, CategoryMediumRisk, "Cash crop exposed to weather."),
		commodity("mobile_chip", "Mobile Chips", 300, RiskMedium, CategoryMediumRisk, "Supply-chain sensitive silicon."),
		commodity("timber", "Fine Timber", 150, RiskMedium, CategoryMediumRisk, "Furniture material tied to housing."),
		commodity("copper", "Copper", 60, RiskMedium, CategoryMediumRisk, "Macro barometer."),
		commodity("crude_oil", "Crude Oil", 70, RiskMedium, CategoryMediumRisk, "Geopolitically driven."),

		commodity("palladium", "Palladium", 2000, RiskHigh, CategoryHighRisk, "Scarce industrial catalyst."),
		commodity("drug_patent", "Drug Patent", 10000, RiskHigh, CategoryHighRisk, "Lives and dies by clinical trials."),
		commodity("tech_equity", "Tech Equity", 5000, RiskHigh, CategoryHighRisk, "Pre-IPO shares."),
		commodity("gold", "Gold", 400, RiskHigh, CategoryHighRisk, "Safe haven with violent short-term swings."),

		commodity("nft_art", "NFT Art", 1000, RiskExtreme, CategoryExtremeRisk, "Pure hype and consensus."),
		commodity("comet_mining", "Comet Mining Rights", 50000, RiskExtreme, CategoryExtremeRisk, "A bet on future space tech."),
		commodity("virtual_land", "Virtual Land", 8000, RiskExtreme, CategoryExtremeRisk, "Metaverse real estate."),
		commodity("crypto", "Crypto Token", 500, RiskExtreme, CategoryExtremeRisk, "Boom and bust digital token."),

		estate("village_room", "Village Room", 200000, RiskMinimal, CategoryEntry, 10, 0.8, 0, "A roof, no upside."),
		estate("old_1bed", "Old One-Bedroom", 400000, RiskMinimal, CategoryEntry, 15, 0.85, 0, "Dated but well located."),
		estate("boutique_apt", "Boutique Apartment", 1200000, RiskStable, CategoryImproved, 25, 0.95, 0, "Finished for the middle class."),
		estate("school_house", "School District House", 2500000, RiskStable, CategoryImproved, 20, 1.0, 0.001, "Holds value and pays a small rent."),
		estate("street_shop", "Street Shop", 5000000, RiskLow, CategoryInvestment, 0, 0.5, 0.003, "Steady rental cash flow."),
		estate("office_bldg", "Small Office Building", 15000000, RiskLow, CategoryInvestment, 0, 0.5, 0.0025, "Commercial tenants."),
		estate("island_villa", "Island Villa", 50000000, RiskMedium, CategoryLuxury, 50, 1.5, 0, "Private island retreat."),
		estate("historic_mansion", "Historic Mansion", 100000000, RiskHigh, CategoryLuxury, 10, 1.0, 0, "Collector's trophy."),

		product("processed_food", "Branded Food", 5, RiskLow, CategoryConsumer, "Processed branded food."),
		product("consumer_electronics", "Consumer Electronics", 800, RiskMedium, CategoryTech, "Smart wearables."),
		product("design_blueprint", "Design Blueprint", 5000, RiskHigh, CategoryServices, "High-end architectural designs."),
		product("software_suite", "Enterprise Software", 1000, RiskMedium, CategoryTech, "SaaS subscriptions."),
	}
}

func defaultCompanies() []CompanyType {
	return []CompanyType{
		{
			ID: "food_factory", Name: "Food Factory", Description: "Turns farm produce into branded food.",
			ReqAttribute: Business, ReqLevel: 3, ReqEstateCategory: CategoryEntry,
			StartupCost: 10000, BaseMonthlyCost: 1000,
			Materials: []Material{{GoodID: "wheat", Amount: 20}, {GoodID: "tap_water", Amount: 50}},
			ProductID: "processed_food", BaseProduction: 200,
		},
		{
			ID: "tech_studio", Name: "Software Studio", Description: "Builds enterprise software.",
			ReqAttribute: Logic, ReqLevel: 4, ReqEstateCategory: CategoryImproved,
			StartupCost: 50000, BaseMonthlyCost: 5000,
			Materials: []Material{{GoodID: "coffee", Amount: 10}},
			ProductID: "software_suite", BaseProduction: 20,
		},
		{
			ID: "design_firm", Name: "Design Firm", Description: "High-end architecture and art commissions.",
			ReqAttribute: Art, ReqLevel: 5, ReqEstateCategory: CategoryImproved,
			StartupCost: 80000, BaseMonthlyCost: 8000,
			Materials: []Material{{GoodID: "paper", Amount: 50}},
			ProductID: "design_blueprint", BaseProduction: 5,
		},
		{
			ID: "electronics_plant", Name: "Electronics Plant", Description: "Assembles consumer electronics.",
			ReqAttribute: Business, ReqLevel: 6, ReqEstateCategory: CategoryInvestment,
			StartupCost: 500000, BaseMonthlyCost: 20000,
			Materials: []Material{{GoodID: "mobile_chip", Amount: 10}, {GoodID: "glass", Amount: 20}},
			ProductID: "consumer_electronics", BaseProduction: 50,
		},
	}
}

func defaultEmployees() []Employee {
	return []Employee{
		{ID: "e1", Name: "Intern Lee", Salary: 3000, Buff: BuffEfficiency, BuffValue: 0.1, MinCompanyLevel: 1},
		{ID: "e2", Name: "Veteran Zhang", Salary: 5000, Buff: BuffEfficiency, BuffValue: 0.2, MinCompanyLevel: 1},
		{ID: "e3", Name: "Sales Rep Amy", Salary: 6000, Buff: BuffSales, BuffValue: 0.1, MinCompanyLevel: 1},
		{ID: "e4", Name: "Engineer Mike", Salary: 12000, Buff: BuffEfficiency, BuffValue: 0.4, MinCompanyLevel: 2},
		{ID: "e5", Name: "Senior Manager David", Salary: 20000, Buff: BuffSales, BuffValue: 0.3, MinCompanyLevel: 3},
		{ID: "e6", Name: "Industry Expert Dr. Wang", Salary: 50000, Buff: BuffEfficiency, BuffValue: 0.8, MinCompanyLevel: 4},
	}
}

func defaultWarehouses() []Warehouse {
	return []Warehouse{
		{ID: "wh_small", Name: "Storage Unit", Capacity: 100, Price: 200},
		{ID: "wh_medium", Name: "Depot", Capacity: 500, Price: 1000},
		{ID: "wh_large", Name: "Logistics Center", Capacity: 2000, Price: 4000},
	}
}

func defaultHousing() []Housing {
	return []Housing{
		{ID: "youth_apartment", Name: "Youth Apartment", Rent: 300, RecoveryRate: 0.5},
		{ID: "comfort_condo", Name: "Comfort Condo", Rent: 1500, RecoveryRate: 0.8},
		{ID: "luxury_flat", Name: "Luxury Flat", Rent: 5000, RecoveryRate: 1.0},
	}
}

func job(id, name, category string, salary float64, req map[Attribute]int) Job {
	return Job{ID: id, Name: name, Category: category, Salary: salary, EnergyCost: 60, Requirements: req}
}

func defaultJobs() []Job {
	return []Job{
		job("base_job", "Small Company Clerk", "basic", 1000, nil),
		job("edu_1", "Junior Teacher", "education", 2000, map[Attribute]int{Knowledge: 3}),
		job("edu_2", "Teacher", "education", 4000, map[Attribute]int{Knowledge: 5}),
		job("edu_3", "Senior Teacher", "education", 8000, map[Attribute]int{Knowledge: 7}),
		job("sport_1", "Junior Coach", "sports", 2500, map[Attribute]int{Physical: 3}),
		job("sport_2", "Coach", "sports", 5000, map[Attribute]int{Physical: 5}),
		job("sport_3", "Head Coach", "sports", 10000, map[Attribute]int{Physical: 7}),
		job("art_1", "Junior Illustrator", "art", 3000, map[Attribute]int{Art: 3}),
		job("art_2", "Illustrator", "art", 6000, map[Attribute]int{Art: 5}),
		job("art_3", "Lead Illustrator", "art", 12000, map[Attribute]int{Art: 7}),
		job("it_1", "Junior Programmer", "it", 3500, map[Attribute]int{Logic: 3}),
		job("it_2", "Programmer", "it", 7000, map[Attribute]int{Logic: 5}),
		job("it_3", "Senior Programmer", "it", 14000, map[Attribute]int{Logic: 7}),
		job("sales_1", "Junior Salesperson", "sales", 4000, map[Attribute]int{Business: 3}),
		job("sales_2", "Salesperson", "sales", 8000, map[Attribute]int{Business: 5}),
		job("sales_3", "Senior Salesperson", "sales", 16000, map[Attribute]int{Business: 7}),
		job("mgr_1", "Junior Manager", "management", 6000, map[Attribute]int{Knowledge: 3, Business: 3, Logic: 3}),
		job("mgr_2", "Manager", "management", 12000, map[Attribute]int{Knowledge: 5, Business: 5, Logic: 5}),
		job("mgr_3", "Senior Manager", "management", 24000, map[Attribute]int{Knowledge: 7, Business: 7, Logic: 7}),
		job("art_agent", "Art Agent", "management", 10000, map[Attribute]int{Art: 4, Business: 4}),
		job("nobel", "Nobel Laureate", "pinnacle", 30000, map[Attribute]int{Knowledge: 9, Art: 5}),
		job("olympian", "Olympic Champion", "pinnacle", 40000, map[Attribute]int{Physical: 9}),
		job("ceo", "Multinational CEO", "pinnacle", 50000, map[Attribute]int{Knowledge: 8, Business: 8, Logic: 8}),
	}
}

func defaultTitles() map[Attribute][]string {
	return map[Attribute][]string{
		Knowledge: {
			"Clueless", "Dabbler", "Apprentice Scholar", "Well Read", "Brilliant",
			"Erudite", "Beacon of Wisdom", "Academic Authority", "Grandmaster", "Teacher of Ages",
		},
		Physical: {
			"Frail", "Barely Mobile", "Healthy", "Sturdy", "Mighty",
			"Athlete", "Superhuman", "Human Limit", "Limit Breaker", "Living Legend",
		},
		Art: {
			"No Taste", "Novice", "Art Lover", "Bohemian", "Gifted",
			"Artist", "Master Artist", "School Founder", "Titan of Art", "Muse Incarnate",
		},
		Logic: {
			"Muddled", "Orderly", "Clear Thinker", "Quick Witted", "Sharp Reasoner",
			"Logician", "Calculating Genius", "Analyst", "Strategist", "Oracle",
		},
		Business: {
			"Greenhorn", "Beginner", "Shopkeeper", "Trader", "Business Elite",
			"Entrepreneur", "Tycoon", "Capital Shark", "Monopolist", "God of Commerce",
		},
	}
}
