package game

var endGameTitles = []struct {
	below float64
	title string
}{
	{0, "Debt Slave"},
	{5_000, "Pauper"},
	{50_000, "Working Stiff"},
	{200_000, "Comfortable"},
	{1_000_000, "Millionaire"},
	{10_000_000, "Magnate"},
	{100_000_000, "Tycoon"},
}

// EndGameTitle ranks a retirement by total assets.
func EndGameTitle(totalAssets float64) string {
	for _, t := range endGameTitles {
		if totalAssets < t.below {
			return t.title
		}
	}
	return "Billionaire"
}
