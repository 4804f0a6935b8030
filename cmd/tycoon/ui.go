package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"tycoon/internal/catalog"
	"tycoon/internal/game"
	"tycoon/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)

	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Padding(0, 1)
	panelTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	dim        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Fprintln(os.Stderr, msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// box renders a titled panel.
func box(title string, lines ...string) string {
	body := append([]string{panelTitle.Render(title)}, lines...)
	return panel.Render(strings.Join(body, "\n"))
}

func renderStatus(eng *game.Engine, st game.State) error {
	sum := eng.Summarize(st)

	home := sum.Accommodation
	if home == "" {
		home = "none"
	}
	player := box("PLAYER",
		fmt.Sprintf("Age:      %d years %d months", sum.Years, sum.Month),
		fmt.Sprintf("Energy:   %d / %d", sum.Energy, sum.MaxEnergy),
		fmt.Sprintf("Home:     %s", home),
		fmt.Sprintf("Storage:  %d / %d", sum.UsedCapacity, sum.WarehouseCapacity),
		fmt.Sprintf("Phase:    %s", sum.Phase),
	)
	money := box("FINANCES",
		fmt.Sprintf("Cash:         %s", formatMoney(sum.Cash)),
		fmt.Sprintf("Total assets: %s", formatMoney(sum.TotalAssets)),
		fmt.Sprintf("Last month:   %s", colorizeMoney(sum.LastMonthNet)),
		fmt.Sprintf("Credit score: %d", sum.CreditScore),
		fmt.Sprintf("Loan limit:   %s", formatMoney(sum.MaxLoan)),
		fmt.Sprintf("Unpaid bills: %d", sum.UnpaidBills),
	)

	attrs := make([]string, 0, len(catalog.Attributes))
	for _, a := range catalog.Attributes {
		lvl := st.Attributes[a]
		attrs = append(attrs, fmt.Sprintf("%-10s L%-2d xp %2d/%-3d %s",
			a, lvl.Level, lvl.XP, lvl.Level*game.XPScaleFactor,
			dim.Render(eng.Catalog().Title(a, lvl.Level))))
	}
	skills := box("ATTRIBUTES", attrs...)

	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, player, money))
	fmt.Println(skills)

	if sum.Title != "" {
		accent.Printf("Retired as %s\n", sum.Title)
	}
	if len(sum.MissingPrerequisites) > 0 {
		printWarn("Before trading or working you still need: " + strings.Join(sum.MissingPrerequisites, ", "))
	}
	if n := len(game.ActiveIntel(st.Intelligence, st.Age)); n > 0 {
		printInfo(fmt.Sprintf("%d active intelligence signals (tycoon intel).", n))
	}

	if len(st.Logs) > 0 {
		fmt.Println()
		accent.Println("Recent events")
		for _, line := range st.Logs[:min(5, len(st.Logs))] {
			fmt.Println("  " + line)
		}
	}
	fmt.Println()
	return nil
}

func renderMarket(cat *catalog.Catalog, st game.State) error {
	accent.Printf("\n== MARKET (%d goods) ==\n", len(cat.Goods))
	fmt.Printf("%-18s %-26s %-12s %-8s %12s %9s %6s %s\n", "ID", "NAME", "KIND", "RISK", "PRICE", "CHANGE", "HELD", "TREND")
	for _, g := range cat.Goods {
		price := st.Market.Prices[g.ID]
		hist := st.Market.History[g.ID]
		change := 0.0
		if len(hist) > 1 && hist[len(hist)-2] != 0 {
			prev := hist[len(hist)-2]
			change = (price - prev) / prev * 100
		}
		fmt.Printf("%-18s %-26s %-12s %-8s %12s %9s %6d %s\n",
			g.ID,
			truncate(g.Name, 26),
			g.Kind,
			g.Risk,
			formatMoney(price),
			colorizePercent(change),
			st.Inventory[g.ID].Quantity,
			sparkline(hist, 12),
		)
	}
	fmt.Println()
	return nil
}

func renderGood(g catalog.Good, st game.State) error {
	price := st.Market.Prices[g.ID]
	item := st.Inventory[g.ID]

	lines := []string{
		dim.Render(g.Description),
		fmt.Sprintf("Kind:      %s (%s)", g.Kind, g.Category),
		fmt.Sprintf("Risk:      %s", g.Risk),
		fmt.Sprintf("Base:      %s", formatMoney(g.BasePrice)),
		fmt.Sprintf("Price:     %s", formatMoney(price)),
		fmt.Sprintf("Trend:     %s", sparkline(st.Market.History[g.ID], 20)),
	}
	if item.Quantity > 0 {
		pl := (price - item.AvgCost) * float64(item.Quantity)
		lines = append(lines,
			fmt.Sprintf("Held:      %d @ %s", item.Quantity, formatMoney(item.AvgCost)),
			fmt.Sprintf("P/L:       %s", colorizeMoney(pl)),
		)
	}
	if re := g.RealEstate; re != nil {
		lines = append(lines,
			fmt.Sprintf("Energy:    +%d max", re.MaxEnergyBonus),
			fmt.Sprintf("Recovery:  %.0f%%", re.RecoveryRate*100),
			fmt.Sprintf("Income:    %.2f%% of price monthly", re.PassiveIncomeRate*100),
		)
	}
	for _, in := range game.ActiveIntel(st.Intelligence, st.Age) {
		if in.Targets(g) {
			lines = append(lines, warn.Sprintf("Signal:    %s (%s)", in.Content, in.Direction))
		}
	}
	fmt.Println(box(strings.ToUpper(g.Name), lines...))
	return nil
}

func renderLoans(st game.State) error {
	accent.Println("\n== LOANS ==")
	if len(st.Loans) == 0 {
		printInfo("No loans.")
		return nil
	}
	fmt.Printf("%-10s %-20s %12s %12s %10s %8s\n", "ID", "NAME", "PRINCIPAL", "REMAINING", "MONTHLY", "MONTHS")
	for _, l := range st.Loans {
		name := l.Name
		if name == "" {
			name = "loan"
		}
		fmt.Printf("%-10s %-20s %12s %12s %10s %8d\n",
			shortID(l.ID),
			truncate(name, 20),
			formatMoney(l.Principal),
			formatMoney(l.RemainingAmount),
			formatMoney(l.MonthlyPayment),
			l.MonthsRemaining,
		)
	}
	fmt.Println()
	return nil
}

func renderCompanies(cat *catalog.Catalog, st game.State) error {
	accent.Println("\n== COMPANIES ==")
	if len(st.Companies) == 0 {
		printInfo("No companies yet. See `tycoon catalog` for company types.")
		return nil
	}
	fmt.Printf("%-10s %-24s %-14s %6s %10s %14s\n", "ID", "NAME", "PRODUCES", "LEVEL", "STAFF", "TOTAL PROFIT")
	for _, c := range st.Companies {
		product := ""
		if t, ok := cat.CompanyType(c.TypeID); ok {
			product = t.ProductID
		}
		fmt.Printf("%-10s %-24s %-14s %6d %10d %14s\n",
			shortID(c.ID),
			truncate(c.Name, 24),
			truncate(product, 14),
			c.Level,
			len(c.Employees),
			colorizeMoney(c.TotalProfit),
		)
	}
	fmt.Println()
	return nil
}

func renderJobs(cat *catalog.Catalog, st game.State) error {
	accent.Println("\n== JOBS ==")
	fmt.Printf("%-12s %-22s %-12s %10s %7s %s\n", "ID", "NAME", "CATEGORY", "SALARY", "ENERGY", "REQUIRES")
	for _, j := range cat.Jobs {
		reqs := make([]string, 0, len(j.Requirements))
		qualified := true
		for _, a := range catalog.Attributes {
			need, ok := j.Requirements[a]
			if !ok {
				continue
			}
			reqs = append(reqs, fmt.Sprintf("%s %d", a, need))
			if st.Attributes[a].Level < need {
				qualified = false
			}
		}
		line := fmt.Sprintf("%-12s %-22s %-12s %10s %7d %s",
			j.ID, truncate(j.Name, 22), j.Category, formatMoney(j.Salary), j.EnergyCost, strings.Join(reqs, ", "))
		if qualified {
			success.Println(line)
		} else {
			fmt.Println(dim.Render(line))
		}
	}
	fmt.Println()
	return nil
}

func renderHousing(cat *catalog.Catalog, st game.State) error {
	accent.Println("\n== HOUSING ==")
	fmt.Printf("%-2s %-20s %-22s %10s %9s\n", "", "ID", "NAME", "RENT", "RECOVERY")
	for _, h := range cat.Housing {
		fmt.Printf("%-2s %-20s %-22s %10s %8.0f%%\n", marker(h.ID == st.Accommodation), h.ID, h.Name, formatMoney(h.Rent), h.RecoveryRate*100)
	}
	for _, g := range cat.Goods {
		if !g.IsRealEstate() || st.Inventory[g.ID].Quantity == 0 {
			continue
		}
		rate := game.DefaultRecoveryRate
		if g.RealEstate != nil && g.RealEstate.RecoveryRate > 0 {
			rate = g.RealEstate.RecoveryRate
		}
		fmt.Printf("%-2s %-20s %-22s %10s %8.0f%%\n", marker(g.ID == st.Accommodation), g.ID, truncate(g.Name, 22), "owned", rate*100)
	}
	fmt.Println()
	return nil
}

func renderWarehouses(eng *game.Engine, st game.State) error {
	accent.Println("\n== WAREHOUSES ==")
	fmt.Printf("%-12s %-20s %9s %10s %6s\n", "ID", "NAME", "CAPACITY", "PRICE", "OWNED")
	for _, w := range eng.Catalog().Warehouses {
		fmt.Printf("%-12s %-20s %9d %10s %6d\n", w.ID, w.Name, w.Capacity, formatMoney(w.Price), st.Warehouses[w.ID])
	}
	fmt.Printf("\nUsing %d of %d units.\n\n", eng.UsedCapacity(st), eng.WarehouseCapacity(st))
	return nil
}

func renderIntel(st game.State, all bool) error {
	list := st.Intelligence
	if !all {
		list = game.ActiveIntel(st.Intelligence, st.Age)
	}
	accent.Println("\n== INTELLIGENCE ==")
	if len(list) == 0 {
		printInfo("No signals right now.")
		return nil
	}
	fmt.Printf("%-2s %-10s %-10s %-5s %-9s %s\n", "", "ID", "SOURCE", "DIR", "WINDOW", "CONTENT")
	for _, in := range list {
		dir := success.Sprint("up")
		if in.Direction == game.Down {
			dir = danger.Sprint("down")
		}
		window := fmt.Sprintf("%d-%d", in.StartMonth-st.Age, in.EndMonth-st.Age)
		fmt.Printf("%-2s %-10s %-10s %-5s %-9s %s\n", marker(!in.Read), shortID(in.ID), truncate(in.Source, 10), dir, window, in.Content)
	}
	fmt.Println(dim.Render("Window is in months from now. * marks unread signals."))
	fmt.Println()
	return nil
}

func renderPreview(p game.MonthPreview, cash float64) {
	lines := reportLines(p.Report)
	lines = append(lines, "")
	if len(p.Bills) == 0 {
		lines = append(lines, "No bills due.")
	}
	for _, b := range p.Bills {
		overdue := ""
		if b.MonthsOverdue > 0 {
			overdue = danger.Sprintf(" (%d months overdue)", b.MonthsOverdue)
		}
		lines = append(lines, fmt.Sprintf("%-28s %10s%s", truncate(b.Name, 28), formatMoney(b.Amount), overdue))
	}
	lines = append(lines, fmt.Sprintf("%-28s %10s", "Total due", formatMoney(p.Total)))
	lines = append(lines, fmt.Sprintf("%-28s %10s", "Cash", formatMoney(cash)))
	fmt.Println(box("MONTH END", lines...))
}

func renderMonthResult(eng *game.Engine, st game.State) error {
	if t, ok := st.Phase.(game.Terminal); ok {
		fmt.Println(box("RETIRED",
			fmt.Sprintf("You retired at %d as: %s", st.Age/game.MonthsPerYear, t.Title),
			fmt.Sprintf("Total assets: %s", formatMoney(eng.TotalAssets(st))),
		))
		return nil
	}
	lines := reportLines(st.LastReport)
	lines = append(lines, "", fmt.Sprintf("Cash now: %s   Energy: %d/%d   Unpaid bills: %d",
		formatMoney(st.Cash), st.Energy, st.MaxEnergy, st.UnpaidBillCount))
	fmt.Println(box(fmt.Sprintf("REPORT, AGE %d/%d", st.Age/game.MonthsPerYear, st.Age%game.MonthsPerYear), lines...))
	if st.UnpaidBillCount > 0 {
		printWarn("Unpaid bills carry over and lower your credit score.")
	}
	return nil
}

func reportLines(r game.FinancialReport) []string {
	return []string{
		fmt.Sprintf("%-12s %10s   %-12s %10s", "Trade", formatMoney(r.Income.Trade), "Trade", formatMoney(r.Expense.Trade)),
		fmt.Sprintf("%-12s %10s   %-12s %10s", "Salary", formatMoney(r.Income.Salary), "Bills", formatMoney(r.Expense.Bills)),
		fmt.Sprintf("%-12s %10s   %-12s %10s", "Rent", formatMoney(r.Income.Rent), "Business", formatMoney(r.Expense.Business)),
		fmt.Sprintf("%-12s %10s   %-12s %10s", "Business", formatMoney(r.Income.Business), "Other", formatMoney(r.Expense.Other)),
		fmt.Sprintf("%-12s %s", "Net", colorizeMoney(r.Net())),
	}
}

func renderCatalog(cat *catalog.Catalog) error {
	accent.Println("\n== COMPANY TYPES ==")
	fmt.Printf("%-16s %-22s %-12s %-14s %10s %10s\n", "ID", "NAME", "REQUIRES", "PRODUCES", "STARTUP", "MONTHLY")
	for _, c := range cat.Companies {
		fmt.Printf("%-16s %-22s %-12s %-14s %10s %10s\n",
			c.ID, truncate(c.Name, 22), fmt.Sprintf("%s %d", c.ReqAttribute, c.ReqLevel),
			truncate(c.ProductID, 14), formatMoney(c.StartupCost), formatMoney(c.BaseMonthlyCost))
	}

	accent.Println("\n== EMPLOYEES ==")
	fmt.Printf("%-16s %-22s %10s %-12s %8s %6s\n", "ID", "NAME", "SALARY", "BUFF", "VALUE", "LEVEL")
	for _, e := range cat.Employees {
		fmt.Printf("%-16s %-22s %10s %-12s %8.2f %6d\n",
			e.ID, truncate(e.Name, 22), formatMoney(e.Salary), e.Buff, e.BuffValue, e.MinCompanyLevel)
	}

	accent.Println("\n== CATEGORIES ==")
	cats := cat.Categories()
	sort.Strings(cats)
	fmt.Println(strings.Join(cats, ", "))
	fmt.Println()
	return nil
}

func renderSaves(infos []store.SlotInfo, current string) error {
	accent.Println("\n== SAVES ==")
	if len(infos) == 0 {
		printInfo("No saves yet.")
		return nil
	}
	fmt.Printf("%-2s %-20s %8s %12s %-20s %-16s\n", "", "SLOT", "AGE", "CASH", "PHASE", "SAVED")
	for _, in := range infos {
		fmt.Printf("%-2s %-20s %8s %12s %-20s %-16s\n",
			marker(in.Slot == current),
			truncate(in.Slot, 20),
			fmt.Sprintf("%d/%d", in.Age/game.MonthsPerYear, in.Age%game.MonthsPerYear),
			formatMoney(in.Cash),
			in.Phase,
			in.SavedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Println()
	return nil
}

func marker(on bool) string {
	if on {
		return "*"
	}
	return ""
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline draws the last n history points scaled to their own range.
func sparkline(hist []float64, n int) string {
	if len(hist) > n {
		hist = hist[len(hist)-n:]
	}
	if len(hist) == 0 {
		return ""
	}
	lo, hi := hist[0], hist[0]
	for _, v := range hist {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	var b strings.Builder
	for _, v := range hist {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func colorizeMoney(v float64) string {
	text := formatMoney(v)
	switch {
	case v > 0:
		return success.Sprint("+" + text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatMoney(v float64) string {
	sign := ""
	cents := int64(v*100 + 0.5)
	if v < 0 {
		sign = "-"
		cents = int64(-v*100 + 0.5)
	}
	return fmt.Sprintf("%s%s.%02d", sign, comma(cents/100), cents%100)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
