package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"tycoon/internal/catalog"
	"tycoon/internal/config"
	"tycoon/internal/game"
	"tycoon/internal/session"
	"tycoon/internal/store"

	"github.com/spf13/cobra"
)

// app holds the session opened for the current invocation.
type app struct {
	store store.Store
	sess  *session.Session
}

func main() {
	a := &app{}
	var storeURL, slot string

	root := &cobra.Command{
		Use:          "tycoon",
		Short:        "Turn-based trading and business tycoon",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("store") {
				cfg.StoreURL = storeURL
			}
			if cmd.Flags().Changed("slot") {
				cfg.Slot = slot
			}
			return a.open(cmd.Context(), cfg)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return nil
			}
			return a.store.Close()
		},
	}
	root.PersistentFlags().StringVar(&storeURL, "store", store.DefaultURL, "save store URL (file:, sqlite:, postgres://)")
	root.PersistentFlags().StringVar(&slot, "slot", "default", "save slot name")

	root.AddCommand(
		newNewCmd(a),
		newStatusCmd(a),
		newMarketCmd(a),
		newTradeCmd(a, game.Buy),
		newTradeCmd(a, game.Sell),
		newMortgageCmd(a),
		newLoanCmd(a),
		newCompanyCmd(a),
		newTrainCmd(a),
		newWorkCmd(a),
		newHouseCmd(a),
		newWarehouseCmd(a),
		newIntelCmd(a),
		newNextCmd(a),
		newCatalogCmd(a),
		newSavesCmd(a),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		printError(fmt.Sprintf("error: %v", err))
		os.Exit(1)
	}
}

func (a *app) open(ctx context.Context, cfg config.Config) error {
	// Rejections are reported on stdout; only real failures reach stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := store.Open(ctx, cfg.StoreURL, logger)
	if err != nil {
		return err
	}
	engine, err := cfg.Engine(logger)
	if err != nil {
		st.Close()
		return err
	}
	sess, err := session.Open(ctx, engine, st, cfg.Slot, logger)
	if err != nil {
		st.Close()
		return err
	}
	a.store, a.sess = st, sess
	return nil
}

func (a *app) engine() *game.Engine {
	return a.sess.Engine()
}

// apply runs one engine action and reports the newest log line on success.
func (a *app) apply(cmd *cobra.Command, name string, fn session.Action) (game.State, error) {
	before := newestLog(a.sess.State())
	st, err := a.sess.Apply(cmd.Context(), name, fn)
	if err != nil {
		return st, explain(err)
	}
	if latest := newestLog(st); latest != "" && latest != before {
		printSuccess(latest)
	} else {
		printSuccess("Done.")
	}
	return st, nil
}

func newestLog(s game.State) string {
	if len(s.Logs) == 0 {
		return ""
	}
	return s.Logs[0]
}

// explain turns a rejection into a short player-facing message.
func explain(err error) error {
	var rej *game.Rejection
	if errors.As(err, &rej) {
		if errors.Is(err, game.ErrMissingPrerequisite) {
			return fmt.Errorf("%w (see `tycoon warehouse` and `tycoon house`)", err)
		}
		if errors.Is(err, game.ErrSettlementPending) {
			return fmt.Errorf("%w (finish the month with `tycoon next`)", err)
		}
	}
	return err
}

func newNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new game in the current slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.sess.Reset(cmd.Context()); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("New game started in slot %q.", a.sess.Slot()))
			return renderStatus(a.engine(), a.sess.State())
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show your dashboard",
		Aliases: []string{"dash"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderStatus(a.engine(), a.sess.State())
		},
	}
}

func newMarketCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "market [good]",
		Short: "List market prices or inspect one good",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.sess.State()
			if len(args) == 0 {
				return renderMarket(a.engine().Catalog(), st)
			}
			g, ok := a.engine().Catalog().Good(strings.TrimSpace(args[0]))
			if !ok {
				return fmt.Errorf("%w: %s", game.ErrUnknownGood, args[0])
			}
			return renderGood(g, st)
		},
	}
}

func newTradeCmd(a *app, side game.Side) *cobra.Command {
	verb := string(side)
	return &cobra.Command{
		Use:   verb + " <good> <qty>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " goods at the current price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := positiveInt(args[1], "quantity")
			if err != nil {
				return err
			}
			good := strings.TrimSpace(args[0])
			_, err = a.apply(cmd, "trade", func(s game.State) (game.State, error) {
				return a.engine().Trade(s, good, side, qty)
			})
			return err
		},
	}
}

func newMortgageCmd(a *app) *cobra.Command {
	var down float64
	var months int
	cmd := &cobra.Command{
		Use:   "mortgage <good>",
		Short: "Buy one unit of real estate with a mortgage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			good := strings.TrimSpace(args[0])
			st := a.sess.State()
			if !cmd.Flags().Changed("down") {
				if g, ok := a.engine().Catalog().Good(good); ok {
					down = math.Ceil(game.MinDownPaymentRatio*st.Market.Prices[g.ID]*100) / 100
				}
			}
			if !cmd.Flags().Changed("months") {
				months = game.MaxMortgageTerm(st.CreditScore)
			}
			_, err := a.apply(cmd, "mortgage", func(s game.State) (game.State, error) {
				return a.engine().Mortgage(s, good, down, months)
			})
			return err
		},
	}
	cmd.Flags().Float64Var(&down, "down", 0, "down payment (default: the minimum)")
	cmd.Flags().IntVar(&months, "months", 0, "term in months (default: the longest allowed)")
	return cmd
}

func newLoanCmd(a *app) *cobra.Command {
	loans := &cobra.Command{
		Use:     "loan",
		Short:   "Loan commands",
		Aliases: []string{"loans"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderLoans(a.sess.State())
		},
	}
	loans.AddCommand(&cobra.Command{
		Use:   "take <amount> <months>",
		Short: "Borrow cash at the fixed rate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
			if err != nil || amount <= 0 {
				return fmt.Errorf("invalid amount")
			}
			months, err := positiveInt(args[1], "months")
			if err != nil {
				return err
			}
			_, err = a.apply(cmd, "take_loan", func(s game.State) (game.State, error) {
				return a.engine().TakeLoan(s, amount, months)
			})
			return err
		},
	})
	loans.AddCommand(&cobra.Command{
		Use:   "repay <id>",
		Short: "Pay off a loan early",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := loanIDFromPrefix(a.sess.State(), args[0])
			_, err := a.apply(cmd, "repay_loan", func(s game.State) (game.State, error) {
				return a.engine().RepayLoanEarly(s, id)
			})
			return err
		},
	})
	return loans
}

func newCompanyCmd(a *app) *cobra.Command {
	company := &cobra.Command{
		Use:     "company",
		Short:   "Company commands",
		Aliases: []string{"companies"},
	}
	company.AddCommand(&cobra.Command{
		Use:   "create <type>",
		Short: "Found a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeID := strings.TrimSpace(args[0])
			_, err := a.apply(cmd, "create_company", func(s game.State) (game.State, error) {
				return a.engine().CreateCompany(s, typeID)
			})
			return err
		},
	})
	company.AddCommand(&cobra.Command{
		Use:   "hire <company> <employee>",
		Short: "Hire an employee into a company",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID := companyIDFromPrefix(a.sess.State(), args[0])
			employeeID := strings.TrimSpace(args[1])
			_, err := a.apply(cmd, "hire_employee", func(s game.State) (game.State, error) {
				return a.engine().HireEmployee(s, companyID, employeeID)
			})
			return err
		},
	})
	company.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderCompanies(a.engine().Catalog(), a.sess.State())
		},
	})
	return company
}

func newTrainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "train <attribute>",
		Short:     "Spend energy training an attribute",
		Args:      cobra.ExactArgs(1),
		ValidArgs: attributeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			attr := catalog.Attribute(strings.ToLower(strings.TrimSpace(args[0])))
			_, err := a.apply(cmd, "train", func(s game.State) (game.State, error) {
				return a.engine().TrainAttribute(s, attr)
			})
			return err
		},
	}
}

func newWorkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "work [job]",
		Short: "List jobs or work one shift",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return renderJobs(a.engine().Catalog(), a.sess.State())
			}
			jobID := strings.TrimSpace(args[0])
			_, err := a.apply(cmd, "work", func(s game.State) (game.State, error) {
				return a.engine().WorkJob(s, jobID)
			})
			return err
		},
	}
}

func newHouseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "house [id]",
		Short:   "List housing or move in",
		Aliases: []string{"home"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return renderHousing(a.engine().Catalog(), a.sess.State())
			}
			id := strings.TrimSpace(args[0])
			_, err := a.apply(cmd, "set_accommodation", func(s game.State) (game.State, error) {
				return a.engine().SetAccommodation(s, id)
			})
			return err
		},
	}
}

func newWarehouseCmd(a *app) *cobra.Command {
	wh := &cobra.Command{
		Use:     "warehouse",
		Short:   "List warehouses and your capacity",
		Aliases: []string{"warehouses"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderWarehouses(a.engine(), a.sess.State())
		},
	}
	wh.AddCommand(&cobra.Command{
		Use:   "buy <id>",
		Short: "Buy a warehouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			_, err := a.apply(cmd, "buy_warehouse", func(s game.State) (game.State, error) {
				return a.engine().BuyWarehouse(s, id)
			})
			return err
		},
	})
	return wh
}

func newIntelCmd(a *app) *cobra.Command {
	var readID string
	var all bool
	cmd := &cobra.Command{
		Use:   "intel",
		Short: "Show market intelligence",
		RunE: func(cmd *cobra.Command, args []string) error {
			if readID != "" {
				id := intelIDFromPrefix(a.sess.State(), readID)
				_, err := a.apply(cmd, "read_intel", func(s game.State) (game.State, error) {
					return a.engine().MarkIntelRead(s, id)
				})
				return err
			}
			return renderIntel(a.sess.State(), all)
		},
	}
	cmd.Flags().StringVar(&readID, "read", "", "mark a signal as read")
	cmd.Flags().BoolVar(&all, "all", false, "include expired and upcoming signals")
	return cmd
}

func newNextCmd(a *app) *cobra.Command {
	var pay string
	var interactive bool
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Close the month and settle bills",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st := a.sess.State()
			if _, pending := st.Phase.(game.PendingSettlement); !pending {
				var preview game.MonthPreview
				var err error
				st, preview, err = a.sess.Advance(ctx)
				if err != nil {
					return explain(err)
				}
				renderPreview(preview, st.Cash)
			} else {
				printWarn("Month already closed, settling pending bills.")
			}

			bills := game.PendingBills(st)
			var ids []string
			if interactive && isTerminal() && len(bills) > 0 {
				picked, err := pickBills(bills, st.Cash)
				if err != nil {
					return err
				}
				ids = picked
			} else {
				picked, err := parsePay(pay, bills, st.Cash)
				if err != nil {
					return err
				}
				ids = picked
			}

			next, err := a.sess.Settle(ctx, ids)
			if err != nil {
				return explain(err)
			}
			return renderMonthResult(a.engine(), next)
		},
	}
	cmd.Flags().StringVar(&pay, "pay", "affordable", "bills to pay: all, none, affordable or comma separated ids")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick bills in a terminal UI")
	return cmd
}

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show companies, employees, jobs, housing and warehouses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderCatalog(a.engine().Catalog())
		},
	}
}

func newSavesCmd(a *app) *cobra.Command {
	saves := &cobra.Command{
		Use:   "saves",
		Short: "List save slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			return renderSaves(infos, a.sess.Slot())
		},
	}
	saves.AddCommand(&cobra.Command{
		Use:   "delete <slot>",
		Short: "Delete a save slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot := strings.TrimSpace(args[0])
			if slot == a.sess.Slot() {
				return fmt.Errorf("slot %q is in use; pass --slot to open another", slot)
			}
			if err := a.store.Delete(cmd.Context(), slot); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Deleted slot %q.", slot))
			return nil
		},
	})
	return saves
}

// parsePay resolves the --pay flag against the pending bills.
func parsePay(pay string, bills []game.Bill, cash float64) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(pay)) {
	case "", "affordable":
		return game.AffordableBills(bills, cash), nil
	case "all":
		ids := make([]string, 0, len(bills))
		for _, b := range bills {
			ids = append(ids, b.ID)
		}
		return ids, nil
	case "none":
		return nil, nil
	}
	known := make(map[string]struct{}, len(bills))
	for _, b := range bills {
		known[b.ID] = struct{}{}
	}
	var ids []string
	for _, part := range strings.Split(pay, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: %s", game.ErrUnknownBill, id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func positiveInt(arg, label string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", label)
	}
	return v, nil
}

// Ids are uuids; a unique prefix is enough on the command line.
func loanIDFromPrefix(s game.State, prefix string) string {
	ids := make([]string, 0, len(s.Loans))
	for _, l := range s.Loans {
		ids = append(ids, l.ID)
	}
	return matchPrefix(ids, prefix)
}

func companyIDFromPrefix(s game.State, prefix string) string {
	ids := make([]string, 0, len(s.Companies))
	for _, c := range s.Companies {
		ids = append(ids, c.ID)
	}
	return matchPrefix(ids, prefix)
}

func intelIDFromPrefix(s game.State, prefix string) string {
	ids := make([]string, 0, len(s.Intelligence))
	for _, in := range s.Intelligence {
		ids = append(ids, in.ID)
	}
	return matchPrefix(ids, prefix)
}

func matchPrefix(ids []string, prefix string) string {
	prefix = strings.TrimSpace(prefix)
	match := ""
	for _, id := range ids {
		if id == prefix {
			return id
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return prefix
			}
			match = id
		}
	}
	if match == "" {
		return prefix
	}
	return match
}

func attributeNames() []string {
	out := make([]string, 0, len(catalog.Attributes))
	for _, a := range catalog.Attributes {
		out = append(out, string(a))
	}
	return out
}
