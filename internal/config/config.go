package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"tycoon/internal/catalog"
	"tycoon/internal/game"
	"tycoon/internal/store"
)

type Config struct {
	Addr        string
	StoreURL    string
	Slot        string
	Seed        int64
	CatalogPath string
	LogLevel    slog.Level

	RetirementAgeYears int
	StartingCash       float64
	PriceHistory       int

	SimMonths    int
	SimRunOnce   bool
	SimTickEvery time.Duration
}

func LoadFromEnv() (Config, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("TYCOON_API_ADDR", ":8080")
	}

	rules := game.DefaultRules()
	cfg := Config{
		Addr:               addr,
		StoreURL:           envDefault("TYCOON_STORE", store.DefaultURL),
		Slot:               envDefault("TYCOON_SLOT", "default"),
		Seed:               envInt64Default("TYCOON_SEED", 0),
		CatalogPath:        strings.TrimSpace(os.Getenv("TYCOON_CATALOG")),
		LogLevel:           envLevelDefault("TYCOON_LOG_LEVEL", slog.LevelInfo),
		RetirementAgeYears: envIntDefault("TYCOON_RETIREMENT_AGE_YEARS", rules.RetirementAgeYears),
		StartingCash:       envFloatDefault("TYCOON_STARTING_CASH", rules.StartingCash),
		PriceHistory:       envIntDefault("TYCOON_PRICE_HISTORY", rules.PriceHistoryLen),
		SimMonths:          envIntDefault("TYCOON_SIM_MONTHS", 0),
		SimRunOnce:         envBoolDefault("TYCOON_SIM_RUN_ONCE", false),
		SimTickEvery:       envDurationDefault("TYCOON_SIM_TICK_EVERY", 0),
	}
	if cfg.RetirementAgeYears <= rules.StartingAgeYears {
		return cfg, fmt.Errorf("TYCOON_RETIREMENT_AGE_YEARS must be above %d", rules.StartingAgeYears)
	}
	if cfg.StartingCash < 0 {
		return cfg, fmt.Errorf("TYCOON_STARTING_CASH must be >= 0")
	}
	if cfg.PriceHistory < 1 {
		return cfg, fmt.Errorf("TYCOON_PRICE_HISTORY must be >= 1")
	}
	if cfg.SimMonths < 0 {
		return cfg, fmt.Errorf("TYCOON_SIM_MONTHS must be >= 0")
	}
	return cfg, nil
}

// Rules converts the tunables into engine rules.
func (c Config) Rules() game.Rules {
	rules := game.DefaultRules()
	rules.RetirementAgeYears = c.RetirementAgeYears
	rules.StartingCash = c.StartingCash
	rules.PriceHistoryLen = c.PriceHistory
	return rules
}

// Catalog loads the configured catalog, or the built-in one.
func (c Config) Catalog() (*catalog.Catalog, error) {
	if c.CatalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(c.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", c.CatalogPath, err)
	}
	return cat, nil
}

func (c Config) Engine(logger *slog.Logger) (*game.Engine, error) {
	cat, err := c.Catalog()
	if err != nil {
		return nil, err
	}
	return game.NewEngine(cat, c.Rules(), game.NewRand(c.Seed), logger), nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envLevelDefault(key string, fallback slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return level
}
