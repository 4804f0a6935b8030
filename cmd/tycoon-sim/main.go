package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tycoon/internal/autopilot"
	"tycoon/internal/config"
	"tycoon/internal/session"
	"tycoon/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	st, err := store.Open(ctx, cfg.StoreURL, logger)
	if err != nil {
		logger.Error("store open failed", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	engine, err := cfg.Engine(logger)
	if err != nil {
		logger.Error("engine init failed", "err", err)
		os.Exit(1)
	}
	sess, err := session.Open(ctx, engine, st, cfg.Slot, logger)
	if err != nil {
		logger.Error("session open failed", "err", err, "slot", cfg.Slot)
		os.Exit(1)
	}
	pilot := autopilot.New(sess, logger)

	step := func() bool {
		m, err := pilot.RunMonth(ctx)
		if errors.Is(err, autopilot.ErrFinished) {
			logger.Info("sim already finished", "slot", cfg.Slot)
			return false
		}
		if err != nil {
			logger.Error("sim month failed", "err", err)
			os.Exit(1)
		}
		logger.Info("sim month complete",
			"age", m.Age,
			"cash", m.Cash,
			"net", m.Net,
			"shifts", m.Shifts,
			"trained", m.Trained,
			"paid", m.Paid,
			"unpaid", m.Unpaid,
		)
		if m.Finished {
			logger.Info("sim retired", "age", m.Age, "title", m.Title)
			return false
		}
		return true
	}

	if cfg.SimRunOnce {
		if !step() {
			return
		}
		logger.Info("sim run-once completed")
		return
	}

	// Without a tick interval months run back to back.
	var tick <-chan time.Time
	if cfg.SimTickEvery > 0 {
		ticker := time.NewTicker(cfg.SimTickEvery)
		defer ticker.Stop()
		tick = ticker.C
	}

	logger.Info("sim started", "slot", cfg.Slot, "months", cfg.SimMonths, "tick_every", cfg.SimTickEvery.String())
	for months := 0; cfg.SimMonths == 0 || months < cfg.SimMonths; months++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				logger.Info("sim shutdown")
				return
			case <-tick:
			}
		} else if ctx.Err() != nil {
			logger.Info("sim shutdown")
			return
		}
		if !step() {
			return
		}
	}
	logger.Info("sim month limit reached", "months", cfg.SimMonths)
}
