// Package session owns one player's live game: it applies engine actions to
// the current state under a lock and persists every accepted change.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tycoon/internal/game"
	"tycoon/internal/store"
)

// Action is one engine call against the current state.
type Action func(game.State) (game.State, error)

type Session struct {
	mu     sync.Mutex
	engine *game.Engine
	store  store.Store
	slot   string
	state  game.State
	log    *slog.Logger
}

// Open loads the slot, or starts and saves a new game when the slot is empty.
func Open(ctx context.Context, engine *game.Engine, st store.Store, slot string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{engine: engine, store: st, slot: slot, log: logger.With("slot", slot)}

	state, err := st.Load(ctx, slot)
	switch {
	case err == nil:
		s.state = state
		s.log.Info("game loaded", "age", state.Age, "cash", state.Cash)
	case errors.Is(err, store.ErrNotFound):
		s.state = engine.NewGame()
		if err := st.Save(ctx, slot, s.state); err != nil {
			return nil, fmt.Errorf("save new game: %w", err)
		}
		s.log.Info("new game started", "age", s.state.Age, "cash", s.state.Cash)
	default:
		return nil, fmt.Errorf("load game: %w", err)
	}
	return s, nil
}

func (s *Session) Engine() *game.Engine {
	return s.engine
}

func (s *Session) Slot() string {
	return s.slot
}

// State returns a copy of the current state.
func (s *Session) State() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) Summary() game.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Summarize(s.state)
}

// Apply runs fn against the current state. On success the result is saved
// and becomes current; on any error, including a failed save, the current
// state is kept and returned with the error.
func (s *Session) Apply(ctx context.Context, name string, fn Action) (game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.state.Clone())
	if err != nil {
		if game.IsRejection(err) {
			s.log.Warn("action rejected", "action", name, "err", err)
		} else {
			s.log.Error("action failed", "action", name, "err", err)
		}
		return s.state.Clone(), err
	}
	if err := s.store.Save(ctx, s.slot, next); err != nil {
		s.log.Error("save failed", "action", name, "err", err)
		return s.state.Clone(), fmt.Errorf("save game: %w", err)
	}
	s.state = next
	s.log.Info("action applied", "action", name, "age", next.Age, "cash", next.Cash, "energy", next.Energy)
	return next.Clone(), nil
}

// Advance closes the month and returns the bills awaiting settlement.
func (s *Session) Advance(ctx context.Context) (game.State, game.MonthPreview, error) {
	var preview game.MonthPreview
	next, err := s.Apply(ctx, "advance_month", func(st game.State) (game.State, error) {
		out, p, err := s.engine.AdvanceMonth(st)
		preview = p
		return out, err
	})
	if err != nil {
		return next, game.MonthPreview{}, err
	}
	return next, preview, nil
}

// Settle pays the chosen bills and commits the month.
func (s *Session) Settle(ctx context.Context, paidBillIDs []string) (game.State, error) {
	return s.Apply(ctx, "settle_bills", func(st game.State) (game.State, error) {
		return s.engine.SettleBills(st, paidBillIDs)
	})
}

// SettleAll pays every pending bill. The ids are read from the state the
// settlement runs against, so a concurrent advance cannot stale them.
func (s *Session) SettleAll(ctx context.Context) (game.State, error) {
	return s.Apply(ctx, "settle_bills", func(st game.State) (game.State, error) {
		bills := game.PendingBills(st)
		ids := make([]string, 0, len(bills))
		for _, b := range bills {
			ids = append(ids, b.ID)
		}
		return s.engine.SettleBills(st, ids)
	})
}

// Reset discards the current game and starts over in the same slot.
func (s *Session) Reset(ctx context.Context) (game.State, error) {
	return s.Apply(ctx, "new_game", func(game.State) (game.State, error) {
		return s.engine.NewGame(), nil
	})
}
