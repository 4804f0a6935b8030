package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tycoon/internal/db"
	"tycoon/internal/game"
)

var postgresSchema = []string{
	`CREATE SCHEMA IF NOT EXISTS tycoon`,
	`CREATE TABLE IF NOT EXISTS tycoon.saves (
		slot TEXT PRIMARY KEY,
		age INTEGER NOT NULL,
		cash DOUBLE PRECISION NOT NULL,
		phase TEXT NOT NULL,
		state JSONB NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// PostgresStore keeps saves in tycoon.saves.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func OpenPostgres(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := db.Connect(ctx, databaseURL, db.SavePoolOptions())
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, pool, postgresSchema...); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, log: logger}, nil
}

func (p *PostgresStore) Save(ctx context.Context, slot string, s game.State) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	info := infoFor(slot, s, time.Now())
	_, err = p.pool.Exec(ctx, `
		INSERT INTO tycoon.saves (slot, age, cash, phase, state, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slot) DO UPDATE
		SET age = EXCLUDED.age,
			cash = EXCLUDED.cash,
			phase = EXCLUDED.phase,
			state = EXCLUDED.state,
			saved_at = EXCLUDED.saved_at
	`, info.Slot, info.Age, info.Cash, info.Phase, raw, info.SavedAt)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	p.log.Debug("snapshot saved", "slot", slot, "age", s.Age, "backend", "postgres")
	return nil
}

func (p *PostgresStore) Load(ctx context.Context, slot string) (game.State, error) {
	if err := validateSlot(slot); err != nil {
		return game.State{}, err
	}
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT state FROM tycoon.saves WHERE slot = $1`, slot).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return game.State{}, ErrNotFound
		}
		return game.State{}, fmt.Errorf("load slot %s: %w", slot, err)
	}
	var s game.State
	if err := json.Unmarshal(raw, &s); err != nil {
		return game.State{}, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT slot, age, cash, phase, saved_at
		FROM tycoon.saves
		ORDER BY slot
	`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	out := make([]SlotInfo, 0, 8)
	for rows.Next() {
		var info SlotInfo
		if err := rows.Scan(&info.Slot, &info.Age, &info.Cash, &info.Phase, &info.SavedAt); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		info.SavedAt = info.SavedAt.UTC()
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return out, nil
}

func (p *PostgresStore) Delete(ctx context.Context, slot string) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	cmd, err := p.pool.Exec(ctx, `DELETE FROM tycoon.saves WHERE slot = $1`, slot)
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
