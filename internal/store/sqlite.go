package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"tycoon/internal/game"
)

// SQLiteStore keeps saves in a single SQLite table.
type SQLiteStore struct {
	conn *sqlx.DB
	log  *slog.Logger
	now  func() time.Time
}

type sqliteRow struct {
	Slot      string  `db:"slot"`
	Age       int     `db:"age"`
	Cash      float64 `db:"cash"`
	Phase     string  `db:"phase"`
	SavedAtMs int64   `db:"saved_at_ms"`
}

func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)

	st := &SQLiteStore{conn: conn, log: logger, now: time.Now}
	if err := st.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

func (st *SQLiteStore) migrate() error {
	_, err := st.conn.Exec(`
	CREATE TABLE IF NOT EXISTS saves (
		slot TEXT PRIMARY KEY,
		age INTEGER NOT NULL,
		cash REAL NOT NULL,
		phase TEXT NOT NULL,
		saved_at_ms INTEGER NOT NULL,
		state_json TEXT NOT NULL
	);`)
	return err
}

func (st *SQLiteStore) Save(ctx context.Context, slot string, s game.State) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	info := infoFor(slot, s, st.now())
	_, err = st.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO saves (slot, age, cash, phase, saved_at_ms, state_json) VALUES (?, ?, ?, ?, ?, ?)`,
		info.Slot, info.Age, info.Cash, info.Phase, info.SavedAt.UnixMilli(), string(raw),
	)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	st.log.Debug("snapshot saved", "slot", slot, "age", s.Age, "backend", "sqlite")
	return nil
}

func (st *SQLiteStore) Load(ctx context.Context, slot string) (game.State, error) {
	if err := validateSlot(slot); err != nil {
		return game.State{}, err
	}
	var raw string
	err := st.conn.GetContext(ctx, &raw, `SELECT state_json FROM saves WHERE slot = ?`, slot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.State{}, ErrNotFound
		}
		return game.State{}, fmt.Errorf("load slot %s: %w", slot, err)
	}
	var s game.State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return game.State{}, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}

func (st *SQLiteStore) List(ctx context.Context) ([]SlotInfo, error) {
	var rows []sqliteRow
	if err := st.conn.SelectContext(ctx, &rows, `SELECT slot, age, cash, phase, saved_at_ms FROM saves ORDER BY slot`); err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	out := make([]SlotInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, SlotInfo{
			Slot:    r.Slot,
			Age:     r.Age,
			Cash:    r.Cash,
			Phase:   r.Phase,
			SavedAt: time.UnixMilli(r.SavedAtMs).UTC(),
		})
	}
	return out, nil
}

func (st *SQLiteStore) Delete(ctx context.Context, slot string) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	res, err := st.conn.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot)
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (st *SQLiteStore) Close() error {
	return st.conn.Close()
}
