// Package store persists whole game snapshots by save slot.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"tycoon/internal/game"
)

var (
	ErrNotFound    = errors.New("save not found")
	ErrInvalidSlot = errors.New("invalid save slot")
)

var slotRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Store saves and loads game snapshots. Implementations are safe for
// concurrent use.
type Store interface {
	Save(ctx context.Context, slot string, s game.State) error
	Load(ctx context.Context, slot string) (game.State, error)
	List(ctx context.Context) ([]SlotInfo, error)
	Delete(ctx context.Context, slot string) error
	Close() error
}

// SlotInfo describes a save without decoding the whole snapshot.
type SlotInfo struct {
	Slot    string    `json:"slot"`
	Age     int       `json:"age"`
	Cash    float64   `json:"cash"`
	Phase   string    `json:"phase"`
	SavedAt time.Time `json:"saved_at"`
}

func infoFor(slot string, s game.State, at time.Time) SlotInfo {
	phase := string(game.PhaseActive)
	if s.Phase != nil {
		phase = string(s.Phase.Kind())
	}
	return SlotInfo{Slot: slot, Age: s.Age, Cash: s.Cash, Phase: phase, SavedAt: at.UTC()}
}

func validateSlot(slot string) error {
	if !slotRE.MatchString(slot) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return nil
}

// DefaultURL is where saves go when nothing is configured.
const DefaultURL = "file:~/.tycoon/saves"

// Open picks a backend from the URL scheme:
//
//	file:<dir>            zstd-compressed snapshot files
//	sqlite:<path>         a SQLite database
//	postgres://...        a Postgres database
func Open(ctx context.Context, url string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultURL
	}
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return OpenPostgres(ctx, url, logger)
	case strings.HasPrefix(url, "sqlite:"):
		path, err := expandHome(strings.TrimPrefix(url, "sqlite:"))
		if err != nil {
			return nil, err
		}
		return OpenSQLite(path, logger)
	case strings.HasPrefix(url, "file:"):
		dir, err := expandHome(strings.TrimPrefix(url, "file:"))
		if err != nil {
			return nil, err
		}
		return OpenFile(dir, logger)
	default:
		return nil, fmt.Errorf("unsupported store url %q", url)
	}
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
