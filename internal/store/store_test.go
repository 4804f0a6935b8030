package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"tycoon/internal/game"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleStates(t *testing.T) (game.State, game.State) {
	t.Helper()
	e := game.NewEngine(nil, game.DefaultRules(), game.NewRand(1), quietLogger())
	s := e.NewGame()
	s, err := e.BuyWarehouse(s, "wh_small")
	if err != nil {
		t.Fatalf("buy warehouse: %v", err)
	}
	s, err = e.SetAccommodation(s, "youth_apartment")
	if err != nil {
		t.Fatalf("housing: %v", err)
	}
	pending, _, err := e.AdvanceMonth(s)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	return s, pending
}

func mustJSON(t *testing.T, s game.State) string {
	t.Helper()
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	fs, err := OpenFile(filepath.Join(dir, "saves"), quietLogger())
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	sq, err := OpenSQLite(filepath.Join(dir, "saves.db"), quietLogger())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		fs.Close()
		sq.Close()
	})
	return map[string]Store{"file": fs, "sqlite": sq}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	active, pending := sampleStates(t)

	for name, st := range backends(t) {
		if _, err := st.Load(ctx, "main"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: load empty slot err=%v", name, err)
		}
		if err := st.Save(ctx, "main", active); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err := st.Load(ctx, "main")
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if mustJSON(t, got) != mustJSON(t, active) {
			t.Fatalf("%s: loaded state differs", name)
		}

		if err := st.Save(ctx, "main", pending); err != nil {
			t.Fatalf("%s: overwrite: %v", name, err)
		}
		got, err = st.Load(ctx, "main")
		if err != nil {
			t.Fatalf("%s: reload: %v", name, err)
		}
		if _, ok := got.Phase.(game.PendingSettlement); !ok {
			t.Fatalf("%s: phase=%T want PendingSettlement", name, got.Phase)
		}
		if mustJSON(t, got) != mustJSON(t, pending) {
			t.Fatalf("%s: pending state differs", name)
		}
	}
}

func TestStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	active, pending := sampleStates(t)

	for name, st := range backends(t) {
		if err := st.Save(ctx, "beta", pending); err != nil {
			t.Fatalf("%s: save beta: %v", name, err)
		}
		if err := st.Save(ctx, "alpha", active); err != nil {
			t.Fatalf("%s: save alpha: %v", name, err)
		}
		infos, err := st.List(ctx)
		if err != nil {
			t.Fatalf("%s: list: %v", name, err)
		}
		if len(infos) != 2 || infos[0].Slot != "alpha" || infos[1].Slot != "beta" {
			t.Fatalf("%s: list=%+v", name, infos)
		}
		if infos[0].Age != active.Age || infos[0].Cash != active.Cash || infos[0].Phase != "active" {
			t.Fatalf("%s: alpha info=%+v", name, infos[0])
		}
		if infos[1].Phase != "pending_settlement" || infos[1].SavedAt.IsZero() {
			t.Fatalf("%s: beta info=%+v", name, infos[1])
		}

		if err := st.Delete(ctx, "alpha"); err != nil {
			t.Fatalf("%s: delete: %v", name, err)
		}
		if err := st.Delete(ctx, "alpha"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: second delete err=%v", name, err)
		}
		infos, err = st.List(ctx)
		if err != nil {
			t.Fatalf("%s: list after delete: %v", name, err)
		}
		if len(infos) != 1 {
			t.Fatalf("%s: list after delete=%+v", name, infos)
		}
	}
}

func TestStoreRejectsBadSlots(t *testing.T) {
	ctx := context.Background()
	active, _ := sampleStates(t)
	for name, st := range backends(t) {
		for _, slot := range []string{"", "../escape", "with space", "a/b"} {
			if err := st.Save(ctx, slot, active); !errors.Is(err, ErrInvalidSlot) {
				t.Fatalf("%s: save %q err=%v", name, slot, err)
			}
			if _, err := st.Load(ctx, slot); !errors.Is(err, ErrInvalidSlot) {
				t.Fatalf("%s: load %q err=%v", name, slot, err)
			}
		}
	}
}

func TestFileStoreWritesCompressedHeader(t *testing.T) {
	dir := t.TempDir()
	fs, err := OpenFile(dir, quietLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	active, _ := sampleStates(t)
	if err := fs.Save(context.Background(), "main", active); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "main"+fileExt))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// zstd frame magic
	if len(raw) < 4 || raw[0] != 0x28 || raw[1] != 0xB5 || raw[2] != 0x2F || raw[3] != 0xFD {
		t.Fatalf("save is not a zstd stream")
	}
	hdr, err := readSnapshot(filepath.Join(dir, "main"+fileExt), nil)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if hdr.Version != snapshotVersion || hdr.Slot != "main" || hdr.Age != active.Age {
		t.Fatalf("header=%+v", hdr)
	}

	if err := os.WriteFile(filepath.Join(dir, "junk"+fileExt), []byte("not zstd"), 0o600); err != nil {
		t.Fatalf("write junk: %v", err)
	}
	infos, err := fs.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("junk file listed: %+v", infos)
	}
}

func TestOpenDispatchesOnScheme(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, err := Open(ctx, "file:"+filepath.Join(dir, "files"), quietLogger())
	if err != nil {
		t.Fatalf("file url: %v", err)
	}
	if _, ok := st.(*FileStore); !ok {
		t.Fatalf("file url opened %T", st)
	}
	st.Close()

	st, err = Open(ctx, "sqlite:"+filepath.Join(dir, "x.db"), quietLogger())
	if err != nil {
		t.Fatalf("sqlite url: %v", err)
	}
	if _, ok := st.(*SQLiteStore); !ok {
		t.Fatalf("sqlite url opened %T", st)
	}
	st.Close()

	if _, err := Open(ctx, "redis://localhost", quietLogger()); err == nil {
		t.Fatalf("unsupported scheme accepted")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got, err := expandHome("~/.tycoon/saves")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Join(home, ".tycoon", "saves") {
		t.Fatalf("expand=%q", got)
	}
	if got, _ := expandHome("/var/saves"); got != "/var/saves" {
		t.Fatalf("absolute path changed: %q", got)
	}
}
