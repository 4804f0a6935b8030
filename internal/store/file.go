package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"tycoon/internal/game"
)

const (
	fileExt         = ".sav.zst"
	snapshotVersion = 1
)

// fileHeader is written as the first line of every save so List can describe
// a slot without decoding the state.
type fileHeader struct {
	Version int       `json:"version"`
	Slot    string    `json:"slot"`
	Age     int       `json:"age"`
	Cash    float64   `json:"cash"`
	Phase   string    `json:"phase"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStore keeps one zstd-compressed snapshot file per slot.
type FileStore struct {
	dir string
	log *slog.Logger
	mu  sync.Mutex
	now func() time.Time
}

func OpenFile(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &FileStore{dir: dir, log: logger, now: time.Now}, nil
}

func (f *FileStore) path(slot string) string {
	return filepath.Join(f.dir, slot+fileExt)
}

func (f *FileStore) Save(_ context.Context, slot string, s game.State) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	info := infoFor(slot, s, f.now())
	tmp, err := os.CreateTemp(f.dir, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeSnapshot(tmp, info, s); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp save: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(slot)); err != nil {
		return fmt.Errorf("replace save: %w", err)
	}
	f.log.Debug("snapshot saved", "slot", slot, "age", s.Age, "dir", f.dir)
	return nil
}

func writeSnapshot(w *os.File, info SlotInfo, s game.State) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(fileHeader{
		Version: snapshotVersion,
		Slot:    info.Slot,
		Age:     info.Age,
		Cash:    info.Cash,
		Phase:   info.Phase,
		SavedAt: info.SavedAt,
	})
	if err != nil {
		enc.Close()
		return fmt.Errorf("encode header: %w", err)
	}
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(s); err != nil {
		enc.Close()
		return fmt.Errorf("encode state: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return fmt.Errorf("flush save: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish zstd stream: %w", err)
	}
	return nil
}

func (f *FileStore) Load(_ context.Context, slot string) (game.State, error) {
	if err := validateSlot(slot); err != nil {
		return game.State{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var s game.State
	_, err := readSnapshot(f.path(slot), &s)
	if err != nil {
		return game.State{}, err
	}
	return s, nil
}

// readSnapshot decodes the header and, when into is non-nil, the state.
func readSnapshot(path string, into *game.State) (fileHeader, error) {
	var hdr fileHeader
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return hdr, ErrNotFound
		}
		return hdr, fmt.Errorf("open save: %w", err)
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return hdr, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return hdr, fmt.Errorf("read save header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, fmt.Errorf("decode save header: %w", err)
	}
	if hdr.Version != snapshotVersion {
		return hdr, fmt.Errorf("unsupported save version %d", hdr.Version)
	}
	if into == nil {
		return hdr, nil
	}
	if err := json.NewDecoder(br).Decode(into); err != nil {
		return hdr, fmt.Errorf("decode state: %w", err)
	}
	return hdr, nil
}

func (f *FileStore) List(_ context.Context) ([]SlotInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read save dir: %w", err)
	}
	out := make([]SlotInfo, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		hdr, err := readSnapshot(filepath.Join(f.dir, name), nil)
		if err != nil {
			f.log.Warn("skipping unreadable save", "file", name, "err", err)
			continue
		}
		out = append(out, SlotInfo{Slot: hdr.Slot, Age: hdr.Age, Cash: hdr.Cash, Phase: hdr.Phase, SavedAt: hdr.SavedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (f *FileStore) Delete(_ context.Context, slot string) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(slot)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}
