// Package store archives game positions as compressed JSON files.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/benbeisheim/spartanchess-backend/internal/engine"
	"github.com/benbeisheim/spartanchess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/inhies/go-bytesize"
)

var (
	ErrNotFound  = errors.New("archived game not found")
	ErrInvalidID = errors.New("invalid archive id")
)

// Record is one archived game: the full position plus its move history and
// the time left on both clocks.
type Record struct {
	ID       string           `json:"id"`
	SavedAt  time.Time        `json:"savedAt"`
	Snapshot engine.Snapshot  `json:"snapshot"`
	History  []model.Move     `json:"history"`
	Clocks   model.ClockTimes `json:"clocks"`
}

type Store struct {
	dir   string
	codec Codec
	mu    sync.Mutex
}

func New(dir string, codec Codec) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Store{dir: dir, codec: codec}, nil
}

func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Save writes rec, replacing any earlier save of the same game, and returns
// the compressed size.
func (s *Store) Save(rec Record) (bytesize.ByteSize, error) {
	if err := validID(rec.ID); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, rec.ID+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", rec.ID, err)
	}
	defer os.Remove(tmp.Name())

	if err := s.encode(tmp, rec); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("save %s: %w", rec.ID, err)
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("save %s: %w", rec.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("save %s: %w", rec.ID, err)
	}

	// Drop saves made with another codec so Load never sees a stale copy.
	for _, c := range codecs {
		if c.Ext() != s.codec.Ext() {
			os.Remove(filepath.Join(s.dir, rec.ID+c.Ext()))
		}
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, rec.ID+s.codec.Ext())); err != nil {
		return 0, fmt.Errorf("save %s: %w", rec.ID, err)
	}

	size := bytesize.ByteSize(info.Size())
	log.Printf("store: saved game %s (%s, %s)", rec.ID, s.codec.Name(), size)
	return size, nil
}

func (s *Store) encode(w io.Writer, rec Record) error {
	zw, err := s.codec.NewWriter(w)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(zw).Encode(rec); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Load reads the archived game id, whichever codec it was written with.
func (s *Store) Load(id string) (Record, error) {
	if err := validID(id); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range codecs {
		f, err := os.Open(filepath.Join(s.dir, id+c.Ext()))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Record{}, fmt.Errorf("load %s: %w", id, err)
		}
		rec, err := decode(f, c)
		f.Close()
		if err != nil {
			return Record{}, fmt.Errorf("load %s: %w", id, err)
		}
		return rec, nil
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func decode(r io.Reader, c Codec) (Record, error) {
	zr, err := c.NewReader(r)
	if err != nil {
		return Record{}, err
	}
	defer zr.Close()

	var rec Record
	if err := json.NewDecoder(zr).Decode(&rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// List returns the IDs of all archived games, sorted.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	seen := map[string]bool{}
	ids := []string{}
	for _, e := range entries {
		for _, c := range codecs {
			id, ok := strings.CutSuffix(e.Name(), c.Ext())
			if ok && !seen[id] && validID(id) == nil {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
