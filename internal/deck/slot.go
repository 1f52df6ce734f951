package deck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SlotKey is the slot holding the JSON array of decks.
const SlotKey = "safmeds_sets"

// ErrSlotEmpty is returned by Slot.Get when nothing was stored under the key.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a string-keyed blob store local to this device.
type Slot interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// MemorySlot keeps values in process memory.
type MemorySlot struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

func (s *MemorySlot) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), value...), nil
}

func (s *MemorySlot) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// FileSlot stores each key as <dir>/<key>.json.
type FileSlot struct {
	dir string
}

func NewFileSlot(dir string) *FileSlot {
	return &FileSlot{dir: dir}
}

func (s *FileSlot) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileSlot) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", s.path(key), err)
	}
	return data, nil
}

// Set writes through a temporary file so a crash never leaves a truncated slot.
func (s *FileSlot) Set(key string, value []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp(%s) > %w", s.dir, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("tmp.Write() > %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close() > %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("os.Rename(%s) > %w", s.path(key), err)
	}
	return nil
}
