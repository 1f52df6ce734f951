package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Store reads and writes the deck list in a Slot.
type Store struct {
	slot   Slot
	logger *slog.Logger
}

func NewStore(slot Slot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{slot: slot, logger: logger}
}

// Load returns the persisted decks.
// A missing, unreadable, or malformed slot yields an empty list; elements that do not
// coerce into a valid deck are skipped with a warning.
func (s *Store) Load() []Deck {
	raw, err := s.slot.Get(SlotKey)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			s.logger.Warn("failed to read deck slot", "key", SlotKey, "error", err)
		}
		return []Deck{}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		s.logger.Warn("deck slot is not a JSON array", "key", SlotKey, "error", err)
		return []Deck{}
	}

	decks := make([]Deck, 0, len(elements))
	for i, element := range elements {
		d, err := Coerce(element)
		if err != nil {
			s.logger.Warn("skipping invalid stored deck", "index", i, "error", err)
			continue
		}
		decks = append(decks, d)
	}
	return decks
}

// Save replaces the persisted deck list.
func (s *Store) Save(decks []Deck) error {
	if decks == nil {
		decks = []Deck{}
	}
	data, err := json.Marshal(decks)
	if err != nil {
		return &StorageError{Op: "json.Marshal()", Err: err}
	}
	if err := s.slot.Set(SlotKey, data); err != nil {
		s.logger.Warn("failed to persist decks", "key", SlotKey, "count", len(decks), "error", err)
		return &StorageError{Op: fmt.Sprintf("slot.Set(%s)", SlotKey), Err: err}
	}
	return nil
}
