package deck

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/at-ishikawa/pobcards/internal/clock"
)

// Draft is a deck under construction.
type Draft struct {
	Title       string
	Description string
	Cards       []Card
}

// AddCard trims and validates a card before appending it.
func (d *Draft) AddCard(term, definition string) error {
	card := Card{
		Term:       strings.TrimSpace(term),
		Definition: strings.TrimSpace(definition),
	}
	if err := ValidateCard(card); err != nil {
		return err
	}
	d.Cards = append(d.Cards, card)
	return nil
}

// RemoveCard removes the card at index i; an out-of-range index is ignored.
func (d *Draft) RemoveCard(i int) {
	if i < 0 || i >= len(d.Cards) {
		return
	}
	d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
}

// Library is the in-memory list of decks backed by a Store.
// Decks are kept newest first.
type Library struct {
	mu     sync.Mutex
	store  *Store
	ids    IDGenerator
	clock  clock.Clock
	logger *slog.Logger
	decks  []Deck
}

// LibraryOption configures a Library.
type LibraryOption func(*Library)

func WithIDGenerator(ids IDGenerator) LibraryOption {
	return func(l *Library) {
		l.ids = ids
	}
}

func WithClock(c clock.Clock) LibraryOption {
	return func(l *Library) {
		l.clock = c
	}
}

func WithLogger(logger *slog.Logger) LibraryOption {
	return func(l *Library) {
		l.logger = logger
	}
}

// NewLibrary loads the persisted decks from store.
func NewLibrary(store *Store, opts ...LibraryOption) *Library {
	l := &Library{
		store:  store,
		clock:  clock.Real{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.ids == nil {
		l.ids = NewUUIDGenerator(l.clock)
	}
	l.decks = store.Load()
	return l
}

// Decks returns a copy of all decks, newest first.
func (l *Library) Decks() []Deck {
	l.mu.Lock()
	defer l.mu.Unlock()
	decks := make([]Deck, len(l.decks))
	for i, d := range l.decks {
		decks[i] = d.Clone()
	}
	return decks
}

func (l *Library) Find(id string) (Deck, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range l.decks {
		if d.ID == id {
			return d.Clone(), true
		}
	}
	return Deck{}, false
}

// Build stamps a new id and creation time on the given content without storing it.
func (l *Library) Build(title, description string, cards []Card) Deck {
	return Deck{
		ID:          l.ids.NewID(),
		Title:       title,
		Description: description,
		Cards:       append([]Card(nil), cards...),
		CreatedAt:   l.clock.Now().UnixMilli(),
	}
}

// Create validates a draft and stores it as a new deck.
// A *StorageError is returned together with the deck when only persisting failed.
func (l *Library) Create(draft Draft) (Deck, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return Deck{}, NewValidationError(KindEmptyField, msgMissingTitle)
	}
	if len(draft.Cards) == 0 {
		return Deck{}, NewValidationError(KindInvalidFormat, msgNoCards)
	}

	cards := make([]Card, 0, len(draft.Cards))
	for _, c := range draft.Cards {
		card := Card{Term: strings.TrimSpace(c.Term), Definition: strings.TrimSpace(c.Definition)}
		if err := ValidateCard(card); err != nil {
			return Deck{}, err
		}
		cards = append(cards, card)
	}

	d := l.Build(title, strings.TrimSpace(draft.Description), cards)
	if err := ValidateDeck(d); err != nil {
		return Deck{}, err
	}
	return d, l.Add(d)
}

// Add prepends an already validated deck and persists the list.
func (l *Library) Add(d Deck) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decks = append([]Deck{d.Clone()}, l.decks...)
	l.logger.Debug("deck added", "id", d.ID, "cards", len(d.Cards))
	return l.store.Save(l.decks)
}

// Delete removes the deck with the given id. Unknown ids are a no-op.
func (l *Library) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, d := range l.decks {
		if d.ID != id {
			continue
		}
		l.decks = append(l.decks[:i:i], l.decks[i+1:]...)
		l.logger.Debug("deck deleted", "id", id)
		return l.store.Save(l.decks)
	}
	return nil
}
