// Package review flips through the cards of a personal deck without scoring.
package review

import (
	"reflect"
	"sync"

	"github.com/at-ishikawa/pobcards/internal/deck"
	"github.com/at-ishikawa/pobcards/internal/shuffle"
)

type State int

const (
	StateEmpty State = iota
	StateBrowsing
)

func (s State) String() string {
	if s == StateBrowsing {
		return "browsing"
	}
	return "empty"
}

// Session holds the shuffled cards of the selected deck.
type Session struct {
	mu      sync.Mutex
	shuffle shuffle.Func[deck.Card]

	source   *deck.Deck
	cards    []deck.Card
	index    int
	revealed bool
}

type Option func(*Session)

func WithShuffler(fn shuffle.Func[deck.Card]) Option {
	return func(s *Session) {
		s.shuffle = fn
	}
}

func New(opts ...Option) *Session {
	s := &Session{shuffle: shuffle.Shuffle[deck.Card]}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select makes d the active deck, reshuffling its cards and starting from the first one.
// A nil deck clears the session.
func (s *Session) Select(d *deck.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectLocked(d)
}

func (s *Session) selectLocked(d *deck.Deck) {
	s.index = 0
	s.revealed = false
	if d == nil {
		s.source = nil
		s.cards = nil
		return
	}
	source := d.Clone()
	s.source = &source
	s.cards = s.shuffle(source.Cards)
}

// Refresh reconciles the session with the current deck list.
// The session restarts when the active deck changed and empties when it was deleted.
func (s *Session) Refresh(decks []deck.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return
	}
	for _, d := range decks {
		if d.ID != s.source.ID {
			continue
		}
		if !reflect.DeepEqual(d, *s.source) {
			s.selectLocked(&d)
		}
		return
	}
	s.selectLocked(nil)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cards) == 0 {
		return StateEmpty
	}
	return StateBrowsing
}

// DeckID returns the id of the active deck, or "" when none is selected.
func (s *Session) DeckID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return ""
	}
	return s.source.ID
}

func (s *Session) ToggleReveal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cards) == 0 {
		return
	}
	s.revealed = !s.revealed
}

// Advance moves to the next card. Past the last card the deck is reshuffled
// and review starts over from the first card.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cards) == 0 {
		return
	}
	s.revealed = false
	if s.index+1 < len(s.cards) {
		s.index++
		return
	}
	s.cards = s.shuffle(s.source.Cards)
	s.index = 0
}

// Retreat moves to the previous card; it does nothing on the first card.
func (s *Session) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == 0 {
		return
	}
	s.index--
	s.revealed = false
}

func (s *Session) Current() (deck.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cards) == 0 {
		return deck.Card{}, false
	}
	return s.cards[s.index], true
}

// Position returns the zero-based index of the current card and the card count.
func (s *Session) Position() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index, len(s.cards)
}

func (s *Session) Revealed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealed
}

// Close clears the session.
func (s *Session) Close() {
	s.Select(nil)
}
