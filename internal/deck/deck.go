// Package deck holds personal flashcard decks and persists them in a local key-value slot.
package deck

const (
	// MaxCards is the most cards a single deck may hold.
	MaxCards = 1000
	// MaxFieldLength is the most characters a card term or definition may hold.
	MaxFieldLength = 500
)

// Card is a single term/definition pair.
type Card struct {
	Term       string `json:"term" validate:"required,max=500"`
	Definition string `json:"definition" validate:"required,max=500"`
}

// Deck is a user-owned set of cards.
// Timestamps are epoch milliseconds.
type Deck struct {
	ID              string `json:"id" validate:"required"`
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	Cards           []Card `json:"cards" validate:"min=1,max=1000,dive"`
	CreatedAt       int64  `json:"created_at"`
	ImportedAt      *int64 `json:"imported_at,omitempty"`
	OriginalShareID string `json:"original_share_id,omitempty"`
}

// Clone returns a deep copy of the deck.
func (d Deck) Clone() Deck {
	clone := d
	clone.Cards = append([]Card(nil), d.Cards...)
	if d.ImportedAt != nil {
		importedAt := *d.ImportedAt
		clone.ImportedAt = &importedAt
	}
	return clone
}

// Imported reports whether the deck came from a share link or share code.
func (d Deck) Imported() bool {
	return d.ImportedAt != nil
}
