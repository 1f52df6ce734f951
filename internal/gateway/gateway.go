// Package gateway defines the remote service that supplies chapters and terms,
// stores score history, and keeps server-side shared decks.
package gateway

import (
	"context"
	"encoding/json"

	"github.com/at-ishikawa/pobcards/internal/deck"
)

//go:generate mockgen -destination=../mocks/gateway/mock_gateway.go -package=mock_gateway github.com/at-ishikawa/pobcards/internal/gateway Gateway

// Chapter groups terms.
type Chapter struct {
	Chapter int    `json:"chapter" db:"chapter" yaml:"chapter" validate:"gte=0"`
	Name    string `json:"name" db:"name" yaml:"name" validate:"required"`
}

// Term is a read-only vocabulary item supplied by the gateway.
type Term struct {
	Term       string `json:"term" db:"term" yaml:"term" validate:"required"`
	Definition string `json:"definition" db:"definition" yaml:"definition" validate:"required"`
	Chapter    int    `json:"chapter" db:"chapter" yaml:"chapter" validate:"gte=0"`
}

// ScoreRecord is the persisted summary of one completed study round.
// Date is epoch seconds; the DateScore fields keep the "(YYYY-MM-DD,n)" display strings
// that older history entries carry.
type ScoreRecord struct {
	Chapter            int     `json:"chapter"`
	Correct            int     `json:"correct"`
	Incorrect          int     `json:"incorrect"`
	Total              int     `json:"total"`
	Accuracy           float64 `json:"accuracy"`
	Date               float64 `json:"date"`
	DurationMs         int64   `json:"duration_ms"`
	CorrectDateScore   string  `json:"C_DateScore,omitempty"`
	IncorrectDateScore string  `json:"I_DateScore,omitempty"`
}

// RawScore is a score history entry as stored remotely.
// Older entries may lack any of the fields.
type RawScore struct {
	Chapter    *float64 `json:"chapter,omitempty"`
	Correct    *float64 `json:"correct,omitempty"`
	Incorrect  *float64 `json:"incorrect,omitempty"`
	Total      *float64 `json:"total,omitempty"`
	Accuracy   *float64 `json:"accuracy,omitempty"`
	Date       *float64 `json:"date,omitempty"`
	DurationMs *float64 `json:"duration_ms,omitempty"`
}

// RawScoreFrom converts a record into the stored shape.
func RawScoreFrom(r ScoreRecord) RawScore {
	f := func(v float64) *float64 { return &v }
	return RawScore{
		Chapter:    f(float64(r.Chapter)),
		Correct:    f(float64(r.Correct)),
		Incorrect:  f(float64(r.Incorrect)),
		Total:      f(float64(r.Total)),
		Accuracy:   f(r.Accuracy),
		Date:       f(r.Date),
		DurationMs: f(float64(r.DurationMs)),
	}
}

// ShareRecord is a deck published under a share code. It is never modified after writing.
type ShareRecord struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Cards       []deck.Card `json:"cards"`
	CreatedAt   int64       `json:"created_at"`
}

// UnmarshalJSON reads a stored share leniently. Cards that are not objects with non-empty
// string term and definition are dropped, and non-string titles or descriptions are treated
// as absent, so every backend hands the same cards to import validation.
func (r *ShareRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var record ShareRecord
	_ = json.Unmarshal(fields["title"], &record.Title)
	_ = json.Unmarshal(fields["description"], &record.Description)
	_ = json.Unmarshal(fields["created_at"], &record.CreatedAt)
	if cards, ok := fields["cards"]; ok {
		var elements []json.RawMessage
		if err := json.Unmarshal(cards, &elements); err == nil && elements != nil {
			record.Cards = deck.FilterCards(elements)
		}
	}
	*r = record
	return nil
}

// ContentStore supplies chapters and terms.
type ContentStore interface {
	FetchChapters(ctx context.Context) ([]Chapter, error)
	FetchTerms(ctx context.Context, chapter int) ([]Term, error)
}

// ScoreStore keeps per-user score history keyed by completion epoch seconds.
type ScoreStore interface {
	FetchScoreHistory(ctx context.Context, userID string, chapter, limit int) (map[string]RawScore, error)
	WriteScore(ctx context.Context, userID string, chapter int, key string, record ScoreRecord) error
}

// ShareStore keeps shared decks under share codes.
type ShareStore interface {
	WriteSharedDeck(ctx context.Context, key string, record ShareRecord) error
	ReadSharedDeck(ctx context.Context, key string) (ShareRecord, error)
}

// Gateway is the full remote contract.
type Gateway interface {
	ContentStore
	ScoreStore
	ShareStore
}

// Composite assembles a Gateway from separate backends,
// e.g. content and scores from a database and shared decks from object storage.
type Composite struct {
	ContentStore
	ScoreStore
	ShareStore
}

var _ Gateway = Composite{}
