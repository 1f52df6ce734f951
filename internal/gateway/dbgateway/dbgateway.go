// Package dbgateway implements gateway.Gateway on MySQL.
package dbgateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/pobcards/internal/database"
	"github.com/at-ishikawa/pobcards/internal/deck"
	"github.com/at-ishikawa/pobcards/internal/gateway"
)

// Gateway reads and writes the tables created by the schemas migrations.
type Gateway struct {
	db *sqlx.DB
}

var _ gateway.Gateway = (*Gateway)(nil)

func New(db *sqlx.DB) *Gateway {
	return &Gateway{db: db}
}

type scoreRow struct {
	DateKey    int64   `db:"date_key"`
	Chapter    int     `db:"chapter"`
	Correct    int     `db:"correct"`
	Incorrect  int     `db:"incorrect"`
	Total      int     `db:"total"`
	Accuracy   float64 `db:"accuracy"`
	DurationMs int64   `db:"duration_ms"`
	Date       float64 `db:"date"`
}

type sharedDeckRow struct {
	Title       string `db:"title"`
	Description string `db:"description"`
	Cards       []byte `db:"cards"`
	CreatedAt   int64  `db:"created_at"`
}

func (g *Gateway) FetchChapters(ctx context.Context) ([]gateway.Chapter, error) {
	chapters := []gateway.Chapter{}
	if err := g.db.SelectContext(ctx, &chapters, "SELECT chapter, name FROM chapters ORDER BY chapter"); err != nil {
		return nil, gateway.Unavailable("dbgateway.FetchChapters", err)
	}
	return chapters, nil
}

func (g *Gateway) FetchTerms(ctx context.Context, chapter int) ([]gateway.Term, error) {
	terms := []gateway.Term{}
	if err := g.db.SelectContext(ctx, &terms, "SELECT term, definition, chapter FROM terms WHERE chapter = ? ORDER BY id", chapter); err != nil {
		return nil, gateway.Unavailable("dbgateway.FetchTerms", err)
	}
	return terms, nil
}

// FetchScoreHistory returns the newest limit scores keyed by completion epoch seconds.
func (g *Gateway) FetchScoreHistory(ctx context.Context, userID string, chapter, limit int) (map[string]gateway.RawScore, error) {
	var rows []scoreRow
	query := `SELECT date_key, chapter, correct, incorrect, total, accuracy, duration_ms, date
FROM scores WHERE user_id = ? AND chapter = ? ORDER BY date_key DESC LIMIT ?`
	if err := g.db.SelectContext(ctx, &rows, query, userID, chapter, limit); err != nil {
		return nil, gateway.Unavailable("dbgateway.FetchScoreHistory", err)
	}

	history := make(map[string]gateway.RawScore, len(rows))
	for _, r := range rows {
		history[strconv.FormatInt(r.DateKey, 10)] = gateway.RawScoreFrom(gateway.ScoreRecord{
			Chapter:    r.Chapter,
			Correct:    r.Correct,
			Incorrect:  r.Incorrect,
			Total:      r.Total,
			Accuracy:   r.Accuracy,
			Date:       r.Date,
			DurationMs: r.DurationMs,
		})
	}
	return history, nil
}

// WriteScore upserts the score stored under key.
func (g *Gateway) WriteScore(ctx context.Context, userID string, chapter int, key string, record gateway.ScoreRecord) error {
	dateKey, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return gateway.Unavailable("dbgateway.WriteScore", fmt.Errorf("strconv.ParseInt(%q) > %w", key, err))
	}

	columns := []string{"user_id", "chapter", "date_key", "correct", "incorrect", "total", "accuracy", "duration_ms", "date", "c_date_score", "i_date_score"}
	query, args := database.BuildMultiRowInsert("scores", columns, [][]any{{
		userID, chapter, dateKey,
		record.Correct, record.Incorrect, record.Total, record.Accuracy, record.DurationMs, record.Date,
		record.CorrectDateScore, record.IncorrectDateScore,
	}}, "ON DUPLICATE KEY UPDATE correct = VALUES(correct), incorrect = VALUES(incorrect), total = VALUES(total), "+
		"accuracy = VALUES(accuracy), duration_ms = VALUES(duration_ms), date = VALUES(date), "+
		"c_date_score = VALUES(c_date_score), i_date_score = VALUES(i_date_score)")
	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return gateway.Unavailable("dbgateway.WriteScore", err)
	}
	return nil
}

// WriteSharedDeck inserts a share. An existing key is an error since shares are immutable.
func (g *Gateway) WriteSharedDeck(ctx context.Context, key string, record gateway.ShareRecord) error {
	cards, err := json.Marshal(record.Cards)
	if err != nil {
		return gateway.Unavailable("dbgateway.WriteSharedDeck", fmt.Errorf("json.Marshal() > %w", err))
	}
	if _, err := g.db.ExecContext(ctx,
		"INSERT INTO shared_decks (share_key, title, description, cards, created_at) VALUES (?, ?, ?, ?, ?)",
		key, record.Title, record.Description, cards, record.CreatedAt,
	); err != nil {
		return gateway.Unavailable("dbgateway.WriteSharedDeck", err)
	}
	return nil
}

func (g *Gateway) ReadSharedDeck(ctx context.Context, key string) (gateway.ShareRecord, error) {
	op := fmt.Sprintf("dbgateway.ReadSharedDeck(%s)", key)

	var row sharedDeckRow
	if err := g.db.GetContext(ctx, &row,
		"SELECT title, description, cards, created_at FROM shared_decks WHERE share_key = ?", key,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gateway.ShareRecord{}, gateway.NotFound(op, err)
		}
		return gateway.ShareRecord{}, gateway.Unavailable(op, err)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(row.Cards, &elements); err != nil {
		return gateway.ShareRecord{}, gateway.Unavailable(op, fmt.Errorf("json.Unmarshal() > %w", err))
	}
	return gateway.ShareRecord{
		Title:       row.Title,
		Description: row.Description,
		Cards:       deck.FilterCards(elements),
		CreatedAt:   row.CreatedAt,
	}, nil
}

// ImportContent upserts chapters and terms in one transaction.
func (g *Gateway) ImportContent(ctx context.Context, chapters []gateway.Chapter, terms []gateway.Term) error {
	return database.RunInTx(ctx, g.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if len(chapters) > 0 {
			rows := make([][]any, 0, len(chapters))
			for _, c := range chapters {
				rows = append(rows, []any{c.Chapter, c.Name})
			}
			query, args := database.BuildMultiRowInsert("chapters", []string{"chapter", "name"}, rows,
				"ON DUPLICATE KEY UPDATE name = VALUES(name)")
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert chapters: %w", err)
			}
		}

		if len(terms) > 0 {
			rows := make([][]any, 0, len(terms))
			for _, t := range terms {
				rows = append(rows, []any{t.Chapter, t.Term, t.Definition})
			}
			query, args := database.BuildMultiRowInsert("terms", []string{"chapter", "term", "definition"}, rows,
				"ON DUPLICATE KEY UPDATE definition = VALUES(definition)")
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert terms: %w", err)
			}
		}
		return nil
	})
}
