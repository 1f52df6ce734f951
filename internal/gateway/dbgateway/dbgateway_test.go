package dbgateway

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pobcards/internal/deck"
	"github.com/at-ishikawa/pobcards/internal/gateway"
)

func newTestGateway(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(sqlx.NewDb(db, "mysql")), mock
}

func float(v float64) *float64 { return &v }

func TestGateway_FetchChapters(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      []gateway.Chapter
		wantErr   bool
	}{
		{
			name: "returns chapters in order",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"chapter", "name"}).
					AddRow(1, "Cells").
					AddRow(2, "Tissues")
				mock.ExpectQuery(regexp.QuoteMeta("SELECT chapter, name FROM chapters ORDER BY chapter")).WillReturnRows(rows)
			},
			want: []gateway.Chapter{{Chapter: 1, Name: "Cells"}, {Chapter: 2, Name: "Tissues"}},
		},
		{
			name: "empty table",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT chapter, name FROM chapters").WillReturnRows(sqlmock.NewRows([]string{"chapter", "name"}))
			},
			want: []gateway.Chapter{},
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT chapter, name FROM chapters").WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, mock := newTestGateway(t)
			tt.setupMock(mock)

			got, err := g.FetchChapters(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, gateway.ErrUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGateway_FetchTerms(t *testing.T) {
	g, mock := newTestGateway(t)
	rows := sqlmock.NewRows([]string{"term", "definition", "chapter"}).
		AddRow("mitosis", "cell division", 3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT term, definition, chapter FROM terms WHERE chapter = ? ORDER BY id")).
		WithArgs(3).
		WillReturnRows(rows)

	got, err := g.FetchTerms(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []gateway.Term{{Term: "mitosis", Definition: "cell division", Chapter: 3}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_FetchScoreHistory(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      map[string]gateway.RawScore
		wantErr   bool
	}{
		{
			name: "keys by date",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"date_key", "chapter", "correct", "incorrect", "total", "accuracy", "duration_ms", "date"}).
					AddRow(1775809841, 2, 8, 2, 10, 0.8, 41500, 1775809841.5)
				mock.ExpectQuery(regexp.QuoteMeta("FROM scores WHERE user_id = ? AND chapter = ? ORDER BY date_key DESC LIMIT ?")).
					WithArgs("user-1", 2, 100).
					WillReturnRows(rows)
			},
			want: map[string]gateway.RawScore{
				"1775809841": {
					Chapter:    float(2),
					Correct:    float(8),
					Incorrect:  float(2),
					Total:      float(10),
					Accuracy:   float(0.8),
					Date:       float(1775809841.5),
					DurationMs: float(41500),
				},
			},
		},
		{
			name: "no history",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM scores").
					WillReturnRows(sqlmock.NewRows([]string{"date_key", "chapter", "correct", "incorrect", "total", "accuracy", "duration_ms", "date"}))
			},
			want: map[string]gateway.RawScore{},
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM scores").WillReturnError(fmt.Errorf("timeout"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, mock := newTestGateway(t)
			tt.setupMock(mock)

			got, err := g.FetchScoreHistory(context.Background(), "user-1", 2, 100)
			if tt.wantErr {
				assert.ErrorIs(t, err, gateway.ErrUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGateway_WriteScore(t *testing.T) {
	record := gateway.ScoreRecord{
		Chapter:            2,
		Correct:            8,
		Incorrect:          2,
		Total:              10,
		Accuracy:           0.8,
		Date:               1775809841.5,
		DurationMs:         41500,
		CorrectDateScore:   "(2026-04-10,8)",
		IncorrectDateScore: "(2026-04-10,2)",
	}

	tests := []struct {
		name      string
		key       string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "upserts",
			key:  "1775809841",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scores (user_id, chapter, date_key,")).
					WithArgs("user-1", 2, int64(1775809841), 8, 2, 10, 0.8, int64(41500), 1775809841.5, "(2026-04-10,8)", "(2026-04-10,2)").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:      "non numeric key",
			key:       "abc",
			setupMock: func(mock sqlmock.Sqlmock) {},
			wantErr:   true,
		},
		{
			name: "db error",
			key:  "1775809841",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO scores").WillReturnError(fmt.Errorf("deadlock"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, mock := newTestGateway(t)
			tt.setupMock(mock)

			err := g.WriteScore(context.Background(), "user-1", 2, tt.key, record)
			if tt.wantErr {
				assert.ErrorIs(t, err, gateway.ErrUnavailable)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGateway_WriteSharedDeck(t *testing.T) {
	g, mock := newTestGateway(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO shared_decks (share_key, title, description, cards, created_at) VALUES (?, ?, ?, ?, ?)")).
		WithArgs("abc123def456ghij", "Bones", "", []byte(`[{"term":"femur","definition":"thigh bone"}]`), int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := g.WriteSharedDeck(context.Background(), "abc123def456ghij", gateway.ShareRecord{
		Title:     "Bones",
		Cards:     []deck.Card{{Term: "femur", Definition: "thigh bone"}},
		CreatedAt: 1700000000000,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_ReadSharedDeck(t *testing.T) {
	query := regexp.QuoteMeta("SELECT title, description, cards, created_at FROM shared_decks WHERE share_key = ?")
	columns := []string{"title", "description", "cards", "created_at"}

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      gateway.ShareRecord
		wantErr   error
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("code").WillReturnRows(sqlmock.NewRows(columns).
					AddRow("Bones", "skeleton", []byte(`[{"term":"femur","definition":"thigh bone"}]`), int64(1700000000000)))
			},
			want: gateway.ShareRecord{
				Title:       "Bones",
				Description: "skeleton",
				Cards:       []deck.Card{{Term: "femur", Definition: "thigh bone"}},
				CreatedAt:   1700000000000,
			},
		},
		{
			name: "drops malformed cards",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("code").WillReturnRows(sqlmock.NewRows(columns).
					AddRow("Bones", "", []byte(`[{"term":1,"definition":"x"},{"term":"femur","definition":"thigh bone"}]`), int64(1)))
			},
			want: gateway.ShareRecord{
				Title:     "Bones",
				Cards:     []deck.Card{{Term: "femur", Definition: "thigh bone"}},
				CreatedAt: 1,
			},
		},
		{
			name: "missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("code").WillReturnRows(sqlmock.NewRows(columns))
			},
			wantErr: gateway.ErrNotFound,
		},
		{
			name: "corrupt cards",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("code").WillReturnRows(sqlmock.NewRows(columns).
					AddRow("Bones", "", []byte(`{`), int64(1)))
			},
			wantErr: gateway.ErrUnavailable,
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WillReturnError(fmt.Errorf("connection reset"))
			},
			wantErr: gateway.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, mock := newTestGateway(t)
			tt.setupMock(mock)

			got, err := g.ReadSharedDeck(context.Background(), "code")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGateway_ImportContent(t *testing.T) {
	chapters := []gateway.Chapter{{Chapter: 1, Name: "Cells"}}
	terms := []gateway.Term{
		{Term: "mitosis", Definition: "cell division", Chapter: 1},
		{Term: "meiosis", Definition: "reduction division", Chapter: 1},
	}

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "commits both tables",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chapters (chapter, name) VALUES (?, ?) ON DUPLICATE KEY UPDATE")).
					WithArgs(1, "Cells").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO terms (chapter, term, definition) VALUES (?, ?, ?), (?, ?, ?)")).
					WithArgs(1, "mitosis", "cell division", 1, "meiosis", "reduction division").
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectCommit()
			},
		},
		{
			name: "rolls back when terms fail",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO chapters").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO terms").WillReturnError(fmt.Errorf("duplicate"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, mock := newTestGateway(t)
			tt.setupMock(mock)

			err := g.ImportContent(context.Background(), chapters, terms)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
