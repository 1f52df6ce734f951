package deck

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const createSlotsTable = `CREATE TABLE IF NOT EXISTS slots (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteSlot stores slot values in a local SQLite database file.
type SQLiteSlot struct {
	db *sqlx.DB
}

// OpenSQLiteSlot opens (creating if needed) the database at path.
func OpenSQLiteSlot(path string) (*SQLiteSlot, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open(%s) > %w", path, err)
	}
	// a single connection keeps writes serialized
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createSlotsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Exec(create slots) > %w", err)
	}
	return &SQLiteSlot{db: db}, nil
}

func (s *SQLiteSlot) Get(key string) ([]byte, error) {
	var value []byte
	if err := s.db.Get(&value, "SELECT value FROM slots WHERE key = ?", key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("db.Get(%s) > %w", key, err)
	}
	return value, nil
}

func (s *SQLiteSlot) Set(key string, value []byte) error {
	_, err := s.db.Exec(`INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("db.Exec(upsert %s) > %w", key, err)
	}
	return nil
}

func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}
