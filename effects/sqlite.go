package effects

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mitchellh/go-homedir"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps key/value pairs in a SQLite table.
type SQLiteStore struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates the database at path. A leading ~ is
// expanded. Use ":memory:" for a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		exp, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("effects: expand %q: %w", path, err)
		}
		dsn = exp + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("effects: open db: %w", err)
	}
	// :memory: databases are per connection.
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("effects: migrate: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.conn.Exec(`
	CREATE TABLE IF NOT EXISTS prefs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	return err
}

// Get implements Store.
func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var value string
	err := s.conn.Get(&value, "SELECT value FROM prefs WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

// Set implements Store.
func (s *SQLiteStore) Set(key string, value []byte) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO prefs (key, value) VALUES (?, ?)",
		key, string(value),
	)
	return err
}
