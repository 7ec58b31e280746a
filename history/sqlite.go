package history

import (
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteSlot stores a slot as a row of the slots table in a SQLite database.
type SQLiteSlot struct {
	db   *sql.DB
	name string
}

// initializeSchema creates the database schema if it doesn't exist.
func initializeSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}

// initDB ensures the database and tables exist, returning a connection.
func initDB(dataSourceName string) (*sql.DB, error) {
	dbDir := filepath.Dir(dataSourceName)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		err = os.MkdirAll(dbDir, 0755)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenSQLiteSlot opens the named slot in the database at dbPath, creating the
// database file and schema when needed.
func OpenSQLiteSlot(dbPath, name string) (*SQLiteSlot, error) {
	db, err := initDB(dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open/initialize database at %s", dbPath)
	}
	return &SQLiteSlot{db: db, name: name}, nil
}

func (s *SQLiteSlot) Name() string { return s.name }

func (s *SQLiteSlot) Read() ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM slots WHERE name = ?;`, s.name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query slot '%s'", s.name)
	}
	return payload, nil
}

// Write replaces the slot payload in a single statement.
func (s *SQLiteSlot) Write(data []byte) error {
	_, err := s.db.Exec(`
	INSERT INTO slots (name, payload, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		payload = excluded.payload,
		updated_at = excluded.updated_at;
	`, s.name, data, time.Now())
	if err != nil {
		return errors.Wrapf(err, "failed to write slot '%s'", s.name)
	}
	return nil
}

func (s *SQLiteSlot) Remove() error {
	if _, err := s.db.Exec(`DELETE FROM slots WHERE name = ?;`, s.name); err != nil {
		return errors.Wrapf(err, "failed to delete slot '%s'", s.name)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteSlot) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
