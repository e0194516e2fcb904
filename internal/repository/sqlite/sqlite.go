package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection with coarse-grained locking; the
// driver is kept at a single connection, so serializing writers here
// avoids SQLITE_BUSY under concurrent requests.
type DB struct {
	sync.RWMutex
	conn *sql.DB
}

// New opens (creating if necessary) and migrates the database at path.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		color TEXT NOT NULL,
		laplacian_var REAL DEFAULT 0,
		blurry INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS plates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id INTEGER NOT NULL,
		x INTEGER DEFAULT 0,
		y INTEGER DEFAULT 0,
		width INTEGER DEFAULT 0,
		height INTEGER DEFAULT 0,
		area REAL DEFAULT 0,
		text TEXT DEFAULT '',
		FOREIGN KEY (analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_plates_analysis ON plates(analysis_id);
	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Conn exposes the underlying connection to repositories in this
// package.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close shuts down the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
