package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS telemetry_events (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    data_json TEXT NOT NULL DEFAULT 'null',
    received_at TIMESTAMP NOT NULL
);
`

// InitSchema initializes the database schema
func InitSchema(queue *DBQueue) error {
	return queue.Execute(func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// Open opens the SQLite file at path in WAL mode and brings the schema up to date.
// The caller owns both returned values and closes the queue before the database.
func Open(path string) (*sql.DB, *DBQueue, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every statement already goes through the queue one at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	queue := NewDBQueue(db)

	if err := InitSchema(queue); err != nil {
		queue.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	if err := RunMigrations(queue); err != nil {
		queue.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return db, queue, nil
}
