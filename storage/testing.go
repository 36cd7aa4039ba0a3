package storage

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	dbpkg "github.com/wellnesslabco/glowpost/storage/db"
)

// NewTestDB creates an in-memory sqlite database with migrations applied.
func NewTestDB() (*Storage, func(), error) {
	database, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open test database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(database, "migrations"); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &Storage{
		db:      database,
		Queries: dbpkg.New(database),
	}
	cleanup := func() {
		database.Close()
	}
	return s, cleanup, nil
}
