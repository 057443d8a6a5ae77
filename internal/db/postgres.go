package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// Connect opens the Postgres pool from DATABASE_URL and verifies it.
func Connect() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	conn, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	return conn, nil
}

// RunMigrations applies the SQL files under ./migrations when MIGRATIONS is
// enabled. A no-change result is not an error.
func RunMigrations() error {
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v != "1" && v != "true" && v != "yes" {
		log.Info("MIGRATIONS not enabled; skipping SQL migrations")
		return nil
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	log.Info("SQL migrations applied")
	return nil
}
