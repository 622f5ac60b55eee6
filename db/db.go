package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

//go:generate go tool github.com/sqlc-dev/sqlc/cmd/sqlc generate

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrationPattern = regexp.MustCompile(`^(\d{3})-.*\.sql$`)

// MigrationHook is called after each applied migration with its wall-clock window.
type MigrationHook func(filename string, start, end time.Time)

// Open opens an sqlite database and prepares pragmas suitable for a single bot process.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection keeps foreign_keys and
	// busy_timeout applied to every statement.
	db.SetMaxOpenConns(1)
	pragmas := []struct {
		stmt string
		what string
	}{
		{"PRAGMA foreign_keys=ON;", "enable foreign keys"},
		{"PRAGMA journal_mode=wal;", "set WAL"},
		{"PRAGMA busy_timeout=5000;", "set busy_timeout"},
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p.what, err)
		}
	}
	return db, nil
}

// RunMigrations executes embedded migrations in numeric order (NNN-*.sql).
// Applied migrations are recorded in the migrations table and skipped on later runs.
func RunMigrations(db *sql.DB, hooks ...MigrationHook) error {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var migrations []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if migrationPattern.MatchString(e.Name()) {
			migrations = append(migrations, e.Name())
		}
	}
	sort.Strings(migrations)

	executed, err := executedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		match := migrationPattern.FindStringSubmatch(m)
		if len(match) != 2 {
			return fmt.Errorf("invalid migration filename: %s", m)
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			return fmt.Errorf("parse migration number %s: %w", m, err)
		}
		if executed[n] {
			continue
		}
		start := time.Now()
		if err := executeMigration(db, n, m); err != nil {
			return fmt.Errorf("execute %s: %w", m, err)
		}
		end := time.Now()
		slog.Info("db: applied migration", "file", m, "number", n)
		for _, h := range hooks {
			h(m, start, end)
		}
	}
	return nil
}

func executedMigrations(db *sql.DB) (map[int]bool, error) {
	executed := make(map[int]bool)
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='migrations'").Scan(&tableName)
	switch {
	case err == nil:
		rows, err := db.Query("SELECT migration_number FROM migrations")
		if err != nil {
			return nil, fmt.Errorf("query executed migrations: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var n int
			if err := rows.Scan(&n); err != nil {
				return nil, fmt.Errorf("scan migration number: %w", err)
			}
			executed[n] = true
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate executed migrations: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		slog.Info("db: migrations table not found; running all migrations")
	default:
		return nil, fmt.Errorf("check migrations table: %w", err)
	}
	return executed, nil
}

func executeMigration(db *sql.DB, number int, filename string) error {
	content, err := migrationFS.ReadFile("migrations/" + filename)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec(string(content)); err != nil {
		return fmt.Errorf("exec %s: %w", filename, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO migrations (migration_number, migration_name, executed_at) VALUES (?, ?, ?)",
		number, filename, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("record %s: %w", filename, err)
	}
	return tx.Commit()
}
