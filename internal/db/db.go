package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	stdfs "io/fs"
	"regexp"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "flowers.db"

// Open opens (or creates) the shop's SQLite database and applies pending migrations.
// Migrations are versioned .sql files embedded from internal/db/migrations:
//
//	0001_name.up.sql / 0001_name.down.sql
//
// A script starting with "-- NO_TX" runs outside a transaction.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath
	}
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if strings.Contains(path, "mode=memory") || path == ":memory:" {
		// Pragmas are per connection and each private in-memory connection is
		// its own database, so keep a single connection.
		d.SetMaxOpenConns(1)
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	// journal_mode may not be supported for in-memory databases. Ignore errors.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	for _, pragma := range []string{`PRAGMA busy_timeout=5000`, `PRAGMA foreign_keys=ON`} {
		if _, err := d.Exec(pragma); err != nil {
			_ = d.Close()
			return nil, err
		}
	}
	if err := applyMigrations(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// MigrationStatus describes one known migration.
type MigrationStatus struct {
	Version int
	Name    string
	Applied bool
}

// Status lists every embedded migration in version order with its applied flag.
func Status(d *sql.DB) ([]MigrationStatus, error) {
	migs, err := loadMigrations()
	if err != nil {
		return nil, err
	}
	applied, err := appliedVersions(d)
	if err != nil {
		return nil, err
	}
	out := make([]MigrationStatus, 0, len(migs))
	for _, v := range sortedVersions(migs) {
		out = append(out, MigrationStatus{Version: v, Name: migs[v].name, Applied: applied[v]})
	}
	return out, nil
}

// RollbackLast rolls back the most recently applied migration. It returns the
// rolled back version, or 0 when nothing was applied.
func RollbackLast(d *sql.DB) (int, error) {
	if d == nil {
		return 0, errors.New("nil db")
	}
	if err := ensureMigrationsTable(d); err != nil {
		return 0, err
	}
	var version int
	err := d.QueryRow(`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	migs, err := loadMigrations()
	if err != nil {
		return 0, err
	}
	m, ok := migs[version]
	if !ok || m.downFile == "" {
		return 0, fmt.Errorf("no down migration found for version %d", version)
	}
	if err := runScript(d, m.downFile, `DELETE FROM schema_migrations WHERE version = ?`, version); err != nil {
		return 0, fmt.Errorf("rollback %04d: %w", version, err)
	}
	return version, nil
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version  int
	name     string
	upFile   string // path inside embedded FS
	downFile string // path inside embedded FS
}

var migFileRe = regexp.MustCompile(`^([0-9]{4})_(.+)\.(up|down)\.sql$`)

func loadMigrations() (map[int]migration, error) {
	entries := map[int]migration{}
	list, err := stdfs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return entries, nil
	}
	for _, de := range list {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		m := migFileRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		verStr, migName, kind := m[1], m[2], m[3]
		var ver int
		if _, err := fmt.Sscanf(verStr, "%04d", &ver); err != nil {
			continue
		}
		item := entries[ver]
		item.version = ver
		item.name = migName
		p := "migrations/" + name
		if kind == "up" {
			item.upFile = p
		} else {
			item.downFile = p
		}
		entries[ver] = item
	}
	return entries, nil
}

func sortedVersions(migs map[int]migration) []int {
	versions := make([]int, 0, len(migs))
	for v := range migs {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions
}

func ensureMigrationsTable(d *sql.DB) error {
	_, err := d.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
        version INTEGER PRIMARY KEY,
        applied_at TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
    )`)
	return err
}

func appliedVersions(d *sql.DB) (map[int]bool, error) {
	if err := ensureMigrationsTable(d); err != nil {
		return nil, err
	}
	rows, err := d.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	got := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		got[v] = true
	}
	return got, rows.Err()
}

func applyMigrations(d *sql.DB) error {
	migs, err := loadMigrations()
	if err != nil {
		return err
	}
	if len(migs) == 0 {
		return nil
	}
	applied, err := appliedVersions(d)
	if err != nil {
		return err
	}
	for _, v := range sortedVersions(migs) {
		if applied[v] {
			continue
		}
		m := migs[v]
		if strings.TrimSpace(m.upFile) == "" {
			return fmt.Errorf("missing up migration for version %04d", v)
		}
		if err := runScript(d, m.upFile, `INSERT INTO schema_migrations(version) VALUES(?)`, v); err != nil {
			return fmt.Errorf("migration %04d failed: %w", v, err)
		}
	}
	return nil
}

// runScript executes one migration file followed by the bookkeeping statement,
// inside a transaction unless the script opts out with "-- NO_TX".
func runScript(d *sql.DB, file, bookkeeping string, version int) error {
	sqlText, err := migrationsFS.ReadFile(file)
	if err != nil {
		return err
	}
	text := string(sqlText)
	if strings.HasPrefix(strings.TrimSpace(text), "-- NO_TX") {
		if _, err := d.Exec(text); err != nil {
			return err
		}
		_, err := d.Exec(bookkeeping, version)
		return err
	}
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(text); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(bookkeeping, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
