package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// Migrator runs the schema migrations backing internal/store's tables
// (players, projections, scenarios, stat_overrides, team_stats, and the
// rest of the data model).
type Migrator struct {
	db *sql.DB
	m  *migrate.Migrate
}

// NewMigrator opens databaseURL and wires it to the migration files under
// migrationsPath.
func NewMigrator(databaseURL, migrationsPath string) (*Migrator, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("resolve migrations path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		db.Close()
		return nil, fmt.Errorf("migrations directory does not exist: %s", absPath)
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", absPath), "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	return &Migrator{db: db, m: m}, nil
}

func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("revert migration: %w", err)
	}
	return nil
}

func (m *Migrator) Steps(n int) error {
	if err := m.m.Steps(n); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrate %d steps: %w", n, err)
	}
	return nil
}

func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return 0, false, fmt.Errorf("get version: %w", err)
	}
	return version, dirty, nil
}

func (m *Migrator) Force(version int) error {
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("force version: %w", err)
	}
	return nil
}

// List returns every migration file under migrationsPath, sorted by name.
func (m *Migrator) List(migrationsPath string) ([]string, error) {
	files, err := os.ReadDir(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var migrations []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			migrations = append(migrations, file.Name())
		}
	}

	sort.Strings(migrations)
	return migrations, nil
}

// Pending returns the subset of List's migrations whose leading version
// number is greater than the database's currently applied version — the
// ones an Up call would still run. A migration file with no parseable
// leading number is treated as pending, since there is no version to
// compare it against.
func (m *Migrator) Pending(migrationsPath string) ([]string, error) {
	all, err := m.List(migrationsPath)
	if err != nil {
		return nil, err
	}
	current, _, err := m.Version()
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, name := range all {
		v, ok := leadingVersion(name)
		if !ok || uint(v) > current {
			pending = append(pending, name)
		}
	}
	return pending, nil
}

func leadingVersion(filename string) (int, bool) {
	digits := strings.TrimLeft(filename, "0123456789")
	prefix := filename[:len(filename)-len(digits)]
	if prefix == "" {
		return 0, false
	}
	v, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Close releases both the migrator's internal handle and the connection it
// opened in NewMigrator.
func (m *Migrator) Close() error {
	if m.m != nil {
		if sourceErr, dbErr := m.m.Close(); sourceErr != nil || dbErr != nil {
			return fmt.Errorf("close migrator: source=%v, db=%v", sourceErr, dbErr)
		}
	}
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	return nil
}
