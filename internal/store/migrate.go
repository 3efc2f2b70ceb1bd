package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies all pending migrations from dir against databaseURL.
// A database already at the latest version is not an error.
func RunMigrations(databaseURL, dir string) error {
	src := dir
	if !strings.Contains(src, "://") {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve migrations dir: %w", err)
		}
		src = "file://" + abs
	}

	m, err := migrate.New(src, databaseURL)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// RollbackMigrations reverts the given number of migrations (all when steps
// is zero). Used by the migrate subcommand only.
func RollbackMigrations(databaseURL, dir string, steps int) error {
	src := dir
	if !strings.Contains(src, "://") {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve migrations dir: %w", err)
		}
		src = "file://" + abs
	}

	m, err := migrate.New(src, databaseURL)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback migrations: %w", err)
	}
	return nil
}
