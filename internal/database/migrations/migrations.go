// Package migrations applies the embedded schema to a MySQL database.
package migrations

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/at-ishikawa/pobcards/schemas"
)

const sourceDir = "migrations"

// Status is the schema version of a database compared to the embedded files.
type Status struct {
	Current uint
	Latest  uint
	Dirty   bool
}

// UpToDate reports whether no migration is pending.
func (s Status) UpToDate() bool {
	return !s.Dirty && s.Current == s.Latest
}

// Up runs all pending migrations. The db must be opened with multiStatements.
// The caller owns db; it is not closed here.
func Up(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("m.Up() > %w", err)
	}
	return nil
}

// CheckStatus reads the applied version from db.
func CheckStatus(db *sql.DB) (Status, error) {
	latest, err := LatestVersion()
	if err != nil {
		return Status{}, err
	}

	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}
	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return Status{Latest: latest}, nil
		}
		return Status{}, fmt.Errorf("m.Version() > %w", err)
	}
	return Status{Current: version, Latest: latest, Dirty: dirty}, nil
}

// LatestVersion returns the highest version among the embedded migrations.
func LatestVersion() (uint, error) {
	src, err := iofs.New(schemas.Migrations, sourceDir)
	if err != nil {
		return 0, fmt.Errorf("iofs.New() > %w", err)
	}
	defer func() { _ = src.Close() }()
	return latestVersion(src)
}

func latestVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("src.First() > %w", err)
	}
	for {
		next, err := src.Next(version)
		if err != nil {
			return version, nil
		}
		version = next
	}
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(schemas.Migrations, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("iofs.New() > %w", err)
	}

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("mysql.WithInstance() > %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("migrate.NewWithInstance() > %w", err)
	}
	return m, nil
}
