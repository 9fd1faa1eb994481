package migrator

import (
	"database/sql"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/webhookx-io/hookdash/db/migrations"
)

// Migrator is a database migrator
type Migrator struct {
	db       *sql.DB
	database string
}

func New(db *sql.DB, database string) *Migrator {
	return &Migrator{
		db:       db,
		database: database,
	}
}

func (m *Migrator) init() (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(m.db, &postgres.Config{
		DatabaseName: m.database,
	})
	if err != nil {
		return nil, err
	}

	d, err := iofs.New(migrations.SQLs, ".")
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", d, "postgres", driver)
}

// Reset drops everything in the database
func (m *Migrator) Reset() error {
	migrate, err := m.init()
	if err != nil {
		return err
	}
	return migrate.Drop()
}

// Up applies all pending migrations
func (m *Migrator) Up() error {
	mg, err := m.init()
	if err != nil {
		return err
	}
	err = mg.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Status returns the current version, 0 when no migration has been applied
func (m *Migrator) Status() (version uint, dirty bool, err error) {
	mg, err := m.init()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return
}

// Pending reports whether there are migrations newer than the current version
func (m *Migrator) Pending() (bool, error) {
	version, dirty, err := m.Status()
	if err != nil {
		return false, err
	}
	if dirty {
		return true, nil
	}
	d, err := iofs.New(migrations.SQLs, ".")
	if err != nil {
		return false, err
	}
	defer d.Close()
	if version == 0 {
		_, err := d.First()
		return err == nil, nil
	}
	_, err = d.Next(version)
	return err == nil, nil
}
