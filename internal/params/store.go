// Package params persists the parameter tables of the autopilot modules and
// serves them to the downlink.
//
// Each module (controller, helicopter, radio calibration, ...) owns an
// ordered table of named float parameters under one component id. Modules
// keep the order they were registered in and parameters keep the order they
// were first written in, which is the order a full parameter dump reports.
package params

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/qgclink/internal/autopilot"
	"github.com/banshee-data/qgclink/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrUnknownModule is returned for operations on a module that was never
	// registered.
	ErrUnknownModule = errors.New("params: unknown module")
	// ErrNameTooLong is returned for names that do not fit the wire field.
	ErrNameTooLong = errors.New("params: parameter name too long")
)

// Store is a sqlite-backed parameter store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the store at path and applies pending
// migrations. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for the admin SQL browser.
func (s *Store) DB() *sql.DB {
	return s.db
}

// MigrateUp applies all pending migrations.
func (s *Store) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back one migration.
func (s *Store) MigrateDown() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Version returns the current schema version and whether it is dirty.
func (s *Store) Version() (uint, bool, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// newMigrate builds a migrate instance over the embedded migrations. The
// instance is not closed: closing it would close the shared *sql.DB.
func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// RegisterModule adds a module owning componentID. Registering an existing
// module is a no-op that keeps its original position.
func (s *Store) RegisterModule(name string, componentID uint8) error {
	_, err := s.db.Exec(`
		INSERT INTO modules (name, component_id, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM modules))
		ON CONFLICT(name) DO NOTHING`, name, componentID)
	if err != nil {
		return fmt.Errorf("failed to register module %s: %w", name, err)
	}
	return nil
}

// Modules returns the registered module names in registration order.
func (s *Store) Modules() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM modules ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) componentID(module string) (uint8, error) {
	var id uint8
	err := s.db.QueryRow(`SELECT component_id FROM modules WHERE name = ?`, module).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownModule, module)
	}
	return id, err
}

// Set writes one parameter. New parameters are appended to the module's
// order; existing ones keep their position.
func (s *Store) Set(module, name string, value float64) error {
	if len(name) > autopilot.ParamIDLen {
		return fmt.Errorf("%w: %q has %d bytes, max %d", ErrNameTooLong, name, len(name), autopilot.ParamIDLen)
	}
	if _, err := s.componentID(module); err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE parameters SET value = ?, updated_at = CURRENT_TIMESTAMP
		WHERE module = ? AND name = ?`, value, module, name)
	if err != nil {
		return fmt.Errorf("failed to update %s.%s: %w", module, name, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	_, err = s.db.Exec(`
		INSERT INTO parameters (module, name, value, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM parameters WHERE module = ?))`,
		module, name, value, module)
	if err != nil {
		return fmt.Errorf("failed to insert %s.%s: %w", module, name, err)
	}
	return nil
}

// Seed registers module and writes every default that is not already
// stored. Values changed at runtime survive a restart.
func (s *Store) Seed(module string, componentID uint8, defaults []autopilot.Parameter) error {
	if err := s.RegisterModule(module, componentID); err != nil {
		return err
	}
	for _, p := range defaults {
		if len(p.Name) > autopilot.ParamIDLen {
			return fmt.Errorf("%w: %q", ErrNameTooLong, p.Name)
		}
		_, err := s.db.Exec(`
			INSERT INTO parameters (module, name, value, position)
			VALUES (?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM parameters WHERE module = ?))
			ON CONFLICT(module, name) DO NOTHING`,
			module, p.Name, p.Value, module)
		if err != nil {
			return fmt.Errorf("failed to seed %s.%s: %w", module, p.Name, err)
		}
	}
	return nil
}

// Parameters returns the module's parameters in order.
func (s *Store) Parameters(module string) ([]autopilot.Parameter, error) {
	rows, err := s.db.Query(`
		SELECT m.component_id, p.name, p.value
		FROM parameters p JOIN modules m ON m.name = p.module
		WHERE p.module = ?
		ORDER BY p.position`, module)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []autopilot.Parameter
	for rows.Next() {
		var p autopilot.Parameter
		if err := rows.Scan(&p.ComponentID, &p.Name, &p.Value); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Lookup finds a parameter by component id and name across all modules.
func (s *Store) Lookup(id autopilot.ParamID) (autopilot.Parameter, bool, error) {
	return s.lookup("", id)
}

// lookup restricts the search to module unless it is empty.
func (s *Store) lookup(module string, id autopilot.ParamID) (autopilot.Parameter, bool, error) {
	p := autopilot.Parameter{ComponentID: id.ComponentID, Name: id.Name}
	err := s.db.QueryRow(`
		SELECT p.value
		FROM parameters p JOIN modules m ON m.name = p.module
		WHERE m.component_id = ? AND p.name = ? AND (? = '' OR p.module = ?)
		ORDER BY m.position LIMIT 1`, id.ComponentID, id.Name, module, module).Scan(&p.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return autopilot.Parameter{}, false, nil
	}
	if err != nil {
		return autopilot.Parameter{}, false, err
	}
	return p, true, nil
}

// Change is one recorded parameter update.
type Change struct {
	Module    string   `json:"module"`
	Name      string   `json:"name"`
	OldValue  *float64 `json:"old_value"`
	NewValue  float64  `json:"new_value"`
	ChangedAt string   `json:"changed_at"`
}

// History returns the most recent parameter changes, newest first.
func (s *Store) History(limit int) ([]Change, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT module, name, old_value, new_value, changed_at
		FROM parameter_history
		ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Change
	for rows.Next() {
		var c Change
		var old sql.NullFloat64
		if err := rows.Scan(&c.Module, &c.Name, &old, &c.NewValue, &c.ChangedAt); err != nil {
			return nil, err
		}
		if old.Valid {
			v := old.Float64
			c.OldValue = &v
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Module is a read view of one module, usable as a downlink parameter
// source.
type Module struct {
	store *Store
	name  string
}

// Module returns the view of name. The module need not exist yet.
func (s *Store) Module(name string) *Module {
	return &Module{store: s, name: name}
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Parameters returns the module's parameters in order. Read errors are
// logged and yield an empty list so the downlink keeps streaming.
func (m *Module) Parameters() []autopilot.Parameter {
	ps, err := m.store.Parameters(m.name)
	if err != nil {
		monitoring.Logf("params: failed to read module %s: %v", m.name, err)
		return nil
	}
	return ps
}

// LookupParameter answers a single request with one indexed query. Read
// errors are logged and reported as not found.
func (m *Module) LookupParameter(id autopilot.ParamID) (autopilot.Parameter, bool) {
	p, ok, err := m.store.lookup(m.name, id)
	if err != nil {
		monitoring.Logf("params: failed to look up %s.%s: %v", m.name, id.Name, err)
		return autopilot.Parameter{}, false
	}
	return p, ok
}
