// Package store implements the keyed local store engine: a generic,
// schema-driven, indexed collection store over embedded SQLite.
// It has no knowledge of the domain entities kept in it.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/asteroid-belt/recall/internal/errs"
)

// Record is a single stored document. Values follow JSON shapes: strings,
// float64 numbers, bools, nil, []any and map[string]any.
type Record map[string]any

// Store wraps the GORM connection with collection-level operations driven by
// a static schema descriptor.
type Store struct {
	db     *gorm.DB
	schema Schema
	path   string
	closed bool
}

// Config holds store configuration options.
type Config struct {
	Path        string
	Schema      Schema
	Debug       bool
	MaxIdleConn int
	MaxOpenConn int
}

// DefaultConfig returns sensible defaults for a store at path.
func DefaultConfig(path string, schema Schema) Config {
	return Config{
		Path:        path,
		Schema:      schema,
		Debug:       false,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	}
}

// metaRow is the engine's own bookkeeping table: schema version marker and
// the persisted layout used to enforce additive-only upgrades.
type metaRow struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (metaRow) TableName() string { return "store_meta" }

const (
	metaSchemaVersion = "schema_version"
	metaLayout        = "layout"
)

// Open creates the store connection, verifies the schema against the on-disk
// layout and applies any additive upgrade.
func Open(cfg Config) (*Store, error) {
	if err := cfg.Schema.Validate(); err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	// DELETE journal mode for simpler transaction handling
	// (WAL mode has visibility issues with the pure-Go SQLite driver)
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", cfg.Path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, schema: cfg.Schema, path: cfg.Path}

	if err := s.db.AutoMigrate(&metaRow{}); err != nil {
		return nil, fmt.Errorf("migrate store meta: %w", err)
	}
	if err := s.checkAdditive(); err != nil {
		return nil, err
	}
	if err := s.createTables(); err != nil {
		return nil, err
	}
	if err := s.writeLayout(); err != nil {
		return nil, err
	}

	return s, nil
}

// checkAdditive asserts that the code schema is a superset of whatever layout
// a previous version persisted: no collection or index may disappear, and the
// version marker never moves backward.
func (s *Store) checkAdditive() error {
	stored, err := s.getMeta(metaSchemaVersion)
	if err != nil {
		return err
	}
	if stored != "" {
		var ver int
		if _, err := fmt.Sscanf(stored, "%d", &ver); err != nil {
			return fmt.Errorf("parse stored schema version %q: %w", stored, err)
		}
		if ver > s.schema.Version {
			return fmt.Errorf("on-disk schema version %d is newer than code version %d", ver, s.schema.Version)
		}
	}

	raw, err := s.getMeta(metaLayout)
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	var layout map[string][]string
	if err := json.Unmarshal([]byte(raw), &layout); err != nil {
		return fmt.Errorf("parse stored layout: %w", err)
	}
	for name, indexes := range layout {
		coll, err := s.schema.collection(name)
		if err != nil {
			return fmt.Errorf("schema upgrade drops collection %q: additive upgrades only", name)
		}
		for _, idxName := range indexes {
			if _, err := coll.index(idxName); err != nil {
				return fmt.Errorf("schema upgrade drops index %q on collection %q: additive upgrades only", idxName, name)
			}
		}
	}
	return nil
}

// createTables materializes each declared collection as a table holding the
// record's JSON document plus one extracted column per indexed field.
func (s *Store) createTables() error {
	for _, c := range s.schema.Collections {
		cols := []string{`"key" TEXT PRIMARY KEY`, `"doc" TEXT NOT NULL`}
		for _, f := range c.indexedFields() {
			cols = append(cols, fmt.Sprintf(`%s TEXT`, fieldColumn(f)))
		}
		create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (%s)`, c.Name, strings.Join(cols, ", "))
		if err := s.db.Exec(create).Error; err != nil {
			return fmt.Errorf("create collection %s: %w", c.Name, err)
		}
		for _, idx := range c.Indexes {
			uniq := ""
			if idx.Unique {
				uniq = "UNIQUE "
			}
			fields := make([]string, len(idx.Fields))
			for i, f := range idx.Fields {
				fields[i] = fieldColumn(f)
			}
			stmt := fmt.Sprintf(`CREATE %sINDEX IF NOT EXISTS "idx_%s_%s" ON %q (%s)`,
				uniq, c.Name, idx.Name, c.Name, strings.Join(fields, ", "))
			if err := s.db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("create index %s on %s: %w", idx.Name, c.Name, err)
			}
		}
	}
	return nil
}

// writeLayout persists the schema version marker and the collection/index
// layout for the next open's additive check.
func (s *Store) writeLayout() error {
	layout := make(map[string][]string, len(s.schema.Collections))
	for _, c := range s.schema.Collections {
		names := make([]string, 0, len(c.Indexes))
		for _, idx := range c.Indexes {
			names = append(names, idx.Name)
		}
		layout[c.Name] = names
	}
	raw, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := s.setMeta(metaLayout, string(raw)); err != nil {
		return err
	}
	return s.setMeta(metaSchemaVersion, fmt.Sprintf("%d", s.schema.Version))
}

func (s *Store) getMeta(key string) (string, error) {
	var row metaRow
	err := s.db.First(&row, "key = ?", key).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", fmt.Errorf("read store meta %s: %w", key, err)
	}
	return row.Value, nil
}

func (s *Store) setMeta(key, value string) error {
	row := metaRow{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("write store meta %s: %w", key, err)
	}
	return nil
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Schema returns the schema descriptor the store was opened with.
func (s *Store) Schema() Schema {
	return s.schema
}

// Close closes the underlying connection. Further operations fail with
// ErrStoreClosed.
func (s *Store) Close() error {
	s.closed = true
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ready guards every operation against a closed store.
func (s *Store) ready() error {
	if s == nil || s.db == nil || s.closed {
		return errs.ErrStoreClosed
	}
	return nil
}

// Transaction executes fc within a database transaction. The callback
// receives a *Store bound to the transaction. Reads and writes inside it are
// atomic as a unit; a returned error rolls everything back.
func (s *Store) Transaction(fc func(tx *Store) error) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fc(&Store{db: tx, schema: s.schema, path: s.path})
	})
}

// fieldColumn names the extracted column for an indexed record field.
func fieldColumn(field string) string {
	return fmt.Sprintf(`"f_%s"`, field)
}
