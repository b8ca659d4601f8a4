// Package kvstore implements the controller's key/value persistence layer
// (C11): a single table of opaque JSON documents keyed by string, backed by
// GORM over SQLite or Postgres with embedded golang-migrate migrations, the
// same stack the teacher uses for its relational tables.
package kvstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// entry is the single backing table: kv_entries(key, value, updated_at).
type entry struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (entry) TableName() string { return "kv_entries" }

// Config holds the configuration required to open the KV store.
type Config struct {
	Driver   string // "sqlite" or "postgres"
	DSN      string
	Logger   *zap.Logger
	LogLevel gormlogger.LogLevel
}

// Store is the opaque-document key/value store the Controller is the sole
// writer of. Values are caller-marshaled JSON; Store never interprets them.
type Store struct {
	db *gorm.DB
}

// New opens the backing database, applies pending migrations, and returns a
// ready-to-use Store.
func New(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("kvstore: logger is required")
	}

	gormCfg := &gorm.Config{Logger: newZapGORMLogger(cfg.Logger, cfg.LogLevel)}

	var (
		database *gorm.DB
		sqlDB    *sql.DB
		err      error
		drvName  string
	)

	switch cfg.Driver {
	case "sqlite", "":
		sqlDB, err = sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("kvstore: failed to open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)

		database, err = gorm.Open(gormsqlite.Dialector{Conn: sqlDB}, gormCfg)
		if err != nil {
			return nil, fmt.Errorf("kvstore: failed to initialize gorm with sqlite: %w", err)
		}
		drvName = "sqlite"

	case "postgres":
		database, err = gorm.Open(gormpostgres.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("kvstore: failed to open postgres: %w", err)
		}
		sqlDB, err = database.DB()
		if err != nil {
			return nil, fmt.Errorf("kvstore: failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		drvName = "postgres"

	default:
		return nil, fmt.Errorf("kvstore: unsupported driver %q, use \"sqlite\" or \"postgres\"", cfg.Driver)
	}

	if err := runMigrations(sqlDB, drvName, cfg.Logger); err != nil {
		return nil, fmt.Errorf("kvstore: migrations failed: %w", err)
	}

	return &Store{db: database}, nil
}

// Get returns the value stored under key, or ok=false if no such key exists.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e entry
	err := s.db.WithContext(ctx).First(&e, "key = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kvstore: get %q: %w", key, err)
	}
	return e.Value, true, nil
}

// Put upserts value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	e := entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Save(&e).Error
	if err != nil {
		return fmt.Errorf("kvstore: put %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a nonexistent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("kvstore: delete %q: %w", key, err)
	}
	return nil
}

// GetAll returns every key/value pair whose key starts with prefix.
func (s *Store) GetAll(ctx context.Context, prefix string) (map[string][]byte, error) {
	var entries []entry
	like := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(prefix) + "%"
	if err := s.db.WithContext(ctx).Where(`key LIKE ? ESCAPE '\'`, like).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("kvstore: get all %q: %w", prefix, err)
	}
	result := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Key, prefix) {
			continue
		}
		result[e.Key] = e.Value
	}
	return result, nil
}

func runMigrations(sqlDB *sql.DB, driver string, log *zap.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	var m *migrate.Migrate

	switch driver {
	case "sqlite":
		drv, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("failed to create sqlite migrate driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "sqlite", drv)
		if err != nil {
			return fmt.Errorf("failed to create migrator: %w", err)
		}

	case "postgres":
		drv, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
		if err != nil {
			return fmt.Errorf("failed to create postgres migrate driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "postgres", drv)
		if err != nil {
			return fmt.Errorf("failed to create migrator: %w", err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("kvstore migrations applied successfully")
	return nil
}
