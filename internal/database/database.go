package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"receipt-ledger/internal/config"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Init opens the ledger database. Schema changes are applied by Migrate,
// which must run first. SQL statements are logged through log when
// cfg.LogMode is set, slow queries and errors always are.
func Init(cfg config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	level := gormlogger.Warn
	if cfg.LogMode {
		level = gormlogger.Info
	}
	sqlLog := gormWriter{log: log.With().Str("component", "gorm").Logger()}

	db, err := gorm.Open(sqlite.Open(dsn(cfg.Path)), &gorm.Config{
		Logger: gormlogger.New(sqlLog, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		log.Warn().Err(err).Msg("enable WAL journal")
	}
	return db, nil
}

// gormWriter forwards gorm's formatted lines to zerolog. gorm has already
// filtered them by its own level.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.WithLevel(zerolog.InfoLevel).Msgf(format, args...)
}

// Ping reports whether the database answers within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// dsn turns on foreign keys and a busy timeout for every pooled connection,
// a one-off PRAGMA would only reach the first one.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_synchronous=NORMAL", path)
}
