package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Postgres connection pool settings.
const (
	postgresMaxOpenConns = 10
	postgresMaxIdleConns = 5
)

// OpenPostgres connects to PostgreSQL through GORM.
//
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey. GORM's own statement logging is silenced; the
// service logs at the request boundary instead.
//
// Parameters:
//   - ctx: Context bounding the connectivity check
//   - dsn: libpq-style connection string
//
// Returns:
//   - *gorm.DB: Connected handle (close via DB().Close())
//   - error: If the connection cannot be established
func OpenPostgres(ctx context.Context, dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("getting postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(postgresMaxOpenConns)
	sqlDB.SetMaxIdleConns(postgresMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying postgres connection: %w", err)
	}

	return gdb, nil
}
