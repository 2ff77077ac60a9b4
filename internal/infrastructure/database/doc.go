// Package database provides relational store connectivity for the device registry.
//
// This package manages:
//   - SQLite connections (default driver) with WAL mode and busy timeout
//   - Idempotent schema bootstrap from embedded SQL files
//   - PostgreSQL connections through GORM for server deployments
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - SQLite database file permissions are set to 0600
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.EnsureSchema(ctx); err != nil {
//	    return err
//	}
package database
