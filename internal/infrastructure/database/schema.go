package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// SchemaFS holds the embedded *.sql schema files. The migrations package
// registers its files here from an init function:
//
//	//go:embed *.sql
//	var schemaFS embed.FS
//
//	func init() {
//	    database.SchemaFS = schemaFS
//	}
var SchemaFS embed.FS

// SchemaDir is the directory within SchemaFS containing the schema files.
var SchemaDir = "."

// SchemaFile is one embedded schema script.
type SchemaFile struct {
	Name string
	SQL  string
}

// EnsureSchema creates any missing tables and indexes.
//
// Every *.sql file in SchemaFS is executed in filename order inside a single
// transaction. Scripts must be idempotent (CREATE ... IF NOT EXISTS), so
// running EnsureSchema on every startup is safe. This is create-if-absent,
// not a versioned migration system: existing tables are never altered.
//
// Returns:
//   - error: If a script fails (the whole transaction is rolled back)
func (db *DB) EnsureSchema(ctx context.Context) error {
	files, err := loadSchemaFiles()
	if err != nil {
		return fmt.Errorf("loading schema files: %w", err)
	}
	if len(files) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	for _, f := range files {
		if _, err := tx.ExecContext(ctx, f.SQL); err != nil {
			return fmt.Errorf("executing %s: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}
	return nil
}

// loadSchemaFiles reads all *.sql files from SchemaFS, sorted by name.
func loadSchemaFiles() ([]SchemaFile, error) {
	var empty embed.FS
	if SchemaFS == empty {
		return nil, nil
	}

	entries, err := fs.ReadDir(SchemaFS, SchemaDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", SchemaDir, err)
	}

	var files []SchemaFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		data, err := fs.ReadFile(SchemaFS, path.Join(SchemaDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		files = append(files, SchemaFile{Name: entry.Name(), SQL: string(data)})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}
