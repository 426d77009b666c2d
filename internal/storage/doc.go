// Package storage provides an optional SQLite catalog of published symbols.
//
// The in-memory symbol store is authoritative. Each time a document's symbol
// table is published the workspace replaces that document's rows here, so
// the catalog always mirrors the latest published tables and can be queried
// by other processes or across restarts.
//
// # Database Schema
//
// Tables:
//   - documents: one row per document uri with version, content hash and
//     parse error count
//   - symbols: flattened symbols of a document (classes, functions,
//     members, constants); variables and import stubs are not stored
//   - schema_version: applied migrations
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage(filepath.Join(dir, "catalog.db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	err = db.ReplaceDocument(ctx, &storage.Document{URI: uri, Version: 3},
//	    storage.Flatten(table.Root()))
//
//	matches, err := db.SearchSymbols(ctx, "repo", 20, &storage.SearchFilters{
//	    Kinds: []string{"class", "interface"},
//	})
//
// # Build Modes
//
// The default build uses modernc.org/sqlite. Building with the sqlite_cgo tag
// switches to github.com/mattn/go-sqlite3.
//
// # Migrations
//
// Schema changes are versioned with semantic versions and applied in order
// by ApplyMigrations when the database is opened.
package storage
