// Package db provides embedded database schemas and seed data.
package db

import _ "embed"

// Schema contains the PostgreSQL DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// SQLiteSchema contains the SQLite DDL statements for all application tables.
//
//go:embed migrations/sqlite/001_schema.sql
var SQLiteSchema string

// Catalog is the default seed catalog in JSON.
//
//go:embed seed/catalog.json
var Catalog []byte
