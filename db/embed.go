// Package db provides the embedded database schema.
package db

import _ "embed"

// Schema contains the DDL statements for the restaurant tables. All
// statements are idempotent (IF NOT EXISTS), so running it on every
// startup is safe.
//
//go:embed migrations/001_schema.sql
var Schema string
