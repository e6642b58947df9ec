// Package db embeds the storefront schema so the binary can migrate itself.
package db

import _ "embed"

// Schema holds the DDL for every storefront table; all statements are
// idempotent (CREATE ... IF NOT EXISTS).
//
//go:embed migrations/001_schema.sql
var Schema string
