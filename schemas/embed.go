// Package schemas provides the embedded MySQL migrations for the study content,
// score history and shared decks tables.
package schemas

import "embed"

// Migrations contains all SQL migration files in golang-migrate naming.
//
//go:embed migrations/*.sql
var Migrations embed.FS
