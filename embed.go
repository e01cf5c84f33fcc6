// Package leadintake holds assets shared by the lead intake binaries.
package leadintake

import "embed"

// Migrations contains the goose SQL migrations applied by the migrate command.
//
//go:embed migrations/*.sql
var Migrations embed.FS
