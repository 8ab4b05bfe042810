package userstore

import "embed"

// Migrations holds the goose migrations for the users table, under "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS
