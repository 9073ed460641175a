// Package migrations embeds the goose SQL migrations of the account
// authority so the server binary can bring its schema up to date on start.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
