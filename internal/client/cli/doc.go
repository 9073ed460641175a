// Package cli provides the interactive command-line client of the account
// authority.
//
// The REPL keeps one session: login prompts for credentials, refresh rotates
// the token pair, check asks whether the session holds a permission, and
// logout ends the session on the server.
package cli
