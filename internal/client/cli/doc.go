// Package cli provides the interactive pinboard command-line client.
//
// It wires configuration, the local session database, the HTTP backend and
// the client services into a REPL. On start the persisted session is
// restored, then user commands are executed until exit.
//
// Key features:
//   - Signup / Login / Logout, renaming the current user
//   - Browse, search and show pins with their comments
//   - Create, edit and delete own pins (with an optional image)
//   - Like and save pins, comment on them
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// Every failed command prints a single notice line; see services.Notice.
package cli
