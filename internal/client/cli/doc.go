// Package cli provides the interactive roomchat command-line client.
//
// It wires configuration, the local state database, the document store
// client and a room controller behind a line-oriented REPL. Plain lines are
// sent as messages; commands start with a slash. Messages are referred to by
// their number in the listing or by ID.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
