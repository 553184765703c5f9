// Package cli provides the interactive healthlog command-line client.
//
// It wires configuration, the local encrypted journal, the sync engine and
// an interactive REPL that keeps working while the remote store is out of
// reach. Typical flow: restore the saved session (or log in), start a
// background connectivity watcher, then execute user commands.
//
// Key features:
//   - Register / Login / Logout (online with offline fallback)
//   - Add, list, show, edit, delete and search journal entries
//   - Sync with the remote store, sync status and statistics
//   - Encryption key rotation
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
