// Package cli provides the interactive littleX command-line client.
//
// It wires configuration, the persistent session store, the session
// controller, the API client and an interactive REPL. Typical flow: restore
// a saved session, then execute user commands while session notices
// ("expiring soon", "expired") are printed as they happen.
//
// Key features:
//   - Register / Login / Logout
//   - Password change, forgot and reset flows
//   - Current user, session expiry and notification log
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, NewApp, and runREPL for details.
package cli
