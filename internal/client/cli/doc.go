// Package cli provides the interactive library client.
//
// It wires configuration, local state storage, the backend API client, the
// session store, the router with its navigation guard, and an interactive
// REPL. Every view change goes through the router, so an unauthenticated
// user always ends up on the login view and an authenticated one never does.
//
// Key features:
//   - Login with password and one-time code, logout, profile and OTP status
//   - Browse genres, libraries, books, members and loans
//   - Add, edit and delete records (superuser; delete also needs the OTP)
//   - Collection stats and Excel/Word exports
//   - Return a loan
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
