// Package session keeps the client's credentials consistent with their
// validity.
//
// Repository persists the bearer token, the user record, the derived expiry
// instant and a small notification log through a kv.Store, writing and
// clearing them together. Controller is the state machine on top of it: it
// restores a session at startup, arms a warning timer shortly before expiry
// and an expiry timer at expiry, and ends the session on logout, on expiry,
// or when the server rejects the token (see HandleUnauthorized).
//
// Expiry is enforced twice. Timers end the session proactively, and every
// read of the stored expiry purges a session whose time has passed, so a
// timer that fired late or was never armed cannot leave a dead token in use.
package session
