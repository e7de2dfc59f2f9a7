// Package client contains the client-side building blocks for talking to the
// littleX backend.
//
// # Overview
//
// The package provides:
//  1. The API contract for the walker auth endpoints (see API) and its
//     JSON-over-HTTP implementation (see HTTPClient): login, registration
//     and the password flows. Walker responses are unwrapped from their
//     "reports" envelope when present.
//  2. The auth gateway: AuthTransport for HTTP and UnaryAuthInterceptor for
//     gRPC. Both attach the stored bearer token to outgoing calls and, when
//     the server rejects it, purge the session before notifying the session
//     controller. DialGRPC builds a connection with the interceptor
//     installed for collaborators that speak gRPC.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable (transport failure, timeout, 502/503/504) and
// ErrUnauthorized (401/403). Only a 401 ends the session in the gateway; a
// 403 leaves the token in place. Other non-2xx statuses are reported as
// "api error: status N".
//
// Concurrency & Contexts
//
// HTTPClient, AuthTransport and the interceptor are safe for concurrent use.
// All operations accept context.Context and honor cancellation; each API call
// is additionally bounded by the client's request timeout.
package client
