// Package client contains the roomchat client's view of the remote document
// store.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): room read and
//     create-if-absent, ordered snapshot subscription, append, field update,
//     transcript export and Ping.
//  2. A gRPC implementation (see GRPCClient) that opens a nickname session,
//     injects the session token via interceptors, reopens the session when the
//     token expires, reconnects broken subscriptions with capped exponential
//     backoff, and maps gRPC status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrNotFound, ErrUnavailable, ErrUnauthorized, ErrForbidden,
// ErrInvalidArgument, ErrRateLimited.
//
// Concurrency & Contexts
//
// GRPCClient is safe for concurrent use. Watch callbacks run on a goroutine
// owned by the subscription.
package client
