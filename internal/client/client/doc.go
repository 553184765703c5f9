// Package client contains the client-side plumbing for talking to the
// healthlog remote store and for opening the local database.
//
// # Overview
//
//  1. A transport-agnostic contract (Client) covering the remote identity
//     pass-throughs (SignUp, SignIn, SignOut, CurrentUser), the Ping probe and
//     UploadHealthLog.
//  2. A gRPC implementation (GRPCClient) that injects the access token via a
//     unary interceptor and maps gRPC status codes to sentinel errors.
//  3. InitDatabase, which opens the SQLite file, applies the embedded
//     migrations and wires the local repositories.
//
// # Error Handling
//
// Transport failures are mapped to ErrUnauthorized, ErrUnavailable,
// ErrRateLimited, ErrServer or ErrAlreadyExists. The server's message is kept
// in the error text so callers can still show it.
package client
