// Package realityserver provides the HTTP client used to reach a RealityServer.
//
// # Overview
//
// The client covers exactly what the wait-for handshake and the connectivity
// monitor need and nothing more:
//
//   - GET /uac/create/: open a UAC session
//   - POST /: the get_version JSON-RPC 2.0 command
//   - GET /uac/destroy/: close the UAC session
//   - GET /: reachability probe
//
// # Sessions
//
// RealityServer only answers commands inside a UAC session, and the session
// is tracked with a cookie. Each Client therefore owns a private cookie jar
// (public suffix aware) and a private transport. Two clients talking to two
// servers never share cookies or pooled connections.
//
// # Timeouts
//
// Every call is bounded by ClientOptions.RequestTimeout (2.5s by default),
// applied per request through the context. There is no overall deadline;
// callers decide how many calls to make.
//
// # Error Handling
//
//   - Transport errors: "execute request: dial tcp ...: connection refused"
//   - HTTP errors on session and command calls: "api /uac/create/ returned status 500"
//   - Malformed bodies: "decode response: ..."
//   - get_version returning a non-string: wraps ErrUnexpectedResult
//   - get_version returning a JSON-RPC error member: *RPCError
//
// Ping is deliberately lenient: any HTTP response, whatever the status, means
// the server is reachable.
//
// # TLS
//
// ClientOptions.Secure switches to https. Certificate verification stays on
// unless ClientOptions.InsecureSkipVerify is set explicitly; there is no
// process-wide default to flip.
package realityserver
