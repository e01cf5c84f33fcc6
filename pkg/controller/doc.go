// Package controller contains HTTP middlewares and helper handlers used by the API server.
//
// Provided middlewares:
//   - WithCORS: Answers preflight requests and sets CORS headers for the configured origins.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//   - WithRecover: Turns handler panics into a JSON 500 and reports them.
//   - WithMetrics: Records Prometheus request metrics labelled by route pattern.
//
// Provided helpers:
//   - GetClientIP: Resolves the originating client address from forwarding headers, for access logs.
//   - RemoteIP: Returns the connection's peer address, used as the rate limit key.
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers.
package controller
