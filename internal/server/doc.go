// Package server provides the funkostore TCP server: a listener accepting
// line-delimited JSON requests, a per-connection framing loop, and the
// handler dispatching each request against the configured record store.
//
// Each connection is served by its own goroutine and stays open across any
// number of request/response cycles until the peer disconnects or the server
// shuts down. Frames on one connection are dispatched in arrival order but
// may complete out of order; clients that pipeline must treat responses as
// unordered (the shipped client sends one request per connection).
package server
