// Package server provides the HTTP server for the tripwire dashboard and API.
//
// The server handles three concerns:
//
//   - Dashboard serving: the embedded HTML page at "/"
//   - REST API: the rendered current view as JSON at "/api/status"
//   - Server-Sent Events: one rendered view per published snapshot at "/api/sse"
//
// Every payload is produced by the render package from the snapshot held in
// the store, so the dashboard and the API always agree on labels and
// placeholders.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests. It is started automatically by
// [tripwire.Monitor.Start].
package server
