// Package poller fetches the rig's status document on a fixed interval.
//
// This package is internal to Tripwire and handles the periodic polling of
// the status endpoint. Each tick issues one request in its own goroutine, so
// a slow or failed request never delays the next tick.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with timeout and size limits
//   - [Poller]: Ticks at a fixed interval and publishes decoded snapshots
//   - [Config]: Endpoint, timeout and document shape for a Poller
//
// Every failure (transport, status code, malformed body) is logged and the
// tick is dropped; the last published snapshot stays current. Results are
// delivered in sequence order: a response that resolves after a newer one has
// been published is discarded.
package poller
