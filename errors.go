package tripwire

import (
	"github.com/jpalmerr/tripwire/internal/poller"
	"github.com/jpalmerr/tripwire/internal/snapshot"
)

// Poll failure classes. Errors returned by [Monitor.PollOnce] wrap exactly
// one of these; test with [errors.Is].
var (
	// ErrTransport reports a request that did not complete: connection
	// refused, DNS failure, timeout or a truncated body.
	ErrTransport = poller.ErrTransport

	// ErrStatus reports a response outside the 2xx range.
	ErrStatus = poller.ErrStatus

	// ErrMalformed reports a body that is not a valid status document.
	ErrMalformed = snapshot.ErrMalformed
)
