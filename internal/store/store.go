package store

import "github.com/jpalmerr/tripwire/internal/snapshot"

// Store defines the interface for reading and subscribing to the current
// snapshot.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows real-time updates to be pushed to connected clients
// (e.g., via Server-Sent Events).
type Store interface {
	// Current returns the snapshot that is current right now.
	Current() snapshot.Snapshot

	// Subscribe returns a channel that receives every newly published snapshot.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan snapshot.Snapshot

	// Unsubscribe removes a subscription and closes its channel.
	Unsubscribe(ch <-chan snapshot.Snapshot)
}
