// Package store holds the current status snapshot and fans out updates.
//
// This package is internal to Tripwire. It is the single-slot mailbox between
// the poller and the presentation layer:
//
//   - [Store]: Interface defining read and subscription operations
//   - [Cell]: Atomic single-value implementation of Store with pub/sub
//
// A Cell always holds exactly one snapshot. Publishing replaces it wholesale;
// readers see either the old or the new value, never a mix. Subscribers
// receive updates via channels with non-blocking sends (slow subscribers miss
// intermediate snapshots rather than block the poller).
package store
