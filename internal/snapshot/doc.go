// Package snapshot defines the tripwire rig's status snapshot and decodes it
// from the status endpoint's JSON document.
//
// This package is internal to Tripwire. It owns the single data entity of the
// system:
//
//   - [Snapshot]: Immutable value describing the armed state, the beam state
//     and the most recent keypad entries
//   - [Shape]: Which of the two status document layouts to accept
//   - [Decode]: All-or-nothing validation of a response body into a Snapshot
//
// A Snapshot is a plain value with an array of keys, so copies never share
// state and a published Snapshot cannot be changed by its consumers.
package snapshot
