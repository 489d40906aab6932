// Package bridge turns the rig controller's serial line output into a status
// endpoint the monitor can poll.
//
// The controller prints one event per line at 9600 baud:
//
//	MACHINE ENABLED!
//	MACHINE DISABLED!
//	Beam Broken!
//	Beam Restored!
//	Key Pressed: 7
//
// [Consume] feeds those lines into a [State]; [Handler] serves the state as
// a JSON status document in either layout the monitor understands.
package bridge
