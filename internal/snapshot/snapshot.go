package snapshot

import (
	"fmt"
	"time"
)

// KeySlots is the number of keypad entries a Snapshot carries.
const KeySlots = 4

// Placeholder fills keypad slots that hold no digit.
const Placeholder = "•"

// Shape selects the layout of the status document.
type Shape string

const (
	// ShapeAuto accepts either layout, resolved per document: "lastKeys"
	// selects [ShapeKeys], otherwise "lastKeyPressed" selects [ShapeLastKey].
	ShapeAuto Shape = "auto"

	// ShapeKeys is {"machineEnabled", "beamBroken", "lastKeys": [4]string}.
	ShapeKeys Shape = "keys"

	// ShapeLastKey is {"machineEnabled", "beamBroken", "lastKeyPressed": string|null}.
	ShapeLastKey Shape = "last-key"
)

// String returns the string representation of the shape.
func (s Shape) String() string {
	return string(s)
}

// ParseShape converts a configuration string into a [Shape].
// An empty string selects [ShapeAuto].
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case "", ShapeAuto:
		return ShapeAuto, nil
	case ShapeKeys, ShapeLastKey:
		return Shape(s), nil
	default:
		return "", fmt.Errorf("unknown shape %q (expected 'auto', 'keys' or 'last-key')", s)
	}
}

// Snapshot is the latest known state of the rig.
//
// Snapshot is a value type. RecentKeys is an array, so every copy is
// independent and a published Snapshot is never mutated in place.
type Snapshot struct {
	// MachineEnabled reports whether the alarm logic is armed.
	MachineEnabled bool

	// BeamBroken reports whether the monitored beam is interrupted.
	BeamBroken bool

	// RecentKeys holds the last keypad entries in entry order.
	// Empty slots hold [Placeholder].
	RecentKeys [KeySlots]string

	// LastKey is the most recently pressed key, or "" if none was recorded.
	LastKey string

	// Shape is the layout of the document this snapshot was decoded from.
	// Empty for the default snapshot.
	Shape Shape

	// Seq is the sequence number of the request that produced the snapshot.
	// Zero for the default snapshot.
	Seq uint64

	// FetchedAt is when the document was decoded. Zero for the default snapshot.
	FetchedAt time.Time
}

// Default returns the snapshot that is current before any successful poll:
// machine disabled, beam intact, no keys.
func Default() Snapshot {
	return Snapshot{RecentKeys: emptyKeys()}
}

// IsDefault reports whether s was never produced by a poll.
func (s Snapshot) IsDefault() bool {
	return s.Seq == 0 && s.FetchedAt.IsZero()
}

// WithSeq returns a copy of s stamped with the given sequence number.
func (s Snapshot) WithSeq(seq uint64) Snapshot {
	s.Seq = seq
	return s
}

func emptyKeys() [KeySlots]string {
	var keys [KeySlots]string
	for i := range keys {
		keys[i] = Placeholder
	}
	return keys
}
