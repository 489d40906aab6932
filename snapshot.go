package tripwire

import (
	"time"

	"github.com/jpalmerr/tripwire/internal/render"
	"github.com/jpalmerr/tripwire/internal/snapshot"
)

// KeySlots is the number of keypad entries a [Snapshot] carries.
const KeySlots = snapshot.KeySlots

// Placeholder fills keypad slots that hold no digit.
const Placeholder = snapshot.Placeholder

// Shape selects the layout of the status document the monitor accepts.
type Shape = snapshot.Shape

const (
	// ShapeAuto accepts either layout, decided per response.
	ShapeAuto = snapshot.ShapeAuto

	// ShapeKeys expects {"machineEnabled", "beamBroken", "lastKeys": [4]string}.
	ShapeKeys = snapshot.ShapeKeys

	// ShapeLastKey expects {"machineEnabled", "beamBroken", "lastKeyPressed": string|null}.
	ShapeLastKey = snapshot.ShapeLastKey
)

// ParseShape converts a configuration string into a [Shape].
// An empty string selects [ShapeAuto].
func ParseShape(s string) (Shape, error) {
	return snapshot.ParseShape(s)
}

// View is the rendered, display-ready form of a [Snapshot]. It is the
// payload of the dashboard's /api/status and /api/sse endpoints.
type View = render.View

// Snapshot is the latest known state of the rig.
//
// Snapshot is a value type: RecentKeys is an array, so a Snapshot handed to a
// callback can be retained and modified without affecting the monitor.
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

	// Shape is the layout the snapshot was decoded from. Empty before the
	// first successful poll.
	Shape Shape

	// Seq is the sequence number of the request that produced the snapshot.
	Seq uint64

	// FetchedAt is when the response was decoded. Zero before the first
	// successful poll.
	FetchedAt time.Time
}

// DefaultSnapshot returns the snapshot shown before any successful poll:
// machine disabled, beam intact, no keys.
func DefaultSnapshot() Snapshot {
	return fromInternal(snapshot.Default())
}

// View renders the snapshot with the dashboard's labels and placeholders.
func (s Snapshot) View() View {
	return render.Render(s.toInternal())
}

// Text renders the snapshot as a short plain-text block, one fact per line.
func (s Snapshot) Text() string {
	return render.Text(s.View())
}

func fromInternal(s snapshot.Snapshot) Snapshot {
	return Snapshot{
		MachineEnabled: s.MachineEnabled,
		BeamBroken:     s.BeamBroken,
		RecentKeys:     s.RecentKeys,
		LastKey:        s.LastKey,
		Shape:          s.Shape,
		Seq:            s.Seq,
		FetchedAt:      s.FetchedAt,
	}
}

func (s Snapshot) toInternal() snapshot.Snapshot {
	return snapshot.Snapshot{
		MachineEnabled: s.MachineEnabled,
		BeamBroken:     s.BeamBroken,
		RecentKeys:     s.RecentKeys,
		LastKey:        s.LastKey,
		Shape:          s.Shape,
		Seq:            s.Seq,
		FetchedAt:      s.FetchedAt,
	}
}
