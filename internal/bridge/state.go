package bridge

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jpalmerr/tripwire/internal/snapshot"
)

// Controller messages. Matching is by substring, so a timestamp or prefix
// added by the firmware does not break parsing.
const (
	msgMachineEnabled  = "MACHINE ENABLED!"
	msgMachineDisabled = "MACHINE DISABLED!"
	msgBeamBroken      = "Beam Broken!"
	msgBeamRestored    = "Beam Restored!"
	msgKeyPressed      = "Key Pressed:"
)

// Event classifies a controller line.
type Event int

// Events a controller line can carry.
const (
	EventNone Event = iota
	EventMachineEnabled
	EventMachineDisabled
	EventBeamBroken
	EventBeamRestored
	EventKeyPressed
)

func (e Event) String() string {
	switch e {
	case EventMachineEnabled:
		return "machine_enabled"
	case EventMachineDisabled:
		return "machine_disabled"
	case EventBeamBroken:
		return "beam_broken"
	case EventBeamRestored:
		return "beam_restored"
	case EventKeyPressed:
		return "key_pressed"
	default:
		return "none"
	}
}

// Status is a point-in-time copy of a [State].
type Status struct {
	MachineEnabled bool
	BeamBroken     bool

	// LastKey is "" until a key is pressed.
	LastKey string

	// RecentKeys holds up to [snapshot.KeySlots] keys in entry order,
	// oldest first. Unused slots are "".
	RecentKeys [snapshot.KeySlots]string
}

// State is the machine state reconstructed from controller lines.
// It is safe for concurrent use.
type State struct {
	mu     sync.RWMutex
	status Status
	count  int
}

// NewState returns a State with the machine disabled, the beam intact and no
// keys recorded.
func NewState() *State {
	return &State{}
}

// Apply updates the state from one controller line and reports which event
// it carried. Unrecognized lines, and key lines whose key is not exactly one
// character or is [snapshot.Placeholder], return [EventNone] and leave the
// state unchanged.
func (s *State) Apply(line string) Event {
	line = strings.TrimSpace(line)
	if line == "" {
		return EventNone
	}

	switch {
	case strings.Contains(line, msgMachineEnabled):
		s.update(func(st *Status) { st.MachineEnabled = true })
		return EventMachineEnabled
	case strings.Contains(line, msgMachineDisabled):
		s.update(func(st *Status) { st.MachineEnabled = false })
		return EventMachineDisabled
	case strings.Contains(line, msgBeamBroken):
		s.update(func(st *Status) { st.BeamBroken = true })
		return EventBeamBroken
	case strings.Contains(line, msgBeamRestored):
		s.update(func(st *Status) { st.BeamBroken = false })
		return EventBeamRestored
	case strings.Contains(line, msgKeyPressed):
		parts := strings.Split(line, ":")
		if len(parts) != 2 {
			return EventNone
		}
		key := strings.TrimSpace(parts[1])
		if utf8.RuneCountInString(key) != 1 || key == snapshot.Placeholder {
			return EventNone
		}
		s.pushKey(key)
		return EventKeyPressed
	default:
		return EventNone
	}
}

// Status returns a copy of the current state.
func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *State) update(fn func(*Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.status)
}

// pushKey appends key to RecentKeys, evicting the oldest once all slots are
// used.
func (s *State) pushKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count < snapshot.KeySlots {
		s.status.RecentKeys[s.count] = key
		s.count++
	} else {
		copy(s.status.RecentKeys[:], s.status.RecentKeys[1:])
		s.status.RecentKeys[snapshot.KeySlots-1] = key
	}
	s.status.LastKey = key
}
