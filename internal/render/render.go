// Package render maps a status snapshot onto the read-only dashboard view.
//
// Render is a pure function of its input: it keeps no state and has no side
// effects, so the server, the CLI and the SSE stream all produce identical
// views from the same snapshot.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/jpalmerr/tripwire/internal/snapshot"
)

// Labels shown on the dashboard.
const (
	MachineEnabledLabel  = "Machine Enabled"
	MachineDisabledLabel = "Machine Disabled"
	BeamBrokenLabel      = "Laser Beam Broken"
	BeamIntactLabel      = "Laser Beam Intact"
	NoKeyLabel           = "none pressed"
)

// View is the presentation of one snapshot, optimized for JSON serialization
// (used by the REST API and SSE).
type View struct {
	MachineEnabled bool                      `json:"machine_enabled"`
	MachineLabel   string                    `json:"machine_label"`
	BeamBroken     bool                      `json:"beam_broken"`
	BeamLabel      string                    `json:"beam_label"`
	Keys           [snapshot.KeySlots]string `json:"keys"`
	LastKey        string                    `json:"last_key"`

	// UpdatedAt is nil until the first successful poll.
	UpdatedAt *time.Time `json:"updated_at"`
}

// Render builds the [View] for s.
//
// Empty keypad slots render as [snapshot.Placeholder] and a missing last key
// renders as [NoKeyLabel], so the zero Snapshot renders the same as the
// default one.
func Render(s snapshot.Snapshot) View {
	v := View{
		MachineEnabled: s.MachineEnabled,
		MachineLabel:   MachineDisabledLabel,
		BeamBroken:     s.BeamBroken,
		BeamLabel:      BeamIntactLabel,
		LastKey:        NoKeyLabel,
	}

	if s.MachineEnabled {
		v.MachineLabel = MachineEnabledLabel
	}
	if s.BeamBroken {
		v.BeamLabel = BeamBrokenLabel
	}

	for i, k := range s.RecentKeys {
		if k == "" {
			k = snapshot.Placeholder
		}
		v.Keys[i] = k
	}

	if s.LastKey != "" {
		v.LastKey = s.LastKey
	}

	if !s.FetchedAt.IsZero() {
		at := s.FetchedAt
		v.UpdatedAt = &at
	}

	return v
}

// Text renders v as a short multi-line plain-text block.
func Text(v View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", v.MachineLabel)
	fmt.Fprintf(&b, "%s\n", v.BeamLabel)
	fmt.Fprintf(&b, "Keys: %s\n", strings.Join(v.Keys[:], " "))
	fmt.Fprintf(&b, "Last key: %s\n", v.LastKey)
	if v.UpdatedAt != nil {
		fmt.Fprintf(&b, "Updated: %s\n", v.UpdatedAt.Format(time.RFC3339))
	} else {
		b.WriteString("Updated: never\n")
	}
	return b.String()
}
