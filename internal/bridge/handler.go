package bridge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jpalmerr/tripwire/internal/snapshot"
)

// keysDocument is the "keys" layout.
type keysDocument struct {
	MachineEnabled bool                      `json:"machineEnabled"`
	BeamBroken     bool                      `json:"beamBroken"`
	LastKeys       [snapshot.KeySlots]string `json:"lastKeys"`
}

// lastKeyDocument is the "last-key" layout. A nil LastKeyPressed encodes as
// null before any key is pressed.
type lastKeyDocument struct {
	MachineEnabled bool    `json:"machineEnabled"`
	BeamBroken     bool    `json:"beamBroken"`
	LastKeyPressed *string `json:"lastKeyPressed"`
}

// Document returns the JSON status document for st in the given layout.
// shape must be [snapshot.ShapeKeys] or [snapshot.ShapeLastKey].
func Document(st Status, shape snapshot.Shape) (any, error) {
	switch shape {
	case snapshot.ShapeKeys:
		return keysDocument{
			MachineEnabled: st.MachineEnabled,
			BeamBroken:     st.BeamBroken,
			LastKeys:       st.RecentKeys,
		}, nil
	case snapshot.ShapeLastKey:
		doc := lastKeyDocument{
			MachineEnabled: st.MachineEnabled,
			BeamBroken:     st.BeamBroken,
		}
		if st.LastKey != "" {
			key := st.LastKey
			doc.LastKeyPressed = &key
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("bridge cannot serve shape %q", shape)
	}
}

// Handler serves GET /status from state in the given layout.
// Returns an error if shape is not servable.
func Handler(state *State, shape snapshot.Shape, logger *slog.Logger) (http.Handler, error) {
	if _, err := Document(Status{}, shape); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		doc, _ := Document(state.Status(), shape)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if err := json.NewEncoder(w).Encode(doc); err != nil {
			logger.Error("failed to encode status document", "error", err)
		}
	})
	return mux, nil
}
