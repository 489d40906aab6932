package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// ErrMalformed is wrapped by every error returned from [Decode].
var ErrMalformed = errors.New("malformed status document")

// wireStatus mirrors both document layouts. RawMessage fields distinguish an
// absent key (nil) from an explicit null.
type wireStatus struct {
	MachineEnabled *bool           `json:"machineEnabled"`
	BeamBroken     *bool           `json:"beamBroken"`
	LastKeys       json.RawMessage `json:"lastKeys"`
	LastKeyPressed json.RawMessage `json:"lastKeyPressed"`
}

// Decode parses a status document into a [Snapshot].
//
// Decoding is all-or-nothing: a missing or mistyped field rejects the whole
// document and no partial Snapshot is returned. machineEnabled and beamBroken
// are required booleans. The remaining field depends on shape:
//   - [ShapeKeys]: lastKeys must be an array of exactly four strings, each at
//     most one character; "" becomes [Placeholder]
//   - [ShapeLastKey]: lastKeyPressed must be present, either null or a string
//     of at most one character
//   - [ShapeAuto]: lastKeys is used when present, else lastKeyPressed
//
// The returned Snapshot has FetchedAt set to now and Seq left at zero.
func Decode(body []byte, shape Shape) (Snapshot, error) {
	var w wireStatus
	if err := json.Unmarshal(body, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if w.MachineEnabled == nil {
		return Snapshot{}, fmt.Errorf("%w: missing machineEnabled", ErrMalformed)
	}
	if w.BeamBroken == nil {
		return Snapshot{}, fmt.Errorf("%w: missing beamBroken", ErrMalformed)
	}

	resolved, err := resolveShape(w, shape)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		MachineEnabled: *w.MachineEnabled,
		BeamBroken:     *w.BeamBroken,
		RecentKeys:     emptyKeys(),
		Shape:          resolved,
		FetchedAt:      time.Now(),
	}

	switch resolved {
	case ShapeKeys:
		keys, err := decodeKeys(w.LastKeys)
		if err != nil {
			return Snapshot{}, err
		}
		snap.RecentKeys = keys
		snap.LastKey = lastEntered(keys)
	case ShapeLastKey:
		key, err := decodeLastKey(w.LastKeyPressed)
		if err != nil {
			return Snapshot{}, err
		}
		snap.LastKey = key
	}

	return snap, nil
}

// resolveShape picks the concrete layout for a document.
func resolveShape(w wireStatus, shape Shape) (Shape, error) {
	switch shape {
	case ShapeKeys:
		if w.LastKeys == nil {
			return "", fmt.Errorf("%w: missing lastKeys", ErrMalformed)
		}
		return ShapeKeys, nil
	case ShapeLastKey:
		if w.LastKeyPressed == nil {
			return "", fmt.Errorf("%w: missing lastKeyPressed", ErrMalformed)
		}
		return ShapeLastKey, nil
	case ShapeAuto, "":
		if w.LastKeys != nil {
			return ShapeKeys, nil
		}
		if w.LastKeyPressed != nil {
			return ShapeLastKey, nil
		}
		return "", fmt.Errorf("%w: neither lastKeys nor lastKeyPressed present", ErrMalformed)
	default:
		return "", fmt.Errorf("%w: unknown shape %q", ErrMalformed, shape)
	}
}

func decodeKeys(raw json.RawMessage) ([KeySlots]string, error) {
	var keys [KeySlots]string

	if isNull(raw) {
		return keys, fmt.Errorf("%w: lastKeys is null", ErrMalformed)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return keys, fmt.Errorf("%w: lastKeys: %v", ErrMalformed, err)
	}
	if len(list) != KeySlots {
		return keys, fmt.Errorf("%w: lastKeys has %d entries, want %d", ErrMalformed, len(list), KeySlots)
	}

	for i, k := range list {
		if utf8.RuneCountInString(k) > 1 {
			return keys, fmt.Errorf("%w: lastKeys[%d] %q is not a single character", ErrMalformed, i, k)
		}
		if k == Placeholder {
			// the placeholder marks empty slots and cannot be a key
			return keys, fmt.Errorf("%w: lastKeys[%d] is the placeholder %q", ErrMalformed, i, k)
		}
		if k == "" {
			k = Placeholder
		}
		keys[i] = k
	}
	return keys, nil
}

func decodeLastKey(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}

	var key string
	if err := json.Unmarshal(raw, &key); err != nil {
		return "", fmt.Errorf("%w: lastKeyPressed: %v", ErrMalformed, err)
	}
	if utf8.RuneCountInString(key) > 1 {
		return "", fmt.Errorf("%w: lastKeyPressed %q is not a single character", ErrMalformed, key)
	}
	return key, nil
}

// lastEntered returns the right-most filled slot, or "" if all are empty.
func lastEntered(keys [KeySlots]string) string {
	for i := len(keys) - 1; i >= 0; i-- {
		if keys[i] != Placeholder {
			return keys[i]
		}
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
