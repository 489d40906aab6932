package bridge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jpalmerr/tripwire/internal/snapshot"
)

func TestHandler_KeysShape(t *testing.T) {
	s := NewState()
	s.Apply("MACHINE ENABLED!")
	s.Apply("Key Pressed: 1")
	s.Apply("Key Pressed: 2")

	h, err := Handler(s, snapshot.ShapeKeys, testLogger())
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := `{"machineEnabled":true,"beamBroken":false,"lastKeys":["1","2","",""]}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestHandler_LastKeyShape(t *testing.T) {
	s := NewState()

	h, err := Handler(s, snapshot.ShapeLastKey, testLogger())
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}

	get := func() string {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
		return strings.TrimSpace(rec.Body.String())
	}

	if got, want := get(), `{"machineEnabled":false,"beamBroken":false,"lastKeyPressed":null}`; got != want {
		t.Errorf("body before any key = %s, want %s", got, want)
	}

	s.Apply("Beam Broken!")
	s.Apply("Key Pressed: 5")

	if got, want := get(), `{"machineEnabled":false,"beamBroken":true,"lastKeyPressed":"5"}`; got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestHandler_UnservableShape(t *testing.T) {
	if _, err := Handler(NewState(), snapshot.ShapeAuto, testLogger()); err == nil {
		t.Error("Handler() with auto shape expected error, got nil")
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h, err := Handler(NewState(), snapshot.ShapeKeys, testLogger())
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

// The documents the bridge serves must decode cleanly on the polling side.
func TestHandler_DocumentsDecode(t *testing.T) {
	s := NewState()
	s.Apply("MACHINE ENABLED!")
	s.Apply("Beam Broken!")
	s.Apply("Key Pressed: 3")

	for _, shape := range []snapshot.Shape{snapshot.ShapeKeys, snapshot.ShapeLastKey} {
		t.Run(shape.String(), func(t *testing.T) {
			h, err := Handler(s, shape, testLogger())
			if err != nil {
				t.Fatalf("Handler() error = %v", err)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

			snap, err := snapshot.Decode(rec.Body.Bytes(), snapshot.ShapeAuto)
			if err != nil {
				t.Fatalf("Decode() error = %v, body: %s", err, rec.Body.String())
			}
			if snap.Shape != shape {
				t.Errorf("decoded Shape = %q, want %q", snap.Shape, shape)
			}
			if !snap.MachineEnabled || !snap.BeamBroken {
				t.Errorf("decoded %+v, want enabled and broken", snap)
			}
			if snap.LastKey != "3" {
				t.Errorf("decoded LastKey = %q, want %q", snap.LastKey, "3")
			}
		})
	}
}
