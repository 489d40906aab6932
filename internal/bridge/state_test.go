package bridge

import (
	"sync"
	"testing"
)

func TestState_Apply(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  Status
		event Event
	}{
		{
			name:  "machine enabled",
			lines: []string{"MACHINE ENABLED!"},
			want:  Status{MachineEnabled: true},
			event: EventMachineEnabled,
		},
		{
			name:  "machine disabled after enabled",
			lines: []string{"MACHINE ENABLED!", "MACHINE DISABLED!"},
			want:  Status{},
			event: EventMachineDisabled,
		},
		{
			name:  "beam broken",
			lines: []string{"Beam Broken!"},
			want:  Status{BeamBroken: true},
			event: EventBeamBroken,
		},
		{
			name:  "beam restored",
			lines: []string{"Beam Broken!", "Beam Restored!"},
			want:  Status{},
			event: EventBeamRestored,
		},
		{
			name:  "disarming keeps the beam state",
			lines: []string{"MACHINE ENABLED!", "Beam Broken!", "MACHINE DISABLED!"},
			want:  Status{BeamBroken: true},
			event: EventMachineDisabled,
		},
		{
			name:  "key pressed",
			lines: []string{"Key Pressed: 7"},
			want:  Status{LastKey: "7", RecentKeys: [4]string{"7", "", "", ""}},
			event: EventKeyPressed,
		},
		{
			name:  "key without space",
			lines: []string{"Key Pressed:#"},
			want:  Status{LastKey: "#", RecentKeys: [4]string{"#", "", "", ""}},
			event: EventKeyPressed,
		},
		{
			name:  "prefixed line",
			lines: []string{"[12034] MACHINE ENABLED!"},
			want:  Status{MachineEnabled: true},
			event: EventMachineEnabled,
		},
		{
			name:  "surrounding whitespace",
			lines: []string{"  Beam Broken!\r"},
			want:  Status{BeamBroken: true},
			event: EventBeamBroken,
		},
		{
			name:  "unknown line",
			lines: []string{"Booting v1.2"},
			want:  Status{},
			event: EventNone,
		},
		{
			name:  "empty line",
			lines: []string{""},
			want:  Status{},
			event: EventNone,
		},
		{
			name:  "multi-character key ignored",
			lines: []string{"Key Pressed: 12"},
			want:  Status{},
			event: EventNone,
		},
		{
			name:  "empty key ignored",
			lines: []string{"Key Pressed: "},
			want:  Status{},
			event: EventNone,
		},
		{
			name:  "placeholder glyph ignored",
			lines: []string{"Key Pressed: 3", "Key Pressed: •"},
			want:  Status{LastKey: "3", RecentKeys: [4]string{"3", "", "", ""}},
			event: EventNone,
		},
		{
			name:  "extra colon ignored",
			lines: []string{"Key Pressed: 1: 2"},
			want:  Status{},
			event: EventNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			var event Event
			for _, line := range tt.lines {
				event = s.Apply(line)
			}
			if event != tt.event {
				t.Errorf("last Apply() = %v, want %v", event, tt.event)
			}
			if got := s.Status(); got != tt.want {
				t.Errorf("Status() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestState_RecentKeysRollOver(t *testing.T) {
	s := NewState()
	for _, k := range []string{"1", "2", "3", "4", "5", "6"} {
		s.Apply("Key Pressed: " + k)
	}

	got := s.Status()
	want := [4]string{"3", "4", "5", "6"}
	if got.RecentKeys != want {
		t.Errorf("RecentKeys = %v, want %v", got.RecentKeys, want)
	}
	if got.LastKey != "6" {
		t.Errorf("LastKey = %q, want %q", got.LastKey, "6")
	}
}

func TestState_StatusIsCopy(t *testing.T) {
	s := NewState()
	s.Apply("Key Pressed: 1")

	st := s.Status()
	st.RecentKeys[0] = "X"

	if s.Status().RecentKeys[0] != "1" {
		t.Error("mutating a returned Status changed the State")
	}
}

func TestState_ConcurrentAccess(t *testing.T) {
	s := NewState()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Apply("Key Pressed: 9")
				s.Apply("Beam Broken!")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Status()
			}
		}()
	}
	wg.Wait()

	if s.Status().RecentKeys != [4]string{"9", "9", "9", "9"} {
		t.Errorf("RecentKeys = %v, want all 9s", s.Status().RecentKeys)
	}
}

func TestEvent_String(t *testing.T) {
	if EventKeyPressed.String() != "key_pressed" {
		t.Errorf("EventKeyPressed.String() = %q", EventKeyPressed.String())
	}
	if Event(99).String() != "none" {
		t.Errorf("Event(99).String() = %q, want none", Event(99).String())
	}
}
