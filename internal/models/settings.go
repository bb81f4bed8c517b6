package models

// SubmitMode selects when the engine submits a confirmation.
type SubmitMode int

const (
	// ModeImmediate submits as soon as a confirmable class is found.
	ModeImmediate SubmitMode = 1
	// ModeBeforeEnd submits OffsetMinutes before the scheduled end.
	ModeBeforeEnd SubmitMode = 2
	// ModeCustom submits at a per-course configured time.
	ModeCustom SubmitMode = 3
)

// Settings is the timing-policy configuration. The caller may change it at
// any time; the engine reads a snapshot on every tick.
type Settings struct {
	Mode          SubmitMode        `json:"mode"`
	OffsetMinutes int               `json:"offset_minutes"`
	CustomTimes   map[string]string `json:"custom_times,omitempty"` // course key -> "HH:MM"
}

// Normalize clamps the settings into their valid ranges.
func (s Settings) Normalize() Settings {
	switch s.Mode {
	case ModeImmediate, ModeBeforeEnd, ModeCustom:
	default:
		s.Mode = ModeImmediate
	}
	if s.OffsetMinutes < 0 {
		s.OffsetMinutes = 0
	}
	if s.OffsetMinutes > 120 {
		s.OffsetMinutes = 120
	}
	return s
}
