// Package policy decides when a confirmation candidate may be submitted.
package policy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"autoabsen/internal/models"
)

// Action is the policy verdict for a candidate.
type Action int

const (
	// ActionSubmit: submit now.
	ActionSubmit Action = iota
	// ActionWait: not yet; re-evaluate on the next tick. Target carries the
	// earliest acceptable moment.
	ActionWait
)

// Decision is the outcome of evaluating one candidate against the settings.
type Decision struct {
	Action Action
	Target time.Time // set for ActionWait
	// Note is non-empty when the decision is a documented fallback, such as
	// mode 3 with no custom time configured. The engine logs it as a
	// warning.
	Note string
}

// Decide evaluates a candidate at the given time. A returned error means the
// configured or scheduled time could not be parsed; callers fall back to
// immediate submission with a warning rather than dropping an active class.
func Decide(settings models.Settings, cand models.ConfirmationCandidate, now time.Time) (Decision, error) {
	switch settings.Mode {
	case models.ModeBeforeEnd:
		end, err := atClock(now, cand.ScheduledEnd)
		if err != nil {
			return Decision{}, fmt.Errorf("jadwal_berakhir %q: %w", cand.ScheduledEnd, err)
		}
		target := end.Add(-time.Duration(settings.OffsetMinutes) * time.Minute)
		return submitOrWait(now, target), nil

	case models.ModeCustom:
		key := cand.CourseKey()
		custom, ok := settings.CustomTimes[key]
		if !ok {
			// Documented fallback: no custom time configured means submit
			// immediately, never a silent skip.
			return Decision{
				Action: ActionSubmit,
				Note:   fmt.Sprintf("waktu kustom untuk %s tidak diatur, absen langsung", key),
			}, nil
		}
		target, err := atClock(now, custom)
		if err != nil {
			return Decision{}, fmt.Errorf("waktu kustom %q: %w", custom, err)
		}
		return submitOrWait(now, target), nil

	default: // ModeImmediate
		return Decision{Action: ActionSubmit}, nil
	}
}

func submitOrWait(now, target time.Time) Decision {
	if now.Before(target) {
		return Decision{Action: ActionWait, Target: target}
	}
	return Decision{Action: ActionSubmit}
}

// atClock resolves an "HH:MM" or "HH:MM:SS" clock string onto now's date.
func atClock(now time.Time, clock string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("malformed clock time")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("malformed hour")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("malformed minute")
	}
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), nil
}
