package models

// ClassStatus represents where a schedule entry sits relative to now.
type ClassStatus string

const (
	ClassStatusUpcoming ClassStatus = "upcoming"
	ClassStatusActive   ClassStatus = "active"
	ClassStatusDone     ClassStatus = "done"
)

// ScheduleEntry is one row of the weekly class schedule, normalized from the
// portal's markup. Status is recomputed from wall-clock time on every poll.
type ScheduleEntry struct {
	Day       string      `json:"day"`    // weekday name as the portal prints it (Senin..Minggu)
	Course    string      `json:"course"` // "CODE - Title"
	TimeRange string      `json:"time"`   // "HH:MM - HH:MM"
	Room      string      `json:"room"`
	Status    ClassStatus `json:"status"`
}
