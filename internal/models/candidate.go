package models

import "net/url"

// ConfirmationCandidate is one confirmable class session found on the
// attendance page. Candidates are rebuilt from every page fetch and never
// mutated, only submitted or discarded.
type ConfirmationCandidate struct {
	ConfirmationID string // digits from the konfirmasi-kehadiran-<id> button; the dedup identity
	SubmitID       string // id variable from the button's script block, posted to the portal
	ClassID        string
	CourseCode     string
	CourseName     string // best-effort from the card header, falls back to CourseCode
	ScheduledStart string // HH:MM or HH:MM:SS as printed by the portal
	ScheduledEnd   string
	MeetingNumber  string
	CreditHours    string
}

// CourseKey is the key used for per-course custom submit times.
func (c ConfirmationCandidate) CourseKey() string {
	if c.CourseCode != "" {
		return c.CourseCode
	}
	return c.CourseName
}

// FormValues returns the confirmation POST body. Field names must match the
// portal exactly; note kd_mt_kul8 has no underscore before the 8 even though
// the page's JS variable does.
func (c ConfirmationCandidate) FormValues() url.Values {
	return url.Values{
		"kelas":           {c.ClassID},
		"kd_mt_kul8":      {c.CourseCode},
		"jadwal_mulai":    {c.ScheduledStart},
		"jadwal_berakhir": {c.ScheduledEnd},
		"pertemuan":       {c.MeetingNumber},
		"sks_mengajar":    {c.CreditHours},
		"id":              {c.SubmitID},
	}
}
