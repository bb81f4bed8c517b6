package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmationCandidate_FormValues(t *testing.T) {
	c := ConfirmationCandidate{
		ConfirmationID: "123",
		SubmitID:       "99123",
		ClassID:        "42",
		CourseCode:     "INF305",
		ScheduledStart: "08:00:00",
		ScheduledEnd:   "09:40:00",
		MeetingNumber:  "5",
		CreditHours:    "2",
	}

	form := c.FormValues()

	assert.Equal(t, "42", form.Get("kelas"))
	// The POST field drops the underscore the page's JS variable carries.
	assert.Equal(t, "INF305", form.Get("kd_mt_kul8"))
	assert.Empty(t, form.Get("kd_mt_kul_8"))
	assert.Equal(t, "08:00:00", form.Get("jadwal_mulai"))
	assert.Equal(t, "09:40:00", form.Get("jadwal_berakhir"))
	assert.Equal(t, "5", form.Get("pertemuan"))
	assert.Equal(t, "2", form.Get("sks_mengajar"))
	assert.Equal(t, "99123", form.Get("id"))
}

func TestConfirmationCandidate_CourseKey(t *testing.T) {
	assert.Equal(t, "INF305", ConfirmationCandidate{CourseCode: "INF305", CourseName: "Web"}.CourseKey())
	assert.Equal(t, "Web", ConfirmationCandidate{CourseName: "Web"}.CourseKey())
}

func TestSettings_Normalize(t *testing.T) {
	s := Settings{Mode: 7, OffsetMinutes: -3}.Normalize()
	assert.Equal(t, ModeImmediate, s.Mode)
	assert.Equal(t, 0, s.OffsetMinutes)

	s = Settings{Mode: ModeBeforeEnd, OffsetMinutes: 999}.Normalize()
	assert.Equal(t, ModeBeforeEnd, s.Mode)
	assert.Equal(t, 120, s.OffsetMinutes)

	s = Settings{Mode: ModeCustom, OffsetMinutes: 10}.Normalize()
	assert.Equal(t, ModeCustom, s.Mode)
	assert.Equal(t, 10, s.OffsetMinutes)
}
