package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySubmission(t *testing.T) {
	tests := []struct {
		name string
		body string
		want SubmitOutcome
	}{
		{"bare success", "success", SubmitConfirmed},
		{"success with whitespace", "  success\n", SubmitConfirmed},
		{"localized success", "<p>Absen berhasil disimpan</p>", SubmitConfirmed},
		{"already recorded", "Anda sudah melakukan absen", SubmitAlreadyRecorded},
		{"empty body", "", SubmitUnrecognized},
		{"error page", "<html>500 Internal Server Error</html>", SubmitUnrecognized},
		{"success wins over sudah", "Absen berhasil, data sudah tersimpan", SubmitConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySubmission(tt.body))
		})
	}
}
