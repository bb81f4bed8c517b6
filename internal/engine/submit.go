package engine

import "strings"

// SubmitOutcome classifies the portal's confirmation response body.
type SubmitOutcome int

const (
	// SubmitConfirmed: the portal accepted the confirmation.
	SubmitConfirmed SubmitOutcome = iota
	// SubmitAlreadyRecorded: attendance was already on record. Terminal for
	// the (date, id) pair, same as a fresh confirmation.
	SubmitAlreadyRecorded
	// SubmitUnrecognized: the body matched no known marker. The candidate
	// stays eligible for retry on a later tick.
	SubmitUnrecognized
)

// ClassifySubmission maps a confirmation response body onto an outcome.
// The portal answers with a bare "success", a localized sentence, or an
// "already recorded" notice.
func ClassifySubmission(body string) SubmitOutcome {
	trimmed := strings.TrimSpace(body)
	lower := strings.ToLower(trimmed)

	if trimmed == "success" || strings.Contains(lower, "berhasil") {
		return SubmitConfirmed
	}
	if strings.Contains(lower, "sudah") {
		return SubmitAlreadyRecorded
	}
	return SubmitUnrecognized
}
