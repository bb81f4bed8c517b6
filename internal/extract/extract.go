// Package extract scans the attendance page for confirmable class sessions
// and their submission parameters.
//
// All knowledge of the portal's markup lives here as a named pattern set
// (grammar v1, current portal layout). A layout change means updating these
// patterns, not the engine.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"autoabsen/internal/models"
)

// PageState classifies the attendance page as a whole.
type PageState int

const (
	// PageAlreadyConfirmed: the page declares attendance already recorded.
	PageAlreadyConfirmed PageState = iota
	// PageNoActiveClass: nothing is confirmable right now.
	PageNoActiveClass
	// PageHasCandidates: at least one confirmation button was found.
	PageHasCandidates
)

// Result is the outcome of one extraction pass.
type Result struct {
	State      PageState
	Candidates []models.ConfirmationCandidate
	// Incomplete lists confirmation ids whose parameters could not be
	// extracted. They are skipped this pass and reattempted on the next
	// fetch.
	Incomplete []string
}

// Grammar v1: textual markers and anchored patterns for the current layout.
const (
	markerAlreadyDoneA = "anda sudah absen"
	markerAlreadyDoneB = "sudah hadir"
	markerNotYetDone   = "belum absen"
)

var (
	// reConfirmID finds every confirmation-button identifier on the page.
	reConfirmID = regexp.MustCompile(`konfirmasi-kehadiran-(\d+)`)
	// reCourseHeader best-effort extracts the course display name from the
	// attendance card header.
	reCourseHeader = regexp.MustCompile(`Absensi Kelas.*?\|\s*([^|]+)\s*\|.*?Pertemuan`)
)

// paramsPattern matches the script block bound to one confirmation button.
// Anchoring on the button id keeps ids from bleeding into each other's
// parameters when several sessions are on the page.
func paramsPattern(id string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(
		`(?s)konfirmasi-kehadiran-%s.*?`+
			`var kelas\s*=\s*'([^']*)'.*?`+
			`var kd_mt_kul_8\s*=\s*'([^']*)'.*?`+
			`var jadwal_mulai\s*=\s*'([^']*)'.*?`+
			`var jadwal_berakhir\s*=\s*'([^']*)'.*?`+
			`var pertemuan\s*=\s*'([^']*)'.*?`+
			`var sks_mengajar\s*=\s*'([^']*)'.*?`+
			`var id\s*=\s*'([^']*)'`,
		regexp.QuoteMeta(id)))
}

// Extract scans the attendance page text. skip reports whether a confirmation
// id is already recorded for today and should not be offered again.
// Extraction order is unspecified; callers must submit every returned
// candidate, not just the first.
func Extract(pageText string, skip func(confirmationID string) bool) Result {
	lower := strings.ToLower(pageText)

	if strings.Contains(lower, markerAlreadyDoneA) || strings.Contains(lower, markerAlreadyDoneB) {
		return Result{State: PageAlreadyConfirmed}
	}
	if !strings.Contains(lower, markerNotYetDone) {
		return Result{State: PageNoActiveClass}
	}

	ids := make(map[string]struct{})
	for _, m := range reConfirmID.FindAllStringSubmatch(pageText, -1) {
		ids[m[1]] = struct{}{}
	}
	if len(ids) == 0 {
		return Result{State: PageNoActiveClass}
	}

	courseName := ""
	if m := reCourseHeader.FindStringSubmatch(pageText); m != nil {
		courseName = strings.TrimSpace(m[1])
	}

	res := Result{State: PageHasCandidates}
	for id := range ids {
		if skip != nil && skip(id) {
			continue
		}

		m := paramsPattern(id).FindStringSubmatch(pageText)
		if m == nil {
			res.Incomplete = append(res.Incomplete, id)
			continue
		}

		cand := models.ConfirmationCandidate{
			ConfirmationID: id,
			SubmitID:       m[7],
			ClassID:        m[1],
			CourseCode:     m[2],
			ScheduledStart: m[3],
			ScheduledEnd:   m[4],
			MeetingNumber:  m[5],
			CreditHours:    m[6],
			CourseName:     courseName,
		}
		if cand.SubmitID == "" {
			cand.SubmitID = id
		}
		if cand.CourseName == "" {
			cand.CourseName = cand.CourseCode
		}
		res.Candidates = append(res.Candidates, cand)
	}

	return res
}
