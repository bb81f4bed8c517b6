// Package schedule normalizes the portal's weekly-schedule table into
// entries with a live status.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"autoabsen/internal/models"
)

// scheduleTableID marks the semester schedule table on the current portal
// layout. The heuristic fallback below covers drift.
const scheduleTableID = "table-jadwal"

// dayNames in portal order; index 0 is Monday, matching time.Weekday via
// weekdayIndex.
var dayNames = []string{"Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu", "Minggu"}

var (
	// reClassSuffix strips the "(Kelas: N)" tag the portal appends to titles.
	reClassSuffix = regexp.MustCompile(`\s*\((?i:kelas)\s*:?\s*[^)]*\)\s*$`)
	// reDayCell matches "Hari, Tanggal : Senin, 12 Mei 2025".
	reDayCell = regexp.MustCompile(`(?i)hari\s*,?\s*tanggal\s*:\s*([A-Za-z]+)\s*,`)
	// reTimeCell matches "Waktu : 08.00 - 09.40" (dot or colon separated).
	reTimeCell = regexp.MustCompile(`(?i)waktu\s*:\s*(\d{1,2})[.:](\d{2})\s*[-–]\s*(\d{1,2})[.:](\d{2})`)
	// reRoomCell matches "Ruang : A1-101".
	reRoomCell = regexp.MustCompile(`(?i)ruang\s*:\s*([^\n|]+)`)
	// reTimeRange parses a normalized "HH:MM - HH:MM" entry for status checks.
	reTimeRange = regexp.MustCompile(`(\d{1,2})[:.](\d{2})\s*[-–]\s*(\d{1,2})[:.](\d{2})`)
)

// Parse extracts schedule entries from the schedule page markup. Rows with no
// resolvable code and title are skipped.
func Parse(markup string) ([]models.ScheduleEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse schedule markup: %w", err)
	}

	table := doc.Find("table#" + scheduleTableID).First()
	if table.Length() == 0 {
		table = findScheduleTable(doc)
	}
	if table == nil || table.Length() == 0 {
		return nil, nil
	}

	var entries []models.ScheduleEntry
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header
		}
		if entry, ok := parseRow(row); ok {
			entries = append(entries, entry)
		}
	})

	return entries, nil
}

// findScheduleTable falls back to the first table whose header mentions both
// a course code and a course name column.
func findScheduleTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header := strings.ToLower(table.Find("tr").First().Text())
		if strings.Contains(header, "kode") && strings.Contains(header, "mata kuliah") {
			found = table
			return false
		}
		return true
	})
	return found
}

// parseRow pulls code, title and the day/time cell out of one data row.
func parseRow(row *goquery.Selection) (models.ScheduleEntry, bool) {
	cells := row.Find("td")
	if cells.Length() < 2 {
		return models.ScheduleEntry{}, false
	}

	var texts []string
	cells.Each(func(_ int, c *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(c.Text()))
	})

	code, title, rest := splitCodeTitle(texts)
	if code == "" && title == "" {
		return models.ScheduleEntry{}, false
	}

	entry := models.ScheduleEntry{
		Course: courseDisplay(code, title),
		Status: models.ClassStatusUpcoming,
	}

	// The day, time and room live together in one free-form cell; take the
	// first cell that carries both a day and a time pattern.
	for _, text := range rest {
		day := reDayCell.FindStringSubmatch(text)
		tr := reTimeCell.FindStringSubmatch(text)
		if day == nil || tr == nil {
			continue
		}
		entry.Day = day[1]
		entry.TimeRange = fmt.Sprintf("%s - %s", padClock(tr[1], tr[2]), padClock(tr[3], tr[4]))
		if room := reRoomCell.FindStringSubmatch(text); room != nil {
			entry.Room = strings.TrimSpace(room[1])
		}
		break
	}

	return entry, true
}

// splitCodeTitle finds the course code and title among the leading cells.
// The portal prints an index number first, then code, then title.
func splitCodeTitle(texts []string) (code, title string, rest []string) {
	reCode := regexp.MustCompile(`^[A-Z]{2,5}\s?\d{3}\w*$`)
	for i, t := range texts {
		if code == "" && reCode.MatchString(t) {
			code = t
			continue
		}
		if code != "" && title == "" && t != "" && !reDayCell.MatchString(t) {
			title = reClassSuffix.ReplaceAllString(t, "")
			rest = texts[i+1:]
			return
		}
	}
	// No code column recognized: treat the second cell as the title.
	if len(texts) >= 2 && texts[1] != "" && !reDayCell.MatchString(texts[1]) {
		title = reClassSuffix.ReplaceAllString(texts[1], "")
		rest = texts[2:]
	}
	return
}

func courseDisplay(code, title string) string {
	switch {
	case code != "" && title != "":
		return code + " - " + title
	case code != "":
		return code
	default:
		return title
	}
}

// weekdayIndex maps time.Weekday onto the portal's Monday-first day order.
func weekdayIndex(w time.Weekday) int {
	if w == time.Sunday {
		return 6
	}
	return int(w) - 1
}

// UpdateStatus recomputes every entry's status from the given wall-clock
// time. HH:MM strings are zero-padded, so lexicographic comparison is a
// valid time comparison.
func UpdateStatus(entries []models.ScheduleEntry, now time.Time) {
	today := weekdayIndex(now.Weekday())
	current := now.Format("15:04")

	for i := range entries {
		day := dayIndex(strings.TrimSpace(entries[i].Day))
		if day < 0 {
			continue
		}

		if day != today {
			if day > today {
				entries[i].Status = models.ClassStatusUpcoming
			} else {
				entries[i].Status = models.ClassStatusDone
			}
			continue
		}

		start, end, ok := splitTimeRange(entries[i].TimeRange)
		if !ok {
			// Unparseable time on today's entry defaults to upcoming.
			entries[i].Status = models.ClassStatusUpcoming
			continue
		}

		switch {
		case current >= start && current <= end:
			entries[i].Status = models.ClassStatusActive
		case current < start:
			entries[i].Status = models.ClassStatusUpcoming
		default:
			entries[i].Status = models.ClassStatusDone
		}
	}
}

func dayIndex(day string) int {
	for i, d := range dayNames {
		if strings.EqualFold(d, day) {
			return i
		}
	}
	return -1
}

// splitTimeRange parses "HH:MM - HH:MM" (or dot-separated) into zero-padded
// start and end strings.
func splitTimeRange(s string) (start, end string, ok bool) {
	m := reTimeRange.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return padClock(m[1], m[2]), padClock(m[3], m[4]), true
}

// padClock builds a zero-padded "HH:MM" from hour and minute digit strings.
func padClock(hour, minute string) string {
	h, _ := strconv.Atoi(hour)
	return fmt.Sprintf("%02d:%s", h, minute)
}
