// Package calendar turns iCalendar exports into candidate guest lists and
// renders existing guest lists back out as a calendar feed.
//
// Parsing is deliberately forgiving: a broken VEVENT is reported in
// Result.Errors and skipped, never failing the whole import.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Event is one candidate gig extracted from a calendar.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Date        time.Time   `json:"date"`
	AllDay      bool        `json:"allDay"`
	Description string      `json:"description,omitempty"`
	RRule       string      `json:"rrule,omitempty"`
	ExDates     []time.Time `json:"-"`
}

// Result holds the events that parsed and a message for each that did not.
type Result struct {
	Events []Event  `json:"events"`
	Errors []string `json:"errors"`
}

func newResult() Result {
	return Result{Events: []Event{}, Errors: []string{}}
}

// unfolder joins continuation lines: a line break followed by a space or
// tab continues the previous logical line.
var unfolder = strings.NewReplacer("\n ", "", "\n\t", "")

// Parse extracts events from raw iCalendar text.
func Parse(content string) Result {
	res := newResult()

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = unfolder.Replace(content)

	blocks := strings.Split(content, "BEGIN:VEVENT")
	for i := 1; i < len(blocks); i++ {
		block := blocks[i]
		end := strings.Index(block, "END:VEVENT")
		if end == -1 {
			continue
		}

		var (
			dtstart, summary, description, uid, rrule string
			exdates                                   []string
		)
		for _, line := range strings.Split(block[:end], "\n") {
			name, value := splitProperty(line)
			switch name {
			case "DTSTART":
				dtstart = line
			case "SUMMARY":
				summary = unescapeText(value)
			case "DESCRIPTION":
				description = unescapeText(value)
			case "UID":
				uid = strings.TrimSpace(value)
			case "RRULE":
				rrule = strings.TrimSpace(value)
			case "EXDATE":
				exdates = append(exdates, line)
			}
		}

		if dtstart == "" {
			res.Errors = append(res.Errors, "Event missing DTSTART")
			continue
		}
		if summary == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("Event on %s missing SUMMARY", dtstart))
			continue
		}

		date, allDay, err := parseDateLine(dtstart)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Could not parse date for event: %s", summary))
			continue
		}

		id := uid
		if id == "" {
			id = fmt.Sprintf("event-%d-%d", i, date.UnixMilli())
		}

		res.Events = append(res.Events, Event{
			ID:          id,
			Title:       summary,
			Date:        date,
			AllDay:      allDay,
			Description: description,
			RRule:       rrule,
			ExDates:     parseExDates(exdates),
		})
	}

	return res
}

// splitProperty returns the upper-cased property name and the raw value of a
// content line. Parameters (";TZID=...", ";LANGUAGE=...") are dropped.
func splitProperty(line string) (name, value string) {
	colon := strings.IndexByte(line, ':')
	if colon == -1 {
		return "", ""
	}
	head := line[:colon]
	if semi := strings.IndexByte(head, ';'); semi != -1 {
		head = head[:semi]
	}
	return strings.ToUpper(strings.TrimSpace(head)), line[colon+1:]
}

// parseDateLine reads the value after the last colon of a DTSTART-like line.
func parseDateLine(line string) (time.Time, bool, error) {
	colon := strings.LastIndexByte(line, ':')
	if colon == -1 {
		return time.Time{}, false, fmt.Errorf("no value in %q", line)
	}
	return parseDateValue(line[colon+1:])
}

// parseDateValue understands YYYYMMDD (all-day, local midnight) and
// YYYYMMDDTHHMM[SS][Z]. A trailing Z means UTC; otherwise the time is naive
// and read in the server's local zone.
func parseDateValue(v string) (time.Time, bool, error) {
	v = strings.TrimSpace(v)

	if len(v) == 8 {
		t, err := time.ParseInLocation("20060102", v, time.Local)
		return t, true, err
	}
	if !strings.Contains(v, "T") {
		return time.Time{}, false, fmt.Errorf("unrecognised date %q", v)
	}

	loc := time.Local
	if strings.HasSuffix(v, "Z") {
		loc = time.UTC
		v = strings.TrimSuffix(v, "Z")
	}
	var layout string
	switch len(v) {
	case len("20060102T150405"):
		layout = "20060102T150405"
	case len("20060102T1504"):
		layout = "20060102T1504"
	default:
		return time.Time{}, false, fmt.Errorf("unrecognised date-time %q", v)
	}
	t, err := time.ParseInLocation(layout, v, loc)
	return t, false, err
}

func parseExDates(lines []string) []time.Time {
	var out []time.Time
	for _, line := range lines {
		colon := strings.LastIndexByte(line, ':')
		if colon == -1 {
			continue
		}
		for _, part := range strings.Split(line[colon+1:], ",") {
			if t, _, err := parseDateValue(part); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

// unescapeText decodes an RFC 5545 TEXT value for single-line display:
// escaped newlines become spaces, \, \; \\ become literals, and runs of
// whitespace collapse to one space.
func unescapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch next := s[i+1]; next {
		case 'n', 'N':
			b.WriteByte(' ')
			i++
		case ',', ';', '\\':
			b.WriteByte(next)
			i++
		default:
			b.WriteByte(c)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
