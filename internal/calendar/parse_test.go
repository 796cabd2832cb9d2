package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ics(lines ...string) string {
	return "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n" + strings.Join(lines, "\r\n") + "\r\nEND:VCALENDAR\r\n"
}

func TestParse_AllDayAndUTC(t *testing.T) {
	res := Parse(ics(
		"BEGIN:VEVENT",
		"UID:one@example.com",
		"DTSTART;VALUE=DATE:20240323",
		"SUMMARY:Saturday Session",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:two@example.com",
		"DTSTART:20240324T200000Z",
		"SUMMARY:Sunday Closing",
		"DESCRIPTION:Doors at 8\\, late finish",
		"END:VEVENT",
	))

	require.Empty(t, res.Errors)
	require.Len(t, res.Events, 2)

	first := res.Events[0]
	assert.Equal(t, "one@example.com", first.ID)
	assert.Equal(t, "Saturday Session", first.Title)
	assert.True(t, first.AllDay)
	assert.Equal(t, time.Date(2024, 3, 23, 0, 0, 0, 0, time.Local), first.Date)

	second := res.Events[1]
	assert.False(t, second.AllDay)
	assert.Equal(t, time.Date(2024, 3, 24, 20, 0, 0, 0, time.UTC), second.Date)
	assert.Equal(t, "Doors at 8, late finish", second.Description)
}

func TestParse_NaiveLocalTimeWithTZID(t *testing.T) {
	res := Parse(ics(
		"BEGIN:VEVENT",
		"DTSTART;TZID=America/Toronto:20240323T2130",
		"SUMMARY:Late Set",
		"END:VEVENT",
	))

	require.Len(t, res.Events, 1)
	assert.Equal(t, time.Date(2024, 3, 23, 21, 30, 0, 0, time.Local), res.Events[0].Date)
}

func TestParse_FoldedTitle(t *testing.T) {
	res := Parse(ics(
		"BEGIN:VEVENT",
		"UID:fold",
		"DTSTART;VALUE=DATE:20240401",
		"SUMMARY:An Evening With DJ Ver",
		" y Long Name\\nand Friends",
		"END:VEVENT",
	))

	require.Len(t, res.Events, 1)
	assert.Equal(t, "An Evening With DJ Very Long Name and Friends", res.Events[0].Title)
}

func TestParse_TabFoldAndBareNewlines(t *testing.T) {
	content := "BEGIN:VEVENT\nUID:tab\nDTSTART:20240401T120000Z\nSUMMARY:Half\n\tway\rEND:VEVENT\n"

	res := Parse(content)

	require.Len(t, res.Events, 1)
	assert.Equal(t, "Halfway", res.Events[0].Title)
}

func TestParse_Unescape(t *testing.T) {
	assert.Equal(t, `a, b; c \ d`, unescapeText(`a\, b\; c \\ d`))
	assert.Equal(t, "line one line two", unescapeText(`line one\Nline   two`))
	assert.Equal(t, `keep \x`, unescapeText(`  keep \x  `))
	assert.Equal(t, `\n`, unescapeText(`\\n`))
}

func TestParse_SummaryWithParameters(t *testing.T) {
	res := Parse(ics(
		"BEGIN:VEVENT",
		"DTSTART:20240401T120000Z",
		"SUMMARY;LANGUAGE=en:Live: The Band",
		"END:VEVENT",
	))

	require.Len(t, res.Events, 1)
	assert.Equal(t, "Live: The Band", res.Events[0].Title)
}

func TestParse_ErrorsAreCollected(t *testing.T) {
	res := Parse(ics(
		"BEGIN:VEVENT",
		"SUMMARY:No Date",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"DTSTART;VALUE=DATE:20240501",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"DTSTART:20241345T999999Z",
		"SUMMARY:Bad Date",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"DTSTART:tomorrow",
		"SUMMARY:Worse Date",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"DTSTART;VALUE=DATE:20240502",
		"SUMMARY:Good",
		"END:VEVENT",
	))

	assert.Equal(t, []string{
		"Event missing DTSTART",
		"Event on DTSTART;VALUE=DATE:20240501 missing SUMMARY",
		"Could not parse date for event: Bad Date",
		"Could not parse date for event: Worse Date",
	}, res.Errors)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "Good", res.Events[0].Title)
}

func TestParse_SynthesizedID(t *testing.T) {
	res := Parse(ics(
		"BEGIN:VEVENT",
		"DTSTART:20240401T120000Z",
		"SUMMARY:No UID",
		"END:VEVENT",
	))

	require.Len(t, res.Events, 1)
	want := "event-1-" + "1711972800000"
	assert.Equal(t, want, res.Events[0].ID)
}

func TestParse_UnterminatedBlockIgnored(t *testing.T) {
	res := Parse("BEGIN:VEVENT\nDTSTART:20240401T120000Z\nSUMMARY:Dangling\n")

	assert.Empty(t, res.Events)
	assert.Empty(t, res.Errors)
}

func TestParse_RecurrenceFields(t *testing.T) {
	res := Parse(ics(
		"BEGIN:VEVENT",
		"UID:weekly",
		"DTSTART:20240405T220000Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"EXDATE:20240412T220000Z,20240419T220000Z",
		"SUMMARY:Residency",
		"END:VEVENT",
	))

	require.Len(t, res.Events, 1)
	ev := res.Events[0]
	assert.Equal(t, "FREQ=WEEKLY;COUNT=4", ev.RRule)
	assert.Len(t, ev.ExDates, 2)
}
