package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

func calendarFile(lines ...string) []byte {
	return []byte(strings.Join(append(append([]string{"BEGIN:VCALENDAR"}, lines...), "END:VCALENDAR"), "\r\n"))
}

func date(t *testing.T, s string) *model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func TestImport_PreviewFlagsConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	createGig(t, svc, 0) // DJ Shadow on 2024-03-23

	data := calendarFile(
		"BEGIN:VEVENT", "UID:a", "DTSTART;VALUE=DATE:20240323", "SUMMARY:Clash", "END:VEVENT",
		"BEGIN:VEVENT", "UID:b", "DTSTART;VALUE=DATE:20240310", "SUMMARY:Early", "END:VEVENT",
		"BEGIN:VEVENT", "UID:c", "DTSTART;VALUE=DATE:20240601", "SUMMARY:Too late", "END:VEVENT",
		"BEGIN:VEVENT", "UID:d", "SUMMARY:No date", "END:VEVENT",
	)

	res, err := svc.Import(ctx, ImportRequest{
		Filename: "club.ics", Data: data,
		From: date(t, "2024-03-01"), To: date(t, "2024-03-31"),
	})
	require.NoError(t, err)

	require.Len(t, res.Events, 2)
	assert.Equal(t, "Early", res.Events[0].DJName)
	assert.Equal(t, "2024-03-10", res.Events[0].Date.String())
	assert.True(t, res.Events[0].Selected)
	assert.Equal(t, 75, res.Events[0].GuestCap)

	assert.Equal(t, "Clash", res.Events[1].DJName)
	assert.False(t, res.Events[1].Selected)
	assert.Equal(t, []string{"DJ Shadow"}, res.Events[1].Conflicts)

	assert.Equal(t, []string{"Event missing DTSTART"}, res.Errors)
	assert.Empty(t, res.Created)

	list, err := svc.ListGigs(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "preview writes nothing")
}

func TestImport_CreateSkipsConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	createGig(t, svc, 0)

	data := calendarFile(
		"BEGIN:VEVENT", "UID:weekly", "DTSTART;VALUE=DATE:20240302", "RRULE:FREQ=WEEKLY;COUNT=4",
		"SUMMARY:Saturday Session", "END:VEVENT",
	)

	res, err := svc.Import(ctx, ImportRequest{
		Filename: "WEEKLY.ICS", Data: data,
		From: date(t, "2024-03-01"), To: date(t, "2024-03-31"), Create: true,
	})
	require.NoError(t, err)

	require.Len(t, res.Events, 4)
	assert.Equal(t, "weekly@20240302", res.Events[0].ID)
	require.Len(t, res.Created, 3, "the 23rd already has a list")
	for _, g := range res.Created {
		assert.Equal(t, "Saturday Session", g.DJName)
		assert.Equal(t, 75, *g.GuestCap)
		assert.NotEqual(t, "2024-03-23", g.Date.String())
	}

	list, err := svc.ListGigs(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 4)
}

func TestImport_BadRangeAndFormat(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, ImportRequest{
		Filename: "x.ics", Data: calendarFile(),
		From: date(t, "2024-03-31"), To: date(t, "2024-03-01"),
	})
	assert.Equal(t, "End date must not be before start date", validationMessage(t, err))

	res, err := svc.Import(ctx, ImportRequest{Filename: "notes.txt", Data: []byte("hi")})
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.Equal(t, []string{"Unsupported file format. Please upload a .ics or .zip file"}, res.Errors)
}

func TestImport_DefaultRangeIsThreeMonthsFromToday(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Import(context.Background(), ImportRequest{Filename: "x.ics", Data: calendarFile()})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", res.From.String())
	assert.Equal(t, "2024-06-01", res.To.String())
}
