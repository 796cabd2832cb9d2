package calendar

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFilterByDateRange_WholeDays(t *testing.T) {
	events := []Event{
		{ID: "before", Date: time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)},
		{ID: "first-day-late", Date: time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)},
		{ID: "last-day-late", Date: time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)},
		{ID: "after", Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}

	got := FilterByDateRange(events, time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC), day(2024, 3, 31))

	ids := make([]string, 0, len(got))
	for _, ev := range got {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"first-day-late", "last-day-late"}, ids)
}

func TestSortByDate_StableAndCopies(t *testing.T) {
	events := []Event{
		{ID: "c", Date: day(2024, 5, 3)},
		{ID: "a1", Date: day(2024, 5, 1)},
		{ID: "b", Date: day(2024, 5, 2)},
		{ID: "a2", Date: day(2024, 5, 1)},
	}

	sorted := SortByDate(events)

	assert.Equal(t, "c", events[0].ID)
	var ids []string
	for _, ev := range sorted {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, ids)
}

func TestExpand_WeeklyWithExDate(t *testing.T) {
	base := Event{
		ID:      "residency",
		Title:   "Friday Residency",
		Date:    time.Date(2024, 4, 5, 22, 0, 0, 0, time.UTC),
		RRule:   "FREQ=WEEKLY;COUNT=6",
		ExDates: []time.Time{time.Date(2024, 4, 19, 22, 0, 0, 0, time.UTC)},
	}
	single := Event{ID: "one-off", Title: "One Off", Date: time.Date(2024, 4, 10, 21, 0, 0, 0, time.UTC)}
	outside := Event{ID: "later", Title: "Later", Date: day(2024, 6, 1)}

	got, errs := Expand([]Event{base, single, outside}, day(2024, 4, 1), day(2024, 4, 30))

	require.Empty(t, errs)
	var ids []string
	for _, ev := range got {
		ids = append(ids, ev.ID)
		assert.Empty(t, ev.RRule)
	}
	assert.Equal(t, []string{
		"residency@20240405",
		"residency@20240412",
		"residency@20240426",
		"one-off",
	}, ids)
	assert.Equal(t, "Friday Residency", got[0].Title)
}

func TestExpand_BadRuleFallsBackToBaseEvent(t *testing.T) {
	ev := Event{ID: "odd", Title: "Odd Rule", Date: day(2024, 4, 2), RRule: "FREQ=SOMETIMES"}

	got, errs := Expand([]Event{ev}, day(2024, 4, 1), day(2024, 4, 30))

	assert.Equal(t, []string{"Could not expand recurrence for event: Odd Rule"}, errs)
	require.Len(t, got, 1)
	assert.Equal(t, "odd", got[0].ID)
}

func TestExpand_DenseRuleIsCappedWhileWalking(t *testing.T) {
	ev := Event{ID: "flood", Title: "Flood", Date: day(2024, 1, 1), RRule: "FREQ=SECONDLY"}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	got, errs := Expand([]Event{ev}, day(2024, 1, 1), day(2024, 1, 31))
	runtime.ReadMemStats(&after)

	require.Empty(t, errs)
	assert.Len(t, got, maxOccurrences)
	assert.Equal(t, day(2024, 1, 1), got[0].Date)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(32<<20))
}

func TestExpand_RuleStartingLongBeforeRange(t *testing.T) {
	ev := Event{ID: "old", Title: "Old Weekly", Date: day(2020, 1, 3), RRule: "FREQ=WEEKLY"}

	got, errs := Expand([]Event{ev}, day(2024, 4, 1), day(2024, 4, 14))

	require.Empty(t, errs)
	require.Len(t, got, 2)
	assert.Equal(t, "old@20240405", got[0].ID)
	assert.Equal(t, "old@20240412", got[1].ID)
}
