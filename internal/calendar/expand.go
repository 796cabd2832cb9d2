package calendar

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrences caps how many instances one recurring event may produce.
const maxOccurrences = 500

// maxScan bounds how many occurrences are generated while walking a rule
// towards the range, for rules that start long before it.
const maxScan = 100_000

// FilterByDateRange keeps events whose date falls between the start of
// start's day and the end of end's day, inclusive.
func FilterByDateRange(events []Event, start, end time.Time) []Event {
	lo, hi := startOfDay(start), endOfDay(end)
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if within(ev.Date, lo, hi) {
			out = append(out, ev)
		}
	}
	return out
}

// SortByDate returns a copy of events ordered by date ascending. Events on
// the same instant keep their relative order.
func SortByDate(events []Event) []Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b Event) int {
		return cmp.Compare(a.Date.UnixNano(), b.Date.UnixNano())
	})
	return out
}

// Expand applies the date range to events, turning every event with an
// RRULE into one event per occurrence inside the range. Occurrence IDs are
// "<uid>@<YYYYMMDD>". A rule that cannot be parsed is reported and the base
// event is treated as non-recurring.
func Expand(events []Event, start, end time.Time) ([]Event, []string) {
	lo, hi := startOfDay(start), endOfDay(end)
	out := make([]Event, 0, len(events))
	var errs []string

	var single []Event
	for _, ev := range events {
		if ev.RRule == "" {
			single = append(single, ev)
			continue
		}

		times, err := occurrences(ev, lo, hi)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Could not expand recurrence for event: %s", ev.Title))
			ev.RRule = ""
			single = append(single, ev)
			continue
		}
		for _, t := range times {
			occ := ev
			occ.ID = fmt.Sprintf("%s@%s", ev.ID, t.Format("20060102"))
			occ.Date = t
			occ.RRule = ""
			occ.ExDates = nil
			out = append(out, occ)
		}
	}
	return append(out, FilterByDateRange(single, start, end)...), errs
}

func occurrences(ev Event, lo, hi time.Time) ([]time.Time, error) {
	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		return nil, err
	}
	loc := ev.Date.Location()
	r.DTStart(ev.Date)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(loc))
	}

	lo, hi = lo.In(loc), hi.In(loc)
	var times []time.Time
	next := set.Iterator()
	for scanned := 0; scanned < maxScan && len(times) < maxOccurrences; scanned++ {
		t, ok := next()
		if !ok || t.After(hi) {
			break
		}
		if !t.Before(lo) {
			times = append(times, t)
		}
	}
	return times, nil
}

func within(t, lo, hi time.Time) bool {
	return !t.Before(lo) && !t.After(hi)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
