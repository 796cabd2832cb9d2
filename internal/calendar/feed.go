package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

// Feed renders guest lists as an iCalendar document with one all-day event
// per gig, so organizers can subscribe to their schedule.
func Feed(gigs []model.GigSummary, baseURL string, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//guestlist//gigs//EN")
	cal.SetXWRCalName("Guest lists")

	baseURL = strings.TrimRight(baseURL, "/")
	for _, g := range gigs {
		ev := cal.AddEvent(g.Slug + "@guestlist")
		ev.SetDtStampTime(now.UTC())
		ev.SetAllDayStartAt(g.Date.Time)
		ev.SetAllDayEndAt(g.Date.AddDate(0, 0, 1))
		ev.SetSummary(g.DJName)
		if g.VenueName != nil && *g.VenueName != "" {
			ev.SetLocation(*g.VenueName)
		}
		if baseURL != "" {
			ev.SetURL(baseURL + "/gig/" + g.Slug)
		}
		ev.SetDescription(describe(g))
	}
	return cal.Serialize()
}

func describe(g model.GigSummary) string {
	status := "open"
	if g.IsClosed {
		status = "closed"
	}
	capText := "no cap"
	if g.GuestCap != nil {
		capText = fmt.Sprintf("cap %d", *g.GuestCap)
	}
	return fmt.Sprintf("%d guests from %d signups, %s, list %s", g.TotalGuests, g.SignUpCount, capText, status)
}
