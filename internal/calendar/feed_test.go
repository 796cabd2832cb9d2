package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

func TestFeed_RoundTripsThroughParser(t *testing.T) {
	venue := "Bar Datcha"
	guestCap := 75
	gigs := []model.GigSummary{
		{
			Gig: model.Gig{
				Slug:      "abc123defg",
				Date:      model.Date{Time: day(2024, 3, 23)},
				DJName:    "DJ Shadow, Live",
				VenueName: &venue,
				GuestCap:  &guestCap,
			},
			TotalGuests: 12,
			SignUpCount: 5,
		},
		{
			Gig: model.Gig{
				Slug:     "zzz999yyyx",
				Date:     model.Date{Time: day(2024, 3, 30)},
				DJName:   "Closing Party",
				IsClosed: true,
			},
		},
	}

	out := Feed(gigs, "https://lists.example.com/", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "abc123defg@guestlist")
	assert.Contains(t, out, "https://lists.example.com/gig/abc123defg")

	res := Parse(out)
	require.Empty(t, res.Errors)
	require.Len(t, res.Events, 2)
	assert.Equal(t, "abc123defg@guestlist", res.Events[0].ID)
	assert.Equal(t, "DJ Shadow, Live", res.Events[0].Title)
	assert.True(t, res.Events[0].AllDay)
	assert.Equal(t, 23, res.Events[0].Date.Day())
	assert.Equal(t, "12 guests from 5 signups, cap 75, list open", res.Events[0].Description)
	assert.Equal(t, "0 guests from 0 signups, no cap, list closed", res.Events[1].Description)
}
