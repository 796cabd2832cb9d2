package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/guestlist/internal/calendar"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

// importWindow is the default span of an import starting today.
const importWindow = 3

// ImportRequest is an uploaded calendar plus the date range to take events
// from. Nil bounds default to today and three months from today.
type ImportRequest struct {
	Filename string
	Data     []byte
	From     *model.Date
	To       *model.Date
	// Create turns the selected candidates into guest lists.
	Create bool
}

// ImportCandidate is one calendar event proposed as a guest list.
type ImportCandidate struct {
	calendar.Event
	Date         model.Date `json:"date"`
	DJName       string     `json:"djName"`
	GuestCap     int        `json:"guestCap"`
	MaxPerSignup int        `json:"maxPerSignup"`
	// Conflicts names the existing lists on the same date.
	Conflicts []string `json:"conflicts"`
	// Selected is false for conflicting events; they are skipped on create.
	Selected bool `json:"selected"`
}

// ImportResult is the preview of an import, and what was created if asked.
type ImportResult struct {
	From    model.Date        `json:"from"`
	To      model.Date        `json:"to"`
	Events  []ImportCandidate `json:"events"`
	Errors  []string          `json:"errors"`
	Created []model.Gig       `json:"created"`
}

// Import parses an .ics or .zip upload, expands recurring events inside
// the date range and flags dates that already have a list.
func (s *GigService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	from, to := s.importRange(req.From, req.To)
	if to.Before(from.Time) {
		return nil, invalid("End date must not be before start date")
	}

	parsed := calendar.ParseFile(req.Filename, req.Data)
	events, expandErrs := calendar.Expand(parsed.Events, localMidnight(from), localMidnight(to))
	events = calendar.SortByDate(events)

	existing, err := s.gigs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gigs: %w", err)
	}
	byDate := make(map[string][]string, len(existing))
	for _, g := range existing {
		k := g.Date.String()
		byDate[k] = append(byDate[k], g.DJName)
	}

	res := &ImportResult{
		From:    from,
		To:      to,
		Events:  make([]ImportCandidate, 0, len(events)),
		Errors:  append(parsed.Errors, expandErrs...),
		Created: []model.Gig{},
	}
	for _, ev := range events {
		date := model.DateOf(ev.Date.In(time.Local))
		conflicts := byDate[date.String()]
		if conflicts == nil {
			conflicts = []string{}
		}
		res.Events = append(res.Events, ImportCandidate{
			Event:        ev,
			Date:         date,
			DJName:       ev.Title,
			GuestCap:     s.opts.BatchGuestCap,
			MaxPerSignup: s.opts.BatchMaxPerSignup,
			Conflicts:    conflicts,
			Selected:     len(conflicts) == 0,
		})
	}

	if !req.Create {
		return res, nil
	}

	var gigs []*model.Gig
	for _, c := range res.Events {
		if !c.Selected {
			continue
		}
		guestCap := c.GuestCap
		gigs = append(gigs, &model.Gig{
			Date:         c.Date,
			DJName:       c.DJName,
			GuestCap:     &guestCap,
			MaxPerSignup: c.MaxPerSignup,
		})
	}
	if len(gigs) == 0 {
		return res, nil
	}
	created, err := s.createAll(ctx, gigs, "import")
	if err != nil {
		return nil, err
	}
	res.Created = created
	s.opts.Logger.InfoContext(ctx, "calendar imported",
		"file", req.Filename, "events", len(res.Events), "created", len(created))
	return res, nil
}

func (s *GigService) importRange(from, to *model.Date) (model.Date, model.Date) {
	var lo, hi model.Date
	if from != nil {
		lo = *from
	} else {
		lo = model.DateOf(s.opts.Now())
	}
	if to != nil {
		hi = *to
	} else {
		hi = model.Date{Time: lo.AddDate(0, importWindow, 0)}
	}
	return lo, hi
}

// localMidnight places a calendar date in the server's zone, matching how
// floating calendar times are parsed.
func localMidnight(d model.Date) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
}
