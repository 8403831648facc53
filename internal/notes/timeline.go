package notes

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/models"
)

// Day truncates t to local midnight in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ByDate returns the notes written on the calendar day of day, in loc.
func (s *Store) ByDate(day time.Time, loc *time.Location) []models.Note {
	want := Day(day, loc)
	return s.filter(func(n models.Note) bool { return Day(n.Timestamp, loc).Equal(want) })
}

// AvailableDates lists the distinct days that have notes, oldest first.
func (s *Store) AvailableDates(loc *time.Location) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	var days []time.Time
	for _, n := range s.notes {
		d := Day(n.Timestamp, loc)
		if !slices.ContainsFunc(days, d.Equal) {
			days = append(days, d)
		}
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return days
}

// DayGroup is one day separator of the timeline and the notes under it.
type DayGroup struct {
	Day   time.Time
	Label string
	Notes []models.Note
}

// GroupByDay sorts notes newest first and splits them by calendar day. Days
// matching now are labelled "Today" and "Yesterday".
func GroupByDay(notes []models.Note, now time.Time, loc *time.Location) []DayGroup {
	sorted := slices.Clone(notes)
	slices.SortStableFunc(sorted, func(a, b models.Note) int { return b.Timestamp.Compare(a.Timestamp) })

	today := Day(now, loc)
	yesterday := today.AddDate(0, 0, -1)

	var groups []DayGroup
	for _, n := range sorted {
		d := Day(n.Timestamp, loc)
		if len(groups) == 0 || !groups[len(groups)-1].Day.Equal(d) {
			label := d.Format("Jan 2, 2006")
			switch {
			case d.Equal(today):
				label = "Today"
			case d.Equal(yesterday):
				label = "Yesterday"
			}
			groups = append(groups, DayGroup{Day: d, Label: label})
		}
		g := &groups[len(groups)-1]
		g.Notes = append(g.Notes, n)
	}
	return groups
}
