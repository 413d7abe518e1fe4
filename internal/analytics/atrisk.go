package analytics

import (
	"sort"
	"time"

	"swimschool/internal/models"
)

// AtRiskWindow is how long an active student may go without a lesson
const AtRiskWindow = 14 * 24 * time.Hour

// AtRisk describes an active client who has stopped coming. DaysSince is -1
// when the client has never attended.
type AtRisk struct {
	ClientID   int64      `json:"clientId"`
	Name       string     `json:"name"`
	LastLesson *time.Time `json:"lastLesson,omitempty"`
	DaysSince  int        `json:"daysSince"`
}

// AtRiskStudents lists active clients with no completed or confirmed booking
// in the last 14 days and no upcoming non-cancelled booking.
func AtRiskStudents(clients []models.Client, bookings []models.Booking, participants []models.BookingParticipant, now time.Time) []AtRisk {
	byID := make(map[int64]models.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}

	recent := make(map[int64]bool)
	upcoming := make(map[int64]bool)
	last := make(map[int64]time.Time)
	cutoff := now.Add(-AtRiskWindow)

	for _, p := range participants {
		b, ok := byID[p.BookingID]
		if !ok {
			continue
		}
		switch {
		case b.StartTime.After(now):
			if b.Status != models.BookingCancelled {
				upcoming[p.ClientID] = true
			}
		case b.Status == models.BookingCompleted || b.Status == models.BookingConfirmed:
			if !b.StartTime.Before(cutoff) {
				recent[p.ClientID] = true
			}
			if b.StartTime.After(last[p.ClientID]) {
				last[p.ClientID] = b.StartTime
			}
		}
	}

	out := []AtRisk{}
	for _, c := range clients {
		if c.Status != models.ClientActive || recent[c.ID] || upcoming[c.ID] {
			continue
		}
		r := AtRisk{ClientID: c.ID, Name: c.FullName(), DaysSince: -1}
		if t, ok := last[c.ID]; ok {
			lastLesson := t
			r.LastLesson = &lastLesson
			r.DaysSince = int(now.Sub(t).Hours() / 24)
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysSince > out[j].DaysSince })
	return out
}
