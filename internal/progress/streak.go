package progress

import (
	"math"
	"sort"
	"time"

	"swimschool/internal/models"
)

const (
	// XPPerLesson is awarded for every completed lesson
	XPPerLesson = 25
	// StreakGapDays is the longest gap between lessons that keeps a streak alive
	StreakGapDays = 7
)

// Stats is the attendance aggregate stored per student
type Stats struct {
	CurrentStreak int
	LongestStreak int
	TotalLessons  int
	TotalXP       int
	Level         int
	LastAttended  *time.Time
}

// AttendedDates returns the distinct local calendar days, ascending, on which
// the student took part in a completed booking.
func AttendedDates(bookings []models.Booking, participants []models.BookingParticipant, studentID int64, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}

	joined := make(map[int64]bool)
	for _, p := range participants {
		if p.ClientID == studentID {
			joined[p.BookingID] = true
		}
	}

	seen := make(map[string]bool)
	var dates []time.Time
	for _, b := range bookings {
		if b.Status != models.BookingCompleted || !joined[b.ID] {
			continue
		}
		local := b.StartTime.In(loc)
		key := local.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		y, m, d := local.Date()
		dates = append(dates, time.Date(y, m, d, 0, 0, 0, 0, loc))
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// CompletedLessons counts completed bookings the student took part in
func CompletedLessons(bookings []models.Booking, participants []models.BookingParticipant, studentID int64) int {
	joined := make(map[int64]bool)
	for _, p := range participants {
		if p.ClientID == studentID {
			joined[p.BookingID] = true
		}
	}

	count := 0
	for _, b := range bookings {
		if b.Status == models.BookingCompleted && joined[b.ID] {
			count++
		}
	}
	return count
}

// ComputeStreak walks ascending attended dates. A gap of more than
// StreakGapDays resets the running streak to 1. The current streak is zero
// unless the last attended date is within StreakGapDays of now.
func ComputeStreak(dates []time.Time, now time.Time) (current, longest int) {
	if len(dates) == 0 {
		return 0, 0
	}

	running := 1
	longest = 1
	for i := 1; i < len(dates); i++ {
		if daysBetween(dates[i-1], dates[i]) > StreakGapDays {
			running = 1
		} else {
			running++
		}
		if running > longest {
			longest = running
		}
	}

	if daysBetween(dates[len(dates)-1], now) <= StreakGapDays {
		current = running
	}
	return current, longest
}

// daysBetween counts calendar days from a to b, using a's location
func daysBetween(a, b time.Time) int {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// XPForLessons is the experience earned by n completed lessons
func XPForLessons(n int) int {
	return n * XPPerLesson
}

// XPForLevel is the experience needed to advance past level
func XPForLevel(level int) int {
	return int(math.Floor(100 * math.Pow(1.5, float64(level-1))))
}

// LevelForXP starts at level 1 and spends XPForLevel per level while enough remains
func LevelForXP(xp int) int {
	level := 1
	remaining := xp
	for remaining >= XPForLevel(level) {
		remaining -= XPForLevel(level)
		level++
	}
	return level
}

// LevelProgress reports the experience gathered toward the next level and the amount needed
func LevelProgress(xp int) (into, needed int) {
	level := 1
	remaining := xp
	for remaining >= XPForLevel(level) {
		remaining -= XPForLevel(level)
		level++
	}
	return remaining, XPForLevel(level)
}

// Compute derives every attendance statistic for one student as of now
func Compute(bookings []models.Booking, participants []models.BookingParticipant, studentID int64, now time.Time, loc *time.Location) Stats {
	dates := AttendedDates(bookings, participants, studentID, loc)
	current, longest := ComputeStreak(dates, now)
	lessons := CompletedLessons(bookings, participants, studentID)
	xp := XPForLessons(lessons)

	s := Stats{
		CurrentStreak: current,
		LongestStreak: longest,
		TotalLessons:  lessons,
		TotalXP:       xp,
		Level:         LevelForXP(xp),
	}
	if len(dates) > 0 {
		last := dates[len(dates)-1]
		s.LastAttended = &last
	}
	return s
}
