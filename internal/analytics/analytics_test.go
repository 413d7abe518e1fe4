package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimschool/internal/models"
)

var now = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     int
	}{
		{name: "zero previous positive current", current: 5, previous: 0, want: 100},
		{name: "zero previous zero current", current: 0, previous: 0, want: 0},
		{name: "doubled", current: 200, previous: 100, want: 100},
		{name: "halved", current: 50, previous: 100, want: -50},
		{name: "rounds half toward positive", current: 1, previous: 8, want: -87},
		{name: "one third", current: 4, previous: 3, want: 33},
		{name: "unchanged", current: 7, previous: 7, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PercentChange(tt.current, tt.previous); got != tt.want {
				t.Errorf("PercentChange(%v, %v) = %d, want %d", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestSafePercent(t *testing.T) {
	assert.Equal(t, 0, SafePercent(3, 0))
	assert.Equal(t, 50, SafePercent(1, 2))
	assert.Equal(t, 67, SafePercent(2, 3))
	assert.Equal(t, 3, SafePercent(1, 40))
	assert.Equal(t, -2.0, Round(-2.5))
	assert.Equal(t, 3.0, Round(2.5))
}

func TestWindowFor(t *testing.T) {
	for _, rng := range []Range{Range7Days, Range30Days, Range90Days, RangeAll} {
		t.Run(string(rng), func(t *testing.T) {
			p := WindowFor(rng, now, time.UTC)

			assert.Equal(t, p.Current.Duration(), p.Previous.Duration())
			assert.True(t, p.Previous.End.Equal(p.Current.Start))
			assert.True(t, p.Current.End.Equal(now))

			// The boundary instant belongs to the current window only.
			assert.True(t, p.Current.Contains(p.Current.Start))
			assert.False(t, p.Previous.Contains(p.Current.Start))
			assert.True(t, p.Previous.Contains(p.Previous.Start))
			assert.True(t, p.Current.Contains(now))
		})
	}

	p := WindowFor(Range7Days, now, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), p.Current.Start)
}

func TestParseRange(t *testing.T) {
	got, err := ParseRange("90")
	require.NoError(t, err)
	assert.Equal(t, Range90Days, got)

	got, err = ParseRange("")
	require.NoError(t, err)
	assert.Equal(t, Range30Days, got)

	_, err = ParseRange("fortnight")
	assert.Error(t, err)
}

func booking(id int64, start time.Time, status, payment string, price float64) models.Booking {
	return models.Booking{ID: id, ServiceTypeID: 1, StartTime: start, EndTime: start.Add(30 * time.Minute),
		Status: status, PaymentStatus: payment, Price: price}
}

func TestRevenueAndSeries(t *testing.T) {
	bookings := []models.Booking{
		booking(1, now.AddDate(0, 0, -1), models.BookingCompleted, models.PaymentPaid, 40),
		booking(2, now.AddDate(0, 0, -3), models.BookingCompleted, models.PaymentPaid, 60),
		booking(3, now.AddDate(0, 0, -3), models.BookingCancelled, models.PaymentRefunded, 60),
		booking(4, now.AddDate(0, 0, -10), models.BookingCompleted, models.PaymentPaid, 25),
		booking(5, now.AddDate(0, 0, 2), models.BookingConfirmed, models.PaymentPending, 40),
	}

	p := WindowFor(Range7Days, now, time.UTC)
	assert.Equal(t, 100.0, Revenue(bookings, p.Current))
	assert.Equal(t, 25.0, Revenue(bookings, p.Previous))

	series := RevenueSeries(bookings, p)
	require.Len(t, series, 8)
	var total float64
	lessons := 0
	for _, b := range series {
		total += b.Revenue
		lessons += b.Lessons
	}
	assert.Equal(t, 100.0, total)
	assert.Equal(t, 2, lessons)
	assert.Equal(t, 60.0, series[4].Revenue)
	assert.Equal(t, "Jun 12", series[4].Label)

	weekly := RevenueSeries(bookings, WindowFor(Range90Days, now, time.UTC))
	assert.Len(t, weekly, 13)

	monthly := RevenueSeries(bookings, WindowFor(RangeAll, now, time.UTC))
	require.Len(t, monthly, 1)
	assert.Equal(t, "Jun 2024", monthly[0].Label)
	assert.Equal(t, 125.0, monthly[0].Revenue)
}

func TestBookingRates(t *testing.T) {
	w := WindowFor(Range30Days, now, time.UTC).Current
	bookings := []models.Booking{
		booking(1, now.AddDate(0, 0, -1), models.BookingCompleted, models.PaymentPaid, 40),
		booking(2, now.AddDate(0, 0, -2), models.BookingCompleted, models.PaymentPaid, 40),
		booking(3, now.AddDate(0, 0, -3), models.BookingCancelled, models.PaymentPending, 40),
		booking(4, now.AddDate(0, 0, -4), models.BookingNoShow, models.PaymentPending, 40),
	}

	r := BookingRates(bookings, w)
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 50, r.CompletionRate)
	assert.Equal(t, 25, r.CancellationRate)
	assert.Equal(t, 25, r.NoShowRate)

	empty := BookingRates(nil, w)
	assert.Equal(t, 0, empty.CompletionRate)
}

func TestCategoryMastery(t *testing.T) {
	categories := []models.SkillCategory{{ID: 1, Name: "Freestyle"}, {ID: 2, Name: "Safety"}, {ID: 3, Name: "Empty"}}
	skills := []models.Skill{
		{ID: 10, CategoryID: 1}, {ID: 11, CategoryID: 1}, {ID: 12, CategoryID: 1},
		{ID: 20, CategoryID: 2}, {ID: 21, CategoryID: 2},
	}
	assessments := []models.SkillAssessment{
		{StudentID: 7, SkillID: 10, Level: 3},
		{StudentID: 7, SkillID: 11, Level: 4},
		{StudentID: 7, SkillID: 20, Level: 5},
		{StudentID: 8, SkillID: 12, Level: 5},
	}

	analytics := CategoryMastery(categories, skills, assessments, 7, AnalyticsMasteryLevel)
	require.Len(t, analytics, 3)
	assert.Equal(t, 67, analytics[0].Percent)
	assert.Equal(t, 50, analytics[1].Percent)
	assert.Equal(t, 0, analytics[2].Percent)

	progress := CategoryMastery(categories, skills, assessments, 7, ProgressMasteryLevel)
	assert.Equal(t, 33, progress[0].Percent)
	assert.Equal(t, 1, progress[0].Mastered)

	tenant := TenantCategoryMastery(categories, skills, assessments, AnalyticsMasteryLevel)
	assert.Equal(t, 3, tenant[0].Mastered)
	assert.Equal(t, 50, tenant[0].Percent)

	assert.Equal(t, 2, MasteredCount(assessments, 7, ProgressMasteryLevel))
}

func TestAtRiskStudents(t *testing.T) {
	clients := []models.Client{
		{Person: models.Person{ID: 1, FirstName: "Recent"}, Status: models.ClientActive},
		{Person: models.Person{ID: 2, FirstName: "Lapsed"}, Status: models.ClientActive},
		{Person: models.Person{ID: 3, FirstName: "Booked"}, Status: models.ClientActive},
		{Person: models.Person{ID: 4, FirstName: "Paused"}, Status: models.ClientPaused},
		{Person: models.Person{ID: 5, FirstName: "Never"}, Status: models.ClientActive},
		{Person: models.Person{ID: 6, FirstName: "Cancelled"}, Status: models.ClientActive},
	}
	bookings := []models.Booking{
		booking(1, now.AddDate(0, 0, -3), models.BookingCompleted, models.PaymentPaid, 40),
		booking(2, now.AddDate(0, 0, -20), models.BookingCompleted, models.PaymentPaid, 40),
		booking(3, now.AddDate(0, 0, 3), models.BookingConfirmed, models.PaymentPending, 40),
		booking(4, now.AddDate(0, 0, -30), models.BookingCompleted, models.PaymentPaid, 40),
		booking(5, now.AddDate(0, 0, 5), models.BookingCancelled, models.PaymentPending, 40),
	}
	participants := []models.BookingParticipant{
		{BookingID: 1, ClientID: 1},
		{BookingID: 2, ClientID: 2},
		{BookingID: 3, ClientID: 3},
		{BookingID: 4, ClientID: 3},
		{BookingID: 4, ClientID: 4},
		{BookingID: 5, ClientID: 6},
	}

	risk := AtRiskStudents(clients, bookings, participants, now)
	ids := make([]int64, 0, len(risk))
	for _, r := range risk {
		ids = append(ids, r.ClientID)
	}
	assert.ElementsMatch(t, []int64{2, 5, 6}, ids)

	assert.Equal(t, int64(2), risk[0].ClientID)
	assert.Equal(t, 20, risk[0].DaysSince)
	require.NotNil(t, risk[0].LastLesson)
}

func TestBuildSnapshot(t *testing.T) {
	tenant := &models.Tenant{Name: "Blue Lagoon", Currency: "USD", Timezone: "UTC"}
	in := Input{
		Tenant:  tenant,
		Clients: []models.Client{{Person: models.Person{ID: 1}, Status: models.ClientActive}},
		Bookings: []models.Booking{
			booking(1, now.AddDate(0, 0, -2), models.BookingCompleted, models.PaymentPaid, 50),
			booking(2, now.AddDate(0, 0, -9), models.BookingCompleted, models.PaymentPaid, 25),
		},
		Participants: []models.BookingParticipant{{BookingID: 1, ClientID: 1}, {BookingID: 2, ClientID: 1}},
		ServiceTypes: []models.ServiceType{{ID: 1, Name: "Private"}},
		Expenses:     []models.Expense{{Amount: 20, IncurredAt: now.AddDate(0, 0, -1)}},
	}

	s := BuildSnapshot(in, Range7Days, now)
	assert.Equal(t, "Blue Lagoon", s.TenantName)
	assert.Equal(t, 50.0, s.Revenue.Current)
	assert.Equal(t, 25.0, s.Revenue.Previous)
	assert.Equal(t, 100, s.Revenue.Change)
	assert.Equal(t, 0, s.Lessons.Change)
	assert.Equal(t, 30.0, s.NetIncome)
	require.Len(t, s.Services, 1)
	assert.Equal(t, 100, s.Services[0].Percent)
	assert.Empty(t, s.AtRisk)
}
