package analytics

import (
	"time"

	"swimschool/internal/models"
)

// Bucket is one point of the revenue/lesson chart
type Bucket struct {
	Label   string    `json:"label"`
	Start   time.Time `json:"start"`
	Revenue float64   `json:"revenue"`
	Lessons int       `json:"lessons"`
}

// Revenue sums the price of paid bookings that start inside w
func Revenue(bookings []models.Booking, w Window) float64 {
	var total float64
	for _, b := range bookings {
		if b.PaymentStatus == models.PaymentPaid && w.Contains(b.StartTime) {
			total += b.Price
		}
	}
	return total
}

// CompletedLessons counts completed bookings that start inside w
func CompletedLessons(bookings []models.Booking, w Window) int {
	count := 0
	for _, b := range bookings {
		if b.Status == models.BookingCompleted && w.Contains(b.StartTime) {
			count++
		}
	}
	return count
}

// RevenueSeries buckets the current window: daily for 7 and 30 days,
// weekly for 90 days, monthly for all time.
func RevenueSeries(bookings []models.Booking, p Period) []Bucket {
	buckets := bucketStarts(bookings, p)
	if len(buckets) == 0 {
		return buckets
	}

	for _, b := range bookings {
		if !p.Current.Contains(b.StartTime) {
			continue
		}
		i := bucketIndex(buckets, b.StartTime.In(buckets[0].Start.Location()))
		if i < 0 {
			continue
		}
		if b.PaymentStatus == models.PaymentPaid {
			buckets[i].Revenue += b.Price
		}
		if b.Status == models.BookingCompleted {
			buckets[i].Lessons++
		}
	}
	return buckets
}

func bucketStarts(bookings []models.Booking, p Period) []Bucket {
	start := p.Current.Start
	end := p.Current.End.In(start.Location())

	var step func(time.Time) time.Time
	layout := "Jan 2"

	switch p.Range {
	case Range7Days, Range30Days:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	case Range90Days:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	default:
		layout = "Jan 2006"
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
		start = firstMonth(bookings, end)
	}

	var buckets []Bucket
	for t := start; !t.After(end); t = step(t) {
		buckets = append(buckets, Bucket{Label: t.Format(layout), Start: t})
	}
	return buckets
}

// firstMonth is the first day of the month of the earliest booking, or of end's month
func firstMonth(bookings []models.Booking, end time.Time) time.Time {
	earliest := end
	for _, b := range bookings {
		if t := b.StartTime.In(end.Location()); t.Before(earliest) {
			earliest = t
		}
	}
	return time.Date(earliest.Year(), earliest.Month(), 1, 0, 0, 0, 0, end.Location())
}

func bucketIndex(buckets []Bucket, t time.Time) int {
	for i := len(buckets) - 1; i >= 0; i-- {
		if !t.Before(buckets[i].Start) {
			return i
		}
	}
	return -1
}
