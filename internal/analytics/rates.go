package analytics

import "swimschool/internal/models"

// Rates breaks down booking outcomes inside a window
type Rates struct {
	Total            int `json:"total"`
	Completed        int `json:"completed"`
	Cancelled        int `json:"cancelled"`
	NoShow           int `json:"noShow"`
	CompletionRate   int `json:"completionRate"`
	CancellationRate int `json:"cancellationRate"`
	NoShowRate       int `json:"noShowRate"`
}

// BookingRates counts outcomes for bookings starting inside w
func BookingRates(bookings []models.Booking, w Window) Rates {
	var r Rates
	for _, b := range bookings {
		if !w.Contains(b.StartTime) {
			continue
		}
		r.Total++
		switch b.Status {
		case models.BookingCompleted:
			r.Completed++
		case models.BookingCancelled:
			r.Cancelled++
		case models.BookingNoShow:
			r.NoShow++
		}
	}

	total := float64(r.Total)
	r.CompletionRate = SafePercent(float64(r.Completed), total)
	r.CancellationRate = SafePercent(float64(r.Cancelled), total)
	r.NoShowRate = SafePercent(float64(r.NoShow), total)
	return r
}

// ServiceShare is one service type's slice of bookings in a window
type ServiceShare struct {
	ServiceTypeID int64   `json:"serviceTypeId"`
	Name          string  `json:"name"`
	Bookings      int     `json:"bookings"`
	Revenue       float64 `json:"revenue"`
	Percent       int     `json:"percent"`
}

// ServiceBreakdown groups bookings inside w by service type, in catalog order
func ServiceBreakdown(services []models.ServiceType, bookings []models.Booking, w Window) []ServiceShare {
	index := make(map[int64]int, len(services))
	shares := make([]ServiceShare, len(services))
	for i, s := range services {
		index[s.ID] = i
		shares[i] = ServiceShare{ServiceTypeID: s.ID, Name: s.Name}
	}

	total := 0
	for _, b := range bookings {
		if !w.Contains(b.StartTime) {
			continue
		}
		i, ok := index[b.ServiceTypeID]
		if !ok {
			continue
		}
		total++
		shares[i].Bookings++
		if b.PaymentStatus == models.PaymentPaid {
			shares[i].Revenue += b.Price
		}
	}

	for i := range shares {
		shares[i].Percent = SafePercent(float64(shares[i].Bookings), float64(total))
	}
	return shares
}

// ActiveStudents counts distinct clients participating in non-cancelled bookings inside w
func ActiveStudents(bookings []models.Booking, participants []models.BookingParticipant, w Window) int {
	inWindow := make(map[int64]bool)
	for _, b := range bookings {
		if b.Status != models.BookingCancelled && w.Contains(b.StartTime) {
			inWindow[b.ID] = true
		}
	}

	students := make(map[int64]bool)
	for _, p := range participants {
		if inWindow[p.BookingID] {
			students[p.ClientID] = true
		}
	}
	return len(students)
}
