package analytics

import (
	"time"

	"swimschool/internal/models"
)

// Input is the raw data a snapshot is computed from
type Input struct {
	Tenant          *models.Tenant
	Clients         []models.Client
	Bookings        []models.Booking
	Participants    []models.BookingParticipant
	ServiceTypes    []models.ServiceType
	SkillCategories []models.SkillCategory
	Skills          []models.Skill
	Assessments     []models.SkillAssessment
	Expenses        []models.Expense
}

// Comparison is a metric in the current and previous window
type Comparison struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Change   int     `json:"change"`
}

func compare(current, previous float64) Comparison {
	return Comparison{Current: current, Previous: previous, Change: PercentChange(current, previous)}
}

// Snapshot is the analytics document shown on the dashboard and exported
type Snapshot struct {
	TenantName     string             `json:"tenantName"`
	Currency       string             `json:"currency"`
	GeneratedAt    time.Time          `json:"generatedAt"`
	Period         Period             `json:"period"`
	Revenue        Comparison         `json:"revenue"`
	Lessons        Comparison         `json:"lessons"`
	ActiveStudents Comparison         `json:"activeStudents"`
	Expenses       float64            `json:"expenses"`
	NetIncome      float64            `json:"netIncome"`
	Rates          Rates              `json:"rates"`
	Series         []Bucket           `json:"series"`
	Services       []ServiceShare     `json:"services"`
	Mastery        []CategoryProgress `json:"mastery"`
	AtRisk         []AtRisk           `json:"atRisk"`
	TotalClients   int                `json:"totalClients"`
}

// BuildSnapshot computes every dashboard aggregate for rng as of now
func BuildSnapshot(in Input, rng Range, now time.Time) Snapshot {
	p := WindowFor(rng, now, in.Tenant.Location())

	s := Snapshot{
		GeneratedAt:  now,
		Period:       p,
		TotalClients: len(in.Clients),
	}
	if in.Tenant != nil {
		s.TenantName = in.Tenant.Name
		s.Currency = in.Tenant.Currency
	}

	s.Revenue = compare(Revenue(in.Bookings, p.Current), Revenue(in.Bookings, p.Previous))
	s.Lessons = compare(
		float64(CompletedLessons(in.Bookings, p.Current)),
		float64(CompletedLessons(in.Bookings, p.Previous)),
	)
	s.ActiveStudents = compare(
		float64(ActiveStudents(in.Bookings, in.Participants, p.Current)),
		float64(ActiveStudents(in.Bookings, in.Participants, p.Previous)),
	)

	for _, e := range in.Expenses {
		if p.Current.Contains(e.IncurredAt) {
			s.Expenses += e.Amount
		}
	}
	s.NetIncome = s.Revenue.Current - s.Expenses

	s.Rates = BookingRates(in.Bookings, p.Current)
	s.Series = RevenueSeries(in.Bookings, p)
	s.Services = ServiceBreakdown(in.ServiceTypes, in.Bookings, p.Current)
	s.Mastery = TenantCategoryMastery(in.SkillCategories, in.Skills, in.Assessments, AnalyticsMasteryLevel)
	s.AtRisk = AtRiskStudents(in.Clients, in.Bookings, in.Participants, now)
	return s
}
