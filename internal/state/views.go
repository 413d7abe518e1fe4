package state

import (
	"time"

	"swimschool/internal/analytics"
	"swimschool/internal/progress"
)

// AnalyticsInput hands the snapshot's collections to the analytics package
func (s *Snapshot) AnalyticsInput() analytics.Input {
	return analytics.Input{
		Tenant:          s.Tenant,
		Clients:         s.Clients,
		Bookings:        s.Bookings,
		Participants:    s.Participants,
		ServiceTypes:    s.ServiceTypes,
		SkillCategories: s.SkillCategories,
		Skills:          s.Skills,
		Assessments:     s.Assessments,
		Expenses:        s.Expenses,
	}
}

// Analytics builds the dashboard document for rng
func (s *Snapshot) Analytics(rng analytics.Range, now time.Time) analytics.Snapshot {
	return analytics.BuildSnapshot(s.AnalyticsInput(), rng, now)
}

// StudentStats computes live attendance stats for one client
func (s *Snapshot) StudentStats(clientID int64, now time.Time) progress.Stats {
	return progress.Compute(s.Bookings, s.Participants, clientID, now, s.Tenant.Location())
}

// StudentMastery is the per-category progress of one client at the
// progress-view threshold
func (s *Snapshot) StudentMastery(clientID int64) []analytics.CategoryProgress {
	return analytics.CategoryMastery(s.SkillCategories, s.Skills, s.Assessments, clientID, analytics.ProgressMasteryLevel)
}
