// Package seed fills an empty store with a demo academy.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"swimschool/internal/models"
	"swimschool/internal/progress"
	"swimschool/internal/repository"
	"swimschool/internal/security"
)

// ErrAlreadySeeded is returned when the store already holds a tenant
var ErrAlreadySeeded = errors.New("store already has a tenant")

// Options controls the generated data
type Options struct {
	TenantName    string
	Timezone      string
	Currency      string
	CoachEmail    string
	CoachPassword string
	// Now anchors the booking schedule; zero means time.Now
	Now time.Time
}

// Result summarizes what was written
type Result struct {
	TenantID     int64
	OwnerID      int64
	Clients      []int64
	ServiceTypes []int64
	Bookings     int
	Past         int
	Future       int
}

type clientSeed struct {
	first, last, level, status string
	age                        int
	contact                    *models.EmergencyContact
}

var clientSeeds = []clientSeed{
	{"Emma", "Thompson", "Level 3", models.ClientActive, 9, &models.EmergencyContact{Name: "Sarah Thompson", Phone: "555-0101", Relation: "mother"}},
	{"Liam", "Carter", "Level 2", models.ClientActive, 7, &models.EmergencyContact{Name: "Mark Carter", Phone: "555-0102", Relation: "father"}},
	{"Olivia", "Nguyen", "Level 4", models.ClientActive, 11, nil},
	{"Noah", "Patel", "Level 1", models.ClientActive, 6, &models.EmergencyContact{Name: "Priya Patel", Phone: "555-0104", Relation: "mother"}},
	{"Ava", "Rossi", "Level 2", models.ClientActive, 8, nil},
	{"Lucas", "Mueller", "Adult Beginner", models.ClientActive, 34, nil},
	{"Mia", "Johansson", "Level 3", models.ClientActive, 10, &models.EmergencyContact{Name: "Erik Johansson", Phone: "555-0107", Relation: "father"}},
	{"Ethan", "Brooks", "Level 1", models.ClientPaused, 5, nil},
}

var serviceSeeds = []models.ServiceType{
	{Name: "Private Lesson", Description: "One-to-one coaching", DurationMinutes: 30, Price: 45, MinParticipants: 1, MaxParticipants: 1, Color: "#0ea5e9", Active: true},
	{Name: "Semi-Private Lesson", Description: "Two swimmers, one coach", DurationMinutes: 45, Price: 35, MinParticipants: 2, MaxParticipants: 2, Color: "#22c55e", Active: true},
	{Name: "Group Class", Description: "Small group by level", DurationMinutes: 45, Price: 20, MinParticipants: 3, MaxParticipants: 8, Color: "#f59e0b", Active: true},
}

type bookingSeed struct {
	day, hour, minute int
	service           int
	clients           []int
}

// schedule is relative to today: negative days are history
var schedule = []bookingSeed{
	{-27, 16, 0, 0, []int{0}},
	{-24, 17, 0, 2, []int{1, 3, 4}},
	{-20, 16, 0, 0, []int{2}},
	{-17, 10, 0, 1, []int{0, 6}},
	{-16, 16, 30, 0, []int{5}},
	{-10, 17, 0, 2, []int{1, 3, 4, 6}},
	{-9, 16, 0, 0, []int{0}},
	{-6, 9, 30, 1, []int{2, 6}},
	{-4, 16, 0, 0, []int{1}},
	{-3, 17, 0, 2, []int{0, 3, 4}},
	{-1, 16, 0, 0, []int{6}},
	{0, 7, 0, 0, []int{2}},
	{0, 18, 0, 1, []int{0, 6}},
	{1, 16, 0, 0, []int{4}},
	{2, 17, 0, 2, []int{1, 3, 4, 6}},
	{4, 16, 0, 0, []int{0}},
	{6, 10, 0, 1, []int{2, 6}},
	{9, 17, 0, 2, []int{0, 1, 3}},
	{13, 16, 0, 0, []int{6}},
}

var taxonomy = []struct {
	category string
	skills   []string
}{
	{"Water Confidence", []string{"Face in water", "Back float", "Front float", "Submerge and recover"}},
	{"Freestyle", []string{"Flutter kick", "Arm recovery", "Side breathing", "Streamline push-off"}},
	{"Backstroke", []string{"Back kick", "Arm rotation", "Body position"}},
	{"Breaststroke", []string{"Whip kick", "Arm pull", "Timing"}},
}

var badgeSeeds = []models.Badge{
	{Name: "First Splash", Description: "Complete your first lesson", Icon: "droplet", RequirementType: models.RequirementLessonsCompleted, RequirementValue: 1, XPReward: 50},
	{Name: "Regular Swimmer", Description: "Complete 5 lessons", Icon: "waves", RequirementType: models.RequirementLessonsCompleted, RequirementValue: 5, XPReward: 100},
	{Name: "Dedicated", Description: "Complete 10 lessons", Icon: "medal", RequirementType: models.RequirementLessonsCompleted, RequirementValue: 10, XPReward: 200},
	{Name: "Week Warrior", Description: "Keep a 3 lesson streak", Icon: "flame", RequirementType: models.RequirementStreakDays, RequirementValue: 3, XPReward: 75},
	{Name: "Skill Builder", Description: "Master 3 skills", Icon: "star", RequirementType: models.RequirementSkillMastered, RequirementValue: 3, XPReward: 150},
	{Name: "Record Breaker", Description: "Set a personal best", Icon: "stopwatch", RequirementType: models.RequirementPersonalBests, RequirementValue: 1, XPReward: 50},
}

// assessed levels per client index, applied to skills in taxonomy order
var assessmentSeeds = map[int][]int{
	0: {4, 4, 4, 3, 4, 3, 2},
	1: {3, 3, 2, 2},
	2: {5, 5, 5, 4, 4, 4, 4, 3, 3, 3, 2},
	3: {2, 1},
	6: {4, 4, 3, 4, 3},
}

// Run writes the demo academy. It refuses to run when a tenant exists. Pass
// repositories bound to a transaction to make the seed all-or-nothing.
func Run(ctx context.Context, repos *repository.Repositories, opts Options) (*Result, error) {
	existing, err := repos.Tenants.First(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for tenant: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadySeeded
	}

	opts = withDefaults(opts)
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", opts.Timezone, err)
	}
	now := opts.Now

	tenant := &models.Tenant{
		Name:           opts.TenantName,
		PrimaryColor:   "#0369a1",
		SecondaryColor: "#67e8f9",
		Timezone:       opts.Timezone,
		Currency:       opts.Currency,
		CoachingType:   "swimming",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repos.Tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}
	slog.Info("Seeding demo academy", "tenant_id", tenant.ID, "name", tenant.Name)

	hash, err := security.HashPassword(opts.CoachPassword)
	if err != nil {
		return nil, err
	}
	owner := models.Owner{
		Person: models.Person{
			TenantID:    tenant.ID,
			FirstName:   "Jordan",
			LastName:    "Reed",
			Email:       opts.CoachEmail,
			NotifyEmail: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		PasswordHash: hash,
	}
	ownerRow := owner.User()
	if err := repos.Users.Create(ctx, &ownerRow); err != nil {
		return nil, err
	}

	result := &Result{TenantID: tenant.ID, OwnerID: ownerRow.ID}

	for _, cs := range clientSeeds {
		dob := time.Date(now.In(loc).Year()-cs.age, time.Month(1+len(cs.first)%12), 10, 0, 0, 0, 0, loc)
		c := models.Client{
			Person: models.Person{
				TenantID:    tenant.ID,
				FirstName:   cs.first,
				LastName:    cs.last,
				Email:       fmt.Sprintf("%s.%s@example.com", strings.ToLower(cs.first), strings.ToLower(cs.last)),
				NotifyEmail: true,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			Status:           cs.status,
			SwimLevel:        cs.level,
			DateOfBirth:      &dob,
			EmergencyContact: cs.contact,
		}
		u := c.User()
		if err := repos.Users.Create(ctx, &u); err != nil {
			return nil, err
		}
		result.Clients = append(result.Clients, u.ID)
	}

	services := make([]models.ServiceType, len(serviceSeeds))
	for i, st := range serviceSeeds {
		st.TenantID = tenant.ID
		st.CreatedAt = now
		st.UpdatedAt = now
		if err := repos.ServiceTypes.Create(ctx, &st); err != nil {
			return nil, err
		}
		services[i] = st
		result.ServiceTypes = append(result.ServiceTypes, st.ID)
	}

	if err := seedBookings(ctx, repos, tenant, ownerRow.ID, services, result, loc, now); err != nil {
		return nil, err
	}
	if err := seedSkills(ctx, repos, tenant.ID, ownerRow.ID, result.Clients, now); err != nil {
		return nil, err
	}
	if err := seedGamification(ctx, repos, tenant, result.Clients, loc, now); err != nil {
		return nil, err
	}

	slog.Info("Seed complete", "tenant_id", tenant.ID, "clients", len(result.Clients),
		"bookings", result.Bookings, "past", result.Past, "future", result.Future)
	return result, nil
}

func withDefaults(opts Options) Options {
	if opts.TenantName == "" {
		opts.TenantName = "Blue Lagoon Swim Academy"
	}
	if opts.Timezone == "" {
		opts.Timezone = "UTC"
	}
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.CoachEmail == "" {
		opts.CoachEmail = "coach@demo.swim"
	}
	if opts.CoachPassword == "" {
		opts.CoachPassword = "demo1234"
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	return opts
}

func seedBookings(ctx context.Context, repos *repository.Repositories, tenant *models.Tenant, instructorID int64,
	services []models.ServiceType, result *Result, loc *time.Location, now time.Time) error {
	y, m, d := now.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	for _, bs := range schedule {
		st := services[bs.service]
		start := today.AddDate(0, 0, bs.day).Add(time.Duration(bs.hour)*time.Hour + time.Duration(bs.minute)*time.Minute)

		b := &models.Booking{
			TenantID:      tenant.ID,
			ServiceTypeID: st.ID,
			InstructorID:  instructorID,
			StartTime:     start,
			EndTime:       start.Add(time.Duration(st.DurationMinutes) * time.Minute),
			Status:        models.BookingConfirmed,
			Price:         st.Price * float64(len(bs.clients)),
			PaymentStatus: models.PaymentPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		attendance := models.AttendanceRegistered
		if start.Before(now) {
			b.Status = models.BookingCompleted
			b.PaymentStatus = models.PaymentPaid
			attendance = models.AttendanceAttended
			result.Past++
		} else {
			result.Future++
		}

		if err := repos.Bookings.Create(ctx, b); err != nil {
			return err
		}
		for _, idx := range bs.clients {
			p := &models.BookingParticipant{
				TenantID:         tenant.ID,
				BookingID:        b.ID,
				ClientID:         result.Clients[idx],
				AttendanceStatus: attendance,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := repos.Participants.Create(ctx, p); err != nil {
				return err
			}
		}
		result.Bookings++
	}
	return nil
}

func seedSkills(ctx context.Context, repos *repository.Repositories, tenantID, assessorID int64, clients []int64, now time.Time) error {
	var skills []models.Skill
	for i, group := range taxonomy {
		cat := &models.SkillCategory{TenantID: tenantID, Name: group.category, SortOrder: i + 1, CreatedAt: now}
		if err := repos.Skills.CreateCategory(ctx, cat); err != nil {
			return err
		}
		for j, name := range group.skills {
			skill := &models.Skill{TenantID: tenantID, CategoryID: cat.ID, Name: name, SortOrder: j + 1, CreatedAt: now}
			if err := repos.Skills.CreateSkill(ctx, skill); err != nil {
				return err
			}
			skills = append(skills, *skill)
		}
	}

	for idx, levels := range assessmentSeeds {
		for i, level := range levels {
			a := &models.SkillAssessment{
				TenantID:   tenantID,
				StudentID:  clients[idx],
				SkillID:    skills[i].ID,
				Level:      level,
				AssessedBy: assessorID,
				AssessedAt: now,
				UpdatedAt:  now,
			}
			if err := repos.Assessments.Create(ctx, a); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedGamification loads the badge catalog, then derives each client's
// streak row and earned badges from the seeded history.
func seedGamification(ctx context.Context, repos *repository.Repositories, tenant *models.Tenant, clients []int64, loc *time.Location, now time.Time) error {
	catalog := make([]models.Badge, 0, len(badgeSeeds))
	for _, b := range badgeSeeds {
		b.TenantID = tenant.ID
		b.CreatedAt = now
		if err := repos.Badges.Create(ctx, &b); err != nil {
			return err
		}
		catalog = append(catalog, b)
	}

	bookings, err := repos.Bookings.ListByStatus(ctx, tenant.ID, models.BookingCompleted)
	if err != nil {
		return err
	}
	participants, err := repos.Participants.ListByTenant(ctx, tenant.ID)
	if err != nil {
		return err
	}

	for _, clientID := range clients {
		stats := progress.Compute(bookings, participants, clientID, now, loc)
		if stats.TotalLessons == 0 {
			continue
		}
		streak := &models.AttendanceStreak{
			TenantID:       tenant.ID,
			StudentID:      clientID,
			CurrentStreak:  stats.CurrentStreak,
			LongestStreak:  stats.LongestStreak,
			TotalLessons:   stats.TotalLessons,
			TotalXP:        stats.TotalXP,
			Level:          stats.Level,
			LastAttendedAt: stats.LastAttended,
			UpdatedAt:      now,
		}
		if err := repos.Streaks.Create(ctx, streak); err != nil {
			return err
		}

		mastered, err := repos.Assessments.CountAtLeast(ctx, clientID, progress.SkillMasteryLevel)
		if err != nil {
			return err
		}
		metrics := progress.Metrics{
			LessonsCompleted: stats.TotalLessons,
			StreakDays:       stats.CurrentStreak,
			SkillsMastered:   mastered,
		}
		for _, b := range progress.EligibleBadges(catalog, nil, metrics) {
			sb := &models.StudentBadge{TenantID: tenant.ID, StudentID: clientID, BadgeID: b.ID, EarnedAt: now}
			if err := repos.Badges.Award(ctx, sb); err != nil {
				return err
			}
		}
	}
	return nil
}
