package state

import (
	"context"
	"fmt"
	"time"

	"swimschool/internal/models"
	"swimschool/internal/progress"
	"swimschool/internal/validation"
)

// UpsertAssessment records the current user's assessment of a student's
// skill. An existing (student, skill) row is updated in place, so its ID is stable.
func (s *Store) UpsertAssessment(ctx context.Context, studentID, skillID int64, level int, notes string) (int64, error) {
	tenant, actorID, err := s.requireActor()
	if err != nil {
		return 0, err
	}

	now := s.now()
	a := models.SkillAssessment{
		TenantID:   tenant.ID,
		StudentID:  studentID,
		SkillID:    skillID,
		Level:      level,
		AssessedBy: actorID,
		Notes:      notes,
		AssessedAt: now,
		UpdatedAt:  now,
	}
	if err := validation.Struct(a); err != nil {
		return 0, err
	}

	if _, err := s.clientRow(ctx, tenant.ID, studentID); err != nil {
		return 0, err
	}
	skill, err := s.repos.Skills.GetSkill(ctx, skillID)
	if err != nil {
		return 0, err
	}
	if skill == nil || skill.TenantID != tenant.ID {
		return 0, fmt.Errorf("skill %d: %w", skillID, ErrNotFound)
	}

	existing, err := s.repos.Assessments.GetByStudentSkill(ctx, tenant.ID, studentID, skillID)
	if err != nil {
		return 0, err
	}

	action := models.AuditCreate
	if existing != nil {
		a.ID = existing.ID
		if err := s.repos.Assessments.Update(ctx, &a); err != nil {
			return 0, err
		}
		action = models.AuditUpdate
	} else if err := s.repos.Assessments.Create(ctx, &a); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, action, "skill_assessment", a.ID, fmt.Sprintf("skill %d level %d", skillID, level))
	return a.ID, s.RefreshData(ctx)
}

// AddGoal creates a goal. A goal that already meets its target starts completed.
func (s *Store) AddGoal(ctx context.Context, g models.Goal) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(g); err != nil {
		return 0, err
	}

	now := s.now()
	g.TenantID = tenant.ID
	g.CreatedAt = now
	g.UpdatedAt = now
	g.Status = models.GoalActive
	g.CompletedAt = nil
	completeIfReached(&g, now)

	if err := s.repos.Goals.Create(ctx, &g); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "goal", g.ID, g.Title)
	return g.ID, s.RefreshData(ctx)
}

// UpdateGoalProgress sets a goal's current value
func (s *Store) UpdateGoalProgress(ctx context.Context, goalID int64, value float64) error {
	return s.moveGoal(ctx, goalID, func(g *models.Goal) { g.CurrentValue = value })
}

// AddGoalProgress adds delta to a goal's current value
func (s *Store) AddGoalProgress(ctx context.Context, goalID int64, delta float64) error {
	return s.moveGoal(ctx, goalID, func(g *models.Goal) { g.CurrentValue += delta })
}

func (s *Store) moveGoal(ctx context.Context, goalID int64, apply func(*models.Goal)) error {
	tenant, err := s.requireTenant()
	if err != nil {
		return err
	}

	g, err := s.repos.Goals.GetByID(ctx, goalID)
	if err != nil {
		return err
	}
	if g == nil || g.TenantID != tenant.ID {
		return fmt.Errorf("goal %d: %w", goalID, ErrNotFound)
	}

	apply(g)
	if err := validation.Struct(g); err != nil {
		return err
	}
	now := s.now()
	g.UpdatedAt = now
	completeIfReached(g, now)

	if err := s.repos.Goals.Update(ctx, g); err != nil {
		return err
	}

	s.audit(ctx, tenant.ID, models.AuditUpdate, "goal", g.ID, fmt.Sprintf("progress %g/%g", g.CurrentValue, g.TargetValue))
	return s.RefreshData(ctx)
}

// completeIfReached flips a goal to completed once the target is met.
// Completed goals stay completed.
func completeIfReached(g *models.Goal, now time.Time) {
	if g.Status == models.GoalCompleted || !g.Reached() {
		return
	}
	g.Status = models.GoalCompleted
	g.CompletedAt = &now
}

// AddPersonalBest records a time, capturing the student's previous best for
// the event and the improvement over it. The stored previous/improvement
// values are never recomputed.
func (s *Store) AddPersonalBest(ctx context.Context, pb models.PersonalBest) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(pb); err != nil {
		return 0, err
	}

	prev, err := s.repos.PersonalBests.Best(ctx, pb.StudentID, pb.EventType)
	if err != nil {
		return 0, err
	}

	now := s.now()
	pb.TenantID = tenant.ID
	pb.CreatedAt = now
	if pb.RecordedAt.IsZero() {
		pb.RecordedAt = now
	}
	pb.PreviousTime = nil
	pb.Improvement = nil
	if prev != nil {
		previous := prev.TimeSeconds
		improvement := previous - pb.TimeSeconds
		pb.PreviousTime = &previous
		pb.Improvement = &improvement
	}

	if err := s.repos.PersonalBests.Create(ctx, &pb); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "personal_best", pb.ID, fmt.Sprintf("%s %.2fs", pb.EventType, pb.TimeSeconds))
	return pb.ID, s.RefreshData(ctx)
}

// UpdateStreak recomputes a student's attendance streak, lesson count, XP and
// level from completed bookings and saves the result.
func (s *Store) UpdateStreak(ctx context.Context, studentID int64) (*models.AttendanceStreak, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return nil, err
	}
	if _, err := s.clientRow(ctx, tenant.ID, studentID); err != nil {
		return nil, err
	}

	streak, err := s.updateStreak(ctx, tenant, studentID)
	if err != nil {
		return nil, err
	}
	return streak, s.RefreshData(ctx)
}

func (s *Store) updateStreak(ctx context.Context, tenant *models.Tenant, studentID int64) (*models.AttendanceStreak, error) {
	stats, err := s.attendance(ctx, tenant, studentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	streak, err := s.repos.Streaks.GetByStudent(ctx, tenant.ID, studentID)
	if err != nil {
		return nil, err
	}
	isNew := streak == nil
	if isNew {
		streak = &models.AttendanceStreak{TenantID: tenant.ID, StudentID: studentID}
	}
	streak.CurrentStreak = stats.CurrentStreak
	streak.LongestStreak = stats.LongestStreak
	streak.TotalLessons = stats.TotalLessons
	streak.TotalXP = stats.TotalXP
	streak.Level = stats.Level
	streak.LastAttendedAt = stats.LastAttended
	streak.UpdatedAt = now

	if isNew {
		err = s.repos.Streaks.Create(ctx, streak)
	} else {
		err = s.repos.Streaks.Update(ctx, streak)
	}
	if err != nil {
		return nil, err
	}

	s.audit(ctx, tenant.ID, models.AuditUpdate, "attendance_streak", streak.ID,
		fmt.Sprintf("streak %d lessons %d level %d", streak.CurrentStreak, streak.TotalLessons, streak.Level))
	return streak, nil
}

func (s *Store) attendance(ctx context.Context, tenant *models.Tenant, studentID int64) (progress.Stats, error) {
	bookings, err := s.repos.Bookings.ListByStatus(ctx, tenant.ID, models.BookingCompleted)
	if err != nil {
		return progress.Stats{}, err
	}
	participants, err := s.repos.Participants.ListByClient(ctx, studentID)
	if err != nil {
		return progress.Stats{}, err
	}
	return progress.Compute(bookings, participants, studentID, s.now(), tenant.Location()), nil
}

// AwardBadge gives a badge to a student. It returns 0 when the badge was
// already earned. Both must belong to the loaded tenant.
func (s *Store) AwardBadge(ctx context.Context, studentID, badgeID int64) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if _, err := s.clientRow(ctx, tenant.ID, studentID); err != nil {
		return 0, err
	}
	badge, err := s.repos.Badges.GetByID(ctx, badgeID)
	if err != nil {
		return 0, err
	}
	if badge == nil || badge.TenantID != tenant.ID {
		return 0, fmt.Errorf("badge %d: %w", badgeID, ErrNotFound)
	}

	id, err := s.awardBadge(ctx, tenant, studentID, badgeID)
	if err != nil {
		return 0, err
	}
	return id, s.RefreshData(ctx)
}

func (s *Store) awardBadge(ctx context.Context, tenant *models.Tenant, studentID, badgeID int64) (int64, error) {
	earned, err := s.repos.Badges.HasEarned(ctx, tenant.ID, studentID, badgeID)
	if err != nil {
		return 0, err
	}
	if earned {
		return 0, nil
	}

	sb := &models.StudentBadge{
		TenantID:  tenant.ID,
		StudentID: studentID,
		BadgeID:   badgeID,
		EarnedAt:  s.now(),
	}
	if err := s.repos.Badges.Award(ctx, sb); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "student_badge", sb.ID, fmt.Sprintf("badge %d", badgeID))
	return sb.ID, nil
}

// CheckAndAwardBadges awards every catalog badge whose threshold the student
// now meets and returns the badges newly awarded.
func (s *Store) CheckAndAwardBadges(ctx context.Context, studentID int64) ([]models.Badge, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return nil, err
	}
	if _, err := s.clientRow(ctx, tenant.ID, studentID); err != nil {
		return nil, err
	}

	awarded, err := s.checkAndAwardBadges(ctx, tenant, studentID)
	if err != nil {
		return nil, err
	}
	return awarded, s.RefreshData(ctx)
}

func (s *Store) checkAndAwardBadges(ctx context.Context, tenant *models.Tenant, studentID int64) ([]models.Badge, error) {
	catalog, err := s.repos.Badges.ListByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	earned, err := s.repos.Badges.ListEarned(ctx, studentID)
	if err != nil {
		return nil, err
	}

	metrics, err := s.metrics(ctx, tenant, studentID)
	if err != nil {
		return nil, err
	}

	awarded := []models.Badge{}
	for _, b := range progress.EligibleBadges(catalog, progress.EarnedSet(earned), metrics) {
		id, err := s.awardBadge(ctx, tenant, studentID, b.ID)
		if err != nil {
			return awarded, err
		}
		if id != 0 {
			awarded = append(awarded, b)
		}
	}

	if len(awarded) > 0 {
		s.logger.Info("badges awarded", "student_id", studentID, "count", len(awarded))
	}
	return awarded, nil
}

func (s *Store) metrics(ctx context.Context, tenant *models.Tenant, studentID int64) (progress.Metrics, error) {
	var m progress.Metrics

	stats, err := s.attendance(ctx, tenant, studentID)
	if err != nil {
		return m, err
	}
	m.LessonsCompleted = stats.TotalLessons
	m.StreakDays = stats.CurrentStreak

	// streak_days reads the stored streak row; a student never recomputed has none
	stored, err := s.repos.Streaks.GetByStudent(ctx, tenant.ID, studentID)
	if err != nil {
		return m, err
	}
	if stored != nil {
		m.StreakDays = stored.CurrentStreak
	}

	if m.SkillsMastered, err = s.repos.Assessments.CountAtLeast(ctx, studentID, progress.SkillMasteryLevel); err != nil {
		return m, err
	}
	if m.PersonalBests, err = s.repos.PersonalBests.CountByStudent(ctx, studentID); err != nil {
		return m, err
	}
	return m, nil
}
