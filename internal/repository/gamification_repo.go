package repository

import (
	"context"
	"fmt"

	"swimschool/internal/database"
	"swimschool/internal/models"
)

const goalColumns = `id, tenant_id, student_id, title, goal_type, target_value, current_value, unit, deadline,
	status, completed_at, created_at, updated_at`

// GoalRepository handles database operations for student goals
type GoalRepository struct {
	db database.DBTX
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db database.DBTX) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create inserts a new goal
func (r *GoalRepository) Create(ctx context.Context, g *models.Goal) error {
	query := `INSERT INTO goals (tenant_id, student_id, title, goal_type, target_value, current_value, unit, deadline,
		status, completed_at, created_at, updated_at)
		VALUES (:tenant_id, :student_id, :title, :goal_type, :target_value, :current_value, :unit, :deadline,
		:status, :completed_at, :created_at, :updated_at)`
	id, err := r.db.NamedInsert(ctx, query, g)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	g.ID = id
	return nil
}

// GetByID returns a goal by ID, or nil
func (r *GoalRepository) GetByID(ctx context.Context, id int64) (*models.Goal, error) {
	g, err := getOne[models.Goal](ctx, r.db, "SELECT "+goalColumns+" FROM goals WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

// ListByTenant returns a tenant's goals
func (r *GoalRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.Goal, error) {
	rows, err := selectAll[models.Goal](ctx, r.db, "SELECT "+goalColumns+" FROM goals WHERE tenant_id = ? ORDER BY id", tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return rows, nil
}

// Update saves progress, status and completion time
func (r *GoalRepository) Update(ctx context.Context, g *models.Goal) error {
	query := `UPDATE goals SET title = :title, target_value = :target_value, current_value = :current_value,
		unit = :unit, deadline = :deadline, status = :status, completed_at = :completed_at, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExec(ctx, query, g)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to update goal %d: %w", g.ID, err)
	}
	return nil
}

const badgeColumns = "id, tenant_id, name, description, icon, requirement_type, requirement_value, xp_reward, created_at"

// BadgeRepository handles the badge catalog and earned badges
type BadgeRepository struct {
	db database.DBTX
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db database.DBTX) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Create adds a badge to the catalog
func (r *BadgeRepository) Create(ctx context.Context, b *models.Badge) error {
	query := `INSERT INTO badges (tenant_id, name, description, icon, requirement_type, requirement_value, xp_reward, created_at)
		VALUES (:tenant_id, :name, :description, :icon, :requirement_type, :requirement_value, :xp_reward, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, b)
	if err != nil {
		return fmt.Errorf("failed to create badge: %w", err)
	}
	b.ID = id
	return nil
}

// GetByID returns a catalog badge by ID, or nil
func (r *BadgeRepository) GetByID(ctx context.Context, id int64) (*models.Badge, error) {
	b, err := getOne[models.Badge](ctx, r.db, "SELECT "+badgeColumns+" FROM badges WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get badge: %w", err)
	}
	return b, nil
}

// ListByTenant returns a tenant's badge catalog
func (r *BadgeRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.Badge, error) {
	rows, err := selectAll[models.Badge](ctx, r.db, "SELECT "+badgeColumns+" FROM badges WHERE tenant_id = ? ORDER BY id", tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return rows, nil
}

// Award records that a student earned a badge
func (r *BadgeRepository) Award(ctx context.Context, sb *models.StudentBadge) error {
	query := `INSERT INTO student_badges (tenant_id, student_id, badge_id, earned_at)
		VALUES (:tenant_id, :student_id, :badge_id, :earned_at)`
	id, err := r.db.NamedInsert(ctx, query, sb)
	if err != nil {
		return fmt.Errorf("failed to award badge: %w", err)
	}
	sb.ID = id
	return nil
}

// HasEarned reports whether a student already holds a badge within a tenant
func (r *BadgeRepository) HasEarned(ctx context.Context, tenantID, studentID, badgeID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM student_badges WHERE tenant_id = ? AND student_id = ? AND badge_id = ?"
	if err := r.db.Get(ctx, &count, query, tenantID, studentID, badgeID); err != nil {
		return false, fmt.Errorf("failed to check earned badge: %w", err)
	}
	return count > 0, nil
}

// ListEarned returns the badges a student holds
func (r *BadgeRepository) ListEarned(ctx context.Context, studentID int64) ([]models.StudentBadge, error) {
	query := "SELECT id, tenant_id, student_id, badge_id, earned_at FROM student_badges WHERE student_id = ? ORDER BY id"
	rows, err := selectAll[models.StudentBadge](ctx, r.db, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned badges: %w", err)
	}
	return rows, nil
}

// ListStudentBadges returns every earned badge in a tenant
func (r *BadgeRepository) ListStudentBadges(ctx context.Context, tenantID int64) ([]models.StudentBadge, error) {
	query := "SELECT id, tenant_id, student_id, badge_id, earned_at FROM student_badges WHERE tenant_id = ? ORDER BY id"
	rows, err := selectAll[models.StudentBadge](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student badges: %w", err)
	}
	return rows, nil
}

const streakColumns = `id, tenant_id, student_id, current_streak, longest_streak, total_lessons, total_xp, level,
	last_attended_at, updated_at`

// StreakRepository handles the per-student attendance aggregate
type StreakRepository struct {
	db database.DBTX
}

// NewStreakRepository creates a new streak repository
func NewStreakRepository(db database.DBTX) *StreakRepository {
	return &StreakRepository{db: db}
}

// GetByStudent returns a student's streak row, or nil
func (r *StreakRepository) GetByStudent(ctx context.Context, tenantID, studentID int64) (*models.AttendanceStreak, error) {
	query := "SELECT " + streakColumns + " FROM attendance_streaks WHERE tenant_id = ? AND student_id = ? ORDER BY id LIMIT 1"
	s, err := getOne[models.AttendanceStreak](ctx, r.db, query, tenantID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return s, nil
}

// Create inserts a new streak row
func (r *StreakRepository) Create(ctx context.Context, s *models.AttendanceStreak) error {
	query := `INSERT INTO attendance_streaks (tenant_id, student_id, current_streak, longest_streak, total_lessons,
		total_xp, level, last_attended_at, updated_at)
		VALUES (:tenant_id, :student_id, :current_streak, :longest_streak, :total_lessons,
		:total_xp, :level, :last_attended_at, :updated_at)`
	id, err := r.db.NamedInsert(ctx, query, s)
	if err != nil {
		return fmt.Errorf("failed to create streak: %w", err)
	}
	s.ID = id
	return nil
}

// Update saves a recomputed streak row
func (r *StreakRepository) Update(ctx context.Context, s *models.AttendanceStreak) error {
	query := `UPDATE attendance_streaks SET current_streak = :current_streak, longest_streak = :longest_streak,
		total_lessons = :total_lessons, total_xp = :total_xp, level = :level,
		last_attended_at = :last_attended_at, updated_at = :updated_at WHERE id = :id AND tenant_id = :tenant_id`
	result, err := r.db.NamedExec(ctx, query, s)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to update streak %d: %w", s.ID, err)
	}
	return nil
}

// ListByTenant returns a tenant's streak rows
func (r *StreakRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.AttendanceStreak, error) {
	query := "SELECT " + streakColumns + " FROM attendance_streaks WHERE tenant_id = ? ORDER BY id"
	rows, err := selectAll[models.AttendanceStreak](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list streaks: %w", err)
	}
	return rows, nil
}

const personalBestColumns = `id, tenant_id, student_id, event_type, time_seconds, previous_time, improvement, notes,
	recorded_at, created_at`

// PersonalBestRepository handles recorded event times
type PersonalBestRepository struct {
	db database.DBTX
}

// NewPersonalBestRepository creates a new personal best repository
func NewPersonalBestRepository(db database.DBTX) *PersonalBestRepository {
	return &PersonalBestRepository{db: db}
}

// Create inserts a recorded event time
func (r *PersonalBestRepository) Create(ctx context.Context, pb *models.PersonalBest) error {
	query := `INSERT INTO personal_bests (tenant_id, student_id, event_type, time_seconds, previous_time, improvement,
		notes, recorded_at, created_at)
		VALUES (:tenant_id, :student_id, :event_type, :time_seconds, :previous_time, :improvement,
		:notes, :recorded_at, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, pb)
	if err != nil {
		return fmt.Errorf("failed to create personal best: %w", err)
	}
	pb.ID = id
	return nil
}

// Best returns the fastest recorded time for a student and event, or nil
func (r *PersonalBestRepository) Best(ctx context.Context, studentID int64, eventType string) (*models.PersonalBest, error) {
	query := "SELECT " + personalBestColumns + ` FROM personal_bests WHERE student_id = ? AND event_type = ?
		ORDER BY time_seconds, id LIMIT 1`
	pb, err := getOne[models.PersonalBest](ctx, r.db, query, studentID, eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to get best time: %w", err)
	}
	return pb, nil
}

// CountByStudent counts every personal best a student has recorded
func (r *PersonalBestRepository) CountByStudent(ctx context.Context, studentID int64) (int, error) {
	var count int
	if err := r.db.Get(ctx, &count, "SELECT COUNT(*) FROM personal_bests WHERE student_id = ?", studentID); err != nil {
		return 0, fmt.Errorf("failed to count personal bests: %w", err)
	}
	return count, nil
}

// ListByTenant returns a tenant's personal bests
func (r *PersonalBestRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.PersonalBest, error) {
	query := "SELECT " + personalBestColumns + " FROM personal_bests WHERE tenant_id = ? ORDER BY id"
	rows, err := selectAll[models.PersonalBest](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal bests: %w", err)
	}
	return rows, nil
}
