package models

import "time"

// Goal statuses
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
)

// Badge requirement types
const (
	RequirementLessonsCompleted = "lessons_completed"
	RequirementStreakDays       = "streak_days"
	RequirementSkillMastered    = "skill_mastered"
	RequirementPersonalBests    = "personal_bests"
)

// Goal is a student target moved forward by progress updates
type Goal struct {
	ID           int64      `db:"id" json:"id"`
	TenantID     int64      `db:"tenant_id" json:"tenantId"`
	StudentID    int64      `db:"student_id" json:"studentId" validate:"required"`
	Title        string     `db:"title" json:"title" validate:"required,max=200"`
	GoalType     string     `db:"goal_type" json:"goalType" validate:"required"`
	TargetValue  float64    `db:"target_value" json:"targetValue" validate:"gt=0"`
	CurrentValue float64    `db:"current_value" json:"currentValue" validate:"gte=0"`
	Unit         string     `db:"unit" json:"unit"`
	Deadline     *time.Time `db:"deadline" json:"deadline,omitempty"`
	Status       string     `db:"status" json:"status"`
	CompletedAt  *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// Reached reports whether the current value meets the target
func (g Goal) Reached() bool {
	return g.CurrentValue >= g.TargetValue
}

// Badge is a catalog entry with a threshold on one tracked metric
type Badge struct {
	ID               int64     `db:"id" json:"id"`
	TenantID         int64     `db:"tenant_id" json:"tenantId"`
	Name             string    `db:"name" json:"name"`
	Description      string    `db:"description" json:"description"`
	Icon             string    `db:"icon" json:"icon"`
	RequirementType  string    `db:"requirement_type" json:"requirementType"`
	RequirementValue int       `db:"requirement_value" json:"requirementValue"`
	XPReward         int       `db:"xp_reward" json:"xpReward"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// StudentBadge records that a student earned a badge
type StudentBadge struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  int64     `db:"tenant_id" json:"tenantId"`
	StudentID int64     `db:"student_id" json:"studentId"`
	BadgeID   int64     `db:"badge_id" json:"badgeId"`
	EarnedAt  time.Time `db:"earned_at" json:"earnedAt"`
}

// AttendanceStreak aggregates attendance for one student
type AttendanceStreak struct {
	ID             int64      `db:"id" json:"id"`
	TenantID       int64      `db:"tenant_id" json:"tenantId"`
	StudentID      int64      `db:"student_id" json:"studentId"`
	CurrentStreak  int        `db:"current_streak" json:"currentStreak"`
	LongestStreak  int        `db:"longest_streak" json:"longestStreak"`
	TotalLessons   int        `db:"total_lessons" json:"totalLessons"`
	TotalXP        int        `db:"total_xp" json:"totalXp"`
	Level          int        `db:"level" json:"level"`
	LastAttendedAt *time.Time `db:"last_attended_at" json:"lastAttendedAt,omitempty"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// PersonalBest is a recorded time for one event. PreviousTime and Improvement
// are captured when the row is written and never recomputed.
type PersonalBest struct {
	ID           int64     `db:"id" json:"id"`
	TenantID     int64     `db:"tenant_id" json:"tenantId"`
	StudentID    int64     `db:"student_id" json:"studentId" validate:"required"`
	EventType    string    `db:"event_type" json:"eventType" validate:"required"`
	TimeSeconds  float64   `db:"time_seconds" json:"timeSeconds" validate:"gt=0"`
	PreviousTime *float64  `db:"previous_time" json:"previousTime,omitempty"`
	Improvement  *float64  `db:"improvement" json:"improvement,omitempty"`
	Notes        string    `db:"notes" json:"notes"`
	RecordedAt   time.Time `db:"recorded_at" json:"recordedAt"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
