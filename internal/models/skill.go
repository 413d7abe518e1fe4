package models

import "time"

// MaxSkillLevel is the top of the assessment scale
const MaxSkillLevel = 5

// SkillCategory groups skills, e.g. "Freestyle"
type SkillCategory struct {
	ID          int64     `db:"id" json:"id"`
	TenantID    int64     `db:"tenant_id" json:"tenantId"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	SortOrder   int       `db:"sort_order" json:"sortOrder"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Skill is one assessable item within a category
type Skill struct {
	ID          int64     `db:"id" json:"id"`
	TenantID    int64     `db:"tenant_id" json:"tenantId"`
	CategoryID  int64     `db:"category_id" json:"categoryId"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	SortOrder   int       `db:"sort_order" json:"sortOrder"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// SkillAssessment is a student's level in one skill. There is at most one per (student, skill).
type SkillAssessment struct {
	ID         int64     `db:"id" json:"id"`
	TenantID   int64     `db:"tenant_id" json:"tenantId"`
	StudentID  int64     `db:"student_id" json:"studentId" validate:"required"`
	SkillID    int64     `db:"skill_id" json:"skillId" validate:"required"`
	Level      int       `db:"level" json:"level" validate:"gte=0,lte=5"`
	AssessedBy int64     `db:"assessed_by" json:"assessedBy"`
	Notes      string    `db:"notes" json:"notes"`
	AssessedAt time.Time `db:"assessed_at" json:"assessedAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
