package repository

import (
	"context"
	"fmt"

	"swimschool/internal/database"
	"swimschool/internal/models"
)

// SkillRepository handles the skill taxonomy: categories and their skills
type SkillRepository struct {
	db database.DBTX
}

// NewSkillRepository creates a new skill repository
func NewSkillRepository(db database.DBTX) *SkillRepository {
	return &SkillRepository{db: db}
}

// CreateCategory inserts a new skill category
func (r *SkillRepository) CreateCategory(ctx context.Context, c *models.SkillCategory) error {
	query := `INSERT INTO skill_categories (tenant_id, name, description, sort_order, created_at)
		VALUES (:tenant_id, :name, :description, :sort_order, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, c)
	if err != nil {
		return fmt.Errorf("failed to create skill category: %w", err)
	}
	c.ID = id
	return nil
}

// CreateSkill inserts a new skill
func (r *SkillRepository) CreateSkill(ctx context.Context, s *models.Skill) error {
	query := `INSERT INTO skills (tenant_id, category_id, name, description, sort_order, created_at)
		VALUES (:tenant_id, :category_id, :name, :description, :sort_order, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, s)
	if err != nil {
		return fmt.Errorf("failed to create skill: %w", err)
	}
	s.ID = id
	return nil
}

// ListCategories returns a tenant's skill categories in display order
func (r *SkillRepository) ListCategories(ctx context.Context, tenantID int64) ([]models.SkillCategory, error) {
	query := `SELECT id, tenant_id, name, description, sort_order, created_at
		FROM skill_categories WHERE tenant_id = ? ORDER BY sort_order, id`
	rows, err := selectAll[models.SkillCategory](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skill categories: %w", err)
	}
	return rows, nil
}

// ListSkills returns a tenant's skills grouped by category
func (r *SkillRepository) ListSkills(ctx context.Context, tenantID int64) ([]models.Skill, error) {
	query := `SELECT id, tenant_id, category_id, name, description, sort_order, created_at
		FROM skills WHERE tenant_id = ? ORDER BY category_id, sort_order, id`
	rows, err := selectAll[models.Skill](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	return rows, nil
}

// GetSkill returns a skill by ID, or nil
func (r *SkillRepository) GetSkill(ctx context.Context, id int64) (*models.Skill, error) {
	query := `SELECT id, tenant_id, category_id, name, description, sort_order, created_at FROM skills WHERE id = ?`
	s, err := getOne[models.Skill](ctx, r.db, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}
	return s, nil
}

// ListByCategory returns the skills of one category
func (r *SkillRepository) ListByCategory(ctx context.Context, categoryID int64) ([]models.Skill, error) {
	query := `SELECT id, tenant_id, category_id, name, description, sort_order, created_at
		FROM skills WHERE category_id = ? ORDER BY sort_order, id`
	rows, err := selectAll[models.Skill](ctx, r.db, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills by category: %w", err)
	}
	return rows, nil
}

const assessmentColumns = "id, tenant_id, student_id, skill_id, level, assessed_by, notes, assessed_at, updated_at"

// AssessmentRepository handles database operations for skill assessments
type AssessmentRepository struct {
	db database.DBTX
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db database.DBTX) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Create inserts a new assessment
func (r *AssessmentRepository) Create(ctx context.Context, a *models.SkillAssessment) error {
	query := `INSERT INTO skill_assessments (tenant_id, student_id, skill_id, level, assessed_by, notes, assessed_at, updated_at)
		VALUES (:tenant_id, :student_id, :skill_id, :level, :assessed_by, :notes, :assessed_at, :updated_at)`
	id, err := r.db.NamedInsert(ctx, query, a)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	a.ID = id
	return nil
}

// Update overwrites the level and notes of an existing assessment
func (r *AssessmentRepository) Update(ctx context.Context, a *models.SkillAssessment) error {
	query := `UPDATE skill_assessments SET level = :level, assessed_by = :assessed_by, notes = :notes,
		assessed_at = :assessed_at, updated_at = :updated_at WHERE id = :id AND tenant_id = :tenant_id`
	result, err := r.db.NamedExec(ctx, query, a)
	if err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to update assessment %d: %w", a.ID, err)
	}
	return nil
}

// GetByStudentSkill returns a tenant's assessment for a (student, skill) pair, or nil
func (r *AssessmentRepository) GetByStudentSkill(ctx context.Context, tenantID, studentID, skillID int64) (*models.SkillAssessment, error) {
	query := "SELECT " + assessmentColumns + ` FROM skill_assessments
		WHERE tenant_id = ? AND student_id = ? AND skill_id = ? ORDER BY id LIMIT 1`
	a, err := getOne[models.SkillAssessment](ctx, r.db, query, tenantID, studentID, skillID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

// ListByTenant returns a tenant's assessments
func (r *AssessmentRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.SkillAssessment, error) {
	query := "SELECT " + assessmentColumns + " FROM skill_assessments WHERE tenant_id = ? ORDER BY id"
	rows, err := selectAll[models.SkillAssessment](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return rows, nil
}

// ListByStudent returns a student's assessments ordered by skill
func (r *AssessmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.SkillAssessment, error) {
	query := "SELECT " + assessmentColumns + " FROM skill_assessments WHERE student_id = ? ORDER BY skill_id"
	rows, err := selectAll[models.SkillAssessment](ctx, r.db, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments by student: %w", err)
	}
	return rows, nil
}

// CountAtLeast counts a student's assessments at or above level
func (r *AssessmentRepository) CountAtLeast(ctx context.Context, studentID int64, level int) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM skill_assessments WHERE student_id = ? AND level >= ?"
	if err := r.db.Get(ctx, &count, query, studentID, level); err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}
