package analytics

import "swimschool/internal/models"

// Mastery thresholds differ between views: the analytics dashboard counts
// level 3 as mastered while student progress and client profiles require 4.
// Both are kept until the academy settles on one.
const (
	AnalyticsMasteryLevel = 3
	ProgressMasteryLevel  = 4
)

// CategoryProgress is mastery within one skill category
type CategoryProgress struct {
	CategoryID  int64  `json:"categoryId"`
	Name        string `json:"name"`
	TotalSkills int    `json:"totalSkills"`
	Mastered    int    `json:"mastered"`
	Percent     int    `json:"percent"`
}

// CategoryMastery computes, per category, the share of skills the student
// holds at threshold or above.
func CategoryMastery(categories []models.SkillCategory, skills []models.Skill, assessments []models.SkillAssessment, studentID int64, threshold int) []CategoryProgress {
	levels := make(map[int64]int)
	for _, a := range assessments {
		if a.StudentID == studentID {
			levels[a.SkillID] = a.Level
		}
	}

	out := make([]CategoryProgress, 0, len(categories))
	for _, c := range categories {
		cp := CategoryProgress{CategoryID: c.ID, Name: c.Name}
		for _, s := range skills {
			if s.CategoryID != c.ID {
				continue
			}
			cp.TotalSkills++
			if level, ok := levels[s.ID]; ok && level >= threshold {
				cp.Mastered++
			}
		}
		cp.Percent = SafePercent(float64(cp.Mastered), float64(cp.TotalSkills))
		out = append(out, cp)
	}
	return out
}

// TenantCategoryMastery aggregates mastery over every assessed student: the
// denominator is skills in the category times the number of assessed students.
func TenantCategoryMastery(categories []models.SkillCategory, skills []models.Skill, assessments []models.SkillAssessment, threshold int) []CategoryProgress {
	categoryOf := make(map[int64]int64, len(skills))
	for _, s := range skills {
		categoryOf[s.ID] = s.CategoryID
	}

	students := make(map[int64]bool)
	mastered := make(map[int64]int)
	for _, a := range assessments {
		students[a.StudentID] = true
		if a.Level >= threshold {
			if cat, ok := categoryOf[a.SkillID]; ok {
				mastered[cat]++
			}
		}
	}

	out := make([]CategoryProgress, 0, len(categories))
	for _, c := range categories {
		total := 0
		for _, s := range skills {
			if s.CategoryID == c.ID {
				total++
			}
		}
		cp := CategoryProgress{CategoryID: c.ID, Name: c.Name, TotalSkills: total, Mastered: mastered[c.ID]}
		cp.Percent = SafePercent(float64(cp.Mastered), float64(total*len(students)))
		out = append(out, cp)
	}
	return out
}

// MasteredCount counts a student's assessments at threshold or above
func MasteredCount(assessments []models.SkillAssessment, studentID int64, threshold int) int {
	count := 0
	for _, a := range assessments {
		if a.StudentID == studentID && a.Level >= threshold {
			count++
		}
	}
	return count
}
