package progress

import "swimschool/internal/models"

// SkillMasteryLevel is the assessment level counted by skill_mastered badges
const SkillMasteryLevel = 4

// Metrics are the tracked values badge requirements are compared against
type Metrics struct {
	LessonsCompleted int
	StreakDays       int
	SkillsMastered   int
	PersonalBests    int
}

// Value returns the metric a requirement type refers to
func (m Metrics) Value(requirementType string) (int, bool) {
	switch requirementType {
	case models.RequirementLessonsCompleted:
		return m.LessonsCompleted, true
	case models.RequirementStreakDays:
		return m.StreakDays, true
	case models.RequirementSkillMastered:
		return m.SkillsMastered, true
	case models.RequirementPersonalBests:
		return m.PersonalBests, true
	default:
		return 0, false
	}
}

// EligibleBadges returns the catalog badges not yet earned whose threshold m meets
func EligibleBadges(catalog []models.Badge, earned map[int64]bool, m Metrics) []models.Badge {
	var out []models.Badge
	for _, b := range catalog {
		if earned[b.ID] {
			continue
		}
		value, ok := m.Value(b.RequirementType)
		if !ok {
			continue
		}
		if value >= b.RequirementValue {
			out = append(out, b)
		}
	}
	return out
}

// EarnedSet indexes a student's earned badges by badge ID
func EarnedSet(earned []models.StudentBadge) map[int64]bool {
	set := make(map[int64]bool, len(earned))
	for _, sb := range earned {
		set[sb.BadgeID] = true
	}
	return set
}
