package services

import (
	"sort"
	"strings"

	"neuromind/internal/models"
)

// Score thresholds mapping a subject's quiz score to how urgently and how
// long it should be studied. Weak subjects get high priority and long blocks.
func assignPriorityAndDuration(score int) (models.Priority, int) {
	switch {
	case score >= 80:
		return models.PriorityLow, 30
	case score >= 60:
		return models.PriorityMedium, 60
	default:
		return models.PriorityHigh, 90
	}
}

// BuildWeeklySchedule turns scored subjects into a weekly study plan.
// Blank-named subjects are dropped; the rest are sorted ascending by score
// (weakest first, stable for ties) and dealt round-robin across the week
// starting Monday. Every weekday appears in the result, possibly empty.
// The mapping is deterministic for a given input.
func BuildWeeklySchedule(subjects []models.Subject) map[string][]models.ScheduleEntry {
	schedule := make(map[string][]models.ScheduleEntry, len(models.WeekDays))
	for _, day := range models.WeekDays {
		schedule[day] = []models.ScheduleEntry{}
	}

	valid := make([]models.Subject, 0, len(subjects))
	for _, subject := range subjects {
		if strings.TrimSpace(subject.Name) != "" {
			valid = append(valid, subject)
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Score < valid[j].Score
	})

	for i, subject := range valid {
		priority, duration := assignPriorityAndDuration(subject.Score)
		day := models.WeekDays[i%len(models.WeekDays)]
		schedule[day] = append(schedule[day], models.ScheduleEntry{
			Subject:         subject.Name,
			Score:           subject.Score,
			Priority:        priority,
			DurationMinutes: duration,
			Day:             day,
		})
	}

	return schedule
}
