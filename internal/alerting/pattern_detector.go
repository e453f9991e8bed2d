package alerting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
	"github.com/google/uuid"
)

const multipleSymptomsKey = "Multiple"

// PatternDetector looks at a user's whole symptom history. The two checks
// are independent and may both fire for one write.
type PatternDetector struct {
	rules Rules
}

func NewPatternDetector(rules Rules) *PatternDetector {
	return &PatternDetector{rules: rules}
}

// Recurring counts reports of trigger's type inside the trailing
// RecurringWindow.
func (d *PatternDetector) Recurring(trigger *symptom.Report, history []*symptom.Report, now time.Time) (Candidate, bool) {
	since := now.Add(-d.rules.RecurringWindow)

	count := 0
	for _, r := range history {
		if r.SymptomType == trigger.SymptomType && r.Timestamp.After(since) {
			count++
		}
	}
	if count < d.rules.RecurringCount {
		return Candidate{}, false
	}

	return Candidate{
		UserID:      trigger.UserID,
		Category:    notification.CategoryRecurringSymptom,
		SubCategory: trigger.SymptomType,
		Message: fmt.Sprintf("RECURRING PATTERN: You've logged %s %d times in the past week. "+
			"Consider discussing recurring symptoms with your healthcare provider.",
			lower(trigger.SymptomType), count),
		Cooldown: d.rules.Cooldowns.For(notification.CategoryRecurringSymptom),
	}, true
}

// Multiple counts distinct symptom types inside the trailing MultipleWindow.
func (d *PatternDetector) Multiple(userID uuid.UUID, history []*symptom.Report, now time.Time) (Candidate, bool) {
	since := now.Add(-d.rules.MultipleWindow)

	seen := make(map[string]struct{})
	for _, r := range history {
		if r.Timestamp.After(since) {
			seen[r.SymptomType] = struct{}{}
		}
	}
	if len(seen) < d.rules.MultipleCount {
		return Candidate{}, false
	}

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)

	return Candidate{
		UserID:      userID,
		Category:    notification.CategoryMultipleSymptoms,
		SubCategory: multipleSymptomsKey,
		Message: fmt.Sprintf("MULTIPLE SYMPTOMS: You've logged %d different symptoms today: %s. "+
			"Consider rest and hydration. Contact healthcare provider if symptoms worsen.",
			len(types), strings.Join(types, ", ")),
		Cooldown: d.rules.Cooldowns.For(notification.CategoryMultipleSymptoms),
	}, true
}
