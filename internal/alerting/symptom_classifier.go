package alerting

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
)

type SymptomClassifier struct {
	rules Rules
}

func NewSymptomClassifier(rules Rules) *SymptomClassifier {
	return &SymptomClassifier{rules: rules}
}

// Category picks the first matching bucket: critical type, then high,
// moderate and finally tracking by severity.
func (c *SymptomClassifier) Category(r *symptom.Report) notification.Category {
	switch {
	case c.rules.IsCritical(r.SymptomType):
		return notification.CategoryCriticalSymptom
	case r.Severity >= c.rules.HighSeverity:
		return notification.CategoryHighSeveritySymptom
	case r.Severity >= c.rules.ModerateSeverity:
		return notification.CategoryModerateSymptom
	default:
		return notification.CategorySymptomTracking
	}
}

func (c *SymptomClassifier) Classify(r *symptom.Report) Candidate {
	category := c.Category(r)
	return Candidate{
		UserID:      r.UserID,
		Category:    category,
		SubCategory: r.SymptomType,
		Message:     symptomMessage(category, r),
		Cooldown:    c.rules.Cooldowns.For(category),
	}
}

// Deterioration fires when severity rose by at least DeteriorationDelta.
func (c *SymptomClassifier) Deterioration(old, updated *symptom.Report) (Candidate, bool) {
	if updated.Severity-old.Severity < c.rules.DeteriorationDelta {
		return Candidate{}, false
	}

	return Candidate{
		UserID:      updated.UserID,
		Category:    notification.CategorySymptomDeterioration,
		SubCategory: updated.SymptomType,
		Message: fmt.Sprintf("SYMPTOM WORSENING: Your %s has worsened from %d/10 to %d/10. "+
			"Please monitor closely and consider seeking medical care if needed.",
			lower(updated.SymptomType), old.Severity, updated.Severity),
		Cooldown: c.rules.Cooldowns.For(notification.CategorySymptomDeterioration),
	}, true
}

// WellnessTip has an empty sub-category so a user gets at most one tip per
// cooldown regardless of how many symptom types they log.
func (c *SymptomClassifier) WellnessTip(r *symptom.Report) Candidate {
	tip, ok := c.rules.WellnessTips[r.SymptomType]
	if !ok {
		tip = c.rules.DefaultTip
	}

	switch {
	case r.Severity >= 7:
		tip += " Given the severity of your symptoms, please consider seeking medical advice."
	case r.Severity >= 5:
		tip += " Monitor your symptoms closely and don't hesitate to seek care if needed."
	}

	return Candidate{
		UserID:   r.UserID,
		Category: notification.CategoryWellnessTip,
		Message:  tip,
		Cooldown: c.rules.Cooldowns.For(notification.CategoryWellnessTip),
	}
}

func symptomMessage(category notification.Category, r *symptom.Report) string {
	description := r.Description
	if description == "" {
		description = "none provided"
	}
	t := lower(r.SymptomType)

	switch category {
	case notification.CategoryCriticalSymptom:
		return fmt.Sprintf("URGENT: You've reported %s. This symptom requires immediate medical attention. "+
			"Severity: %d/10 (%s). Description: %s. Please seek emergency care or contact your doctor immediately.",
			t, r.Severity, r.SeverityLabel(), description)
	case notification.CategoryHighSeveritySymptom:
		return fmt.Sprintf("HIGH SEVERITY: Your %s is rated %d/10 (%s). This is concerning and you should "+
			"consider contacting a healthcare provider today. Description: %s. Monitor closely for any changes.",
			t, r.Severity, r.SeverityLabel(), description)
	case notification.CategoryModerateSymptom:
		return fmt.Sprintf("MODERATE SYMPTOM: You've logged %s with severity %d/10. "+
			"Keep monitoring this symptom. If it persists or worsens, consider consulting a healthcare provider. "+
			"Description: %s", t, r.Severity, description)
	default:
		return fmt.Sprintf("SYMPTOM LOGGED: %s recorded with severity %d/10. "+
			"We're tracking your symptoms to help identify patterns. Description: %s. "+
			"Remember to rest and stay hydrated.", t, r.Severity, description)
	}
}
