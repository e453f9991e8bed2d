package alerting

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
)

// Formatter renders the alert text for a reading that crossed its threshold.
type Formatter func(metricType string, value, threshold float64) string

type ThresholdRule struct {
	Threshold float64
	// Nil falls back to the generic "abnormally high" text.
	Format Formatter
}

// ThresholdTable maps metric type to its rule. Types not present are inert.
type ThresholdTable map[string]ThresholdRule

// Lookup matches exactly first, then case-insensitively.
func (t ThresholdTable) Lookup(metricType string) (ThresholdRule, bool) {
	if rule, ok := t[metricType]; ok {
		return rule, true
	}
	for k, rule := range t {
		if strings.EqualFold(k, metricType) {
			return rule, true
		}
	}
	return ThresholdRule{}, false
}

// CooldownPolicy maps category to the minimum gap between two notifications
// with the same dedup key. A missing or non-positive entry never suppresses.
type CooldownPolicy map[notification.Category]time.Duration

func (p CooldownPolicy) For(c notification.Category) time.Duration {
	return p[c]
}

// BMIBounds are the unit-sanity bounds (pounds, inches) a weight/height pair
// must satisfy before BMI is derived. Both ends are inclusive.
type BMIBounds struct {
	MinWeight, MaxWeight float64
	MinHeight, MaxHeight float64
}

func (b BMIBounds) Accept(weight, height float64) bool {
	return weight >= b.MinWeight && weight <= b.MaxWeight &&
		height >= b.MinHeight && height <= b.MaxHeight
}

// Rules is the immutable rule set the engine evaluates against. Build one
// with DefaultRules and override fields before handing it to New.
type Rules struct {
	Thresholds ThresholdTable
	BMI        BMIBounds

	CriticalSymptoms   map[string]struct{}
	HighSeverity       int
	ModerateSeverity   int
	DeteriorationDelta int

	RecurringWindow time.Duration
	RecurringCount  int
	MultipleWindow  time.Duration
	MultipleCount   int

	ConflictWindow time.Duration

	WellnessTips map[string]string
	DefaultTip   string

	Cooldowns CooldownPolicy
}

func (r Rules) IsCritical(symptomType string) bool {
	_, ok := r.CriticalSymptoms[symptomType]
	return ok
}

func DefaultRules() Rules {
	return Rules{
		Thresholds: ThresholdTable{
			"Blood Pressure":           {Threshold: 140},
			"Heart Rate":               {Threshold: 100},
			"Blood Sugar":              {Threshold: 180},
			"Cholesterol":              {Threshold: 200},
			"Body Temperature":         {Threshold: 38},
			"Respiratory Rate":         {Threshold: 20},
			"Oxygen Saturation":        {Threshold: 90},
			"Blood Pressure Diastolic": {Threshold: 90},
			metric.TypeBMI:             {Threshold: 30, Format: formatBMI},
			metric.TypeWeight:          {Threshold: 330, Format: formatWeight},
			metric.TypeHeight:          {Threshold: 78, Format: formatHeight},
		},
		BMI: BMIBounds{MinWeight: 50, MaxWeight: 1000, MinHeight: 24, MaxHeight: 96},

		CriticalSymptoms: setOf(
			"Chest Pain", "Severe Headache", "Difficulty Breathing",
			"Sudden Vision Loss", "Severe Abdominal Pain", "Numbness", "Confusion",
		),
		HighSeverity:       8,
		ModerateSeverity:   6,
		DeteriorationDelta: 3,

		RecurringWindow: 7 * 24 * time.Hour,
		RecurringCount:  3,
		MultipleWindow:  24 * time.Hour,
		MultipleCount:   3,

		ConflictWindow: 2 * time.Hour,

		WellnessTips: map[string]string{
			"Headache": "TIP: For headaches, try drinking more water, getting adequate sleep, " +
				"and taking breaks from screens. Consider gentle neck stretches and relaxation techniques.",
			"Fatigue": "TIP: Combat fatigue by maintaining a regular sleep schedule, eating balanced meals, " +
				"staying hydrated, and incorporating light exercise like walking into your routine.",
			"Fever": "TIP: When experiencing fever, rest, drink plenty of fluids, and monitor your temperature. " +
				"If fever exceeds 101°F (38.3°C) or persists, contact a healthcare provider.",
			"Cough": "TIP: For coughs, stay hydrated, use a humidifier, avoid irritants like smoke, " +
				"and consider honey (for adults) or throat lozenges for relief.",
			"Nausea": "TIP: To manage nausea, try eating small, bland meals, sipping ginger tea, " +
				"getting fresh air, and avoiding strong odors. Rest in a comfortable position.",
			"Muscle Pain": "TIP: For muscle pain, apply heat or ice as needed, gentle stretching, " +
				"adequate rest, and stay hydrated. Light movement can help prevent stiffness.",
		},
		DefaultTip: "TIP: Remember to rest, stay hydrated, and listen to your body. " +
			"Track your symptoms and consult a healthcare provider if they persist or worsen.",

		Cooldowns: CooldownPolicy{
			notification.CategoryHealthMetricAlert: 24 * time.Hour,

			notification.CategoryCriticalSymptom:      2 * time.Hour,
			notification.CategoryHighSeveritySymptom:  6 * time.Hour,
			notification.CategoryModerateSymptom:      12 * time.Hour,
			notification.CategorySymptomTracking:      24 * time.Hour,
			notification.CategorySymptomDeterioration: 2 * time.Hour,
			notification.CategoryRecurringSymptom:     24 * time.Hour,
			notification.CategoryMultipleSymptoms:     24 * time.Hour,
			notification.CategoryWellnessTip:          24 * time.Hour,

			// Keyed by appointment id, so these only stop repeats for the
			// same appointment.
			notification.CategoryMultipleDayAppointments: 24 * time.Hour,
			notification.CategoryAppointmentConflict:     24 * time.Hour,

			// Each is at least as wide as its scan window.
			notification.CategoryReminder24Hour: 48 * time.Hour,
			notification.CategoryReminder2Hour:  6 * time.Hour,
			notification.CategoryReminderDayOf:  24 * time.Hour,
		},
	}
}

func setOf(values ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func formatGeneric(metricType string, value, threshold float64) string {
	return fmt.Sprintf("Warning! Your %s is abnormally high: %.2f (Threshold: %.2f). Please consult a healthcare provider.",
		metricType, value, threshold)
}

func formatBMI(_ string, value, _ float64) string {
	switch {
	case value > 30:
		return fmt.Sprintf("Your BMI is %.2f, which is considered obese. Please consult with a nutritionist or healthcare provider.", value)
	case value > 25:
		return fmt.Sprintf("Your BMI is %.2f, indicating overweight. Consider a balanced diet and regular exercise.", value)
	default:
		return fmt.Sprintf("Your BMI is %.2f, slightly above normal. Stay active and monitor regularly.", value)
	}
}

func formatWeight(_ string, value, _ float64) string {
	switch {
	case value > 330 && value < 660:
		return fmt.Sprintf("Your recorded weight is %.2f lbs. Please ensure this is accurate and consult a doctor if unexpected.", value)
	case value >= 660:
		return fmt.Sprintf("Weight registered: %.2f lbs. This is extremely high - please seek immediate medical attention.", value)
	default:
		return fmt.Sprintf("Weight registered: %.2f lbs. No critical alert, just for your awareness.", value)
	}
}

func formatHeight(_ string, value, _ float64) string {
	if value > 78 {
		return fmt.Sprintf("Your recorded height is %.2f inches (%.1f feet). Please verify this measurement is correct.",
			value, value/12.0)
	}
	return fmt.Sprintf("Height registered: %.2f inches. No concerns noted.", value)
}
