package alerting

import (
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestComputeBMI(t *testing.T) {
	assert.Equal(t, 25.82, ComputeBMI(180, 70))
	assert.Equal(t, 58.58, ComputeBMI(300, 60))
}

func TestBMIBoundsAreInclusive(t *testing.T) {
	b := DefaultRules().BMI

	assert.True(t, b.Accept(50, 24))
	assert.True(t, b.Accept(1000, 96))
	assert.False(t, b.Accept(49.9, 70))
	assert.False(t, b.Accept(180, 96.1))
}

func TestMetricMessages(t *testing.T) {
	e := NewMetricEvaluator(DefaultRules(), nil)

	cases := []struct {
		metricType string
		value      float64
		want       string
	}{
		{"BMI", 31, "considered obese"},
		{"Weight", 400, "Please ensure this is accurate"},
		{"Weight", 660, "extremely high"},
		{"Height", 84, "(7.0 feet)"},
		{"Blood Sugar", 190, "Warning! Your Blood Sugar is abnormally high: 190.00 (Threshold: 180.00)"},
	}
	for _, tc := range cases {
		t.Run(tc.metricType, func(t *testing.T) {
			c, ok := e.Evaluate(&metric.Reading{UserID: uuid.New(), MetricType: tc.metricType, Value: tc.value})
			assert.True(t, ok)
			assert.Equal(t, notification.CategoryHealthMetricAlert, c.Category)
			assert.Equal(t, 24*time.Hour, c.Cooldown)
			assert.Contains(t, c.Message, tc.want)
		})
	}
}

func TestCustomRulesReplaceDefaults(t *testing.T) {
	rules := DefaultRules()
	rules.Thresholds = ThresholdTable{"Step Count": {Threshold: 20000}}

	e := NewMetricEvaluator(rules, nil)

	_, ok := e.Evaluate(&metric.Reading{MetricType: "Heart Rate", Value: 180})
	assert.False(t, ok)
	_, ok = e.Evaluate(&metric.Reading{MetricType: "Step Count", Value: 25000})
	assert.True(t, ok)
}

func TestSymptomClassification(t *testing.T) {
	c := NewSymptomClassifier(DefaultRules())

	cases := []struct {
		symptomType  string
		severity     int
		wantCategory notification.Category
		wantCooldown time.Duration
	}{
		{"Confusion", 1, notification.CategoryCriticalSymptom, 2 * time.Hour},
		{"Chest Pain", 9, notification.CategoryCriticalSymptom, 2 * time.Hour},
		{"Headache", 8, notification.CategoryHighSeveritySymptom, 6 * time.Hour},
		{"Headache", 7, notification.CategoryModerateSymptom, 12 * time.Hour},
		{"Headache", 6, notification.CategoryModerateSymptom, 12 * time.Hour},
		{"Headache", 5, notification.CategorySymptomTracking, 24 * time.Hour},
		{"chest pain", 2, notification.CategorySymptomTracking, 24 * time.Hour},
	}
	for _, tc := range cases {
		got := c.Classify(&symptom.Report{SymptomType: tc.symptomType, Severity: tc.severity})
		assert.Equal(t, tc.wantCategory, got.Category, "%s/%d", tc.symptomType, tc.severity)
		assert.Equal(t, tc.wantCooldown, got.Cooldown, "%s/%d", tc.symptomType, tc.severity)
		assert.Equal(t, tc.symptomType, got.SubCategory)
	}
}

func TestWellnessTipSeveritySuffix(t *testing.T) {
	c := NewSymptomClassifier(DefaultRules())

	severe := c.WellnessTip(&symptom.Report{SymptomType: "Fever", Severity: 7})
	assert.Contains(t, severe.Message, "please consider seeking medical advice")
	assert.Empty(t, severe.SubCategory)

	moderate := c.WellnessTip(&symptom.Report{SymptomType: "Rash", Severity: 5})
	assert.Contains(t, moderate.Message, "Remember to rest")
	assert.Contains(t, moderate.Message, "Monitor your symptoms closely")
}

func TestPatternWindowsExcludeOldReports(t *testing.T) {
	d := NewPatternDetector(DefaultRules())
	userID := uuid.New()
	trigger := &symptom.Report{UserID: userID, SymptomType: "Cough", Timestamp: base}

	history := []*symptom.Report{
		trigger,
		{UserID: userID, SymptomType: "Cough", Timestamp: base.Add(-24 * time.Hour)},
		{UserID: userID, SymptomType: "Cough", Timestamp: base.Add(-7 * 24 * time.Hour)},
		{UserID: userID, SymptomType: "Fever", Timestamp: base.Add(-24 * time.Hour)},
	}

	_, ok := d.Recurring(trigger, history, base)
	assert.False(t, ok)
	_, ok = d.Multiple(userID, history, base)
	assert.False(t, ok)
}
