package alerting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
)

type MetricEvaluator struct {
	rules    Rules
	readings metric.Repository
}

func NewMetricEvaluator(rules Rules, readings metric.Repository) *MetricEvaluator {
	return &MetricEvaluator{rules: rules, readings: readings}
}

// Evaluate reports whether r exceeds its configured threshold. Readings of
// unknown types never alert.
func (e *MetricEvaluator) Evaluate(r *metric.Reading) (Candidate, bool) {
	rule, ok := e.rules.Thresholds.Lookup(r.MetricType)
	if !ok || r.Value <= rule.Threshold {
		return Candidate{}, false
	}

	format := rule.Format
	if format == nil {
		format = formatGeneric
	}

	return Candidate{
		UserID:      r.UserID,
		Category:    notification.CategoryHealthMetricAlert,
		SubCategory: r.MetricType,
		Message:     format(r.MetricType, r.Value, rule.Threshold),
		Cooldown:    e.rules.Cooldowns.For(notification.CategoryHealthMetricAlert),
	}, true
}

// ComputeBMI returns (weight / height²) × 703 rounded to two decimals.
// Weight is in pounds, height in inches.
func ComputeBMI(weight, height float64) float64 {
	return math.Round(weight/(height*height)*703*100) / 100
}

// DeriveBMI builds an unsaved BMI reading when r is a weight or height and
// the owner has a complementary reading on file. It returns nil when r is
// not a BMI input, the complement is missing or the pair fails the unit
// bounds.
func (e *MetricEvaluator) DeriveBMI(ctx context.Context, r *metric.Reading, now time.Time) (*metric.Reading, error) {
	var complement string
	switch {
	case r.IsType(metric.TypeWeight):
		complement = metric.TypeHeight
	case r.IsType(metric.TypeHeight):
		complement = metric.TypeWeight
	default:
		return nil, nil
	}

	other, err := e.readings.MostRecentByType(ctx, r.UserID, complement)
	if errors.Is(err, metric.ErrReadingNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up most recent %s: %w", complement, err)
	}

	weight, height := r.Value, other.Value
	if complement == metric.TypeWeight {
		weight, height = other.Value, r.Value
	}
	if !e.rules.BMI.Accept(weight, height) {
		return nil, nil
	}

	return &metric.Reading{
		UserID:     r.UserID,
		MetricType: metric.TypeBMI,
		Value:      ComputeBMI(weight, height),
		Timestamp:  now,
		Derived:    true,
	}, nil
}
