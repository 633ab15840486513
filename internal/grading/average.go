package grading

import (
	"fmt"

	"github.com/diewo77/go-schools/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ValidateRecord checks the invariants of a single assessment record.
func ValidateRecord(r models.AssessmentRecord) error {
	switch {
	case r.MaxScore <= 0:
		return fmt.Errorf("%w: max score must be positive", ErrInvalidRecord)
	case r.RawScore < 0:
		return fmt.Errorf("%w: raw score must not be negative", ErrInvalidRecord)
	case r.RawScore > r.MaxScore:
		return fmt.Errorf("%w: raw score %v exceeds max score %v", ErrInvalidRecord, r.RawScore, r.MaxScore)
	case r.Weight < 0:
		return fmt.Errorf("%w: weight must not be negative", ErrInvalidRecord)
	case r.Weight > 100:
		return fmt.Errorf("%w: weight %v above 100", ErrInvalidRecord, r.Weight)
	}
	return nil
}

// NormalizeWeights maps the weights of records to fractions. The scale is
// decided for the whole set: if any weight is above 1 every weight is read on
// 0-100 and divided by 100, otherwise all weights are already fractions.
func NormalizeWeights(records []models.AssessmentRecord) []decimal.Decimal {
	percent := false
	for _, r := range records {
		if r.Weight > 1 {
			percent = true
			break
		}
	}
	weights := make([]decimal.Decimal, len(records))
	for i, r := range records {
		weights[i] = decimal.NewFromFloat(r.Weight)
		if percent {
			weights[i] = weights[i].Div(hundred)
		}
	}
	return weights
}

// Percentage returns raw/max as a 0-100 percentage.
func Percentage(r models.AssessmentRecord) decimal.Decimal {
	return decimal.NewFromFloat(r.RawScore).Div(decimal.NewFromFloat(r.MaxScore)).Mul(hundred)
}

// WeightedAverage returns Σ(pct·w)/Σw over the records, rounded half-up to two places.
// When every weight is zero each record counts once, which makes the result a simple mean.
// An empty slice yields ErrNoData.
func WeightedAverage(records []models.AssessmentRecord) (float64, error) {
	if len(records) == 0 {
		return 0, ErrNoData
	}

	for _, r := range records {
		if err := ValidateRecord(r); err != nil {
			return 0, err
		}
	}
	weights := NormalizeWeights(records)
	totalWeight := decimal.Zero
	for _, w := range weights {
		totalWeight = totalWeight.Add(w)
	}
	if totalWeight.IsZero() {
		for i := range weights {
			weights[i] = decimal.NewFromInt(1)
		}
		totalWeight = decimal.NewFromInt(int64(len(weights)))
	}

	sum := decimal.Zero
	for i, r := range records {
		sum = sum.Add(Percentage(r).Mul(weights[i]))
	}
	return round2(sum.Div(totalWeight)), nil
}

// MeanOfAverages is the overall term figure: every subject counts once,
// regardless of how many assessments it had.
func MeanOfAverages(averages []float64) (float64, error) {
	if len(averages) == 0 {
		return 0, ErrNoData
	}
	sum := decimal.Zero
	for _, a := range averages {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	return round2(sum.Div(decimal.NewFromInt(int64(len(averages))))), nil
}

// round2 rounds half away from zero, which is half-up for the non-negative
// values produced here.
func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
