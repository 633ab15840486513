package grading

import (
	"errors"
	"testing"

	"github.com/diewo77/go-schools/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(raw, max, weight float64) models.AssessmentRecord {
	return models.AssessmentRecord{RawScore: raw, MaxScore: max, Weight: weight}
}

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name    string
		records []models.AssessmentRecord
		want    float64
	}{
		{"percent weights", []models.AssessmentRecord{rec(80, 100, 40), rec(60, 100, 60)}, 68.00},
		{"fraction weights", []models.AssessmentRecord{rec(80, 100, 0.4), rec(60, 100, 0.6)}, 68.00},
		{"one percent weight in a percent set", []models.AssessmentRecord{rec(10, 10, 1), rec(0, 100, 99)}, 1.00},
		{"fraction among percents reads as percent", []models.AssessmentRecord{rec(100, 100, 0.5), rec(0, 100, 50)}, 0.99},
		{"uniform weights is simple mean", []models.AssessmentRecord{rec(70, 100, 10), rec(50, 100, 10), rec(90, 100, 10)}, 70.00},
		{"all zero weights fall back to mean", []models.AssessmentRecord{rec(18, 20, 0), rec(30, 50, 0)}, 75.00},
		{"different max scores", []models.AssessmentRecord{rec(15, 20, 50), rec(45, 50, 50)}, 82.50},
		{"rounds half up", []models.AssessmentRecord{rec(2, 3, 1)}, 66.67},
		{"single record", []models.AssessmentRecord{rec(33, 40, 25)}, 82.50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WeightedAverage(tt.records)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeightedAverage_Empty(t *testing.T) {
	_, err := WeightedAverage(nil)
	require.ErrorIs(t, err, ErrNoData)
}

func TestWeightedAverage_Deterministic(t *testing.T) {
	records := []models.AssessmentRecord{rec(17, 23, 35), rec(41, 57, 15), rec(8, 9, 50)}
	first, err := WeightedAverage(records)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		got, err := WeightedAverage(records)
		require.NoError(t, err)
		require.Equal(t, first, got)
	}
}

func TestWeightedAverage_InvalidRecord(t *testing.T) {
	tests := []struct {
		name string
		r    models.AssessmentRecord
	}{
		{"zero max", rec(0, 0, 10)},
		{"negative raw", rec(-1, 10, 10)},
		{"raw above max", rec(11, 10, 10)},
		{"negative weight", rec(5, 10, -1)},
		{"weight above 100", rec(5, 10, 101)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WeightedAverage([]models.AssessmentRecord{tt.r})
			if !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestMeanOfAverages(t *testing.T) {
	got, err := MeanOfAverages([]float64{68, 75.5, 80.25})
	require.NoError(t, err)
	assert.Equal(t, 74.58, got)

	_, err = MeanOfAverages(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestNormalizeWeights(t *testing.T) {
	asStrings := func(ds []decimal.Decimal) []string {
		out := make([]string, len(ds))
		for i, d := range ds {
			out[i] = d.String()
		}
		return out
	}
	assert.Equal(t, []string{"0.4", "0.6"}, asStrings(NormalizeWeights([]models.AssessmentRecord{rec(1, 1, 40), rec(1, 1, 60)})))
	assert.Equal(t, []string{"0.4", "0.6"}, asStrings(NormalizeWeights([]models.AssessmentRecord{rec(1, 1, 0.4), rec(1, 1, 0.6)})))
	assert.Equal(t, []string{"0.01", "0.99"}, asStrings(NormalizeWeights([]models.AssessmentRecord{rec(1, 1, 1), rec(1, 1, 99)})))
	assert.Equal(t, []string{"1", "0"}, asStrings(NormalizeWeights([]models.AssessmentRecord{rec(1, 1, 1), rec(1, 1, 0)})))
}
