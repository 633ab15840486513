package grading

import (
	"testing"

	"github.com/diewo77/go-schools/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBand_WASSCE(t *testing.T) {
	bands := models.WASSCEBands()
	tests := []struct {
		pct  float64
		want string
	}{
		{100, "A1"},
		{75, "A1"},
		{74, "B2"},
		{68, "B3"},
		{64.5, "C4"},
		{60, "C4"},
		{39.99, "F9"},
		{0, "F9"},
	}
	for _, tt := range tests {
		band, err := ResolveBand(tt.pct, bands)
		require.NoError(t, err, "pct %v", tt.pct)
		assert.Equal(t, tt.want, band.Label, "pct %v", tt.pct)
	}
}

func TestResolveBand_Uncovered(t *testing.T) {
	bands := []models.GradeBand{
		{Label: "P", LowerBound: 50, UpperBound: 100},
		{Label: "F", LowerBound: 0, UpperBound: 40},
	}
	_, err := ResolveBand(45, bands)
	assert.ErrorIs(t, err, ErrMisconfiguredGradeScale)

	_, err = ResolveBand(101, models.WASSCEBands())
	assert.ErrorIs(t, err, ErrMisconfiguredGradeScale)

	_, err = ResolveBand(-0.5, models.WASSCEBands())
	assert.ErrorIs(t, err, ErrMisconfiguredGradeScale)
}

func TestResolveBand_OverlapPrefersLowestLowerBound(t *testing.T) {
	bands := []models.GradeBand{
		{Label: "HIGH", LowerBound: 60, UpperBound: 100},
		{Label: "MID", LowerBound: 50, UpperBound: 70},
		{Label: "LOW", LowerBound: 0, UpperBound: 49},
	}
	band, err := ResolveBand(65, bands)
	require.NoError(t, err)
	assert.Equal(t, "MID", band.Label)
}

func TestResolveBand_DoesNotReorderInput(t *testing.T) {
	bands := models.WASSCEBands()
	_, err := ResolveBand(50, bands)
	require.NoError(t, err)
	assert.Equal(t, "A1", bands[0].Label)
}

func TestValidateScale(t *testing.T) {
	valid := func() *models.GradeScale {
		return &models.GradeScale{Name: "WASSCE", Bands: models.WASSCEBands()}
	}
	require.NoError(t, ValidateScale(valid()))

	tests := []struct {
		name   string
		mutate func(s *models.GradeScale)
	}{
		{"empty name", func(s *models.GradeScale) { s.Name = " " }},
		{"no bands", func(s *models.GradeScale) { s.Bands = nil }},
		{"gap", func(s *models.GradeScale) { s.Bands[2].LowerBound = 67 }},
		{"overlap", func(s *models.GradeScale) { s.Bands[1].LowerBound = 69 }},
		{"shared endpoint", func(s *models.GradeScale) { s.Bands[1].LowerBound = 69; s.Bands[1].UpperBound = 74 }},
		{"does not start at zero", func(s *models.GradeScale) { s.Bands[8].LowerBound = 1 }},
		{"does not end at 100", func(s *models.GradeScale) { s.Bands[0].UpperBound = 99 }},
		{"inverted band", func(s *models.GradeScale) { s.Bands[0].LowerBound = 100; s.Bands[0].UpperBound = 75 }},
		{"duplicate label", func(s *models.GradeScale) { s.Bands[1].Label = "A1" }},
		{"blank label", func(s *models.GradeScale) { s.Bands[3].Label = "" }},
		{"above 100", func(s *models.GradeScale) { s.Bands[0].UpperBound = 101 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			assert.ErrorIs(t, ValidateScale(s), ErrInvalidGradeScale)
		})
	}
}

func TestValidateScale_FractionalBounds(t *testing.T) {
	s := &models.GradeScale{Name: "pass/fail", Bands: []models.GradeBand{
		{Label: "F", LowerBound: 0, UpperBound: 49.99},
		{Label: "P", LowerBound: 50, UpperBound: 100},
	}}
	assert.NoError(t, ValidateScale(s))
}
