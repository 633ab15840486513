package grading

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/diewo77/go-schools/internal/models"
)

// maxStep is the widest allowed distance between one band's upper bound and the
// next band's lower bound. Whole-number tables such as 60-64 / 65-69 step by one.
const maxStep = 1.0

func sortedBands(bands []models.GradeBand) []models.GradeBand {
	out := make([]models.GradeBand, len(bands))
	copy(out, bands)
	sort.SliceStable(out, func(i, j int) bool { return out[i].LowerBound < out[j].LowerBound })
	return out
}

// ValidateScale checks that the bands of s are non-overlapping, contiguous and
// cover 0-100 exactly once.
func ValidateScale(s *models.GradeScale) error {
	if s == nil {
		return fmt.Errorf("%w: nil scale", ErrInvalidGradeScale)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGradeScale)
	}
	if len(s.Bands) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidGradeScale)
	}

	labels := make(map[string]bool, len(s.Bands))
	for _, b := range s.Bands {
		label := strings.TrimSpace(b.Label)
		if label == "" {
			return fmt.Errorf("%w: band without label", ErrInvalidGradeScale)
		}
		if labels[label] {
			return fmt.Errorf("%w: duplicate label %s", ErrInvalidGradeScale, label)
		}
		labels[label] = true
		if b.LowerBound > b.UpperBound {
			return fmt.Errorf("%w: band %s lower bound above upper bound", ErrInvalidGradeScale, label)
		}
		if b.LowerBound < 0 || b.UpperBound > 100 {
			return fmt.Errorf("%w: band %s outside 0-100", ErrInvalidGradeScale, label)
		}
	}

	bands := sortedBands(s.Bands)
	if bands[0].LowerBound != 0 {
		return fmt.Errorf("%w: lowest band starts at %v, not 0", ErrInvalidGradeScale, bands[0].LowerBound)
	}
	if last := bands[len(bands)-1]; last.UpperBound != 100 {
		return fmt.Errorf("%w: highest band ends at %v, not 100", ErrInvalidGradeScale, last.UpperBound)
	}
	for i := 1; i < len(bands); i++ {
		prev, cur := bands[i-1], bands[i]
		if cur.LowerBound <= prev.UpperBound {
			return fmt.Errorf("%w: bands %s and %s overlap", ErrInvalidGradeScale, prev.Label, cur.Label)
		}
		if cur.LowerBound-prev.UpperBound > maxStep {
			return fmt.Errorf("%w: gap between %s and %s", ErrInvalidGradeScale, prev.Label, cur.Label)
		}
	}
	return nil
}

// ResolveBand returns the band containing pct.
//
// Overlapping bands resolve to the one with the lowest lower bound. A value in
// the sub-point step between two adjacent whole-number bands (64.5 between
// 60-64 and 65-69) belongs to the lower band. Anything else that no band
// covers is ErrMisconfiguredGradeScale.
func ResolveBand(pct float64, bands []models.GradeBand) (models.GradeBand, error) {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return models.GradeBand{}, fmt.Errorf("%w: percentage %v", ErrMisconfiguredGradeScale, pct)
	}
	sorted := sortedBands(bands)
	for _, b := range sorted {
		if b.Contains(pct) {
			return b, nil
		}
	}
	for i := 0; i+1 < len(sorted); i++ {
		lower, upper := sorted[i], sorted[i+1]
		if pct > lower.UpperBound && pct < upper.LowerBound && upper.LowerBound-lower.UpperBound <= maxStep {
			return lower, nil
		}
	}
	return models.GradeBand{}, fmt.Errorf("%w: no band covers %.2f", ErrMisconfiguredGradeScale, pct)
}
