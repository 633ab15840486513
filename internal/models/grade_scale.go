package models

import "time"

// GradeScale is an ordered set of bands mapping a percentage to a grade.
// Exactly one scale is the default at any time.
type GradeScale struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string      `gorm:"size:100;uniqueIndex;not null" json:"name"`
	IsDefault bool        `gorm:"index;default:false" json:"is_default"`
	Bands     []GradeBand `gorm:"foreignKey:GradeScaleID;constraint:OnDelete:CASCADE" json:"bands"`
}

// GradeBand maps an inclusive percentage range to a label and grade point.
type GradeBand struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	GradeScaleID uint    `gorm:"index;not null" json:"grade_scale_id"`
	Label        string  `gorm:"size:10;not null" json:"label"`
	LowerBound   float64 `gorm:"not null" json:"lower_bound"`
	UpperBound   float64 `gorm:"not null" json:"upper_bound"`
	GradePoint   float64 `gorm:"not null" json:"grade_point"`
	Description  string  `gorm:"size:100" json:"description,omitempty"`
}

// Contains reports whether pct lies within the band, bounds included.
func (b GradeBand) Contains(pct float64) bool {
	return pct >= b.LowerBound && pct <= b.UpperBound
}

// WASSCEBands returns the default WASSCE/WAEC grading table.
func WASSCEBands() []GradeBand {
	return []GradeBand{
		{Label: "A1", LowerBound: 75, UpperBound: 100, GradePoint: 1, Description: "Excellent"},
		{Label: "B2", LowerBound: 70, UpperBound: 74, GradePoint: 2, Description: "Very Good"},
		{Label: "B3", LowerBound: 65, UpperBound: 69, GradePoint: 3, Description: "Good"},
		{Label: "C4", LowerBound: 60, UpperBound: 64, GradePoint: 4, Description: "Credit"},
		{Label: "C5", LowerBound: 55, UpperBound: 59, GradePoint: 5, Description: "Credit"},
		{Label: "C6", LowerBound: 50, UpperBound: 54, GradePoint: 6, Description: "Credit"},
		{Label: "D7", LowerBound: 45, UpperBound: 49, GradePoint: 7, Description: "Pass"},
		{Label: "E8", LowerBound: 40, UpperBound: 44, GradePoint: 8, Description: "Pass"},
		{Label: "F9", LowerBound: 0, UpperBound: 39, GradePoint: 9, Description: "Fail"},
	}
}
