package models

import "time"

// Student represents an enrolled student.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Number is the allocated student number (e.g. STU202500042).
	Number        string `gorm:"size:50;uniqueIndex;not null" json:"number"`
	FirstName     string `gorm:"size:100;not null" json:"first_name"`
	LastName      string `gorm:"size:100;not null" json:"last_name"`
	Email         string `gorm:"size:255" json:"email,omitempty"`
	GuardianPhone string `gorm:"size:20" json:"guardian_phone,omitempty"`
}

// FullName returns "First Last".
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Subject is a taught subject (e.g. Mathematics).
type Subject struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name string `gorm:"size:100;not null" json:"name"`
}

// Term is an academic period within a year.
type Term struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:50;not null" json:"name"`
	AcademicYear int       `gorm:"index;not null" json:"academic_year"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}

// AssessmentKind is the component an assessment belongs to.
type AssessmentKind string

const (
	AssessmentContinuous AssessmentKind = "CONTINUOUS"
	AssessmentMidterm    AssessmentKind = "MIDTERM"
	AssessmentExam       AssessmentKind = "EXAM"
)

// AssessmentRecord is one scored component for a student, subject and term.
// Weight is stored as entered, either 0-1 or 0-100; the grade engine normalizes it.
type AssessmentRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	StudentID uint `gorm:"index:idx_assessment_lookup;not null" json:"student_id"`
	SubjectID uint `gorm:"index:idx_assessment_lookup;not null" json:"subject_id"`
	TermID    uint `gorm:"index:idx_assessment_lookup;not null" json:"term_id"`

	Kind  AssessmentKind `gorm:"size:20" json:"kind,omitempty"`
	Title string         `gorm:"size:200" json:"title,omitempty"`

	RawScore   float64   `gorm:"not null" json:"raw_score"`
	MaxScore   float64   `gorm:"not null" json:"max_score"`
	Weight     float64   `gorm:"not null;default:0" json:"weight"`
	RecordedAt time.Time `gorm:"not null" json:"recorded_at"`
}

// AssessmentFilter selects assessment records. A zero SubjectID matches every subject.
type AssessmentFilter struct {
	StudentID uint
	SubjectID uint
	TermID    uint
}
