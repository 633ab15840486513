// Package grading computes weighted term averages and resolves them against
// a grade scale.
package grading

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/diewo77/go-schools/internal/clock"
	"github.com/diewo77/go-schools/internal/models"
	"github.com/diewo77/go-schools/internal/store"
	"go.uber.org/zap"
)

// Store is the data the grade engine reads and writes.
type Store interface {
	StudentExists(ctx context.Context, id uint) (bool, error)
	SubjectExists(ctx context.Context, id uint) (bool, error)
	TermExists(ctx context.Context, id uint) (bool, error)
	CreateSubject(ctx context.Context, sub *models.Subject) error
	Subjects(ctx context.Context) ([]models.Subject, error)
	CreateTerm(ctx context.Context, t *models.Term) error
	AssessmentRecords(ctx context.Context, f models.AssessmentFilter) ([]models.AssessmentRecord, error)
	CreateAssessmentRecord(ctx context.Context, r *models.AssessmentRecord) error
	GradeScale(ctx context.Context, id uint) (*models.GradeScale, error)
	DefaultGradeScale(ctx context.Context) (*models.GradeScale, error)
	CreateGradeScale(ctx context.Context, s *models.GradeScale) error
}

// Options tune a Service.
type Options struct {
	// ScaleTTL is how long a loaded scale is reused. Zero disables caching.
	ScaleTTL time.Duration
	Clock    clock.Clock
}

// Service is the grade engine.
type Service struct {
	store  Store
	log    *zap.Logger
	clock  clock.Clock
	scales *scaleCache
}

// SubjectResult is one line of a term report.
type SubjectResult struct {
	SubjectID uint             `json:"subject_id"`
	Average   float64          `json:"average"`
	Band      models.GradeBand `json:"band"`
}

// TermReport lists one entry per subject that has at least one record.
// Overall is the mean of the subject averages and is nil when there are none.
type TermReport struct {
	StudentID   uint              `json:"student_id"`
	TermID      uint              `json:"term_id"`
	ScaleID     uint              `json:"scale_id"`
	Subjects    []SubjectResult   `json:"subjects"`
	Overall     *float64          `json:"overall,omitempty"`
	OverallBand *models.GradeBand `json:"overall_band,omitempty"`
}

func NewService(st Store, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New(nil)
	}
	s := &Service{
		store: st,
		log:   log.Named("grading"),
		clock: opts.Clock,
	}
	s.scales = newScaleCache(s.loadScale, opts.ScaleTTL, opts.Clock.Now)
	return s
}

func (s *Service) loadScale(ctx context.Context, id uint) (*models.GradeScale, error) {
	var (
		scale *models.GradeScale
		err   error
	)
	if id == 0 {
		scale, err = s.store.DefaultGradeScale(ctx)
	} else {
		scale, err = s.store.GradeScale(ctx, id)
	}
	if errors.Is(err, store.ErrNotFound) {
		if id == 0 {
			return nil, fmt.Errorf("%w: no default scale", ErrUnknownScale)
		}
		return nil, fmt.Errorf("%w: %d", ErrUnknownScale, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load grade scale: %w", err)
	}
	return scale, nil
}

// Scale returns the scale with the given id, or the default scale for id 0.
func (s *Service) Scale(ctx context.Context, id uint) (*models.GradeScale, error) {
	return s.scales.Get(ctx, id)
}

// CreateScale validates and stores a new scale. A default scale replaces the
// previous default.
func (s *Service) CreateScale(ctx context.Context, scale *models.GradeScale) error {
	if err := ValidateScale(scale); err != nil {
		return err
	}
	if err := s.store.CreateGradeScale(ctx, scale); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("%w: name %q already exists", ErrInvalidGradeScale, scale.Name)
		}
		return fmt.Errorf("create grade scale: %w", err)
	}
	s.scales.InvalidateAll()
	s.log.Info("grade scale created",
		zap.Uint("scale_id", scale.ID),
		zap.String("name", scale.Name),
		zap.Bool("default", scale.IsDefault))
	return nil
}

// RecordAssessment validates r and stores it. RecordedAt defaults to now.
func (s *Service) RecordAssessment(ctx context.Context, r *models.AssessmentRecord) error {
	if err := ValidateRecord(*r); err != nil {
		return err
	}
	if err := s.requireStudent(ctx, r.StudentID); err != nil {
		return err
	}
	if err := s.require(ctx, s.store.SubjectExists, r.SubjectID, ErrUnknownSubject); err != nil {
		return err
	}
	if err := s.require(ctx, s.store.TermExists, r.TermID, ErrUnknownTerm); err != nil {
		return err
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = s.clock.Now()
	}
	if err := s.store.CreateAssessmentRecord(ctx, r); err != nil {
		return fmt.Errorf("record assessment: %w", err)
	}
	return nil
}

// GradeForScore resolves an arbitrary percentage against scale scaleID, or the
// default scale when scaleID is 0.
func (s *Service) GradeForScore(ctx context.Context, score float64, scaleID uint) (models.GradeBand, error) {
	scale, err := s.Scale(ctx, scaleID)
	if err != nil {
		return models.GradeBand{}, err
	}
	return ResolveBand(score, scale.Bands)
}

// SubjectAverage computes the weighted average of one subject in one term and
// its band on the default scale.
func (s *Service) SubjectAverage(ctx context.Context, studentID, subjectID, termID uint) (SubjectResult, error) {
	records, err := s.store.AssessmentRecords(ctx, models.AssessmentFilter{
		StudentID: studentID,
		SubjectID: subjectID,
		TermID:    termID,
	})
	if err != nil {
		return SubjectResult{}, fmt.Errorf("load assessments: %w", err)
	}
	avg, err := WeightedAverage(records)
	if err != nil {
		return SubjectResult{}, err
	}
	scale, err := s.Scale(ctx, 0)
	if err != nil {
		return SubjectResult{}, err
	}
	band, err := ResolveBand(avg, scale.Bands)
	if err != nil {
		s.log.Error("average outside grade scale",
			zap.Uint("scale_id", scale.ID), zap.Float64("average", avg), zap.Error(err))
		return SubjectResult{}, err
	}
	return SubjectResult{SubjectID: subjectID, Average: avg, Band: band}, nil
}

// TermReport builds the report for one student and term against the default
// scale. Subjects without records are left out rather than reported as zero.
func (s *Service) TermReport(ctx context.Context, studentID, termID uint) (*TermReport, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}
	records, err := s.store.AssessmentRecords(ctx, models.AssessmentFilter{StudentID: studentID, TermID: termID})
	if err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}

	report := &TermReport{StudentID: studentID, TermID: termID, Subjects: []SubjectResult{}}
	if len(records) == 0 {
		return report, nil
	}

	scale, err := s.Scale(ctx, 0)
	if err != nil {
		return nil, err
	}
	report.ScaleID = scale.ID

	bySubject := make(map[uint][]models.AssessmentRecord)
	for _, r := range records {
		bySubject[r.SubjectID] = append(bySubject[r.SubjectID], r)
	}
	subjectIDs := make([]uint, 0, len(bySubject))
	for id := range bySubject {
		subjectIDs = append(subjectIDs, id)
	}
	sort.Slice(subjectIDs, func(i, j int) bool { return subjectIDs[i] < subjectIDs[j] })

	averages := make([]float64, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		avg, err := WeightedAverage(bySubject[id])
		if err != nil {
			return nil, fmt.Errorf("subject %d: %w", id, err)
		}
		band, err := ResolveBand(avg, scale.Bands)
		if err != nil {
			s.log.Error("average outside grade scale",
				zap.Uint("scale_id", scale.ID), zap.Uint("subject_id", id), zap.Float64("average", avg))
			return nil, err
		}
		report.Subjects = append(report.Subjects, SubjectResult{SubjectID: id, Average: avg, Band: band})
		averages = append(averages, avg)
	}

	overall, err := MeanOfAverages(averages)
	if err != nil {
		return nil, err
	}
	overallBand, err := ResolveBand(overall, scale.Bands)
	if err != nil {
		return nil, err
	}
	report.Overall = &overall
	report.OverallBand = &overallBand
	return report, nil
}

// CreateSubject stores a subject. Codes are trimmed, upper-cased and unique.
func (s *Service) CreateSubject(ctx context.Context, sub *models.Subject) error {
	sub.Code = strings.ToUpper(strings.TrimSpace(sub.Code))
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Code == "" || sub.Name == "" {
		return fmt.Errorf("%w: code and name are required", ErrInvalidSubject)
	}
	if err := s.store.CreateSubject(ctx, sub); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("%w: code %q already exists", ErrInvalidSubject, sub.Code)
		}
		return fmt.Errorf("create subject: %w", err)
	}
	s.log.Info("subject created", zap.Uint("subject_id", sub.ID), zap.String("code", sub.Code))
	return nil
}

func (s *Service) Subjects(ctx context.Context) ([]models.Subject, error) {
	return s.store.Subjects(ctx)
}

// CreateTerm stores a term. When both dates are set the end must follow the start.
func (s *Service) CreateTerm(ctx context.Context, t *models.Term) error {
	t.Name = strings.TrimSpace(t.Name)
	switch {
	case t.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidTerm)
	case t.AcademicYear <= 0:
		return fmt.Errorf("%w: academic year is required", ErrInvalidTerm)
	case !t.StartDate.IsZero() && !t.EndDate.IsZero() && !t.EndDate.After(t.StartDate):
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidTerm)
	}
	if err := s.store.CreateTerm(ctx, t); err != nil {
		return fmt.Errorf("create term: %w", err)
	}
	s.log.Info("term created", zap.Uint("term_id", t.ID), zap.String("name", t.Name), zap.Int("year", t.AcademicYear))
	return nil
}

func (s *Service) requireStudent(ctx context.Context, id uint) error {
	return s.require(ctx, s.store.StudentExists, id, ErrUnknownStudent)
}

func (s *Service) require(ctx context.Context, exists func(context.Context, uint) (bool, error), id uint, unknown error) error {
	ok, err := exists(ctx, id)
	if err != nil {
		return fmt.Errorf("look up id %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %d", unknown, id)
	}
	return nil
}
