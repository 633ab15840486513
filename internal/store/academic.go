package store

import (
	"context"

	"github.com/diewo77/go-schools/internal/models"
)

func (s *Store) CreateStudent(ctx context.Context, st *models.Student) error {
	return classify(s.conn(ctx).Create(st).Error)
}

// Students returns the students with the given ids, keyed by id. Missing ids are skipped.
func (s *Store) Students(ctx context.Context, ids []uint) (map[uint]models.Student, error) {
	out := make(map[uint]models.Student, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Student
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	for _, st := range rows {
		out[st.ID] = st
	}
	return out, nil
}

func (s *Store) StudentExists(ctx context.Context, id uint) (bool, error) {
	return s.exists(ctx, &models.Student{}, id)
}

func (s *Store) SubjectExists(ctx context.Context, id uint) (bool, error) {
	return s.exists(ctx, &models.Subject{}, id)
}

func (s *Store) TermExists(ctx context.Context, id uint) (bool, error) {
	return s.exists(ctx, &models.Term{}, id)
}

func (s *Store) exists(ctx context.Context, model any, id uint) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, classify(err)
	}
	return n > 0, nil
}

// CreateSubject inserts sub. A duplicate code is ErrConflict.
func (s *Store) CreateSubject(ctx context.Context, sub *models.Subject) error {
	return classify(s.conn(ctx).Create(sub).Error)
}

// Subjects lists every subject by code.
func (s *Store) Subjects(ctx context.Context) ([]models.Subject, error) {
	var out []models.Subject
	if err := s.conn(ctx).Order("code").Find(&out).Error; err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *Store) CreateTerm(ctx context.Context, t *models.Term) error {
	return classify(s.conn(ctx).Create(t).Error)
}

func (s *Store) CreateAssessmentRecord(ctx context.Context, r *models.AssessmentRecord) error {
	return classify(s.conn(ctx).Create(r).Error)
}

// AssessmentRecords returns the records matching f, oldest first.
func (s *Store) AssessmentRecords(ctx context.Context, f models.AssessmentFilter) ([]models.AssessmentRecord, error) {
	q := s.conn(ctx).Where("student_id = ? AND term_id = ?", f.StudentID, f.TermID)
	if f.SubjectID != 0 {
		q = q.Where("subject_id = ?", f.SubjectID)
	}
	var out []models.AssessmentRecord
	if err := q.Order("subject_id, recorded_at, id").Find(&out).Error; err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// CreateGradeScale inserts s and its bands. When s is the default, every other
// scale loses the flag in the same transaction.
func (s *Store) CreateGradeScale(ctx context.Context, scale *models.GradeScale) error {
	return s.WithinTransaction(ctx, func(ctx context.Context) error {
		tx := s.conn(ctx)
		if scale.IsDefault {
			if err := tx.Model(&models.GradeScale{}).
				Where("is_default = ?", true).
				Update("is_default", false).Error; err != nil {
				return classify(err)
			}
		}
		return classify(tx.Create(scale).Error)
	})
}

func (s *Store) GradeScale(ctx context.Context, id uint) (*models.GradeScale, error) {
	var scale models.GradeScale
	if err := s.conn(ctx).First(&scale, id).Error; err != nil {
		return nil, classify(err)
	}
	return s.withBands(ctx, &scale)
}

func (s *Store) DefaultGradeScale(ctx context.Context) (*models.GradeScale, error) {
	var scale models.GradeScale
	if err := s.conn(ctx).Where("is_default = ?", true).Order("id DESC").First(&scale).Error; err != nil {
		return nil, classify(err)
	}
	return s.withBands(ctx, &scale)
}

func (s *Store) withBands(ctx context.Context, scale *models.GradeScale) (*models.GradeScale, error) {
	if err := s.conn(ctx).
		Where("grade_scale_id = ?", scale.ID).
		Order("lower_bound DESC").
		Find(&scale.Bands).Error; err != nil {
		return nil, classify(err)
	}
	return scale, nil
}
