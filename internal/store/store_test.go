package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-schools/internal/dbtest"
	"github.com/diewo77/go-schools/internal/models"
	"github.com/diewo77/go-schools/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(dbtest.Open(t))
}

func seedStudent(t *testing.T, s *Store) *models.Student {
	t.Helper()
	st := &models.Student{Number: "STU202500001", FirstName: "Musu", LastName: "Kollie"}
	require.NoError(t, s.CreateStudent(context.Background(), st))
	return st
}

func TestNextSequenceValue_Sequential(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := s.NextSequenceValue(ctx, models.SequenceInvoice, "2025")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// scopes and kinds are independent series
	got, err := s.NextSequenceValue(ctx, models.SequenceInvoice, "2026")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
	got, err = s.NextSequenceValue(ctx, models.SequenceReceipt, "2025")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestNextSequenceValue_Concurrent(t *testing.T) {
	s := newTestStore(t)
	const n = 25

	values := make([]int64, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			v, err := s.NextSequenceValue(context.Background(), models.SequenceReceipt, "2025")
			values[i] = v
			return err
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[int64]bool, n)
	for _, v := range values {
		assert.False(t, seen[v], "duplicate value %d", v)
		seen[v] = true
	}
	for v := int64(1); v <= n; v++ {
		assert.True(t, seen[v], "missing value %d", v)
	}
}

func TestWithinTransaction_RollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.CreateStudent(ctx, &models.Student{Number: "STU1", FirstName: "A", LastName: "B"}); err != nil {
			return err
		}
		if _, err := s.NextSequenceValue(ctx, models.SequenceStudent, "2025"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int64
	s.db.Model(&models.Student{}).Count(&n)
	assert.Zero(t, n)

	v, err := s.NextSequenceValue(ctx, models.SequenceStudent, "2025")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v, "rolled back increment must not be visible")
}

func TestStudentExistsAndDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	st := seedStudent(t, s)

	ok, err := s.StudentExists(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.StudentExists(ctx, st.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)

	dup := &models.Student{Number: st.Number, FirstName: "Other", LastName: "Person"}
	assert.ErrorIs(t, s.CreateStudent(ctx, dup), ErrConflict)

	found, err := s.Students(ctx, []uint{st.ID, st.ID + 100})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, st.Number, found[st.ID].Number)
}

func TestSubjectsAndTerms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	maths := &models.Subject{Code: "MATH", Name: "Mathematics"}
	require.NoError(t, s.CreateSubject(ctx, maths))
	require.NoError(t, s.CreateSubject(ctx, &models.Subject{Code: "ENG", Name: "English Language"}))
	assert.ErrorIs(t, s.CreateSubject(ctx, &models.Subject{Code: "MATH", Name: "Maths again"}), ErrConflict)

	subjects, err := s.Subjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "ENG", subjects[0].Code)

	ok, err := s.SubjectExists(ctx, maths.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.SubjectExists(ctx, maths.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)

	term := &models.Term{Name: "First Semester", AcademicYear: 2025}
	require.NoError(t, s.CreateTerm(ctx, term))
	ok, err = s.TermExists(ctx, term.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.TermExists(ctx, term.ID+1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAssessmentRecords_Filter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	for _, r := range []models.AssessmentRecord{
		{StudentID: 1, SubjectID: 2, TermID: 1, RawScore: 8, MaxScore: 10, RecordedAt: now},
		{StudentID: 1, SubjectID: 1, TermID: 1, RawScore: 7, MaxScore: 10, RecordedAt: now},
		{StudentID: 1, SubjectID: 1, TermID: 2, RawScore: 6, MaxScore: 10, RecordedAt: now},
		{StudentID: 2, SubjectID: 1, TermID: 1, RawScore: 5, MaxScore: 10, RecordedAt: now},
	} {
		r := r
		require.NoError(t, s.CreateAssessmentRecord(ctx, &r))
	}

	all, err := s.AssessmentRecords(ctx, models.AssessmentFilter{StudentID: 1, TermID: 1})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint(1), all[0].SubjectID)

	one, err := s.AssessmentRecords(ctx, models.AssessmentFilter{StudentID: 1, SubjectID: 2, TermID: 1})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, 8.0, one[0].RawScore)
}

func TestCreateGradeScale_SingleDefault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &models.GradeScale{Name: "WASSCE", IsDefault: true, Bands: models.WASSCEBands()}
	require.NoError(t, s.CreateGradeScale(ctx, first))
	second := &models.GradeScale{Name: "Pass/Fail", IsDefault: true, Bands: []models.GradeBand{
		{Label: "F", LowerBound: 0, UpperBound: 49},
		{Label: "P", LowerBound: 50, UpperBound: 100},
	}}
	require.NoError(t, s.CreateGradeScale(ctx, second))

	var defaults int64
	s.db.Model(&models.GradeScale{}).Where("is_default = ?", true).Count(&defaults)
	assert.Equal(t, int64(1), defaults)

	def, err := s.DefaultGradeScale(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)
	require.Len(t, def.Bands, 2)
	assert.Equal(t, "P", def.Bands[0].Label)

	loaded, err := s.GradeScale(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Bands, 9)
	assert.Equal(t, "A1", loaded.Bands[0].Label)
	assert.Equal(t, "F9", loaded.Bands[8].Label)

	_, err = s.GradeScale(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	dup := &models.GradeScale{Name: "WASSCE", Bands: models.WASSCEBands()}
	assert.ErrorIs(t, s.CreateGradeScale(ctx, dup), ErrConflict)
}

func TestDefaultGradeScale_Missing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.DefaultGradeScale(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoicesAndPayments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	st := seedStudent(t, s)
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	a := &models.Invoice{Number: "INV2025000001", StudentID: st.ID, AmountDueLRD: money.New(1000, 0).LRD, IssueDate: due, DueDate: due, Status: models.InvoiceStatusPending}
	b := &models.Invoice{Number: "INV2025000002", StudentID: st.ID, AmountDueUSD: money.New(0, 50).USD, IssueDate: due, DueDate: due.AddDate(0, 1, 0), Status: models.InvoiceStatusPending}
	require.NoError(t, s.CreateInvoice(ctx, a))
	require.NoError(t, s.CreateInvoice(ctx, b))

	p1 := &models.Payment{InvoiceID: a.ID, AmountLRD: money.New(400, 0).LRD, Method: models.PaymentCash, PaidAt: due}
	p2 := &models.Payment{InvoiceID: a.ID, AmountLRD: money.New(600, 0).LRD, Method: models.PaymentCash, PaidAt: due.Add(time.Hour)}
	p3 := &models.Payment{InvoiceID: b.ID, AmountUSD: money.New(0, 10).USD, Method: models.PaymentMobileMoney, PaidAt: due}
	for _, p := range []*models.Payment{p1, p2, p3} {
		require.NoError(t, s.CreatePayment(ctx, p))
	}

	byInvoice, err := s.PaymentsForInvoices(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, byInvoice[a.ID], 2)
	require.Len(t, byInvoice[b.ID], 1)
	assert.True(t, byInvoice[a.ID][1].AmountLRD.Equal(money.New(600, 0).LRD))

	single, err := s.PaymentsForInvoice(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, "10", single[0].AmountUSD.String())

	// payments are immutable
	err = s.db.Model(p1).Update("amount_lrd", 1).Error
	assert.ErrorIs(t, err, models.ErrImmutable)

	require.NoError(t, s.CancelInvoice(ctx, b.ID, due))
	active, err := s.ActiveInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	require.NoError(t, s.UpdateInvoiceStatus(ctx, a.ID, models.InvoiceStatusPaid))
	got, err := s.InvoiceForUpdate(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, got.Status)

	all, err := s.InvoicesForStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, s.UpdateInvoiceStatus(ctx, 999, models.InvoiceStatusPaid), ErrNotFound)
	_, err = s.Invoice(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReceiptUniquePerPayment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r1 := &models.Receipt{Number: "REC2025000001", PaymentID: 1, InvoiceID: 1}
	require.NoError(t, s.CreateReceipt(ctx, r1))
	r2 := &models.Receipt{Number: "REC2025000002", PaymentID: 1, InvoiceID: 1}
	assert.ErrorIs(t, s.CreateReceipt(ctx, r2), ErrConflict)

	got, err := s.ReceiptForPayment(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "REC2025000001", got.Number)
}
