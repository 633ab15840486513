package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/go-schools/httpx"
	"github.com/diewo77/go-schools/internal/grading"
	"github.com/diewo77/go-schools/internal/models"
	"github.com/diewo77/go-schools/validation"
	"go.uber.org/zap"
)

// GradeHandler exposes the grade engine over JSON.
type GradeHandler struct {
	svc *grading.Service
	log *zap.Logger
}

func NewGradeHandler(svc *grading.Service, log *zap.Logger) *GradeHandler {
	return &GradeHandler{svc: svc, log: log.Named("handlers.grades")}
}

type assessmentRequest struct {
	StudentID  uint                  `json:"student_id" validate:"required"`
	SubjectID  uint                  `json:"subject_id" validate:"required"`
	TermID     uint                  `json:"term_id" validate:"required"`
	Kind       models.AssessmentKind `json:"kind" validate:"omitempty,oneof=CONTINUOUS MIDTERM EXAM"`
	Title      string                `json:"title" validate:"max=200"`
	RawScore   float64               `json:"raw_score" validate:"gte=0"`
	MaxScore   float64               `json:"max_score" validate:"gt=0"`
	Weight     float64               `json:"weight" validate:"gte=0,lte=100"`
	RecordedAt *time.Time            `json:"recorded_at"`
}

// RecordAssessment: POST /assessments
func (h *GradeHandler) RecordAssessment(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if !decodeValid(w, r, &req) {
		return
	}
	rec := models.AssessmentRecord{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		TermID:    req.TermID,
		Kind:      req.Kind,
		Title:     req.Title,
		RawScore:  req.RawScore,
		MaxScore:  req.MaxScore,
		Weight:    req.Weight,
	}
	if req.RecordedAt != nil {
		rec.RecordedAt = *req.RecordedAt
	}
	if err := h.svc.RecordAssessment(r.Context(), &rec); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

type scoreRequest struct {
	RawScore float64 `json:"raw_score" validate:"gte=0"`
	MaxScore float64 `json:"max_score" validate:"gt=0"`
	Weight   float64 `json:"weight" validate:"gte=0,lte=100"`
}

type averageRequest struct {
	Records []scoreRequest `json:"records" validate:"dive"`
	ScaleID uint           `json:"scale_id"`
}

// Average: POST /grades/average computes an ad-hoc weighted average and its grade.
func (h *GradeHandler) Average(w http.ResponseWriter, r *http.Request) {
	var req averageRequest
	if !decodeValid(w, r, &req) {
		return
	}
	records := make([]models.AssessmentRecord, len(req.Records))
	for i, s := range req.Records {
		records[i] = models.AssessmentRecord{RawScore: s.RawScore, MaxScore: s.MaxScore, Weight: s.Weight}
	}
	avg, err := grading.WeightedAverage(records)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	band, err := h.svc.GradeForScore(r.Context(), avg, req.ScaleID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"average": avg, "band": band})
}

// Band: GET /grades/band?score=&scale_id=
func (h *GradeHandler) Band(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := validation.Violations{}
	score, err := strconv.ParseFloat(q.Get("score"), 64)
	if err != nil {
		v["score"] = "required"
	} else {
		validation.RangeFloat("score", score, 0, 100, v)
	}
	var scaleID uint
	if s := q.Get("scale_id"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			v["scale_id"] = "invalid"
		}
		scaleID = uint(n)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	band, err := h.svc.GradeForScore(r.Context(), score, scaleID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, band)
}

type bandRequest struct {
	Label       string  `json:"label" validate:"notblank,max=10"`
	LowerBound  float64 `json:"lower_bound" validate:"gte=0,lte=100"`
	UpperBound  float64 `json:"upper_bound" validate:"gte=0,lte=100"`
	GradePoint  float64 `json:"grade_point" validate:"gte=0"`
	Description string  `json:"description" validate:"max=100"`
}

type scaleRequest struct {
	Name      string        `json:"name" validate:"notblank,max=100"`
	IsDefault bool          `json:"is_default"`
	Bands     []bandRequest `json:"bands" validate:"required,min=1,dive"`
}

// CreateScale: POST /grade-scales
func (h *GradeHandler) CreateScale(w http.ResponseWriter, r *http.Request) {
	var req scaleRequest
	if !decodeValid(w, r, &req) {
		return
	}
	scale := models.GradeScale{Name: req.Name, IsDefault: req.IsDefault}
	for _, b := range req.Bands {
		scale.Bands = append(scale.Bands, models.GradeBand{
			Label:       b.Label,
			LowerBound:  b.LowerBound,
			UpperBound:  b.UpperBound,
			GradePoint:  b.GradePoint,
			Description: b.Description,
		})
	}
	if err := h.svc.CreateScale(r.Context(), &scale); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, scale)
}

// GetScale: GET /grade-scales/{id}, where id may be "default".
func (h *GradeHandler) GetScale(w http.ResponseWriter, r *http.Request) {
	var id uint
	if r.PathValue("id") != "default" {
		var ok bool
		if id, ok = pathID(w, r, "id"); !ok {
			return
		}
	}
	scale, err := h.svc.Scale(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, scale)
}

// SubjectAverage: GET /students/{id}/terms/{termId}/subjects/{subjectId}
func (h *GradeHandler) SubjectAverage(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	termID, ok := pathID(w, r, "termId")
	if !ok {
		return
	}
	subjectID, ok := pathID(w, r, "subjectId")
	if !ok {
		return
	}
	res, err := h.svc.SubjectAverage(r.Context(), studentID, subjectID, termID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// TermReport: GET /students/{id}/terms/{termId}/report
func (h *GradeHandler) TermReport(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	termID, ok := pathID(w, r, "termId")
	if !ok {
		return
	}
	report, err := h.svc.TermReport(r.Context(), studentID, termID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

type subjectRequest struct {
	Code string `json:"code" validate:"notblank,max=20"`
	Name string `json:"name" validate:"notblank,max=100"`
}

// CreateSubject: POST /subjects
func (h *GradeHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req subjectRequest
	if !decodeValid(w, r, &req) {
		return
	}
	sub := models.Subject{Code: req.Code, Name: req.Name}
	if err := h.svc.CreateSubject(r.Context(), &sub); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sub)
}

// Subjects: GET /subjects
func (h *GradeHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.svc.Subjects(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, subjects)
}

type termRequest struct {
	Name         string     `json:"name" validate:"notblank,max=50"`
	AcademicYear int        `json:"academic_year" validate:"gte=1900,lte=2200"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// CreateTerm: POST /terms
func (h *GradeHandler) CreateTerm(w http.ResponseWriter, r *http.Request) {
	var req termRequest
	if !decodeValid(w, r, &req) {
		return
	}
	term := models.Term{Name: req.Name, AcademicYear: req.AcademicYear}
	if req.StartDate != nil {
		term.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		term.EndDate = *req.EndDate
	}
	if err := h.svc.CreateTerm(r.Context(), &term); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, term)
}
