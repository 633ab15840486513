package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-schools/httpx"
	"github.com/diewo77/go-schools/internal/grading"
	"github.com/diewo77/go-schools/internal/ledger"
	"github.com/diewo77/go-schools/internal/store"
	"github.com/diewo77/go-schools/validation"
	"go.uber.org/zap"
)

type errorMapping struct {
	target error
	status int
	code   string
	detail bool
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{grading.ErrNoData, http.StatusNotFound, "no_data", false},
	{grading.ErrUnknownStudent, http.StatusNotFound, "unknown_student", false},
	{ledger.ErrUnknownStudent, http.StatusNotFound, "unknown_student", false},
	{grading.ErrUnknownSubject, http.StatusNotFound, "unknown_subject", false},
	{grading.ErrUnknownTerm, http.StatusNotFound, "unknown_term", false},
	{ledger.ErrUnknownInvoice, http.StatusNotFound, "unknown_invoice", false},
	{grading.ErrUnknownScale, http.StatusNotFound, "unknown_grade_scale", false},
	{grading.ErrInvalidRecord, http.StatusUnprocessableEntity, "invalid_record", true},
	{grading.ErrInvalidSubject, http.StatusUnprocessableEntity, "invalid_subject", true},
	{grading.ErrInvalidTerm, http.StatusUnprocessableEntity, "invalid_term", true},
	{grading.ErrInvalidGradeScale, http.StatusUnprocessableEntity, "invalid_grade_scale", true},
	{ledger.ErrInvalidAmount, http.StatusUnprocessableEntity, "invalid_amount", true},
	{ledger.ErrInvalidPayment, http.StatusUnprocessableEntity, "invalid_payment", true},
	{ledger.ErrOverpayment, http.StatusUnprocessableEntity, "overpayment", true},
	{ledger.ErrInvoiceCancelled, http.StatusConflict, "invoice_cancelled", false},
	{grading.ErrMisconfiguredGradeScale, http.StatusInternalServerError, "misconfigured_grade_scale", false},
	{ledger.ErrAllocationConflict, http.StatusServiceUnavailable, "allocation_conflict", false},
	{store.ErrConflict, http.StatusServiceUnavailable, "conflict", false},
}

// writeError maps a service error onto a JSON error response.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.status >= http.StatusInternalServerError {
			log.Error(m.code, zap.Error(err))
		}
		var details any
		if m.detail {
			details = map[string]string{"reason": err.Error()}
		}
		httpx.JSONError(w, m.status, m.code, details)
		return
	}
	log.Error("unhandled error", zap.Error(err))
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}

// decodeValid decodes the body into dst and runs its validate tags. It writes
// the error response itself and reports whether the handler may continue.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.Decode(r, dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	v := validation.Violations{}
	validation.Struct(dst, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := httpx.PathID(r, name)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_"+name, nil)
		return 0, false
	}
	return id, true
}
