package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/go-schools/httpx"
	"github.com/diewo77/go-schools/internal/ledger"
	"github.com/diewo77/go-schools/internal/models"
	"github.com/diewo77/go-schools/internal/money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerHandler exposes students, invoices and payments over JSON.
type LedgerHandler struct {
	svc *ledger.Service
	log *zap.Logger
}

func NewLedgerHandler(svc *ledger.Service, log *zap.Logger) *LedgerHandler {
	return &LedgerHandler{svc: svc, log: log.Named("handlers.ledger")}
}

type studentRequest struct {
	FirstName     string `json:"first_name" validate:"notblank,max=100"`
	LastName      string `json:"last_name" validate:"notblank,max=100"`
	Email         string `json:"email" validate:"omitempty,email,max=255"`
	GuardianPhone string `json:"guardian_phone" validate:"max=20"`
}

// RegisterStudent: POST /students
func (h *LedgerHandler) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !decodeValid(w, r, &req) {
		return
	}
	st := models.Student{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		GuardianPhone: req.GuardianPhone,
	}
	if err := h.svc.RegisterStudent(r.Context(), &st); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, st)
}

type amountRequest struct {
	LRD decimal.Decimal `json:"lrd"`
	USD decimal.Decimal `json:"usd"`
}

func (a amountRequest) amounts() money.Amounts {
	return money.Amounts{LRD: a.LRD, USD: a.USD}
}

type invoiceRequest struct {
	StudentID   uint           `json:"student_id" validate:"required"`
	Amount      amountRequest  `json:"amount"`
	FeeType     models.FeeType `json:"fee_type" validate:"omitempty,oneof=TUITION REGISTRATION EXAM LIBRARY SPORTS TRANSPORT UNIFORM OTHER"`
	Description string         `json:"description" validate:"max=500"`
	IssueDate   *time.Time     `json:"issue_date"`
	DueDate     *time.Time     `json:"due_date"`
}

// CreateInvoice: POST /invoices
func (h *LedgerHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !decodeValid(w, r, &req) {
		return
	}
	in := ledger.InvoiceInput{
		StudentID:   req.StudentID,
		Amount:      req.Amount.amounts(),
		FeeType:     req.FeeType,
		Description: req.Description,
	}
	if req.IssueDate != nil {
		in.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		in.DueDate = *req.DueDate
	}
	inv, err := h.svc.CreateInvoice(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// GetInvoice: GET /invoices/{id}
func (h *LedgerHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := h.svc.Invoice(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

type paymentRequest struct {
	Amount    amountRequest        `json:"amount"`
	Method    models.PaymentMethod `json:"method" validate:"required"`
	Reference string               `json:"reference" validate:"max=100"`
	PaidAt    *time.Time           `json:"paid_at"`
}

// RecordPayment: POST /invoices/{id}/payments
func (h *LedgerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req paymentRequest
	if !decodeValid(w, r, &req) {
		return
	}
	in := ledger.PaymentInput{
		InvoiceID: id,
		Amount:    req.Amount.amounts(),
		Method:    req.Method,
		Reference: req.Reference,
	}
	if req.PaidAt != nil {
		in.PaidAt = *req.PaidAt
	}
	res, err := h.svc.RecordPayment(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

// CancelInvoice: POST /invoices/{id}/cancel
func (h *LedgerHandler) CancelInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.svc.CancelInvoice(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Balance: GET /students/{id}/balance
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	bal, err := h.svc.StudentBalance(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bal)
}

// Arrears: GET /reports/arrears
func (h *LedgerHandler) Arrears(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Arrears(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rows, "total": len(rows)})
}
