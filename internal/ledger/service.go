// Package ledger keeps the school fee ledger: invoices, payments, receipts,
// balances and arrears. Invoice status is always derived from payment history.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-schools/internal/clock"
	"github.com/diewo77/go-schools/internal/models"
	"github.com/diewo77/go-schools/internal/money"
	"github.com/diewo77/go-schools/internal/store"
	"go.uber.org/zap"
)

// Store is the data the ledger reads and writes. Calls made with the ctx
// handed to WithinTransaction's callback run inside that transaction.
type Store interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	NextSequenceValue(ctx context.Context, kind models.SequenceKind, scope string) (int64, error)

	StudentExists(ctx context.Context, id uint) (bool, error)
	CreateStudent(ctx context.Context, st *models.Student) error

	Invoice(ctx context.Context, id uint) (*models.Invoice, error)
	InvoiceForUpdate(ctx context.Context, id uint) (*models.Invoice, error)
	InvoicesForStudent(ctx context.Context, studentID uint) ([]models.Invoice, error)
	ActiveInvoices(ctx context.Context) ([]models.Invoice, error)
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	UpdateInvoiceStatus(ctx context.Context, id uint, status models.InvoiceStatus) error
	CancelInvoice(ctx context.Context, id uint, at time.Time) error

	CreatePayment(ctx context.Context, p *models.Payment) error
	PaymentsForInvoice(ctx context.Context, invoiceID uint) ([]models.Payment, error)
	PaymentsForInvoices(ctx context.Context, invoiceIDs []uint) (map[uint][]models.Payment, error)
	CreateReceipt(ctx context.Context, r *models.Receipt) error
}

// Options tune a Service.
type Options struct {
	// AllowOverpayment accepts payments larger than the outstanding balance,
	// leaving a credit on the invoice.
	AllowOverpayment  bool
	AllocationRetries int
	Clock             clock.Clock
}

// Service is the ledger engine.
type Service struct {
	store            Store
	log              *zap.Logger
	clock            clock.Clock
	numbers          *Allocator
	allowOverpayment bool
}

func NewService(st Store, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New(nil)
	}
	log = log.Named("ledger")
	return &Service{
		store:            st,
		log:              log,
		clock:            opts.Clock,
		numbers:          NewAllocator(st, opts.Clock, log, opts.AllocationRetries),
		allowOverpayment: opts.AllowOverpayment,
	}
}

// InvoiceInput describes a new invoice.
type InvoiceInput struct {
	StudentID   uint
	Amount      money.Amounts
	FeeType     models.FeeType
	Description string
	IssueDate   time.Time
	DueDate     time.Time
}

// defaultTerms is the payment window used when no due date is given.
const defaultTerms = 30 * 24 * time.Hour

// CreateInvoice numbers and stores a new invoice for a student.
func (s *Service) CreateInvoice(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	amount := in.Amount.Round2()
	if amount.AnyNegative() || amount.IsZero() {
		return nil, fmt.Errorf("%w: invoice amount %s", ErrInvalidAmount, amount)
	}
	now := s.clock.Now()
	if in.IssueDate.IsZero() {
		in.IssueDate = now
	}
	if in.DueDate.IsZero() {
		in.DueDate = in.IssueDate.Add(defaultTerms)
	}
	if in.FeeType == "" {
		in.FeeType = models.FeeTuition
	}

	inv := &models.Invoice{
		StudentID:    in.StudentID,
		FeeType:      in.FeeType,
		Description:  in.Description,
		AmountDueLRD: amount.LRD,
		AmountDueUSD: amount.USD,
		IssueDate:    in.IssueDate,
		DueDate:      in.DueDate,
	}
	inv.Status = DeriveStatus(inv, nil, now)

	err := s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.requireStudent(ctx, in.StudentID); err != nil {
			return err
		}
		number, err := s.numbers.Next(ctx, models.SequenceInvoice)
		if err != nil {
			return err
		}
		inv.Number = number
		return s.store.CreateInvoice(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("invoice created",
		zap.String("number", inv.Number),
		zap.Uint("student_id", inv.StudentID),
		zap.Stringer("amount", amount))
	return inv, nil
}

// PaymentInput describes money received against an invoice.
type PaymentInput struct {
	InvoiceID uint
	Amount    money.Amounts
	Method    models.PaymentMethod
	Reference string
	PaidAt    time.Time
}

// PaymentResult is what RecordPayment wrote, with the invoice's new position.
type PaymentResult struct {
	Payment *models.Payment      `json:"payment"`
	Receipt *models.Receipt      `json:"receipt"`
	Status  models.InvoiceStatus `json:"status"`
	Summary Summary              `json:"summary"`
}

// RecordPayment stores a payment and its receipt and refreshes the invoice
// status from the full payment history, all in one transaction.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	amount := in.Amount.Round2()
	if amount.AnyNegative() || amount.IsZero() {
		return nil, fmt.Errorf("%w: payment amount %s", ErrInvalidAmount, amount)
	}
	if !in.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidPayment, in.Method)
	}
	now := s.clock.Now()
	if in.PaidAt.IsZero() {
		in.PaidAt = now
	}

	var res PaymentResult
	err := s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.store.InvoiceForUpdate(ctx, in.InvoiceID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrUnknownInvoice, in.InvoiceID)
		}
		if err != nil {
			return err
		}
		if inv.IsCancelled() {
			return fmt.Errorf("%w: %s", ErrInvoiceCancelled, inv.Number)
		}

		payments, err := s.store.PaymentsForInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		if !s.allowOverpayment {
			outstanding := Summarize(inv, payments).Balance
			if c, over := amount.Exceeds(outstanding); over {
				return fmt.Errorf("%w: %s %s against %s outstanding on %s",
					ErrOverpayment, c, amount.Get(c).StringFixed(2), outstanding.Get(c).StringFixed(2), inv.Number)
			}
		}

		p := &models.Payment{
			InvoiceID: inv.ID,
			AmountLRD: amount.LRD,
			AmountUSD: amount.USD,
			Method:    in.Method,
			Reference: in.Reference,
			PaidAt:    in.PaidAt,
		}
		if err := s.store.CreatePayment(ctx, p); err != nil {
			return err
		}

		number, err := s.numbers.Next(ctx, models.SequenceReceipt)
		if err != nil {
			return err
		}
		r := &models.Receipt{
			Number:    number,
			PaymentID: p.ID,
			InvoiceID: inv.ID,
			AmountLRD: p.AmountLRD,
			AmountUSD: p.AmountUSD,
		}
		if err := s.store.CreateReceipt(ctx, r); err != nil {
			return err
		}

		payments = append(payments, *p)
		status := DeriveStatus(inv, payments, now)
		if status != inv.Status {
			if err := s.store.UpdateInvoiceStatus(ctx, inv.ID, status); err != nil {
				return err
			}
		}
		res = PaymentResult{Payment: p, Receipt: r, Status: status, Summary: Summarize(inv, payments)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("payment recorded",
		zap.Uint("invoice_id", in.InvoiceID),
		zap.String("receipt", res.Receipt.Number),
		zap.Stringer("amount", amount),
		zap.String("status", string(res.Status)))
	return &res, nil
}

// CancelInvoice marks an invoice cancelled. Cancelling twice is a no-op.
func (s *Service) CancelInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.store.InvoiceForUpdate(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrUnknownInvoice, id)
		}
		if err != nil {
			return err
		}
		if inv.IsCancelled() {
			return nil
		}
		at := s.clock.Now()
		if err := s.store.CancelInvoice(ctx, id, at); err != nil {
			return err
		}
		inv.Status = models.InvoiceStatusCancelled
		inv.CancelledAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("invoice cancelled", zap.String("number", inv.Number))
	return inv, nil
}

// InvoiceView is an invoice with its position recomputed from payments.
type InvoiceView struct {
	Invoice  *models.Invoice      `json:"invoice"`
	Payments []models.Payment     `json:"payments"`
	Status   models.InvoiceStatus `json:"status"`
	Summary  Summary              `json:"summary"`
}

// Invoice returns an invoice with a freshly derived status.
func (s *Service) Invoice(ctx context.Context, id uint) (*InvoiceView, error) {
	inv, err := s.store.Invoice(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInvoice, id)
	}
	if err != nil {
		return nil, err
	}
	payments, err := s.store.PaymentsForInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return &InvoiceView{
		Invoice:  inv,
		Payments: payments,
		Status:   DeriveStatus(inv, payments, s.clock.Now()),
		Summary:  Summarize(inv, payments),
	}, nil
}

// RefreshStatuses rewrites the stored status of every active invoice whose
// derived status has changed, such as PENDING invoices that are now past due.
// It returns how many invoices were updated.
func (s *Service) RefreshStatuses(ctx context.Context) (int, error) {
	invoices, byInvoice, err := s.activeWithPayments(ctx)
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	updated := 0
	for i := range invoices {
		inv := &invoices[i]
		status := DeriveStatus(inv, byInvoice[inv.ID], now)
		if status == inv.Status {
			continue
		}
		if err := s.store.UpdateInvoiceStatus(ctx, inv.ID, status); err != nil {
			return updated, fmt.Errorf("update status of %s: %w", inv.Number, err)
		}
		updated++
	}
	s.log.Info("invoice statuses refreshed", zap.Int("checked", len(invoices)), zap.Int("updated", updated))
	return updated, nil
}

// RegisterStudent assigns the next student number and stores the student.
func (s *Service) RegisterStudent(ctx context.Context, st *models.Student) error {
	err := s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbers.Next(ctx, models.SequenceStudent)
		if err != nil {
			return err
		}
		st.Number = number
		return s.store.CreateStudent(ctx, st)
	})
	if err != nil {
		return err
	}
	s.log.Info("student registered", zap.String("number", st.Number), zap.Uint("student_id", st.ID))
	return nil
}

func (s *Service) activeWithPayments(ctx context.Context) ([]models.Invoice, map[uint][]models.Payment, error) {
	invoices, err := s.store.ActiveInvoices(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load active invoices: %w", err)
	}
	ids := make([]uint, len(invoices))
	for i := range invoices {
		ids[i] = invoices[i].ID
	}
	byInvoice, err := s.store.PaymentsForInvoices(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load payments: %w", err)
	}
	return invoices, byInvoice, nil
}

func (s *Service) requireStudent(ctx context.Context, id uint) error {
	ok, err := s.store.StudentExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStudent, id)
	}
	return nil
}
