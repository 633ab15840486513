package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-schools/internal/models"
	"github.com/diewo77/go-schools/internal/money"
	"github.com/shopspring/decimal"
)

// CurrencyBalance is one currency's position for a student.
// A negative Balance is credit held by the school.
type CurrencyBalance struct {
	TotalDue  decimal.Decimal `json:"total_due"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Balance   decimal.Decimal `json:"balance"`
}

// StudentBalance totals every non-cancelled invoice of a student.
type StudentBalance struct {
	StudentID    uint                               `json:"student_id"`
	Currencies   map[money.Currency]CurrencyBalance `json:"currencies"`
	OpenInvoices int                                `json:"open_invoices"`
}

// StudentBalance computes per-currency totals from invoices and payments.
// Cancelled invoices and their payments are left out.
func (s *Service) StudentBalance(ctx context.Context, studentID uint) (*StudentBalance, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}
	invoices, err := s.store.InvoicesForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}

	active := make([]models.Invoice, 0, len(invoices))
	ids := make([]uint, 0, len(invoices))
	for _, inv := range invoices {
		if inv.IsCancelled() {
			continue
		}
		active = append(active, inv)
		ids = append(ids, inv.ID)
	}
	byInvoice, err := s.store.PaymentsForInvoices(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}

	now := s.clock.Now()
	var due, paid money.Amounts
	open := 0
	for i := range active {
		inv := &active[i]
		sum := Summarize(inv, byInvoice[inv.ID])
		due = due.Add(sum.Due)
		paid = paid.Add(sum.Paid)
		if DeriveStatus(inv, byInvoice[inv.ID], now).IsOpen() {
			open++
		}
	}

	out := &StudentBalance{
		StudentID:    studentID,
		Currencies:   make(map[money.Currency]CurrencyBalance, len(money.Currencies)),
		OpenInvoices: open,
	}
	for _, c := range money.Currencies {
		out.Currencies[c] = CurrencyBalance{
			TotalDue:  due.Get(c),
			TotalPaid: paid.Get(c),
			Balance:   due.Get(c).Sub(paid.Get(c)),
		}
	}
	return out, nil
}

// ArrearsRow is one invoice that still has money owing.
type ArrearsRow struct {
	InvoiceID   uint                 `json:"invoice_id"`
	Number      string               `json:"number"`
	StudentID   uint                 `json:"student_id"`
	FeeType     models.FeeType       `json:"fee_type"`
	Status      models.InvoiceStatus `json:"status"`
	DueDate     time.Time            `json:"due_date"`
	DaysOverdue int                  `json:"days_overdue"`
	Summary     Summary              `json:"summary"`
}

// Arrears lists invoices with a positive balance and an open status, both
// recomputed from payments; the stored status is ignored. Rows are ordered by
// due date.
func (s *Service) Arrears(ctx context.Context) ([]ArrearsRow, error) {
	invoices, byInvoice, err := s.activeWithPayments(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	rows := make([]ArrearsRow, 0)
	for i := range invoices {
		inv := &invoices[i]
		payments := byInvoice[inv.ID]
		status := DeriveStatus(inv, payments, now)
		if !status.IsOpen() {
			continue
		}
		sum := Summarize(inv, payments)
		if !sum.Balance.AnyPositive() {
			continue
		}
		rows = append(rows, ArrearsRow{
			InvoiceID:   inv.ID,
			Number:      inv.Number,
			StudentID:   inv.StudentID,
			FeeType:     inv.FeeType,
			Status:      status,
			DueDate:     inv.DueDate,
			DaysOverdue: daysOverdue(inv.DueDate, now),
			Summary:     sum,
		})
	}
	return rows, nil
}

func daysOverdue(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due) / (24 * time.Hour))
}
