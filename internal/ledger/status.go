package ledger

import (
	"time"

	"github.com/diewo77/go-schools/internal/models"
	"github.com/diewo77/go-schools/internal/money"
)

// Summary is the money position of one invoice.
type Summary struct {
	Due     money.Amounts `json:"due"`
	Paid    money.Amounts `json:"paid"`
	Balance money.Amounts `json:"balance"`
}

// Summarize totals payments against the invoice. Currencies are never mixed.
func Summarize(inv *models.Invoice, payments []models.Payment) Summary {
	var paid money.Amounts
	for i := range payments {
		paid = paid.Add(payments[i].Amounts())
	}
	due := inv.AmountDue()
	return Summary{Due: due, Paid: paid, Balance: due.Sub(paid)}
}

// DeriveStatus computes an invoice status from its payment history.
//
// Rules apply in order: a cancelled invoice stays CANCELLED; PAID when every
// currency billed is fully paid in that currency; PARTIAL when anything was
// paid; OVERDUE when nothing was paid and now is past the due date; PENDING
// otherwise.
func DeriveStatus(inv *models.Invoice, payments []models.Payment, now time.Time) models.InvoiceStatus {
	if inv.IsCancelled() {
		return models.InvoiceStatusCancelled
	}
	s := Summarize(inv, payments)
	switch {
	case s.Paid.Covers(s.Due):
		return models.InvoiceStatusPaid
	case s.Paid.AnyPositive():
		return models.InvoiceStatusPartial
	case now.After(inv.DueDate):
		return models.InvoiceStatusOverdue
	default:
		return models.InvoiceStatusPending
	}
}
