package ledger

import (
	"testing"
	"time"

	"github.com/diewo77/go-schools/internal/models"
	"github.com/diewo77/go-schools/internal/money"
	"github.com/stretchr/testify/assert"
)

var (
	dueDate   = time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	beforeDue = dueDate.AddDate(0, 0, -5)
	afterDue  = dueDate.AddDate(0, 0, 5)
)

func invoice(lrd, usd float64) *models.Invoice {
	a := money.New(lrd, usd)
	return &models.Invoice{AmountDueLRD: a.LRD, AmountDueUSD: a.USD, DueDate: dueDate, Status: models.InvoiceStatusPending}
}

func payment(lrd, usd float64) models.Payment {
	a := money.New(lrd, usd)
	return models.Payment{AmountLRD: a.LRD, AmountUSD: a.USD, Method: models.PaymentCash}
}

func TestDeriveStatus(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		inv      *models.Invoice
		payments []models.Payment
		now      time.Time
		want     models.InvoiceStatus
	}{
		{"unpaid before due", invoice(1000, 0), nil, beforeDue, models.InvoiceStatusPending},
		{"unpaid on due date", invoice(1000, 0), nil, dueDate, models.InvoiceStatusPending},
		{"unpaid after due", invoice(1000, 0), nil, afterDue, models.InvoiceStatusOverdue},
		{"part paid before due", invoice(1000, 0), []models.Payment{payment(400, 0)}, beforeDue, models.InvoiceStatusPartial},
		{"part paid after due stays partial", invoice(1000, 0), []models.Payment{payment(400, 0)}, afterDue, models.InvoiceStatusPartial},
		{"paid in full", invoice(1000, 0), []models.Payment{payment(1000, 0)}, afterDue, models.InvoiceStatusPaid},
		{"paid in instalments", invoice(1000, 0), []models.Payment{payment(600, 0), payment(400, 0)}, beforeDue, models.InvoiceStatusPaid},
		{"overpaid", invoice(1000, 0), []models.Payment{payment(1200, 0)}, beforeDue, models.InvoiceStatusPaid},
		{"two currencies half paid", invoice(1000, 50), []models.Payment{payment(1000, 0)}, afterDue, models.InvoiceStatusPartial},
		{"two currencies paid", invoice(1000, 50), []models.Payment{payment(1000, 0), payment(0, 50)}, afterDue, models.InvoiceStatusPaid},
		{"usd does not settle lrd", invoice(1000, 0), []models.Payment{payment(0, 1000)}, afterDue, models.InvoiceStatusPartial},
		{"cancelled is sticky", &models.Invoice{AmountDueLRD: money.New(1000, 0).LRD, DueDate: dueDate, CancelledAt: &now}, []models.Payment{payment(1000, 0)}, afterDue, models.InvoiceStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.inv, tt.payments, tt.now))
		})
	}
}

func TestDeriveStatus_Deterministic(t *testing.T) {
	inv := invoice(1000, 25)
	payments := []models.Payment{payment(250, 5), payment(250, 0)}
	first := DeriveStatus(inv, payments, afterDue)
	for i := 0; i < 100; i++ {
		if got := DeriveStatus(inv, payments, afterDue); got != first {
			t.Fatalf("run %d: got %s want %s", i, got, first)
		}
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(invoice(1000, 50), []models.Payment{payment(300, 0), payment(200, 20)})
	assert.Equal(t, "500.00", sum.Paid.LRD.StringFixed(2))
	assert.Equal(t, "500.00", sum.Balance.LRD.StringFixed(2))
	assert.Equal(t, "30.00", sum.Balance.USD.StringFixed(2))
}
