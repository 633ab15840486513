package models

import (
	"testing"
	"time"
)

func TestInvoiceStatus_IsOpen(t *testing.T) {
	tests := []struct {
		status InvoiceStatus
		open   bool
	}{
		{InvoiceStatusPending, true},
		{InvoiceStatusPartial, true},
		{InvoiceStatusOverdue, true},
		{InvoiceStatusPaid, false},
		{InvoiceStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsOpen(); got != tt.open {
				t.Errorf("IsOpen() = %v, want %v", got, tt.open)
			}
		})
	}
}

func TestInvoice_IsCancelled(t *testing.T) {
	now := time.Now()
	if (&Invoice{Status: InvoiceStatusPending}).IsCancelled() {
		t.Errorf("pending invoice reported cancelled")
	}
	if !(&Invoice{Status: InvoiceStatusPending, CancelledAt: &now}).IsCancelled() {
		t.Errorf("cancelledAt should make the invoice cancelled")
	}
	if !(&Invoice{Status: InvoiceStatusCancelled}).IsCancelled() {
		t.Errorf("CANCELLED status should make the invoice cancelled")
	}
}

func TestPaymentMethod_Valid(t *testing.T) {
	if !PaymentMobileMoney.Valid() {
		t.Errorf("MOBILE_MONEY should be valid")
	}
	if PaymentMethod("BARTER").Valid() {
		t.Errorf("BARTER should be invalid")
	}
}

func TestStudent_FullName(t *testing.T) {
	tests := []struct {
		name    string
		student Student
		want    string
	}{
		{"both", Student{FirstName: "Musu", LastName: "Kollie"}, "Musu Kollie"},
		{"first only", Student{FirstName: "Musu"}, "Musu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.student.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGradeBand_Contains(t *testing.T) {
	b := GradeBand{Label: "C4", LowerBound: 60, UpperBound: 64}
	for _, pct := range []float64{60, 62.5, 64} {
		if !b.Contains(pct) {
			t.Errorf("Contains(%v) = false, want true", pct)
		}
	}
	for _, pct := range []float64{59.99, 64.01} {
		if b.Contains(pct) {
			t.Errorf("Contains(%v) = true, want false", pct)
		}
	}
}

func TestWASSCEBands_CoverRange(t *testing.T) {
	bands := WASSCEBands()
	if len(bands) != 9 {
		t.Fatalf("expected 9 WASSCE bands got %d", len(bands))
	}
	if bands[0].UpperBound != 100 || bands[len(bands)-1].LowerBound != 0 {
		t.Fatalf("WASSCE table must span 0-100")
	}
}
