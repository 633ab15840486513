package models

import (
	"time"

	"github.com/diewo77/go-schools/internal/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus represents the lifecycle status of an invoice.
// It is derived from the payment history; callers only ever set Cancelled.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsOpen reports whether the status still expects money.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPartial || s == InvoiceStatusOverdue
}

// FeeType classifies what an invoice bills for.
type FeeType string

const (
	FeeTuition      FeeType = "TUITION"
	FeeRegistration FeeType = "REGISTRATION"
	FeeExam         FeeType = "EXAM"
	FeeLibrary      FeeType = "LIBRARY"
	FeeSports       FeeType = "SPORTS"
	FeeTransport    FeeType = "TRANSPORT"
	FeeUniform      FeeType = "UNIFORM"
	FeeOther        FeeType = "OTHER"
)

// Invoice is a billed amount owed by a student, tracked separately in LRD and USD.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Number is allocated once and never changes (e.g. INV2025000123).
	Number string `gorm:"size:50;uniqueIndex;not null" json:"number"`

	StudentID uint     `gorm:"index;not null" json:"student_id"`
	Student   *Student `gorm:"foreignKey:StudentID" json:"-"`

	FeeType     FeeType `gorm:"size:20;default:'TUITION'" json:"fee_type"`
	Description string  `gorm:"size:500" json:"description,omitempty"`

	AmountDueLRD decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"amount_due_lrd"`
	AmountDueUSD decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"amount_due_usd"`

	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	DueDate   time.Time `gorm:"not null;index" json:"due_date"`

	// Status is a stored snapshot of the derived status; readers that need
	// the truth recompute it from payments.
	Status      InvoiceStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
}

// AmountDue returns the per-currency amount billed.
func (i *Invoice) AmountDue() money.Amounts {
	return money.Amounts{LRD: i.AmountDueLRD, USD: i.AmountDueUSD}
}

// IsCancelled reports whether the invoice was explicitly cancelled.
func (i *Invoice) IsCancelled() bool {
	return i.CancelledAt != nil || i.Status == InvoiceStatusCancelled
}

// PaymentMethod is how money was received.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentCheque       PaymentMethod = "CHEQUE"
)

// Valid reports whether m is a known method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentMobileMoney, PaymentCheque:
		return true
	}
	return false
}

// Payment is money received against an invoice. Rows are never edited or deleted.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`

	AmountLRD decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"amount_lrd"`
	AmountUSD decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"amount_usd"`

	Method    PaymentMethod `gorm:"size:20;not null" json:"method"`
	Reference string        `gorm:"size:100" json:"reference,omitempty"`
	PaidAt    time.Time     `gorm:"not null" json:"paid_at"`
}

// Amounts returns the per-currency amount received.
func (p *Payment) Amounts() money.Amounts {
	return money.Amounts{LRD: p.AmountLRD, USD: p.AmountUSD}
}

// BeforeUpdate keeps payments immutable.
func (p *Payment) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutable
}

// Receipt is the proof-of-payment document issued for exactly one payment.
type Receipt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Number    string `gorm:"size:50;uniqueIndex;not null" json:"number"`
	PaymentID uint   `gorm:"uniqueIndex;not null" json:"payment_id"`
	InvoiceID uint   `gorm:"index;not null" json:"invoice_id"`

	AmountLRD decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"amount_lrd"`
	AmountUSD decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"amount_usd"`
}

// BeforeUpdate keeps receipts immutable.
func (r *Receipt) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutable
}
