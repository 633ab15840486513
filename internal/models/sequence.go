package models

import "time"

// SequenceKind names an identifier series.
type SequenceKind string

const (
	SequenceInvoice SequenceKind = "INVOICE"
	SequenceReceipt SequenceKind = "RECEIPT"
	SequenceStudent SequenceKind = "STUDENT"
)

// Sequence is the store-owned counter behind one (kind, scope) identifier series.
type Sequence struct {
	ID        uint         `gorm:"primaryKey"`
	Kind      SequenceKind `gorm:"size:20;not null;uniqueIndex:idx_sequence_kind_scope"`
	Scope     string       `gorm:"size:20;not null;uniqueIndex:idx_sequence_kind_scope"`
	LastValue int64        `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
