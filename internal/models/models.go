// Package models defines the persisted entities of the school ledger and gradebook.
package models

import "errors"

// ErrImmutable is returned by update hooks on append-only records.
var ErrImmutable = errors.New("record is immutable")

// All lists every model for migrations, in dependency order.
func All() []any {
	return []any{
		&Student{},
		&Subject{},
		&Term{},
		&AssessmentRecord{},
		&GradeScale{},
		&GradeBand{},
		&Invoice{},
		&Payment{},
		&Receipt{},
		&Sequence{},
	}
}
