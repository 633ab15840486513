// Package store is the gorm-backed data store behind the grade engine and the
// fee ledger.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict covers unique violations, serialization failures and
	// deadlocks; the operation may succeed if retried.
	ErrConflict = errors.New("conflict")
)

// Store implements the engines' data interfaces on top of gorm.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

type txKey struct{}

// conn returns the transaction carried by ctx, or the root handle.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

// WithinTransaction runs fn in a transaction. Store calls made with the ctx
// passed to fn join it; a nested call opens a savepoint.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil && !isSentinel(err) {
		return classify(err)
	}
	return err
}

func isSentinel(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}

// classify maps driver errors onto ErrNotFound and ErrConflict.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", // unique_violation
			"40001", // serialization_failure
			"40P01": // deadlock_detected
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return err
	}
	// sqlite errors are matched by message to keep cgo driver types out of this package.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "unique constraint failed") {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
