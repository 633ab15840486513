package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/diewo77/go-schools/internal/clock"
	"github.com/diewo77/go-schools/internal/models"
	"github.com/diewo77/go-schools/internal/store"
	"go.uber.org/zap"
)

type numberFormat struct {
	prefix string
	digits int
}

var numberFormats = map[models.SequenceKind]numberFormat{
	models.SequenceInvoice: {prefix: "INV", digits: 6},
	models.SequenceReceipt: {prefix: "REC", digits: 6},
	models.SequenceStudent: {prefix: "STU", digits: 5},
}

// FormatNumber renders a sequence value as <PREFIX><year><zero-padded seq>,
// e.g. INV2025000123.
func FormatNumber(kind models.SequenceKind, year int, seq int64) (string, error) {
	f, ok := numberFormats[kind]
	if !ok {
		return "", fmt.Errorf("unknown sequence kind %q", kind)
	}
	return fmt.Sprintf("%s%d%0*d", f.prefix, year, f.digits, seq), nil
}

// Sequencer is the store-side counter used by the Allocator.
type Sequencer interface {
	NextSequenceValue(ctx context.Context, kind models.SequenceKind, scope string) (int64, error)
}

// Allocator hands out human-readable sequential numbers scoped by year.
type Allocator struct {
	seq     Sequencer
	clock   clock.Clock
	log     *zap.Logger
	retries int
	backoff time.Duration
}

const defaultAllocationRetries = 5

func NewAllocator(seq Sequencer, c clock.Clock, log *zap.Logger, retries int) *Allocator {
	if retries <= 0 {
		retries = defaultAllocationRetries
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Allocator{seq: seq, clock: c, log: log, retries: retries, backoff: 20 * time.Millisecond}
}

// Next allocates the next number of kind for the current year. Conflicts
// reported by the store are retried with a growing pause.
func (a *Allocator) Next(ctx context.Context, kind models.SequenceKind) (string, error) {
	if _, ok := numberFormats[kind]; !ok {
		return "", fmt.Errorf("unknown sequence kind %q", kind)
	}
	year := a.clock.Now().Year()
	scope := strconv.Itoa(year)

	var lastErr error
	for attempt := 0; attempt < a.retries; attempt++ {
		v, err := a.seq.NextSequenceValue(ctx, kind, scope)
		if err == nil {
			return FormatNumber(kind, year, v)
		}
		if !errors.Is(err, store.ErrConflict) {
			return "", fmt.Errorf("allocate %s number: %w", kind, err)
		}
		lastErr = err
		a.log.Debug("sequence conflict, retrying",
			zap.String("kind", string(kind)), zap.Int("attempt", attempt+1), zap.Error(err))

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(a.backoff * time.Duration(attempt+1)):
		}
	}
	return "", fmt.Errorf("%w: %s after %d attempts: %v", ErrAllocationConflict, kind, a.retries, lastErr)
}
