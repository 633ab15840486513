package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-schools/internal/clock"
	"github.com/diewo77/go-schools/internal/models"
	"github.com/diewo77/go-schools/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		kind models.SequenceKind
		seq  int64
		want string
	}{
		{models.SequenceInvoice, 123, "INV2025000123"},
		{models.SequenceReceipt, 1, "REC2025000001"},
		{models.SequenceStudent, 42, "STU202500042"},
		{models.SequenceStudent, 1234567, "STU20251234567"},
	}
	for _, tt := range tests {
		got, err := FormatNumber(tt.kind, 2025, tt.seq)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := FormatNumber("VOUCHER", 2025, 1)
	assert.Error(t, err)
}

type flakySequencer struct {
	failures int
	err      error
	calls    int
	scopes   []string
}

func (f *flakySequencer) NextSequenceValue(_ context.Context, _ models.SequenceKind, scope string) (int64, error) {
	f.calls++
	f.scopes = append(f.scopes, scope)
	if f.calls <= f.failures {
		return 0, f.err
	}
	return int64(f.calls), nil
}

func testAllocator(seq Sequencer, retries int) *Allocator {
	a := NewAllocator(seq, clock.Fixed(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)), nil, retries)
	a.backoff = time.Millisecond
	return a
}

func TestAllocator_RetriesConflicts(t *testing.T) {
	seq := &flakySequencer{failures: 2, err: store.ErrConflict}
	got, err := testAllocator(seq, 5).Next(context.Background(), models.SequenceInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV2025000003", got)
	assert.Equal(t, 3, seq.calls)
	assert.Equal(t, []string{"2025", "2025", "2025"}, seq.scopes)
}

func TestAllocator_GivesUp(t *testing.T) {
	seq := &flakySequencer{failures: 100, err: store.ErrConflict}
	_, err := testAllocator(seq, 3).Next(context.Background(), models.SequenceReceipt)
	assert.ErrorIs(t, err, ErrAllocationConflict)
	assert.Equal(t, 3, seq.calls)
}

func TestAllocator_OtherErrorsAreNotRetried(t *testing.T) {
	boom := errors.New("disk full")
	seq := &flakySequencer{failures: 100, err: boom}
	_, err := testAllocator(seq, 5).Next(context.Background(), models.SequenceStudent)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, seq.calls)
}

func TestAllocator_HonoursContext(t *testing.T) {
	seq := &flakySequencer{failures: 100, err: store.ErrConflict}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testAllocator(seq, 5).Next(ctx, models.SequenceInvoice)
	assert.ErrorIs(t, err, context.Canceled)
}
