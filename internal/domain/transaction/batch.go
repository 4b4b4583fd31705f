package transaction

import (
	"context"
	"fmt"
	"log/slog"
)

// BatchSize is the number of rows sent per insert call.
const BatchSize = 200

// BatchError reports the batch that the store rejected. Batches before it
// stay committed.
type BatchError struct {
	Batch     int // 1-based
	Committed int // rows stored by earlier batches
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d failed (%d rows already stored): %v", e.Batch, e.Committed, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// BatchRecorder observes every insert call.
type BatchRecorder interface {
	RecordBatch(ok bool)
}

// BatchInserter writes transactions in fixed-size chunks, one call at a time.
type BatchInserter struct {
	store    Store
	size     int
	recorder BatchRecorder
	logger   *slog.Logger
}

// BatchOption configures a BatchInserter
type BatchOption func(*BatchInserter)

// WithBatchSize overrides BatchSize.
func WithBatchSize(n int) BatchOption {
	return func(b *BatchInserter) {
		if n > 0 {
			b.size = n
		}
	}
}

// WithBatchRecorder reports each batch outcome to r.
func WithBatchRecorder(r BatchRecorder) BatchOption {
	return func(b *BatchInserter) { b.recorder = r }
}

// NewBatchInserter creates a new batch inserter
func NewBatchInserter(store Store, logger *slog.Logger, opts ...BatchOption) *BatchInserter {
	b := &BatchInserter{store: store, size: BatchSize, logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Insert stores txs in order, in chunks of at most the batch size. It stops at
// the first rejected chunk and returns 0 with a *BatchError. There is no
// rollback of the chunks already stored.
func (b *BatchInserter) Insert(ctx context.Context, txs []NewTransaction) (int, error) {
	inserted := 0
	for start, batch := 0, 1; start < len(txs); start, batch = start+b.size, batch+1 {
		end := min(start+b.size, len(txs))

		err := b.store.InsertTransactions(ctx, txs[start:end])
		if b.recorder != nil {
			b.recorder.RecordBatch(err == nil)
		}
		if err != nil {
			b.logger.Error("transaction batch rejected",
				slog.Int("batch", batch),
				slog.Int("committed", inserted),
				slog.Any("error", err),
			)
			return 0, &BatchError{Batch: batch, Committed: inserted, Err: err}
		}

		inserted += end - start
		b.logger.Debug("transaction batch stored",
			slog.Int("batch", batch),
			slog.Int("rows", end-start),
		)
	}
	return inserted, nil
}
