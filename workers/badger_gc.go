package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const gcInterval = 10 * time.Minute

// BadgerGCWorker reclaims value-log space on a timer. Badger does not do
// this on its own; without it the value log only ever grows.
type BadgerGCWorker struct {
	log *slog.Logger
	db  *badger.DB
}

func NewBadgerGCWorker(log *slog.Logger, db *badger.DB) *BadgerGCWorker {
	return &BadgerGCWorker{log: log, db: db}
}

func (w *BadgerGCWorker) Run(ctx context.Context) error {
	w.log.Info("Starting badger GC worker")
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// One file per call; loop until nothing is left to rewrite.
			for {
				err := w.db.RunValueLogGC(0.5)
				if errors.Is(err, badger.ErrNoRewrite) {
					break
				}
				if err != nil {
					w.log.Warn("Value log GC failed", "err", err)
					break
				}
				w.log.Debug("Value log file reclaimed")
			}
		}
	}
}
