package engine

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/domain/repository"
	"github.com/bnema/lacquer/internal/logging"
)

// selectionWriter persists the selection with a debounce window. It is a
// single pending-write slot, not a queue: a superseding selection replaces
// the slot without scheduling a second flush, so N selections inside the
// window produce exactly one write of the Nth value.
type selectionWriter struct {
	store  repository.StateStore
	window time.Duration

	mu      sync.Mutex
	pending *entity.Selection
	timer   *time.Timer
	ctx     context.Context
}

func newSelectionWriter(ctx context.Context, store repository.StateStore, window time.Duration) *selectionWriter {
	return &selectionWriter{
		store:  store,
		window: window,
		ctx:    ctx,
	}
}

// Schedule stores selection in the pending slot. The flush already scheduled
// for an earlier value picks up the newer one.
func (w *selectionWriter) Schedule(selection entity.Selection) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = &selection
	if w.timer == nil {
		w.timer = time.AfterFunc(w.window, w.flush)
	}
}

func (w *selectionWriter) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.timer = nil
	w.mu.Unlock()

	if pending == nil {
		return
	}
	w.write(*pending)
}

// Flush writes any pending selection immediately. Called on shutdown.
func (w *selectionWriter) Flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	if pending == nil {
		return
	}
	w.write(*pending)
}

func (w *selectionWriter) write(selection entity.Selection) {
	log := logging.FromContext(w.ctx)

	if err := w.store.SetValue(w.ctx, repository.KeySelectionSkin, selection.SkinID); err != nil {
		log.Warn().Err(err).Msg("could not persist selected skin")
		return
	}
	if err := w.store.SetValue(w.ctx, repository.KeySelectionMode, string(selection.Mode)); err != nil {
		log.Warn().Err(err).Msg("could not persist selected mode")
		return
	}
	log.Debug().
		Str("skin", selection.SkinID).
		Str("mode", string(selection.Mode)).
		Msg("selection persisted")
}
