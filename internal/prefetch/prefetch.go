// Package prefetch speculatively warms skin resources so switching to a
// popular skin appears instantaneous.
package prefetch

import (
	"context"
	"sync"

	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/fonts"
	"github.com/bnema/lacquer/internal/infrastructure/cache"
	"github.com/bnema/lacquer/internal/logging"
)

// VariableSource resolves a skin's variable set. Satisfied by the registry.
type VariableSource interface {
	Variables(ctx context.Context, id string) (entity.VariableSet, error)
}

// Pair is one (skin, mode) warming target.
type Pair struct {
	SkinID string
	Mode   entity.Mode
}

// Warmer resolves variable sets into the shared cache and kicks off font
// loads ahead of need. Warming is a pure optimization: failures are recorded
// internally and never surfaced. Warmed pairs are remembered for the process
// lifetime; the popular set is small and fixed, so nothing is evicted.
type Warmer struct {
	source VariableSource
	sets   *cache.LRU[string, entity.VariableSet]
	loader *fonts.Loader

	mu     sync.Mutex
	warmed map[Pair]bool // true = warmed ok, false = in-flight or failed
	wg     sync.WaitGroup
}

// NewWarmer creates a warmer sharing the engine's variable-set cache.
func NewWarmer(source VariableSource, sets *cache.LRU[string, entity.VariableSet], loader *fonts.Loader) *Warmer {
	return &Warmer{
		source: source,
		sets:   sets,
		loader: loader,
		warmed: make(map[Pair]bool),
	}
}

// Warm starts warming each pair not already warmed or in-flight and returns
// immediately.
func (w *Warmer) Warm(ctx context.Context, pairs []Pair) {
	for _, pair := range pairs {
		w.mu.Lock()
		if _, seen := w.warmed[pair]; seen {
			w.mu.Unlock()
			continue
		}
		w.warmed[pair] = false
		w.mu.Unlock()

		w.wg.Add(1)
		go func(pair Pair) {
			defer w.wg.Done()
			w.warmOne(ctx, pair)
		}(pair)
	}
}

func (w *Warmer) warmOne(ctx context.Context, pair Pair) {
	log := logging.FromContext(ctx)

	set, ok := w.sets.Get(pair.SkinID)
	if !ok {
		resolved, err := w.source.Variables(ctx, pair.SkinID)
		if err != nil {
			log.Debug().Err(err).Str("skin", pair.SkinID).Msg("prefetch skipped")
			return
		}
		set = resolved
		w.sets.Set(pair.SkinID, set)
	}

	if w.loader != nil {
		w.loader.LoadForVariableSet(ctx, set)
	}

	w.mu.Lock()
	w.warmed[pair] = true
	w.mu.Unlock()

	log.Debug().Str("skin", pair.SkinID).Str("mode", string(pair.Mode)).Msg("prefetch warmed")
}

// Warmed reports whether a pair completed warming successfully.
func (w *Warmer) Warmed(pair Pair) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.warmed[pair]
}

// Wait blocks until in-flight warming finishes. Used by tests and shutdown.
func (w *Warmer) Wait() {
	w.wg.Wait()
}
