// Package colorscheme resolves the platform light/dark preference the engine
// uses to resolve auto-mode selections, and notifies subscribers when the
// platform flips.
package colorscheme

import (
	"sort"
	"sync"

	"github.com/bnema/lacquer/internal/application/port"
)

// sourceFallback indicates no detector provided the preference.
const sourceFallback = "fallback"

// callbackWrapper wraps a callback function to enable pointer comparison for
// removal.
type callbackWrapper struct {
	fn func(port.ColorSchemePreference)
}

// Resolver implements port.ColorSchemeResolver over a prioritized chain of
// detectors.
type Resolver struct {
	mu        sync.RWMutex
	detectors []port.ColorSchemeDetector
	current   port.ColorSchemePreference
	callbacks []*callbackWrapper
}

// NewResolver creates a resolver with no detectors registered.
func NewResolver() *Resolver {
	return &Resolver{
		detectors: make([]port.ColorSchemeDetector, 0),
		current: port.ColorSchemePreference{
			PrefersDark: true, // Until the first Resolve()
			Source:      sourceFallback,
		},
	}
}

// Resolve implements port.ColorSchemeResolver.
func (r *Resolver) Resolve() port.ColorSchemePreference {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked()
}

// resolveLocked queries detectors by priority. Caller holds at least a read
// lock.
func (r *Resolver) resolveLocked() port.ColorSchemePreference {
	sorted := make([]port.ColorSchemeDetector, len(r.detectors))
	copy(sorted, r.detectors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})

	for _, detector := range sorted {
		if !detector.Available() {
			continue
		}
		if prefersDark, ok := detector.Detect(); ok {
			return port.ColorSchemePreference{
				PrefersDark: prefersDark,
				Source:      detector.Name(),
			}
		}
	}

	// Dark is the fallback when every detector fails.
	return port.ColorSchemePreference{
		PrefersDark: true,
		Source:      sourceFallback,
	}
}

// RegisterDetector implements port.ColorSchemeResolver.
func (r *Resolver) RegisterDetector(detector port.ColorSchemeDetector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detectors = append(r.detectors, detector)
}

// Refresh implements port.ColorSchemeResolver. Callbacks run outside the
// lock and only when the preference actually flipped.
func (r *Resolver) Refresh() port.ColorSchemePreference {
	r.mu.Lock()
	newPref := r.resolveLocked()
	changed := newPref.PrefersDark != r.current.PrefersDark
	r.current = newPref

	var callbacks []*callbackWrapper
	if changed {
		callbacks = make([]*callbackWrapper, len(r.callbacks))
		copy(callbacks, r.callbacks)
	}
	r.mu.Unlock()

	for _, cb := range callbacks {
		cb.fn(newPref)
	}

	return newPref
}

// OnChange implements port.ColorSchemeResolver.
func (r *Resolver) OnChange(callback func(port.ColorSchemePreference)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	wrapper := &callbackWrapper{fn: callback}
	r.callbacks = append(r.callbacks, wrapper)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		for i, cb := range r.callbacks {
			if cb == wrapper {
				r.callbacks = append(r.callbacks[:i], r.callbacks[i+1:]...)
				return
			}
		}
	}
}
