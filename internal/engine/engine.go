// Package engine owns the current skin selection: resolving it against the
// platform preference, applying it to the surface, and persisting it.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/lacquer/internal/application/port"
	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/domain/repository"
	"github.com/bnema/lacquer/internal/fonts"
	"github.com/bnema/lacquer/internal/infrastructure/cache"
	"github.com/bnema/lacquer/internal/logging"
	"github.com/bnema/lacquer/internal/prefetch"
	"github.com/bnema/lacquer/internal/registry"
)

// State is the engine lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

// ErrResourceUnavailable marks a skin whose variable set could not be
// fetched or applied.
var ErrResourceUnavailable = errors.New("skin resources unavailable")

// ApplyError reports which skin failed to apply. The engine has already
// reverted to the default skin by the time the caller sees it.
type ApplyError struct {
	SkinID string
	Err    error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply skin %q: %v", e.SkinID, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// Options wires the engine's collaborators. Everything is passed explicitly;
// there are no ambient lookups.
type Options struct {
	Registry *registry.Registry
	Store    repository.StateStore
	Resolver port.ColorSchemeResolver
	Surface  port.Surface
	Loader   *fonts.Loader

	// DebounceWindow coalesces selection writes; zero means write on the
	// next timer tick.
	DebounceWindow time.Duration
	// PopularSkins are warmed in both modes after init.
	PopularSkins []string
}

// Engine is the switching engine. One per process.
type Engine struct {
	registry *registry.Registry
	store    repository.StateStore
	resolver port.ColorSchemeResolver
	surface  port.Surface
	loader   *fonts.Loader
	popular  []string
	window   time.Duration

	sets   *cache.LRU[string, entity.VariableSet]
	warmer *prefetch.Warmer
	writer *selectionWriter

	mu        sync.RWMutex
	state     State
	selection entity.Selection
	override  entity.FontOverride

	// applyToken orders applications: a late-finishing apply whose token is
	// no longer the newest skips its visible commit, so an out-of-order
	// apply can never overwrite a newer selection.
	applyToken  atomic.Uint64
	unsubscribe func()
}

// New creates an uninitialized engine.
func New(opts Options) *Engine {
	sets := cache.NewLRU[string, entity.VariableSet](16)
	return &Engine{
		registry: opts.Registry,
		store:    opts.Store,
		resolver: opts.Resolver,
		surface:  opts.Surface,
		loader:   opts.Loader,
		popular:  opts.PopularSkins,
		window:   opts.DebounceWindow,
		sets:     sets,
		warmer:   prefetch.NewWarmer(opts.Registry, sets, opts.Loader),
	}
}

// Init loads the persisted selection (defaulting when absent or no longer
// resolvable), applies it, then starts non-blocking prefetch of the popular
// set and subscribes to the platform signal. Failures fall back to the
// default skin without error; only an unavailable default skin is fatal.
func (e *Engine) Init(ctx context.Context) error {
	log := logging.FromContext(ctx)

	e.mu.Lock()
	if e.state != StateUninitialized {
		e.mu.Unlock()
		return errors.New("engine: already initialized")
	}
	e.state = StateInitializing
	e.mu.Unlock()

	e.writer = newSelectionWriter(ctx, e.store, e.window)

	selection := e.loadSelection(ctx)
	override := e.loadOverride(ctx)

	e.mu.Lock()
	e.selection = selection
	e.override = override
	e.mu.Unlock()

	if err := e.apply(ctx, selection, e.applyToken.Add(1)); err != nil {
		if selection.SkinID == entity.DefaultSkinID {
			return fmt.Errorf("default skin unavailable: %w", err)
		}
		log.Warn().Err(err).Str("skin", selection.SkinID).Msg("persisted skin unavailable, falling back to default")

		selection = entity.DefaultSelection()
		e.mu.Lock()
		e.selection = selection
		e.mu.Unlock()
		e.writer.Schedule(selection)

		if err := e.apply(ctx, selection, e.applyToken.Add(1)); err != nil {
			return fmt.Errorf("default skin unavailable: %w", err)
		}
	}

	e.mu.Lock()
	e.state = StateReady
	e.mu.Unlock()

	e.warmer.Warm(ctx, e.popularPairs())
	e.unsubscribe = e.resolver.OnChange(func(pref port.ColorSchemePreference) {
		e.onPlatformChange(ctx, pref)
	})

	log.Debug().
		Str("skin", selection.SkinID).
		Str("mode", string(selection.Mode)).
		Msg("switching engine ready")
	return nil
}

// Select switches to the given skin and mode. An empty mode keeps the
// current one. Identical (skin, mode) pairs are a no-op. The in-memory
// selection updates before any I/O; persistence is debounced; a fetch or
// apply failure reverts to the default skin and returns an ApplyError
// carrying the failing id.
func (e *Engine) Select(ctx context.Context, skinID string, mode entity.Mode) error {
	e.requireReady()

	e.mu.Lock()
	if mode == "" {
		mode = e.selection.Mode
	}
	if !mode.Valid() {
		e.mu.Unlock()
		return fmt.Errorf("invalid mode %q", mode)
	}
	target := entity.Selection{SkinID: skinID, Mode: mode}
	if e.selection == target {
		e.mu.Unlock()
		return nil
	}
	e.selection = target
	e.mu.Unlock()

	e.writer.Schedule(target)

	if err := e.apply(ctx, target, e.applyToken.Add(1)); err != nil {
		e.revertToDefault(ctx, target, mode)
		return &ApplyError{SkinID: skinID, Err: err}
	}
	return nil
}

// revertToDefault restores the default skin after a failed switch, unless a
// newer selection already superseded the failed one.
func (e *Engine) revertToDefault(ctx context.Context, failed entity.Selection, mode entity.Mode) {
	log := logging.FromContext(ctx)

	fallback := entity.Selection{SkinID: entity.DefaultSkinID, Mode: mode}

	e.mu.Lock()
	if e.selection != failed {
		e.mu.Unlock()
		return
	}
	e.selection = fallback
	e.mu.Unlock()

	e.writer.Schedule(fallback)
	if err := e.apply(ctx, fallback, e.applyToken.Add(1)); err != nil {
		log.Error().Err(err).Msg("default skin failed to apply after fallback")
	}
}

// Selection returns the last requested selection. Concurrent readers see the
// new target as soon as Select has accepted it, before application finishes.
func (e *Engine) Selection() entity.Selection {
	e.requireReady()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selection
}

// ResolvedMode resolves the current selection's mode against the live
// platform signal.
func (e *Engine) ResolvedMode() entity.Mode {
	return e.Selection().Mode.Resolve(e.resolver.Resolve().PrefersDark)
}

// FontOverride returns the persisted font override.
func (e *Engine) FontOverride() entity.FontOverride {
	e.requireReady()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.override
}

// SetFontOverride persists the override immediately (it changes rarely, so
// no debounce) and re-applies the current selection.
func (e *Engine) SetFontOverride(ctx context.Context, override entity.FontOverride) error {
	e.requireReady()

	encoded, err := json.Marshal(override)
	if err != nil {
		return fmt.Errorf("encode font override: %w", err)
	}
	if err := e.store.SetValue(ctx, repository.KeyFontOverride, string(encoded)); err != nil {
		return fmt.Errorf("persist font override: %w", err)
	}

	e.mu.Lock()
	e.override = override
	current := e.selection
	e.mu.Unlock()

	return e.apply(ctx, current, e.applyToken.Add(1))
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Close unsubscribes from the platform signal, flushes any pending
// selection write, and waits for in-flight prefetch.
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
	if e.writer != nil {
		e.writer.Flush()
	}
	e.warmer.Wait()
}

// apply fetches (or reuses) the variable set for sel, decorates it with
// fonts and the radius token, and commits it to the surface unless a newer
// application superseded this token.
func (e *Engine) apply(ctx context.Context, sel entity.Selection, token uint64) error {
	skin, ok := e.registry.Get(sel.SkinID)
	if !ok {
		return fmt.Errorf("%w: unknown skin %q", ErrResourceUnavailable, sel.SkinID)
	}

	resolved := sel.Mode.Resolve(e.resolver.Resolve().PrefersDark)

	set, cached := e.sets.Get(sel.SkinID)
	if !cached {
		fetched, err := e.registry.Variables(ctx, sel.SkinID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
		}
		set = fetched
		e.sets.Set(sel.SkinID, set)
	}

	vars := set.ForMode(resolved)
	e.decorate(vars, skin)

	// Variables absent from the new set are not cleared from the surface;
	// skins ship complete sets.
	if token != e.applyToken.Load() {
		return nil
	}
	if err := e.surface.ApplyVariables(ctx, vars); err != nil {
		return fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	e.surface.SetAppliedSkin(skin.ID, resolved)

	go e.loadFonts(ctx, skin, set)
	return nil
}

// decorate adds the font stacks and radius token to the applied variables.
func (e *Engine) decorate(vars map[string]string, skin *entity.Skin) {
	e.mu.RLock()
	override := e.override
	e.mu.RUnlock()

	for _, role := range []entity.FontRole{entity.FontRoleSans, entity.FontRoleSerif, entity.FontRoleMono} {
		id := skin.Fonts.ForRole(role)
		if override.Enabled {
			if overrideID, ok := override.Assignment[role]; ok && overrideID != "" {
				id = overrideID
			}
		}
		if choice, ok := fonts.Lookup(id); ok {
			vars[fonts.RoleVariable(role)] = choice.Stack
		}
	}

	if skin.Radius != "" {
		vars["--radius"] = skin.Radius
	}
}

// loadFonts triggers non-fatal font loading for an applied skin.
func (e *Engine) loadFonts(ctx context.Context, skin *entity.Skin, set entity.VariableSet) {
	if e.loader == nil {
		return
	}

	e.mu.RLock()
	override := e.override
	e.mu.RUnlock()

	for _, role := range []entity.FontRole{entity.FontRoleSans, entity.FontRoleSerif, entity.FontRoleMono} {
		id := skin.Fonts.ForRole(role)
		if override.Enabled {
			if overrideID, ok := override.Assignment[role]; ok && overrideID != "" {
				id = overrideID
			}
		}
		if choice, ok := fonts.Lookup(id); ok {
			e.loader.LoadChoice(ctx, choice)
		}
	}

	e.loader.LoadForVariableSet(ctx, set)
}

// onPlatformChange re-resolves auto selections when the platform preference
// flips. Re-apply only: the stored selection is still auto, so there is
// nothing new to persist.
func (e *Engine) onPlatformChange(ctx context.Context, pref port.ColorSchemePreference) {
	e.mu.RLock()
	current := e.selection
	ready := e.state == StateReady
	e.mu.RUnlock()

	if !ready || current.Mode != entity.ModeAuto {
		return
	}

	logging.FromContext(ctx).Debug().
		Bool("prefers_dark", pref.PrefersDark).
		Msg("platform preference changed, re-applying auto selection")

	token := e.applyToken.Add(1)
	go func() {
		if err := e.apply(ctx, current, token); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("re-apply after platform change failed")
		}
	}()
}

// loadSelection reads the persisted selection, defaulting when absent,
// invalid, or pointing at a skin the registry no longer has.
func (e *Engine) loadSelection(ctx context.Context) entity.Selection {
	log := logging.FromContext(ctx)
	selection := entity.DefaultSelection()

	skinID, ok, err := e.store.GetValue(ctx, repository.KeySelectionSkin)
	if err != nil {
		log.Warn().Err(err).Msg("could not read persisted selection")
		return selection
	}
	if ok && skinID != "" {
		selection.SkinID = skinID
	}

	mode, ok, err := e.store.GetValue(ctx, repository.KeySelectionMode)
	if err == nil && ok && entity.Mode(mode).Valid() {
		selection.Mode = entity.Mode(mode)
	}

	if _, exists := e.registry.Get(selection.SkinID); !exists {
		log.Warn().Str("skin", selection.SkinID).Msg("persisted skin not in registry, using default")
		return entity.DefaultSelection()
	}
	return selection
}

func (e *Engine) loadOverride(ctx context.Context) entity.FontOverride {
	raw, ok, err := e.store.GetValue(ctx, repository.KeyFontOverride)
	if err != nil || !ok {
		return entity.FontOverride{}
	}
	var override entity.FontOverride
	if err := json.Unmarshal([]byte(raw), &override); err != nil {
		return entity.FontOverride{}
	}
	return override
}

func (e *Engine) popularPairs() []prefetch.Pair {
	pairs := make([]prefetch.Pair, 0, len(e.popular)*2)
	for _, id := range e.popular {
		pairs = append(pairs,
			prefetch.Pair{SkinID: id, Mode: entity.ModeLight},
			prefetch.Pair{SkinID: id, Mode: entity.ModeDark},
		)
	}
	return pairs
}

// requireReady guards API calls against use before Init.
func (e *Engine) requireReady() {
	e.mu.RLock()
	ready := e.state == StateReady
	e.mu.RUnlock()
	if !ready {
		panic("engine: used before Init")
	}
}
