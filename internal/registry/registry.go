// Package registry merges built-in and runtime-installed skins into one
// addressable set and owns install/uninstall.
package registry

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/domain/repository"
	"github.com/bnema/lacquer/internal/fonts"
	"github.com/bnema/lacquer/internal/logging"
)

var (
	// ErrNotFound is returned for unknown skin ids.
	ErrNotFound = errors.New("skin not found")
	// ErrBuiltIn is returned when uninstalling a built-in skin.
	ErrBuiltIn = errors.New("built-in skins cannot be uninstalled")
	// ErrInvalidInstallData is returned when install input fails shape
	// validation. No partial state is committed.
	ErrInvalidInstallData = errors.New("invalid install data")
)

// Registry is the unified, mutable catalog of all skins. It exclusively owns
// the merged map; installed skins shadow built-in ones on id collision.
type Registry struct {
	store        repository.SkinRecordStore
	manifestPath string

	mu      sync.RWMutex
	ready   bool
	skins   map[string]*entity.Skin
	handles map[string]entity.VariableSet // process-local, regenerated per run
}

// New creates an uninitialized registry. manifestPath optionally overrides
// the embedded built-in manifest.
func New(store repository.SkinRecordStore, manifestPath string) *Registry {
	return &Registry{
		store:        store,
		manifestPath: manifestPath,
		skins:        make(map[string]*entity.Skin),
		handles:      make(map[string]entity.VariableSet),
	}
}

// Init loads the built-in manifest and persisted installed skins and merges
// them. Manifest failure is best-effort (empty built-in set); storage
// failure is best-effort as well, so a degraded medium still yields the
// built-ins.
func (r *Registry) Init(ctx context.Context) error {
	log := logging.FromContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	builtIns, err := loadManifest(r.manifestPath)
	if err != nil {
		log.Warn().Err(err).Msg("built-in manifest unavailable, starting with empty built-in set")
	}
	for _, skin := range builtIns {
		r.skins[skin.ID] = skin
	}

	records, err := r.store.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not load installed skins")
	}
	for _, record := range records {
		if !record.Installed {
			continue
		}
		skin, set, err := r.rebuild(record)
		if err != nil {
			log.Warn().Err(err).Str("skin", record.ID).Msg("skipping unreadable installed skin")
			continue
		}
		r.skins[skin.ID] = skin
		r.handles[skin.Sources[entity.ModeLight]] = set
	}

	r.ready = true
	log.Debug().
		Int("built_in", len(builtIns)).
		Int("total", len(r.skins)).
		Msg("skin registry initialized")
	return nil
}

// rebuild synthesizes a skin from its persisted raw data. Handles are a pure
// function of the raw bytes, so every rebuild of the same record yields the
// same handle.
func (r *Registry) rebuild(record entity.SkinRecord) (*entity.Skin, entity.VariableSet, error) {
	doc, err := parseInstallData(record.RawVars)
	if err != nil {
		return nil, entity.VariableSet{}, err
	}
	skin := synthesize(doc, record.OriginURL)
	return skin, doc.CSSVars, nil
}

// synthesize builds the in-memory skin for an install document. Both modes
// share one generated handle; the mode partition is picked at resolve time.
func synthesize(doc *installDoc, originURL string) *entity.Skin {
	handle := dataHandle(doc.ID, doc)

	label := doc.Label
	if label == "" {
		label = doc.ID
	}

	assignment := fonts.DefaultAssignment()
	if doc.Fonts != nil {
		assignment = entity.FontAssignment{Sans: doc.Fonts.Sans, Serif: doc.Fonts.Serif, Mono: doc.Fonts.Mono}
	}

	var swatch entity.Swatch
	if doc.Swatch != nil {
		swatch = *doc.Swatch
	}

	return &entity.Skin{
		ID:     doc.ID,
		Label:  label,
		Origin: entity.OriginInstalled,
		Sources: map[entity.Mode]string{
			entity.ModeLight: handle,
			entity.ModeDark:  handle,
		},
		Fonts:     assignment,
		Swatch:    swatch,
		Radius:    doc.Radius,
		SourceURL: originURL,
	}
}

// dataHandle derives the transient process-local source handle for installed
// variable data. Never persisted.
func dataHandle(id string, doc *installDoc) string {
	h := fnv.New64a()
	writeMap := func(m map[string]string) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.Write([]byte(k))
			h.Write([]byte{0})
			h.Write([]byte(m[k]))
			h.Write([]byte{0})
		}
	}
	writeMap(doc.CSSVars.Global)
	writeMap(doc.CSSVars.Light)
	writeMap(doc.CSSVars.Dark)
	return fmt.Sprintf("lacquer-data:%s@%x", id, h.Sum64())
}

// Install validates data, persists it, and inserts the synthesized skin into
// the merged map, overwriting any previous skin with the same id.
func (r *Registry) Install(ctx context.Context, data []byte, originURL string) (*entity.Skin, error) {
	r.requireReady()
	log := logging.FromContext(ctx)

	doc, err := parseInstallData(data)
	if err != nil {
		return nil, err
	}

	record := entity.SkinRecord{
		ID:         doc.ID,
		OriginURL:  originURL,
		RawVars:    data,
		Installed:  true,
		InsertedAt: time.Now(),
	}
	if err := r.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("persist skin %q: %w", doc.ID, err)
	}

	skin := synthesize(doc, originURL)

	r.mu.Lock()
	r.skins[skin.ID] = skin
	r.handles[skin.Sources[entity.ModeLight]] = doc.CSSVars
	r.mu.Unlock()

	log.Info().Str("skin", skin.ID).Str("origin", originURL).Msg("skin installed")
	return skin, nil
}

// Uninstall removes an installed skin from storage and the merged map.
// Built-in ids are rejected; repeating an uninstall reports ErrNotFound
// without other effect.
func (r *Registry) Uninstall(ctx context.Context, id string) error {
	r.requireReady()
	log := logging.FromContext(ctx)

	r.mu.Lock()
	skin, ok := r.skins[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("uninstall %q: %w", id, ErrNotFound)
	}
	if skin.BuiltIn() {
		r.mu.Unlock()
		return fmt.Errorf("uninstall %q: %w", id, ErrBuiltIn)
	}
	r.mu.Unlock()

	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("uninstall %q: %w", id, err)
	}

	r.mu.Lock()
	delete(r.handles, skin.Sources[entity.ModeLight])
	delete(r.skins, id)
	r.mu.Unlock()

	log.Info().Str("skin", id).Msg("skin uninstalled")
	return nil
}

// Get returns the skin for id.
func (r *Registry) Get(id string) (*entity.Skin, bool) {
	r.requireReady()
	r.mu.RLock()
	defer r.mu.RUnlock()
	skin, ok := r.skins[id]
	return skin, ok
}

// List returns all skins sorted by label, built-ins first.
func (r *Registry) List() []*entity.Skin {
	r.requireReady()
	r.mu.RLock()
	defer r.mu.RUnlock()

	skins := make([]*entity.Skin, 0, len(r.skins))
	for _, skin := range r.skins {
		skins = append(skins, skin)
	}
	sort.Slice(skins, func(i, j int) bool {
		if skins[i].BuiltIn() != skins[j].BuiltIn() {
			return skins[i].BuiltIn()
		}
		return skins[i].Label < skins[j].Label
	})
	return skins
}

// Variables resolves the full variable set for a skin: embedded sheets for
// built-ins, the process-local handle for installed skins.
func (r *Registry) Variables(_ context.Context, id string) (entity.VariableSet, error) {
	r.requireReady()

	r.mu.RLock()
	skin, ok := r.skins[id]
	if !ok {
		r.mu.RUnlock()
		return entity.VariableSet{}, fmt.Errorf("variables for %q: %w", id, ErrNotFound)
	}
	if !skin.BuiltIn() {
		set, ok := r.handles[skin.Sources[entity.ModeLight]]
		r.mu.RUnlock()
		if !ok {
			return entity.VariableSet{}, fmt.Errorf("variables for %q: stale handle", id)
		}
		return set, nil
	}
	r.mu.RUnlock()

	return builtInVariables(skin)
}

// requireReady guards reads against use before Init. Calling early is a
// programming error; failing fast beats serving an empty registry.
func (r *Registry) requireReady() {
	r.mu.RLock()
	ready := r.ready
	r.mu.RUnlock()
	if !ready {
		panic("registry: used before Init")
	}
}
