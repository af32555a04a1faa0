package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/lacquer/internal/application/port"
	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/domain/repository"
	"github.com/bnema/lacquer/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string]entity.SkinRecord
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[string]entity.SkinRecord)}
}

func (f *fakeRecordStore) Put(_ context.Context, record entity.SkinRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.ID] = record
	return nil
}

func (f *fakeRecordStore) Get(_ context.Context, id string) (*entity.SkinRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (f *fakeRecordStore) List(_ context.Context) ([]entity.SkinRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := make([]entity.SkinRecord, 0, len(f.records))
	for _, record := range f.records {
		records = append(records, record)
	}
	return records, nil
}

func (f *fakeRecordStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

type fakeStateStore struct {
	mu     sync.Mutex
	values map[string]string
	writes map[string]int
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{values: make(map[string]string), writes: make(map[string]int)}
}

func (f *fakeStateStore) GetValue(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	return value, ok, nil
}

func (f *fakeStateStore) SetValue(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	f.writes[key]++
	return nil
}

func (f *fakeStateStore) DeleteValue(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

func (f *fakeStateStore) value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	return value, ok
}

func (f *fakeStateStore) writeCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes[key]
}

type fakeSurface struct {
	mu         sync.Mutex
	vars       map[string]string
	skinID     string
	mode       entity.Mode
	applies    int
	failNext   int
	commits    int
	lastCommit map[string]string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{vars: make(map[string]string)}
}

func (f *fakeSurface) ApplyVariables(_ context.Context, vars map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applies++
	if f.failNext > 0 {
		f.failNext--
		return errors.New("surface rejected variables")
	}
	for name, value := range vars {
		f.vars[name] = value
	}
	f.commits++
	f.lastCommit = vars
	return nil
}

func (f *fakeSurface) SetAppliedSkin(skinID string, mode entity.Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skinID = skinID
	f.mode = mode
}

func (f *fakeSurface) applied() (string, entity.Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.skinID, f.mode
}

func (f *fakeSurface) commitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits
}

func (f *fakeSurface) varValue(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vars[name]
}

type fakeResolver struct {
	mu          sync.Mutex
	prefersDark bool
	callbacks   []func(port.ColorSchemePreference)
}

func (f *fakeResolver) Resolve() port.ColorSchemePreference {
	f.mu.Lock()
	defer f.mu.Unlock()
	return port.ColorSchemePreference{PrefersDark: f.prefersDark, Source: "fake"}
}

func (f *fakeResolver) RegisterDetector(port.ColorSchemeDetector) {}

func (f *fakeResolver) Refresh() port.ColorSchemePreference {
	return f.Resolve()
}

func (f *fakeResolver) OnChange(callback func(port.ColorSchemePreference)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, callback)
	return func() {}
}

func (f *fakeResolver) flip(prefersDark bool) {
	f.mu.Lock()
	f.prefersDark = prefersDark
	callbacks := append([]func(port.ColorSchemePreference){}, f.callbacks...)
	f.mu.Unlock()
	for _, cb := range callbacks {
		cb(port.ColorSchemePreference{PrefersDark: prefersDark, Source: "fake"})
	}
}

const oceanInstallJSON = `{
	"id": "ocean",
	"label": "Ocean",
	"cssVars": {
		"light": {"--primary": "#006"},
		"dark": {"--primary": "#9cf"}
	}
}`

type harness struct {
	engine   *Engine
	registry *registry.Registry
	state    *fakeStateStore
	surface  *fakeSurface
	resolver *fakeResolver
}

func newHarness(t *testing.T, window time.Duration) *harness {
	t.Helper()

	reg := registry.New(newFakeRecordStore(), "")
	require.NoError(t, reg.Init(context.Background()))

	state := newFakeStateStore()
	surface := newFakeSurface()
	resolver := &fakeResolver{}

	e := New(Options{
		Registry:       reg,
		Store:          state,
		Resolver:       resolver,
		Surface:        surface,
		DebounceWindow: window,
	})
	t.Cleanup(e.Close)

	return &harness{engine: e, registry: reg, state: state, surface: surface, resolver: resolver}
}

func TestInit_FreshProcessDefaults(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	h.resolver.prefersDark = true

	require.NoError(t, h.engine.Init(context.Background()))

	assert.Equal(t, entity.DefaultSelection(), h.engine.Selection())
	assert.Equal(t, entity.ModeDark, h.engine.ResolvedMode())

	skinID, mode := h.surface.applied()
	assert.Equal(t, "default", skinID)
	assert.Equal(t, entity.ModeDark, mode)
}

func TestInit_PersistedSelectionRestored(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	h.state.values[repository.KeySelectionSkin] = "nord"
	h.state.values[repository.KeySelectionMode] = "dark"

	require.NoError(t, h.engine.Init(context.Background()))

	assert.Equal(t, entity.Selection{SkinID: "nord", Mode: entity.ModeDark}, h.engine.Selection())
	skinID, mode := h.surface.applied()
	assert.Equal(t, "nord", skinID)
	assert.Equal(t, entity.ModeDark, mode)
}

func TestInit_UnknownPersistedSkinFallsBackToDefault(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	h.state.values[repository.KeySelectionSkin] = "vanished"

	require.NoError(t, h.engine.Init(context.Background()))

	assert.Equal(t, entity.DefaultSelection(), h.engine.Selection())
	skinID, _ := h.surface.applied()
	assert.Equal(t, "default", skinID)
}

func TestSelect_IdenticalPairIsNoOp(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))

	require.NoError(t, h.engine.Select(context.Background(), "nord", entity.ModeDark))
	after := h.surface.commitCount()

	require.NoError(t, h.engine.Select(context.Background(), "nord", entity.ModeDark))

	assert.Equal(t, after, h.surface.commitCount())
}

func TestSelect_EmptyModeKeepsCurrent(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))
	require.NoError(t, h.engine.Select(context.Background(), "nord", entity.ModeDark))

	require.NoError(t, h.engine.Select(context.Background(), "gruvbox", ""))

	assert.Equal(t, entity.Selection{SkinID: "gruvbox", Mode: entity.ModeDark}, h.engine.Selection())
}

func TestSelect_InvalidModeRejected(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))

	err := h.engine.Select(context.Background(), "nord", entity.Mode("sepia"))

	require.Error(t, err)
	assert.Equal(t, entity.DefaultSelection(), h.engine.Selection())
}

func TestSelect_DebouncesPersistenceToOneWrite(t *testing.T) {
	h := newHarness(t, 25*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))

	require.NoError(t, h.engine.Select(context.Background(), "nord", entity.ModeLight))
	require.NoError(t, h.engine.Select(context.Background(), "default", entity.ModeDark))
	require.NoError(t, h.engine.Select(context.Background(), "gruvbox", entity.ModeDark))

	require.Eventually(t, func() bool {
		return h.state.writeCount(repository.KeySelectionSkin) > 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, h.state.writeCount(repository.KeySelectionSkin))
	skin, _ := h.state.value(repository.KeySelectionSkin)
	assert.Equal(t, "gruvbox", skin)
	mode, _ := h.state.value(repository.KeySelectionMode)
	assert.Equal(t, "dark", mode)
}

func TestSelect_UnknownSkinRevertsToDefault(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))
	require.NoError(t, h.engine.Select(context.Background(), "nord", entity.ModeLight))

	err := h.engine.Select(context.Background(), "missing", entity.ModeLight)

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, "missing", applyErr.SkinID)
	assert.ErrorIs(t, err, ErrResourceUnavailable)

	// Fallback is to the default skin, not the previously active one.
	assert.Equal(t, entity.Selection{SkinID: "default", Mode: entity.ModeLight}, h.engine.Selection())
	skinID, _ := h.surface.applied()
	assert.Equal(t, "default", skinID)
}

func TestSelect_SurfaceFailureRevertsToDefault(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))

	h.surface.mu.Lock()
	h.surface.failNext = 1
	h.surface.mu.Unlock()

	err := h.engine.Select(context.Background(), "nord", entity.ModeDark)

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, "nord", applyErr.SkinID)
	assert.Equal(t, entity.Selection{SkinID: "default", Mode: entity.ModeDark}, h.engine.Selection())
	skinID, _ := h.surface.applied()
	assert.Equal(t, "default", skinID)
}

func TestSelect_InstalledSkinVariablesReachSurface(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))

	_, err := h.registry.Install(context.Background(), []byte(oceanInstallJSON), "https://example.com/ocean.json")
	require.NoError(t, err)

	require.NoError(t, h.engine.Select(context.Background(), "ocean", entity.ModeLight))
	assert.Equal(t, "#006", h.surface.varValue("--primary"))

	require.NoError(t, h.engine.Select(context.Background(), "ocean", entity.ModeDark))
	assert.Equal(t, "#9cf", h.surface.varValue("--primary"))
}

func TestSelect_DecoratesFontAndRadiusTokens(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))

	require.NoError(t, h.engine.Select(context.Background(), "nord", entity.ModeLight))

	assert.Contains(t, h.surface.varValue("--font-sans"), "Fira Sans")
	assert.Contains(t, h.surface.varValue("--font-mono"), "Fira Code")
	assert.Equal(t, "0.375rem", h.surface.varValue("--radius"))
}

func TestPlatformChange_ReappliesAutoWithoutPersisting(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))

	writesBefore := h.state.writeCount(repository.KeySelectionSkin)
	h.resolver.flip(true)

	require.Eventually(t, func() bool {
		_, mode := h.surface.applied()
		return mode == entity.ModeDark
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, entity.DefaultSelection(), h.engine.Selection())
	assert.Equal(t, writesBefore, h.state.writeCount(repository.KeySelectionSkin))
}

func TestPlatformChange_IgnoredForExplicitMode(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))
	require.NoError(t, h.engine.Select(context.Background(), "nord", entity.ModeLight))

	commits := h.surface.commitCount()
	h.resolver.flip(true)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, commits, h.surface.commitCount())
	_, mode := h.surface.applied()
	assert.Equal(t, entity.ModeLight, mode)
}

func TestSetFontOverride_PersistsAndReapplies(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))

	override := entity.FontOverride{
		Enabled:    true,
		Assignment: map[entity.FontRole]string{entity.FontRoleSans: "fira-sans"},
	}
	require.NoError(t, h.engine.SetFontOverride(context.Background(), override))

	assert.Contains(t, h.surface.varValue("--font-sans"), "Fira Sans")
	raw, ok := h.state.value(repository.KeyFontOverride)
	require.True(t, ok)
	assert.Contains(t, raw, "fira-sans")
	assert.Equal(t, override, h.engine.FontOverride())
}

func TestFontOverride_RestoredOnInit(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	h.state.values[repository.KeyFontOverride] = `{"enabled":true,"assignment":{"mono":"fira-code"}}`

	require.NoError(t, h.engine.Init(context.Background()))

	assert.Contains(t, h.surface.varValue("--font-mono"), "Fira Code")
}

func TestStaleVariablesAreNotCleared(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))

	extraJSON := `{"id":"extra","cssVars":{"global":{"--banner-height":"3rem"}}}`
	_, err := h.registry.Install(context.Background(), []byte(extraJSON), "")
	require.NoError(t, err)

	require.NoError(t, h.engine.Select(context.Background(), "extra", entity.ModeLight))
	require.Equal(t, "3rem", h.surface.varValue("--banner-height"))

	require.NoError(t, h.engine.Select(context.Background(), "default", entity.ModeLight))
	assert.Equal(t, "3rem", h.surface.varValue("--banner-height"))
}

func TestUseBeforeInitPanics(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)

	assert.Panics(t, func() { h.engine.Selection() })
	assert.Panics(t, func() { _ = h.engine.Select(context.Background(), "nord", entity.ModeDark) })
}

func TestInitTwiceFails(t *testing.T) {
	h := newHarness(t, 10*time.Millisecond)
	require.NoError(t, h.engine.Init(context.Background()))

	assert.Error(t, h.engine.Init(context.Background()))
}

func TestClose_FlushesPendingSelection(t *testing.T) {
	h := newHarness(t, time.Hour)
	require.NoError(t, h.engine.Init(context.Background()))
	require.NoError(t, h.engine.Select(context.Background(), "nord", entity.ModeDark))

	h.engine.Close()

	skin, ok := h.state.value(repository.KeySelectionSkin)
	require.True(t, ok)
	assert.Equal(t, "nord", skin)
}
